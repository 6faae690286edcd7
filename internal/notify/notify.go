// Package notify delivers signing links to external signers.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"signdesk/internal/config"
)

// Notifier hands a signing link to a recipient out of band.
type Notifier interface {
	SendLink(ctx context.Context, recipient, link string) error
}

// New returns an SMTP notifier when a host is configured and a log-only notifier otherwise.
func New(cfg config.SMTPConfig, log *slog.Logger) Notifier {
	if cfg.Host == "" {
		return &logNotifier{log: log.With("component", "notify")}
	}
	return &smtpNotifier{cfg: cfg, send: smtp.SendMail}
}

type logNotifier struct {
	log *slog.Logger
}

func (n *logNotifier) SendLink(ctx context.Context, recipient, link string) error {
	n.log.InfoContext(ctx, "signing link not emailed, smtp disabled", "recipient", recipient, "link", link)
	return nil
}

type smtpNotifier struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (n *smtpNotifier) SendLink(ctx context.Context, recipient, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(recipient, "\r\n") {
		return fmt.Errorf("invalid recipient %q", recipient)
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := net.JoinHostPort(n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, auth, n.cfg.From, []string{recipient}, linkMessage(n.cfg.From, recipient, link)); err != nil {
		return fmt.Errorf("send signing link: %w", err)
	}
	return nil
}

func linkMessage(from, to, link string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Document Signature Request\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "Please sign the document using this link:\r\n%s\r\nNote: Link expires in 24 hours.\r\n", link)
	return []byte(b.String())
}
