package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"signdesk/internal/model"
	"signdesk/internal/notify"
	"signdesk/internal/repository"
	"signdesk/internal/storage"
)

const (
	// LinkTTL is how long a signing link stays valid after it is issued.
	LinkTTL = 24 * time.Hour

	tokenBytes = 20
)

// IssuedLink is a freshly issued signing link. Token is only ever shown to the owner.
type IssuedLink struct {
	DocumentID string    `json:"document_id"`
	Token      string    `json:"token"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
	Notified   bool      `json:"notified"`
}

// PublicDocument is what a link holder may see of a document.
type PublicDocument struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LinkService issues and resolves single-use public signing links.
type LinkService interface {
	// Issue replaces the document's signing link with a new one valid for LinkTTL.
	// When recipient is not empty the link is also sent to it.
	Issue(ctx context.Context, actor model.Actor, documentID, recipient string) (*IssuedLink, error)

	// Resolve returns the document holding token.
	// Returns ErrLinkInvalid if none does and ErrLinkExpired if the link is past its expiry.
	Resolve(ctx context.Context, token string) (*model.Document, error)

	// View resolves token and presigns a download URL for the original PDF.
	View(ctx context.Context, token string) (*PublicDocument, error)
}

type linkService struct {
	docs          repository.DocumentRepository
	store         storage.Storage
	authz         *Authorizer
	notifier      notify.Notifier
	audit         AuditService
	baseURL       string
	presignExpiry time.Duration
	log           *slog.Logger

	random io.Reader
	now    func() time.Time
}

// NewLinkService constructs a new LinkService. Links have the form {baseURL}/sign/{token}.
func NewLinkService(
	docs repository.DocumentRepository,
	store storage.Storage,
	authz *Authorizer,
	notifier notify.Notifier,
	audit AuditService,
	baseURL string,
	presignExpiry time.Duration,
	log *slog.Logger,
) LinkService {
	return &linkService{
		docs:          docs,
		store:         store,
		authz:         authz,
		notifier:      notifier,
		audit:         audit,
		baseURL:       strings.TrimRight(baseURL, "/"),
		presignExpiry: presignExpiry,
		log:           log.With("component", "link"),
		random:        rand.Reader,
		now:           time.Now,
	}
}

func (s *linkService) Issue(ctx context.Context, actor model.Actor, documentID, recipient string) (*IssuedLink, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient != "" {
		addr, err := mail.ParseAddress(recipient)
		if err != nil {
			return nil, invalid("recipient_email", "is not a valid email address")
		}
		recipient = addr.Address
	}

	doc, err := s.authz.RequireOwner(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().UTC().Add(LinkTTL)
	if err := s.docs.SetPublicToken(ctx, doc.ID, token, expiresAt); err != nil {
		return nil, notFound(err, ErrDocumentNotFound)
	}

	link := &IssuedLink{
		DocumentID: doc.ID,
		Token:      token,
		URL:        s.baseURL + "/sign/" + token,
		ExpiresAt:  expiresAt,
	}
	s.audit.Record(ctx, doc.ID, model.ActionLinkIssued, actor)
	s.log.InfoContext(ctx, "signing link issued", "document_id", doc.ID, "expires_at", expiresAt)

	if recipient != "" {
		if err := s.notifier.SendLink(ctx, recipient, link.URL); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
		}
		link.Notified = true
	}
	return link, nil
}

func (s *linkService) newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *linkService) Resolve(ctx context.Context, token string) (*model.Document, error) {
	if token == "" {
		return nil, ErrLinkInvalid
	}
	doc, err := s.docs.FindByPublicToken(ctx, token)
	if err != nil {
		return nil, notFound(err, ErrLinkInvalid)
	}
	if !doc.LinkActive(s.now()) {
		return nil, ErrLinkExpired
	}
	return doc, nil
}

func (s *linkService) View(ctx context.Context, token string) (*PublicDocument, error) {
	doc, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	url, err := s.store.PresignGet(ctx, doc.StoragePath, s.presignExpiry)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("%w: presign document: %v", ErrStorageFailure, err)
	}
	return &PublicDocument{
		ID:        doc.ID,
		Filename:  doc.Filename,
		URL:       url,
		ExpiresAt: *doc.TokenExpiresAt,
	}, nil
}
