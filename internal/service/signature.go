package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"signdesk/internal/coords"
	"signdesk/internal/model"
	"signdesk/internal/pdf"
	"signdesk/internal/repository"
)

// Default signature style.
const (
	DefaultFontSize  = 14
	DefaultFontColor = "#000000"

	// PublicSignerLabel names link signers in the audit trail.
	PublicSignerLabel = "Public User"
)

// PlaceInput is a signature position captured by a client.
// X and Y are pixels at RenderWidth x RenderHeight, or fractions in [0,1] when Fractional is set.
type PlaceInput struct {
	DocumentID   string
	X            float64
	Y            float64
	Page         int
	RenderWidth  float64
	RenderHeight float64
	Fractional   bool
	Text         string
	FontSize     float64
	FontColor    string
}

// SignatureService places signature annotations and drives their status workflow.
type SignatureService interface {
	// Place records a Pending annotation authored by actor on an existing document.
	Place(ctx context.Context, actor model.Actor, in PlaceInput) (*model.Signature, error)

	// PlacePublic consumes a signing link and records a Signed annotation with no author.
	// in.DocumentID is ignored; the document is the one holding token.
	PlacePublic(ctx context.Context, token string, actor model.Actor, in PlaceInput) (*model.Signature, error)

	// ListByDocument returns the annotations of a document owned by actor.
	ListByDocument(ctx context.Context, actor model.Actor, documentID string) ([]model.Signature, error)

	// UpdateStatus moves a Pending annotation to Signed or Rejected. Only the document owner may do this.
	UpdateStatus(ctx context.Context, actor model.Actor, id string, status model.SignatureStatus, reason string) (*model.Signature, error)

	// Delete removes an annotation of a document owned by actor.
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type signatureService struct {
	docs    repository.DocumentRepository
	sigs    repository.SignatureRepository
	authz   *Authorizer
	audit   AuditService
	metrics *Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewSignatureService constructs a new SignatureService.
func NewSignatureService(
	docs repository.DocumentRepository,
	sigs repository.SignatureRepository,
	authz *Authorizer,
	audit AuditService,
	metrics *Metrics,
	log *slog.Logger,
) SignatureService {
	return &signatureService{
		docs:    docs,
		sigs:    sigs,
		authz:   authz,
		audit:   audit,
		metrics: metrics,
		log:     log.With("component", "signature_service"),
		now:     time.Now,
	}
}

// buildSignature validates in and returns an unsaved annotation in fractional form.
func (s *signatureService) buildSignature(in PlaceInput, status model.SignatureStatus, author *string) (*model.Signature, error) {
	if !positive(in.RenderWidth) {
		return nil, invalid("render_width", "must be greater than 0")
	}
	if !positive(in.RenderHeight) {
		return nil, invalid("render_height", "must be greater than 0")
	}
	if in.Page < 1 {
		return nil, invalid("page", "must be at least 1")
	}
	if !finite(in.X) {
		return nil, invalid("x", "must be a number")
	}
	if !finite(in.Y) {
		return nil, invalid("y", "must be a number")
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, invalid("text", "is required")
	}

	fontSize := in.FontSize
	if fontSize == 0 {
		fontSize = DefaultFontSize
	}
	if !positive(fontSize) {
		return nil, invalid("font_size", "must be greater than 0")
	}
	fontColor := in.FontColor
	if fontColor == "" {
		fontColor = DefaultFontColor
	}
	if _, err := pdf.ParseHexColor(fontColor); err != nil {
		return nil, invalid("font_color", "must be #RRGGBB")
	}

	xFrac, yFrac := coords.Normalize(coords.Placement{
		X:            in.X,
		Y:            in.Y,
		Page:         in.Page,
		RenderWidth:  in.RenderWidth,
		RenderHeight: in.RenderHeight,
		Fractional:   in.Fractional,
	})

	now := s.now().UTC()
	return &model.Signature{
		ID:           uuid.New().String(),
		DocumentID:   in.DocumentID,
		AuthorID:     author,
		XFrac:        xFrac,
		YFrac:        yFrac,
		Page:         in.Page,
		RenderWidth:  in.RenderWidth,
		RenderHeight: in.RenderHeight,
		Status:       status,
		Text:         text,
		FontSize:     fontSize,
		FontColor:    strings.ToUpper(fontColor),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s *signatureService) Place(ctx context.Context, actor model.Actor, in PlaceInput) (*model.Signature, error) {
	if actor.ID == "" {
		return nil, ErrForbidden
	}
	if in.DocumentID == "" {
		return nil, invalid("document_id", "is required")
	}
	if _, err := uuid.Parse(in.DocumentID); err != nil {
		return nil, invalid("document_id", "must be a UUID")
	}
	author := actor.ID
	sig, err := s.buildSignature(in, model.StatusPending, &author)
	if err != nil {
		return nil, err
	}

	if _, err := s.docs.FindByID(ctx, in.DocumentID); err != nil {
		return nil, notFound(err, ErrDocumentNotFound)
	}
	stored, err := s.sigs.Create(ctx, sig)
	if err != nil {
		return nil, err
	}

	s.metrics.placed("authenticated")
	s.log.InfoContext(ctx, "signature placed", "signature_id", stored.ID, "document_id", stored.DocumentID, "author_id", author)
	return stored, nil
}

func (s *signatureService) PlacePublic(ctx context.Context, token string, actor model.Actor, in PlaceInput) (*model.Signature, error) {
	if token == "" {
		return nil, ErrLinkInvalid
	}
	in.DocumentID = ""
	sig, err := s.buildSignature(in, model.StatusSigned, nil)
	if err != nil {
		return nil, err
	}

	stored, err := s.sigs.CreateWithToken(ctx, token, s.now(), sig)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrLinkInvalid
	case errors.Is(err, repository.ErrTokenExpired):
		return nil, ErrLinkExpired
	case err != nil:
		return nil, err
	}

	signer := model.Actor{Name: PublicSignerLabel, SourceIP: actor.SourceIP}
	s.audit.Record(ctx, stored.DocumentID, model.ActionPublicSigned, signer)
	s.metrics.placed("public")
	s.log.InfoContext(ctx, "public signature placed", "signature_id", stored.ID, "document_id", stored.DocumentID)
	return stored, nil
}

func (s *signatureService) ListByDocument(ctx context.Context, actor model.Actor, documentID string) ([]model.Signature, error) {
	if _, err := s.authz.RequireOwner(ctx, actor, documentID); err != nil {
		return nil, err
	}
	return s.sigs.ListByDocument(ctx, documentID)
}

func (s *signatureService) UpdateStatus(ctx context.Context, actor model.Actor, id string, status model.SignatureStatus, reason string) (*model.Signature, error) {
	if !status.Terminal() {
		return nil, invalid("status", "must be Signed or Rejected")
	}
	sig, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireOwner(ctx, actor, sig.DocumentID); err != nil {
		return nil, err
	}
	if !sig.Status.CanTransitionTo(status) {
		return nil, ErrStatusFinal
	}

	reason = strings.TrimSpace(reason)
	switch status {
	case model.StatusRejected:
		if reason == "" {
			reason = model.DefaultRejectionReason
		}
	default:
		reason = ""
	}

	updated, err := s.sigs.Transition(ctx, id, model.StatusPending, status, reason, s.now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		// Lost a race: the row was deleted or already left Pending.
		if _, ferr := s.find(ctx, id); ferr != nil {
			return nil, ferr
		}
		return nil, ErrStatusFinal
	}
	if err != nil {
		return nil, err
	}

	s.metrics.transitioned(string(status))
	s.log.InfoContext(ctx, "signature status changed", "signature_id", id, "status", status, "actor_id", actor.ID)
	return updated, nil
}

func (s *signatureService) Delete(ctx context.Context, actor model.Actor, id string) error {
	sig, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.authz.RequireOwner(ctx, actor, sig.DocumentID); err != nil {
		return err
	}
	return s.sigs.Delete(ctx, id)
}

func (s *signatureService) find(ctx context.Context, id string) (*model.Signature, error) {
	if id == "" {
		return nil, invalid("id", "is required")
	}
	sig, err := s.sigs.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSignatureNotFound)
	}
	return sig, nil
}
