package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"signdesk/internal/model"
	"signdesk/internal/repository"
)

// AuditService appends to and reads a document's audit trail.
type AuditService interface {
	// Record appends one entry. Failures are logged and never returned to the caller.
	Record(ctx context.Context, documentID, action string, actor model.Actor)

	// List returns the trail of a document owned by actor, newest first.
	List(ctx context.Context, actor model.Actor, documentID string) ([]model.AuditRecord, error)
}

type auditService struct {
	repo  repository.AuditRepository
	authz *Authorizer
	log   *slog.Logger
	now   func() time.Time
}

// NewAuditService constructs a new AuditService.
func NewAuditService(repo repository.AuditRepository, authz *Authorizer, log *slog.Logger) AuditService {
	return &auditService{repo: repo, authz: authz, log: log.With("component", "audit"), now: time.Now}
}

func (s *auditService) Record(ctx context.Context, documentID, action string, actor model.Actor) {
	rec := &model.AuditRecord{
		ID:           uuid.New().String(),
		DocumentID:   documentID,
		Action:       action,
		Actor:        actor.Label(),
		ActorContact: actor.Contact(),
		SourceIP:     actor.SourceIP,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		s.log.ErrorContext(ctx, "audit append failed",
			"document_id", documentID,
			"action", action,
			"error", err,
		)
	}
}

func (s *auditService) List(ctx context.Context, actor model.Actor, documentID string) ([]model.AuditRecord, error) {
	if _, err := s.authz.RequireOwner(ctx, actor, documentID); err != nil {
		return nil, err
	}
	return s.repo.ListByDocument(ctx, documentID)
}
