package service

import (
	"context"

	"signdesk/internal/model"
	"signdesk/internal/repository"
)

// Authorizer answers whether an actor owns a document.
// Every owner-gated operation goes through RequireOwner.
type Authorizer struct {
	docs repository.DocumentRepository
}

// NewAuthorizer constructs an Authorizer over the document repository.
func NewAuthorizer(docs repository.DocumentRepository) *Authorizer {
	return &Authorizer{docs: docs}
}

// RequireOwner loads the document and returns it only if actor owns it.
// Returns ErrDocumentNotFound for unknown ids and ErrForbidden otherwise.
func (a *Authorizer) RequireOwner(ctx context.Context, actor model.Actor, documentID string) (*model.Document, error) {
	if documentID == "" {
		return nil, invalid("document_id", "is required")
	}
	doc, err := a.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, notFound(err, ErrDocumentNotFound)
	}
	if !doc.OwnedBy(actor.ID) {
		return nil, ErrForbidden
	}
	return doc, nil
}
