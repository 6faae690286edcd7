package repository

import (
	"context"
	"time"

	"signdesk/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
// Lookups that match no row return sql.ErrNoRows.
type DocumentRepository interface {
	// Create inserts a new document record.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByPublicToken returns the document currently holding token, expired or not.
	FindByPublicToken(ctx context.Context, token string) (*model.Document, error)

	// ListByOwner returns a page of the owner's documents, newest first, with signature counts.
	ListByOwner(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.DocumentWithSummary], error)

	// SetPublicToken replaces the document's public token and expiry.
	SetPublicToken(ctx context.Context, id, token string, expiresAt time.Time) error

	// Delete removes a document by ID. Signatures and audit rows cascade.
	// It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
