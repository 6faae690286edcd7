package repository

import (
	"context"
	"errors"
	"time"

	"signdesk/internal/model"
)

// ErrTokenExpired is returned when a public token exists but is past its expiry.
var ErrTokenExpired = errors.New("public token expired")

// SignatureRepository defines persistence for signature annotations.
// Lookups that match no row return sql.ErrNoRows.
type SignatureRepository interface {
	// Create inserts a signature.
	Create(ctx context.Context, sig *model.Signature) (*model.Signature, error)

	// CreateWithToken consumes the public token and inserts sig for the document that held it,
	// in one transaction. sig.DocumentID is filled from the token's document.
	// Returns sql.ErrNoRows if no document holds token and ErrTokenExpired if it is past expiry.
	CreateWithToken(ctx context.Context, token string, now time.Time, sig *model.Signature) (*model.Signature, error)

	// FindByID returns a signature by its ID.
	FindByID(ctx context.Context, id string) (*model.Signature, error)

	// ListByDocument returns every signature of a document in creation order.
	ListByDocument(ctx context.Context, documentID string) ([]model.Signature, error)

	// ListByDocumentAndStatus returns the signatures of a document with the given status.
	ListByDocumentAndStatus(ctx context.Context, documentID string, status model.SignatureStatus) ([]model.Signature, error)

	// Transition moves a signature from one status to another only if it is still in from.
	// Returns sql.ErrNoRows if no signature with that ID is currently in from.
	Transition(ctx context.Context, id string, from, to model.SignatureStatus, reason string, now time.Time) (*model.Signature, error)

	// Delete removes a signature by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}
