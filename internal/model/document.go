package model

import "time"

// Document represents an uploaded PDF owned by a single user.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`

	// PublicToken and TokenExpiresAt are set together while a public signing link is active.
	PublicToken    *string    `json:"-"`
	TokenExpiresAt *time.Time `json:"-"`
}

// OwnedBy reports whether actorID owns the document.
func (d *Document) OwnedBy(actorID string) bool {
	return actorID != "" && d.OwnerID == actorID
}

// LinkActive reports whether the document carries a public token that has not expired at now.
func (d *Document) LinkActive(now time.Time) bool {
	return d.PublicToken != nil && d.TokenExpiresAt != nil && now.Before(*d.TokenExpiresAt)
}

// SignatureSummary counts a document's signatures by status.
type SignatureSummary struct {
	Total    int `json:"total"`
	Signed   int `json:"signed"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

// DocumentWithSummary is a document listed alongside its signature counts.
type DocumentWithSummary struct {
	Document
	SignatureSummary SignatureSummary `json:"signature_summary"`
}
