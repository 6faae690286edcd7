package repository

import (
	"context"

	"signdesk/internal/model"
)

// AuditRepository appends and reads the audit trail of documents.
type AuditRepository interface {
	Append(ctx context.Context, rec *model.AuditRecord) error
	ListByDocument(ctx context.Context, documentID string) ([]model.AuditRecord, error)
}
