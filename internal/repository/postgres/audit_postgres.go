package postgres

import (
	"context"
	"database/sql"

	"signdesk/internal/model"
	"signdesk/internal/repository"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Append inserts one audit record.
func (r *AuditPostgres) Append(ctx context.Context, rec *model.AuditRecord) error {
	const q = `
		INSERT INTO audit_records (id, document_id, action, actor, actor_contact, source_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.DocumentID,
		rec.Action,
		rec.Actor,
		rec.ActorContact,
		rec.SourceIP,
		rec.CreatedAt,
	)
	return err
}

// ListByDocument returns the audit trail of a document, newest first.
func (r *AuditPostgres) ListByDocument(ctx context.Context, documentID string) ([]model.AuditRecord, error) {
	const q = `
		SELECT id, document_id, action, actor, actor_contact, source_ip, created_at
		FROM audit_records
		WHERE document_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditRecord, 0)
	for rows.Next() {
		var a model.AuditRecord
		if err := rows.Scan(
			&a.ID,
			&a.DocumentID,
			&a.Action,
			&a.Actor,
			&a.ActorContact,
			&a.SourceIP,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
