package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"signdesk/internal/model"
	"signdesk/internal/repository"
)

// SignaturePostgres is a PostgreSQL implementation of repository.SignatureRepository.
type SignaturePostgres struct {
	db *sql.DB
}

// NewSignaturePostgres creates a new SignaturePostgres repository.
func NewSignaturePostgres(db *sql.DB) *SignaturePostgres {
	return &SignaturePostgres{db: db}
}

var _ repository.SignatureRepository = (*SignaturePostgres)(nil)

const signatureColumns = `id, document_id, author_id, x_frac, y_frac, page, render_width, render_height,
		status, rejection_reason, text, font_size, font_color, created_at, updated_at`

const insertSignature = `
		INSERT INTO signatures (id, document_id, author_id, x_frac, y_frac, page, render_width, render_height,
			status, rejection_reason, text, font_size, font_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + signatureColumns

func scanSignature(row rowScanner) (*model.Signature, error) {
	var (
		s      model.Signature
		author sql.NullString
		status string
	)
	if err := row.Scan(
		&s.ID,
		&s.DocumentID,
		&author,
		&s.XFrac,
		&s.YFrac,
		&s.Page,
		&s.RenderWidth,
		&s.RenderHeight,
		&status,
		&s.RejectionReason,
		&s.Text,
		&s.FontSize,
		&s.FontColor,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if author.Valid {
		s.AuthorID = &author.String
	}
	s.Status = model.SignatureStatus(status)
	return &s, nil
}

func insertArgs(sig *model.Signature) []any {
	var author sql.NullString
	if sig.AuthorID != nil {
		author = sql.NullString{String: *sig.AuthorID, Valid: true}
	}
	return []any{
		sig.ID,
		sig.DocumentID,
		author,
		sig.XFrac,
		sig.YFrac,
		sig.Page,
		sig.RenderWidth,
		sig.RenderHeight,
		string(sig.Status),
		sig.RejectionReason,
		sig.Text,
		sig.FontSize,
		sig.FontColor,
		sig.CreatedAt,
		sig.UpdatedAt,
	}
}

// Create inserts a new signature row and returns the stored record.
func (r *SignaturePostgres) Create(ctx context.Context, sig *model.Signature) (*model.Signature, error) {
	return scanSignature(r.db.QueryRowContext(ctx, insertSignature, insertArgs(sig)...))
}

// CreateWithToken locks the document holding token, inserts the signature and clears the token
// in a single transaction. A second caller blocked on the row lock sees the cleared token
// and gets sql.ErrNoRows.
func (r *SignaturePostgres) CreateWithToken(ctx context.Context, token string, now time.Time, sig *model.Signature) (*model.Signature, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const qLock = `SELECT id, token_expires_at FROM documents WHERE public_token = $1 FOR UPDATE`
	var (
		docID   string
		expires sql.NullTime
	)
	if err := tx.QueryRowContext(ctx, qLock, token).Scan(&docID, &expires); err != nil {
		return nil, err
	}
	if !expires.Valid || !now.Before(expires.Time) {
		return nil, repository.ErrTokenExpired
	}

	sig.DocumentID = docID
	stored, err := scanSignature(tx.QueryRowContext(ctx, insertSignature, insertArgs(sig)...))
	if err != nil {
		return nil, err
	}

	const qClear = `UPDATE documents SET public_token = NULL, token_expires_at = NULL WHERE id = $1`
	if _, err := tx.ExecContext(ctx, qClear, docID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// FindByID fetches a single signature by its ID.
func (r *SignaturePostgres) FindByID(ctx context.Context, id string) (*model.Signature, error) {
	const q = `SELECT ` + signatureColumns + ` FROM signatures WHERE id = $1`
	return scanSignature(r.db.QueryRowContext(ctx, q, id))
}

// ListByDocument returns all signatures of a document, oldest first.
func (r *SignaturePostgres) ListByDocument(ctx context.Context, documentID string) ([]model.Signature, error) {
	const q = `SELECT ` + signatureColumns + ` FROM signatures WHERE document_id = $1 ORDER BY created_at, id`
	return r.list(ctx, q, documentID)
}

// ListByDocumentAndStatus returns the signatures of a document in the given status, oldest first.
func (r *SignaturePostgres) ListByDocumentAndStatus(ctx context.Context, documentID string, status model.SignatureStatus) ([]model.Signature, error) {
	const q = `SELECT ` + signatureColumns + ` FROM signatures WHERE document_id = $1 AND status = $2 ORDER BY created_at, id`
	return r.list(ctx, q, documentID, string(status))
}

func (r *SignaturePostgres) list(ctx context.Context, q string, args ...any) ([]model.Signature, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Signature, 0)
	for rows.Next() {
		s, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Transition updates the status only while the row is still in from.
func (r *SignaturePostgres) Transition(ctx context.Context, id string, from, to model.SignatureStatus, reason string, now time.Time) (*model.Signature, error) {
	const q = `
		UPDATE signatures SET status = $3, rejection_reason = $4, updated_at = $5
		WHERE id = $1 AND status = $2
		RETURNING ` + signatureColumns
	return scanSignature(r.db.QueryRowContext(ctx, q, id, string(from), string(to), reason, now))
}

// Delete removes a signature by ID.
func (r *SignaturePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM signatures WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
