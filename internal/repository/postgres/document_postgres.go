package postgres

import (
	"context"
	"database/sql"
	"time"

	"signdesk/internal/model"
	"signdesk/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, filename, storage_path, size, content_type, owner_id, created_at, public_token, token_expires_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d       model.Document
		token   sql.NullString
		expires sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&d.Filename,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&d.OwnerID,
		&d.CreatedAt,
		&token,
		&expires,
	); err != nil {
		return nil, err
	}
	if token.Valid {
		d.PublicToken = &token.String
	}
	if expires.Valid {
		d.TokenExpiresAt = &expires.Time
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, filename, storage_path, size, content_type, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Filename,
		doc.StoragePath,
		doc.Size,
		doc.ContentType,
		doc.OwnerID,
		doc.CreatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// FindByPublicToken fetches the document holding the given public token.
func (r *DocumentPostgres) FindByPublicToken(ctx context.Context, token string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE public_token = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, token))
}

// ListByOwner returns the owner's documents using LIMIT/OFFSET pagination, a total count,
// and per-document signature counts.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.DocumentWithSummary], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE owner_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT d.id, d.filename, d.storage_path, d.size, d.content_type, d.owner_id, d.created_at,
		       d.public_token, d.token_expires_at,
		       COUNT(s.id),
		       COUNT(s.id) FILTER (WHERE s.status = 'Signed'),
		       COUNT(s.id) FILTER (WHERE s.status = 'Rejected'),
		       COUNT(s.id) FILTER (WHERE s.status = 'Pending')
		FROM documents d
		LEFT JOIN signatures s ON s.document_id = d.id
		WHERE d.owner_id = $1
		GROUP BY d.id
		ORDER BY d.created_at DESC, d.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentWithSummary, 0)
	for rows.Next() {
		var (
			item    model.DocumentWithSummary
			token   sql.NullString
			expires sql.NullTime
		)
		if err := rows.Scan(
			&item.ID,
			&item.Filename,
			&item.StoragePath,
			&item.Size,
			&item.ContentType,
			&item.OwnerID,
			&item.CreatedAt,
			&token,
			&expires,
			&item.SignatureSummary.Total,
			&item.SignatureSummary.Signed,
			&item.SignatureSummary.Rejected,
			&item.SignatureSummary.Pending,
		); err != nil {
			return nil, err
		}
		if token.Valid {
			item.PublicToken = &token.String
		}
		if expires.Valid {
			item.TokenExpiresAt = &expires.Time
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.DocumentWithSummary]{
		Items: items,
		Total: total,
	}, nil
}

// SetPublicToken overwrites any previous token, so at most one link is active per document.
func (r *DocumentPostgres) SetPublicToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	const q = `UPDATE documents SET public_token = $2, token_expires_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, token, expiresAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
