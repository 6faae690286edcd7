package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"signdesk/internal/model"
	"signdesk/internal/pdf"
	"signdesk/internal/repository"
	"signdesk/internal/storage"
)

// DefaultMaxUploadSize applies when no positive limit is configured.
const DefaultMaxUploadSize = 20 * units.MiB

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.DocumentWithSummary `json:"data"`
	Total int                         `json:"total"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates the content as a PDF, stores it, saves metadata owned by actor,
	// and rolls back storage if the DB save fails.
	Upload(ctx context.Context, actor model.Actor, r io.Reader, originalFilename string, size int64) (*model.Document, error)

	// List returns the actor's documents with signature counts using limit/offset and a total count.
	List(ctx context.Context, actor model.Actor, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document owned by actor.
	Get(ctx context.Context, actor model.Actor, id string) (*model.Document, error)

	// Delete removes a document owned by actor from both storage and repository.
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type documentService struct {
	store   storage.Storage
	repo    repository.DocumentRepository
	authz   *Authorizer
	maxSize int64
	log     *slog.Logger

	pageCount func([]byte) (int, error)
	now       func() time.Time
}

// NewDocumentService constructs a new DocumentService. Uploads larger than maxSize bytes are rejected.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, authz *Authorizer, maxSize int64, log *slog.Logger) DocumentService {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &documentService{
		store:     store,
		repo:      repo,
		authz:     authz,
		maxSize:   maxSize,
		log:       log.With("component", "document_service"),
		pageCount: pdf.PageCount,
		now:       time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, actor model.Actor, r io.Reader, originalFilename string, size int64) (*model.Document, error) {
	if actor.ID == "" {
		return nil, ErrForbidden
	}
	if r == nil {
		return nil, invalid("file", "is required")
	}
	tooLarge := invalid("file", "exceeds "+units.BytesSize(float64(s.maxSize)))
	if size > s.maxSize {
		return nil, tooLarge
	}

	// The whole file is needed to validate it, so read at most one byte past the limit.
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, tooLarge
	}
	pages, err := s.pageCount(data)
	if err != nil || pages < 1 {
		return nil, invalid("file", "is not a valid PDF")
	}

	id := uuid.New().String()
	key := path.Join("documents", id+".pdf")

	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: storage.DefaultContentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upload to storage: %v", ErrStorageFailure, err)
	}

	doc := &model.Document{
		ID:          id,
		Filename:    displayName(originalFilename, id),
		StoragePath: objInfo.Key,
		Size:        int64(len(data)),
		ContentType: storage.DefaultContentType,
		OwnerID:     actor.ID,
		CreatedAt:   s.now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.log.InfoContext(ctx, "document uploaded", "document_id", stored.ID, "owner_id", actor.ID, "pages", pages, "size", stored.Size)
	return stored, nil
}

// displayName keeps the base name of the client's filename, falling back to the generated id.
func displayName(originalFilename, id string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(originalFilename), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return id + ".pdf"
	}
	return name
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, actor model.Actor, limit, offset int) (*DocumentListResult, error) {
	if actor.ID == "" {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListByOwner(ctx, actor.ID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Get(ctx context.Context, actor model.Actor, id string) (*model.Document, error) {
	return s.authz.RequireOwner(ctx, actor, id)
}

// Delete removes the document record, then its source blob and every finalized copy.
// Signatures and audit records go with the row. Blobs that fail to delete are logged and left behind.
func (s *documentService) Delete(ctx context.Context, actor model.Actor, id string) error {
	doc, err := s.authz.RequireOwner(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "document deleted", "document_id", id, "owner_id", actor.ID)

	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		s.log.WarnContext(ctx, "document blob left behind", "document_id", id, "key", doc.StoragePath, "error", err)
	}
	prefix := artifactPrefix(id)
	removed, err := s.store.DeletePrefix(ctx, prefix)
	if err != nil {
		s.log.WarnContext(ctx, "finalized copies left behind", "document_id", id, "prefix", prefix, "removed", removed, "error", err)
	} else if removed > 0 {
		s.log.InfoContext(ctx, "finalized copies deleted", "document_id", id, "count", removed)
	}
	return nil
}
