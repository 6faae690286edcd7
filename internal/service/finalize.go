package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"signdesk/internal/coords"
	"signdesk/internal/model"
	"signdesk/internal/pdf"
	"signdesk/internal/repository"
	"signdesk/internal/storage"
)

// FinalizeResult references a freshly produced signed PDF.
type FinalizeResult struct {
	DocumentID string `json:"document_id"`
	Key        string `json:"key"`
	URL        string `json:"url"`
	Drawn      int    `json:"drawn"`
	Skipped    int    `json:"skipped"`
}

// FinalizeService bakes a document's Signed annotations into a new PDF.
type FinalizeService interface {
	// Finalize draws every Signed annotation onto a copy of the source PDF and stores it
	// under a fresh key. The source object is never modified.
	Finalize(ctx context.Context, actor model.Actor, documentID string) (*FinalizeResult, error)
}

type finalizeService struct {
	store         storage.Storage
	sigs          repository.SignatureRepository
	authz         *Authorizer
	stamper       pdf.Stamper
	audit         AuditService
	metrics       *Metrics
	presignExpiry time.Duration
	log           *slog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewFinalizeService constructs a new FinalizeService.
// Download URLs of finished artifacts are valid for presignExpiry.
func NewFinalizeService(
	store storage.Storage,
	sigs repository.SignatureRepository,
	authz *Authorizer,
	stamper pdf.Stamper,
	audit AuditService,
	metrics *Metrics,
	presignExpiry time.Duration,
	log *slog.Logger,
) FinalizeService {
	return &finalizeService{
		store:         store,
		sigs:          sigs,
		authz:         authz,
		stamper:       stamper,
		audit:         audit,
		metrics:       metrics,
		presignExpiry: presignExpiry,
		log:           log.With("component", "finalize"),
		tracer:        otel.Tracer("signdesk/internal/service"),
		now:           time.Now,
	}
}

func (s *finalizeService) Finalize(ctx context.Context, actor model.Actor, documentID string) (res *FinalizeResult, err error) {
	ctx, span := s.tracer.Start(ctx, "FinalizeService.Finalize", trace.WithAttributes(
		attribute.String("document.id", documentID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	start := s.now()

	doc, err := s.authz.RequireOwner(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}

	source, err := s.load(ctx, doc.StoragePath)
	if err != nil {
		return nil, err
	}
	pages, err := s.stamper.Pages(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: read source pdf: %v", ErrStorageFailure, err)
	}

	signed, err := s.sigs.ListByDocumentAndStatus(ctx, doc.ID, model.StatusSigned)
	if err != nil {
		return nil, err
	}
	marks, skipped := s.project(ctx, signed, pages)
	span.SetAttributes(
		attribute.Int("finalize.pages", len(pages)),
		attribute.Int("finalize.drawn", len(marks)),
		attribute.Int("finalize.skipped", skipped),
	)

	out, err := s.stamper.Stamp(ctx, source, marks)
	if err != nil {
		return nil, fmt.Errorf("stamp document %s: %w", doc.ID, err)
	}

	key := artifactPrefix(doc.ID) + uuid.New().String() + ".pdf"
	if _, err := s.store.Put(ctx, key, bytes.NewReader(out), storage.PutObjectOptions{
		Size:        int64(len(out)),
		ContentType: storage.DefaultContentType,
		Metadata: map[string]string{
			"source-document": doc.ID,
		},
	}); err != nil {
		return nil, fmt.Errorf("%w: store final pdf: %v", ErrStorageFailure, err)
	}
	url, err := s.store.PresignGet(ctx, key, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: presign final pdf: %v", ErrStorageFailure, err)
	}

	s.audit.Record(ctx, doc.ID, model.ActionFinalGenerated, actor)
	s.metrics.finalized(len(marks), skipped, s.now().Sub(start))
	s.log.InfoContext(ctx, "final pdf generated",
		"document_id", doc.ID,
		"key", key,
		"drawn", len(marks),
		"skipped", skipped,
	)

	return &FinalizeResult{
		DocumentID: doc.ID,
		Key:        key,
		URL:        url,
		Drawn:      len(marks),
		Skipped:    skipped,
	}, nil
}

// load reads the whole source object. A missing object means the document is gone.
func (s *finalizeService) load(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: source pdf missing", ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open source pdf: %v", ErrStorageFailure, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read source pdf: %v", ErrStorageFailure, err)
	}
	return data, nil
}

// project maps each annotation onto its page. Annotations that cannot be drawn are
// skipped so one bad record never blocks the rest.
func (s *finalizeService) project(ctx context.Context, sigs []model.Signature, pages []pdf.Page) ([]pdf.Mark, int) {
	marks := make([]pdf.Mark, 0, len(sigs))
	skipped := 0
	for i := range sigs {
		sig := &sigs[i]
		if sig.Page < 1 || sig.Page > len(pages) {
			skipped++
			s.log.WarnContext(ctx, "signature skipped: page out of range",
				"signature_id", sig.ID,
				"page", sig.Page,
				"page_count", len(pages),
			)
			continue
		}
		rgb, err := pdf.ParseHexColor(sig.FontColor)
		if err != nil {
			skipped++
			s.log.WarnContext(ctx, "signature skipped: bad color", "signature_id", sig.ID, "error", err)
			continue
		}

		page := pages[sig.Page-1]
		x, y := coords.ToPDFSpace(sig.Placement(), page.Width, page.Height)
		marks = append(marks, pdf.Mark{
			Page:     sig.Page,
			X:        x,
			Y:        y,
			Text:     sig.Text,
			FontSize: sig.FontSize,
			Color:    rgb,
		})
	}
	return marks, skipped
}

// artifactPrefix is the key prefix shared by every finalized copy of a document.
func artifactPrefix(documentID string) string {
	return path.Join("signed", documentID) + "/"
}
