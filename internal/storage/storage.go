// Package storage contains object storage abstractions for uploaded and finalized PDFs.
// Implementations rely on streaming I/O only and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound indicates the requested key does not exist in storage.
var ErrNotFound = errors.New("storage: key not found")

// DefaultContentType is stored when an upload does not name one; every object here is a PDF.
const DefaultContentType = "application/pdf"

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 when the driver supports streaming
// an unknown length. ContentType falls back to DefaultContentType.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

func (o PutObjectOptions) contentType() string {
	if o.ContentType == "" {
		return DefaultContentType
	}
	return o.ContentType
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every object whose key starts with prefix and returns how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
