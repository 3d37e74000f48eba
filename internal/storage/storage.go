// Package storage holds uploaded document files. The workflow only keeps a
// reference (the object key) on each document record; content lives here.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"verifyapi/internal/config"
)

var (
	// ErrObjectNotFound is returned by Get for a key that holds no object.
	ErrObjectNotFound = errors.New("object not found")
	// ErrNoEndpoint is returned by New when MINIO_ENDPOINT is empty and the
	// in-memory store was not requested.
	ErrNoEndpoint = errors.New("minio endpoint is required (set STORAGE_ALLOW_MEMORY=true for local development)")
)

// PutObjectOptions describe an upload. Size is -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the file store collaborator of the document workflow.
// Implementations stream content and are safe for concurrent use.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited GET URL. A non-empty downloadName is
	// offered to the client as the attachment filename.
	PresignGet(ctx context.Context, key, downloadName string, expiry time.Duration) (string, error)
}

// DocumentKey returns a fresh object key for a farm's uploaded file.
// Only the extension of the original name is kept.
func DocumentKey(farmID, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return path.Join("farms", farmID, "documents", uuid.NewString()+ext)
}

// New returns the MinIO store when an endpoint is configured. The in-process
// store is only used when cfg.AllowMemory is set.
func New(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		if !cfg.AllowMemory {
			return nil, ErrNoEndpoint
		}
		return NewMemory(), nil
	}
	return NewMinIO(cfg)
}
