// Package storage wraps the S3-compatible object store export files are written to.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size is the exact number of bytes, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
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

// Storage is the object store contract used by the export service.
type Storage interface {
	// Put uploads an object under the given key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens an object for streaming. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ExportKey returns the object key of an export file: exports/<hospital>/<id>.<ext>.
func ExportKey(hospitalID, exportID int64, ext string) string {
	return path.Join("exports", fmt.Sprint(hospitalID), fmt.Sprintf("%d.%s", exportID, ext))
}
