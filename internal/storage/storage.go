// Package storage holds report exports in an S3-compatible object store.
package storage

import (
	"context"
	"io"
)

// ObjectInfo represents metadata for a remote object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal operations the export path needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, w io.Writer) error
	UploadObject(ctx context.Context, key string, contentType string, data []byte) error
}
