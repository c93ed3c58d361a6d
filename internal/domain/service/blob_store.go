package service

import (
	"context"
	"io"
)

// StoredBlob describes an uploaded object.
type StoredBlob struct {
	URL        string
	ObjectName string
	Size       int64
}

type BlobStore interface {
	Upload(ctx context.Context, file io.Reader, contentType, folder string) (*StoredBlob, error)
	DeleteByURL(ctx context.Context, fileURL string) error
	Close() error
}
