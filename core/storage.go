package core

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned by a BlobStore when the requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// UploadPolicy restricts what may be uploaded under a key.
type UploadPolicy struct {
	ContentType string
	MaxSize     int64 // bytes
}

// PresignedUpload is a form upload: POST FormData plus the file field to URL.
type PresignedUpload struct {
	URL      string
	FormData map[string]string
}

// BlobStore stores uploaded files and hands out pre-signed URLs to them.
type BlobStore interface {
	// PresignedUpload returns a POST policy allowing a single upload matching policy under key.
	PresignedUpload(ctx context.Context, key string, policy UploadPolicy, expiry time.Duration) (PresignedUpload, error)
	// PresignedGetURL returns a download URL for an existing object, or ErrObjectNotFound.
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
