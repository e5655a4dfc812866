package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrForeignURL is returned by KeyFromURL for URLs outside the public base.
var ErrForeignURL = errors.New("url does not belong to this storage")

// FileStorage defines the interface for the media bucket.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading a video or image directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// ObjectURL returns the public URL stored on a method once the upload is done.
	ObjectURL(objectKey string) string

	// KeyFromURL is the inverse of ObjectURL.
	KeyFromURL(url string) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// publicURLs maps object keys to URLs under a fixed base.
type publicURLs struct {
	base string
}

func newPublicURLs(base string) publicURLs {
	return publicURLs{base: strings.TrimRight(base, "/")}
}

func (p publicURLs) ObjectURL(objectKey string) string {
	return p.base + "/" + strings.TrimLeft(objectKey, "/")
}

func (p publicURLs) KeyFromURL(url string) (string, error) {
	prefix := p.base + "/"
	if p.base == "" || !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", ErrForeignURL
	}
	return strings.TrimPrefix(url, prefix), nil
}
