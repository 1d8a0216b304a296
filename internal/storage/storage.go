// Package storage holds the blob stores that accept uploaded image bytes and
// hand back an opaque reference the content layer persists.
package storage

import (
	"context"
	"strings"
)

// BlobStore accepts raw bytes and returns a reference that can later be
// turned into a retrieval URL.
type BlobStore interface {
	Store(ctx context.Context, data []byte, name, contentType string) (string, error)
	BaseURL() string
}

// URL joins a stored reference onto the store's base URL. Empty refs stay
// empty and absolute refs are returned untouched.
func URL(s BlobStore, ref string) string {
	if ref == "" || s == nil {
		return ref
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	base := strings.TrimRight(s.BaseURL(), "/")
	return base + "/" + strings.TrimLeft(ref, "/")
}
