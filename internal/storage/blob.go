// Package storage keeps the raw bytes of uploaded materials. Blobs are stored
// under opaque, practically collision free names and are never modified.
package storage

import (
	"context"
	"io"
)

// Blob describes a freshly written file
type Blob struct {
	Name        string // Stored name, e.g. 1718000000000000000-123456789.pdf
	Path        string // Where the store can find it again (file path or object key)
	Ext         string // Lowercase extension without the dot
	ContentType string
	Size        int64
}

// Object is an open blob. Callers must close Body.
type Object struct {
	Body io.ReadCloser
	Size int64
}

type BlobStore interface {
	// Put validates and writes r. size is the length declared by the client
	// and is checked before anything is written.
	Put(ctx context.Context, r io.Reader, size int64, originalName string) (*Blob, error)
	Open(ctx context.Context, path string) (*Object, error)
	// Delete is best effort and only used to undo a Put
	Delete(ctx context.Context, path string) error
}
