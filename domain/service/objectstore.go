// Package service defines interfaces for the pipeline's external collaborators.
package service

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound indicates the requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore abstracts the blob storage backend.
// Objects are addressed by string keys within a single configured bucket.
type ObjectStore interface {
	// Put writes an object from the reader under the given key,
	// overwriting any existing object (last write wins).
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Get reads the full object at key. Returns ErrObjectNotFound if the
	// key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Copy duplicates the object at src to dst.
	Copy(ctx context.Context, src, dst string) error

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}

// Move relocates an object by copying it to dst and deleting src.
// The copy happens first so a failure never leaves the destination
// missing while the source is gone.
func Move(ctx context.Context, store ObjectStore, src, dst string) error {
	if err := store.Copy(ctx, src, dst); err != nil {
		return err
	}
	return store.Delete(ctx, src)
}
