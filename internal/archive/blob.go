// Package archive mirrors persisted subtitle records into one CSV object per
// calendar day, stored in a blob store with overwrite semantics.
package archive

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by BlobStore.Get when no object exists under the key.
var ErrObjectNotFound = errors.New("archive object not found")

// BlobStore is a flat object store addressed by key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
