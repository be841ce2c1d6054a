// Package blob defines the port for external image storage.
// Implementations live in infrastructure/blob.
package blob

import (
	"context"
	"io"
)

// Object describes a stored image.
type Object struct {
	// ID is the opaque public identifier assigned by the store.
	ID string

	// Width and Height are pixel dimensions reported by the store.
	Width  int
	Height int

	// URL is the delivery URL for the uploaded object.
	URL string

	// Version changes on every overwrite of the same key; embedding it
	// in delivery URLs busts CDN caches.
	Version int64
}

// Store is the contract for the external image store.
//
// Ordering contract with the transactional core: on create flows the blob
// is uploaded before the referencing database row is committed, so a failed
// write leaves an orphaned blob rather than a dangling reference. On delete
// flows the database row is removed and committed first; Delete is then
// best-effort and its failure is logged, not propagated.
type Store interface {
	// Upload stores the image under key. With overwrite set, an existing
	// object under the same key is replaced and its version bumped.
	Upload(ctx context.Context, r io.Reader, key string, overwrite bool) (*Object, error)

	// Delete removes the object. Deleting an absent object is not an error.
	Delete(ctx context.Context, id string) error

	// URL builds a delivery URL for an object id without a network call.
	// A version of 0 means "latest".
	URL(id string, version int64) string
}
