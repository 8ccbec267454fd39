// Package store persists per-tool state documents.
//
// Every tool keeps its whole state in a single named JSON document and
// replaces it on each mutation. There is no cross-process locking and no
// transactional guarantee: concurrent writers from separate processes
// clobber each other, matching the flat-file persistence this repository
// simulates. In-process access is serialized by each backend.
package store

import (
	"context"

	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentools", "store")

// Store is a named JSON document store.
type Store interface {
	// Load unmarshals the named document into v.
	// It returns false when the document does not exist, leaving v unchanged.
	Load(ctx context.Context, name string, v any) (bool, error)
	// Save marshals v and replaces the named document.
	Save(ctx context.Context, name string, v any) error
	// Delete removes the named document. Removing an absent document is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of existing documents.
	List(ctx context.Context) ([]string, error)
}
