package tokenstore

import "context"

// Store is the key-value persistence contract for the managed record.
// Implementations hold exactly one record; the storage key is fixed at
// construction time.
type Store interface {
	// Save persists the full record, overwriting whatever is stored.
	Save(ctx context.Context, rec *Record) error

	// Load returns the stored record, or (nil, nil) when none exists.
	// Storage-internal fields are stripped before returning.
	Load(ctx context.Context) (*Record, error)

	// Delete removes the stored record. Deleting an absent record is a no-op.
	Delete(ctx context.Context) error
}

// StorageError wraps a backend failure so callers can tell persistence
// problems apart from token-lifecycle problems.
type StorageError struct {
	Backend string // "file", "sqlite", "memory"
	Op      string // "save", "load", "delete"
	Err     error
}

func (e *StorageError) Error() string {
	return "tokenstore: " + e.Backend + " " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// DefaultKey is the storage key used when none is configured. A single
// logical record per key keeps the door open for multi-identity later.
const DefaultKey = "default"
