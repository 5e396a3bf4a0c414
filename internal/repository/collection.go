// Package repository defines storage interfaces implemented by concrete backends.
package repository

import "context"

// Collection is a whole-collection store: every write replaces all records.
// Backends wrap I/O failures with errs.ErrStorageUnavailable.
type Collection[T any] interface {
	// Load returns all records in stored order. A collection never written is empty.
	Load(ctx context.Context) ([]T, error)
	// Save replaces the stored records.
	Save(ctx context.Context, records []T) error
	// Update runs a read-modify-write cycle inside the collection's mutual-exclusion region.
	// fn receives the current records and returns the records to persist; an error from fn
	// aborts the cycle and is returned unchanged.
	Update(ctx context.Context, fn func([]T) ([]T, error)) error
}
