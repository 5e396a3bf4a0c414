// Package jsonfile stores collections as indented JSON arrays, one file per collection.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/and161185/goph-catalog/internal/errs"
	"github.com/and161185/goph-catalog/internal/model"
)

// Collection is a file-backed whole-collection store.
// Writes go to a temp file that is renamed over the target, so readers never see a partial file.
type Collection[T any] struct {
	path string
	mu   sync.Mutex // serializes Update/Save cycles
}

// NewCollection returns a collection persisted at path.
func NewCollection[T any](path string) *Collection[T] {
	return &Collection[T]{path: path}
}

// Path returns the backing file.
func (c *Collection[T]) Path() string { return c.path }

// Load reads all records. A missing or empty file is an empty collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.read()
}

// Save replaces the file contents.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(records)
}

// Update runs fn between a read and a write while holding the collection lock.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := c.read()
	if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return c.write(next)
}

func (c *Collection[T]) read() ([]T, error) {
	b, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", errs.ErrStorageUnavailable, c.path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", errs.ErrStorageUnavailable, c.path, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (c *Collection[T]) write(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", errs.ErrStorageUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", errs.ErrStorageUnavailable, tmp, err)
	}
	return nil
}

// Store holds the service's collections under one data directory.
type Store struct {
	users    *Collection[model.User]
	products *Collection[model.Product]
}

// Open creates dir if needed and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", errs.ErrStorageUnavailable, err)
	}
	return &Store{
		users:    NewCollection[model.User](filepath.Join(dir, "users.json")),
		products: NewCollection[model.Product](filepath.Join(dir, "products.json")),
	}, nil
}

// Users returns the user collection.
func (s *Store) Users() *Collection[model.User] { return s.users }

// Products returns the product collection.
func (s *Store) Products() *Collection[model.Product] { return s.products }
