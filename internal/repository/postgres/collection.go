package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/goph-catalog/internal/model"
)

// Collection names used by the service.
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
)

// Collection stores a whole collection as one jsonb document in the collections table.
type Collection[T any] struct {
	db   *DB
	name string
}

// NewCollection constructs a collection bound to a row of the collections table.
func NewCollection[T any](db *DB, name string) *Collection[T] {
	return &Collection[T]{db: db, name: name}
}

const (
	selectBody   = `SELECT body FROM collections WHERE name=$1`
	selectForUpd = `SELECT body FROM collections WHERE name=$1 FOR UPDATE`
	ensureRow    = `INSERT INTO collections (name, body) VALUES ($1, '[]'::jsonb) ON CONFLICT (name) DO NOTHING`
	upsertBody   = `INSERT INTO collections (name, body, updated_at) VALUES ($1, $2, now()) ON CONFLICT (name) DO UPDATE SET body=EXCLUDED.body, updated_at=now()`
	updateBody   = `UPDATE collections SET body=$2, updated_at=now() WHERE name=$1`
)

// Load reads the collection document. A missing row is an empty collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	var body []byte
	err := c.db.Pool.QueryRow(ctx, selectBody, c.name).Scan(&body)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return []T{}, nil
	case err != nil:
		return nil, unavailable("load "+c.name, err)
	}
	return decode[T](c.name, body)
}

// Save replaces the collection document.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	body, err := encode(records)
	if err != nil {
		return err
	}
	_, err = c.db.Pool.Exec(ctx, upsertBody, c.name, body)
	return unavailable("save "+c.name, err)
}

// Update locks the collection row for the duration of fn, so concurrent writers
// (including other processes) are serialized.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) (err error) {
	tx, err := c.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return unavailable("begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = unavailable("commit", e)
		}
	}()

	if _, err = tx.Exec(ctx, ensureRow, c.name); err != nil {
		return unavailable("ensure "+c.name, err)
	}
	var body []byte
	if err = tx.QueryRow(ctx, selectForUpd, c.name).Scan(&body); err != nil {
		return unavailable("lock "+c.name, err)
	}
	cur, err := decode[T](c.name, body)
	if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	out, err := encode(next)
	if err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, updateBody, c.name, out); err != nil {
		return unavailable("update "+c.name, err)
	}
	return nil
}

func decode[T any](name string, body []byte) ([]T, error) {
	out := []T{}
	if len(body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, unavailable("decode "+name, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func encode[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	return b, nil
}

// Store exposes the service's collections backed by one database.
type Store struct {
	users    *Collection[model.User]
	products *Collection[model.Product]
}

// NewStore binds the service collections to db.
func NewStore(db *DB) *Store {
	return &Store{
		users:    NewCollection[model.User](db, UsersCollection),
		products: NewCollection[model.Product](db, ProductsCollection),
	}
}

// Users returns the user collection.
func (s *Store) Users() *Collection[model.User] { return s.users }

// Products returns the product collection.
func (s *Store) Products() *Collection[model.Product] { return s.products }
