package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/and161185/goph-catalog/internal/errs"
	"github.com/and161185/goph-catalog/internal/model"
	"github.com/and161185/goph-catalog/internal/repository"
)

var _ repository.Collection[model.User] = (*Collection[model.User])(nil)

var _ repository.ProductRepository = (*Collection[model.Product])(nil)

func TestCollection_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	c := NewCollection[model.Product](filepath.Join(t.TempDir(), "products.json"))
	got, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestCollection_UpdateWritesIndentedArray(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "products.json")
	c := NewCollection[model.Product](path)
	ctx := context.Background()

	err := c.Update(ctx, func(ps []model.Product) ([]model.Product, error) {
		return append(ps, model.Product{ID: "p1", Name: "Lamp", Price: 9.5, Quantity: 2}), nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(raw), "[\n  {\n    \"id\": \"p1\"") {
		t.Fatalf("unexpected layout:\n%s", raw)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind: %v", err)
	}

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Lamp" || got[0].Quantity != 2 {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestCollection_UpdateErrorLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "users.json")
	c := NewCollection[model.User](path)
	ctx := context.Background()

	if err := c.Save(ctx, []model.User{{ID: "1", Username: "alice", PwdHash: "h"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, _ := os.ReadFile(path)

	boom := errors.New("boom")
	err := c.Update(ctx, func(us []model.User) ([]model.User, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want fn error returned unchanged, got %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatalf("file changed after aborted update")
	}
}

func TestCollection_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	t.Parallel()

	c := NewCollection[model.Product](filepath.Join(t.TempDir(), "products.json"))
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Update(ctx, func(ps []model.Product) ([]model.Product, error) {
				return append(ps, model.Product{Name: "x"}), nil
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != n {
		t.Fatalf("lost updates: got %d records, want %d", len(got), n)
	}
}

func TestCollection_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c := NewCollection[model.Product](path)
	if _, err := c.Load(context.Background()); !errors.Is(err, errs.ErrStorageUnavailable) {
		t.Fatalf("want ErrStorageUnavailable, got %v", err)
	}
}

func TestCollection_CanceledContext(t *testing.T) {
	t.Parallel()

	c := NewCollection[model.Product](filepath.Join(t.TempDir(), "products.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load: want context.Canceled, got %v", err)
	}
	called := false
	err := c.Update(ctx, func(ps []model.Product) ([]model.Product, error) {
		called = true
		return ps, nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("Update: err=%v called=%v", err, called)
	}
}

func TestOpen_CreatesDirAndFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("data dir not created: %v", err)
	}
	if s.Users().Path() != filepath.Join(dir, "users.json") {
		t.Fatalf("users path: %s", s.Users().Path())
	}
	if s.Products().Path() != filepath.Join(dir, "products.json") {
		t.Fatalf("products path: %s", s.Products().Path())
	}
}

func TestCollection_LoadsFractionalQuantity(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "products.json")
	raw := `[{"id":"p1","name":"Rope","price":3,"quantity":2.5}]`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := NewCollection[model.Product](path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Quantity != 2.5 {
		t.Fatalf("unexpected records: %+v", got)
	}
}
