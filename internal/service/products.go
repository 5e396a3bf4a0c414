package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/goph-catalog/internal/errs"
	"github.com/and161185/goph-catalog/internal/model"
	"github.com/and161185/goph-catalog/internal/repository"
)

// ProductService defines catalog queries and mutations.
type ProductService interface {
	// List filters and paginates the catalog.
	List(ctx context.Context, q model.ProductQuery) (model.ProductPage, error)
	// Get returns a single product by ID.
	Get(ctx context.Context, id string) (model.Product, error)
	// Create stores a new product under a fresh ID.
	Create(ctx context.Context, in model.NewProduct) (model.Product, error)
	// Update merges patch onto an existing product.
	Update(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error)
	// Delete removes a product.
	Delete(ctx context.Context, id string) error
	// DeleteMany removes every product whose ID is listed and reports how many were removed.
	DeleteMany(ctx context.Context, ids []string) (int, error)
}

// ProductValidator vets a product before it is persisted.
type ProductValidator func(p model.Product) error

// NonNegative rejects empty names and negative prices or quantities.
func NonNegative(p model.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", errs.ErrInvalidInput)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", errs.ErrInvalidInput)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", errs.ErrInvalidInput)
	}
	return nil
}

type ProductServiceImpl struct {
	repo     repository.ProductRepository
	validate ProductValidator
	newID    func() (uuid.UUID, error)
}

// ProductOption customizes a ProductServiceImpl.
type ProductOption func(*ProductServiceImpl)

// WithValidator enables field validation on create and update.
func WithValidator(v ProductValidator) ProductOption {
	return func(s *ProductServiceImpl) { s.validate = v }
}

// NewProductService constructs ProductService over the product collection.
func NewProductService(repo repository.ProductRepository, opts ...ProductOption) *ProductServiceImpl {
	s := &ProductServiceImpl{repo: repo, newID: uuid.NewV4}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List loads the collection, filters it and returns the requested page.
func (s *ProductServiceImpl) List(ctx context.Context, q model.ProductQuery) (model.ProductPage, error) {
	if q.Page < 1 || q.Limit < 1 {
		return model.ProductPage{}, fmt.Errorf("%w: page and limit must be positive", errs.ErrInvalidInput)
	}
	all, err := s.repo.Load(ctx)
	if err != nil {
		return model.ProductPage{}, err
	}
	filtered, err := FilterProducts(all, q)
	if err != nil {
		return model.ProductPage{}, err
	}
	return Paginate(filtered, q.Page, q.Limit)
}

// Get finds a product by exact ID.
func (s *ProductServiceImpl) Get(ctx context.Context, id string) (model.Product, error) {
	all, err := s.repo.Load(ctx)
	if err != nil {
		return model.Product{}, err
	}
	if i := indexOf(all, id); i >= 0 {
		return all[i], nil
	}
	return model.Product{}, errs.ErrNotFound
}

// Create assigns a random v4 UUID and appends the product.
func (s *ProductServiceImpl) Create(ctx context.Context, in model.NewProduct) (model.Product, error) {
	id, err := s.newID()
	if err != nil {
		return model.Product{}, err
	}
	p := model.Product{ID: id.String(), Name: in.Name, Price: in.Price, Quantity: in.Quantity}
	if s.validate != nil {
		if err := s.validate(p); err != nil {
			return model.Product{}, err
		}
	}
	err = s.repo.Update(ctx, func(all []model.Product) ([]model.Product, error) {
		return append(all, p), nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// Update applies patch to the product stored under id.
func (s *ProductServiceImpl) Update(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error) {
	var out model.Product
	err := s.repo.Update(ctx, func(all []model.Product) ([]model.Product, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, errs.ErrNotFound
		}
		merged := patch.Apply(all[i])
		if s.validate != nil {
			if err := s.validate(merged); err != nil {
				return nil, err
			}
		}
		all[i] = merged
		out = merged
		return all, nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

// Delete removes the product stored under id.
func (s *ProductServiceImpl) Delete(ctx context.Context, id string) error {
	return s.repo.Update(ctx, func(all []model.Product) ([]model.Product, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, errs.ErrNotFound
		}
		return slices.Delete(all, i, i+1), nil
	})
}

// DeleteMany removes all listed IDs in one pass. Unknown IDs are skipped;
// errs.ErrNotFound is returned only when nothing was removed.
func (s *ProductServiceImpl) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if ids == nil {
		return 0, fmt.Errorf("%w: IDs should be an array", errs.ErrInvalidInput)
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	removed := 0
	err := s.repo.Update(ctx, func(all []model.Product) ([]model.Product, error) {
		kept := slices.DeleteFunc(all, func(p model.Product) bool {
			_, ok := drop[p.ID]
			return ok
		})
		removed = len(all) - len(kept)
		if removed == 0 {
			return nil, errs.ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func indexOf(ps []model.Product, id string) int {
	return slices.IndexFunc(ps, func(p model.Product) bool { return p.ID == id })
}
