package repository

import "github.com/and161185/goph-catalog/internal/model"

// ProductRepository is the product collection.
type ProductRepository = Collection[model.Product]
