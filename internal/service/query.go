package service

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/and161185/goph-catalog/internal/errs"
	"github.com/and161185/goph-catalog/internal/model"
)

// Listing defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageOutOfBoundsError reports a page past the last one. It matches errs.ErrPageOutOfBounds.
type PageOutOfBoundsError struct {
	Page       int
	TotalPages int
}

func (e *PageOutOfBoundsError) Error() string {
	return fmt.Sprintf("Page %d is out of bounds. There are only %d pages.", e.Page, e.TotalPages)
}

func (e *PageOutOfBoundsError) Unwrap() error { return errs.ErrPageOutOfBounds }

// ParseProductQuery normalizes raw listing parameters. Numbers are read from the
// longest numeric prefix, so "2.5" reads as page 2 and "10abc" as price 10.
// Price bounds without a numeric prefix are dropped; page and limit fall back to
// their defaults when missing, unparseable or zero, and are raised to 1 when negative.
func ParseProductQuery(name, minPrice, maxPrice, page, limit string) model.ProductQuery {
	return model.ProductQuery{
		Name:     name,
		MinPrice: parseBound(minPrice),
		MaxPrice: parseBound(maxPrice),
		Page:     parseCount(page, DefaultPage),
		Limit:    parseCount(limit, DefaultLimit),
	}
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

func parseBound(s string) *float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	if math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseCount(s string, def int) int {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return def
	}
	// out of range values come back clamped to the int bounds
	n, err := strconv.ParseInt(m, 10, 0)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return def
	}
	if n == 0 {
		return def
	}
	return max(1, int(n))
}

// FilterProducts keeps products matching the name and price filters, preserving order.
// An inverted price range is reported after filtering has run.
func FilterProducts(all []model.Product, q model.ProductQuery) ([]model.Product, error) {
	out := all
	if q.Name != "" {
		needle := strings.ToLower(q.Name)
		out = keep(out, func(p model.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), needle)
		})
	}
	if q.MinPrice != nil {
		lo := *q.MinPrice
		out = keep(out, func(p model.Product) bool { return p.Price >= lo })
	}
	if q.MaxPrice != nil {
		hi := *q.MaxPrice
		out = keep(out, func(p model.Product) bool { return p.Price <= hi })
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, fmt.Errorf("%w: minPrice cannot be greater than maxPrice", errs.ErrInvalidRange)
	}
	return out, nil
}

func keep(ps []model.Product, pred func(model.Product) bool) []model.Product {
	out := make([]model.Product, 0, len(ps))
	for _, p := range ps {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// Paginate returns the requested page of filtered. Page and limit must be >= 1.
// Any page past the last one, including page 1 of an empty result, is out of bounds.
func Paginate(filtered []model.Product, page, limit int) (model.ProductPage, error) {
	total := len(filtered)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	if page > totalPages {
		return model.ProductPage{}, &PageOutOfBoundsError{Page: page, TotalPages: totalPages}
	}
	start := (page - 1) * limit
	end := min(start+limit, total)
	return model.ProductPage{
		TotalProducts: total,
		Page:          page,
		Limit:         limit,
		TotalPages:    totalPages,
		Data:          filtered[start:end],
	}, nil
}
