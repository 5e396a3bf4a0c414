package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/and161185/goph-catalog/internal/errs"
	"github.com/and161185/goph-catalog/internal/model"
)

func ptr(f float64) *float64 { return &f }

func TestParseProductQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		min, max, page, lim string
		wantMin, wantMax    *float64
		wantPage, wantLimit int
	}{
		{name: "defaults", wantPage: 1, wantLimit: 10},
		{name: "numbers", min: "10", max: "20.5", page: "3", lim: "5", wantMin: ptr(10), wantMax: ptr(20.5), wantPage: 3, wantLimit: 5},
		{name: "garbage ignored", min: "cheap", max: "NaN", page: "x", lim: "y", wantPage: 1, wantLimit: 10},
		{name: "infinity ignored", min: "-Inf", max: "+Inf", wantPage: 1, wantLimit: 10},
		{name: "negative clamped", page: "-4", lim: "-1", wantPage: 1, wantLimit: 1},
		{name: "zero uses default", page: "0", lim: "0", wantPage: 1, wantLimit: 10},
		{name: "whitespace", min: " 1 ", page: " 2 ", wantMin: ptr(1), wantPage: 2, wantLimit: 10},
		{name: "numeric prefix", min: "10abc", max: "1e2x", page: "2.5", lim: "7 items", wantMin: ptr(10), wantMax: ptr(100), wantPage: 2, wantLimit: 7},
		{name: "fraction prefix", min: ".5", max: "-3.", page: "-3.5", lim: "0.9", wantMin: ptr(0.5), wantMax: ptr(-3), wantPage: 1, wantLimit: 10},
		{name: "exponent is not an int", lim: "1e3", wantPage: 1, wantLimit: 1},
		{name: "overflowing page clamped", page: "99999999999999999999999", wantPage: math.MaxInt, wantLimit: 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := ParseProductQuery("", tc.min, tc.max, tc.page, tc.lim)
			if !eqPtr(q.MinPrice, tc.wantMin) || !eqPtr(q.MaxPrice, tc.wantMax) {
				t.Fatalf("bounds: got (%v,%v)", fmtPtr(q.MinPrice), fmtPtr(q.MaxPrice))
			}
			if q.Page != tc.wantPage || q.Limit != tc.wantLimit {
				t.Fatalf("page/limit: got %d/%d, want %d/%d", q.Page, q.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func eqPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr(p *float64) string {
	if p == nil {
		return "nil"
	}
	return fmt.Sprint(*p)
}

func TestFilterProducts_Example(t *testing.T) {
	t.Parallel()

	all := []model.Product{
		{ID: "1", Name: "A", Price: 5},
		{ID: "2", Name: "B", Price: 15},
		{ID: "3", Name: "AB", Price: 25},
	}
	got, err := FilterProducts(all, ParseProductQuery("A", "10", "", "", ""))
	if err != nil {
		t.Fatalf("FilterProducts: %v", err)
	}
	if len(got) != 1 || got[0].Name != "AB" || got[0].Price != 25 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFilterProducts_NameIsCaseInsensitiveSubset(t *testing.T) {
	t.Parallel()

	all := []model.Product{
		{ID: "1", Name: "Desk Lamp"},
		{ID: "2", Name: "LAMPSHADE"},
		{ID: "3", Name: "Chair"},
		{ID: "4", Name: "floor lamp"},
	}
	got, err := FilterProducts(all, model.ProductQuery{Name: "lAmP"})
	if err != nil {
		t.Fatalf("FilterProducts: %v", err)
	}
	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	if strings.Join(ids, ",") != "1,2,4" {
		t.Fatalf("ids=%v, want 1,2,4 in original order", ids)
	}
	for _, p := range all {
		in := strings.Contains(strings.ToLower(p.Name), "lamp")
		found := false
		for _, g := range got {
			found = found || g.ID == p.ID
		}
		if in != found {
			t.Fatalf("product %s: match=%v returned=%v", p.ID, in, found)
		}
	}
}

func TestFilterProducts_ClosedPriceInterval(t *testing.T) {
	t.Parallel()

	all := []model.Product{
		{ID: "1", Price: 9.99}, {ID: "2", Price: 10}, {ID: "3", Price: 15}, {ID: "4", Price: 20}, {ID: "5", Price: 20.01},
	}
	got, err := FilterProducts(all, model.ProductQuery{MinPrice: ptr(10), MaxPrice: ptr(20)})
	if err != nil {
		t.Fatalf("FilterProducts: %v", err)
	}
	if len(got) != 3 || got[0].ID != "2" || got[2].ID != "4" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

// The range check runs after filtering with the inverted bounds; the filtered
// result is discarded and only the error is returned.
func TestFilterProducts_InvertedRangeErrorsAfterFiltering(t *testing.T) {
	t.Parallel()

	all := []model.Product{{ID: "1", Price: 5}}
	got, err := FilterProducts(all, model.ProductQuery{MinPrice: ptr(20), MaxPrice: ptr(10)})
	if !errors.Is(err, errs.ErrInvalidRange) {
		t.Fatalf("want ErrInvalidRange, got %v", err)
	}
	if got != nil {
		t.Fatalf("filtered result must be discarded, got %+v", got)
	}
	if !strings.Contains(err.Error(), "minPrice cannot be greater than maxPrice") {
		t.Fatalf("message: %v", err)
	}
}

func TestFilterProducts_EqualBoundsAllowed(t *testing.T) {
	t.Parallel()

	all := []model.Product{{ID: "1", Price: 5}, {ID: "2", Price: 6}}
	got, err := FilterProducts(all, model.ProductQuery{MinPrice: ptr(5), MaxPrice: ptr(5)})
	if err != nil || len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("got=%+v err=%v", got, err)
	}
}

func makeProducts(n int) []model.Product {
	out := make([]model.Product, n)
	for i := range out {
		out[i] = model.Product{ID: fmt.Sprintf("p%02d", i), Name: fmt.Sprintf("item %d", i), Price: float64(i)}
	}
	return out
}

func TestPaginate_CoversEveryElementOnce(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 9, 10, 11, 23} {
		for _, limit := range []int{1, 3, 10, 50} {
			all := makeProducts(n)
			first, err := Paginate(all, 1, limit)
			if err != nil {
				t.Fatalf("n=%d limit=%d: %v", n, limit, err)
			}
			wantPages := (n + limit - 1) / limit
			if first.TotalPages != wantPages || first.TotalProducts != n {
				t.Fatalf("n=%d limit=%d: totals %d/%d", n, limit, first.TotalProducts, first.TotalPages)
			}

			var seen []model.Product
			for p := 1; p <= first.TotalPages; p++ {
				page, err := Paginate(all, p, limit)
				if err != nil {
					t.Fatalf("page %d: %v", p, err)
				}
				if page.Page != p || page.Limit != limit {
					t.Fatalf("echo mismatch: %+v", page)
				}
				seen = append(seen, page.Data...)
			}
			if len(seen) != n {
				t.Fatalf("n=%d limit=%d: concatenated %d", n, limit, len(seen))
			}
			for i := range seen {
				if seen[i].ID != all[i].ID {
					t.Fatalf("order broken at %d: %s vs %s", i, seen[i].ID, all[i].ID)
				}
			}
		}
	}
}

func TestPaginate_OutOfBounds(t *testing.T) {
	t.Parallel()

	_, err := Paginate(makeProducts(25), 4, 10)
	var pe *PageOutOfBoundsError
	if !errors.As(err, &pe) || !errors.Is(err, errs.ErrPageOutOfBounds) {
		t.Fatalf("want PageOutOfBoundsError, got %v", err)
	}
	if pe.TotalPages != 3 || pe.Page != 4 {
		t.Fatalf("unexpected error fields: %+v", pe)
	}
	if err.Error() != "Page 4 is out of bounds. There are only 3 pages." {
		t.Fatalf("message: %q", err.Error())
	}
}

func TestPaginate_EmptyResultIsOutOfBounds(t *testing.T) {
	t.Parallel()

	_, err := Paginate(nil, 1, 10)
	var pe *PageOutOfBoundsError
	if !errors.As(err, &pe) || pe.TotalPages != 0 {
		t.Fatalf("want out of bounds with 0 pages, got %v", err)
	}
}

func TestPaginate_HugeLimit(t *testing.T) {
	t.Parallel()

	page, err := Paginate(makeProducts(3), 1, int(^uint(0)>>1))
	if err != nil || page.TotalPages != 1 || len(page.Data) != 3 {
		t.Fatalf("page=%+v err=%v", page, err)
	}
}
