// Package model defines domain entities used by services and repositories.
package model

import "time"

// User represents an account stored on the server. The password is never stored in plaintext.
type User struct {
	ID       string `json:"id"`       // uuid v4
	Username string `json:"username"` // unique
	PwdHash  string `json:"password"` // bcrypt(password)
}

// Identity is the claim set carried by an access token.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Tokens collects an issued access token and its expiry.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // for diagnostics and the CLI token cache
}

// Product is a single catalog record.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// NewProduct carries client-supplied fields for a product being created.
type NewProduct struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
}

// Apply merges the patch onto p. The id of p is never changed.
func (pp ProductPatch) Apply(p Product) Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Quantity != nil {
		p.Quantity = *pp.Quantity
	}
	return p
}

// ProductQuery is a normalized listing request.
type ProductQuery struct {
	Name     string   // case-insensitive substring, empty means no filter
	MinPrice *float64 // inclusive
	MaxPrice *float64 // inclusive
	Page     int      // 1-based, >= 1
	Limit    int      // >= 1
}

// ProductPage is one page of a filtered listing.
type ProductPage struct {
	TotalProducts int       `json:"totalProducts"`
	Page          int       `json:"page"`
	Limit         int       `json:"limit"`
	TotalPages    int       `json:"totalPages"`
	Data          []Product `json:"data"`
}
