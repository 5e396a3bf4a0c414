// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a uniqueness violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthenticated indicates that no bearer credential was presented.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates that a presented credential is invalid or expired.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials indicates an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidInput indicates a malformed request body or field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidRange indicates minPrice > maxPrice.
	ErrInvalidRange = errors.New("invalid price range")

	// ErrPageOutOfBounds indicates a page number past the last page.
	ErrPageOutOfBounds = errors.New("page out of bounds")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrStorageUnavailable indicates that a collection could not be read or written.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
