// Package service contains application services for authentication and products.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/goph-catalog/internal/crypto"
	"github.com/and161185/goph-catalog/internal/errs"
	"github.com/and161185/goph-catalog/internal/limiter"
	"github.com/and161185/goph-catalog/internal/model"
	"github.com/and161185/goph-catalog/internal/repository"
)

// AuthService defines registration and login.
type AuthService interface {
	// Register creates a new user with secure password hashing. No token is issued.
	Register(ctx context.Context, username, password string) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(id model.Identity) (string, time.Time, error)
}

type AuthServiceImpl struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	lim        limiter.Limiter
	bcryptCost int
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, lim limiter.Limiter, bcryptCost int) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, lim: lim, bcryptCost: bcryptCost}
}

// Register creates a new user record. A taken username yields errs.ErrAlreadyExists.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: empty username/password", errs.ErrInvalidInput)
	}
	// Create re-checks under the collection lock
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return "", errs.ErrAlreadyExists
	} else if !errors.Is(err, errs.ErrNotFound) {
		return "", err
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	hash, err := pkgcrypto.HashPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{ID: uid.String(), Username: username, PwdHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

// LoginWithIP authenticates with rate limiting by (username, ip).
// Unknown usernames and wrong passwords both yield errs.ErrInvalidCredentials.
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, err
	}
	if !allowed {
		return model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.PwdHash) {
		// Record failure; a reached threshold means rate-limited.
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Tokens{}, errs.ErrRateLimited
		}
		return model.Tokens{}, errs.ErrInvalidCredentials
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, username, ipHash)

	access, exp, err := s.tokens.Issue(model.Identity{ID: u.ID, Username: u.Username})
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, nil
}
