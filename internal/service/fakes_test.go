package service

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/goph-catalog/internal/limiter"
	"github.com/and161185/goph-catalog/internal/model"
	"github.com/and161185/goph-catalog/internal/repository"
)

// memCollection is an in-memory repository.Collection that copies on every access.
type memCollection[T any] struct {
	mu      sync.Mutex
	recs    []T
	loadErr error
	saveErr error
	saves   int
}

var _ repository.ProductRepository = (*memCollection[model.Product])(nil)

func (m *memCollection[T]) Load(context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *memCollection[T]) loadLocked() ([]T, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]T{}, m.recs...), nil
}

func (m *memCollection[T]) Save(_ context.Context, recs []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(recs)
}

func (m *memCollection[T]) saveLocked(recs []T) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.recs = append([]T{}, recs...)
	return nil
}

func (m *memCollection[T]) Update(_ context.Context, fn func([]T) ([]T, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, err := m.loadLocked()
	if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return m.saveLocked(next)
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

type fakeTokens struct {
	last model.Identity
	err  error
}

func (f *fakeTokens) Issue(id model.Identity) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.last = id
	return "tok-" + id.ID, time.Now().Add(time.Hour), nil
}
