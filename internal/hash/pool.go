package hash

import (
	"context"

	"golang.org/x/sync/semaphore"
)

type Hasher interface {
	Hash(ctx context.Context, secret string) (string, error)
	Verify(ctx context.Context, secret, stored string) bool
}

// Pool bounds how many scrypt derivations run at once.
type Pool struct {
	h   *Scrypt
	sem *semaphore.Weighted
}

func NewPool(h *Scrypt, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{h: h, sem: semaphore.NewWeighted(int64(workers))}
}

func (p *Pool) Hash(ctx context.Context, secret string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	return p.h.Hash(secret)
}

// Verify reports false when ctx ends before a worker slot frees up.
func (p *Pool) Verify(ctx context.Context, secret, stored string) bool {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer p.sem.Release(1)

	return p.h.Verify(secret, stored)
}
