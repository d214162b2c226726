package credstore

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store. It backs tests and embedders that manage
// their own persistence; the pipeline takes the Store interface precisely
// so this fake can substitute for the durable backends.
type MemStore struct {
	mu   sync.Mutex
	pair *TokenPair
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load(ctx context.Context) (*TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pair == nil {
		return nil, nil //nolint:nilnil // sentinel for "not logged in"
	}

	cp := *s.pair

	return &cp, nil
}

func (s *MemStore) Save(ctx context.Context, pair TokenPair) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = &pair

	return nil
}

func (s *MemStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = nil

	return nil
}
