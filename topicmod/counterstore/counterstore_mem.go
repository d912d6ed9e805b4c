package counterstore

import (
	"context"
	"sync"
)

type MemCounterStore struct {
	lk       sync.Mutex
	counters map[string]Counter
}

func NewMemCounterStore() *MemCounterStore {
	return &MemCounterStore{
		counters: make(map[string]Counter),
	}
}

func (s *MemCounterStore) Get(ctx context.Context, chatID string) (Counter, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.counters[chatID], nil
}

func (s *MemCounterStore) Apply(ctx context.Context, chatID string, fn func(*Counter)) (Counter, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	c := s.counters[chatID]
	fn(&c)
	s.counters[chatID] = c
	return c, nil
}

func (s *MemCounterStore) ResetAll(ctx context.Context) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.counters = make(map[string]Counter)
	return nil
}
