// Package memory disponibiliza um storage em memória, usado por padrão e em testes.
package memory

import (
	"context"
	"sync"

	"github.com/dgeene/comment-limiter/internal/core/ports"
)

type Storage struct {
	mu     sync.Mutex
	counts map[string]int64
}

var _ ports.Storage = (*Storage)(nil)

func New() *Storage {
	return &Storage{counts: make(map[string]int64)}
}

func (s *Storage) Count(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key], nil
}

func (s *Storage) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}
