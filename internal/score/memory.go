/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package score

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu     sync.RWMutex
	scores map[string]int
	finals map[string]Final
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scores: make(map[string]int),
		finals: make(map[string]Final),
	}
}

func (s *MemoryStore) Get(_ context.Context, player string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[player], nil
}

func (s *MemoryStore) Set(_ context.Context, player string, score int) error {
	if score < 0 {
		return ErrNegativeScore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[player] = score
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, player string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[player]++
	return s.scores[player], nil
}

func (s *MemoryStore) Reset(_ context.Context, player string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scores, player)
	return nil
}

func (s *MemoryStore) SaveFinal(_ context.Context, player string, final Final) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finals[player] = final
	return nil
}

func (s *MemoryStore) Final(_ context.Context, player string) (Final, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	final, ok := s.finals[player]
	return final, ok, nil
}

func (s *MemoryStore) ClearFinal(_ context.Context, player string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.finals, player)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
