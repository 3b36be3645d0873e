/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package score

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

type fileState struct {
	Scores map[string]int   `json:"scores"`
	Finals map[string]Final `json:"finals"`
}

type JSONStore struct {
	filePath string
	mu       sync.RWMutex
	state    fileState
}

func NewJSONStore(filePath string) (*JSONStore, error) {
	s := &JSONStore{
		filePath: filePath,
		state: fileState{
			Scores: make(map[string]int),
			Finals: make(map[string]Final),
		},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) Get(_ context.Context, player string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Scores[player], nil
}

func (s *JSONStore) Set(_ context.Context, player string, score int) error {
	if score < 0 {
		return ErrNegativeScore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Scores[player] = score
	return s.persistLocked()
}

func (s *JSONStore) Increment(_ context.Context, player string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Scores[player]++
	if err := s.persistLocked(); err != nil {
		s.state.Scores[player]--
		return 0, err
	}
	return s.state.Scores[player], nil
}

func (s *JSONStore) Reset(_ context.Context, player string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.Scores, player)
	return s.persistLocked()
}

func (s *JSONStore) SaveFinal(_ context.Context, player string, final Final) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Finals[player] = final
	return s.persistLocked()
}

func (s *JSONStore) Final(_ context.Context, player string) (Final, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	final, ok := s.state.Finals[player]
	return final, ok, nil
}

func (s *JSONStore) ClearFinal(_ context.Context, player string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.Finals, player)
	return s.persistLocked()
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.Scores == nil {
		state.Scores = make(map[string]int)
	}
	if state.Finals == nil {
		state.Finals = make(map[string]Final)
	}
	s.state = state
	return nil
}

func (s *JSONStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}
