/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package score persists each player's running score and the snapshot
// written when a game ends.
package score

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	EngineMemory = "memory"
	EngineJSON   = "json"
	EngineSQLite = "sqlite"
)

var ErrNegativeScore = errors.New("score cannot be negative")

// Final is the snapshot the results view reads once a game is over. Score is
// the running score, which can span games; Correct counts this game only.
type Final struct {
	Score    int       `json:"score"`
	Correct  int       `json:"correct"`
	Target   int       `json:"target"`
	Answered int       `json:"answered"`
	At       time.Time `json:"at"`
}

// Store is keyed by player ID. A player with no stored score has a score of 0.
type Store interface {
	Get(ctx context.Context, player string) (int, error)
	Set(ctx context.Context, player string, score int) error
	Increment(ctx context.Context, player string) (int, error)
	Reset(ctx context.Context, player string) error

	SaveFinal(ctx context.Context, player string, final Final) error
	Final(ctx context.Context, player string) (Final, bool, error)
	ClearFinal(ctx context.Context, player string) error

	Close() error
}

func NewByEngine(engine string, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineSQLite:
		return NewSQLiteStore(path)
	case EngineJSON:
		return NewJSONStore(path)
	case EngineMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.New("unsupported store engine: " + engine)
	}
}
