/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package round runs one play-through of the guessing game: it lines up
// artworks, takes a guess per artwork, scores it, and records the final
// result.
package round

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Seednode/artquiz/internal/met"
	"github.com/Seednode/artquiz/internal/year"
)

const (
	DefaultCutoff      = 1800
	DefaultTarget      = 19
	DefaultMaxSkips    = 10
	DefaultParallelism = 6
	DefaultQuery       = "sunflower"
)

var (
	// ErrCatalog means the game has nothing to pick from: the department
	// list could not be fetched, or in query mode the opening search failed.
	ErrCatalog          = errors.New("artwork catalog unavailable")
	ErrNotAwaitingGuess = errors.New("not waiting for a guess")
	ErrNotRevealing     = errors.New("no guess to advance from")
)

type Mode string

const (
	ModeCategory Mode = "category"
	ModeQuery    Mode = "query"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCategory, "":
		return ModeCategory, nil
	case ModeQuery:
		return ModeQuery, nil
	}
	return "", fmt.Errorf("invalid mode %q (must be %q or %q)", s, ModeCategory, ModeQuery)
}

type State int

const (
	Loading State = iota
	AwaitingGuess
	Revealing
	Finished
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case AwaitingGuess:
		return "awaiting_guess"
	case Revealing:
		return "revealing"
	case Finished:
		return "finished"
	}
	return "unknown"
}

type Guess int

const (
	Before Guess = iota + 1
	AtOrAfter
)

func ParseGuess(s string) (Guess, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "before":
		return Before, nil
	case "after", "at_or_after":
		return AtOrAfter, nil
	}
	return 0, fmt.Errorf("invalid guess %q", s)
}

func (g Guess) String() string {
	switch g {
	case Before:
		return "before"
	case AtOrAfter:
		return "after"
	}
	return "unknown"
}

type Config struct {
	Mode        Mode
	Query       string
	Target      int
	Cutoff      int
	MaxSkips    int
	Parallelism int
}

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeCategory
	}
	if c.Mode == ModeQuery && strings.TrimSpace(c.Query) == "" {
		c.Query = DefaultQuery
	}
	if c.Target <= 0 {
		c.Target = DefaultTarget
	}
	// 0 means unset; the command line rejects it as a cutoff.
	if c.Cutoff == 0 {
		c.Cutoff = DefaultCutoff
	}
	if c.MaxSkips < 0 {
		c.MaxSkips = 0
	}
	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
	return c
}

// Slot is one position in the round sequence. Artwork stays nil when
// nothing displayable was found for it.
type Slot struct {
	Category met.Department
	Artwork  *met.Object

	probed bool
	err    error
}

// Verdict is the outcome of a single guess.
type Verdict struct {
	Guess   Guess
	Year    year.Year
	RawDate string
	Correct bool
}

// Snapshot is a copy of the controller state, safe to hand to a renderer.
type Snapshot struct {
	State    State
	Mode     Mode
	Position int
	Slots    int
	Answered int
	Target   int
	Correct  int
	Score    int
	Cutoff   int

	Category string
	Artwork  *met.Object
	Verdict  *Verdict

	Notes []string
	Err   string
}
