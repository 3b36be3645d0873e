/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package artwork picks a displayable artwork out of a collection search.
package artwork

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Seednode/artquiz/internal/met"
)

const DefaultMaxAttempts = 20

// Collection is the subset of the museum API the fetcher needs.
type Collection interface {
	Search(ctx context.Context, p met.SearchParams) ([]int, error)
	Object(ctx context.Context, id int) (met.Object, error)
}

// Criterion selects candidates either by department or by free-text query.
type Criterion struct {
	DepartmentID int
	Query        string
}

func (c Criterion) String() string {
	if c.DepartmentID > 0 {
		return fmt.Sprintf("department %d", c.DepartmentID)
	}
	return fmt.Sprintf("query %q", c.Query)
}

// ProbeFunc is called for every candidate that was fetched but rejected, or
// that failed to fetch.
type ProbeFunc func(id int, err error)

type Fetcher struct {
	collection  Collection
	maxAttempts int
	shuffle     func(n int, swap func(i, j int))
	onProbe     ProbeFunc
}

type Option func(*Fetcher)

// WithShuffle replaces the default uniform shuffle.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(f *Fetcher) {
		f.shuffle = shuffle
	}
}

func WithProbeFunc(fn ProbeFunc) Option {
	return func(f *Fetcher) {
		f.onProbe = fn
	}
}

func NewFetcher(collection Collection, maxAttempts int, opts ...Option) *Fetcher {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	f := &Fetcher{
		collection:  collection,
		maxAttempts: maxAttempts,
		shuffle:     rand.Shuffle,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *Fetcher) MaxAttempts() int {
	return f.maxAttempts
}

// Find returns the first candidate matching c that has an image, or nil when
// nothing usable turned up within the attempt budget. Only a failed search
// is reported as an error; failed probes just move on to the next candidate.
// Candidates for which skip returns true are not probed and do not use up an
// attempt.
func (f *Fetcher) Find(ctx context.Context, c Criterion, skip func(id int) bool) (*met.Object, error) {
	ids, err := f.collection.Search(ctx, met.SearchParams{
		Query:        c.Query,
		DepartmentID: c.DepartmentID,
		HasImages:    true,
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	candidates := make([]int, len(ids))
	copy(candidates, ids)
	f.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	attempts := 0
	for _, id := range candidates {
		if attempts >= f.maxAttempts {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if skip != nil && skip(id) {
			continue
		}
		attempts++

		obj, err := f.collection.Object(ctx, id)
		if err != nil {
			f.probed(id, err)
			continue
		}
		if obj.ImageURL() == "" {
			f.probed(id, nil)
			continue
		}

		return &obj, nil
	}

	return nil, nil
}

func (f *Fetcher) probed(id int, err error) {
	if f.onProbe != nil {
		f.onProbe(id, err)
	}
}
