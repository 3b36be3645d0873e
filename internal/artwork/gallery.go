/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package artwork

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Seednode/artquiz/internal/met"
)

const (
	DefaultGalleryLimit       = 24
	DefaultGalleryParallelism = 6
)

// Gallery runs a free-text search and loads up to limit of the matching
// records, at most parallelism at a time. Every record is loaded before
// anything is returned, and the result keeps search order no matter which
// request finishes first. Records that fail to load are left out.
func Gallery(ctx context.Context, collection Collection, query string, limit, parallelism int) ([]met.Object, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultGalleryLimit
	}
	if parallelism <= 0 {
		parallelism = DefaultGalleryParallelism
	}

	ids, err := collection.Search(ctx, met.SearchParams{Query: query, HasImages: true})
	if err != nil {
		return nil, err
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	loaded := make([]*met.Object, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			obj, err := collection.Object(gctx, id)
			if err != nil {
				return nil
			}
			loaded[i] = &obj
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]met.Object, 0, len(loaded))
	for _, obj := range loaded {
		if obj != nil {
			out = append(out, *obj)
		}
	}

	return out, nil
}
