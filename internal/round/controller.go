/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package round

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Seednode/artquiz/internal/artwork"
	"github.com/Seednode/artquiz/internal/met"
	"github.com/Seednode/artquiz/internal/score"
	"github.com/Seednode/artquiz/internal/year"
)

// Finder is satisfied by *artwork.Fetcher.
type Finder interface {
	Find(ctx context.Context, c artwork.Criterion, skip func(id int) bool) (*met.Object, error)
}

// CategorySource is satisfied by *met.Client.
type CategorySource interface {
	Departments(ctx context.Context) ([]met.Department, error)
}

// SkipFunc is told about every slot that ends up without an artwork. err is
// nil when the search worked but found nothing usable.
type SkipFunc func(position int, c artwork.Criterion, err error)

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithSkipFunc(fn SkipFunc) Option {
	return func(c *Controller) {
		c.onSkip = fn
	}
}

// Controller is not safe for concurrent use. Callers run one operation at a
// time and only read Snapshot between operations.
type Controller struct {
	cfg        Config
	finder     Finder
	categories CategorySource
	store      score.Store
	player     string
	now        func() time.Time
	onSkip     SkipFunc

	state    State
	slots    []Slot
	pos      int
	answered int
	correct  int
	score    int
	current  *met.Object
	verdict  *Verdict
	notes    []string
	errMsg   string
	seen     map[int]bool
}

func New(cfg Config, finder Finder, categories CategorySource, store score.Store, player string, opts ...Option) *Controller {
	c := &Controller{
		cfg:        cfg.withDefaults(),
		finder:     finder,
		categories: categories,
		store:      store,
		player:     player,
		now:        time.Now,
		state:      Loading,
		seen:       make(map[int]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	return c.state
}

// Start lines up the slots for a game and loads the first one. An error
// wrapping ErrCatalog is fatal: the game can't be played and Snapshot
// carries a message for the player.
func (c *Controller) Start(ctx context.Context) error {
	c.state = Loading

	if n, err := c.store.Get(ctx, c.player); err == nil {
		c.score = n
	}

	switch c.cfg.Mode {
	case ModeQuery:
		c.slots = make([]Slot, c.cfg.Target+c.cfg.MaxSkips)
	default:
		if err := c.prefetchCategories(ctx); err != nil {
			return err
		}
	}

	if c.cfg.Target > len(c.slots) {
		c.cfg.Target = len(c.slots)
	}

	return c.Load(ctx)
}

func (c *Controller) prefetchCategories(ctx context.Context) error {
	departments, err := c.categories.Departments(ctx)
	if err != nil {
		c.errMsg = met.UserMessage(err)
		return fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	if len(departments) == 0 {
		c.errMsg = "No artwork categories are available right now. Please try again later."
		return fmt.Errorf("%w: no departments", ErrCatalog)
	}

	found := make([]*met.Object, len(departments))
	failures := make([]error, len(departments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Parallelism)
	for i, d := range departments {
		i, d := i, d
		g.Go(func() error {
			found[i], failures[i] = c.finder.Find(gctx, artwork.Criterion{DepartmentID: d.ID}, nil)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	c.slots = make([]Slot, len(departments))
	for i, d := range departments {
		c.slots[i] = Slot{Category: d, Artwork: found[i], probed: true, err: failures[i]}
	}

	return nil
}

// Load fills the current position, skipping slots that have no artwork.
// Skipped slots don't count as rounds. Running out of slots ends the game.
func (c *Controller) Load(ctx context.Context) error {
	c.state = Loading
	c.current = nil
	c.verdict = nil

	for ; c.pos < len(c.slots); c.pos++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		slot := &c.slots[c.pos]
		if !slot.probed {
			obj, err := c.finder.Find(ctx, c.criterion(slot), c.alreadySeen)
			slot.probed = true
			if err != nil && c.answered == 0 && len(c.seen) == 0 {
				c.errMsg = met.UserMessage(err)
				return fmt.Errorf("%w: %w", ErrCatalog, err)
			}
			slot.Artwork, slot.err = obj, err
		}

		obj := slot.Artwork
		if obj == nil || obj.ImageURL() == "" || c.seen[obj.ID] {
			c.notes = append(c.notes, skipNote(slot))
			c.skipped(c.pos, c.criterion(slot), slot.err)
			continue
		}

		c.seen[obj.ID] = true
		c.current = obj
		c.state = AwaitingGuess
		return nil
	}

	return c.finish(ctx)
}

// Guess scores g against the current artwork. The round counts even when the
// year is unknown, in which case the guess is always wrong. A non-nil error
// alongside a verdict means the score could not be persisted.
func (c *Controller) Guess(ctx context.Context, g Guess) (Verdict, error) {
	if c.state != AwaitingGuess || c.current == nil {
		return Verdict{}, ErrNotAwaitingGuess
	}
	if g != Before && g != AtOrAfter {
		return Verdict{}, fmt.Errorf("invalid guess %d", g)
	}

	y := year.Of(*c.current)
	v := Verdict{
		Guess:   g,
		Year:    y,
		RawDate: c.current.ObjectDate,
		Correct: y.Known && (g == Before) == y.Before(c.cfg.Cutoff),
	}

	c.answered++
	c.verdict = &v
	c.state = Revealing
	c.notes = nil

	if !v.Correct {
		return v, nil
	}

	c.correct++
	n, err := c.store.Increment(ctx, c.player)
	if err != nil {
		c.score++
		return v, fmt.Errorf("persist score: %w", err)
	}
	c.score = n

	return v, nil
}

// Advance leaves the reveal: either the target has been reached and the game
// finishes, or the next slot is loaded.
func (c *Controller) Advance(ctx context.Context) error {
	if c.state != Revealing {
		return ErrNotRevealing
	}

	c.notes = nil

	if c.answered >= c.cfg.Target {
		return c.finish(ctx)
	}

	c.pos++
	return c.Load(ctx)
}

func (c *Controller) finish(ctx context.Context) error {
	c.current = nil
	c.state = Finished

	final := c.score
	if n, err := c.store.Get(ctx, c.player); err == nil {
		final = n
	}

	err := c.store.SaveFinal(ctx, c.player, score.Final{
		Score:    final,
		Correct:  c.correct,
		Target:   c.cfg.Target,
		Answered: c.answered,
		At:       c.now(),
	})
	if err != nil {
		return fmt.Errorf("save final score: %w", err)
	}

	return nil
}

func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:    c.state,
		Mode:     c.cfg.Mode,
		Position: c.pos,
		Slots:    len(c.slots),
		Answered: c.answered,
		Target:   c.cfg.Target,
		Correct:  c.correct,
		Score:    c.score,
		Cutoff:   c.cfg.Cutoff,
		Err:      c.errMsg,
	}

	if c.current != nil {
		obj := *c.current
		s.Artwork = &obj
		if c.pos < len(c.slots) {
			s.Category = c.slots[c.pos].Category.DisplayName
		}
		if s.Category == "" {
			s.Category = obj.Department
		}
	}
	if c.verdict != nil {
		v := *c.verdict
		s.Verdict = &v
	}
	if len(c.notes) > 0 {
		s.Notes = append([]string(nil), c.notes...)
	}

	return s
}

func (c *Controller) criterion(slot *Slot) artwork.Criterion {
	if slot.Category.ID > 0 {
		return artwork.Criterion{DepartmentID: slot.Category.ID}
	}
	return artwork.Criterion{Query: c.cfg.Query}
}

func (c *Controller) alreadySeen(id int) bool {
	return c.seen[id]
}

func (c *Controller) skipped(position int, criterion artwork.Criterion, err error) {
	if c.onSkip != nil {
		c.onSkip(position, criterion, err)
	}
}

func skipNote(slot *Slot) string {
	if slot.Category.DisplayName != "" {
		return fmt.Sprintf("No artwork with an image was found for %s, skipping.", slot.Category.DisplayName)
	}
	return "No artwork with an image was found, skipping."
}
