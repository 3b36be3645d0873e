/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sanity-io/litter"

	"github.com/Seednode/artquiz/internal/round"
	"github.com/Seednode/artquiz/internal/view"
)

// ClientMessage is the only thing browsers send: {"type":"guess","guess":"before"}.
type ClientMessage struct {
	Type  string `json:"type"`
	Guess string `json:"guess,omitempty"`
}

// SimpleMessage is for notifications that don't change the round view.
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type guessRequest struct {
	client *Client
	msg    ClientMessage
}

type loadResult struct {
	op  string
	err error
}

// Hub owns one game. Everything that touches the controller happens on the
// run loop, except Start and Advance, which run on a worker goroutine while
// the hub is marked busy and hand control back over the loaded channel.
type Hub struct {
	id  string
	cfg *Config

	newController func(playerID string) *round.Controller
	ctrl          *round.Controller

	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	guesses  chan guessRequest
	advance  chan struct{}
	loaded   chan loadResult

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu sync.RWMutex

	createdAt     time.Time
	lastActive    time.Time
	ownerPlayerID string // the first cookie to connect; only the owner may guess

	busy    bool
	current view.View
}

func newHub(cfg *Config, gameID string, newController func(playerID string) *round.Controller) *Hub {
	now := time.Now()
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		id:            gameID,
		cfg:           cfg,
		newController: newController,
		clients:       make(map[*Client]bool),
		register:      make(chan *Client),
		unreg:         make(chan *Client),
		guesses:       make(chan guessRequest),
		advance:       make(chan struct{}),
		loaded:        make(chan loadResult),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		createdAt:     now,
		lastActive:    now,
		current: view.View{
			Type:    "state",
			State:   round.Loading.String(),
			Loading: true,
		},
	}
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			return
		default:
		}

		select {
		case <-h.done:
			return

		case c := <-h.register:
			if !h.addClient(c) {
				return
			}

			if h.ownerPlayerID == "" {
				h.ownerPlayerID = c.playerID
				h.ctrl = h.newController(c.playerID)
				logf(h.cfg, "GAMES: Player %s started %s", c.playerID, h.id)
				h.launch("start", h.ctrl.Start)
			}

			h.sendTo(c, h.viewFor(c))

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case gr := <-h.guesses:
			h.handleGuess(gr)

		case <-h.advance:
			h.launch("advance", h.ctrl.Advance)

		case res := <-h.loaded:
			h.busy = false
			if res.err != nil {
				if errors.Is(res.err, round.ErrCatalog) {
					logf(h.cfg, "GAMES: %s could not start: %v", h.id, res.err)
				} else if !errors.Is(res.err, context.Canceled) {
					errorf("%s %s: %v", h.id, res.op, res.err)
				}
			}

			h.refresh()
			h.broadcast()
		}
	}
}

// addClient registers c unless the hub has been closed, in which case c is
// shut down instead. closeAll closes done before taking mu, so a client added
// here is always seen by closeAll.
func (h *Hub) addClient(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		return false
	default:
	}

	h.lastActive = time.Now()
	h.clients[c] = true
	return true
}

// launch hands the controller to a worker goroutine. Guesses are ignored
// until the result comes back on h.loaded.
func (h *Hub) launch(op string, fn func(context.Context) error) {
	h.busy = true

	h.current = view.View{
		Type:     "state",
		State:    round.Loading.String(),
		Loading:  true,
		Progress: h.current.Progress,
		Score:    h.current.Score,
		Cutoff:   h.current.Cutoff,
	}
	h.broadcast()

	go func() {
		err := fn(h.ctx)

		select {
		case h.loaded <- loadResult{op: op, err: err}:
		case <-h.done:
		}
	}()
}

func (h *Hub) handleGuess(gr guessRequest) {
	c := gr.client

	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()

	if c.playerID != h.ownerPlayerID {
		h.sendTo(c, SimpleMessage{
			Type:    "spectating",
			Message: "You are watching someone else's game. Start your own to play along.",
		})
		return
	}

	if h.busy || h.ctrl == nil || h.ctrl.State() != round.AwaitingGuess {
		return
	}

	g, err := round.ParseGuess(gr.msg.Guess)
	if err != nil {
		return
	}

	verdict, err := h.ctrl.Guess(h.ctx, g)
	if errors.Is(err, round.ErrNotAwaitingGuess) {
		return
	}
	if err != nil {
		errorf("%s guess: %v", h.id, err)
	}

	logf(h.cfg, "GAMES: %s guessed %s for a work dated %s in %s (correct: %t)",
		c.playerID, g, verdict.Year, h.id, verdict.Correct)

	h.refresh()
	h.broadcast()

	// Never stopped: a reveal always runs its full length.
	time.AfterFunc(h.cfg.revealDelay, func() {
		select {
		case h.advance <- struct{}{}:
		case <-h.done:
		}
	})
}

func (h *Hub) refresh() {
	if h.ctrl == nil {
		return
	}

	snap := h.ctrl.Snapshot()
	h.current = view.Render(snap)

	if h.cfg.debug && snap.State == round.AwaitingGuess && snap.Artwork != nil {
		logf(h.cfg, "FETCH: %s showing %s", h.id, litter.Sdump(*snap.Artwork))
	}
}

// viewFor tailors the current view to a client: spectators can't guess and
// have no results page of their own.
func (h *Hub) viewFor(c *Client) view.View {
	v := h.current

	if c.playerID != h.ownerPlayerID {
		v.CanGuess = false
		v.Spectate = true
		return v
	}

	if v.Finished {
		v.ResultsURL = h.cfg.prefix + "/results"
	}

	return v
}

func (h *Hub) broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- h.viewFor(client):
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) sendTo(c *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// closeAll stops the hub and disconnects every client (used by reaper).
func (h *Hub) closeAll() {
	h.once.Do(func() {
		close(h.done)
		h.cancel()
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "guess":
			select {
			case h.guesses <- guessRequest{client: c, msg: msg}:
			case <-h.done:
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
