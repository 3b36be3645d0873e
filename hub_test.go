/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Seednode/artquiz/internal/view"
)

func dialGame(t *testing.T, ts *testServer, c *http.Client, gamePath string) *websocket.Conn {
	t.Helper()

	// Loading the page hands out the player cookie.
	get(t, c, ts.srv.URL+gamePath)

	dialer := websocket.Dialer{Jar: c.Jar, HandshakeTimeout: 5 * time.Second}
	wsURL := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + gamePath + "/ws"

	conn, resp, err := dialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// waitFor reads views until match accepts one.
func waitFor(t *testing.T, conn *websocket.Conn, what string, match func(view.View) bool) view.View {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)

	for {
		var v view.View
		if err := conn.ReadJSON(&v); err != nil {
			t.Fatalf("waiting for %s: %v", what, err)
		}
		if v.Type == "state" && match(v) {
			return v
		}
	}
}

func waitForMessage(t *testing.T, conn *websocket.Conn, msgType string) SimpleMessage {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for {
		var m SimpleMessage
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("waiting for %s message: %v", msgType, err)
		}
		if m.Type == msgType {
			return m
		}
	}
}

func awaiting(v view.View) bool { return v.CanGuess }

func guess(t *testing.T, conn *websocket.Conn, g string) {
	t.Helper()

	if err := conn.WriteJSON(ClientMessage{Type: "guess", Guess: g}); err != nil {
		t.Fatal(err)
	}
}

func TestGamePlaysThroughToResults(t *testing.T) {
	collection := newFakeCollection(t,
		fakeArtwork{department: 1, object: dated(11, "Harvest Scene", 1650, "1650")},
		fakeArtwork{department: 2, object: dated(22, "Harbor at Dusk", 1885, "ca. 1885")},
	)
	ts := newTestServer(t, testConfig(), collection)
	c := newJarClient(t)

	conn := dialGame(t, ts, c, "/play/GameOne1")

	first := waitFor(t, conn, "first artwork", awaiting)
	if first.Progress != "1/2" {
		t.Errorf("progress = %q, want 1/2", first.Progress)
	}
	if first.Result != nil {
		t.Errorf("result shown before guessing: %+v", first.Result)
	}

	// Department order is preserved, so the first work is the 1650 one.
	guess(t, conn, "before")

	revealed := waitFor(t, conn, "first reveal", func(v view.View) bool { return v.Result != nil })
	if !revealed.Result.Correct || revealed.Score != 1 {
		t.Errorf("reveal = %+v, score %d; want correct with score 1", revealed.Result, revealed.Score)
	}
	if revealed.Result.Message != "Correct! The artwork is from 1650." {
		t.Errorf("message = %q", revealed.Result.Message)
	}

	second := waitFor(t, conn, "second artwork", awaiting)
	if second.Progress != "2/2" || second.Title != "Harbor at Dusk" {
		t.Errorf("second view = %+v", second)
	}

	guess(t, conn, "before")

	wrong := waitFor(t, conn, "second reveal", func(v view.View) bool { return v.Result != nil })
	if wrong.Result.Correct || wrong.Score != 1 {
		t.Errorf("reveal = %+v, score %d; want incorrect with score 1", wrong.Result, wrong.Score)
	}

	done := waitFor(t, conn, "finish", func(v view.View) bool { return v.Finished })
	if done.ResultsURL != "/results" {
		t.Errorf("results url = %q, want /results", done.ResultsURL)
	}

	_, body := get(t, c, ts.srv.URL+"/results")
	if !strings.Contains(body, "1 / 2") {
		t.Errorf("results body = %q, want 1 / 2", body)
	}
}

func TestGuessesDuringRevealAreIgnored(t *testing.T) {
	collection := newFakeCollection(t,
		fakeArtwork{department: 1, object: dated(11, "Harvest Scene", 1650, "1650")},
		fakeArtwork{department: 2, object: dated(22, "Harbor at Dusk", 1885, "ca. 1885")},
	)
	cfg := testConfig()
	cfg.revealDelay = 200 * time.Millisecond
	ts := newTestServer(t, cfg, collection)
	c := newJarClient(t)

	conn := dialGame(t, ts, c, "/play/GameTwo2")
	waitFor(t, conn, "first artwork", awaiting)

	guess(t, conn, "before")
	guess(t, conn, "before")
	guess(t, conn, "after")

	waitFor(t, conn, "second artwork", awaiting)

	id := cookieValue(t, c, ts.srv.URL+"/")
	got, err := ts.store.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("score = %d, want 1", got)
	}
}

func TestSpectatorCannotGuess(t *testing.T) {
	collection := newFakeCollection(t,
		fakeArtwork{department: 1, object: dated(11, "Harvest Scene", 1650, "1650")},
	)
	ts := newTestServer(t, testConfig(), collection)

	owner := dialGame(t, ts, newJarClient(t), "/play/Shared33")
	waitFor(t, owner, "owner artwork", awaiting)

	watcher := dialGame(t, ts, newJarClient(t), "/play/Shared33")
	v := waitFor(t, watcher, "spectator view", func(v view.View) bool { return v.Spectate })
	if v.CanGuess {
		t.Errorf("spectator view allows guessing")
	}

	guess(t, watcher, "before")
	waitForMessage(t, watcher, "spectating")
}

func TestUnavailableCollectionShowsError(t *testing.T) {
	collection := newFakeCollection(t)
	collection.Close()

	ts := newTestServer(t, testConfig(), collection)
	conn := dialGame(t, ts, newJarClient(t), "/play/Broken44")

	v := waitFor(t, conn, "error", func(v view.View) bool { return v.Error != "" })
	if v.Loading || v.CanGuess {
		t.Errorf("error view = %+v, want neither loading nor guessable", v)
	}
	if !strings.HasPrefix(v.Error, "Error loading artwork.") {
		t.Errorf("error = %q", v.Error)
	}
}

func TestClosedHubRejectsLateClients(t *testing.T) {
	h := newHub(testConfig(), "Closed55", nil)
	h.closeAll()

	c := &Client{send: make(chan any, 1), playerID: "late-player"}
	if h.addClient(c) {
		t.Fatal("closed hub accepted a client")
	}
	if _, ok := <-c.send; ok {
		t.Error("rejected client's send channel was left open")
	}
	if len(h.clients) != 0 {
		t.Errorf("closed hub holds %d clients, want 0", len(h.clients))
	}

	stopped := make(chan struct{})
	go func() {
		h.run()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("run kept going on a closed hub")
	}
}
