/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/artquiz/internal/met"
)

// newSlowCollection returns ids in the given order; each object answers
// after its own delay.
func newSlowCollection(t *testing.T, order []int, objects map[int]met.Object, delays map[int]time.Duration) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("hasImages") != "true" {
			t.Errorf("search without hasImages: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"total": len(order), "objectIDs": order})
	})

	mux.HandleFunc("GET /objects/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		time.Sleep(delays[id])

		obj, ok := objects[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(obj)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestSearchRendersCardsInResultOrder(t *testing.T) {
	objects := map[int]met.Object{
		3: {ID: 3, Title: "Sunflowers", ArtistDisplayName: "Vincent van Gogh", PrimaryImageSmall: "https://images.example.org/3.jpg"},
		1: {ID: 1, Title: "Sunflower <Study>", PrimaryImageSmall: "https://images.example.org/1.jpg"},
		2: {ID: 2, Title: "", ArtistDisplayName: "Workshop"},
	}
	collection := newSlowCollection(t, []int{3, 1, 4, 2}, objects, map[int]time.Duration{
		3: 80 * time.Millisecond,
		1: 40 * time.Millisecond,
	})

	cfg := testConfig()
	cfg.parallel = 4
	ts := newTestServer(t, cfg, collection)

	resp, body := get(t, newJarClient(t), ts.srv.URL+"/search?q=sunflower")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if csp := resp.Header.Get("Content-Security-Policy"); !strings.Contains(csp, "img-src 'self' https:") {
		t.Errorf("Content-Security-Policy = %q, want remote images allowed", csp)
	}

	first := strings.Index(body, "<h3>Sunflowers</h3>")
	second := strings.Index(body, "<h3>Sunflower &lt;Study&gt;</h3>")
	third := strings.Index(body, "<h3>Untitled</h3>")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("missing cards in %q", body)
	}
	if !(first < second && second < third) {
		t.Errorf("cards out of search order: %d, %d, %d", first, second, third)
	}

	if got := strings.Count(body, `class="artobject"`); got != 3 {
		t.Errorf("rendered %d cards, want 3", got)
	}
	if !strings.Contains(body, `<img src="https://images.example.org/3.jpg" alt="Sunflowers">`) {
		t.Errorf("card image missing from %q", body)
	}
	if !strings.Contains(body, `value="sunflower"`) {
		t.Errorf("search box does not keep the query")
	}
}

func TestSearchWithoutQueryShowsForm(t *testing.T) {
	collection := newSlowCollection(t, nil, nil, nil)
	ts := newTestServer(t, testConfig(), collection)

	_, body := get(t, newJarClient(t), ts.srv.URL+"/search")
	if !strings.Contains(body, `id="search-form"`) {
		t.Errorf("search form missing from %q", body)
	}
	if strings.Contains(body, `class="artobject"`) || strings.Contains(body, "No artworks found") {
		t.Errorf("empty search rendered results: %q", body)
	}
}

func TestSearchNoResults(t *testing.T) {
	collection := newSlowCollection(t, []int{}, nil, nil)
	ts := newTestServer(t, testConfig(), collection)

	_, body := get(t, newJarClient(t), ts.srv.URL+"/search?q=zzzz")
	if !strings.Contains(body, "No artworks found.") {
		t.Errorf("body = %q, want a no-results note", body)
	}
}

func TestSearchUnavailableCollection(t *testing.T) {
	collection := newSlowCollection(t, nil, nil, nil)
	collection.Close()
	ts := newTestServer(t, testConfig(), collection)

	_, body := get(t, newJarClient(t), ts.srv.URL+"/search?q=rose")
	if !strings.Contains(body, "Error loading artwork. Unable to connect to the server.") {
		t.Errorf("body = %q, want a plain-language error", body)
	}
}
