/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/artquiz/internal/score"
)

//go:embed assets/*
var assets embed.FS

// defaultTotal is shown when a results snapshot is missing its round count.
const defaultTotal = 19

func cspHome(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:")
}

// cspPage allows the inline stylesheet that newPage emits.
func cspPage(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
}

// cspPlay lets the game page load artwork straight from the museum's image
// hosts and talk to its own websocket.
func cspPlay(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:; connect-src 'self'")
	w.Header().Set("Cross-Origin-Embedder-Policy", "credentialless")
}

// serveHomePage is the start screen. Landing here starts the player over at
// zero, but leaves any finished-game snapshot for the results page.
func serveHomePage(cfg *Config, st score.Store, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		id := getOrSetPlayerID(w, r)
		if err := st.Reset(r.Context(), id); err != nil {
			errs <- fmt.Errorf("reset score for %s: %w", id, err)
		}

		data, err := assets.ReadFile("assets/index.html")
		if err != nil {
			errs <- err
			http.Error(w, "missing page", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)
		cspHome(w)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Home page (%d bytes) to %s in %s",
			written,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveResults(cfg *Config, st score.Store, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := playerID(r)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)
		cspPage(w)

		final, ok, err := st.Final(r.Context(), id)
		if err != nil {
			errs <- fmt.Errorf("load results for %s: %w", id, err)
		}
		if id == "" || !ok || err != nil {
			_, _ = w.Write([]byte(newPage("Results", cfg.prefix+"/play",
				"<p>No finished game yet.</p><p>Click anywhere to play.</p>")))
			return
		}

		total := final.Target
		if total <= 0 {
			total = defaultTotal
		}

		body := fmt.Sprintf("<p>Final score</p><h1>%d / %d</h1><p>%d rounds answered, running score %d</p><p>Click anywhere to play again.</p>",
			final.Correct, total, final.Answered, final.Score)

		if _, err := w.Write([]byte(newPage("Results", cfg.prefix+"/again", body))); err != nil {
			errs <- err
		}
	}
}

// servePlayAgain resets the score, clears the finished-game snapshot, and
// starts a fresh game.
func servePlayAgain(cfg *Config, st score.Store, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := getOrSetPlayerID(w, r)

		if err := st.Reset(r.Context(), id); err != nil {
			errs <- fmt.Errorf("reset score for %s: %w", id, err)
		}
		if err := st.ClearFinal(r.Context(), id); err != nil {
			errs <- fmt.Errorf("clear results for %s: %w", id, err)
		}

		http.Redirect(w, r, cfg.prefix+"/play", http.StatusSeeOther)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveAssets(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		fname := "assets/" + strings.TrimPrefix(p.ByName("asset"), "/")
		if strings.HasSuffix(fname, ".html") {
			http.NotFound(w, r)
			return
		}

		data, err := assets.ReadFile(fname)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		switch strings.ToLower(filepath.Ext(fname)) {
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".js":
			w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		case ".svg":
			w.Header().Set("Content-Type", "image/svg+xml")
		}

		_, err = w.Write(data)
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: /play
Disallow: /results
Disallow: /again
Disallow: /search
`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
