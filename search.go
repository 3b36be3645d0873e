/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/artquiz/internal/artwork"
	"github.com/Seednode/artquiz/internal/met"
)

func cspSearch(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:")
	w.Header().Set("Cross-Origin-Embedder-Policy", "credentialless")
}

func searchCard(obj met.Object) string {
	var b strings.Builder

	title := obj.Title
	if title == "" {
		title = "Untitled"
	}

	b.WriteString(`<div class="artobject">`)
	b.WriteString(fmt.Sprintf("<h3>%s</h3>", html.EscapeString(title)))
	b.WriteString(fmt.Sprintf("<p>%s</p>", html.EscapeString(obj.ArtistDisplayName)))
	if src := obj.PrimaryImageSmall; src != "" {
		b.WriteString(fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(src), html.EscapeString(title)))
	}
	b.WriteString(`</div>`)

	return b.String()
}

func searchPage(cfg *Config, query string, results []met.Object, message string) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(getFavicon())
	b.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s/assets/play.css">`, html.EscapeString(cfg.prefix)))
	b.WriteString(`<title>Search the collection</title></head><body><main class="search">`)
	b.WriteString(`<h1>Search the collection</h1>`)
	b.WriteString(fmt.Sprintf(`<form id="search-form" action="%s/search" method="get">`, html.EscapeString(cfg.prefix)))
	b.WriteString(fmt.Sprintf(`<input id="search-input" type="search" name="q" value="%s" placeholder="sunflower">`, html.EscapeString(query)))
	b.WriteString(`<button type="submit">Search</button></form>`)

	if message != "" {
		b.WriteString(fmt.Sprintf(`<p class="note">%s</p>`, html.EscapeString(message)))
	}

	b.WriteString(`<div id="results-container">`)
	for _, obj := range results {
		b.WriteString(searchCard(obj))
	}
	b.WriteString(`</div>`)

	b.WriteString(fmt.Sprintf(`<footer><a href="%s/">Back to the quiz</a></footer>`, html.EscapeString(cfg.prefix)))
	b.WriteString(`</main></body></html>`)

	return b.String()
}

// serveSearch renders result cards for ?q=. All records are loaded before
// the page is written, so cards always follow search order.
func serveSearch(cfg *Config, collection artwork.Collection, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		query := strings.TrimSpace(r.URL.Query().Get("q"))

		var (
			results []met.Object
			message string
		)

		if query != "" {
			var err error
			results, err = artwork.Gallery(r.Context(), collection, query, cfg.searchLimit, cfg.parallel)
			switch {
			case err != nil:
				errs <- fmt.Errorf("search %q: %w", query, err)
				message = met.UserMessage(err)
			case len(results) == 0:
				message = "No artworks found."
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)
		cspSearch(w)

		written, err := w.Write([]byte(searchPage(cfg, query, results, message)))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Search %q (%d results, %d bytes) to %s in %s",
			query,
			len(results),
			written,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
