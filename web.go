/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/artquiz/internal/artwork"
	"github.com/Seednode/artquiz/internal/met"
	"github.com/Seednode/artquiz/internal/round"
	"github.com/Seednode/artquiz/internal/score"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second
)

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func serveVersion(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		_, err := w.Write([]byte("artquiz v" + releaseVersion + "\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

// newControllerFactory wires the collection client, fetcher and store into
// a constructor for per-game controllers.
func newControllerFactory(cfg *Config, client *met.Client, st score.Store) func(playerID string) *round.Controller {
	fetcher := artwork.NewFetcher(client, cfg.maxAttempts,
		artwork.WithProbeFunc(func(id int, err error) {
			if err != nil {
				logf(cfg, "FETCH: Object %d failed: %v", id, err)
				return
			}
			logf(cfg, "FETCH: Object %d has no image", id)
		}),
	)

	return func(playerID string) *round.Controller {
		return round.New(cfg.roundConfig(), fetcher, client, st, playerID,
			round.WithSkipFunc(func(position int, c artwork.Criterion, err error) {
				if err != nil {
					logf(cfg, "FETCH: Skipped slot %d (%s) for %s: %v", position, c, playerID, err)
					return
				}
				logf(cfg, "FETCH: Skipped slot %d (%s) for %s: nothing displayable", position, c, playerID)
			}),
		)
	}
}

func newRouter(cfg *Config, st score.Store, collection artwork.Collection, gm *GameManager, errs chan<- error) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		errorf("panic serving %s: %v", r.URL.Path, i)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		cspPage(w)
		w.WriteHeader(http.StatusInternalServerError)

		io.WriteString(w, newPage("Server Error", cfg.prefix+"/", "An error has occurred. Please try again."))
	}

	mux.GET(cfg.prefix+"/", serveHomePage(cfg, st, errs))

	mux.GET(cfg.prefix+"/again", servePlayAgain(cfg, st, errs))

	mux.GET(cfg.prefix+"/assets/*asset", serveAssets(cfg, errs))

	mux.GET(cfg.prefix+"/favicons/*favicon", serveFavicons(cfg, errs))

	mux.GET(cfg.prefix+"/favicon.ico", serveFavicons(cfg, errs))

	mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg, errs))

	mux.GET(cfg.prefix+"/results", serveResults(cfg, st, errs))

	mux.GET(cfg.prefix+"/robots.txt", serveRobots(cfg, errs))

	mux.GET(cfg.prefix+"/search", serveSearch(cfg, collection, errs))

	mux.GET(cfg.prefix+"/version", serveVersion(cfg, errs))

	if cfg.profile {
		registerProfileHandlers(cfg, mux)
	}

	registerGame(cfg, "/play", mux, gm, errs)

	return mux
}

func ServePage(ctx context.Context, cfg *Config, args []string) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	logf(cfg, "START: artquiz v%s", releaseVersion)

	st, err := score.NewByEngine(cfg.store, cfg.storePath)
	if err != nil {
		return fmt.Errorf("open %s score store: %w", cfg.store, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			errorf("close score store: %v", err)
		}
	}()

	logf(cfg, "START: Using %s score store at %s", cfg.store, cfg.storePath)

	client := met.NewClient(met.Options{
		BaseURL:   cfg.apiURL,
		Timeout:   cfg.requestTimeout,
		UserAgent: "artquiz/" + releaseVersion,
	})

	errs := make(chan error, 64)
	go func() {
		for err := range errs {
			errorf("%v", err)
		}
	}()

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	gm := newGameManager(cfg, newControllerFactory(cfg, client, st))
	defer gm.shutdown()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           newRouter(cfg, st, client, gm, errs),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
	}

	go func() {
		var err error
		logf(cfg, "SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorf("%v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	logf(cfg, "STOP: artquiz v%s", releaseVersion)

	return nil
}
