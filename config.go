/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/artquiz/internal/artwork"
	"github.com/Seednode/artquiz/internal/met"
	"github.com/Seednode/artquiz/internal/round"
	"github.com/Seednode/artquiz/internal/score"
)

const envPrefix = "ARTQUIZ"

type Config struct {
	apiURL         string
	bind           string
	cutoff         int
	debug          bool
	maxAttempts    int
	maxSkips       int
	mode           string
	parallel       int
	port           int
	prefix         string
	profile        bool
	query          string
	requestTimeout time.Duration
	revealDelay    time.Duration
	rounds         int
	searchLimit    int
	sessionTimeout time.Duration
	store          string
	storePath      string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.rounds < 1 {
		return fmt.Errorf("invalid round count (must be at least 1): %d", c.rounds)
	}
	if c.cutoff == 0 {
		return errors.New("invalid cutoff year (must not be 0)")
	}
	if c.maxAttempts < 1 {
		return fmt.Errorf("invalid max attempts (must be at least 1): %d", c.maxAttempts)
	}
	if c.maxSkips < 0 {
		return fmt.Errorf("invalid max skips (must not be negative): %d", c.maxSkips)
	}
	if c.searchLimit < 1 {
		return fmt.Errorf("invalid search limit (must be at least 1): %d", c.searchLimit)
	}
	if c.parallel < 1 {
		return fmt.Errorf("invalid parallelism (must be at least 1): %d", c.parallel)
	}
	if c.revealDelay < 0 {
		return fmt.Errorf("invalid reveal delay (must not be negative): %s", c.revealDelay)
	}
	if _, err := round.ParseMode(c.mode); err != nil {
		return err
	}
	switch strings.ToLower(c.store) {
	case score.EngineMemory, score.EngineJSON, score.EngineSQLite:
	default:
		return fmt.Errorf("invalid store engine (must be one of %s, %s, %s): %q", score.EngineSQLite, score.EngineJSON, score.EngineMemory, c.store)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) roundConfig() round.Config {
	mode, _ := round.ParseMode(c.mode)

	return round.Config{
		Mode:        mode,
		Query:       c.query,
		Target:      c.rounds,
		Cutoff:      c.cutoff,
		MaxSkips:    c.maxSkips,
		Parallelism: c.parallel,
	}
}

// loadEnvFile reads ARTQUIZ_ENV_FILE (or ./.env) into the environment
// without overriding anything already set. A missing file is not an error.
func loadEnvFile() error {
	path := os.Getenv(envPrefix + "_ENV_FILE")
	if path == "" {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func newCmd(cfg *Config) *cobra.Command {
	envErr := loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "artquiz",
		Short:         "Guess whether a museum artwork was made before or after a cutoff year.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return fmt.Errorf("load env file: %w", envErr)
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.apiURL, "api-url", met.DefaultBaseURL, "base URL of the collection API (env: ARTQUIZ_API_URL)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: ARTQUIZ_BIND)")
	fs.IntVar(&cfg.cutoff, "cutoff", round.DefaultCutoff, "year that guesses are judged against (env: ARTQUIZ_CUTOFF)")
	fs.BoolVar(&cfg.debug, "debug", false, "dump fetched artwork records to the log (env: ARTQUIZ_DEBUG)")
	fs.IntVar(&cfg.maxAttempts, "max-attempts", artwork.DefaultMaxAttempts, "objects to probe per slot before giving up (env: ARTQUIZ_MAX_ATTEMPTS)")
	fs.IntVar(&cfg.maxSkips, "max-skips", round.DefaultMaxSkips, "empty slots tolerated per game in query mode (env: ARTQUIZ_MAX_SKIPS)")
	fs.StringVar(&cfg.mode, "mode", string(round.ModeCategory), "artwork selection: one per department (category) or free-text search (query) (env: ARTQUIZ_MODE)")
	fs.IntVar(&cfg.parallel, "parallel", round.DefaultParallelism, "departments to probe, or search records to load, concurrently (env: ARTQUIZ_PARALLEL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: ARTQUIZ_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: ARTQUIZ_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: ARTQUIZ_PROFILE)")
	fs.StringVar(&cfg.query, "query", round.DefaultQuery, "search term used in query mode (env: ARTQUIZ_QUERY)")
	fs.DurationVar(&cfg.requestTimeout, "request-timeout", met.DefaultTimeout, "timeout for each collection API request (env: ARTQUIZ_REQUEST_TIMEOUT)")
	fs.DurationVar(&cfg.revealDelay, "reveal-delay", 3*time.Second, "time the answer is shown before the next artwork (env: ARTQUIZ_REVEAL_DELAY)")
	fs.IntVarP(&cfg.rounds, "rounds", "r", round.DefaultTarget, "rounds per game (env: ARTQUIZ_ROUNDS)")
	fs.IntVar(&cfg.searchLimit, "search-limit", artwork.DefaultGalleryLimit, "records loaded per collection search (env: ARTQUIZ_SEARCH_LIMIT)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: ARTQUIZ_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.store, "store", score.EngineSQLite, "score store engine: sqlite, json or memory (env: ARTQUIZ_STORE)")
	fs.StringVar(&cfg.storePath, "store-path", "artquiz.db", "path to the score store file (env: ARTQUIZ_STORE_PATH)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: ARTQUIZ_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: ARTQUIZ_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: ARTQUIZ_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: ARTQUIZ_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("artquiz v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
