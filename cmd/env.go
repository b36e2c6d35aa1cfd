package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"

	"github.com/amberorigin46/news-ai-auto/internal/ai"
	"github.com/amberorigin46/news-ai-auto/internal/briefing"
	"github.com/amberorigin46/news-ai-auto/internal/cache"
	"github.com/amberorigin46/news-ai-auto/internal/config"
	"github.com/amberorigin46/news-ai-auto/internal/logging"
	"github.com/amberorigin46/news-ai-auto/internal/retry"
)

type logOutput int

const (
	outputStderr logOutput = iota
	// The TUI owns the terminal, so its log goes to a file.
	outputLogFile
)

// env is everything a command needs to fetch a briefing.
type env struct {
	cfg        *config.Config
	log        zerolog.Logger
	db         *cache.Cache
	fetcher    briefingFetcher
	categories []string
	// overridden is set when --categories names a set other than the
	// configured one. The cache slot holds one set only, so such runs refetch.
	overridden bool

	closers []io.Closer
}

func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	return errors.Join(errs...)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out logOutput) (zerolog.Logger, io.Closer, error) {
	level := logging.Level(flagLogLevel, config.EnvLogLevel, cfg.LogLevel)
	if out == outputStderr {
		return logging.New(level, os.Stderr), nil, nil
	}

	path := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("opening log file: %w", err)
	}
	return logging.New(level, f), f, nil
}

func openCache(cfg *config.Config, log *zerolog.Logger) (*cache.Cache, error) {
	db, err := cache.Open(config.CachePath(), cache.Options{
		Key:    cfg.Cache.Key,
		TTL:    cfg.CacheTTL(),
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return db, nil
}

// resolveCategories prefers the flag value over the configured list.
func resolveCategories(flag string, cfg *config.Config) ([]string, error) {
	if flag == "" {
		return cfg.Categories, nil
	}
	cats := config.ParseCategories(flag)
	if err := config.ValidateCategories(cats); err != nil {
		return nil, fmt.Errorf("invalid --categories: %w", err)
	}
	return cats, nil
}

// overridesConfig ignores order: the cached briefing serves any ordering of
// the configured set.
func overridesConfig(categories []string, cfg *config.Config) bool {
	return !slices.Equal(slices.Sorted(slices.Values(categories)), slices.Sorted(slices.Values(cfg.Categories)))
}

// setup wires config, logging, the sqlite cache, and the AI client into a
// briefing fetcher.
func setup(categoriesFlag string, out logOutput) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cats, err := resolveCategories(categoriesFlag, cfg)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, categories: cats, overridden: overridesConfig(cats, cfg)}
	log, closer, err := newLogger(cfg, out)
	if err != nil {
		return nil, err
	}
	e.log = log
	if closer != nil {
		e.closers = append(e.closers, closer)
	}

	gen, err := ai.New(cfg.AIConfig(), cfg.AIKey())
	if err != nil {
		e.Close()
		return nil, err
	}

	db, err := openCache(cfg, &e.log)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.db = db
	e.closers = append(e.closers, db)

	e.log.Debug().Str("model", gen.Model()).Strs("categories", cats).Msg("configured")

	e.fetcher = categoryCheckedFetcher{inner: briefing.NewFetcher(briefing.FetcherOpts{
		Generator: gen,
		Store:     db,
		Language:  cfg.GetLanguage(),
		Retry: retry.Config{
			MaxRetries: cfg.MaxRetries(),
			BaseDelay:  cfg.RetryBaseDelay(),
		},
		Sleeper: retry.TimerSleeper,
		Logger:  &e.log,
	}), log: e.log}
	return e, nil
}

type briefingFetcher interface {
	FetchBriefing(ctx context.Context, categories []string, forceRefresh bool) (*briefing.Briefing, error)
}

// categoryCheckedFetcher refetches when a cached briefing has nothing for any
// requested category. The slot is not keyed by category set, so that cached
// briefing was captured for a different one.
type categoryCheckedFetcher struct {
	inner briefingFetcher
	log   zerolog.Logger
}

func (f categoryCheckedFetcher) FetchBriefing(ctx context.Context, categories []string, forceRefresh bool) (*briefing.Briefing, error) {
	b, err := f.inner.FetchBriefing(ctx, categories, forceRefresh)
	if err != nil || !b.FromCache || len(categories) == 0 || matchesAny(categories, b.Articles) {
		return b, err
	}
	f.log.Info().Strs("categories", categories).Msg("cached briefing covers other categories, refetching")
	return f.inner.FetchBriefing(ctx, categories, true)
}

func matchesAny(categories []string, articles []cache.Article) bool {
	for _, a := range briefing.Reconcile(categories, articles) {
		if !a.Error {
			return true
		}
	}
	return false
}
