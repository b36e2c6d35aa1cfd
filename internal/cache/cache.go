package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const (
	// DefaultKey names the single cache slot. The suffix is the article
	// schema generation.
	DefaultKey = "pulse_news_cache_v2"
	DefaultTTL = 10 * time.Minute
)

// Store holds the last successful briefing. Read and Write never fail
// loudly: a broken store behaves like an empty one.
type Store interface {
	Read(ctx context.Context) (*Snapshot, bool)
	Write(ctx context.Context, snap Snapshot)
	IsFresh(snap Snapshot) bool
}

// Options configures a Store.
type Options struct {
	Key    string
	TTL    time.Duration
	Now    func() time.Time
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Key == "" {
		o.Key = DefaultKey
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

type freshness struct {
	ttl time.Duration
	now func() time.Time
}

func (f freshness) IsFresh(snap Snapshot) bool {
	return f.now().UnixMilli()-snap.Timestamp < f.ttl.Milliseconds()
}

// Cache is a Store backed by a sqlite key/value table.
type Cache struct {
	freshness
	path    string
	key     string
	log     zerolog.Logger
	readDB  *sql.DB
	writeDB *sql.DB
}

var _ Store = (*Cache)(nil)

func Open(dbPath string, opts Options) (*Cache, error) {
	opts = opts.withDefaults()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{
		freshness: freshness{ttl: opts.TTL, now: opts.Now},
		path:      dbPath,
		key:       opts.Key,
		log:       opts.Logger.With().Str("component", "cache").Str("key", opts.Key).Logger(),
		readDB:    readDB,
		writeDB:   writeDB,
	}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS meta (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Read returns the stored snapshot. A missing row or an undecodable value
// is reported as absent.
func (c *Cache) Read(ctx context.Context) (*Snapshot, bool) {
	value, err := c.readValue(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log.Warn().Err(err).Msg("reading cached briefing")
		}
		return nil, false
	}

	snap, err := decode(value)
	if err != nil {
		c.log.Warn().Err(err).Msg("discarding malformed cached briefing")
		return nil, false
	}
	return snap, true
}

// Write replaces the stored snapshot. Errors are logged, not returned.
func (c *Cache) Write(ctx context.Context, snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		c.log.Warn().Err(err).Msg("encoding briefing for cache")
		return
	}
	_, err = c.writeDB.ExecContext(ctx, `
		INSERT INTO meta (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, c.key, string(data), c.now().UTC().Format(time.RFC3339))
	if err != nil {
		c.log.Warn().Err(err).Msg("writing briefing to cache")
		return
	}
	c.log.Debug().Int("articles", len(snap.Articles)).Msg("briefing cached")
}

// Clear removes the slot. Only the CLI calls this; the fetcher never deletes.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.writeDB.ExecContext(ctx, "DELETE FROM meta WHERE key = ?", c.key); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Key: c.key}

	if info, err := os.Stat(c.path); err == nil {
		st.Size = info.Size()
	}

	value, err := c.readValue(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("reading stats: %w", err)
	}

	snap, err := decode(value)
	if err != nil {
		return st, nil
	}
	st.Present = true
	st.Captured = snap.Time()
	st.Articles = len(snap.Articles)
	st.Sources = len(snap.Sources)
	return st, nil
}

func (c *Cache) readValue(ctx context.Context) (string, error) {
	var value string
	err := c.readDB.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", c.key).Scan(&value)
	return value, err
}

func decode(value string) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		return nil, err
	}
	if snap.Timestamp <= 0 {
		return nil, fmt.Errorf("snapshot has no timestamp")
	}
	return &snap, nil
}
