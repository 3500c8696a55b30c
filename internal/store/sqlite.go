package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"SignalScanner/internal/model"
)

// SQLiteCache keeps fetched series in a local SQLite database.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.Mutex
	log zerolog.Logger
	now func() time.Time
}

// NewSQLiteCache opens (or creates) the SQLite database and runs migrations.
// Entries older than ttl are treated as misses.
func NewSQLiteCache(dbPath string, ttl time.Duration, log zerolog.Logger) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db, ttl: ttl, log: log, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Dur("ttl", ttl).Msg("sqlite bar cache opened")
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bar_cache (
			cache_key  TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL,
			bar_count  INTEGER NOT NULL,
			payload    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bar_cache_fetched ON bar_cache(fetched_at)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]model.OHLCV, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fetchedAt int64
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at, payload FROM bar_cache WHERE cache_key = ?`, key,
	).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query bar cache: %w", err)
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false, nil
	}

	var bars []model.OHLCV
	if err := json.Unmarshal([]byte(payload), &bars); err != nil {
		return nil, false, fmt.Errorf("decode cached bars: %w", err)
	}
	return bars, true, nil
}

func (c *SQLiteCache) Put(ctx context.Context, key string, bars []model.OHLCV) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := json.Marshal(bars)
	if err != nil {
		return fmt.Errorf("encode bars: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `INSERT INTO bar_cache (cache_key, fetched_at, bar_count, payload)
		VALUES (?,?,?,?)
		ON CONFLICT(cache_key) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			bar_count  = excluded.bar_count,
			payload    = excluded.payload`,
		key, c.now().Unix(), len(bars), string(payload),
	)
	return err
}

// Prune deletes entries older than the TTL and returns how many were removed.
func (c *SQLiteCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.ExecContext(ctx, `DELETE FROM bar_cache WHERE fetched_at < ?`, c.now().Add(-c.ttl).Unix())
	if err != nil {
		return 0, fmt.Errorf("prune bar cache: %w", err)
	}
	return res.RowsAffected()
}

func (c *SQLiteCache) Close() error {
	c.log.Info().Msg("closing sqlite bar cache")
	return c.db.Close()
}
