// Package relational keeps a DuckDB history of read cycles.
package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
)

const memoryDSN = ":memory:"

// DatabaseConfig holds DuckDB resource limits.
type DatabaseConfig struct {
	Threads       int           // 0 = DuckDB default
	MemoryLimitMB int           // 0 = DuckDB default
	Timeout       time.Duration // bounds the initial ping, 0 = none
}

// DuckDBClient owns the single connection to a history database.
type DuckDBClient struct {
	db     *sql.DB
	dsn    string
	config DatabaseConfig
}

type DuckDBOption func(*DuckDBClient)

func WithThreads(n int) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.Threads = n
	}
}

// WithMemoryLimit caps DuckDB's buffer pool. Pi boards have a few GB at
// most, so the limit is given in MB.
func WithMemoryLimit(mb int) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.MemoryLimitMB = mb
	}
}

func WithTimeout(d time.Duration) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.Timeout = d
	}
}

// NewDuckDBClient opens dsn. An empty dsn or ":memory:" is an in-memory
// database; anything else is a file path optionally followed by ?options.
func NewDuckDBClient(dsn string, opts ...DuckDBOption) (*DuckDBClient, error) {
	if dsn == "" {
		dsn = memoryDSN
	}
	c := &DuckDBClient{dsn: dsn}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	// An in-memory database lives only as long as its connection, and
	// DuckDB allows one writer anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	c.db = db

	ctx := context.Background()
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}
	if err := c.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}
	if err := c.Configure(ctx, c.config); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure duckdb: %w", err)
	}

	return c, nil
}

// NewFileDB opens the history file at path, creating its directory.
func NewFileDB(path string, opts ...DuckDBOption) (*DuckDBClient, error) {
	if path == "" {
		return nil, errors.New("database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return NewDuckDBClient(path, opts...)
}

func (c *DuckDBClient) DB() *sql.DB {
	return c.db
}

// InMemory reports whether the history is lost on Close.
func (c *DuckDBClient) InMemory() bool {
	return c.dsn == memoryDSN
}

func (c *DuckDBClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Configure applies cfg's limits. Zero values leave DuckDB's setting alone.
func (c *DuckDBClient) Configure(ctx context.Context, cfg DatabaseConfig) error {
	if c.db == nil {
		return errors.New("database not initialized")
	}

	if cfg.Threads > 0 {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", cfg.Threads)); err != nil {
			return fmt.Errorf("setting threads: %w", err)
		}
	}
	if cfg.MemoryLimitMB > 0 {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("PRAGMA memory_limit='%dMB'", cfg.MemoryLimitMB)); err != nil {
			return fmt.Errorf("setting memory limit: %w", err)
		}
	}

	c.config = cfg
	return nil
}

func (c *DuckDBClient) Ping(ctx context.Context) error {
	if c.db == nil {
		return errors.New("database not initialized")
	}
	return c.db.PingContext(ctx)
}
