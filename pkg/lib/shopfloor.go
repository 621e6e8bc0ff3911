package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/metrics"
	"github.com/joddb/shopfloor/internal/storage"
	"github.com/joddb/shopfloor/internal/storage/sqlite"
)

const (
	defaultDataDir = ".shopfloor"
	defaultDBFile  = "shopfloor.db"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses ~/.shopfloor/shopfloor.db and the
// default metric thresholds.
type Config struct {
	// DBPath is the SQLite database path.
	// Default: ~/.shopfloor/shopfloor.db.
	DBPath string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// AvailableTimeSeconds is the daily working time of a technician used by the metrics.
	// Default: 28800 (8h).
	AvailableTimeSeconds int
}

func (c *Config) defaults() error {
	if c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = filepath.Join(home, defaultDataDir, defaultDBFile)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.AvailableTimeSeconds < 0 {
		return fmt.Errorf("available time can't be negative")
	}

	return nil
}

// Client is the main SDK entry point.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo       storage.Repository
	logger     log.Logger
	thresholds metrics.Thresholds
	closeFn    func() error
}

// New creates a new SDK client backed by a SQLite database.
//
// The caller must call [Client.Close] when done to release the database
// connection.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return &Client{
		repo:       repo,
		logger:     cfg.Logger,
		thresholds: metrics.Thresholds{AvailableTimeSeconds: cfg.AvailableTimeSeconds}.Defaults(),
		closeFn:    repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}
