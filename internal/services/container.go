// Package services holds the command-level workflows (serve, watch,
// validate, list) and the container that wires their collaborators from
// configuration.
package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/iconward/internal/catalog"
	"github.com/conneroisu/iconward/internal/config"
	"github.com/conneroisu/iconward/internal/logging"
	"github.com/conneroisu/iconward/internal/reference"
	"github.com/conneroisu/iconward/internal/rejection"
	"github.com/conneroisu/iconward/internal/sanitize"
	"github.com/conneroisu/iconward/internal/scanner"
	"github.com/conneroisu/iconward/internal/standard"
	"github.com/conneroisu/iconward/internal/store"
)

// Container owns the long-lived collaborators built from one Config.
type Container struct {
	Config   *config.Config
	Logger   logging.Logger
	Store    store.Store
	Pipeline *sanitize.Pipeline
	Scanner  *scanner.Scanner
	Loader   *standard.Loader
	Resolver scanner.Resolver
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg config.LogConfig, out io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = os.Stderr
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Format,
		Output: out,
	}), nil
}

// NewContainer opens the configured store and wires the scanner, loader
// and resolver. Close releases the store.
func NewContainer(cfg *config.Config, logger logging.Logger) (*Container, error) {
	logger = logging.OrNop(logger)

	path := cfg.Store.Path
	if cfg.Store.Backend == store.BackendSQLite && filepath.Ext(path) == "" {
		path = filepath.Join(path, "iconward.db")
	}
	if cfg.Store.Backend == store.BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	st, err := store.Open(cfg.Store.Backend, path)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}

	pipeline := sanitize.NewPipeline()
	sc := scanner.New(scanner.Options{
		Index:       st,
		Cache:       st,
		Pipeline:    pipeline,
		Logger:      logger,
		KeyPrefix:   cfg.Icons.KeyPrefix,
		MaxFiles:    cfg.Icons.MaxFiles,
		MaxFileSize: cfg.Icons.MaxFileSize,
		CacheTTL:    cfg.Icons.CacheTTL,
		Subdir:      cfg.Icons.CustomSubdir,
	})

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Store:    st,
		Pipeline: pipeline,
		Scanner:  sc,
		Loader: standard.NewLoader(sc.KeyPrefix(),
			standard.WithPipeline(pipeline),
			standard.WithLogger(logger)),
		Resolver: scanner.StaticResolver{
			BaseDir: cfg.Uploads.BaseDir,
			BaseURL: cfg.Uploads.BaseURL,
		},
	}, nil
}

// NewCatalog builds a fresh, unbuilt catalog with its own rejection tracker.
func (c *Container) NewCatalog() *catalog.Catalog {
	return catalog.New(catalog.Config{
		Loader:   c.Loader,
		Scanner:  c.Scanner,
		Resolver: c.Resolver,
		Tracker:  rejection.NewTracker(c.Logger, nil),
		Logger:   c.Logger,
	})
}

// IconDir returns the custom icon directory, or "" when uploads are not
// configured.
func (c *Container) IconDir() string {
	if strings.TrimSpace(c.Config.Uploads.BaseDir) == "" {
		return ""
	}
	return filepath.Join(c.Config.Uploads.BaseDir, filepath.FromSlash(c.Config.Icons.CustomSubdir))
}

// UploadsContext resolves the uploads location of the icon directory. It
// returns nil when uploads are not fully configured.
func (c *Container) UploadsContext() *reference.UploadsContext {
	dir := c.IconDir()
	if dir == "" || c.Config.Uploads.BaseURL == "" {
		return nil
	}
	base := strings.TrimRight(c.Config.Uploads.BaseURL, "/")
	if sub := strings.Trim(filepath.ToSlash(c.Config.Icons.CustomSubdir), "/"); sub != "" {
		base += "/" + sub
	}
	uploads, err := reference.Resolve(dir, base)
	if err != nil {
		return nil
	}
	return uploads
}

// Close releases the store.
func (c *Container) Close() error {
	return c.Store.Close()
}
