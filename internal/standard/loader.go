// Package standard loads the built-in icon set shipped with the binary.
package standard

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/conneroisu/iconward/internal/logging"
	"github.com/conneroisu/iconward/internal/sanitize"
)

//go:embed icons/*.svg
var embeddedIconFS embed.FS

// EmbeddedFS returns the built-in icons rooted at the icon directory.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedIconFS, "icons")
	if err != nil {
		// fs.Sub only fails on invalid paths.
		panic(err)
	}
	return sub
}

// Loader reads built-in icons and sanitizes them without an uploads
// context. Entries that fail sanitization are dropped without a rejection
// record.
type Loader struct {
	source       fs.FS
	pipeline     *sanitize.Pipeline
	customPrefix string
	logger       logging.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithSource replaces the embedded icon set. Files are read from the root
// of source.
func WithSource(source fs.FS) Option {
	return func(l *Loader) {
		l.source = source
	}
}

// WithPipeline replaces the sanitization pipeline.
func WithPipeline(p *sanitize.Pipeline) Option {
	return func(l *Loader) {
		l.pipeline = p
	}
}

// WithLogger logs dropped entries at debug level.
func WithLogger(logger logging.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader. Keys starting with customPrefix are reserved
// for custom icons and are never loaded.
func NewLoader(customPrefix string, opts ...Option) *Loader {
	l := &Loader{
		source:       EmbeddedFS(),
		pipeline:     sanitize.NewPipeline(),
		customPrefix: customPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrNop(l.logger).WithComponent("standard")
	return l
}

// Load returns key to sanitized markup for every usable built-in icon.
func (l *Loader) Load() map[string]string {
	ctx := context.Background()
	icons := make(map[string]string)

	paths, err := fs.Glob(l.source, "*.svg")
	if err != nil {
		return icons
	}
	sort.Strings(paths)

	for _, p := range paths {
		key := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if key == "" || (l.customPrefix != "" && strings.HasPrefix(key, l.customPrefix)) {
			l.logger.Debug(ctx, "Skipping built-in icon with reserved key", "file", p)
			continue
		}

		data, err := fs.ReadFile(l.source, p)
		if err != nil {
			l.logger.Debug(ctx, "Skipping unreadable built-in icon", "file", p, "error", err.Error())
			continue
		}

		result, err := l.pipeline.Sanitize(string(data), nil)
		if err != nil {
			l.logger.Debug(ctx, "Skipping built-in icon that failed sanitization", "file", p, "error", err.Error())
			continue
		}
		icons[key] = result.Markup
	}

	return icons
}
