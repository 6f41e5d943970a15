// Package catalog merges built-in and custom icons into the keyed set the
// rest of the application renders from.
//
// A Catalog builds lazily on first access and is never mutated afterwards.
// Callers that need fresh data construct a new Catalog; the persisted
// fingerprint index decides whether that requires a directory rescan.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/iconward/internal/logging"
	"github.com/conneroisu/iconward/internal/metrics"
	"github.com/conneroisu/iconward/internal/rejection"
	"github.com/conneroisu/iconward/internal/scanner"
	"github.com/conneroisu/iconward/internal/standard"
)

// Origin tells where an icon came from.
type Origin string

const (
	OriginStandard Origin = "standard"
	OriginCustom   Origin = "custom"
)

// IconEntry is one catalog icon.
type IconEntry struct {
	Key    string `json:"key" yaml:"key"`
	Markup string `json:"markup" yaml:"markup"`
	Origin Origin `json:"origin" yaml:"origin"`
}

// ManifestEntry is the presentation view of one key.
type ManifestEntry struct {
	Key      string `json:"key" yaml:"key"`
	Label    string `json:"label" yaml:"label"`
	IsCustom bool   `json:"is_custom" yaml:"is_custom"`
}

// Config wires a Catalog to its collaborators.
type Config struct {
	Loader   *standard.Loader
	Scanner  *scanner.Scanner
	Resolver scanner.Resolver
	// Tracker receives custom icon rejections; nil creates a private one.
	Tracker *rejection.Tracker
	Logger  logging.Logger
}

// Catalog is the memoized icon set.
type Catalog struct {
	loader   *standard.Loader
	scanner  *scanner.Scanner
	resolver scanner.Resolver
	tracker  *rejection.Tracker
	logger   logging.Logger
	prefix   string

	once    sync.Once
	icons   map[string]string
	sources map[string]scanner.Source
}

// New creates a catalog. Nothing is loaded until first access.
func New(cfg Config) *Catalog {
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = rejection.NewTracker(cfg.Logger, nil)
	}
	prefix := scanner.DefaultKeyPrefix
	if cfg.Scanner != nil {
		prefix = cfg.Scanner.KeyPrefix()
	}
	return &Catalog{
		loader:   cfg.Loader,
		scanner:  cfg.Scanner,
		resolver: cfg.Resolver,
		tracker:  tracker,
		logger:   logging.OrNop(cfg.Logger).WithComponent("catalog"),
		prefix:   prefix,
	}
}

func (c *Catalog) build() {
	c.once.Do(func() {
		ctx := context.Background()
		icons := make(map[string]string)
		sources := make(map[string]scanner.Source)

		if c.loader != nil {
			for key, markup := range c.loader.Load() {
				icons[key] = markup
			}
		}
		standardCount := len(icons)

		if c.scanner != nil && c.resolver != nil {
			result := c.scanner.ScanUploads(ctx, c.resolver, c.tracker)
			for key, markup := range result.Icons {
				if !strings.HasPrefix(key, c.prefix) {
					continue
				}
				icons[key] = markup
				sources[key] = result.Sources[key]
			}
		}

		c.icons = icons
		c.sources = sources
		metrics.RecordCatalogBuild()
		c.logger.Debug(ctx, "Icon catalog built",
			"standard", standardCount, "custom", len(sources))
	})
}

// GetAllIcons returns a copy of the key to markup mapping.
func (c *Catalog) GetAllIcons() map[string]string {
	c.build()
	out := make(map[string]string, len(c.icons))
	for k, v := range c.icons {
		out[k] = v
	}
	return out
}

// Icon returns the markup for key.
func (c *Catalog) Icon(key string) (string, bool) {
	c.build()
	markup, ok := c.icons[key]
	return markup, ok
}

// Keys returns every key in sorted order.
func (c *Catalog) Keys() []string {
	c.build()
	keys := make([]string, 0, len(c.icons))
	for k := range c.icons {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns every icon with its origin, sorted by key.
func (c *Catalog) Entries() []IconEntry {
	keys := c.Keys()
	entries := make([]IconEntry, 0, len(keys))
	for _, k := range keys {
		origin := OriginStandard
		if c.isCustom(k) {
			origin = OriginCustom
		}
		entries = append(entries, IconEntry{Key: k, Markup: c.icons[k], Origin: origin})
	}
	return entries
}

// GetIconManifest returns one entry per key, sorted by key.
func (c *Catalog) GetIconManifest() []ManifestEntry {
	keys := c.Keys()
	manifest := make([]ManifestEntry, 0, len(keys))
	for _, k := range keys {
		manifest = append(manifest, ManifestEntry{
			Key:      k,
			Label:    Label(k),
			IsCustom: c.isCustom(k),
		})
	}
	return manifest
}

// GetCustomIconSource returns where a custom icon lives.
func (c *Catalog) GetCustomIconSource(key string) (scanner.Source, bool) {
	c.build()
	src, ok := c.sources[key]
	return src, ok
}

// ConsumeRejectedCustomIcons returns formatted rejection messages and
// clears them.
func (c *Catalog) ConsumeRejectedCustomIcons() []string {
	c.build()
	return c.tracker.Drain()
}

func (c *Catalog) isCustom(key string) bool {
	_, ok := c.sources[key]
	return ok && strings.HasPrefix(key, c.prefix)
}

var (
	labelCaser    = cases.Title(language.English)
	labelReplacer = strings.NewReplacer("_", " ", "-", " ")
)

// Label renders a key for display: separators become spaces and words are
// title-cased.
func Label(key string) string {
	return labelCaser.String(strings.Join(strings.Fields(labelReplacer.Replace(key)), " "))
}
