// Package scanner discovers custom SVG icons in the uploads directory.
//
// The scanner enumerates candidate files, fingerprints them by modification
// time and size, and reuses the persisted scan payload whenever the
// fingerprint index is unchanged. Otherwise it runs every candidate through
// the sanitization pipeline, records a rejection reason for each refused
// file, and persists the new index and payload. Directory-level problems
// never surface as errors: they degrade to an empty custom set.
package scanner

import (
	"context"
	"encoding/json"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
	"github.com/conneroisu/iconward/internal/logging"
	"github.com/conneroisu/iconward/internal/metrics"
	"github.com/conneroisu/iconward/internal/reference"
	"github.com/conneroisu/iconward/internal/rejection"
	"github.com/conneroisu/iconward/internal/sanitize"
	"github.com/conneroisu/iconward/internal/store"
)

// Store keys for the persisted scan state.
const (
	IndexKey   = "iconward_custom_fingerprint_index"
	PayloadKey = "iconward_custom_icons_cache"
)

// Defaults applied when Options leaves a limit at zero.
const (
	DefaultMaxFiles    = 200
	DefaultMaxFileSize = 200 * 1024
	DefaultCacheTTL    = 12 * time.Hour
)

// Options configures a Scanner.
type Options struct {
	// Directory provides filesystem access; nil means OSDirectory.
	Directory Directory
	// Index persists the fingerprint index without expiry.
	Index store.OptionStore
	// Cache persists the scan payload with CacheTTL.
	Cache store.TTLStore
	// Pipeline sanitizes each candidate; nil means sanitize.NewPipeline().
	Pipeline *sanitize.Pipeline
	// Logger receives scan summaries; nil disables logging.
	Logger logging.Logger
	// KeyPrefix is prepended to every derived key.
	KeyPrefix string
	// MaxFiles is the processing ceiling for one rescan.
	MaxFiles int
	// MaxFileSize is the per-file byte limit.
	MaxFileSize int64
	// CacheTTL bounds the payload lifetime.
	CacheTTL time.Duration
	// Subdir is the scanned directory relative to the uploads root. It
	// prefixes Source.RelativePath and the public URL.
	Subdir string
}

// Scanner runs custom icon scans. Its fields never change after New, so
// concurrent scans are safe; they may both rebuild, producing the same
// persisted state.
type Scanner struct {
	dir         Directory
	index       store.OptionStore
	cache       store.TTLStore
	pipeline    *sanitize.Pipeline
	logger      logging.Logger
	keyPrefix   string
	maxFiles    int
	maxFileSize int64
	cacheTTL    time.Duration
	subdir      string
}

// Result is what one scan produced.
type Result struct {
	Icons   map[string]string
	Sources map[string]Source
	// FromCache is set when the persisted payload was reused.
	FromCache bool
}

func emptyResult() Result {
	return Result{Icons: map[string]string{}, Sources: map[string]Source{}}
}

// New creates a scanner. Index and Cache are required.
func New(opts Options) *Scanner {
	s := &Scanner{
		dir:         opts.Directory,
		index:       opts.Index,
		cache:       opts.Cache,
		pipeline:    opts.Pipeline,
		logger:      logging.OrNop(opts.Logger).WithComponent("scanner"),
		keyPrefix:   opts.KeyPrefix,
		maxFiles:    opts.MaxFiles,
		maxFileSize: opts.MaxFileSize,
		cacheTTL:    opts.CacheTTL,
		subdir:      strings.Trim(filepath.ToSlash(opts.Subdir), "/"),
	}
	if s.dir == nil {
		s.dir = OSDirectory{}
	}
	if s.pipeline == nil {
		s.pipeline = sanitize.NewPipeline()
	}
	if s.keyPrefix == "" {
		s.keyPrefix = DefaultKeyPrefix
	}
	if s.maxFiles <= 0 {
		s.maxFiles = DefaultMaxFiles
	}
	if s.maxFileSize <= 0 {
		s.maxFileSize = DefaultMaxFileSize
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = DefaultCacheTTL
	}
	return s
}

// KeyPrefix returns the prefix carried by every custom key.
func (s *Scanner) KeyPrefix() string {
	return s.keyPrefix
}

// ScanUploads resolves the uploads location and scans its icon
// subdirectory. A resolver error means there is no custom set.
func (s *Scanner) ScanUploads(ctx context.Context, resolver Resolver, tracker *rejection.Tracker) Result {
	loc, err := resolver.Resolve()
	if err != nil || strings.TrimSpace(loc.BaseDir) == "" {
		s.logger.Debug(ctx, "Uploads location unavailable", "error", errString(err))
		s.Reset(ctx)
		metrics.RecordScan(metrics.ScanAbsent, 0)
		return emptyResult()
	}

	dir := loc.BaseDir
	baseURL := strings.TrimRight(loc.BaseURL, "/")
	if s.subdir != "" {
		dir = filepath.Join(dir, filepath.FromSlash(s.subdir))
		baseURL = baseURL + "/" + s.subdir
	}
	return s.Scan(ctx, dir, baseURL, tracker)
}

// Scan scans directory, whose files are served under uploadsBaseURL.
// Rejections are recorded in tracker, which may be nil.
func (s *Scanner) Scan(ctx context.Context, directory, uploadsBaseURL string, tracker *rejection.Tracker) Result {
	start := time.Now()
	if tracker == nil {
		tracker = rejection.NewTracker(nil, nil)
	}

	uploads, err := reference.Resolve(directory, uploadsBaseURL)
	if err != nil {
		s.logger.Warn(ctx, err, "Cannot resolve uploads location", "dir", directory)
		s.Reset(ctx)
		metrics.RecordScan(metrics.ScanAbsent, time.Since(start))
		return emptyResult()
	}

	names, err := s.dir.ListEntries(uploads.NormalizedBaseDir)
	if err != nil {
		s.logger.Debug(ctx, "Custom icon directory unavailable", "dir", uploads.NormalizedBaseDir, "error", err.Error())
		s.Reset(ctx)
		metrics.RecordScan(metrics.ScanAbsent, time.Since(start))
		return emptyResult()
	}

	current := s.buildIndex(uploads.NormalizedBaseDir, names)

	if payload, ok := s.cachedPayload(ctx, current); ok {
		tracker.Replay(payload.Rejected)
		metrics.RecordScan(metrics.ScanCacheHit, time.Since(start))
		metrics.SetCustomIcons(len(payload.Icons))
		s.logger.Debug(ctx, "Fingerprint index unchanged, using cached icons",
			"dir", uploads.NormalizedBaseDir, "icons", len(payload.Icons))
		return Result{Icons: payload.Icons, Sources: payload.Sources, FromCache: true}
	}

	payload := s.rescan(uploads, current)
	for _, r := range payload.Rejected {
		if tracker.Add(r) {
			metrics.RecordRejection(string(r.Reason))
		}
	}
	s.persist(ctx, current, payload)

	duration := time.Since(start)
	metrics.RecordScan(metrics.ScanRescan, duration)
	metrics.SetCustomIcons(len(payload.Icons))
	s.logger.Info(ctx, "Custom icon directory rescanned",
		"dir", uploads.NormalizedBaseDir,
		"files", len(current),
		"accepted", len(payload.Icons),
		"rejected", len(payload.Rejected),
		"duration_ms", duration.Milliseconds())

	return Result{Icons: payload.Icons, Sources: payload.Sources}
}

// Reset deletes the persisted index and payload.
func (s *Scanner) Reset(ctx context.Context) {
	if err := s.index.Delete(ctx, IndexKey); err != nil {
		s.logger.Warn(ctx, err, "Failed to delete fingerprint index")
	}
	if err := s.cache.Delete(ctx, PayloadKey); err != nil {
		s.logger.Warn(ctx, err, "Failed to delete icon cache")
	}
}

// buildIndex fingerprints every visible, readable regular file.
func (s *Scanner) buildIndex(dir string, names []string) Index {
	fingerprints := make([]FileFingerprint, 0, len(names))
	for _, name := range names {
		if name == "" || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := s.dir.Stat(filepath.Join(dir, name))
		if err != nil || !info.IsFile || !info.IsReadable {
			continue
		}
		fingerprints = append(fingerprints, FileFingerprint{
			Filename:   name,
			ModifiedAt: info.ModTime,
			SizeBytes:  info.Size,
		})
	}
	return NewIndex(fingerprints)
}

func (s *Scanner) cachedPayload(ctx context.Context, current Index) (*CachePayload, bool) {
	data, ok, err := s.index.Get(ctx, IndexKey)
	if err != nil {
		s.logger.Warn(ctx, err, "Failed to read fingerprint index")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	stored, ok := unmarshalIndex(data)
	if !ok || !stored.Equal(current) {
		return nil, false
	}

	data, ok, err = s.cache.Get(ctx, PayloadKey)
	if err != nil {
		s.logger.Warn(ctx, err, "Failed to read icon cache")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return unmarshalPayload(data)
}

func (s *Scanner) rescan(uploads *reference.UploadsContext, current Index) *CachePayload {
	payload := &CachePayload{
		Icons:    make(map[string]string),
		Sources:  make(map[string]Source),
		Rejected: []rejection.Record{},
	}

	for i, fp := range current {
		name := fp.Filename

		if i >= s.maxFiles {
			payload.Rejected = append(payload.Rejected, rejection.Record{
				File:    name,
				Reason:  iconerrors.CodeIconLimitReached,
				Context: map[string]string{iconerrors.ContextLimit: strconv.Itoa(s.maxFiles)},
			})
			continue
		}

		key, markup, err := s.processFile(uploads, name)
		if err != nil {
			payload.Rejected = append(payload.Rejected, rejection.FromError(name, err))
			continue
		}

		if _, taken := payload.Icons[key]; taken {
			payload.Rejected = append(payload.Rejected, rejection.Record{
				File:    name,
				Reason:  iconerrors.CodeDuplicateIconKey,
				Context: map[string]string{iconerrors.ContextKey: key},
			})
			continue
		}

		encoded := url.PathEscape(name)
		payload.Icons[key] = markup
		payload.Sources[key] = Source{
			RelativePath:    path.Join(s.subdir, name),
			EncodedFilename: encoded,
			URL:             uploads.URLFor(encoded),
		}
	}

	return payload
}

// processFile validates, reads and sanitizes one candidate.
func (s *Scanner) processFile(uploads *reference.UploadsContext, name string) (string, string, error) {
	return s.inspect(uploads, filepath.Join(uploads.NormalizedBaseDir, name))
}

// Inspect runs the per-file checks of a rescan on a single file and returns
// the key and sanitized markup it would contribute. uploads may be nil, in
// which case any external reference is rejected.
func (s *Scanner) Inspect(path string, uploads *reference.UploadsContext) (string, string, error) {
	return s.inspect(uploads, path)
}

func (s *Scanner) inspect(uploads *reference.UploadsContext, full string) (string, string, error) {
	name := filepath.Base(full)
	if !hasSVGExtension(name) {
		return "", "", iconerrors.NewValidationError(iconerrors.CodeInvalidType, "file is not an SVG")
	}

	info, err := s.dir.Stat(full)
	if err != nil {
		return "", "", iconerrors.NewIOError(iconerrors.CodeFilesizeUnreadable, "cannot determine file size", err)
	}
	if info.Size > s.maxFileSize {
		return "", "", s.tooLarge()
	}

	data, err := s.dir.Read(full)
	if err != nil {
		return "", "", iconerrors.NewIOError(iconerrors.CodeReadError, "cannot read file", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return "", "", s.tooLarge()
	}

	if !looksLikeSVG(data) {
		return "", "", iconerrors.NewValidationError(iconerrors.CodeInvalidType, "content is not SVG")
	}

	result, err := s.pipeline.Sanitize(string(data), uploads)
	if err != nil {
		return "", "", err
	}

	key := DeriveKey(s.keyPrefix, name)
	if key == "" {
		return "", "", iconerrors.NewValidationError(iconerrors.CodeEmptyIconKey, "file name yields an empty key")
	}

	return key, result.Markup, nil
}

func (s *Scanner) tooLarge() error {
	return iconerrors.NewValidationError(iconerrors.CodeFileTooLarge, "file exceeds the size limit").
		WithContext(iconerrors.ContextMaxBytes, strconv.FormatInt(s.maxFileSize, 10))
}

func (s *Scanner) persist(ctx context.Context, current Index, payload *CachePayload) {
	indexData, err := current.marshal()
	if err != nil {
		s.logger.Error(ctx, err, "Failed to encode fingerprint index")
		return
	}
	payloadData, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to encode icon cache")
		return
	}

	if err := s.index.Set(ctx, IndexKey, indexData); err != nil {
		s.logger.Warn(ctx, err, "Failed to persist fingerprint index")
	}
	if err := s.cache.SetWithTTL(ctx, PayloadKey, payloadData, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, err, "Failed to persist icon cache")
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
