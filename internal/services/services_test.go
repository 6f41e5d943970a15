package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/iconward/internal/config"
	iconerrors "github.com/conneroisu/iconward/internal/errors"
	"github.com/conneroisu/iconward/internal/scanner"
	"github.com/conneroisu/iconward/internal/store"
	"github.com/conneroisu/iconward/internal/watcher"
)

func loadConfig(t *testing.T, settings map[string]interface{}) *config.Config {
	t.Helper()
	v := viper.New()
	for k, val := range settings {
		v.Set(k, val)
	}
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)
	return cfg
}

func newContainer(t *testing.T, uploads string) *Container {
	t.Helper()
	settings := map[string]interface{}{"store.backend": "memory"}
	if uploads != "" {
		settings["uploads.base_dir"] = uploads
		settings["uploads.base_url"] = "https://example.com/uploads"
	}
	c, err := NewContainer(loadConfig(t, settings), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeIcon(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestContainerCatalog(t *testing.T) {
	uploads := t.TempDir()
	c := newContainer(t, uploads)
	writeIcon(t, c.IconDir(), "logo.svg", `<svg><circle r="4"/></svg>`)

	assert.Equal(t, filepath.Join(uploads, "iconward-icons"), c.IconDir())

	cat := c.NewCatalog()
	icons := cat.GetAllIcons()
	assert.Equal(t, `<svg><circle r="4"/></svg>`, icons["custom_logo"])
	assert.Contains(t, icons, "check", "built-in icons are embedded")

	src, ok := cat.GetCustomIconSource("custom_logo")
	require.True(t, ok)
	assert.Equal(t, scanner.Source{
		RelativePath:    "iconward-icons/logo.svg",
		EncodedFilename: "logo.svg",
		URL:             "https://example.com/uploads/iconward-icons/logo.svg",
	}, src)
}

func TestContainerWithoutUploads(t *testing.T) {
	c := newContainer(t, "")
	assert.Equal(t, "", c.IconDir())
	assert.Nil(t, c.UploadsContext())

	icons := c.NewCatalog().GetAllIcons()
	assert.NotEmpty(t, icons)
	for key := range icons {
		assert.NotContains(t, key, "custom_")
	}
}

func TestContainerStoreBackends(t *testing.T) {
	for _, backend := range []string{store.BackendFile, store.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)

			cfg := loadConfig(t, map[string]interface{}{
				"store.backend":    backend,
				"store.path":       "cache",
				"uploads.base_dir": filepath.Join(dir, "uploads"),
				"uploads.base_url": "https://example.com/uploads",
			})
			c, err := NewContainer(cfg, nil)
			require.NoError(t, err)
			defer c.Close()

			writeIcon(t, c.IconDir(), "a.svg", `<svg><rect width="1"/></svg>`)
			assert.Contains(t, c.NewCatalog().GetAllIcons(), "custom_a")

			_, ok, err := c.Store.Get(context.Background(), scanner.IndexKey)
			require.NoError(t, err)
			assert.True(t, ok, "fingerprint index persisted")
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	logger.Debug(context.Background(), "hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = NewLogger(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
}

func TestValidateFiles(t *testing.T) {
	uploads := t.TempDir()
	c := newContainer(t, uploads)
	dir := c.IconDir()

	good := writeIcon(t, dir, "good.svg", `<svg><use href="https://example.com/uploads/iconward-icons/sprite.svg#a"/></svg>`)
	foreign := writeIcon(t, dir, "foreign.svg", `<svg><use href="https://evil.example/sprite.svg#a"/></svg>`)
	text := writeIcon(t, dir, "readme.txt", `hello`)

	outcomes := c.ValidateFiles([]string{good, foreign, text})
	require.Len(t, outcomes, 3)

	assert.Equal(t, ValidationOutcome{File: good, Accepted: true, Key: "custom_good"}, outcomes[0])

	assert.False(t, outcomes[1].Accepted)
	assert.Equal(t, iconerrors.CodeUnsafeUseReference, outcomes[1].Reason)
	assert.Equal(t, "foreign.svg: contains an unsafe reference (it points to another host)", outcomes[1].Message)

	assert.Equal(t, iconerrors.CodeInvalidType, outcomes[2].Reason)
}

func TestValidateFilesWithoutUploads(t *testing.T) {
	c := newContainer(t, "")
	path := writeIcon(t, t.TempDir(), "ext.svg", `<svg><use href="https://example.com/a.svg#a"/></svg>`)

	outcomes := c.ValidateFiles([]string{path})
	require.Len(t, outcomes, 1)
	assert.Equal(t, iconerrors.CodeUnsafeUseReference, outcomes[0].Reason)
	assert.Contains(t, outcomes[0].Message, "external references are not allowed here")
}

func TestWatchRequiresUploads(t *testing.T) {
	c := newContainer(t, "")
	err := NewWatchService(c, 10*time.Millisecond).Watch(context.Background(), func(context.Context, []watcher.ChangeEvent) {})
	assert.Error(t, err)
}

func TestWatchReportsChanges(t *testing.T) {
	uploads := t.TempDir()
	c := newContainer(t, uploads)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var batches int
	done := make(chan error, 1)
	go func() {
		done <- NewWatchService(c, 20*time.Millisecond).Watch(ctx, func(context.Context, []watcher.ChangeEvent) {
			mu.Lock()
			batches++
			mu.Unlock()
		})
	}()

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return batches
	}

	// The icon directory does not exist yet; creating or removing it is a
	// change. Toggle until the watcher has started and reported one.
	require.Eventually(t, func() bool {
		if _, err := os.Stat(c.IconDir()); err == nil {
			_ = os.RemoveAll(c.IconDir())
		} else {
			_ = os.MkdirAll(c.IconDir(), 0o755)
		}
		return count() >= 1
	}, 3*time.Second, 50*time.Millisecond)

	seen := count()
	require.Eventually(t, func() bool {
		_ = os.MkdirAll(c.IconDir(), 0o755)
		_ = os.WriteFile(filepath.Join(c.IconDir(), "logo.svg"), []byte(`<svg/>`), 0o644)
		return count() > seen
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	uploads := t.TempDir()
	c := newContainer(t, uploads)
	c.Config.Server.Host = "127.0.0.1"
	c.Config.Server.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServeService(c).Serve(ctx, ServeOptions{Watch: true})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
