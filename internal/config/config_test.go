package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, Config{
		Icons: IconsConfig{
			CustomSubdir: "iconward-icons",
			KeyPrefix:    "custom_",
			MaxFiles:     200,
			MaxFileSize:  204800,
			CacheTTL:     12 * time.Hour,
		},
		Store:  StoreConfig{Backend: "file", Path: ".iconward/cache"},
		Server: ServerConfig{Host: "localhost", Port: 8787},
		Log:    LogConfig{Level: "info", Format: "text"},
	}, *cfg)
	assert.Equal(t, "localhost:8787", cfg.Server.Addr())
}

func TestLoadGlobalViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.port", 9000)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 200, cfg.Icons.MaxFiles)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".iconward.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
uploads:
  base_dir: /srv/uploads
  base_url: https://example.com/uploads
icons:
  max_files: 50
  cache_ttl: 30m
store:
  backend: sqlite
  path: cache/icons.db
log:
  level: debug
  format: json
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, UploadsConfig{BaseDir: "/srv/uploads", BaseURL: "https://example.com/uploads"}, cfg.Uploads)
	assert.Equal(t, 50, cfg.Icons.MaxFiles)
	assert.Equal(t, 30*time.Minute, cfg.Icons.CacheTTL)
	assert.Equal(t, int64(204800), cfg.Icons.MaxFileSize)
	assert.Equal(t, StoreConfig{Backend: "sqlite", Path: "cache/icons.db"}, cfg.Store)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ICONWARD_ICONS_MAX_FILE_SIZE", "1024")
	t.Setenv("ICONWARD_STORE_BACKEND", "memory")
	t.Setenv("ICONWARD_UPLOADS_BASE_DIR", "/tmp/uploads")

	v := viper.New()
	v.SetEnvPrefix("ICONWARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), cfg.Icons.MaxFileSize)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "/tmp/uploads", cfg.Uploads.BaseDir)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
		field string
	}{
		{"zero max files", "icons.max_files", 0, "icons.max_files"},
		{"negative size", "icons.max_file_size", -1, "icons.max_file_size"},
		{"zero ttl", "icons.cache_ttl", "0s", "icons.cache_ttl"},
		{"uppercase prefix", "icons.key_prefix", "Custom_", "icons.key_prefix"},
		{"unknown backend", "store.backend", "redis", "store.backend"},
		{"traversing store path", "store.path", "../outside", "store.path"},
		{"relative base url", "uploads.base_url", "/uploads", "uploads.base_url"},
		{"ftp base url", "uploads.base_url", "ftp://example.com/uploads", "uploads.base_url"},
		{"port out of range", "server.port", 70000, "server.port"},
		{"dangerous host", "server.host", "local;host", "server.host"},
		{"unknown log level", "log.level", "verbose", "log.level"},
		{"unknown log format", "log.format", "xml", "log.format"},
		{"absolute subdir", "icons.custom_subdir", "/abs", "icons.custom_subdir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			cfg, err := LoadFrom(v)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, iconerrors.CodeConfigInvalid, iconerrors.CodeOf(err))
			assert.Equal(t, tt.field, iconerrors.ContextOf(err)["field"])
		})
	}
}

func TestLoadUndecodable(t *testing.T) {
	v := viper.New()
	v.Set("server.port", "not-a-port")

	_, err := LoadFrom(v)
	require.Error(t, err)
	assert.Equal(t, iconerrors.CodeConfigInvalid, iconerrors.CodeOf(err))
}

func TestMemoryBackendIgnoresPath(t *testing.T) {
	v := viper.New()
	v.Set("store.backend", "memory")
	v.Set("store.path", "")

	_, err := LoadFrom(v)
	assert.NoError(t, err)
}

func TestValidateWarnings(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	result := Validate(cfg)
	assert.True(t, result.Valid)
	assert.False(t, result.HasErrors())
	require.True(t, result.HasWarnings())
	assert.Equal(t, "uploads.base_dir", result.Warnings[0].Field)

	cfg.Uploads.BaseDir = "/srv/uploads"
	result = Validate(cfg)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "uploads.base_url", result.Warnings[0].Field)

	cfg.Server.Port = 80
	result = Validate(cfg)
	assert.Len(t, result.Warnings, 2)
}

func TestValidationResultString(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)
	cfg.Store.Backend = "redis"

	result := Validate(cfg)
	out := result.String()
	assert.Contains(t, out, "Validation Errors")
	assert.Contains(t, out, "store.backend")
	assert.Contains(t, out, "Available backends: memory, file, sqlite")
	assert.Contains(t, out, "Validation Warnings")
}
