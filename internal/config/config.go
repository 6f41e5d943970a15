// Package config loads iconward configuration using Viper from a config
// file, ICONWARD_ environment variables and command-line flags.
//
// Defaults are registered on the Viper instance before unmarshalling so
// that every key can be overridden from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
	"github.com/conneroisu/iconward/internal/store"
)

// Defaults.
const (
	DefaultCustomSubdir = "iconward-icons"
	DefaultKeyPrefix    = "custom_"
	DefaultMaxFiles     = 200
	DefaultMaxFileSize  = 200 * 1024
	DefaultCacheTTL     = 12 * time.Hour
	DefaultStoreBackend = store.BackendFile
	DefaultStorePath    = ".iconward/cache"
	DefaultHost         = "localhost"
	DefaultPort         = 8787
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

type Config struct {
	Uploads UploadsConfig `mapstructure:"uploads" json:"uploads" yaml:"uploads"`
	Icons   IconsConfig   `mapstructure:"icons" json:"icons" yaml:"icons"`
	Store   StoreConfig   `mapstructure:"store" json:"store" yaml:"store"`
	Server  ServerConfig  `mapstructure:"server" json:"server" yaml:"server"`
	Log     LogConfig     `mapstructure:"log" json:"log" yaml:"log"`
}

// UploadsConfig locates the uploads directory and the URL it is served under.
type UploadsConfig struct {
	BaseDir string `mapstructure:"base_dir" json:"base_dir" yaml:"base_dir"`
	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
}

type IconsConfig struct {
	CustomSubdir string        `mapstructure:"custom_subdir" json:"custom_subdir" yaml:"custom_subdir"`
	KeyPrefix    string        `mapstructure:"key_prefix" json:"key_prefix" yaml:"key_prefix"`
	MaxFiles     int           `mapstructure:"max_files" json:"max_files" yaml:"max_files"`
	MaxFileSize  int64         `mapstructure:"max_file_size" json:"max_file_size" yaml:"max_file_size"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" json:"cache_ttl" yaml:"cache_ttl"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" json:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" json:"path" yaml:"path"`
}

type ServerConfig struct {
	Host string `mapstructure:"host" json:"host" yaml:"host"`
	Port int    `mapstructure:"port" json:"port" yaml:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("uploads.base_dir", "")
	v.SetDefault("uploads.base_url", "")
	v.SetDefault("icons.custom_subdir", DefaultCustomSubdir)
	v.SetDefault("icons.key_prefix", DefaultKeyPrefix)
	v.SetDefault("icons.max_files", DefaultMaxFiles)
	v.SetDefault("icons.max_file_size", DefaultMaxFileSize)
	v.SetDefault("icons.cache_ttl", DefaultCacheTTL)
	v.SetDefault("store.backend", DefaultStoreBackend)
	v.SetDefault("store.path", DefaultStorePath)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

// Load reads configuration from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from v, applies defaults and validates.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config, err := Decode(v)
	if err != nil {
		return nil, err
	}

	result := Validate(config)
	if result.HasErrors() {
		first := result.Errors[0]
		return nil, iconerrors.NewConfigError(iconerrors.CodeConfigInvalid,
			fmt.Sprintf("invalid configuration: %s", first.Error())).
			WithContext("field", first.Field)
	}

	return config, nil
}

// Decode applies defaults and unmarshals v without validating.
func Decode(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, iconerrors.NewConfigError(iconerrors.CodeConfigInvalid, "cannot decode configuration").
			WithCause(err)
	}
	return &config, nil
}
