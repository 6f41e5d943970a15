package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/conneroisu/iconward/internal/logging"
	"github.com/conneroisu/iconward/internal/store"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("❌ Validation Errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("⚠️  Validation Warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

// Validate checks every section and reports all problems found.
func Validate(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateUploads(&config.Uploads, result)
	validateIcons(&config.Icons, result)
	validateStore(&config.Store, result)
	validateServer(&config.Server, result)
	validateLog(&config.Log, result)

	result.Valid = !result.HasErrors()
	return result
}

func validateUploads(config *UploadsConfig, result *ValidationResult) {
	if config.BaseURL != "" {
		u, err := url.Parse(config.BaseURL)
		switch {
		case err != nil:
			result.addError("uploads.base_url", config.BaseURL, err.Error(),
				"Use an absolute URL such as https://example.com/uploads")
		case u.Scheme != "http" && u.Scheme != "https":
			result.addError("uploads.base_url", config.BaseURL, "scheme must be http or https",
				"Use an absolute URL such as https://example.com/uploads")
		case u.Host == "":
			result.addError("uploads.base_url", config.BaseURL, "URL has no host")
		}
	}

	if config.BaseDir == "" {
		result.addWarning("uploads.base_dir", config.BaseDir, "no uploads directory configured; only built-in icons are available",
			"Set uploads.base_dir or ICONWARD_UPLOADS_BASE_DIR")
	} else if config.BaseURL == "" {
		result.addWarning("uploads.base_url", config.BaseURL, "uploads directory set without a base URL; custom icons are disabled",
			"Set uploads.base_url to the public URL of uploads.base_dir")
	}
}

func validateIcons(config *IconsConfig, result *ValidationResult) {
	if config.MaxFiles <= 0 {
		result.addError("icons.max_files", config.MaxFiles, "must be positive")
	}
	if config.MaxFileSize <= 0 {
		result.addError("icons.max_file_size", config.MaxFileSize, "must be positive",
			"The default is 204800 bytes (200 KB)")
	}
	if config.CacheTTL <= 0 {
		result.addError("icons.cache_ttl", config.CacheTTL.String(), "must be positive",
			"Use a Go duration such as 12h or 30m")
	}
	if !keyPrefixPattern.MatchString(config.KeyPrefix) {
		result.addError("icons.key_prefix", config.KeyPrefix, "must be non-empty lowercase letters, digits, '_' or '-'")
	}
	if config.CustomSubdir != "" {
		if err := validatePath(config.CustomSubdir); err != nil {
			result.addError("icons.custom_subdir", config.CustomSubdir, err.Error())
		} else if filepath.IsAbs(config.CustomSubdir) {
			result.addError("icons.custom_subdir", config.CustomSubdir, "must be relative to uploads.base_dir")
		}
	}
}

var keyPrefixPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

func validateStore(config *StoreConfig, result *ValidationResult) {
	backends := []string{store.BackendMemory, store.BackendFile, store.BackendSQLite}
	if !slices.Contains(backends, config.Backend) {
		result.addError("store.backend", config.Backend, fmt.Sprintf("unknown backend %q", config.Backend),
			"Available backends: "+strings.Join(backends, ", "))
	}
	if config.Backend != store.BackendMemory {
		if err := validatePath(config.Path); err != nil {
			result.addError("store.path", config.Path, err.Error())
		}
	}
}

func validateServer(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port, fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access",
			"Port 0 allows system to assign an available port",
		)
	} else if config.Port > 0 && config.Port < 1024 {
		result.addWarning("server.port", config.Port, "port below 1024 requires elevated privileges")
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.addError("server.host", config.Host, err.Error(),
				"Use 'localhost' for local development",
				"Use '0.0.0.0' to bind to all interfaces",
			)
		}
	}
}

func validateLog(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.addError("log.level", config.Level, err.Error(), "Use debug, info, warn or error")
	}
	if config.Format != "" && config.Format != "text" && config.Format != "json" {
		result.addError("log.format", config.Format, "format must be text or json")
	}
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return fmt.Errorf("path contains traversal: %s", path)
		}
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func validateHostname(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if !hostnamePattern.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}
