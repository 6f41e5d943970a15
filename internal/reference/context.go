// Package reference validates cross-references found inside SVG markup
// against the one uploads location custom icons may point into.
package reference

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// UploadsContext describes where custom icon files live on disk and under
// which public URL they are served. It is resolved once per scan and never
// mutated afterwards.
type UploadsContext struct {
	BaseURL            string
	NormalizedBaseDir  string
	Scheme             string
	Host               string
	Port               int
	NormalizedBasePath string
}

// Resolve builds an UploadsContext from a directory path and its public base
// URL. The URL must carry a scheme and a host.
func Resolve(baseDir, baseURL string) (*UploadsContext, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("uploads directory is empty")
	}

	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid uploads URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Hostname())
	if scheme == "" || host == "" {
		return nil, fmt.Errorf("uploads URL %q must have a scheme and host", baseURL)
	}

	port, err := normalizedPort(scheme, parsed.Port())
	if err != nil {
		return nil, fmt.Errorf("invalid uploads URL port: %w", err)
	}

	parsed.Scheme = scheme
	parsed.Host = strings.ToLower(parsed.Host)

	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving uploads directory: %w", err)
	}

	return &UploadsContext{
		BaseURL:            strings.TrimRight(parsed.String(), "/"),
		NormalizedBaseDir:  filepath.Clean(absDir),
		Scheme:             scheme,
		Host:               host,
		Port:               port,
		NormalizedBasePath: normalizeBasePath(parsed.Path),
	}, nil
}

// URLFor returns the public URL of a file directly inside the uploads
// directory.
func (c *UploadsContext) URLFor(encodedFilename string) string {
	return c.BaseURL + "/" + encodedFilename
}

// normalizeBasePath turns "", "/", "/a/b", "a/b/" into "/", "/", "/a/b/", "/a/b/".
func normalizeBasePath(p string) string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed + "/"
}

// normalizedPort returns the explicit port, or the scheme default when none is
// given. Unknown schemes without a port normalize to 0.
func normalizedPort(scheme, port string) (int, error) {
	if port == "" {
		return DefaultPort(scheme), nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return 0, fmt.Errorf("port %q out of range", port)
	}
	return n, nil
}

// DefaultPort returns the well-known port for http and https.
func DefaultPort(scheme string) int {
	switch strings.ToLower(scheme) {
	case "http":
		return 80
	case "https":
		return 443
	default:
		return 0
	}
}
