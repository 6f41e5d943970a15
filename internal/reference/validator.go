package reference

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
)

// fragmentIdentifier is the grammar accepted for local "#id" references.
var fragmentIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_:\-]*$`)

// Validate checks one href-style value. A nil error means the reference is
// safe: empty, a well-formed local fragment, or a URL that resolves inside
// the uploads directory. Failures are security IconErrors whose Code is one
// of the Detail* codes.
func Validate(value string, uploads *UploadsContext) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if strings.HasPrefix(value, "#") {
		if !fragmentIdentifier.MatchString(value[1:]) {
			return reject(iconerrors.DetailInvalidFragmentIdentifier, "fragment identifier is not allowed")
		}
		return nil
	}

	if uploads == nil {
		return reject(iconerrors.DetailUploadsContextMissing, "external reference without an uploads location")
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return reject(iconerrors.DetailInvalidURL, "reference is not a valid URL").WithCause(err)
	}

	var path string
	if parsed.Scheme == "" && parsed.Host == "" {
		if parsed.Path == "" {
			return reject(iconerrors.DetailEmptyPath, "reference has no path")
		}
		path = parsed.Path
		if !strings.HasPrefix(path, "/") {
			path = uploads.NormalizedBasePath + path
		}
	} else {
		scheme := strings.ToLower(parsed.Scheme)
		if scheme == "" {
			scheme = uploads.Scheme
		}
		if scheme != uploads.Scheme || strings.ToLower(parsed.Hostname()) != uploads.Host {
			return reject(iconerrors.DetailHostMismatch, "reference points to a foreign host")
		}
		port, err := normalizedPort(scheme, parsed.Port())
		if err != nil || port != uploads.Port {
			return reject(iconerrors.DetailPortMismatch, "reference points to a foreign port")
		}
		path = parsed.Path
	}

	if path == "" {
		return reject(iconerrors.DetailEmptyPath, "reference has no path")
	}

	if hasTraversal(path) {
		return reject(iconerrors.DetailPathTraversal, "reference contains a parent directory segment")
	}

	if !strings.HasPrefix(path, uploads.NormalizedBasePath) {
		return reject(iconerrors.DetailOutsideUploads, "reference is outside the uploads location")
	}

	relative := strings.Trim(strings.TrimPrefix(path, uploads.NormalizedBasePath), "/")
	if relative == "" {
		return reject(iconerrors.DetailEmptyRelativePath, "reference names the uploads location itself")
	}

	resolved := filepath.Join(uploads.NormalizedBaseDir, filepath.FromSlash(relative))
	if !strings.HasPrefix(resolved, uploads.NormalizedBaseDir+string(filepath.Separator)) {
		return reject(iconerrors.DetailOutsideBaseDir, "reference resolves outside the uploads directory")
	}

	return nil
}

// hasTraversal reports whether any segment of the decoded path is "..".
// The path is decoded once more so double-encoded dots are caught too.
func hasTraversal(path string) bool {
	candidates := []string{path}
	if decoded, err := url.PathUnescape(path); err == nil && decoded != path {
		candidates = append(candidates, decoded)
	}

	for _, candidate := range candidates {
		segments := strings.FieldsFunc(candidate, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		for _, segment := range segments {
			if strings.TrimSpace(segment) == ".." {
				return true
			}
		}
	}
	return false
}

func reject(detail iconerrors.Code, message string) *iconerrors.IconError {
	return iconerrors.NewSecurityError(detail, message)
}
