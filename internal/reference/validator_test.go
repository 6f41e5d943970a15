package reference

import (
	"path/filepath"
	"testing"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUploads(t *testing.T) *UploadsContext {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "uploads", "icons")
	uploads, err := Resolve(dir, "https://example.com/wp-content/uploads/icons")
	require.NoError(t, err)
	return uploads
}

func TestResolve(t *testing.T) {
	t.Run("normalizes scheme host port and path", func(t *testing.T) {
		uploads, err := Resolve("/srv/uploads/icons/", "HTTPS://Example.com/uploads/icons/")
		require.NoError(t, err)

		assert.Equal(t, "https", uploads.Scheme)
		assert.Equal(t, "example.com", uploads.Host)
		assert.Equal(t, 443, uploads.Port)
		assert.Equal(t, "/uploads/icons/", uploads.NormalizedBasePath)
		assert.Equal(t, filepath.Clean("/srv/uploads/icons"), uploads.NormalizedBaseDir)
		assert.Equal(t, "https://example.com/uploads/icons/logo.svg", uploads.URLFor("logo.svg"))
	})

	t.Run("explicit port is kept", func(t *testing.T) {
		uploads, err := Resolve("/srv/icons", "http://localhost:8080")
		require.NoError(t, err)
		assert.Equal(t, 8080, uploads.Port)
		assert.Equal(t, "/", uploads.NormalizedBasePath)
	})

	failures := []struct {
		name    string
		dir     string
		baseURL string
	}{
		{"empty directory", "", "https://example.com"},
		{"missing scheme", "/srv/icons", "example.com/icons"},
		{"missing host", "/srv/icons", "https:///icons"},
		{"unparseable", "/srv/icons", "https://exa mple.com/%zz"},
		{"bad port", "/srv/icons", "https://example.com:99999/"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.dir, tt.baseURL)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	uploads := testUploads(t)

	tests := []struct {
		name   string
		value  string
		detail iconerrors.Code
	}{
		{name: "empty value", value: ""},
		{name: "whitespace value", value: "   "},
		{name: "fragment", value: "#arrow"},
		{name: "namespaced fragment", value: "#icon:arrow-left_2"},
		{name: "same-origin absolute URL", value: "https://example.com/wp-content/uploads/icons/sprite.svg#a"},
		{name: "explicit default port", value: "https://example.com:443/wp-content/uploads/icons/sprite.svg"},
		{name: "root-relative path", value: "/wp-content/uploads/icons/sprite.svg"},
		{name: "relative path", value: "sprite.svg#arrow"},
		{name: "scheme-relative same host", value: "//example.com/wp-content/uploads/icons/sprite.svg"},

		{name: "bare hash", value: "#", detail: iconerrors.DetailInvalidFragmentIdentifier},
		{name: "fragment with script", value: "#a);alert(1", detail: iconerrors.DetailInvalidFragmentIdentifier},
		{name: "fragment starting with dash", value: "#-a", detail: iconerrors.DetailInvalidFragmentIdentifier},
		{name: "unparseable URL", value: "https://example.com/%zz", detail: iconerrors.DetailInvalidURL},
		{name: "foreign host", value: "https://evil.example/x.svg#y", detail: iconerrors.DetailHostMismatch},
		{name: "scheme change", value: "http://example.com/wp-content/uploads/icons/a.svg", detail: iconerrors.DetailHostMismatch},
		{name: "javascript scheme", value: "javascript:alert(1)", detail: iconerrors.DetailHostMismatch},
		{name: "data scheme", value: "data:image/svg+xml;base64,PHN2Zy8+", detail: iconerrors.DetailHostMismatch},
		{name: "scheme-relative foreign host", value: "//evil.example/a.svg", detail: iconerrors.DetailHostMismatch},
		{name: "foreign port", value: "https://example.com:8443/wp-content/uploads/icons/a.svg", detail: iconerrors.DetailPortMismatch},
		{name: "query only", value: "?v=1", detail: iconerrors.DetailEmptyPath},
		{name: "host without path", value: "https://example.com", detail: iconerrors.DetailEmptyPath},
		{name: "relative traversal", value: "../../secrets", detail: iconerrors.DetailPathTraversal},
		{name: "encoded traversal", value: "/wp-content/uploads/icons/%2e%2e/%2e%2e/secrets", detail: iconerrors.DetailPathTraversal},
		{name: "double encoded traversal", value: "/wp-content/uploads/icons/%252e%252e/secrets", detail: iconerrors.DetailPathTraversal},
		{name: "backslash traversal", value: "/wp-content/uploads/icons/..\\secrets", detail: iconerrors.DetailPathTraversal},
		{name: "outside uploads", value: "/wp-admin/a.svg", detail: iconerrors.DetailOutsideUploads},
		{name: "sibling prefix directory", value: "/wp-content/uploads/icons-evil/a.svg", detail: iconerrors.DetailOutsideUploads},
		{name: "uploads root itself", value: "https://example.com/wp-content/uploads/icons/", detail: iconerrors.DetailEmptyRelativePath},
		{name: "dot segment resolves to root", value: "/wp-content/uploads/icons/./", detail: iconerrors.DetailOutsideBaseDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.value, uploads)
			if tt.detail == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.detail, iconerrors.CodeOf(err))
			assert.True(t, iconerrors.IsSecurityError(err))
		})
	}
}

func TestValidateWithoutUploadsContext(t *testing.T) {
	assert.NoError(t, Validate("#arrow", nil))
	assert.NoError(t, Validate("", nil))

	err := Validate("https://example.com/a.svg", nil)
	require.Error(t, err)
	assert.Equal(t, iconerrors.DetailUploadsContextMissing, iconerrors.CodeOf(err))
}
