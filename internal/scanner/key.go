package scanner

import (
	"bytes"
	"encoding/xml"
	"path/filepath"
	"strings"
)

// DefaultKeyPrefix marks custom icon keys so they never collide with
// built-in ones.
const DefaultKeyPrefix = "custom_"

// SanitizeKey lowercases s and keeps only ASCII letters, digits,
// underscores and hyphens.
func SanitizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DeriveKey builds the catalog key for a custom icon file. It returns ""
// when the filename stem has no usable characters.
func DeriveKey(prefix, filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	sanitized := SanitizeKey(stem)
	if sanitized == "" {
		return ""
	}
	return prefix + sanitized
}

func hasSVGExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".svg")
}

// looksLikeSVG reports whether the first element of data is <svg>, skipping
// the prolog, comments, doctype and whitespace.
func looksLikeSVG(data []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	for {
		tok, err := dec.RawToken()
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t.Name.Local == "svg"
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return false
			}
		}
	}
}
