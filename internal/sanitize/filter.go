package sanitize

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// FilterFunc is the structural allowlist stage. It receives raw markup and
// returns markup containing only allowed elements and attributes.
type FilterFunc func(markup string, allow *Allowlist) string

var (
	cssURL      = regexp.MustCompile(`(?i)url\(\s*(['"]?)([^)'"]*)(['"]?)\s*\)`)
	localCSSRef = regexp.MustCompile(`^#[A-Za-z_][A-Za-z0-9_:\-]*$`)
	cssFunction = regexp.MustCompile(`([A-Za-z_\-][A-Za-z0-9_\-]*)?\s*\(`)

	unsafeValueMarkers = []string{
		"javascript:", "vbscript:", "data:", "expression(", "@import",
		"behavior:", "-moz-binding", "<", "\\",
	}
)

// Filter is the default Stage A implementation. Disallowed elements are
// removed together with their content; disallowed attributes and attributes
// with active values are dropped; comments, processing instructions and
// directives are discarded. Tokenizing stops at the first syntax error and
// whatever was emitted so far is returned.
func Filter(markup string, allow *Allowlist) string {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = true

	w := &markupWriter{}
	skip := 0

	for {
		tok, err := dec.RawToken()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skip > 0 {
				skip++
				continue
			}
			name := qualifiedName(t.Name)
			if !allow.AllowsElement(name) {
				skip = 1
				continue
			}
			w.start(name, filterAttributes(name, t.Attr, allow))
		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			w.end(qualifiedName(t.Name))
		case xml.CharData:
			if skip > 0 {
				continue
			}
			w.text(string(t))
		}
	}

	w.flush()
	return w.String()
}

func filterAttributes(element string, attrs []xml.Attr, allow *Allowlist) []Attr {
	kept := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		name := qualifiedName(a.Name)
		if !allow.AllowsAttribute(element, name) {
			continue
		}
		if !isReferenceAttribute(name) && !safeAttributeValue(name, a.Value, allow) {
			continue
		}
		if name == "style" && !safeStyle(a.Value, allow) {
			continue
		}
		kept = append(kept, Attr{Name: name, Value: a.Value})
	}
	return kept
}

// safeAttributeValue rejects values that can pull in or execute content.
// Only allowlisted functions may be called, and url() may only name a local
// fragment. aria-label is free text and skips the function check. Reference
// attributes are exempt; Stage B validates those explicitly.
func safeAttributeValue(name, value string, allow *Allowlist) bool {
	lower := strings.ToLower(value)
	for _, marker := range unsafeValueMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	if name != "aria-label" {
		for _, m := range cssFunction.FindAllStringSubmatch(value, -1) {
			if !allow.AllowsFunction(m[1]) {
				return false
			}
		}
	}

	for _, m := range cssURL.FindAllStringSubmatch(value, -1) {
		if m[1] != m[3] || !localCSSRef.MatchString(strings.TrimSpace(m[2])) {
			return false
		}
	}
	if strings.Contains(lower, "url(") && !cssURL.MatchString(value) {
		return false
	}
	return true
}

// safeStyle accepts a style attribute only when every declaration sets an
// allowlisted property.
func safeStyle(value string, allow *Allowlist) bool {
	if strings.Contains(value, "/*") {
		return false
	}
	for _, decl := range strings.Split(value, ";") {
		if strings.TrimSpace(decl) == "" {
			continue
		}
		prop, _, ok := strings.Cut(decl, ":")
		if !ok || !allow.AllowsStyleProperty(prop) {
			return false
		}
	}
	return true
}

func isReferenceAttribute(name string) bool {
	return name == "href" || name == "xlink:href"
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// markupWriter emits markup in the one canonical shape shared by Stage A
// and the Stage B serializer: double-quoted attributes, self-closing empty
// elements.
type markupWriter struct {
	b       strings.Builder
	pending *pendingElement
}

type pendingElement struct {
	name  string
	attrs []Attr
}

func (w *markupWriter) start(name string, attrs []Attr) {
	w.flush()
	w.pending = &pendingElement{name: name, attrs: attrs}
}

func (w *markupWriter) end(name string) {
	if w.pending != nil && w.pending.name == name {
		writeStartTag(&w.b, w.pending.name, w.pending.attrs, true)
		w.pending = nil
		return
	}
	w.flush()
	w.b.WriteString("</")
	w.b.WriteString(name)
	w.b.WriteByte('>')
}

func (w *markupWriter) text(s string) {
	if s == "" {
		return
	}
	w.flush()
	w.b.WriteString(escapeText(s))
}

func (w *markupWriter) flush() {
	if w.pending == nil {
		return
	}
	writeStartTag(&w.b, w.pending.name, w.pending.attrs, false)
	w.pending = nil
}

func (w *markupWriter) String() string {
	return w.b.String()
}

func writeStartTag(b *strings.Builder, name string, attrs []Attr, selfClose bool) {
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}
	if selfClose {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
