package sanitize

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var (
	processingInstruction = regexp.MustCompile(`(?s)<\?.*?\?>`)
	doctypeDecl           = regexp.MustCompile(`(?is)<!DOCTYPE[^>\[]*(\[.*?\])?\s*>`)
	commentBlock          = regexp.MustCompile(`(?s)<!--.*?-->`)
	cdataSection          = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	attrEquals            = regexp.MustCompile(`\s*=\s*`)
	singleQuoted          = regexp.MustCompile(`='([^']*)'`)
	whitespaceRef         = regexp.MustCompile(`&#(?:[xX]([0-9a-fA-F]+)|([0-9]+));`)
	whitespaceRun         = regexp.MustCompile(`\s+`)
	betweenTags           = regexp.MustCompile(`>\s+<`)
	emptyPair             = regexp.MustCompile(`<([A-Za-z_][A-Za-z0-9_:.\-]*)((?:\s[^<>]*?)?)></([A-Za-z_][A-Za-z0-9_:.\-]*)>`)
	spaceBeforeClose      = regexp.MustCompile(`\s+(/?>)`)
)

// Normalize reduces markup to a form where purely syntactic differences
// disappear: prolog, doctype and comments are stripped, quoting and
// whitespace are unified, empty element pairs become self-closing and
// character references are decoded. Two documents with the same elements,
// attributes and text normalize to the same string.
func Normalize(markup string) string {
	s := processingInstruction.ReplaceAllString(markup, "")
	s = doctypeDecl.ReplaceAllString(s, "")
	s = commentBlock.ReplaceAllString(s, "")
	s = cdataSection.ReplaceAllStringFunc(s, func(m string) string {
		return escapeText(cdataSection.FindStringSubmatch(m)[1])
	})

	s = whitespaceRef.ReplaceAllStringFunc(s, decodeWhitespaceRef)

	s = attrEquals.ReplaceAllString(s, "=")
	s = singleQuoted.ReplaceAllString(s, `="$1"`)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = betweenTags.ReplaceAllString(s, "><")
	s = spaceBeforeClose.ReplaceAllString(s, "$1")

	s = emptyPair.ReplaceAllStringFunc(s, func(m string) string {
		parts := emptyPair.FindStringSubmatch(m)
		if parts[1] != parts[3] {
			return m
		}
		return "<" + parts[1] + parts[2] + "/>"
	})

	return strings.TrimSpace(html.UnescapeString(s))
}

// decodeWhitespaceRef turns a character reference to a whitespace character
// into the literal character so it collapses like any other whitespace.
// Other references are left for the final unescape.
func decodeWhitespaceRef(ref string) string {
	parts := whitespaceRef.FindStringSubmatch(ref)
	var (
		n   uint64
		err error
	)
	if parts[1] != "" {
		n, err = strconv.ParseUint(parts[1], 16, 32)
	} else {
		n, err = strconv.ParseUint(parts[2], 10, 32)
	}
	if err != nil {
		return ref
	}
	switch r := rune(n); r {
	case '\t', '\n', '\f', '\r', ' ':
		return string(r)
	}
	return ref
}
