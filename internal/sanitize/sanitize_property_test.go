//go:build property

package sanitize

import (
	"strings"
	"testing"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var compliantFragments = []string{
	`<path d="M0 0h24v24H0z"/>`,
	`<circle cx="12" cy="12" r="4" fill="currentColor"/>`,
	`<rect x="1" y="1" width="4" height="4" rx="1"/>`,
	`<g transform="translate(2 2)"><line x1="0" y1="0" x2="4" y2="4" stroke="black"/></g>`,
	`<defs><path id="arrow" d="M0 0L4 4"/></defs>`,
	`<use href="#arrow"/>`,
	`<title>Icon &amp; label</title>`,
	"\n  ",
	`<polygon points="0,0 4,0 2,4"/>`,
	`<text x="2" y="10">A<tspan dy="1">b</tspan></text>`,
}

// TestSanitizeProperties validates sanitizer behavior over generated documents
func TestSanitizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	p := NewPipeline()

	fragments := gen.SliceOf(gen.IntRange(0, len(compliantFragments)-1))

	build := func(indexes []int) string {
		var b strings.Builder
		b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24">`)
		for _, i := range indexes {
			b.WriteString(compliantFragments[i])
		}
		b.WriteString(`</svg>`)
		return b.String()
	}

	// Property: compliant markup is accepted and sanitizing twice changes nothing
	properties.Property("sanitize is idempotent on compliant markup", prop.ForAll(
		func(indexes []int) bool {
			first, err := p.Sanitize(build(indexes), nil)
			if err != nil {
				return false
			}
			second, err := p.Sanitize(first.Markup, nil)
			if err != nil {
				return false
			}
			return first.Markup == second.Markup
		},
		fragments,
	))

	// Property: any injected script element causes rejection
	properties.Property("script injection is never accepted", prop.ForAll(
		func(indexes []int) bool {
			markup := build(indexes)
			pos := strings.Index(markup, ">") + 1
			injected := markup[:pos] + `<script>alert(1)</script>` + markup[pos:]
			_, err := p.Sanitize(injected, nil)
			return iconerrors.CodeOf(err) == iconerrors.CodeMismatchedSanitization
		},
		fragments,
	))

	properties.TestingRun(t)
}
