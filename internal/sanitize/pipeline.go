// Package sanitize turns untrusted SVG markup into markup that is safe to
// inline. Sanitization runs in three stages: an element/attribute allowlist
// filter, a parse-validate-serialize pass that checks every cross-reference,
// and an equivalence guard that refuses output which drifted from the input.
package sanitize

import (
	"strings"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
	"github.com/conneroisu/iconward/internal/reference"
)

// Result is the outcome of a successful sanitization.
type Result struct {
	Markup string
	// Modified is set when Stage B deliberately rewrote the tree. Nothing
	// rewrites references yet, so it is always false today.
	Modified bool
}

// Pipeline runs the three sanitization stages. It holds no mutable state and
// is safe for concurrent use.
type Pipeline struct {
	allow  *Allowlist
	filter FilterFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFilter replaces the Stage A filter.
func WithFilter(f FilterFunc) Option {
	return func(p *Pipeline) {
		p.filter = f
	}
}

// WithAllowlist replaces the allowlist handed to the filter and used to find
// reference-bearing elements.
func WithAllowlist(a *Allowlist) Option {
	return func(p *Pipeline) {
		p.allow = a
	}
}

// NewPipeline creates a pipeline using the default allowlist and filter.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		allow:  DefaultAllowlist(),
		filter: Filter,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Sanitize runs raw markup through all stages. uploads may be nil, in which
// case only local fragment references are accepted. Failures are
// *errors.IconError values carrying the rejection Code.
func (p *Pipeline) Sanitize(raw string, uploads *reference.UploadsContext) (Result, error) {
	filtered := p.filter(raw, p.allow)
	if strings.TrimSpace(filtered) == "" {
		return Result{}, iconerrors.NewValidationError(iconerrors.CodeEmptyAfterSanitize,
			"markup is empty after allowlist filtering")
	}

	doc, err := ParseDocument(filtered)
	if err != nil {
		return Result{}, iconerrors.NewValidationError(iconerrors.CodeDOMImportFailed,
			"markup could not be parsed").WithCause(err)
	}

	if err := p.validateReferences(doc, uploads); err != nil {
		return Result{}, err
	}

	final, err := doc.Render()
	if err != nil {
		return Result{}, iconerrors.NewValidationError(iconerrors.CodeDOMExportFailed,
			"markup could not be serialized").WithCause(err)
	}

	result := Result{Markup: final}

	original := Normalize(raw)
	if original == "" {
		return Result{}, iconerrors.NewValidationError(iconerrors.CodeEmptyOriginal,
			"original markup is empty")
	}
	if !result.Modified && original != Normalize(final) {
		return Result{}, iconerrors.NewValidationError(iconerrors.CodeMismatchedSanitization,
			"sanitized markup differs from the original")
	}

	return result, nil
}

func (p *Pipeline) validateReferences(doc *Node, uploads *reference.UploadsContext) error {
	return doc.Walk(func(n *Node) error {
		if !p.allow.IsReferenceBearing(n.Name) {
			return nil
		}
		for _, a := range n.Attrs {
			if !isReferenceAttribute(a.Name) {
				continue
			}
			if err := reference.Validate(a.Value, uploads); err != nil {
				return iconerrors.NewSecurityError(iconerrors.CodeUnsafeUseReference,
					"element <"+n.Name+"> has an unsafe reference").
					WithContext(iconerrors.ContextDetail, string(iconerrors.CodeOf(err))).
					WithContext(iconerrors.ContextReference, a.Value).
					WithCause(err)
			}
		}
		return nil
	})
}
