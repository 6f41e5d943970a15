package sanitize

import "strings"

// Allowlist answers which SVG elements and attributes survive Stage A.
// The table is built once at package initialization and never mutated.
type Allowlist struct {
	elements   map[string]map[string]struct{}
	global     map[string]struct{}
	references map[string]struct{}

	// CSS properties a style attribute may set, and the CSS and transform
	// functions any attribute value may call.
	styleProperties map[string]struct{}
	functions       map[string]struct{}
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// defaultAllowlist covers containers, paths, basic shapes, gradients, text
// and clipping/masking. Scripting, event handlers, foreignObject, animation
// and filters are absent.
var defaultAllowlist = &Allowlist{
	global: set(
		"id", "class", "style", "transform",
		"fill", "fill-opacity", "fill-rule",
		"stroke", "stroke-width", "stroke-linecap", "stroke-linejoin",
		"stroke-miterlimit", "stroke-dasharray", "stroke-dashoffset", "stroke-opacity",
		"opacity", "color", "display", "visibility", "vector-effect",
		"clip-path", "clip-rule", "mask",
		"role", "aria-hidden", "aria-label", "aria-labelledby", "focusable",
		"xml:space",
	),
	elements: map[string]map[string]struct{}{
		"svg": set("xmlns", "xmlns:xlink", "version", "viewBox", "width", "height",
			"x", "y", "preserveAspectRatio"),
		"g":        set(),
		"defs":     set(),
		"symbol":   set("viewBox", "preserveAspectRatio", "width", "height", "x", "y"),
		"use":      set("href", "xlink:href", "x", "y", "width", "height"),
		"title":    set(),
		"desc":     set(),
		"path":     set("d", "pathLength"),
		"rect":     set("x", "y", "width", "height", "rx", "ry", "pathLength"),
		"circle":   set("cx", "cy", "r", "pathLength"),
		"ellipse":  set("cx", "cy", "rx", "ry", "pathLength"),
		"line":     set("x1", "y1", "x2", "y2", "pathLength"),
		"polyline": set("points", "pathLength"),
		"polygon":  set("points", "pathLength"),
		"text": set("x", "y", "dx", "dy", "rotate", "textLength", "lengthAdjust",
			"font-family", "font-size", "font-weight", "font-style",
			"text-anchor", "dominant-baseline", "letter-spacing"),
		"tspan": set("x", "y", "dx", "dy", "rotate", "textLength", "lengthAdjust",
			"font-family", "font-size", "font-weight", "font-style",
			"text-anchor", "dominant-baseline", "letter-spacing"),
		"textPath": set("href", "xlink:href", "startOffset", "method", "spacing",
			"font-family", "font-size", "font-weight", "text-anchor"),
		"linearGradient": set("href", "xlink:href", "x1", "y1", "x2", "y2",
			"gradientUnits", "gradientTransform", "spreadMethod"),
		"radialGradient": set("href", "xlink:href", "cx", "cy", "r", "fx", "fy", "fr",
			"gradientUnits", "gradientTransform", "spreadMethod"),
		"stop":     set("offset", "stop-color", "stop-opacity"),
		"clipPath": set("clipPathUnits"),
		"mask":     set("x", "y", "width", "height", "maskUnits", "maskContentUnits"),
	},
	references: set("use", "textPath", "linearGradient", "radialGradient"),
	styleProperties: set(
		"fill", "fill-opacity", "fill-rule",
		"stroke", "stroke-width", "stroke-linecap", "stroke-linejoin",
		"stroke-miterlimit", "stroke-dasharray", "stroke-dashoffset", "stroke-opacity",
		"opacity", "color", "display", "visibility", "vector-effect",
		"clip-path", "clip-rule", "mask", "stop-color", "stop-opacity",
		"font-family", "font-size", "font-weight", "font-style",
		"text-anchor", "dominant-baseline", "letter-spacing",
	),
	functions: set(
		"url", "rgb", "rgba", "hsl", "hsla",
		"matrix", "translate", "scale", "rotate", "skewx", "skewy",
	),
}

// DefaultAllowlist returns the process-wide allowlist.
func DefaultAllowlist() *Allowlist {
	return defaultAllowlist
}

// AllowsElement reports whether an element survives Stage A.
func (a *Allowlist) AllowsElement(name string) bool {
	_, ok := a.elements[name]
	return ok
}

// AllowsAttribute reports whether attr may appear on element. Event
// handler attributes are refused regardless of the table.
func (a *Allowlist) AllowsAttribute(element, attr string) bool {
	if strings.HasPrefix(strings.ToLower(attr), "on") {
		return false
	}
	attrs, ok := a.elements[element]
	if !ok {
		return false
	}
	if _, ok := attrs[attr]; ok {
		return true
	}
	_, ok = a.global[attr]
	return ok
}

// AllowsStyleProperty reports whether a style declaration may set prop.
func (a *Allowlist) AllowsStyleProperty(prop string) bool {
	_, ok := a.styleProperties[strings.ToLower(strings.TrimSpace(prop))]
	return ok
}

// AllowsFunction reports whether a value may call the named function.
func (a *Allowlist) AllowsFunction(name string) bool {
	_, ok := a.functions[strings.ToLower(name)]
	return ok
}

// IsReferenceBearing reports whether href attributes on element must go
// through reference validation.
func (a *Allowlist) IsReferenceBearing(element string) bool {
	_, ok := a.references[element]
	return ok
}

// Elements returns the allowed element names.
func (a *Allowlist) Elements() []string {
	out := make([]string, 0, len(a.elements))
	for name := range a.elements {
		out = append(out, name)
	}
	return out
}
