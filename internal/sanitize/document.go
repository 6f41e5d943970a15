package sanitize

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// maxDepth bounds element nesting accepted by the parser.
const maxDepth = 128

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*(:[A-Za-z_][A-Za-z0-9_.\-]*)?$`)

// Attr is one attribute, with its prefix folded into Name ("xlink:href").
type Attr struct {
	Name  string
	Value string
}

// Node is an element or a text node of a parsed SVG document. Text nodes
// have an empty Name.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Name == ""
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Walk visits n and every descendant element depth-first, stopping at the
// first error.
func (n *Node) Walk(fn func(*Node) error) error {
	if n.IsText() {
		return nil
	}
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// ParseDocument builds a tree from well-formed SVG markup. It requires a
// single <svg> root, balanced tags and unique attribute names.
func ParseDocument(markup string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = true

	var (
		root  *Node
		stack []*Node
	)

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing markup: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) >= maxDepth {
				return nil, fmt.Errorf("element nesting exceeds %d levels", maxDepth)
			}
			node := &Node{Name: qualifiedName(t.Name)}
			seen := make(map[string]bool, len(t.Attr))
			for _, a := range t.Attr {
				name := qualifiedName(a.Name)
				if seen[name] {
					return nil, fmt.Errorf("attribute %q redefined on <%s>", name, node.Name)
				}
				seen[name] = true
				node.Attrs = append(node.Attrs, Attr{Name: name, Value: a.Value})
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("extra content after root element")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 0 || stack[len(stack)-1].Name != name {
				return nil, fmt.Errorf("unexpected closing tag </%s>", name)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, fmt.Errorf("text outside root element")
				}
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &Node{Text: string(t)})
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Name)
	}
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	if root.Name != "svg" {
		return nil, fmt.Errorf("root element is <%s>, want <svg>", root.Name)
	}

	return root, nil
}

// Render serializes the tree rooted at n.
func (n *Node) Render() (string, error) {
	var b strings.Builder
	if err := n.render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (n *Node) render(b *strings.Builder) error {
	if n.IsText() {
		b.WriteString(escapeText(n.Text))
		return nil
	}

	if !validName.MatchString(n.Name) {
		return fmt.Errorf("invalid element name %q", n.Name)
	}
	for _, a := range n.Attrs {
		if !validName.MatchString(a.Name) {
			return fmt.Errorf("invalid attribute name %q on <%s>", a.Name, n.Name)
		}
	}

	if len(n.Children) == 0 {
		writeStartTag(b, n.Name, n.Attrs, true)
		return nil
	}

	writeStartTag(b, n.Name, n.Attrs, false)
	for _, c := range n.Children {
		if err := c.render(b); err != nil {
			return err
		}
	}
	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
	return nil
}
