package catalog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Num is a numeric catalog attribute. Catalog integers are encoded as
// numeric strings and parsed with finite-number semantics, so a value like
// "2.5" is accepted and kept as-is rather than truncated.
type Num float64

// Int truncates n toward zero.
func (n Num) Int() int { return int(n) }

func (n Num) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Document is one parsed catalog file.
type Document struct {
	Path string
	doc  *etree.Document
}

// Parse parses raw XML. path is used only for error reporting.
func Parse(path string, data []byte) (*Document, error) {
	if err := checkWellFormed(data); err != nil {
		return nil, &ErrParse{Path: path, Err: err}
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ErrParse{Path: path, Err: err}
	}
	if doc.Root() == nil {
		return nil, &ErrParse{Path: path, Err: fmt.Errorf("no root element")}
	}
	return &Document{Path: path, doc: doc}, nil
}

// checkWellFormed runs the strict encoding/xml tokenizer over data. etree
// reads raw tokens, so mismatched or unclosed elements are caught here.
func checkWellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Root returns the document element.
func (d *Document) Root() Node {
	return Node{el: d.doc.Root(), path: d.Path}
}

// Expect returns the document element if its tag is want.
func (d *Document) Expect(want string) (Node, error) {
	root := d.Root()
	if root.Tag() != want {
		return Node{}, &ErrMissingRoot{Path: d.Path, Want: want, Got: root.Tag()}
	}
	return root, nil
}

// Node is an element of a parsed catalog document. All attribute access
// goes through Node so every failure carries the element tag and the
// document path.
type Node struct {
	el   *etree.Element
	path string
}

// Valid reports whether n refers to an element.
func (n Node) Valid() bool { return n.el != nil }

// Tag returns the element's local name.
func (n Node) Tag() string {
	if n.el == nil {
		return ""
	}
	return n.el.Tag
}

// Path returns the path of the document n belongs to.
func (n Node) Path() string { return n.path }

// OptionalAttr returns the attribute value or "" when absent.
func (n Node) OptionalAttr(name string) string {
	if a := n.el.SelectAttr(name); a != nil {
		return a.Value
	}
	return ""
}

// RequiredAttr returns the attribute value, failing with
// *ErrMissingAttribute when it is absent or empty.
func (n Node) RequiredAttr(name string) (string, error) {
	v := n.OptionalAttr(name)
	if v == "" {
		return "", &ErrMissingAttribute{Path: n.path, Tag: n.Tag(), Attr: name}
	}
	return v, nil
}

// RequiredInt returns a required numeric attribute. Any finite number is
// accepted, including decimals; integrality is not checked.
func (n Node) RequiredInt(name string) (Num, error) {
	raw, err := n.RequiredAttr(name)
	if err != nil {
		return 0, err
	}
	v, ok := parseNum(raw)
	if !ok {
		return 0, &ErrNonNumericAttribute{Path: n.path, Tag: n.Tag(), Attr: name, Value: raw}
	}
	return v, nil
}

// OptionalInt returns def when the attribute is absent or empty, and fails
// like RequiredInt when it is present but not numeric.
func (n Node) OptionalInt(name string, def Num) (Num, error) {
	if n.OptionalAttr(name) == "" {
		return def, nil
	}
	return n.RequiredInt(name)
}

func parseNum(raw string) (Num, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return Num(f), true
}

// Children returns the direct child elements named tag.
func (n Node) Children(tag string) []Node {
	var out []Node
	for _, c := range n.el.ChildElements() {
		if c.Tag == tag {
			out = append(out, Node{el: c, path: n.path})
		}
	}
	return out
}

// Descendants returns every element named tag below n, in document order.
func (n Node) Descendants(tag string) []Node {
	var out []Node
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if c.Tag == tag {
				out = append(out, Node{el: c, path: n.path})
			}
			walk(c)
		}
	}
	walk(n.el)
	return out
}

// FirstDescendant returns the first element named tag below n.
func (n Node) FirstDescendant(tag string) (Node, bool) {
	var found *etree.Element
	var walk func(el *etree.Element) bool
	walk = func(el *etree.Element) bool {
		for _, c := range el.ChildElements() {
			if c.Tag == tag {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	if walk(n.el) {
		return Node{el: found, path: n.path}, true
	}
	return Node{}, false
}

// CountDescendants counts elements named tag below the first container
// element below n. A missing container counts as zero.
func (n Node) CountDescendants(container, tag string) int {
	c, ok := n.FirstDescendant(container)
	if !ok {
		return 0
	}
	return len(c.Descendants(tag))
}

// ParagraphText joins the trimmed text of n's direct <p> children with a
// blank line. Without any <p> children it joins n's own direct text nodes
// the same way.
func (n Node) ParagraphText() string {
	var parts []string
	for _, p := range n.Children("p") {
		if t := strings.TrimSpace(textContent(p.el)); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n\n")
	}
	for _, tok := range n.el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			if t := strings.TrimSpace(cd.Data); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// textContent concatenates all character data below el.
func textContent(el *etree.Element) string {
	var b strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return b.String()
}

// fieldReader reads a run of attributes from one node and keeps the first
// failure, so record parsing reads straight through and checks once.
type fieldReader struct {
	n   Node
	err error
}

func (r *fieldReader) str(name string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.n.RequiredAttr(name)
	r.err = err
	return v
}

func (r *fieldReader) num(name string) Num {
	if r.err != nil {
		return 0
	}
	v, err := r.n.RequiredInt(name)
	r.err = err
	return v
}
