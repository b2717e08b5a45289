// Package goquery implements a browser-free htmlanalyzer engine over
// statically parsed markup.
package goquery

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/parser"
	"github.com/fwojciec/htmlanalyzer"
	"golang.org/x/net/html"
)

var _ htmlanalyzer.Document = (*Document)(nil)

// Document is a parsed page. Nothing is rendered, so computed styles mirror
// the inline declarations and every bounding box is zero.
type Document struct {
	doc *goquery.Document
}

// NewDocument parses the HTML read from r.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Document{doc: doc}, nil
}

// ParseDocument parses an HTML string.
func ParseDocument(s string) (*Document, error) {
	return NewDocument(strings.NewReader(s))
}

// Title returns the text of the first title element with whitespace
// collapsed.
func (d *Document) Title() string {
	return strings.Join(strings.Fields(d.doc.Find("title").First().Text()), " ")
}

// Body returns the body element, or nil when there is none.
func (d *Document) Body() htmlanalyzer.Node {
	body := d.doc.Find("body").First()
	if body.Length() == 0 {
		return nil
	}
	return newNode(body.Get(0))
}

// QueryAll returns the elements matching selector in document order.
// An invalid selector is an error.
func (d *Document) QueryAll(selector string) ([]htmlanalyzer.Node, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "invalid selector %q: %v", selector, err)
	}

	var nodes []htmlanalyzer.Node
	d.doc.FindMatcher(m).Each(func(_ int, sel *goquery.Selection) {
		nodes = append(nodes, newNode(sel.Get(0)))
	})
	return nodes, nil
}

// ComputeStyle returns the inline values of the requested properties.
func (d *Document) ComputeStyle(n htmlanalyzer.Node, properties []string) map[string]string {
	style := n.InlineStyle()
	out := make(map[string]string, len(properties))
	for _, p := range properties {
		if v := style.Value(p); v != "" {
			out[p] = v
		}
	}
	return out
}

// BoundingBox always returns a zero Rect.
func (d *Document) BoundingBox(htmlanalyzer.Node) htmlanalyzer.Rect {
	return htmlanalyzer.Rect{}
}

var _ htmlanalyzer.Node = (*node)(nil)

type node struct {
	n     *html.Node
	style *htmlanalyzer.InlineStyle
}

func newNode(n *html.Node) *node {
	return &node{n: n}
}

func (n *node) TagName() string {
	return strings.ToLower(n.n.Data)
}

func (n *node) Attrs() htmlanalyzer.Fields {
	if len(n.n.Attr) == 0 {
		return nil
	}
	fields := make(htmlanalyzer.Fields, 0, len(n.n.Attr))
	for _, a := range n.n.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		fields = append(fields, htmlanalyzer.Field{Name: name, Value: a.Val})
	}
	return fields
}

func (n *node) Children() []htmlanalyzer.Node {
	var kids []htmlanalyzer.Node
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			kids = append(kids, newNode(c))
		}
	}
	return kids
}

func (n *node) InlineStyle() htmlanalyzer.InlineStyle {
	if n.style == nil {
		s := ParseInlineStyle(attr(n.n, "style"))
		n.style = &s
	}
	return *n.style
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// ParseInlineStyle parses the content of a style attribute. Later
// declarations of a property override earlier ones. CSSText is the
// declarations re-serialized as "property: value;" pairs; when the text
// cannot be parsed it is kept trimmed and no declarations are reported.
func ParseInlineStyle(text string) htmlanalyzer.InlineStyle {
	text = strings.TrimSpace(text)
	if text == "" {
		return htmlanalyzer.InlineStyle{}
	}

	terminated := text
	if !strings.HasSuffix(terminated, ";") {
		terminated += ";"
	}
	decls, err := parser.ParseDeclarations(terminated)
	if err != nil {
		return htmlanalyzer.InlineStyle{CSSText: text}
	}

	var style htmlanalyzer.InlineStyle
	important := make(map[string]bool)
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		if prop == "" {
			continue
		}
		if important[prop] && !d.Important {
			continue
		}
		important[prop] = important[prop] || d.Important
		style.Declarations = setField(style.Declarations, prop, strings.TrimSpace(d.Value))
	}

	parts := make([]string, len(style.Declarations))
	for i, f := range style.Declarations {
		if important[f.Name] {
			parts[i] = fmt.Sprintf("%s: %s !important;", f.Name, f.Value)
			continue
		}
		parts[i] = fmt.Sprintf("%s: %s;", f.Name, f.Value)
	}
	style.CSSText = strings.Join(parts, " ")
	return style
}

func setField(fields htmlanalyzer.Fields, name, value string) htmlanalyzer.Fields {
	for i := range fields {
		if fields[i].Name == name {
			fields[i].Value = value
			return fields
		}
	}
	return append(fields, htmlanalyzer.Field{Name: name, Value: value})
}
