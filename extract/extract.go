// Package extract builds page analyses from a rendered document.
//
// The traversal is engine-agnostic: it only talks to the
// htmlanalyzer.Document and htmlanalyzer.DOMInspector capabilities, so the
// same code runs against a live browser snapshot, a statically parsed page,
// or a fake DOM in tests.
package extract

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/fwojciec/htmlanalyzer"
)

// Selectors and attributes used to collect page resources.
const (
	SoundSectionID     = "soundsection"
	StylesheetSelector = `link[rel="stylesheet"]`
	ScriptSelector     = "script[src]"
)

// whitespaceRun matches each run of whitespace in a class attribute. Every
// run, leading and trailing ones included, becomes a single comma.
var whitespaceRun = regexp.MustCompile(`\s+`)

// DefaultExcludedTags returns the tags whose subtrees are not recorded.
func DefaultExcludedTags() []string {
	return []string{"script", "style"}
}

// Extractor turns a Document into an Analysis.
type Extractor struct {
	rules    []StyleRule
	props    []string
	excluded map[string]bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStyleRules replaces the style whitelist.
// Defaults to DefaultStyleRules() if not specified.
func WithStyleRules(rules []StyleRule) Option {
	return func(e *Extractor) {
		e.rules = rules
	}
}

// WithExcludedTags replaces the tags skipped during traversal.
// Defaults to DefaultExcludedTags() if not specified.
func WithExcludedTags(tags []string) Option {
	return func(e *Extractor) {
		e.excluded = make(map[string]bool, len(tags))
		for _, t := range tags {
			e.excluded[strings.ToLower(t)] = true
		}
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{rules: DefaultStyleRules()}
	WithExcludedTags(DefaultExcludedTags())(e)
	for _, opt := range opts {
		opt(e)
	}
	e.props = Properties(e.rules)
	return e
}

// Properties returns the style properties the extractor asks the engine for.
func (e *Extractor) Properties() []string {
	return e.props
}

// Extract builds the analysis of doc.
func (e *Extractor) Extract(doc htmlanalyzer.Document) (*htmlanalyzer.Analysis, error) {
	body := doc.Body()
	if body == nil {
		return nil, htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "document has no body")
	}

	sounds, err := Sounds(doc)
	if err != nil {
		return nil, fmt.Errorf("reading sound attributes: %w", err)
	}

	stylesheets, err := AttributeOrdinals(doc, StylesheetSelector, "href")
	if err != nil {
		return nil, fmt.Errorf("reading stylesheets: %w", err)
	}

	scripts, err := AttributeOrdinals(doc, ScriptSelector, "src")
	if err != nil {
		return nil, fmt.Errorf("reading scripts: %w", err)
	}

	return &htmlanalyzer.Analysis{
		PageInfo:    htmlanalyzer.PageInfo{Title: doc.Title()},
		Sounds:      sounds,
		Stylesheets: stylesheets,
		Scripts:     scripts,
		Elements:    e.Walk(doc, body),
	}, nil
}

// Walk records root and its descendants in pre-order, depth-first document
// order. The root has depth 1; excluded elements are skipped together with
// their subtrees.
func (e *Extractor) Walk(insp htmlanalyzer.DOMInspector, root htmlanalyzer.Node) []htmlanalyzer.Element {
	return e.walk(insp, root, 1, []htmlanalyzer.Element{})
}

// walk appends n and its subtree to out and returns the extended sequence.
func (e *Extractor) walk(insp htmlanalyzer.DOMInspector, n htmlanalyzer.Node, depth int, out []htmlanalyzer.Element) []htmlanalyzer.Element {
	if n == nil || e.excluded[strings.ToLower(n.TagName())] {
		return out
	}

	out = append(out, e.element(insp, n, depth))
	for _, child := range n.Children() {
		out = e.walk(insp, child, depth+1, out)
	}
	return out
}

func (e *Extractor) element(insp htmlanalyzer.DOMInspector, n htmlanalyzer.Node, depth int) htmlanalyzer.Element {
	rect := insp.BoundingBox(n)
	inline := n.InlineStyle()

	el := htmlanalyzer.Element{
		Tag:   strings.ToLower(n.TagName()),
		Depth: depth,
		Size: htmlanalyzer.Size{
			Width:  floorNonNegative(rect.Width),
			Height: floorNonNegative(rect.Height),
		},
		Dimension: htmlanalyzer.Dimension{
			X: floorNonNegative(rect.X),
			Y: floorNonNegative(rect.Y),
		},
		Styles: htmlanalyzer.Styles{
			Computed: e.styles(insp, n, inline),
			Inline:   inline.CSSText,
		},
	}

	for _, attr := range n.Attrs() {
		switch attr.Name {
		case "id":
			el.ID = attr.Value
		case "class":
			el.ClassName = whitespaceRun.ReplaceAllString(attr.Value, ",")
		default:
			el.OtherAttr = append(el.OtherAttr, attr)
		}
	}

	return el
}

// styles resolves each whitelisted property: the inline value when set,
// otherwise the normalized computed value.
func (e *Extractor) styles(insp htmlanalyzer.DOMInspector, n htmlanalyzer.Node, inline htmlanalyzer.InlineStyle) htmlanalyzer.Fields {
	computed := insp.ComputeStyle(n, e.props)

	var fields htmlanalyzer.Fields
	for _, rule := range e.rules {
		if v := inline.Value(rule.Property); v != "" {
			fields = append(fields, htmlanalyzer.Field{Name: rule.Property, Value: v})
			continue
		}

		v := computed[rule.Property]
		if v == "" || v == "initial" || v == "none" {
			continue
		}
		if rule.Transform != nil {
			var ok bool
			if v, ok = rule.Transform(v); !ok {
				continue
			}
		}
		fields = append(fields, htmlanalyzer.Field{Name: rule.Property, Value: v})
	}
	return fields
}

// Sounds returns the attributes of the #soundsection element, or an empty
// set when the page has none.
func Sounds(doc htmlanalyzer.Document) (htmlanalyzer.Fields, error) {
	nodes, err := doc.QueryAll("#" + SoundSectionID)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return htmlanalyzer.Fields{}, nil
	}
	return append(htmlanalyzer.Fields{}, nodes[0].Attrs()...), nil
}

// AttributeOrdinals collects attribute from every element matching selector,
// keyed by 1-based document order.
func AttributeOrdinals(doc htmlanalyzer.Document, selector, attribute string) (htmlanalyzer.OrdinalMap, error) {
	nodes, err := doc.QueryAll(selector)
	if err != nil {
		return nil, err
	}

	m := make(htmlanalyzer.OrdinalMap, len(nodes))
	for i, n := range nodes {
		if v, ok := n.Attrs().Get(attribute); ok {
			m[i] = &v
		}
	}
	return m, nil
}

func floor(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v))
}

func floorNonNegative(v float64) int {
	return max(0, floor(v))
}
