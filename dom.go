package htmlanalyzer

// Node is a read-only view of a DOM element.
type Node interface {
	// TagName returns the element's tag name in lower case.
	TagName() string

	// Attrs returns the element's attributes in document order.
	Attrs() Fields

	// Children returns the element's child elements in document order.
	Children() []Node

	// InlineStyle returns what the element's style attribute sets.
	InlineStyle() InlineStyle
}

// InlineStyle holds the properties explicitly set through a style attribute.
type InlineStyle struct {
	// Declarations maps each explicitly set property to its value.
	Declarations Fields

	// CSSText is the raw serialized style attribute.
	CSSText string
}

// Value returns the inline value of property, or "" when it is not set.
func (s InlineStyle) Value(property string) string {
	v, _ := s.Declarations.Get(property)
	return v
}

// Rect is an element's bounding box in CSS pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// DOMInspector reads rendered state that only the host engine knows.
type DOMInspector interface {
	// ComputeStyle returns the computed values of the given properties.
	// Properties the engine cannot resolve are absent from the result.
	ComputeStyle(n Node, properties []string) map[string]string

	// BoundingBox returns the element's bounding client rect.
	BoundingBox(n Node) Rect
}

// Document is a loaded page ready for extraction.
type Document interface {
	DOMInspector

	// Title returns the document title.
	Title() string

	// Body returns the body element, or nil if the document has none.
	Body() Node

	// QueryAll returns every element matching the CSS selector in
	// document order.
	QueryAll(selector string) ([]Node, error)
}
