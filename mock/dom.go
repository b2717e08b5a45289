package mock

import "github.com/fwojciec/htmlanalyzer"

// Compile-time interface verification.
var (
	_ htmlanalyzer.Node     = (*Node)(nil)
	_ htmlanalyzer.Document = (*Document)(nil)
)

// Node is an in-memory htmlanalyzer.Node. Computed and Box hold what an
// engine would report for it; Document reads them by default.
type Node struct {
	Tag        string
	Attributes htmlanalyzer.Fields
	Kids       []*Node
	Style      htmlanalyzer.InlineStyle
	Computed   map[string]string
	Box        htmlanalyzer.Rect
}

func (n *Node) TagName() string { return n.Tag }

func (n *Node) Attrs() htmlanalyzer.Fields { return n.Attributes }

func (n *Node) InlineStyle() htmlanalyzer.InlineStyle { return n.Style }

func (n *Node) Children() []htmlanalyzer.Node {
	children := make([]htmlanalyzer.Node, len(n.Kids))
	for i, k := range n.Kids {
		children[i] = k
	}
	return children
}

// Document is a mock implementation of htmlanalyzer.Document.
// Nil Fn fields fall back to reading the mock Node fields.
type Document struct {
	TitleFn        func() string
	BodyFn         func() htmlanalyzer.Node
	QueryAllFn     func(selector string) ([]htmlanalyzer.Node, error)
	ComputeStyleFn func(n htmlanalyzer.Node, properties []string) map[string]string
	BoundingBoxFn  func(n htmlanalyzer.Node) htmlanalyzer.Rect
}

func (d *Document) Title() string {
	if d.TitleFn == nil {
		return ""
	}
	return d.TitleFn()
}

func (d *Document) Body() htmlanalyzer.Node {
	if d.BodyFn == nil {
		return nil
	}
	return d.BodyFn()
}

func (d *Document) QueryAll(selector string) ([]htmlanalyzer.Node, error) {
	if d.QueryAllFn == nil {
		return nil, nil
	}
	return d.QueryAllFn(selector)
}

func (d *Document) ComputeStyle(n htmlanalyzer.Node, properties []string) map[string]string {
	if d.ComputeStyleFn != nil {
		return d.ComputeStyleFn(n, properties)
	}
	if mn, ok := n.(*Node); ok {
		return mn.Computed
	}
	return nil
}

func (d *Document) BoundingBox(n htmlanalyzer.Node) htmlanalyzer.Rect {
	if d.BoundingBoxFn != nil {
		return d.BoundingBoxFn(n)
	}
	if mn, ok := n.(*Node); ok {
		return mn.Box
	}
	return htmlanalyzer.Rect{}
}
