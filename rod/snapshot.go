package rod

import (
	"fmt"

	"github.com/fwojciec/htmlanalyzer"
	"github.com/go-rod/rod"
)

// snapshotJS serializes the body subtree in one round trip. For every
// element it records the attributes, the inline declarations, the computed
// values of the requested properties and the bounding client rect.
//
// The requested properties are read from the inline style by name first, so
// shorthands such as border-radius are reported even though the style's
// indexed list only holds their longhands.
const snapshotJS = `(props) => {
  const attrs = (el) => Array.from(el.attributes, (a) => ({ name: a.name, value: a.value }));
  const snap = (el) => {
    const inline = [];
    let cssText = "";
    if (el.style) {
      cssText = el.style.cssText;
      const seen = new Set();
      for (const p of props) {
        const value = el.style.getPropertyValue(p);
        if (value) {
          inline.push({ name: p, value: value });
          seen.add(p);
        }
      }
      for (let i = 0; i < el.style.length; i++) {
        const name = el.style[i];
        if (!seen.has(name)) {
          inline.push({ name: name, value: el.style.getPropertyValue(name) });
        }
      }
    }
    const cs = window.getComputedStyle(el);
    const computed = {};
    for (const p of props) {
      computed[p] = cs.getPropertyValue(p);
    }
    const r = el.getBoundingClientRect();
    return {
      tag: el.tagName.toLowerCase(),
      attrs: attrs(el),
      cssText: cssText,
      inline: inline,
      computed: computed,
      rect: { x: r.x, y: r.y, width: r.width, height: r.height },
      children: Array.from(el.children, snap),
    };
  };
  return { title: document.title, body: document.body ? snap(document.body) : null };
}`

// queryJS returns the tag and attributes of every element matching a selector.
const queryJS = `(selector) => Array.from(document.querySelectorAll(selector), (el) => ({
  tag: el.tagName.toLowerCase(),
  attrs: Array.from(el.attributes, (a) => ({ name: a.name, value: a.value })),
}))`

type attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func fields(attrs []attr) htmlanalyzer.Fields {
	if len(attrs) == 0 {
		return nil
	}
	f := make(htmlanalyzer.Fields, len(attrs))
	for i, a := range attrs {
		f[i] = htmlanalyzer.Field{Name: a.Name, Value: a.Value}
	}
	return f
}

type rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var _ htmlanalyzer.Node = (*node)(nil)

// node is one element of a page snapshot.
type node struct {
	Tag        string            `json:"tag"`
	Attributes []attr            `json:"attrs"`
	CSSText    string            `json:"cssText"`
	Inline     []attr            `json:"inline"`
	Computed   map[string]string `json:"computed"`
	Rect       rect              `json:"rect"`
	Kids       []*node           `json:"children"`
}

func (n *node) TagName() string            { return n.Tag }
func (n *node) Attrs() htmlanalyzer.Fields { return fields(n.Attributes) }

func (n *node) Children() []htmlanalyzer.Node {
	kids := make([]htmlanalyzer.Node, len(n.Kids))
	for i, k := range n.Kids {
		kids[i] = k
	}
	return kids
}

func (n *node) InlineStyle() htmlanalyzer.InlineStyle {
	return htmlanalyzer.InlineStyle{
		Declarations: fields(n.Inline),
		CSSText:      n.CSSText,
	}
}

type snapshot struct {
	Title string `json:"title"`
	Body  *node  `json:"body"`
}

var _ htmlanalyzer.Document = (*document)(nil)

// document answers extraction from a snapshot, with selector queries
// delegated to query.
type document struct {
	snap  snapshot
	query func(selector string) ([]*node, error)
}

func (d *document) Title() string { return d.snap.Title }

func (d *document) Body() htmlanalyzer.Node {
	if d.snap.Body == nil {
		return nil
	}
	return d.snap.Body
}

func (d *document) QueryAll(selector string) ([]htmlanalyzer.Node, error) {
	found, err := d.query(selector)
	if err != nil {
		return nil, err
	}
	nodes := make([]htmlanalyzer.Node, len(found))
	for i, n := range found {
		nodes[i] = n
	}
	return nodes, nil
}

// ComputeStyle returns the computed values captured in the snapshot.
func (d *document) ComputeStyle(n htmlanalyzer.Node, properties []string) map[string]string {
	sn, ok := n.(*node)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(properties))
	for _, p := range properties {
		if v, ok := sn.Computed[p]; ok {
			out[p] = v
		}
	}
	return out
}

func (d *document) BoundingBox(n htmlanalyzer.Node) htmlanalyzer.Rect {
	sn, ok := n.(*node)
	if !ok {
		return htmlanalyzer.Rect{}
	}
	return htmlanalyzer.Rect{X: sn.Rect.X, Y: sn.Rect.Y, Width: sn.Rect.Width, Height: sn.Rect.Height}
}

// takeSnapshot captures the page DOM for the given computed properties.
func takeSnapshot(page *rod.Page, properties []string) (*document, error) {
	res, err := page.Eval(snapshotJS, properties)
	if err != nil {
		return nil, fmt.Errorf("evaluating snapshot: %w", err)
	}

	var snap snapshot
	if err := res.Value.Unmarshal(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	return &document{
		snap: snap,
		query: func(selector string) ([]*node, error) {
			res, err := page.Eval(queryJS, selector)
			if err != nil {
				return nil, fmt.Errorf("querying %s: %w", selector, err)
			}
			var nodes []*node
			if err := res.Value.Unmarshal(&nodes); err != nil {
				return nil, fmt.Errorf("decoding %s matches: %w", selector, err)
			}
			return nodes, nil
		},
	}, nil
}
