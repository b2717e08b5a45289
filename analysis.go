package htmlanalyzer

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Analysis is the structured description of one rendered page.
// It is built fresh for every page load and never mutated afterwards.
type Analysis struct {
	PageInfo    PageInfo   `json:"pageInfo"`
	Sounds      Fields     `json:"sounds"`
	Stylesheets OrdinalMap `json:"stylesheets"`
	Scripts     OrdinalMap `json:"scripts"`
	Elements    []Element  `json:"elements"`
}

// PageInfo holds page-level metadata.
type PageInfo struct {
	Title string `json:"title"`
}

// Element describes a single DOM element in traversal order.
type Element struct {
	Tag       string    `json:"tag"`
	Depth     int       `json:"depth"`
	Size      Size      `json:"size"`
	Dimension Dimension `json:"dimension"`
	Styles    Styles    `json:"styles"`
	ID        string    `json:"id,omitempty"`
	ClassName string    `json:"classname,omitempty"`
	OtherAttr Fields    `json:"other-attr,omitempty"`
}

// Size is the floored width and height of an element's bounding box.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Dimension is the floored position of an element's bounding box.
type Dimension struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Styles holds the curated style values of an element.
type Styles struct {
	// Computed maps whitelisted properties to their inline or normalized
	// computed value, in whitelist order.
	Computed Fields `json:"computed"`

	// Inline is the raw cssText of the style attribute.
	Inline string `json:"inline"`
}

// Field is a single named value.
type Field struct {
	Name  string
	Value string
}

// Fields is an ordered list of named values. It marshals to a JSON object
// whose keys keep their order, and to {} when empty.
type Fields []Field

// Get returns the value of the first field with the given name.
func (f Fields) Get(name string) (string, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// MarshalJSON implements json.Marshaler.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, field.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, field.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OrdinalMap maps 1-based document-order ordinals to attribute values.
// A nil entry marks a matched element without the attribute.
type OrdinalMap []*string

// MarshalJSON implements json.Marshaler.
func (m OrdinalMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(i + 1))
		buf.WriteString(`":`)
		if v == nil {
			buf.WriteString("null")
			continue
		}
		if err := writeJSONString(&buf, *v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeJSONString writes s as a JSON string without HTML escaping, so markup
// in attribute values stays readable in the output files.
func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
