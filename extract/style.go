package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Transform normalizes a computed style value. It returns false when the
// value cannot be normalized and should be left out of the record.
type Transform func(value string) (string, bool)

// StyleRule pairs a whitelisted CSS property with the transform applied to
// its computed value. A nil Transform keeps the value as is.
type StyleRule struct {
	Property  string
	Transform Transform
}

// DefaultStyleRules returns the whitelist of recorded style properties in
// output order.
func DefaultStyleRules() []StyleRule {
	return []StyleRule{
		{Property: "color", Transform: ColorToHex},
		{Property: "font-size"},
		{Property: "font-family", Transform: CleanFontFamily},
		{Property: "background-color", Transform: ColorToHex},
		{Property: "background-image", Transform: BackgroundImageFiles},
		{Property: "display"},
		{Property: "visibility"},
		{Property: "position"},
		{Property: "width"},
		{Property: "height"},
		{Property: "border-radius"},
		{Property: "z-index"},
	}
}

// Properties returns the property names of rules in order.
func Properties(rules []StyleRule) []string {
	props := make([]string, len(rules))
	for i, r := range rules {
		props[i] = r.Property
	}
	return props
}

var rgbFunc = regexp.MustCompile(`(?i)^rgba?\((.*)\)$`)

// ColorToHex converts rgb()/rgba() notation to an uppercase RRGGBB hex
// string built from the first three channels. Alpha is discarded. Values in
// any other notation are returned unchanged.
func ColorToHex(value string) (string, bool) {
	m := rgbFunc.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return value, true
	}

	parts := strings.FieldsFunc(m[1], func(r rune) bool {
		return r == ',' || r == '/' || unicode.IsSpace(r)
	})
	if len(parts) < 3 {
		return "", false
	}

	var b strings.Builder
	for _, p := range parts[:3] {
		c, err := parseChannel(p)
		if err != nil {
			return "", false
		}
		fmt.Fprintf(&b, "%02X", c)
	}

	return b.String(), true
}

// parseChannel parses a color channel, either 0-255 or a percentage,
// clamped to a byte.
func parseChannel(s string) (int, error) {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	if pct {
		v = v * 255 / 100
	}
	return int(math.Round(math.Max(0, math.Min(255, v)))), nil
}

var (
	urlRef      = regexp.MustCompile(`url\(([^)]+)\)`)
	noneKeyword = regexp.MustCompile(`(?i)none`)
	quotes      = strings.NewReplacer(`"`, "", `'`, "")
)

// BackgroundImageFiles replaces each url(...) reference with an ordinal tag
// "(n) <filename>", joined by ", ". A value without url references that
// mentions none collapses to "". Anything else is returned unchanged.
func BackgroundImageFiles(value string) (string, bool) {
	matches := urlRef.FindAllStringSubmatch(value, -1)
	if len(matches) == 0 {
		if noneKeyword.MatchString(value) {
			return "", true
		}
		return value, true
	}

	files := make([]string, len(matches))
	for i, m := range matches {
		ref := quotes.Replace(strings.TrimSpace(m[1]))
		name := ref[strings.LastIndex(ref, "/")+1:]
		files[i] = fmt.Sprintf("(%d) %s", i+1, name)
	}
	return strings.Join(files, ", "), true
}

// CleanFontFamily strips double quotes from a font-family list.
func CleanFontFamily(value string) (string, bool) {
	return strings.ReplaceAll(value, `"`, ""), true
}
