package inject

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Marker is a parsed start tag used to locate a slot. An element matches
// when it has the same tag name and carries every marker attribute. For
// class the element only needs to contain each of the marker's classes;
// other attributes must be equal.
type Marker struct {
	Tag   string
	Attrs []html.Attribute
}

// voidElements never have an end tag, so they cannot delimit a region.
var voidElements = []string{
	"area", "base", "br", "col", "embed", "hr", "img", "input",
	"link", "meta", "source", "track", "wbr",
}

// ParseMarker parses a literal start tag such as `<div class="cars-grid">`.
func ParseMarker(raw string) (Marker, error) {
	z := html.NewTokenizer(strings.NewReader(strings.TrimSpace(raw)))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return Marker{}, fmt.Errorf("%w: %q is not a start tag", ErrInvalidMarker, raw)
		case html.TextToken:
			if strings.TrimSpace(string(z.Text())) != "" {
				return Marker{}, fmt.Errorf("%w: %q is not a start tag", ErrInvalidMarker, raw)
			}
		case html.StartTagToken:
			tok := z.Token()
			if slices.Contains(voidElements, tok.Data) {
				return Marker{}, fmt.Errorf("%w: <%s> has no end tag", ErrInvalidMarker, tok.Data)
			}
			return Marker{Tag: tok.Data, Attrs: tok.Attr}, nil
		default:
			return Marker{}, fmt.Errorf("%w: %q is not a start tag", ErrInvalidMarker, raw)
		}
	}
}

// Matches reports whether the start tag token tok satisfies the marker.
func (m Marker) Matches(tok html.Token) bool {
	if tok.Data != m.Tag {
		return false
	}
	for _, want := range m.Attrs {
		got, ok := attrValue(tok.Attr, want.Key)
		if !ok {
			return false
		}
		if want.Key == "class" {
			if !containsClasses(got, want.Val) {
				return false
			}
			continue
		}
		if got != want.Val {
			return false
		}
	}
	return true
}

func (m Marker) String() string {
	var b strings.Builder
	b.WriteString("<" + m.Tag)
	for _, a := range m.Attrs {
		fmt.Fprintf(&b, " %s=%q", a.Key, a.Val)
	}
	b.WriteString(">")
	return b.String()
}

func attrValue(attrs []html.Attribute, key string) (string, bool) {
	for _, a := range attrs {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func containsClasses(have, want string) bool {
	classes := strings.Fields(have)
	for _, c := range strings.Fields(want) {
		if !slices.Contains(classes, c) {
			return false
		}
	}
	return true
}
