package vdom

import (
	"fmt"
	"strings"
)

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// IsVoid reports whether tag is a void element: it has no end tag and
// never holds children.
func IsVoid(tag string) bool {
	return voidTags[tag]
}

// El builds an element. Each arg is an Attr, []Attr, *VNode, []*VNode, a
// string (a text child) or nil (skipped, for conditional arguments).
func El(tag string, args ...any) *VNode {
	n := &VNode{Kind: KindElement, Tag: tag, Props: Props{}}
	n.add(args)
	return n
}

// Fragment groups children without a wrapper element. Attributes among
// children are ignored.
func Fragment(children ...any) *VNode {
	n := &VNode{Kind: KindFragment}
	n.add(children)
	return n
}

// Text creates a text node. Its content is escaped when rendered.
func Text(s string) *VNode {
	return &VNode{Kind: KindText, Text: s}
}

// Textf is Text with fmt.Sprintf formatting.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates a node rendered without escaping. Only for trusted markup.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

func (v *VNode) add(args []any) {
	for _, arg := range args {
		switch a := arg.(type) {
		case Attr:
			v.setProp(a)
		case []Attr:
			for _, x := range a {
				v.setProp(x)
			}
		case *VNode:
			v.appendChild(a)
		case []*VNode:
			for _, c := range a {
				v.appendChild(c)
			}
		case string:
			v.appendChild(Text(a))
		}
	}
}

func (v *VNode) setProp(a Attr) {
	if !a.IsEmpty() && v.Props != nil {
		v.Props[a.Key] = a.Value
	}
}

func (v *VNode) appendChild(c *VNode) {
	if c != nil {
		v.Children = append(v.Children, c)
	}
}

// Tags used by the views and their fragments.

func Div(args ...any) *VNode     { return El("div", args...) }
func Main(args ...any) *VNode    { return El("main", args...) }
func Nav(args ...any) *VNode     { return El("nav", args...) }
func Section(args ...any) *VNode { return El("section", args...) }
func H1(args ...any) *VNode      { return El("h1", args...) }
func H2(args ...any) *VNode      { return El("h2", args...) }
func P(args ...any) *VNode       { return El("p", args...) }
func Span(args ...any) *VNode    { return El("span", args...) }
func A(args ...any) *VNode       { return El("a", args...) }
func Ul(args ...any) *VNode      { return El("ul", args...) }
func Li(args ...any) *VNode      { return El("li", args...) }
func Br(args ...any) *VNode      { return El("br", args...) }

// ID sets the id attribute.
func ID(id string) Attr { return Attr{Key: "id", Value: id} }

// Class sets the class attribute from space-joined class names.
func Class(names ...string) Attr { return Attr{Key: "class", Value: strings.Join(names, " ")} }

// Href sets the href attribute.
func Href(url string) Attr { return Attr{Key: "href", Value: url} }

// Data sets data-<key>.
func Data(key, value string) Attr { return Attr{Key: "data-" + key, Value: value} }

// DataLink marks an anchor for client-side navigation.
func DataLink() Attr { return Attr{Key: "data-link", Value: true} }

// AttrOf sets an arbitrary attribute. true renders the bare name; false
// and nil omit it.
func AttrOf(key string, value any) Attr { return Attr{Key: key, Value: value} }
