package vdom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses an HTML snippet into a fragment node, as if it were
// assigned to the innerHTML of a <div>. Comments are dropped and
// whitespace-only text between elements is kept verbatim.
func ParseFragment(src string) (*VNode, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, fmt.Errorf("vdom: parse fragment: %w", err)
	}
	frag := Fragment()
	for _, n := range nodes {
		frag.appendChild(fromHTML(n))
	}
	return frag, nil
}

// MustParseFragment is like ParseFragment but panics on error. It is meant
// for embedded templates that are known to be well formed.
func MustParseFragment(src string) *VNode {
	v, err := ParseFragment(src)
	if err != nil {
		panic(err)
	}
	return v
}

func fromHTML(n *html.Node) *VNode {
	switch n.Type {
	case html.TextNode:
		return Text(n.Data)
	case html.ElementNode:
		el := El(n.Data)
		for _, a := range n.Attr {
			el.Props[a.Key] = a.Val
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			el.appendChild(fromHTML(c))
		}
		return el
	default:
		return nil
	}
}
