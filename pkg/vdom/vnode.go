package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <a>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
	KindRaw                   // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes
	Children []*VNode // Child nodes
	Text     string   // For KindText and KindRaw
}

// Props holds element attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// ID returns the element's id attribute, or "" if it has none.
func (v *VNode) ID() string {
	if v == nil || v.Kind != KindElement {
		return ""
	}
	id, _ := v.Props["id"].(string)
	return id
}

// Find returns the first element in the subtree (including v) whose id
// attribute equals id. It is the equivalent of querySelector("#id").
func (v *VNode) Find(id string) *VNode {
	if v == nil {
		return nil
	}
	if v.ID() == id {
		return v
	}
	for _, child := range v.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// SetText replaces all children of v with a single text node.
func (v *VNode) SetText(text string) {
	if v == nil {
		return
	}
	v.Children = []*VNode{Text(text)}
}

// SetAttr sets an attribute on an element node.
func (v *VNode) SetAttr(key string, value any) {
	if v == nil || v.Kind != KindElement {
		return
	}
	if v.Props == nil {
		v.Props = make(Props)
	}
	v.Props[key] = value
}

// TextContent returns the concatenated text of the subtree.
func (v *VNode) TextContent() string {
	if v == nil {
		return ""
	}
	if v.Kind == KindText {
		return v.Text
	}
	var b strings.Builder
	for _, child := range v.Children {
		b.WriteString(child.TextContent())
	}
	return b.String()
}

// Clone returns a deep copy of the subtree.
func (v *VNode) Clone() *VNode {
	if v == nil {
		return nil
	}
	out := &VNode{
		Kind: v.Kind,
		Tag:  v.Tag,
		Text: v.Text,
	}
	if v.Props != nil {
		out.Props = make(Props, len(v.Props))
		for k, val := range v.Props {
			out.Props[k] = val
		}
	}
	if len(v.Children) > 0 {
		out.Children = make([]*VNode, len(v.Children))
		for i, child := range v.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}
