package render

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/spa/pkg/vdom"
)

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// SkipPrefix hides attributes whose name starts with it. Defaults to
	// "_", the prefix of attributes that only carry component state.
	SkipPrefix string
}

// Renderer serializes VNode trees to HTML. A Renderer holds no per-render
// state and is safe for concurrent use.
type Renderer struct {
	skip string
}

// NewRenderer creates a Renderer.
func NewRenderer(config RendererConfig) *Renderer {
	if config.SkipPrefix == "" {
		config.SkipPrefix = "_"
	}
	return &Renderer{skip: config.SkipPrefix}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var sb strings.Builder
	if err := r.RenderToWriter(&sb, node); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderToWriter streams a VNode tree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	hw := &htmlWriter{w: w, skip: r.skip}
	hw.node(node)
	return hw.err
}

// RenderContainer renders a consistent snapshot of whatever is mounted in
// c: the container's inner HTML with its title and version.
func (r *Renderer) RenderContainer(c *vdom.Container) (html, title string, version uint64, err error) {
	node, title, version := c.Snapshot()
	html, err = r.RenderToString(node)
	return html, title, version, err
}

// htmlWriter keeps the first write error and turns later writes into
// no-ops.
type htmlWriter struct {
	w    io.Writer
	skip string
	err  error
}

func (hw *htmlWriter) write(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

func (hw *htmlWriter) node(n *vdom.VNode) {
	if n == nil || hw.err != nil {
		return
	}
	switch n.Kind {
	case vdom.KindText:
		hw.write(escapeHTML(n.Text))
	case vdom.KindRaw:
		hw.write(n.Text)
	case vdom.KindFragment:
		for _, c := range n.Children {
			hw.node(c)
		}
	case vdom.KindElement:
		hw.element(n)
	default:
		hw.err = fmt.Errorf("render: unknown node kind %d", n.Kind)
	}
}

func (hw *htmlWriter) element(n *vdom.VNode) {
	hw.write("<" + n.Tag)
	hw.attrs(n.Props)
	hw.write(">")
	if vdom.IsVoid(n.Tag) {
		return
	}
	for _, c := range n.Children {
		hw.node(c)
	}
	hw.write("</" + n.Tag + ">")
}

// attrs writes props in name order. true renders the bare name; false and
// nil are omitted.
func (hw *htmlWriter) attrs(props vdom.Props) {
	keys := make([]string, 0, len(props))
	for k := range props {
		if !strings.HasPrefix(k, hw.skip) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		switch v := props[k].(type) {
		case nil:
		case bool:
			if v {
				hw.write(" " + k)
			}
		default:
			hw.write(" " + k + `="` + escapeAttr(attrString(v)) + `"`)
		}
	}
}

func attrString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
