package views

import (
	"context"
	"embed"
	"fmt"

	"github.com/vango-dev/spa/pkg/component"
	"github.com/vango-dev/spa/pkg/vdom"
)

//go:embed fragments/*.html
var fragments embed.FS

// fragment parses the named template into a fresh tree. Every component
// instance owns its own copy.
func fragment(name string) *vdom.VNode {
	src, err := fragments.ReadFile("fragments/" + name + ".html")
	if err != nil {
		panic(fmt.Sprintf("views: missing fragment %s: %v", name, err))
	}
	return vdom.MustParseFragment(string(src))
}

// page carries the parts every view shares: its DOM and the mount and
// unmount steps. Views embed it and add the rest of component.Component.
type page struct {
	dom *component.DOM
}

func newPage(name, title string) page {
	p := page{dom: component.NewDOM(fragment(name))}
	p.dom.SetTitle(title)
	return p
}

func (p *page) MountOn(c *vdom.Container) { p.dom.MountOn(c) }

func (p *page) BeforeUnmount() { p.dom.Unmount() }

// DOM exposes the view's fragment, mainly for tests.
func (p *page) DOM() *component.DOM { return p.dom }

// static is embedded by views without props or data.
type static struct{}

func (static) OnPropsUpdated(component.Props) {}

func (static) Render() {}

func (static) Refresh(context.Context) error { return nil }

// setError shows or hides an error paragraph and the content it replaces.
func setError(root *vdom.VNode, errID, bodyID string, err error) {
	errNode, body := root.Find(errID), root.Find(bodyID)
	if err != nil {
		errNode.SetText(err.Error())
		errNode.SetAttr("hidden", false)
		body.SetAttr("hidden", true)
		return
	}
	errNode.SetText("")
	errNode.SetAttr("hidden", true)
	body.SetAttr("hidden", false)
}
