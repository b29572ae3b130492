package component

import (
	"sync"

	"github.com/vango-dev/spa/pkg/vdom"
)

// DOM owns a component's fragment and its attachment to a container.
// Components embed or hold one and route all fragment mutations through
// Update so that a mounted fragment is never observed half-written.
type DOM struct {
	mu        sync.Mutex
	root      *vdom.VNode
	container *vdom.Container
	title     string
}

// NewDOM wraps root, which becomes the node mounted into containers.
func NewDOM(root *vdom.VNode) *DOM {
	if root == nil {
		root = vdom.Fragment()
	}
	return &DOM{root: root}
}

// Root returns the owned fragment.
func (d *DOM) Root() *vdom.VNode {
	return d.root
}

// Update applies fn to the owned fragment.
func (d *DOM) Update(fn func(root *vdom.VNode)) {
	d.mu.Lock()
	c := d.container
	d.mu.Unlock()

	if c == nil {
		d.mu.Lock()
		fn(d.root)
		d.mu.Unlock()
		return
	}
	c.MutateOwned(d.root, func() { fn(d.root) })
}

// SetTitle records the document title for this view and applies it when
// the fragment is mounted.
func (d *DOM) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	c := d.container
	d.mu.Unlock()

	if c != nil && c.Owns(d.root) {
		c.SetTitle(title)
	}
}

// MountOn replaces the content of c with the owned fragment.
func (d *DOM) MountOn(c *vdom.Container) {
	d.mu.Lock()
	d.container = c
	title := d.title
	d.mu.Unlock()

	c.ReplaceChildren(d.root)
	if title != "" {
		c.SetTitle(title)
	}
}

// Unmount forgets the container. The fragment stays intact so a later
// MountOn can reattach it.
func (d *DOM) Unmount() {
	d.mu.Lock()
	d.container = nil
	d.mu.Unlock()
}

// Mounted reports whether the fragment is currently what its container
// displays.
func (d *DOM) Mounted() bool {
	d.mu.Lock()
	c := d.container
	d.mu.Unlock()
	return c != nil && c.Owns(d.root)
}
