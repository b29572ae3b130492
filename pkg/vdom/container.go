package vdom

import "sync"

// Container is a mount point in the document, the equivalent of the
// element a router renders into (typically "#app"). It holds exactly one
// child subtree at a time; mounting replaces prior content.
//
// Container is safe for concurrent use. Subtree mutations made by the
// owner of the mounted node should go through MutateOwned so readers
// never observe a half-updated tree.
type Container struct {
	mu        sync.Mutex
	id        string
	child     *VNode
	title     string
	version   uint64
	listeners map[int]func()
	nextID    int
}

// NewContainer creates an empty container with the given element id.
func NewContainer(id string) *Container {
	return &Container{
		id:        id,
		listeners: make(map[int]func()),
	}
}

// ID returns the element id of the container.
func (c *Container) ID() string {
	return c.id
}

// ReplaceChildren mounts node, replacing whatever was mounted before.
func (c *Container) ReplaceChildren(node *VNode) {
	c.mu.Lock()
	c.child = node
	c.version++
	c.mu.Unlock()
	c.notify()
}

// Child returns the currently mounted subtree (not a copy).
func (c *Container) Child() *VNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.child
}

// Owns reports whether node is the currently mounted subtree.
func (c *Container) Owns(node *VNode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return node != nil && c.child == node
}

// MutateOwned runs fn under the container lock. Listeners are notified
// only when owner is still the mounted subtree; detached owners may keep
// updating their own nodes without affecting the document.
func (c *Container) MutateOwned(owner *VNode, fn func()) {
	c.mu.Lock()
	fn()
	mounted := owner != nil && c.child == owner
	if mounted {
		c.version++
	}
	c.mu.Unlock()
	if mounted {
		c.notify()
	}
}

// SetTitle sets the document title associated with the container.
func (c *Container) SetTitle(title string) {
	c.mu.Lock()
	changed := c.title != title
	c.title = title
	if changed {
		c.version++
	}
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// Title returns the document title.
func (c *Container) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// Version returns a counter that increases on every change.
func (c *Container) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Snapshot returns a deep copy of the mounted subtree together with the
// title and version it was taken at.
func (c *Container) Snapshot() (node *VNode, title string, version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.child.Clone(), c.title, c.version
}

// OnChange registers fn to be called after every change. The returned
// function removes the listener.
func (c *Container) OnChange(fn func()) (remove func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Container) notify() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
