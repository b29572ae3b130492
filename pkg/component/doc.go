// Package component defines the lifecycle contract shared by every view a
// router can mount, plus small helpers views compose to satisfy it.
//
// A view typically holds a *DOM for its fragment and a Liveness for its
// refresh work:
//
//	type PostView struct {
//	    dom  *component.DOM
//	    live component.Liveness
//	    ...
//	}
//
//	func (v *PostView) MountOn(c *vdom.Container) { v.dom.MountOn(c) }
//
//	func (v *PostView) BeforeUnmount() {
//	    v.live.Cancel()
//	    v.dom.Unmount()
//	}
//
// Parameter problems are reported as *ValidationError values kept in the
// view's state and rendered, never panicked.
package component
