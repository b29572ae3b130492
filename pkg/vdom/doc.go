// Package vdom provides the in-memory document model that components render
// into.
//
// VNode is the fundamental building block representing elements, text,
// fragments and raw HTML. Props holds attributes. Components either build
// their subtree with the element factories:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//
// or parse it once from an HTML fragment with ParseFragment and then update
// it in place through Find, SetText and SetAttr.
//
// # Containers
//
// A Container is the mount point a router owns. Mounting replaces the
// container's single child; every change bumps a version counter and
// notifies listeners, which is how live transports learn that the view
// needs to be re-sent.
package vdom
