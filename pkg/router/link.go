package router

import "github.com/vango-dev/spa/pkg/vdom"

// Link creates an anchor that the navigation layer intercepts and turns
// into a client-side navigation instead of a page load.
func Link(href string, children ...any) *vdom.VNode {
	args := make([]any, 0, len(children)+2)
	args = append(args, vdom.Href(href), vdom.DataLink())
	args = append(args, children...)
	return vdom.A(args...)
}
