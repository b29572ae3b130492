// Package router maps pathnames to components and drives them through the
// component lifecycle.
//
// A Router is built from an ordered list of routes, a mandatory default
// target and the container it mounts into:
//
//	r, err := router.New(router.Config{
//	    Container: vdom.NewContainer("app"),
//	    Navigator: history,
//	    Default:   router.FromFactory(views.NewDashboard),
//	    Routes: []router.Route{
//	        {Pattern: "/", Target: router.FromFactory(views.NewDashboard)},
//	        {Pattern: "/posts/:postId", Target: router.FromFactory(views.NewPost)},
//	    },
//	})
//
// # Dispatch
//
// Dispatch(ctx, "/posts/42") tries routes in declaration order; the first
// match wins and routes are never reordered by specificity. A factory
// target is invoked once, on its route's first match, and the instance is
// reused afterwards through OnPropsUpdated. Pathnames with a trailing
// slash are redirected through the Navigator instead of being matched.
//
// Within a dispatch the order is OnPropsUpdated, Render, then
// BeforeUnmount on the previous component and MountOn on the new one when
// the active component changes, and finally Refresh on a separate
// goroutine once the synchronous steps are done.
//
// # Failures
//
// Panics in lifecycle methods and parameter-count mismatches abort the
// dispatch and are passed to the configured FatalReporter. Errors returned
// by Refresh go to the same reporter, except context.Canceled, which a
// component returns when its work was abandoned on unmount.
package router
