// Package navigation provides the history environment routers run in.
//
// History replaces the browser's session history: Push, Replace, Back and
// Forward move between locations and notify listeners. Bind connects a
// History to a router so the initial location and every later change are
// dispatched, and Click implements same-origin data-link interception:
//
//	h := navigation.NewHistory("/")
//	unbind := navigation.Bind(ctx, h, r, logger)
//	defer unbind()
//
//	navigation.Click(h, "http://localhost:3000/", "/posts/1", true)
package navigation
