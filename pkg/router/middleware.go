package router

import "context"

// Navigation is what middleware sees of one dispatch. Middleware may
// replace Context before calling next; Result is set once next returns.
type Navigation struct {
	Context  context.Context
	Pathname string
	Result   *Result
}

// Middleware wraps a dispatch. Returning without calling next ends the
// dispatch; a nil error then means nothing was mounted.
type Middleware interface {
	Handle(nav *Navigation, next func() error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(nav *Navigation, next func() error) error

func (f MiddlewareFunc) Handle(nav *Navigation, next func() error) error {
	return f(nav, next)
}

// ComposeMiddleware runs mw[0], then mw[1] and so on around final.
func ComposeMiddleware(nav *Navigation, mw []Middleware, final func() error) error {
	var run func(i int) error
	run = func(i int) error {
		if i == len(mw) {
			return final()
		}
		return mw[i].Handle(nav, func() error { return run(i + 1) })
	}
	return run(0)
}

// Chain groups middleware into one.
func Chain(mw ...Middleware) Middleware {
	return MiddlewareFunc(func(nav *Navigation, next func() error) error {
		return ComposeMiddleware(nav, mw, next)
	})
}

// Skip runs mw only for navigations where skip returns false.
func Skip(skip func(*Navigation) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(nav *Navigation, next func() error) error {
		if skip(nav) {
			return next()
		}
		return mw.Handle(nav, next)
	})
}
