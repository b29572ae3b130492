package router

import (
	"context"
	"log/slog"

	"github.com/vango-dev/spa/pkg/component"
	"github.com/vango-dev/spa/pkg/vdom"
)

// Target is what a route resolves to: a factory that is invoked on the
// first visit, or a component constructed up front by the caller.
type Target struct {
	factory  component.Factory
	instance component.Component
}

// FromFactory returns a target that constructs its component lazily.
func FromFactory(f component.Factory) Target {
	return Target{factory: f}
}

// FromInstance returns a target backed by an existing component.
func FromInstance(c component.Component) Target {
	return Target{instance: c}
}

// IsZero reports whether the target has neither a factory nor an instance.
func (t Target) IsZero() bool {
	return t.factory == nil && t.instance == nil
}

// Route pairs a pattern such as "/posts/:postId" with its target.
type Route struct {
	Pattern string
	Target  Target
}

// Navigator is the environment's history. The router only ever replaces
// the current entry, which it does for trailing-slash redirects.
type Navigator interface {
	Replace(path string)
}

// FatalReporter receives errors that must not be handled locally:
// contract violations and panics in lifecycle methods, and errors
// returned from Refresh.
type FatalReporter interface {
	Fatal(ctx context.Context, err error)
}

// Config configures a Router.
type Config struct {
	// Container is where the active component is mounted. Required.
	Container *vdom.Container

	// Default is used when no route matches. Required.
	Default Target

	// Routes are tried in order; the first match wins.
	Routes []Route

	// Navigator performs redirects. Required.
	Navigator Navigator

	// Reporter receives fatal errors. If nil they are only logged.
	Reporter FatalReporter

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Middleware wraps every dispatch, first to last.
	Middleware []Middleware

	// Runner starts refresh work. Defaults to a new goroutine per call.
	Runner func(func())

	// CacheSize bounds the pathname → route cache. Zero means 512;
	// negative disables caching.
	CacheSize int
}

// Result describes the outcome of one dispatch.
type Result struct {
	// Pathname is the pathname that was dispatched.
	Pathname string

	// Redirected is set when the pathname had a trailing slash. Nothing
	// was mounted; RedirectTo is where the navigator was sent.
	Redirected bool
	RedirectTo string

	// Matched is false when the default target was used.
	Matched bool

	// Pattern is the matched route pattern ("" for the default target).
	Pattern string

	// Params holds the extracted parameters (empty for the default).
	Params component.Props

	// Component is the component that is now active.
	Component component.Component

	// Created is set when the component was constructed by this dispatch.
	Created bool
}

// RouteInfo describes a declared route.
type RouteInfo struct {
	Pattern      string
	Params       []string
	Instantiated bool
}
