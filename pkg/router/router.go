package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vango-dev/spa/pkg/component"
	"github.com/vango-dev/spa/pkg/routepath"
	"github.com/vango-dev/spa/pkg/vdom"
)

const defaultCacheSize = 512

// noRoute is cached for pathnames that fall through to the default target.
const noRoute = -1

// entry is one declared route. Once the factory has run, instance holds
// the only component this entry will ever produce.
type entry struct {
	pattern  *routepath.Pattern
	factory  component.Factory
	instance component.Component
}

// Router dispatches pathnames to components and drives them through their
// lifecycle. Dispatches are serialized; a Router is safe for concurrent use.
type Router struct {
	mu        sync.Mutex
	routes    []*entry
	fallback  *entry
	container *vdom.Container
	nav       Navigator
	reporter  FatalReporter
	logger    *slog.Logger
	mw        []Middleware
	runner    func(func())
	cache     *lru.Cache[string, int]

	active component.Component
	state  component.MountState

	refreshes sync.WaitGroup
}

// New compiles every route pattern and validates the configuration.
func New(cfg Config) (*Router, error) {
	if cfg.Container == nil {
		return nil, ErrNoContainer
	}
	if cfg.Default.IsZero() {
		return nil, ErrNoDefault
	}
	if cfg.Navigator == nil {
		return nil, ErrNoNavigator
	}

	r := &Router{
		fallback:  &entry{factory: cfg.Default.factory, instance: cfg.Default.instance},
		container: cfg.Container,
		nav:       cfg.Navigator,
		reporter:  cfg.Reporter,
		logger:    cfg.Logger,
		mw:        cfg.Middleware,
		runner:    cfg.Runner,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.runner == nil {
		r.runner = func(f func()) { go f() }
	}

	for i, route := range cfg.Routes {
		if route.Target.IsZero() {
			return nil, fmt.Errorf("%w: routes[%d] %q", ErrNoTarget, i, route.Pattern)
		}
		p, err := routepath.Compile(route.Pattern)
		if err != nil {
			return nil, err
		}
		r.routes = append(r.routes, &entry{
			pattern:  p,
			factory:  route.Target.factory,
			instance: route.Target.instance,
		})
	}

	size := cfg.CacheSize
	if size == 0 {
		size = defaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New[string, int](size)
		if err != nil {
			return nil, fmt.Errorf("router: match cache: %w", err)
		}
		r.cache = cache
	}

	return r, nil
}

// Dispatch runs one navigation cycle for pathname.
//
// A non-root pathname ending in "/" is not matched: the navigator is asked
// to replace it with the trimmed path and nothing is mounted. Otherwise the
// first matching route (or the default target) is resolved, updated,
// rendered and mounted, and its Refresh is started in the background.
//
// Contract violations and lifecycle panics abort the dispatch, are sent to
// the FatalReporter and are returned.
func (r *Router) Dispatch(ctx context.Context, pathname string) (*Result, error) {
	nav := &Navigation{Context: ctx, Pathname: pathname}

	r.mu.Lock()
	err := ComposeMiddleware(nav, r.mw, func() error {
		res, err := r.dispatch(pathname)
		nav.Result = res
		return err
	})
	r.mu.Unlock()

	// The navigator, the reporter and a synchronous Runner may all re-enter
	// Dispatch, so they run outside the lock.
	if err != nil {
		r.fatal(nav.Context, err)
		return nav.Result, err
	}
	res := nav.Result
	switch {
	case res == nil:
	case res.Redirected:
		r.logger.Info("router: redirect", "from", pathname, "to", res.RedirectTo)
		r.nav.Replace(res.RedirectTo)
	case res.Component != nil:
		r.startRefresh(nav.Context, pathname, res.Component)
	}
	return res, nil
}

// dispatch is the body of Dispatch. r.mu is held.
func (r *Router) dispatch(pathname string) (*Result, error) {
	res := &Result{Pathname: pathname}

	if trimmed, ok := routepath.TrimTrailingSlash(pathname); ok {
		res.Redirected = true
		res.RedirectTo = trimmed
		return res, nil
	}

	e, params, err := r.match(pathname)
	if err != nil {
		return nil, err
	}
	if e == nil {
		e = r.fallback
		params = component.Props{}
	} else {
		res.Matched = true
		res.Pattern = e.pattern.String()
	}
	res.Params = params

	comp := e.instance
	if comp == nil {
		if err := r.step(PhaseConstruct, pathname, func() { comp = e.factory(params) }); err != nil {
			return nil, err
		}
		if comp == nil {
			return nil, &LifecycleError{Phase: PhaseConstruct, Pathname: pathname, Err: errors.New("factory returned nil")}
		}
		e.instance = comp
		res.Created = true
	} else {
		if err := r.step(PhaseProps, pathname, func() { comp.OnPropsUpdated(params) }); err != nil {
			return nil, err
		}
	}
	res.Component = comp

	if err := r.step(PhaseRender, pathname, comp.Render); err != nil {
		return nil, err
	}

	if r.active != comp || r.state != component.Mounted {
		if r.active != nil && r.active != comp && r.state == component.Mounted {
			prev := r.active
			r.state = component.Unmounted
			if err := r.step(PhaseUnmount, pathname, prev.BeforeUnmount); err != nil {
				return nil, err
			}
		}
		r.active = comp
		if err := r.step(PhaseMount, pathname, func() { comp.MountOn(r.container) }); err != nil {
			return nil, err
		}
		r.state = component.Mounted
	}

	r.logger.Debug("router: dispatch",
		"path", pathname,
		"pattern", res.Pattern,
		"created", res.Created,
	)
	return res, nil
}

// match finds the first route accepting pathname. A nil entry means no
// route matched.
func (r *Router) match(pathname string) (*entry, component.Props, error) {
	if r.cache != nil {
		if idx, ok := r.cache.Get(pathname); ok {
			if idx == noRoute {
				return nil, nil, nil
			}
			e := r.routes[idx]
			params, _, err := e.pattern.Match(pathname)
			return e, params, err
		}
	}

	for i, e := range r.routes {
		params, ok, err := e.pattern.Match(pathname)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			if r.cache != nil {
				r.cache.Add(pathname, i)
			}
			return e, params, nil
		}
	}
	if r.cache != nil {
		r.cache.Add(pathname, noRoute)
	}
	return nil, nil, nil
}

// step runs one synchronous lifecycle method, converting a panic into a
// *LifecycleError.
func (r *Router) step(phase Phase, pathname string, fn func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &LifecycleError{
				Phase:    phase,
				Pathname: pathname,
				Err:      panicError(v),
				Stack:    debug.Stack(),
			}
		}
	}()
	fn()
	return nil
}

// startRefresh runs comp.Refresh off the dispatch path.
func (r *Router) startRefresh(ctx context.Context, pathname string, comp component.Component) {
	r.refreshes.Add(1)
	r.runner(func() {
		defer r.refreshes.Done()
		defer func() {
			if v := recover(); v != nil {
				r.fatal(ctx, &LifecycleError{
					Phase:    PhaseRefresh,
					Pathname: pathname,
					Err:      panicError(v),
					Stack:    debug.Stack(),
				})
			}
		}()

		err := comp.Refresh(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		r.fatal(ctx, &LifecycleError{Phase: PhaseRefresh, Pathname: pathname, Err: err})
	})
}

func (r *Router) fatal(ctx context.Context, err error) {
	if r.reporter == nil {
		r.logger.Error("router: fatal", "error", err)
		return
	}
	r.reporter.Fatal(ctx, err)
}

// Wait blocks until every refresh started so far has returned.
func (r *Router) Wait() {
	r.refreshes.Wait()
}

// Unmount calls BeforeUnmount on the mounted component, if any, and leaves
// the router with nothing mounted. The next Dispatch mounts again. A panic
// in BeforeUnmount is reported and returned.
func (r *Router) Unmount(ctx context.Context) error {
	r.mu.Lock()
	var err error
	if r.active != nil && r.state == component.Mounted {
		r.state = component.Unmounted
		err = r.step(PhaseUnmount, "", r.active.BeforeUnmount)
	}
	r.mu.Unlock()

	if err != nil {
		r.fatal(ctx, err)
	}
	return err
}

// Active returns the mounted component, or nil before the first dispatch.
func (r *Router) Active() component.Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != component.Mounted {
		return nil
	}
	return r.active
}

// Container returns the container the router mounts into.
func (r *Router) Container() *vdom.Container {
	return r.container
}

// Routes describes the declared routes in order.
func (r *Router) Routes() []RouteInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RouteInfo, len(r.routes))
	for i, e := range r.routes {
		out[i] = RouteInfo{
			Pattern:      e.pattern.String(),
			Params:       e.pattern.Names(),
			Instantiated: e.instance != nil,
		}
	}
	return out
}
