package views

import (
	"log/slog"

	"github.com/vango-dev/spa/pkg/router"
	"github.com/vango-dev/spa/pkg/vdom"
)

// DefaultPostCount is how many posts the post list links to.
const DefaultPostCount = 5

// Routes returns the application's route table. Every call returns fresh
// factories, so each router built from it owns its components.
func Routes(source PostSource) []router.Route {
	return []router.Route{
		{Pattern: "/", Target: router.FromFactory(NewDashboard)},
		{Pattern: "/settings", Target: router.FromFactory(NewSettings)},
		{Pattern: "/posts", Target: router.FromFactory(NewPostList(DefaultPostCount))},
		{Pattern: "/posts/:postId", Target: router.FromFactory(NewPost(source))},
		{Pattern: "/posts/:postId/comments/:commentId", Target: router.FromFactory(NewComment)},
	}
}

// Default is used for paths no route matches.
func Default() router.Target {
	return router.FromFactory(NewDashboard)
}

// Options configures NewRouter.
type Options struct {
	Source     PostSource
	Reporter   router.FatalReporter
	Logger     *slog.Logger
	Middleware []router.Middleware
	Runner     func(func())
}

// NewRouter builds a router for the application mounting into c.
func NewRouter(c *vdom.Container, nav router.Navigator, opts Options) (*router.Router, error) {
	return router.New(router.Config{
		Container:  c,
		Default:    Default(),
		Routes:     Routes(opts.Source),
		Navigator:  nav,
		Reporter:   opts.Reporter,
		Logger:     opts.Logger,
		Middleware: opts.Middleware,
		Runner:     opts.Runner,
	})
}
