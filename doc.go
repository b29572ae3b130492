// Package spa serves a single-page application and collects the fatal
// errors its pages report.
//
// An App answers:
//
//	GET  /static/*        files from <dist>/frontend/static
//	GET  /error           the static error page
//	POST /api/log-error   a fatal error report, stored in the report store
//	GET  /api/rnd         {"rnd": n} with 0 <= n < 100
//	GET  /metrics         Prometheus metrics
//	GET  /_spa/live       the live WebSocket endpoint (with Routes)
//	GET  /*               index.html
//
// Usage:
//
//	cfg := spa.DefaultConfig()
//	cfg.DistPath = "dist"
//	cfg.Routes = func(c *vdom.Container, nav router.Navigator, rep router.FatalReporter) (*router.Router, error) {
//		return views.NewRouter(c, nav, views.Options{Reporter: rep})
//	}
//	app, err := spa.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//	return app.Run(ctx, ":3000")
//
// With Routes set, index.html is pre-rendered: the request path is
// dispatched on a fresh router and the mounted component's markup is
// placed in the container element before the page is sent.
package spa
