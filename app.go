package spa

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/lestrrat-go/accesslog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/spa/internal/errors"
	"github.com/vango-dev/spa/pkg/fatal"
	"github.com/vango-dev/spa/pkg/live"
	"github.com/vango-dev/spa/pkg/middleware"
	"github.com/vango-dev/spa/pkg/render"
	"github.com/vango-dev/spa/pkg/reports"
	"github.com/vango-dev/spa/pkg/router"
	"github.com/vango-dev/spa/pkg/vdom"
)

// App serves a single-page application: its static files, its index page
// for every other path, a fatal error page and a log endpoint for client
// error reports. With a route table it also pre-renders index.html and
// serves the live navigation endpoint.
//
//	app, err := spa.New(spa.Config{
//	    DistPath: "dist",
//	    Routes:   buildRouter,
//	})
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx, ":3000")
type App struct {
	mux      *chi.Mux
	cfg      Config
	logger   *slog.Logger
	store    reports.Store
	renderer *render.Renderer
	live     *live.Handler
	metrics  *middleware.Metrics

	frontendDir string
	indexPath   string
	staticFS    http.FileSystem
}

// New validates the distribution directory and builds the handler tree.
func New(cfg Config) (*App, error) {
	cfg.applyDefaults()

	if cfg.DistPath == "" {
		return nil, errors.New("E120").WithDetail("DistPath is empty")
	}
	frontend := filepath.Join(cfg.DistPath, "frontend")
	if info, err := os.Stat(frontend); err != nil || !info.IsDir() {
		return nil, errors.New("E120").WithDetailf("%s is not a directory", frontend)
	}
	index := filepath.Join(frontend, "index.html")
	if _, err := os.Stat(index); err != nil {
		return nil, errors.New("E121").WithDetailf("%s is missing", index).Wrap(err)
	}

	a := &App{
		cfg:         cfg,
		logger:      cfg.Logger,
		store:       cfg.Store,
		renderer:    render.NewRenderer(render.RendererConfig{}),
		frontendDir: frontend,
		indexPath:   index,
		staticFS:    http.Dir(filepath.Join(frontend, "static")),
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.store == nil {
		a.store = reports.NewMemoryStore(reports.DefaultCapacity)
	}
	if a.cfg.Random == nil {
		a.cfg.Random = func() int { return rand.IntN(100) }
	}
	if a.cfg.Registry != nil {
		a.metrics = middleware.NewMetrics(middleware.WithRegistry(a.cfg.Registry))
	} else {
		a.metrics = middleware.NewMetrics()
	}
	if cfg.Routes != nil {
		a.live = live.NewHandler(live.Config{
			Factory:       a.routerFactory,
			ContainerID:   cfg.ContainerID,
			ExternalPaths: []string{cfg.ErrorPage},
			CheckOrigin:   cfg.CheckOrigin,
			Metrics:       a.metrics,
			Logger:        a.logger,
		})
	}

	a.mux = a.routes()
	return a, nil
}

const apiPrefix = "/api"

func (a *App) routes() *chi.Mux {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if a.cfg.Registry != nil {
		gatherer = a.cfg.Registry
	}
	var otelOpts []middleware.OTelOption
	if a.cfg.TracerProvider != nil {
		otelOpts = append(otelOpts, middleware.WithTracerProvider(a.cfg.TracerProvider))
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Tracing(otelOpts...))
	r.Use(a.metrics.HTTP())
	if a.cfg.AccessLog {
		r.Use(accesslog.New().Wrap)
	}

	prefix := strings.TrimSuffix(a.cfg.Static.Prefix, "/")
	r.With(a.logRequests).Get(prefix+"/*", a.serveStatic)
	r.With(a.logRequests).Head(prefix+"/*", a.serveStatic)

	r.Get(a.cfg.ErrorPage, a.handleErrorPage)

	// API paths never fall through to the index: unknown ones are 404 and
	// wrong methods 405.
	logPath, logInAPI := strings.CutPrefix(a.cfg.LogEndpoint, apiPrefix+"/")
	r.Route(apiPrefix, func(api chi.Router) {
		api.NotFound(http.NotFound)
		api.Get("/rnd", a.handleRandom)
		if logInAPI {
			api.Post("/"+logPath, a.handleLogError)
		}
	})
	if !logInAPI {
		r.Post(a.cfg.LogEndpoint, a.handleLogError)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if a.live != nil {
		r.Method(http.MethodGet, a.cfg.LivePath, a.live)
	}
	r.Get("/*", a.handleIndex)
	return r
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Handler returns the App as an http.Handler.
func (a *App) Handler() http.Handler {
	return a
}

// Store returns the error report store.
func (a *App) Store() reports.Store {
	return a.store
}

// Config returns the app configuration with defaults applied.
func (a *App) Config() Config {
	return a.cfg
}

// ReportSender returns a fatal.Sender that stores reports the same way
// the log endpoint does. Server-side reporters use it instead of posting
// to the App over HTTP. Saving outlives the caller's context.
func (a *App) ReportSender() fatal.Sender {
	return fatal.SenderFunc(func(ctx context.Context, rep fatal.Report) error {
		return a.saveReport(context.WithoutCancel(ctx), reports.Record{Report: rep, RemoteAddr: "server"})
	})
}

// routerFactory wraps the configured RouterBuilder with a fatal reporter
// bound to nav.
func (a *App) routerFactory(c *vdom.Container, nav router.Navigator) (*router.Router, error) {
	cfg := fatal.Config{
		Sender:    a.ReportSender(),
		Navigator: nav,
		ErrorPage: a.cfg.ErrorPage,
		Logger:    a.logger,
	}
	if p, ok := nav.(interface{ Pathname() string }); ok {
		cfg.URL = p.Pathname
	}
	return a.cfg.Routes(c, nav, fatal.New(cfg))
}

// logRequests logs each request it passes on.
func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.logger.Info("Received request for", "url", r.URL.RequestURI(), "request_id", chimw.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	})
}

// Close releases the report store.
func (a *App) Close() error {
	return a.store.Close()
}
