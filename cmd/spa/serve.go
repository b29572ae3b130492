package main

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	spa "github.com/vango-dev/spa"
	"github.com/vango-dev/spa/internal/config"
	"github.com/vango-dev/spa/internal/errors"
	"github.com/vango-dev/spa/internal/views"
	"github.com/vango-dev/spa/pkg/fatal"
	"github.com/vango-dev/spa/pkg/middleware"
	"github.com/vango-dev/spa/pkg/reports"
	"github.com/vango-dev/spa/pkg/router"
	"github.com/vango-dev/spa/pkg/vdom"
)

type serveOptions struct {
	config    string
	envFiles  []string
	port      int
	host      string
	dist      string
	store     string
	logLevel  string
	noLive    bool
	cache     bool
	accessLog bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built application",
		Long: `Serve the single-page application built into <dist>/frontend.

Every path that is not a static asset or an API endpoint is answered
with index.html. With live mode on (the default), the page is
pre-rendered by the router and kept up to date over a WebSocket.

Settings come from spa.json, then .env and the environment
(PORT, HOST, DIST_PATH, SPA_*), then flags.

Examples:
  spa serve
  spa serve --port=8080 --dist=build
  spa serve --store=disk
  spa serve --config=deploy/spa.json --no-live`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "Path to spa.json or its directory")
	f.StringSliceVar(&opts.envFiles, "env-file", nil, "Dotenv files to load (default .env)")
	f.IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from spa.json)")
	f.StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from spa.json)")
	f.StringVarP(&opts.dist, "dist", "d", "", "Distribution directory (default from spa.json)")
	f.StringVar(&opts.store, "store", "", "Error report store: memory, disk, s3 or postgres")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.BoolVar(&opts.noLive, "no-live", false, "Serve index.html unchanged and disable the live endpoint")
	f.BoolVar(&opts.cache, "cache", false, "Send long-lived Cache-Control headers for static files")
	f.BoolVar(&opts.accessLog, "access-log", false, "Write an access log line per request")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	cfg, err := loadServeConfig(cmd, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	slog.SetDefault(logger)
	if p := cfg.Path(); p != "" {
		logger.Debug("config loaded", "path", p)
	}

	store, err := reports.Open(cfg.ReportOptions())
	if err != nil {
		return errors.New("E123").
			WithDetailf("Store %q: %v", cfg.Reports.Store, err).
			Wrap(err)
	}

	app, err := buildApp(cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}
	defer app.Close()

	// Panics in server goroutines end up in the same store as the
	// browser's reports.
	restore := fatal.Install(fatal.New(fatal.Config{
		Sender:     app.ReportSender(),
		Logger:     logger,
		Registerer: prometheus.DefaultRegisterer,
	}))
	defer restore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner(out)
	info(out, "serve")
	io.WriteString(out, "\n")
	success(out, "Serving %s", cfg.FrontendPath())
	info(out, "Local:   %s", cfg.URL())
	info(out, "Reports: %s", cfg.Reports.Store)
	if cfg.Live.Disabled {
		warn(out, "Live mode disabled, index.html is served unchanged")
	}
	io.WriteString(out, "\n")

	if err := app.Run(ctx, cfg.Address()); err != nil {
		errorMsg(cmd.ErrOrStderr(), "server stopped")
		return errors.New("E122").WithDetail(err.Error()).Wrap(err)
	}
	return nil
}

// loadServeConfig layers spa.json, the environment and flags.
func loadServeConfig(cmd *cobra.Command, opts serveOptions) (*config.Config, error) {
	if err := config.LoadEnv(opts.envFiles...); err != nil {
		return nil, err
	}

	var (
		cfg *config.Config
		err error
	)
	switch {
	case opts.config == "":
		cfg, err = config.LoadOrDefault(".")
	case strings.HasSuffix(opts.config, ".json"):
		cfg, err = config.LoadFile(opts.config)
	default:
		cfg, err = config.Load(opts.config)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port = opts.port
	}
	if f.Changed("host") {
		cfg.Host = opts.host
	}
	if f.Changed("dist") {
		cfg.Dist = opts.dist
	}
	if f.Changed("store") {
		cfg.Reports.Store = opts.store
	}
	if f.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if opts.noLive {
		cfg.Live.Disabled = true
	}
	if opts.cache {
		cfg.Static.Cache = true
	}
	if opts.accessLog {
		cfg.AccessLog = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildApp creates the server for cfg. store is owned by the returned App.
func buildApp(cfg *config.Config, store reports.Store, logger *slog.Logger) (*spa.App, error) {
	appCfg := spa.DefaultConfig()
	appCfg.DistPath = cfg.DistPath()
	appCfg.Static.Prefix = cfg.Static.Prefix
	if cfg.Static.Cache {
		appCfg.Static.CacheControl = spa.CacheControlProduction
	}
	if cfg.Static.MaxAge > 0 {
		appCfg.Static.MaxAge = cfg.Static.MaxAge
	}
	appCfg.ErrorPage = cfg.ErrorPage
	appCfg.LogEndpoint = cfg.LogEndpoint
	appCfg.LivePath = cfg.Live.Path
	appCfg.Store = store
	appCfg.Logger = logger
	appCfg.AccessLog = cfg.AccessLog

	if !cfg.Live.Disabled {
		source := postSource(cfg)
		appCfg.Routes = func(c *vdom.Container, nav router.Navigator, rep router.FatalReporter) (*router.Router, error) {
			return views.NewRouter(c, nav, views.Options{
				Source:   source,
				Reporter: rep,
				Logger:   logger,
				Middleware: []router.Middleware{
					middleware.Prometheus(),
					middleware.OpenTelemetry(),
				},
			})
		}
	}

	return spa.New(appCfg)
}

// samplePosts backs the "memory" post source.
var samplePosts = views.MemorySource{
	1: "Routes are matched in declaration order.",
	2: "A trailing slash redirects to the trimmed path.",
	3: "Components are created on first visit and reused afterwards.",
}

func postSource(cfg *config.Config) views.PostSource {
	if cfg.Posts.Source == "memory" {
		return samplePosts
	}
	base := cfg.Posts.BaseURL
	if base == "" {
		base = cfg.URL()
	}
	return &views.RandomSource{BaseURL: base}
}

// newLogger returns a text logger at level. Unknown levels mean info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
