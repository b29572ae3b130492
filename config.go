package spa

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/spa/pkg/reports"
	"github.com/vango-dev/spa/pkg/router"
	"github.com/vango-dev/spa/pkg/vdom"
)

// RouterBuilder builds the router for one container. It is called once per
// pre-rendered request and once per live connection. rep is a reporter
// bound to nav: it stores the report and sends nav to the error page.
type RouterBuilder func(c *vdom.Container, nav router.Navigator, rep router.FatalReporter) (*router.Router, error)

// Config configures an App.
type Config struct {
	// DistPath is the distribution directory. The built frontend is read
	// from <DistPath>/frontend. Required.
	DistPath string

	Static StaticConfig

	// ErrorPage is the path of the static error page (default "/error").
	ErrorPage string

	// LogEndpoint receives client error reports (default "/api/log-error").
	LogEndpoint string

	// MaxReportBytes caps the size of an error report (default 64 KiB).
	MaxReportBytes int64

	// Routes enables server-side pre-rendering of index.html and the live
	// endpoint. Nil serves index.html unchanged.
	Routes RouterBuilder

	// ContainerID is the id of the element the router mounts into
	// (default "app").
	ContainerID string

	// LivePath is the live WebSocket endpoint (default "/_spa/live").
	LivePath string

	// CheckOrigin is passed to the live endpoint's upgrader.
	CheckOrigin func(r *http.Request) bool

	// Store persists received error reports (default: in memory).
	Store reports.Store

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// AccessLog adds one access log line per request.
	AccessLog bool

	// Registry receives the HTTP metrics and backs /metrics. Nil uses the
	// prometheus default registry.
	Registry *prometheus.Registry

	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider

	// ReadHeaderTimeout and ShutdownTimeout configure Run.
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	// Random returns the number served by /api/rnd. It must return a value
	// in [0, 100).
	Random func() int
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Prefix is the URL path prefix for static files (default "/static").
	// Files are read from <DistPath>/frontend/static.
	Prefix string

	// CacheControl determines caching behavior for static files.
	// Default: CacheControlNone (no caching headers).
	CacheControl CacheControlStrategy

	// MaxAge is the max-age in seconds of non-fingerprinted files under
	// CacheControlProduction (default 3600).
	MaxAge int

	// Headers are custom headers to add to all static file responses.
	Headers map[string]string
}

// CacheControlStrategy determines caching behavior for static files.
type CacheControlStrategy int

const (
	// CacheControlNone disables caching (useful for development).
	CacheControlNone CacheControlStrategy = iota

	// CacheControlProduction caches fingerprinted files for a year and
	// everything else for an hour.
	CacheControlProduction
)

// Defaults applied by New.
const (
	DefaultStaticPrefix   = "/static"
	DefaultStaticMaxAge   = 3600
	DefaultErrorPage      = "/error"
	DefaultLogEndpoint    = "/api/log-error"
	DefaultMaxReportBytes = 64 << 10
	DefaultContainerID    = "app"
	DefaultLivePath       = "/_spa/live"
)

// DefaultConfig returns a Config with default values for everything but
// DistPath.
func DefaultConfig() Config {
	return Config{
		Static:            StaticConfig{Prefix: DefaultStaticPrefix, MaxAge: DefaultStaticMaxAge},
		ErrorPage:         DefaultErrorPage,
		LogEndpoint:       DefaultLogEndpoint,
		MaxReportBytes:    DefaultMaxReportBytes,
		ContainerID:       DefaultContainerID,
		LivePath:          DefaultLivePath,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Static.Prefix == "" {
		c.Static.Prefix = d.Static.Prefix
	}
	if c.Static.MaxAge <= 0 {
		c.Static.MaxAge = DefaultStaticMaxAge
	}
	if c.ErrorPage == "" {
		c.ErrorPage = d.ErrorPage
	}
	if c.LogEndpoint == "" {
		c.LogEndpoint = d.LogEndpoint
	}
	if c.MaxReportBytes <= 0 {
		c.MaxReportBytes = d.MaxReportBytes
	}
	if c.ContainerID == "" {
		c.ContainerID = d.ContainerID
	}
	if c.LivePath == "" {
		c.LivePath = d.LivePath
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
}
