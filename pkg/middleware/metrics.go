package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/spa/pkg/fatal"
	"github.com/vango-dev/spa/pkg/router"
)

type metricsConfig struct {
	namespace   string
	constLabels prometheus.Labels
	buckets     []float64
	registry    prometheus.Registerer
}

// MetricsOption configures NewMetrics, Prometheus and HTTPMetrics.
type MetricsOption func(*metricsConfig)

// WithNamespace prefixes every metric name. Default "spa".
func WithNamespace(ns string) MetricsOption {
	return func(c *metricsConfig) { c.namespace = ns }
}

// WithConstLabels adds labels to every metric.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *metricsConfig) { c.constLabels = labels }
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *metricsConfig) { c.buckets = buckets }
}

// WithRegistry registers the collectors somewhere other than
// prometheus.DefaultRegisterer.
func WithRegistry(reg prometheus.Registerer) MetricsOption {
	return func(c *metricsConfig) { c.registry = reg }
}

type collectors struct {
	navigations   *prometheus.CounterVec   // pattern, status
	navDuration   *prometheus.HistogramVec // pattern
	navFailures   *prometheus.CounterVec   // pattern, phase
	redirects     prometheus.Counter
	created       prometheus.Counter
	liveOpen      prometheus.Gauge
	liveFailures  *prometheus.CounterVec // type
	clientReports *prometheus.CounterVec // type
	requests      *prometheus.CounterVec // route, method, code
	reqDuration   *prometheus.HistogramVec
}

func newCollectors(cfg metricsConfig) *collectors {
	reg := cfg.registry
	if len(cfg.constLabels) > 0 {
		reg = prometheus.WrapRegistererWith(cfg.constLabels, reg)
	}
	if cfg.namespace != "" {
		reg = prometheus.WrapRegistererWithPrefix(cfg.namespace+"_", reg)
	}
	f := promauto.With(reg)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	}
	histogram := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: cfg.buckets}, labels)
	}

	return &collectors{
		navigations:   counter("navigations_total", "Router dispatches by route pattern and outcome.", "pattern", "status"),
		navDuration:   histogram("navigation_duration_seconds", "Router dispatch latency.", "pattern"),
		navFailures:   counter("navigation_errors_total", "Failed dispatches by lifecycle phase.", "pattern", "phase"),
		redirects:     f.NewCounter(prometheus.CounterOpts{Name: "redirects_total", Help: "Trailing-slash redirects."}),
		created:       f.NewCounter(prometheus.CounterOpts{Name: "components_created_total", Help: "Components constructed by route factories."}),
		liveOpen:      f.NewGauge(prometheus.GaugeOpts{Name: "live_sessions", Help: "Open live navigation connections."}),
		liveFailures:  counter("live_errors_total", "Live connection errors by type.", "type"),
		clientReports: counter("error_reports_total", "Client error reports received by type.", "type"),
		requests:      counter("http_requests_total", "HTTP requests by route, method and status code.", "route", "method", "code"),
		reqDuration:   histogram("http_request_duration_seconds", "HTTP request latency.", "route"),
	}
}

// Metrics is one set of collectors registered on one registerer. Its
// methods are no-ops on a nil *Metrics.
type Metrics struct {
	c *collectors
}

var (
	setsMu sync.Mutex
	sets   = map[prometheus.Registerer]*Metrics{}
)

// NewMetrics returns the collectors registered on the configured
// registerer, creating them on first use. Later calls for the same
// registerer share that set and ignore their other options.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := metricsConfig{
		namespace: "spa",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	setsMu.Lock()
	defer setsMu.Unlock()
	if m, ok := sets[cfg.registry]; ok {
		return m
	}
	m := &Metrics{c: newCollectors(cfg)}
	sets[cfg.registry] = m
	return m
}

// patternLabel keeps label cardinality bounded by the route table.
func patternLabel(res *router.Result) string {
	switch {
	case res == nil:
		return "unknown"
	case res.Redirected:
		return "redirect"
	case !res.Matched:
		return "default"
	}
	return res.Pattern
}

// Prometheus returns router middleware counting and timing dispatches by
// route pattern. The collectors it registers (namespace "spa" unless
// WithNamespace says otherwise):
//
//	spa_navigations_total{pattern,status}
//	spa_navigation_duration_seconds{pattern}
//	spa_navigation_errors_total{pattern,phase}
//	spa_redirects_total
//	spa_components_created_total
//	spa_live_sessions
//	spa_live_errors_total{type}
//	spa_error_reports_total{type}
func Prometheus(opts ...MetricsOption) router.Middleware {
	return NewMetrics(opts...).Router()
}

// Router returns the dispatch middleware recording into m.
func (m *Metrics) Router() router.Middleware {
	if m == nil {
		return router.MiddlewareFunc(func(_ *router.Navigation, next func() error) error { return next() })
	}
	c := m.c

	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
		start := time.Now()
		err := next()

		res := nav.Result
		pattern := patternLabel(res)
		c.navDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
			c.navFailures.WithLabelValues(pattern, categorizeError(err)).Inc()
		} else if res != nil && res.Redirected {
			status = "redirect"
			c.redirects.Inc()
		} else if res != nil && res.Created {
			c.created.Inc()
		}
		c.navigations.WithLabelValues(pattern, status).Inc()
		return err
	})
}

// categorizeError labels a dispatch failure by the lifecycle phase that
// failed. Errors from outside the lifecycle get a coarse keyword label.
func categorizeError(err error) string {
	var le *router.LifecycleError
	if errors.As(err, &le) {
		return string(le.Phase)
	}
	if errors.Is(err, router.ErrParamCountMismatch) {
		return "match"
	}
	msg := strings.ToLower(err.Error())
	for _, kw := range [...]struct{ word, label string }{
		{"timeout", "timeout"},
		{"not found", "not_found"},
		{"validation", "validation"},
	} {
		if strings.Contains(msg, kw.word) {
			return kw.label
		}
	}
	return "internal"
}

// HTTPMetrics returns HTTP middleware counting and timing requests by chi
// route pattern. Requests no route claimed are labeled "unmatched".
func HTTPMetrics(opts ...MetricsOption) func(http.Handler) http.Handler {
	return NewMetrics(opts...).HTTP()
}

// HTTP returns the request middleware recording into m.
func (m *Metrics) HTTP() func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	c := m.c

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			code := ww.Status()
			if code == 0 {
				code = http.StatusOK
			}
			c.requests.WithLabelValues(route, r.Method, strconv.Itoa(code)).Inc()
			c.reqDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

func (m *Metrics) LiveConnect() {
	if m != nil {
		m.c.liveOpen.Inc()
	}
}

func (m *Metrics) LiveDisconnect() {
	if m != nil {
		m.c.liveOpen.Dec()
	}
}

func (m *Metrics) LiveError(kind string) {
	if m != nil {
		m.c.liveFailures.WithLabelValues(kind).Inc()
	}
}

// ErrorReport counts a client error report. The type comes from the
// request body, so anything but the known report kinds is counted as
// "other".
func (m *Metrics) ErrorReport(kind string) {
	if m != nil {
		m.c.clientReports.WithLabelValues(reportKindLabel(kind)).Inc()
	}
}

func reportKindLabel(kind string) string {
	switch fatal.Kind(kind) {
	case fatal.KindError, fatal.KindRejection, fatal.KindPanic:
		return kind
	case "":
		return "unknown"
	}
	return "other"
}
