package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/spa/pkg/router"
)

func resetGlobalMetricsForTest() {
	setsMu.Lock()
	sets = map[prometheus.Registerer]*Metrics{}
	setsMu.Unlock()
}

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func newNav(path string) *router.Navigation {
	return &router.Navigation{Context: context.Background(), Pathname: path}
}

func TestPrometheusMiddleware_RecordsOutcomes(t *testing.T) {
	t.Run("matched route counts success by pattern", func(t *testing.T) {
		resetGlobalMetricsForTest()
		metrics := NewMetrics(WithRegistry(prometheus.NewRegistry()))
		mw := metrics.Router()

		nav := newNav("/posts/1")
		err := mw.Handle(nav, func() error {
			nav.Result = &router.Result{Matched: true, Pattern: "/posts/:postId", Created: true}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		m := metrics.c
		if got := metricCounterValue(t, m.navigations.WithLabelValues("/posts/:postId", "success")); got != 1 {
			t.Fatalf("navigations_total(success)=%v, want 1", got)
		}
		if got := metricCounterValue(t, m.created); got != 1 {
			t.Fatalf("components_created_total=%v, want 1", got)
		}
		if got := metricHistogramCount(t, m.navDuration.WithLabelValues("/posts/:postId")); got == 0 {
			t.Fatal("expected navigation_duration_seconds to have samples")
		}
	})

	t.Run("default target and redirect get fixed labels", func(t *testing.T) {
		resetGlobalMetricsForTest()
		metrics := NewMetrics(WithRegistry(prometheus.NewRegistry()))
		mw := metrics.Router()

		nav := newNav("/nowhere")
		_ = mw.Handle(nav, func() error {
			nav.Result = &router.Result{}
			return nil
		})
		nav = newNav("/posts/")
		_ = mw.Handle(nav, func() error {
			nav.Result = &router.Result{Redirected: true, RedirectTo: "/posts"}
			return nil
		})

		m := metrics.c
		if got := metricCounterValue(t, m.navigations.WithLabelValues("default", "success")); got != 1 {
			t.Fatalf("navigations_total(default)=%v, want 1", got)
		}
		if got := metricCounterValue(t, m.navigations.WithLabelValues("redirect", "redirect")); got != 1 {
			t.Fatalf("navigations_total(redirect)=%v, want 1", got)
		}
		if got := metricCounterValue(t, m.redirects); got != 1 {
			t.Fatalf("redirects_total=%v, want 1", got)
		}
	})

	t.Run("lifecycle error is categorized by phase", func(t *testing.T) {
		resetGlobalMetricsForTest()
		metrics := NewMetrics(WithRegistry(prometheus.NewRegistry()))
		mw := metrics.Router()

		wantErr := &router.LifecycleError{Phase: router.PhaseRender, Pathname: "/", Err: errors.New("panic: x")}
		err := mw.Handle(newNav("/"), func() error { return wantErr })
		if !errors.Is(err, wantErr) {
			t.Fatalf("expected error to propagate, got %v", err)
		}

		m := metrics.c
		if got := metricCounterValue(t, m.navFailures.WithLabelValues("unknown", "render")); got != 1 {
			t.Fatalf("navigation_errors_total(render)=%v, want 1", got)
		}
		if got := metricCounterValue(t, m.navigations.WithLabelValues("unknown", "error")); got != 1 {
			t.Fatalf("navigations_total(error)=%v, want 1", got)
		}
	})
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&router.LifecycleError{Phase: router.PhaseMount}, "mount"},
		{router.ErrParamCountMismatch, "match"},
		{errors.New("request Timeout"), "timeout"},
		{errors.New("post not found"), "not_found"},
		{errors.New("validation failed"), "validation"},
		{errors.New("something else"), "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMetrics_Recording(t *testing.T) {
	resetGlobalMetricsForTest()

	var none *Metrics
	none.LiveConnect()
	none.ErrorReport("onerror")

	metrics := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	m := metrics.c

	metrics.LiveConnect()
	metrics.LiveConnect()
	metrics.LiveDisconnect()
	metrics.LiveError("read")
	metrics.ErrorReport("onerror")
	metrics.ErrorReport("")

	if got := metricGaugeValue(t, m.liveOpen); got != 1 {
		t.Fatalf("live_sessions=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.liveFailures.WithLabelValues("read")); got != 1 {
		t.Fatalf("live_errors_total(read)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.clientReports.WithLabelValues("onerror")); got != 1 {
		t.Fatalf("error_reports_total(onerror)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.clientReports.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("error_reports_total(unknown)=%v, want 1", got)
	}
}

func TestErrorReport_BoundsTypeLabel(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(reg))

	for i := 0; i < 100; i++ {
		metrics.ErrorReport(fmt.Sprintf("made-up-%d", i))
	}
	metrics.ErrorReport("panic")
	metrics.ErrorReport("onunhandledrejection")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	got := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "spa_error_reports_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			got[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	want := map[string]float64{"other": 100, "panic": 1, "onunhandledrejection": 1}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("series = %v, want %v", got, want)
	}
}

func TestNewMetrics_OneSetPerRegistry(t *testing.T) {
	resetGlobalMetricsForTest()
	regA, regB := prometheus.NewRegistry(), prometheus.NewRegistry()

	a := NewMetrics(WithRegistry(regA))
	if again := NewMetrics(WithRegistry(regA)); again != a {
		t.Fatal("same registry should share one set of collectors")
	}
	b := NewMetrics(WithRegistry(regB))
	if b == a {
		t.Fatal("a second registry should get its own collectors")
	}

	a.LiveError("read")
	if got := metricCounterValue(t, b.c.liveFailures.WithLabelValues("read")); got != 0 {
		t.Fatalf("registry B saw registry A's error: %v", got)
	}
	if got := metricCounterValue(t, a.c.liveFailures.WithLabelValues("read")); got != 1 {
		t.Fatalf("live_errors_total(read)=%v, want 1", got)
	}
}

func TestPrometheus_NamespaceAndConstLabels(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(reg), WithNamespace("blog"), WithConstLabels(prometheus.Labels{"env": "test"}))

	nav := newNav("/")
	_ = mw.Handle(nav, func() error {
		nav.Result = &router.Result{Matched: true, Pattern: "/"}
		return nil
	})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	var found *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "blog_navigations_total" {
			found = mf
		}
	}
	if found == nil {
		t.Fatal("blog_navigations_total not registered")
	}
	labels := map[string]string{}
	for _, lp := range found.GetMetric()[0].GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	if labels["env"] != "test" || labels["pattern"] != "/" || labels["status"] != "success" {
		t.Fatalf("labels = %v", labels)
	}
}

func TestHTTPMetrics_LabelsByRoutePattern(t *testing.T) {
	resetGlobalMetricsForTest()

	r := chi.NewRouter()
	metrics := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	r.Use(metrics.HTTP())
	r.Get("/api/rnd", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rnd":1}`))
	})
	r.Post("/api/log-error", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/rnd", nil),
		httptest.NewRequest(http.MethodGet, "/api/rnd", nil),
		httptest.NewRequest(http.MethodPost, "/api/log-error", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	m := metrics.c
	if got := metricCounterValue(t, m.requests.WithLabelValues("/api/rnd", "GET", "200")); got != 2 {
		t.Fatalf("http_requests_total(rnd)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.requests.WithLabelValues("/api/log-error", "POST", "400")); got != 1 {
		t.Fatalf("http_requests_total(log-error)=%v, want 1", got)
	}
}
