package spa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/spa/internal/errors"
	"github.com/vango-dev/spa/internal/views"
	"github.com/vango-dev/spa/pkg/component"
	"github.com/vango-dev/spa/pkg/fatal"
	"github.com/vango-dev/spa/pkg/live"
	"github.com/vango-dev/spa/pkg/reports"
	"github.com/vango-dev/spa/pkg/router"
	"github.com/vango-dev/spa/pkg/vdom"
)

func viewRoutes(c *vdom.Container, nav router.Navigator, rep router.FatalReporter) (*router.Router, error) {
	return views.NewRouter(c, nav, views.Options{
		Source:   views.MemorySource{7: "Seven."},
		Reporter: rep,
	})
}

// broken panics while rendering.
type broken struct{}

func (broken) OnPropsUpdated(component.Props) {}
func (broken) Render()                        { panic("render exploded") }
func (broken) Refresh(context.Context) error  { return nil }
func (broken) MountOn(*vdom.Container)        {}
func (broken) BeforeUnmount()                 {}

func brokenRoutes(c *vdom.Container, nav router.Navigator, rep router.FatalReporter) (*router.Router, error) {
	return router.New(router.Config{
		Container: c,
		Navigator: nav,
		Reporter:  rep,
		Default:   router.FromFactory(views.NewDashboard),
		Routes: []router.Route{
			{Pattern: "/broken", Target: router.FromInstance(broken{})},
		},
	})
}

func TestNew_ValidatesDist(t *testing.T) {
	if _, err := New(Config{}); !errors.HasCode(err, "E120") {
		t.Fatalf("empty DistPath error = %v, want E120", err)
	}

	if _, err := New(Config{DistPath: filepath.Join(t.TempDir(), "nope")}); !errors.HasCode(err, "E120") {
		t.Fatalf("missing dist error = %v, want E120", err)
	}

	dist := t.TempDir()
	writeFile(t, dist, "frontend/static/main.js", "")
	if _, err := New(Config{DistPath: dist}); !errors.HasCode(err, "E121") {
		t.Fatalf("missing index error = %v, want E121", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	app := newTestApp(t, Config{})
	cfg := app.Config()

	if cfg.ErrorPage != "/error" || cfg.LogEndpoint != "/api/log-error" || cfg.Static.Prefix != "/static" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.MaxReportBytes != 64<<10 {
		t.Fatalf("MaxReportBytes = %d", cfg.MaxReportBytes)
	}
	if _, ok := app.Store().(*reports.MemoryStore); !ok {
		t.Fatalf("default store = %T, want *reports.MemoryStore", app.Store())
	}
}

func TestErrorPage(t *testing.T) {
	app := newTestApp(t, Config{})

	rr := do(app, http.MethodGet, "/error", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /error status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"<h1>Something went wrong.</h1>",
		"It is not your fault, it is ours.",
		`<a href="/">start page</a>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("error page missing %q:\n%s", want, body)
		}
	}
}

func TestLogError(t *testing.T) {
	store := reports.NewMemoryStore(10)
	app := newTestApp(t, Config{Store: store})

	body := `{"type":"onerror","message":"boom","source":"main.js","lineno":3,"colno":7,"url":"http://example.com/posts/1","timestamp":"2024-05-01T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/log-error", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	req.Header.Set("User-Agent", "test-agent")
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != "Error logged" {
		t.Fatalf("body = %q", rr.Body.String())
	}

	recs, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("stored %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Report.Type != fatal.KindError || rec.Report.Message != "boom" || rec.Report.Line != 3 || rec.Report.Column != 7 {
		t.Errorf("report = %+v", rec.Report)
	}
	if rec.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q", rec.UserAgent)
	}
	if string(rec.Raw) != body {
		t.Errorf("Raw = %s", rec.Raw)
	}
	if rec.ID == "" || rec.Received.IsZero() {
		t.Errorf("generated fields missing: %+v", rec)
	}
}

func TestLogError_Rejects(t *testing.T) {
	store := reports.NewMemoryStore(10)
	app := newTestApp(t, Config{Store: store, MaxReportBytes: 32})

	cases := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{"type":`, http.StatusBadRequest},
		{"empty", "", http.StatusBadRequest},
		{"too large", `{"message":"` + strings.Repeat("x", 64) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(app, http.MethodPost, "/api/log-error", tc.body)
			if rr.Code != tc.code {
				t.Fatalf("status = %d, want %d", rr.Code, tc.code)
			}
		})
	}
	if store.Len() != 0 {
		t.Fatalf("rejected reports were stored: %d", store.Len())
	}

	if rr := do(app, http.MethodGet, "/api/log-error", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /api/log-error status = %d, want 405", rr.Code)
	}
}

func TestAPIPathsSkipIndex(t *testing.T) {
	app := newTestApp(t, Config{})

	cases := []struct {
		method, path string
		code         int
	}{
		{http.MethodGet, "/api/log-error", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/rnd", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/missing", http.StatusNotFound},
		{http.MethodGet, "/api/", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := do(app, tc.method, tc.path, "")
			if rr.Code != tc.code {
				t.Fatalf("status = %d, want %d", rr.Code, tc.code)
			}
			if strings.Contains(rr.Body.String(), "<html") {
				t.Fatalf("index served for %s", tc.path)
			}
		})
	}

	if rr := do(app, http.MethodGet, "/apiary", ""); rr.Code != http.StatusOK {
		t.Fatalf("GET /apiary status = %d, want the index", rr.Code)
	}
}

func TestLogError_EndpointOutsideAPI(t *testing.T) {
	store := reports.NewMemoryStore(10)
	app := newTestApp(t, Config{Store: store, LogEndpoint: "/log"})

	if rr := do(app, http.MethodPost, "/log", `{"type":"onerror","message":"m"}`); rr.Code != http.StatusOK {
		t.Fatalf("POST /log status = %d", rr.Code)
	}
	if store.Len() != 1 {
		t.Fatalf("stored %d reports, want 1", store.Len())
	}
}

func TestDecodeReport(t *testing.T) {
	rep := decodeReport([]byte(`"{\"type\":\"onunhandledrejection\",\"message\":\"nested\"}"`))
	if rep.Type != fatal.KindRejection || rep.Message != "nested" {
		t.Errorf("string-wrapped report = %+v", rep)
	}

	rep = decodeReport([]byte(`{"type":"onerror","message":"typed","lineno":"twelve","timestamp":"2024-05-01T10:00:00Z"}`))
	if rep.Type != fatal.KindError || rep.Message != "typed" {
		t.Errorf("loose report = %+v", rep)
	}
	if !rep.Timestamp.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %v", rep.Timestamp)
	}

	rep = decodeReport([]byte(`"just text"`))
	if rep.Message != "just text" {
		t.Errorf("text report = %+v", rep)
	}

	rep = decodeReport([]byte(`[1,2]`))
	if rep != (fatal.Report{}) {
		t.Errorf("array report = %+v", rep)
	}
}

func TestRandom(t *testing.T) {
	app := newTestApp(t, Config{})

	for i := 0; i < 50; i++ {
		rr := do(app, http.MethodGet, "/api/rnd", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var out struct {
			Rnd *int `json:"rnd"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %q: %v", rr.Body.String(), err)
		}
		if out.Rnd == nil || *out.Rnd < 0 || *out.Rnd >= 100 {
			t.Fatalf("rnd = %v", out.Rnd)
		}
	}

	app = newTestApp(t, Config{Random: func() int { return 42 }})
	if got := do(app, http.MethodGet, "/api/rnd", "").Body.String(); got != "{\"rnd\":42}\n" {
		t.Fatalf("body = %q", got)
	}
}

func TestAccessLog(t *testing.T) {
	app := newTestApp(t, Config{AccessLog: true, Random: func() int { return 7 }})

	rr := do(app, http.MethodGet, "/api/rnd", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "{\"rnd\":7}\n" {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}
	if rr := do(app, http.MethodGet, "/static/main.js", ""); rr.Code != http.StatusOK {
		t.Fatalf("static status = %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, Config{})
	do(app, http.MethodGet, "/api/rnd", "")
	do(app, http.MethodPost, "/api/log-error", `{"type":"onerror","message":"m"}`)

	rr := do(app, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`spa_http_requests_total{code="200",method="GET",route="/api/rnd"}`,
		`spa_error_reports_total{type="onerror"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %s", want)
		}
	}
}

func TestMetricsEndpoint_OwnRegistry(t *testing.T) {
	newTestApp(t, Config{})

	reg := prometheus.NewRegistry()
	app := newTestApp(t, Config{Registry: reg})
	do(app, http.MethodGet, "/api/rnd", "")
	do(app, http.MethodPost, "/api/log-error", `{"type":"made-up","message":"m"}`)

	body := do(app, http.MethodGet, "/metrics", "").Body.String()
	for _, want := range []string{
		`spa_http_requests_total{code="200",method="GET",route="/api/rnd"}`,
		`spa_error_reports_total{type="other"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %s in:\n%s", want, body)
		}
	}
	if strings.Contains(body, "made-up") {
		t.Error("report type from the request body leaked into a label")
	}
}

func TestIndex_WithoutRoutes(t *testing.T) {
	app := newTestApp(t, Config{})

	for _, p := range []string{"/", "/posts/1", "/settings/", "/anything/else"} {
		rr := do(app, http.MethodGet, p, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", p, rr.Code)
		}
		if rr.Body.String() != testIndex {
			t.Fatalf("GET %s body = %q, want index.html unchanged", p, rr.Body.String())
		}
	}
}

func TestIndex_Prerender(t *testing.T) {
	app := newTestApp(t, Config{Routes: viewRoutes})

	rr := do(app, http.MethodGet, "/posts/7", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"<title>SPA: Post</title>",
		`<span id="post-id">7</span>`,
		`href="/posts/8"`,
		`<script src="/static/main.js"></script>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("pre-rendered page missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "Loading...") {
		t.Error("container placeholder should be replaced")
	}

	rr = do(app, http.MethodGet, "/no/such/page", "")
	if !strings.Contains(rr.Body.String(), "<h1>Dashboard</h1>") {
		t.Errorf("unmatched path should render the default view:\n%s", rr.Body.String())
	}
}

func TestIndex_TrailingSlashRedirect(t *testing.T) {
	app := newTestApp(t, Config{Routes: viewRoutes})

	cases := map[string]string{
		"/posts/":         "/posts",
		"/posts/1/?x=1":   "/posts/1?x=1",
		"//evil.example/": "/evil.example",
	}
	for target, want := range cases {
		rr := do(app, http.MethodGet, target, "")
		if rr.Code != http.StatusMovedPermanently {
			t.Fatalf("GET %s status = %d, want 301", target, rr.Code)
		}
		if got := rr.Header().Get("Location"); got != want {
			t.Fatalf("GET %s Location = %q, want %q", target, got, want)
		}
	}

	if rr := do(app, http.MethodGet, "/", ""); rr.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", rr.Code)
	}
}

func TestIndex_FatalRedirectsToErrorPage(t *testing.T) {
	store := reports.NewMemoryStore(10)
	app := newTestApp(t, Config{Routes: brokenRoutes, Store: store})

	rr := do(app, http.MethodGet, "/broken", "")
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/error" {
		t.Fatalf("Location = %q", got)
	}

	recs, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("stored %d reports, want 1", len(recs))
	}
	if recs[0].Report.Type != fatal.KindPanic {
		t.Errorf("Type = %q, want panic", recs[0].Report.Type)
	}
	if !strings.Contains(recs[0].Report.Message, "render exploded") {
		t.Errorf("Message = %q", recs[0].Report.Message)
	}
	if recs[0].Report.URL != "/broken" {
		t.Errorf("URL = %q", recs[0].Report.URL)
	}
	if recs[0].RemoteAddr != "server" {
		t.Errorf("RemoteAddr = %q", recs[0].RemoteAddr)
	}
}

func TestLiveEndpoint(t *testing.T) {
	app := newTestApp(t, Config{Routes: viewRoutes})
	srv := httptest.NewServer(app)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/_spa/live?path=/settings"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatal(err)
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		f, err := live.DecodeFrame(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if f.T == live.FrameMount && f.Title == "SPA: Settings" {
			return
		}
	}
}

func TestLiveEndpoint_DisabledWithoutRoutes(t *testing.T) {
	app := newTestApp(t, Config{})

	// Without a route table the path is just another SPA path.
	rr := do(app, http.MethodGet, "/_spa/live", "")
	if rr.Code != http.StatusOK || rr.Body.String() != testIndex {
		t.Fatalf("GET /_spa/live = %d %q", rr.Code, rr.Body.String())
	}
}

func TestReportSender(t *testing.T) {
	store := reports.NewMemoryStore(10)
	app := newTestApp(t, Config{Store: store})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := app.ReportSender().Send(ctx, fatal.Report{Type: fatal.KindRejection, Message: "late"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("stored %d", store.Len())
	}
}
