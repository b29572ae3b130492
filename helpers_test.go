package spa

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testIndex = `<!DOCTYPE html>
<html>
<head><title>SPA</title></head>
<body><div id="app">Loading...</div><script src="/static/main.js"></script></body>
</html>
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", name, err)
	}
	return path
}

// newDist creates <tmp>/frontend/index.html and <tmp>/frontend/static/main.js.
func newDist(t *testing.T) string {
	t.Helper()

	dist := t.TempDir()
	writeFile(t, dist, "frontend/index.html", testIndex)
	writeFile(t, dist, "frontend/static/main.js", "console.log('spa')")
	return dist
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()

	if cfg.DistPath == "" {
		cfg.DistPath = newDist(t)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func do(app http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "http://example.com"+target, r)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	return rr
}
