package spa

import (
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestStatic(t *testing.T) {
	dist := newDist(t)
	writeFile(t, dist, "frontend/secret.txt", "secret")
	writeFile(t, dist, "frontend/static/js/app.js", "app()")
	app := newTestApp(t, Config{DistPath: dist})

	tests := []struct {
		method, path string
		code         int
		body         string
	}{
		{http.MethodGet, "/static/main.js", http.StatusOK, "console.log('spa')"},
		{http.MethodHead, "/static/main.js", http.StatusOK, ""},
		{http.MethodGet, "/static/js/app.js", http.StatusOK, "app()"},
		{http.MethodGet, "/static/missing.js", http.StatusNotFound, ""},
		{http.MethodGet, "/static/js", http.StatusNotFound, ""},
		{http.MethodGet, "/static/../secret.txt", http.StatusNotFound, ""},
		{http.MethodGet, "/static/%2e%2e/secret.txt", http.StatusNotFound, ""},
		{http.MethodGet, "/static/..//secret.txt", http.StatusNotFound, ""},
		{http.MethodGet, "/static/../index.html", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rr := do(app, tt.method, tt.path, "")
		if rr.Code != tt.code {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rr.Code, tt.code)
			continue
		}
		if tt.code == http.StatusOK && rr.Body.String() != tt.body {
			t.Errorf("%s %s body = %q, want %q", tt.method, tt.path, rr.Body.String(), tt.body)
		}
		if strings.Contains(rr.Body.String(), "secret") {
			t.Errorf("%s %s leaked a file outside the static directory", tt.method, tt.path)
		}
	}
}

func TestStatic_CustomPrefix(t *testing.T) {
	app := newTestApp(t, Config{Static: StaticConfig{Prefix: "/assets/"}})

	if rr := do(app, http.MethodGet, "/assets/main.js", ""); rr.Code != http.StatusOK {
		t.Fatalf("GET /assets/main.js status = %d", rr.Code)
	}
	// Outside the prefix every GET is the index page.
	rr := do(app, http.MethodGet, "/static/main.js", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `<div id="app">`) {
		t.Fatalf("GET /static/main.js = %d %q, want index", rr.Code, rr.Body.String())
	}
}

func TestStatic_AbsolutePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("absolute paths differ on windows")
	}
	dist := newDist(t)
	abs := writeFile(t, dist, "abs-secret.txt", "abs-secret")
	app := newTestApp(t, Config{DistPath: dist})

	if rr := do(app, http.MethodGet, "/static/"+filepath.ToSlash(abs), ""); rr.Code != http.StatusNotFound {
		t.Fatalf("GET /static/<abs> status = %d, want 404", rr.Code)
	}
}

func TestStaticRelPath(t *testing.T) {
	app := newTestApp(t, Config{})

	for _, p := range []string{
		"/static/\x00",
		"/static/foo\\bar",
		"/static/./secret",
		"/static/../secret",
		"/static/a/../b",
		"/static//etc/passwd",
		"/static/a//b",
		"/static/",
		"/static",
		"/staticfile.js",
		"/other/main.js",
	} {
		if rel, ok := app.staticRelPath(p); ok {
			t.Errorf("staticRelPath(%q) = %q, want rejection", p, rel)
		}
	}

	if rel, ok := app.staticRelPath("/static/js/main.js"); !ok || rel != "js/main.js" {
		t.Errorf("staticRelPath = %q, %v", rel, ok)
	}
}

func TestStatic_CacheControl(t *testing.T) {
	dist := newDist(t)
	writeFile(t, dist, "frontend/static/app.a1b2c3d4.css", "body{}")

	app := newTestApp(t, Config{DistPath: dist})
	if got := do(app, http.MethodGet, "/static/main.js", "").Header().Get("Cache-Control"); got != cacheNoStore {
		t.Errorf("default Cache-Control = %q", got)
	}

	app = newTestApp(t, Config{DistPath: dist, Static: StaticConfig{CacheControl: CacheControlProduction}})
	if got := do(app, http.MethodGet, "/static/app.a1b2c3d4.css", "").Header().Get("Cache-Control"); got != cacheImmutable {
		t.Errorf("fingerprinted Cache-Control = %q", got)
	}
	if got := do(app, http.MethodGet, "/static/main.js", "").Header().Get("Cache-Control"); got != "public, max-age=3600, must-revalidate" {
		t.Errorf("plain Cache-Control = %q", got)
	}

	app = newTestApp(t, Config{DistPath: dist, Static: StaticConfig{CacheControl: CacheControlProduction, MaxAge: 60}})
	if got := do(app, http.MethodGet, "/static/main.js", "").Header().Get("Cache-Control"); got != "public, max-age=60, must-revalidate" {
		t.Errorf("MaxAge Cache-Control = %q", got)
	}
}

func TestStatic_Headers(t *testing.T) {
	app := newTestApp(t, Config{Static: StaticConfig{Headers: map[string]string{"X-Static": "true"}}})

	rr := do(app, http.MethodGet, "/static/main.js", "")
	if got := rr.Header().Get("X-Static"); rr.Code != http.StatusOK || got != "true" {
		t.Fatalf("status = %d, X-Static = %q", rr.Code, got)
	}
}

func TestIsFingerprinted(t *testing.T) {
	for name, want := range map[string]bool{
		"app.a1b2c3d4.css":        true,
		"js/vendor.A1B2C3D4E5.js": true,
		"app.12345678.css":        true,
		"app.1234567.css":         false,
		"app.zzzzzzzz.css":        false,
		"a1b2c3d4.css":            false,
		"app.css":                 false,
		"app":                     false,
	} {
		if got := isFingerprinted(name); got != want {
			t.Errorf("isFingerprinted(%q) = %v, want %v", name, got, want)
		}
	}
}
