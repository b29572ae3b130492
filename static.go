package spa

import (
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// Cache-Control values for static files.
const (
	cacheNoStore   = "no-store, no-cache, must-revalidate"
	cacheImmutable = "public, max-age=31536000, immutable"
)

// staticRelPath maps a request path below the static prefix to a path
// relative to <dist>/frontend/static. Paths that are not already clean
// are rejected rather than cleaned, so a request never reaches a file its
// URL does not name.
func (a *App) staticRelPath(urlPath string) (string, bool) {
	prefix := strings.TrimSuffix(a.cfg.Static.Prefix, "/") + "/"
	rel, ok := strings.CutPrefix(urlPath, prefix)
	if !ok || rel == "" {
		return "", false
	}
	if strings.ContainsAny(rel, "\\\x00") {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		switch seg {
		case "", ".", "..":
			return "", false
		}
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", false
	}
	return rel, true
}

// serveStatic serves a file below the static prefix. Missing files and
// directories are 404s; they never fall through to index.html.
func (a *App) serveStatic(w http.ResponseWriter, r *http.Request) {
	rel, ok := a.staticRelPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := a.staticFS.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	h := w.Header()
	if cc := a.cacheControl(rel); cc != "" {
		h.Set("Cache-Control", cc)
	}
	for k, v := range a.cfg.Static.Headers {
		h.Set(k, v)
	}
	http.ServeContent(w, r, rel, info.ModTime(), f)
}

func (a *App) cacheControl(rel string) string {
	switch a.cfg.Static.CacheControl {
	case CacheControlNone:
		return cacheNoStore
	case CacheControlProduction:
		if isFingerprinted(rel) {
			return cacheImmutable
		}
		return "public, max-age=" + strconv.Itoa(a.cfg.Static.MaxAge) + ", must-revalidate"
	}
	return ""
}

// isFingerprinted reports whether name carries a content hash of at least
// eight hex digits before its extension, as in "app.a1b2c3d4.css".
func isFingerprinted(name string) bool {
	base := path.Base(name)
	ext := path.Ext(base)
	if ext == "" {
		return false
	}
	hash := strings.TrimPrefix(path.Ext(strings.TrimSuffix(base, ext)), ".")
	return len(hash) >= 8 && strings.Trim(hash, "0123456789abcdefABCDEF") == ""
}
