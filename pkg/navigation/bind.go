package navigation

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/vango-dev/spa/pkg/router"
)

// Dispatcher is the part of a router that navigation drives.
type Dispatcher interface {
	Dispatch(ctx context.Context, pathname string) (*router.Result, error)
}

// Bind connects h to d: the current location is dispatched immediately
// (the initial page load) and every later history change is dispatched
// as it happens. The returned function disconnects them.
//
// Dispatch errors are not returned here; the router has already sent
// them to its fatal reporter.
func Bind(ctx context.Context, h *History, d Dispatcher, logger *slog.Logger) (unbind func()) {
	if logger == nil {
		logger = slog.Default()
	}
	dispatch := func(location string) {
		path := Pathname(location)
		if _, err := d.Dispatch(ctx, path); err != nil {
			logger.Debug("navigation: dispatch failed", "path", path, "error", err)
		}
	}

	unbind = h.OnChange(dispatch)
	dispatch(h.Location())
	return unbind
}

// Click handles an anchor click: intercepted links are pushed onto h,
// which dispatches them through any bound router. It reports whether the
// click was handled.
func Click(h *History, base, href string, dataLink bool) bool {
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	location, ok := Intercept(u, href, dataLink)
	if !ok {
		return false
	}
	h.Push(location)
	return true
}
