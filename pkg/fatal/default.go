package fatal

import (
	"context"
	"sync"
)

var (
	defaultMu sync.RWMutex
	installed *Reporter
)

// Install makes r the process-wide reporter and returns a function that
// restores the previous one.
func Install(r *Reporter) (restore func()) {
	defaultMu.Lock()
	prev := installed
	installed = r
	defaultMu.Unlock()
	return func() {
		defaultMu.Lock()
		installed = prev
		defaultMu.Unlock()
	}
}

// Uninstall removes the process-wide reporter.
func Uninstall() {
	defaultMu.Lock()
	installed = nil
	defaultMu.Unlock()
}

// Default returns the installed reporter, or nil.
func Default() *Reporter {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return installed
}

// Go runs fn in a new goroutine. A panic in fn is handed to the installed
// reporter; with no reporter installed it crashes the process as usual.
func Go(ctx context.Context, fn func()) {
	go func() {
		if r := Default(); r != nil {
			defer r.Recover(ctx)
		}
		fn()
	}()
}
