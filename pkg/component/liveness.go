package component

import (
	"context"
	"sync"
)

// Liveness tracks a component's outstanding refresh so that results of
// superseded or cancelled work are dropped. The zero value is ready to use.
type Liveness struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Begin starts a new unit of work derived from parent and cancels the
// previous one. The returned alive func reports whether results of this
// unit may still be applied.
func (l *Liveness) Begin(parent context.Context) (ctx context.Context, alive func() bool) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.mu.Unlock()

	return ctx, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.gen == gen && ctx.Err() == nil
	}
}

// Cancel invalidates any outstanding unit of work.
func (l *Liveness) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}
