package fatal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/spa/pkg/router"
)

// DefaultErrorPage is where the reporter sends the user after a fatal error.
const DefaultErrorPage = "/error"

// sendFailed is logged when the backend could not be reached.
const sendFailed = "ERROR: Failed to log fatal error to backend."

// Sender transmits a report to the backend.
type Sender interface {
	Send(ctx context.Context, r Report) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, r Report) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, r Report) error { return f(ctx, r) }

// Navigator moves the user off the broken page.
type Navigator interface {
	Replace(path string)
}

// Config configures a Reporter.
type Config struct {
	// Sender transmits reports. If nil, reports are only logged.
	Sender Sender

	// Navigator is sent to ErrorPage after each report. If nil, the
	// reporter does not navigate.
	Navigator Navigator

	// ErrorPage defaults to DefaultErrorPage.
	ErrorPage string

	// URL returns the location the error happened at.
	URL func() string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Clock defaults to time.Now.
	Clock func() time.Time

	// Registerer, if set, receives the spa_fatal_reports_total counter.
	Registerer prometheus.Registerer
}

// Reporter is the process-wide sink for errors nobody handled: it logs
// them, forwards them to the backend and then leaves the page. It
// implements router.FatalReporter.
type Reporter struct {
	cfg     Config
	logger  *slog.Logger
	closed  atomic.Bool
	pending sync.WaitGroup
	total   *prometheus.CounterVec
}

var _ router.FatalReporter = (*Reporter)(nil)

// New creates a Reporter.
func New(cfg Config) *Reporter {
	if cfg.ErrorPage == "" {
		cfg.ErrorPage = DefaultErrorPage
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	r := &Reporter{cfg: cfg, logger: cfg.Logger}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if cfg.Registerer != nil {
		r.total = promauto.With(cfg.Registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "spa_fatal_reports_total",
				Help: "Fatal errors reported, by kind.",
			},
			[]string{"type"},
		)
	}
	return r
}

// Report fills in URL and Timestamp when missing, transmits rep and then
// navigates to the error page. Transmission failures are logged and
// otherwise ignored. After Close, Report only logs.
func (r *Reporter) Report(ctx context.Context, rep Report) {
	if rep.URL == "" && r.cfg.URL != nil {
		rep.URL = r.cfg.URL()
	}
	if rep.Timestamp.IsZero() {
		rep.Timestamp = r.cfg.Clock().UTC()
	}

	r.logger.Error("fatal error",
		"type", rep.Type,
		"message", rep.Message,
		"source", rep.Source,
		"line", rep.Line,
		"url", rep.URL,
	)
	if r.total != nil {
		r.total.WithLabelValues(string(rep.Type)).Inc()
	}

	if r.closed.Load() {
		return
	}
	r.pending.Add(1)
	defer r.pending.Done()

	if r.cfg.Sender != nil {
		if err := r.send(ctx, rep); err != nil {
			r.logger.Error(sendFailed, "error", err)
		}
	}
	if r.cfg.Navigator != nil {
		r.cfg.Navigator.Replace(r.cfg.ErrorPage)
	}
}

// send never panics.
func (r *Reporter) send(ctx context.Context, rep Report) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("sender panicked: %v", v)
		}
	}()
	return r.cfg.Sender.Send(ctx, rep)
}

// Fatal reports err. Lifecycle panics keep the stack captured when they
// were recovered; errors from background refreshes are reported as
// unhandled rejections.
func (r *Reporter) Fatal(ctx context.Context, err error) {
	if err == nil {
		return
	}
	r.Report(ctx, FromError(err))
}

// Recover reports a panic in progress and swallows it. Use it directly
// in a defer statement:
//
//	defer rep.Recover(ctx)
func (r *Reporter) Recover(ctx context.Context) {
	v := recover()
	if v == nil {
		return
	}
	stack := debug.Stack()
	file, line := panicSite(stack)
	r.Report(ctx, Report{
		Type:    KindPanic,
		Message: fmt.Sprint(v),
		Source:  file,
		Line:    line,
		Stack:   string(stack),
	})
}

// Close stops transmission and waits for in-flight reports.
func (r *Reporter) Close() error {
	r.closed.Store(true)
	r.pending.Wait()
	return nil
}

// FromError builds a report for err.
func FromError(err error) Report {
	rep := Report{Type: KindError, Message: err.Error()}

	var le *router.LifecycleError
	if errors.As(err, &le) {
		if len(le.Stack) > 0 {
			rep.Type = KindPanic
			rep.Stack = string(le.Stack)
			rep.Source, rep.Line = panicSite(le.Stack)
		} else if le.Phase == router.PhaseRefresh {
			rep.Type = KindRejection
		}
	}
	return rep
}
