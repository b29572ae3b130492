package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/spa/pkg/router"
)

type otelConfig struct {
	tracerName string
	provider   trace.TracerProvider
	filter     func(*router.Navigation) bool
	extract    func(*router.Navigation) []attribute.KeyValue
}

// OTelOption configures OpenTelemetry and Tracing.
type OTelOption func(*otelConfig)

// WithTracerName names the tracer. Default "spa".
func WithTracerName(name string) OTelOption {
	return func(c *otelConfig) { c.tracerName = name }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) { c.provider = tp }
}

// WithNavigationFilter traces only navigations for which keep returns true.
func WithNavigationFilter(keep func(*router.Navigation) bool) OTelOption {
	return func(c *otelConfig) { c.filter = keep }
}

// WithAttributeExtractor adds attributes to each navigation span once the
// dispatch has finished.
func WithAttributeExtractor(fn func(*router.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *otelConfig) { c.extract = fn }
}

func newTracer(opts []OTelOption) (trace.Tracer, otelConfig) {
	cfg := otelConfig{tracerName: "spa"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetTracerProvider()
	}
	return cfg.provider.Tracer(cfg.tracerName), cfg
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func resultAttributes(res *router.Result) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("spa.pattern", res.Pattern),
		attribute.Bool("spa.matched", res.Matched),
		attribute.Bool("spa.redirected", res.Redirected),
		attribute.Bool("spa.component_created", res.Created),
	}
}

// OpenTelemetry returns router middleware that wraps each dispatch in a
// span. nav.Context is replaced by the span's context, which is the
// context the component's Refresh receives.
func OpenTelemetry(opts ...OTelOption) router.Middleware {
	tracer, cfg := newTracer(opts)

	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) (err error) {
		if cfg.filter != nil && !cfg.filter(nav) {
			return next()
		}

		var span trace.Span
		nav.Context, span = tracer.Start(nav.Context, "spa.navigate",
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attribute.String("spa.path", nav.Pathname)),
		)
		defer func() { endSpan(span, err) }()

		err = next()
		if nav.Result != nil {
			span.SetName("spa.navigate " + patternLabel(nav.Result))
			span.SetAttributes(resultAttributes(nav.Result)...)
		}
		if cfg.extract != nil {
			span.SetAttributes(cfg.extract(nav)...)
		}
		return err
	})
}

// Tracing returns HTTP middleware that starts a server span per request,
// renamed after the chi route pattern once routing is done. 5xx responses
// mark the span as failed.
func Tracing(opts ...OTelOption) func(http.Handler) http.Handler {
	tracer, _ := newTracer(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					span.SetName(r.Method + " " + p)
					span.SetAttributes(attribute.String("http.route", p))
				}
			}
			status := ww.Status()
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
	}
}
