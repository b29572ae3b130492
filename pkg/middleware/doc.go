// Package middleware provides observability middleware for SPA routers and
// the HTTP server.
//
// # OpenTelemetry
//
// OpenTelemetry traces every navigation; Tracing traces HTTP requests.
//
//	r, _ := router.New(router.Config{
//	    Middleware: []router.Middleware{
//	        middleware.OpenTelemetry(middleware.WithTracerName("my-app")),
//	    },
//	})
//
// The navigation span is placed in the context handed to the component's
// Refresh, so data fetching started there inherits the trace.
//
// # Prometheus Metrics
//
// Prometheus records dispatch counts, durations and failures labeled by
// route pattern; HTTPMetrics records requests labeled by chi route
// pattern. NewMetrics returns the collector set for a registerer, created on
// first use and shared by every later caller with the same registerer:
//   - spa_navigations_total
//   - spa_navigation_duration_seconds
//   - spa_http_requests_total
//   - spa_error_reports_total
//
// Expose them with promhttp:
//
//	mux.Handle("/metrics", promhttp.Handler())
package middleware
