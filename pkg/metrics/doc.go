// Package metrics exposes harmock runtime metrics in the Prometheus format.
//
// A Collector is plugged into the interception runtime as its Observer:
//
//	m := metrics.New()
//	rt := intercept.New(intercept.WithObserver(m))
//	mux.Handle("/__harmock/metrics", m.Handler())
//
// Exported metrics:
//
//   - harmock_requests_total: intercepted requests (labels: outcome, method, status)
//   - harmock_request_duration_seconds: request latency (labels: outcome)
//   - harmock_routes: registered routes
//   - harmock_reloads_total: archive reloads (labels: result)
//   - harmock_uptime_seconds: time since the collector was created
//
// The outcome label is one of handled, unhandled or bypassed. Requests
// without a status, such as failed round trips, use status "none".
package metrics
