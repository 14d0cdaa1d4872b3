package intercept

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getmockd/harmock/pkg/logging"
	"github.com/getmockd/harmock/pkg/webarchive"
)

// UnhandledMode decides what happens to a request no route answers.
type UnhandledMode string

// Unhandled request modes.
const (
	// UnhandledError fails the round trip with *NoMatchError. The handler
	// answers 404.
	UnhandledError UnhandledMode = "error"
	// UnhandledBypass forwards the request to the fallback transport.
	UnhandledBypass UnhandledMode = "bypass"
	// UnhandledNotFound answers with a synthetic 404.
	UnhandledNotFound UnhandledMode = "notfound"
)

// ParseUnhandledMode parses a mode name, defaulting to UnhandledError.
func ParseUnhandledMode(s string) UnhandledMode {
	switch UnhandledMode(s) {
	case UnhandledBypass, UnhandledNotFound:
		return UnhandledMode(s)
	default:
		return UnhandledError
	}
}

// Outcome labels how a live request was dealt with.
type Outcome string

// Request outcomes.
const (
	OutcomeHandled   Outcome = "handled"
	OutcomeUnhandled Outcome = "unhandled"
	OutcomeBypassed  Outcome = "bypassed"
	// OutcomeCanceled marks a request whose caller gave up while the
	// matching route was replaying its delay. Nothing was answered.
	OutcomeCanceled Outcome = "canceled"
)

// Observer receives runtime events, typically to feed metrics.
type Observer interface {
	ObserveRequest(outcome Outcome, method string, status int, duration time.Duration)
	ObserveRoutes(count int)
}

// DefaultMaxLogEntries bounds the request log.
const DefaultMaxLogEntries = 1000

// handler pairs a route with its consume-once state.
type handler struct {
	route *webarchive.Route
	used  atomic.Bool
}

// Runtime is an in-process HTTP interception runtime. Routes are registered
// with Use and consulted newest batch first; within a batch, earlier routes
// win. A Runtime is both an http.RoundTripper and an http.Handler.
type Runtime struct {
	mu       sync.RWMutex
	handlers []*handler

	unhandled UnhandledMode
	transport http.RoundTripper
	log       *slog.Logger
	observer  Observer

	reqLog *requestLog
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithUnhandled sets the unhandled request mode.
func WithUnhandled(mode UnhandledMode) Option {
	return func(rt *Runtime) { rt.unhandled = mode }
}

// WithTransport sets the transport used for bypassed requests.
func WithTransport(t http.RoundTripper) Option {
	return func(rt *Runtime) { rt.transport = t }
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(rt *Runtime) { rt.log = logging.OrDefault(log) }
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) { rt.observer = o }
}

// WithMaxLogEntries bounds the request log. Zero disables it.
func WithMaxLogEntries(n int) Option {
	return func(rt *Runtime) { rt.reqLog = newRequestLog(n) }
}

// New creates an empty Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		unhandled: UnhandledError,
		log:       logging.Nop(),
		reqLog:    newRequestLog(DefaultMaxLogEntries),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Use registers routes ahead of everything registered before.
func (rt *Runtime) Use(routes ...*webarchive.Route) {
	if len(routes) == 0 {
		return
	}
	batch := make([]*handler, 0, len(routes))
	for _, r := range routes {
		if r != nil {
			batch = append(batch, &handler{route: r})
		}
	}

	rt.mu.Lock()
	// Build a fresh slice so in-flight dispatches keep their snapshot.
	next := make([]*handler, 0, len(batch)+len(rt.handlers))
	next = append(next, batch...)
	next = append(next, rt.handlers...)
	rt.handlers = next
	count := len(next)
	rt.mu.Unlock()

	rt.log.Debug("routes registered", "added", len(batch), "total", count)
	if rt.observer != nil {
		rt.observer.ObserveRoutes(count)
	}
}

// Reset removes every route and clears the request log.
func (rt *Runtime) Reset() {
	rt.mu.Lock()
	rt.handlers = nil
	rt.mu.Unlock()
	rt.reqLog.clear()
	if rt.observer != nil {
		rt.observer.ObserveRoutes(0)
	}
}

// Replace atomically swaps all routes for the given ones.
func (rt *Runtime) Replace(routes ...*webarchive.Route) {
	next := make([]*handler, 0, len(routes))
	for _, r := range routes {
		if r != nil {
			next = append(next, &handler{route: r})
		}
	}
	rt.mu.Lock()
	rt.handlers = next
	rt.mu.Unlock()
	if rt.observer != nil {
		rt.observer.ObserveRoutes(len(next))
	}
}

// Routes returns the registered routes in dispatch order. Consumed
// once-routes are omitted.
func (rt *Runtime) Routes() []*webarchive.Route {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	routes := make([]*webarchive.Route, 0, len(rt.handlers))
	for _, h := range rt.handlers {
		if h.route.Once && h.used.Load() {
			continue
		}
		routes = append(routes, h.route)
	}
	return routes
}

// Client returns an *http.Client that sends every request through rt.
func (rt *Runtime) Client() *http.Client {
	return &http.Client{Transport: rt}
}

// dispatch finds the first route that answers req. When the request context
// ends while a route is resolving, that route is returned with the context
// error and a once-route claim is released.
func (rt *Runtime) dispatch(req *http.Request) (*webarchive.Route, *webarchive.Response, error) {
	rt.mu.RLock()
	handlers := rt.handlers
	rt.mu.RUnlock()

	for _, h := range handlers {
		if !h.route.Matches(req) {
			continue
		}
		// Claim before resolving so concurrent requests cannot both
		// consume a once-route.
		if h.route.Once && !h.used.CompareAndSwap(false, true) {
			continue
		}
		resp, ok := h.route.Resolve(req)
		if err := req.Context().Err(); err != nil {
			if h.route.Once {
				h.used.Store(false)
			}
			return h.route, nil, err
		}
		if !ok {
			if h.route.Once {
				h.used.Store(false)
			}
			continue
		}
		return h.route, resp, nil
	}
	return nil, nil, nil
}

// record logs the request and notifies the observer.
func (rt *Runtime) record(start time.Time, req *http.Request, body []byte, route *webarchive.Route, outcome Outcome, status int) {
	duration := time.Since(start)
	routeID := ""
	if route != nil {
		routeID = route.ID
	}
	rt.reqLog.add(newEntry(start, req, body, routeID, outcome, status, duration))
	if rt.observer != nil {
		rt.observer.ObserveRequest(outcome, req.Method, status, duration)
	}
}
