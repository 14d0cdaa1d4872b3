package harmocktest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getmockd/harmock/pkg/har"
	"github.com/getmockd/harmock/pkg/intercept"
	"github.com/getmockd/harmock/pkg/webarchive"
)

// Server is a test helper that answers requests from archive entries.
// It is cleaned up automatically when the test completes.
type Server struct {
	t    testing.TB
	opts webarchive.Options
	rt   *intercept.Runtime

	mu      sync.Mutex // guards opts.DomainMappings and httpSrv
	httpSrv *httptest.Server
}

// New creates an empty Server. Route diagnostics are silenced and recorded
// delays are not replayed unless opts says otherwise.
func New(t testing.TB, opts webarchive.Options) *Server {
	t.Helper()
	if opts.ResponseDelay == nil {
		opts.ResponseDelay = webarchive.DelayNone
	}
	if opts.Logger == nil {
		opts.Quiet = true
	}
	s := &Server{
		t:    t,
		opts: opts,
		rt:   intercept.New(),
	}
	t.Cleanup(s.Stop)
	return s
}

// Load creates a Server answering from the archive at path.
func Load(t testing.TB, path string, opts webarchive.Options) *Server {
	t.Helper()
	s := New(t, opts)
	s.LoadArchive(path)
	return s
}

// LoadArchive registers the routes of the archive at path ahead of the
// existing ones.
func (s *Server) LoadArchive(path string) {
	s.t.Helper()
	doc, err := har.LoadFile(path)
	if err != nil {
		s.t.Fatalf("harmocktest: load %s: %v", path, err)
	}
	if err := webarchive.Install(s.rt, doc, s.options()); err != nil {
		s.t.Fatalf("harmocktest: install %s: %v", path, err)
	}
}

// Entry starts building a synthetic archive entry for method and rawURL.
// Call Reply on the result to register it.
//
//	srv.Entry("GET", "https://api.example.com/users/1").
//	    WithStatus(200).
//	    WithJSON(map[string]string{"id": "1"}).
//	    Reply()
func (s *Server) Entry(method, rawURL string) *EntryBuilder {
	b := NewEntry(method, rawURL)
	b.server = s
	return b
}

// add registers one entry as a route ahead of the existing ones.
func (s *Server) add(entry har.Entry) {
	s.t.Helper()
	route, err := webarchive.NewRoute(entry, s.options())
	if err != nil {
		s.t.Fatalf("harmocktest: %v", err)
	}
	if route == nil {
		s.t.Fatalf("harmocktest: unsupported method %q", entry.Request.Method)
	}
	s.rt.Use(route)
}

// Client returns an http.Client whose requests are answered by the server
// without touching the network, whatever host they are addressed to.
func (s *Server) Client() *http.Client {
	return s.rt.Client()
}

// Start serves the routes over a local listener and returns its base URL.
// Requests only reach routes recorded for the listener's own origin, see
// MapOrigin.
func (s *Server) Start() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpSrv == nil {
		s.httpSrv = httptest.NewServer(s.rt)
	}
	return s.httpSrv.URL
}

// MapOrigin starts the server and rewrites routes registered afterwards
// from origin to its URL, so they answer requests sent over the network.
func (s *Server) MapOrigin(origin string) {
	base := s.Start()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.DomainMappings = append(s.opts.DomainMappings, webarchive.DomainMapping{
		From: origin,
		To:   base,
	})
}

// options returns a snapshot of the route options.
func (s *Server) options() webarchive.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts := s.opts
	opts.DomainMappings = append(webarchive.DomainMappings(nil), s.opts.DomainMappings...)
	return opts
}

// URL returns the base URL of the started server, or "" before Start.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpSrv == nil {
		return ""
	}
	return s.httpSrv.URL
}

// Stop shuts the listener down. It is safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpSrv != nil {
		s.httpSrv.Close()
		s.httpSrv = nil
	}
}

// Reset removes all routes and clears the request log.
func (s *Server) Reset() {
	s.rt.Reset()
}

// Runtime returns the underlying interception runtime for advanced use cases.
func (s *Server) Runtime() *intercept.Runtime {
	return s.rt
}

// Requests returns all logged requests, newest first.
func (s *Server) Requests() []RequestLog {
	logs := s.rt.Requests()
	out := make([]RequestLog, len(logs))
	for i, l := range logs {
		out[i] = newRequestLog(l)
	}
	return out
}

// AssertCalled asserts that an endpoint was answered at least once.
func (s *Server) AssertCalled(t testing.TB, method, rawURL string) {
	t.Helper()
	if s.rt.CountCalls(method, rawURL) == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, rawURL)
	}
}

// AssertCalledTimes asserts that an endpoint was answered exactly n times.
func (s *Server) AssertCalledTimes(t testing.TB, method, rawURL string, times int) {
	t.Helper()
	if count := s.rt.CountCalls(method, rawURL); count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, rawURL, times, count)
	}
}

// AssertNotCalled asserts that an endpoint was never answered.
func (s *Server) AssertNotCalled(t testing.TB, method, rawURL string) {
	t.Helper()
	if count := s.rt.CountCalls(method, rawURL); count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, rawURL, count)
	}
}

// AssertNoUnhandled asserts that every logged request was answered by a route.
func (s *Server) AssertNoUnhandled(t testing.TB) {
	t.Helper()
	for _, l := range s.rt.Requests() {
		if l.Outcome != intercept.OutcomeHandled {
			t.Errorf("%s request: %s %s", l.Outcome, l.Method, l.URL)
		}
	}
}
