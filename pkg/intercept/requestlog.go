package intercept

import (
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/harmock/pkg/util"
)

// RequestLog captures one live request seen by the runtime.
type RequestLog struct {
	Timestamp   time.Time           `json:"timestamp"`
	Method      string              `json:"method"`
	URL         string              `json:"url"`
	QueryString string              `json:"queryString,omitempty"`
	Headers     map[string][]string `json:"headers,omitempty"`
	Body        string              `json:"body,omitempty"`
	BodySize    int                 `json:"bodySize"`
	RouteID     string              `json:"routeID,omitempty"`
	Outcome     Outcome             `json:"outcome"`
	Status      int                 `json:"status"`
	DurationMs  int                 `json:"durationMs"`
}

func newEntry(start time.Time, req *http.Request, body []byte, routeID string, outcome Outcome, status int, d time.Duration) RequestLog {
	return RequestLog{
		Timestamp:   start,
		Method:      req.Method,
		URL:         req.URL.String(),
		QueryString: req.URL.RawQuery,
		Headers:     req.Header.Clone(),
		Body:        util.TruncateBody(string(body), 0),
		BodySize:    len(body),
		RouteID:     routeID,
		Outcome:     outcome,
		Status:      status,
		DurationMs:  int(d.Milliseconds()),
	}
}

// requestLog is a bounded, concurrency-safe request history.
type requestLog struct {
	mu      sync.Mutex
	max     int
	entries []RequestLog
}

func newRequestLog(max int) *requestLog {
	return &requestLog{max: max}
}

func (l *requestLog) add(e RequestLog) {
	if l.max <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.max; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

func (l *requestLog) clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// snapshot returns the entries newest first.
func (l *requestLog) snapshot() []RequestLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]RequestLog, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Requests returns the logged requests, newest first.
func (rt *Runtime) Requests() []RequestLog {
	return rt.reqLog.snapshot()
}

// CountCalls counts logged requests that a route answered for method and
// URL (query string ignored).
func (rt *Runtime) CountCalls(method, rawURL string) int {
	count := 0
	for _, e := range rt.reqLog.snapshot() {
		if e.Outcome != OutcomeHandled || e.Method != method {
			continue
		}
		if stripQuery(e.URL) == stripQuery(rawURL) {
			count++
		}
	}
	return count
}

func stripQuery(u string) string {
	for i := 0; i < len(u); i++ {
		if u[i] == '?' || u[i] == '#' {
			return u[:i]
		}
	}
	return u
}
