package webarchive

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DelayPolicy computes the latency applied to a resolved response from the
// latency recorded in the archive and the live request.
type DelayPolicy interface {
	ResponseDelay(recorded time.Duration, req *http.Request) time.Duration
}

// DelayMode is a built-in delay policy.
type DelayMode string

// Built-in delay policies. Any other DelayMode value behaves like DelayReal.
const (
	DelayReal DelayMode = "real"
	DelayNone DelayMode = "none"
)

// ResponseDelay implements DelayPolicy.
func (m DelayMode) ResponseDelay(recorded time.Duration, _ *http.Request) time.Duration {
	if m == DelayNone {
		return 0
	}
	return recorded
}

// DelayFunc adapts a function to DelayPolicy. The request it receives is a
// clone whose body can be read without affecting the live request.
type DelayFunc func(recorded time.Duration, req *http.Request) time.Duration

// ResponseDelay implements DelayPolicy.
func (f DelayFunc) ResponseDelay(recorded time.Duration, req *http.Request) time.Duration {
	return f(recorded, req)
}

// recordedDelay converts an entry's time field (milliseconds) to a duration.
func recordedDelay(ms float64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// formatMillis renders d as a millisecond count, e.g. "42ms" or "12.5ms".
func formatMillis(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	return strconv.FormatFloat(ms, 'f', -1, 64) + "ms"
}

// cloneRequest returns a copy of req whose body is an independent reader
// over the same bytes. The live request's body is replaced with an
// equivalent reader so it can still be consumed afterwards.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}

	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		clone.Body = http.NoBody
		return clone, err
	}

	getBody := func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	req.GetBody = getBody
	clone.Body, _ = getBody()
	clone.GetBody = getBody
	return clone, nil
}

// sleep pauses for d or until ctx is done, whichever happens first.
func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
