package intercept

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/getmockd/harmock/pkg/httputil"
)

// noMatchBody is the JSON error body sent for unhandled requests.
type noMatchBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Method  string `json:"method"`
	URL     string `json:"url"`
}

func newNoMatchBody(req *http.Request) noMatchBody {
	return noMatchBody{
		Error:   "no_match",
		Message: "No recorded response matched the request",
		Method:  req.Method,
		URL:     req.URL.String(),
	}
}

// ServeHTTP implements http.Handler. Origin-form requests are matched
// against the Host they were sent to; absolute-form (proxy) requests against
// their full URL.
func (rt *Runtime) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := r.Clone(r.Context())
	req.URL = absoluteURL(r)

	body, err := bufferBody(req)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			rt.log.Warn("request body too large", "url", req.URL.String(), "limit", MaxRequestBodySize)
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body exceeds maximum allowed size")
			rt.record(start, req, nil, nil, OutcomeUnhandled, http.StatusRequestEntityTooLarge)
			return
		}
		rt.log.Warn("failed to read request body", "url", req.URL.String(), "error", err)
	}

	route, resp, err := rt.dispatch(req)
	if err != nil {
		// The client is gone; there is nobody to answer.
		rt.log.Debug("request canceled during response delay", "route", route.ID, "error", err)
		rt.record(start, req, body, route, OutcomeCanceled, 0)
		return
	}
	if route == nil {
		rt.serveUnhandled(w, start, req, body)
		return
	}

	skipped := writeResponse(w, resp)
	if len(skipped) > 0 {
		rt.log.Debug("skipped invalid response headers", "route", route.ID, "headers", skipped)
	}
	rt.record(start, req, body, route, OutcomeHandled, statusCode(resp))
}

func (rt *Runtime) serveUnhandled(w http.ResponseWriter, start time.Time, req *http.Request, body []byte) {
	if rt.unhandled == UnhandledBypass && req.URL.Host != "" {
		status := rt.proxy(w, req)
		rt.record(start, req, body, nil, OutcomeBypassed, status)
		return
	}

	if rt.unhandled == UnhandledError {
		rt.log.Warn("unhandled request", "method", req.Method, "url", req.URL.String())
	}
	httputil.WriteJSON(w, http.StatusNotFound, newNoMatchBody(req))
	rt.record(start, req, body, nil, OutcomeUnhandled, http.StatusNotFound)
}

// proxy forwards req to the fallback transport and copies the answer back.
func (rt *Runtime) proxy(w http.ResponseWriter, req *http.Request) int {
	transport := rt.transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	out := req.Clone(req.Context())
	out.RequestURI = ""
	resp, err := transport.RoundTrip(out)
	if err != nil {
		rt.log.Warn("bypass request failed", "url", req.URL.String(), "error", err)
		httputil.WriteError(w, http.StatusBadGateway, "bypass_failed", err.Error())
		return http.StatusBadGateway
	}
	defer func() { _ = resp.Body.Close() }()

	for name, values := range resp.Header {
		w.Header()[name] = values
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
	return resp.StatusCode
}

// absoluteURL rebuilds the full URL a server-side request was sent to.
func absoluteURL(r *http.Request) *url.URL {
	u := *r.URL
	if u.IsAbs() && u.Host != "" {
		return &u
	}
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = r.Host
	return &u
}

// notFoundResponse is the synthetic 404 for UnhandledNotFound round trips.
func notFoundResponse(req *http.Request) *http.Response {
	data, _ := json.Marshal(newNoMatchBody(req))
	return &http.Response{
		Status:        "404 Not Found",
		StatusCode:    http.StatusNotFound,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		Request:       req,
	}
}
