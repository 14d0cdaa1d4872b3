package intercept

import (
	"net/http"
	"time"
)

// RoundTrip implements http.RoundTripper.
func (rt *Runtime) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	route, resp, err := rt.dispatch(req)
	if err != nil {
		rt.record(start, req, body, route, OutcomeCanceled, 0)
		return nil, err
	}
	if route == nil {
		return rt.roundTripUnhandled(start, req, body)
	}

	httpResp, skipped := toHTTPResponse(req, resp)
	if len(skipped) > 0 {
		rt.log.Debug("skipped invalid response headers", "route", route.ID, "headers", skipped)
	}
	rt.record(start, req, body, route, OutcomeHandled, httpResp.StatusCode)
	return httpResp, nil
}

func (rt *Runtime) roundTripUnhandled(start time.Time, req *http.Request, body []byte) (*http.Response, error) {
	switch rt.unhandled {
	case UnhandledBypass:
		transport := rt.transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		resp, err := transport.RoundTrip(req)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		rt.record(start, req, body, nil, OutcomeBypassed, status)
		return resp, err
	case UnhandledNotFound:
		rt.record(start, req, body, nil, OutcomeUnhandled, http.StatusNotFound)
		return notFoundResponse(req), nil
	default:
		rt.log.Warn("unhandled request", "method", req.Method, "url", req.URL.String())
		rt.record(start, req, body, nil, OutcomeUnhandled, 0)
		return nil, newNoMatchError(req)
	}
}
