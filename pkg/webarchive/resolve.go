package webarchive

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/harmock/pkg/har"
)

// Response is a reconstructed recorded response.
type Response struct {
	Status int
	Header http.Header
	// Cookies holds the structured form of the captured Set-Cookie headers.
	// They are not repeated in Header.
	Cookies []*http.Cookie
	Body    []byte
	// Delay is the latency that was applied before the response was returned.
	Delay time.Duration
}

// resolution is everything needed to answer a live request for one entry.
// It is a value copied into the route at build time and never mutated.
type resolution struct {
	entry    har.Entry
	host     string
	query    string
	strict   bool
	cors     func(string) string
	delay    DelayPolicy
	log      *slog.Logger
	routeURL string
}

func (res resolution) resolve(req *http.Request) (*Response, bool) {
	if res.strict && req.URL.RawQuery != res.query {
		res.log.Warn("Query string did not match",
			"url", res.routeURL, "expected", res.query, "actual", req.URL.RawQuery)
		return nil, false
	}

	header, cookies := res.buildHeaders()
	resp := &Response{
		Status:  res.entry.Response.Status,
		Header:  header,
		Cookies: cookies,
		Body:    res.decodeBody(),
	}

	d := res.responseDelay(req)
	if d > 0 {
		res.log.Warn(fmt.Sprintf("Response will be delayed with %s", formatMillis(d)))
		sleep(req.Context(), d)
		resp.Delay = d
	}
	return resp, true
}

// decodeBody returns the captured body as raw bytes.
func (res resolution) decodeBody() []byte {
	content := res.entry.Response.Content
	if content.Encoding != har.EncodingBase64 {
		return []byte(content.Text)
	}
	decoded, err := base64.StdEncoding.DecodeString(content.Text)
	if err != nil {
		res.log.Warn("content is not valid base64, serving it as text", "url", res.routeURL, "error", err)
		return []byte(content.Text)
	}
	return decoded
}

// buildHeaders rebuilds the response headers in capture order.
// Content-Encoding is dropped because the body is served decoded.
func (res resolution) buildHeaders() (http.Header, []*http.Cookie) {
	header := make(http.Header, len(res.entry.Response.Headers))
	var cookies []*http.Cookie

	for _, h := range res.entry.Response.Headers {
		value := h.Value
		switch strings.ToLower(h.Name) {
		case "content-encoding":
			continue
		case "access-control-allow-origin":
			res.log.Info(fmt.Sprintf("CORS header detected, requesting new origin for %s", value))
			if res.cors != nil {
				value = res.cors(value)
			}
		case "set-cookie":
			if cookie, err := http.ParseSetCookie(value); err == nil {
				if cookie.Domain == "" {
					cookie.Domain = res.host
				}
				cookies = append(cookies, cookie)
				continue
			}
			res.log.Debug("keeping unparseable Set-Cookie header verbatim", "value", value)
		}
		header.Add(h.Name, value)
	}
	return header, cookies
}

// responseDelay asks the configured policy for the delay to apply.
func (res resolution) responseDelay(req *http.Request) time.Duration {
	recorded := recordedDelay(res.entry.Time)

	switch policy := res.delay.(type) {
	case nil:
		return recorded
	case DelayMode:
		return policy.ResponseDelay(recorded, req)
	case DelayFunc:
		if policy == nil {
			return recorded
		}
	}

	clone, err := cloneRequest(req)
	if err != nil {
		res.log.Debug("failed to copy request body for delay policy", "error", err)
	}
	return res.delay.ResponseDelay(recorded, clone)
}
