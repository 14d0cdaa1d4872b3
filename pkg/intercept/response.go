package intercept

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/getmockd/harmock/pkg/webarchive"
)

// MaxRequestBodySize is the maximum request body buffered for matching (10MB).
const MaxRequestBodySize = 10 << 20

// errBodyTooLarge is returned by bufferBody for oversized request bodies.
var errBodyTooLarge = errors.New("request body too large")

// bufferBody reads the request body into memory and replaces it with a
// re-readable copy.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(req.Body, MaxRequestBodySize+1))
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	if len(body) > MaxRequestBodySize {
		return nil, errBodyTooLarge
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return body, nil
}

// statusCode returns a status net/http accepts. Archives record 0 for
// requests that never received a response.
func statusCode(resp *webarchive.Response) int {
	if resp.Status < 100 || resp.Status > 999 {
		return http.StatusOK
	}
	return resp.Status
}

// wireHeader builds the headers actually sent: invalid field names such as
// HTTP/2 pseudo headers are skipped, cookies are serialized, and
// Content-Length reflects the decoded body.
func wireHeader(resp *webarchive.Response) (http.Header, []string) {
	out := make(http.Header, len(resp.Header)+1)
	var skipped []string
	for name, values := range resp.Header {
		if !httpguts.ValidHeaderFieldName(name) {
			skipped = append(skipped, name)
			continue
		}
		for _, v := range values {
			if !httpguts.ValidHeaderFieldValue(v) {
				skipped = append(skipped, name)
				continue
			}
			out[name] = append(out[name], v)
		}
	}
	for _, c := range resp.Cookies {
		if s := c.String(); s != "" {
			out.Add("Set-Cookie", s)
		}
	}
	if _, ok := out["Content-Length"]; ok {
		out.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	}
	return out, skipped
}

// toHTTPResponse converts a resolved response for an http.RoundTripper caller.
func toHTTPResponse(req *http.Request, resp *webarchive.Response) (*http.Response, []string) {
	header, skipped := wireHeader(resp)
	status := statusCode(resp)
	body := resp.Body
	if req.Method == http.MethodHead {
		body = nil
	}
	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}, skipped
}

// writeResponse writes a resolved response to w.
func writeResponse(w http.ResponseWriter, resp *webarchive.Response) []string {
	header, skipped := wireHeader(resp)
	dst := w.Header()
	for name, values := range header {
		dst[name] = values
	}
	w.WriteHeader(statusCode(resp))
	_, _ = w.Write(resp.Body)
	return skipped
}
