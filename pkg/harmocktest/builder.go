package harmocktest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/getmockd/harmock/pkg/har"
)

// EntryBuilder builds archive entries using a fluent API.
type EntryBuilder struct {
	server *Server
	entry  har.Entry
	err    error // First error encountered during building
}

// NewEntry starts building a standalone entry for method and rawURL. The
// response defaults to 200 with an empty body.
func NewEntry(method, rawURL string) *EntryBuilder {
	b := &EntryBuilder{
		entry: har.Entry{
			StartedDateTime: time.Now().UTC().Format(time.RFC3339Nano),
			Request: har.Request{
				Method:      method,
				URL:         rawURL,
				HTTPVersion: "HTTP/1.1",
			},
			Response: har.Response{
				Status:      http.StatusOK,
				StatusText:  http.StatusText(http.StatusOK),
				HTTPVersion: "HTTP/1.1",
			},
		},
	}
	if u, err := url.Parse(rawURL); err == nil {
		for name, values := range u.Query() {
			for _, v := range values {
				b.entry.Request.QueryString = append(b.entry.Request.QueryString, har.NameValue{Name: name, Value: v})
			}
		}
	}
	return b
}

// setError records the first error encountered during building.
// Subsequent errors are ignored (first error wins pattern).
func (b *EntryBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building.
func (b *EntryBuilder) Err() error {
	return b.err
}

// WithStatus sets the response status code.
func (b *EntryBuilder) WithStatus(status int) *EntryBuilder {
	b.entry.Response.Status = status
	b.entry.Response.StatusText = http.StatusText(status)
	return b
}

// WithBody sets a text response body.
func (b *EntryBuilder) WithBody(body string) *EntryBuilder {
	b.entry.Response.Content.Text = body
	b.entry.Response.Content.Encoding = ""
	b.entry.Response.Content.Size = len(body)
	return b
}

// WithBinary sets a base64 encoded response body.
func (b *EntryBuilder) WithBinary(body []byte) *EntryBuilder {
	b.entry.Response.Content.Text = base64.StdEncoding.EncodeToString(body)
	b.entry.Response.Content.Encoding = har.EncodingBase64
	b.entry.Response.Content.Size = len(body)
	return b
}

// WithJSON sets the response body as JSON and adds a JSON Content-Type.
func (b *EntryBuilder) WithJSON(body any) *EntryBuilder {
	data, err := json.Marshal(body)
	if err != nil {
		b.setError(fmt.Errorf("WithJSON: failed to marshal body: %w", err))
		return b
	}
	b.WithBody(string(data))
	b.entry.Response.Content.MimeType = "application/json"
	return b.WithHeader("Content-Type", "application/json")
}

// WithHeader adds a response header. Repeated names are kept in order.
func (b *EntryBuilder) WithHeader(name, value string) *EntryBuilder {
	b.entry.Response.Headers = append(b.entry.Response.Headers, har.Header{Name: name, Value: value})
	return b
}

// WithCookie adds a Set-Cookie response header.
func (b *EntryBuilder) WithCookie(c *http.Cookie) *EntryBuilder {
	return b.WithHeader("Set-Cookie", c.String())
}

// WithTime sets the recorded total time of the entry.
func (b *EntryBuilder) WithTime(d time.Duration) *EntryBuilder {
	b.entry.Time = float64(d) / float64(time.Millisecond)
	return b
}

// Build returns the entry.
func (b *EntryBuilder) Build() (har.Entry, error) {
	return b.entry, b.err
}

// Reply registers the entry with the server it was started from.
func (b *EntryBuilder) Reply() {
	if b.server == nil {
		panic("harmocktest: Reply called on an entry built with NewEntry")
	}
	b.server.t.Helper()
	if b.err != nil {
		b.server.t.Fatalf("harmocktest: %v", b.err)
	}
	b.server.add(b.entry)
}

// Archive wraps entries into a document, as found in a .har file.
func Archive(entries ...har.Entry) *har.Document {
	return &har.Document{Log: &har.Log{
		Version: "1.2",
		Creator: har.Creator{Name: "harmocktest", Version: "1"},
		Entries: entries,
	}}
}
