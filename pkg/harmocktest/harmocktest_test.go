package harmocktest

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/harmock/pkg/webarchive"
)

const fixtures = "../webarchive/testdata"

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestLoad_Client(t *testing.T) {
	srv := Load(t, filepath.Join(fixtures, "webarchive.har"), webarchive.Options{})

	resp, err := srv.Client().Get("https://www.archaeology.org/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readAll(t, resp), "Daily archaeological news")

	srv.AssertCalled(t, "GET", "https://www.archaeology.org/")
	srv.AssertCalledTimes(t, "GET", "https://www.archaeology.org/", 1)
	srv.AssertNotCalled(t, "POST", "https://www.archaeology.org/api/subscribe")
	srv.AssertNoUnhandled(t)
}

func TestEntry_OverridesArchive(t *testing.T) {
	srv := Load(t, filepath.Join(fixtures, "localhost.har"), webarchive.Options{})

	srv.Entry("GET", "http://localhost:4000/hello").
		WithStatus(http.StatusTeapot).
		WithJSON(map[string]string{"foo": "override"}).
		Reply()

	resp, err := srv.Client().Get("http://localhost:4000/hello")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"foo":"override"}`, readAll(t, resp))
}

func TestEntry_Binary(t *testing.T) {
	srv := New(t, webarchive.Options{})
	payload := []byte{0x00, 0xff, 0x10}
	srv.Entry("GET", "https://cdn.example.com/blob").WithBinary(payload).Reply()

	resp, err := srv.Client().Get("https://cdn.example.com/blob")
	require.NoError(t, err)
	assert.Equal(t, string(payload), readAll(t, resp))
}

func TestEntry_Cookie(t *testing.T) {
	srv := New(t, webarchive.Options{})
	srv.Entry("GET", "https://app.example.com/login").
		WithCookie(&http.Cookie{Name: "sid", Value: "abc"}).
		Reply()

	resp, err := srv.Client().Get("https://app.example.com/login")
	require.NoError(t, err)
	_ = readAll(t, resp)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, "app.example.com", cookies[0].Domain)
}

func TestNewEntry_Build(t *testing.T) {
	b := NewEntry("GET", "https://api.example.com/search?q=go&page=2")
	b.WithTime(25 * time.Millisecond)
	b.WithHeader("Vary", "Accept").WithHeader("Vary", "Origin")
	entry, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, float64(25), entry.Time)
	assert.Len(t, entry.Request.QueryString, 2)
	assert.Len(t, entry.Response.Headers, 2)

	_, err = NewEntry("GET", "https://a/").WithJSON(make(chan int)).Build()
	assert.Error(t, err)

	doc := Archive(entry)
	assert.Len(t, doc.AllEntries(), 1)
}

func TestMapOrigin_Start(t *testing.T) {
	srv := New(t, webarchive.Options{})
	srv.MapOrigin("http://localhost:4000")
	srv.LoadArchive(filepath.Join(fixtures, "localhost.har"))

	resp, err := http.Get(srv.URL() + "/hello")
	require.NoError(t, err)
	assert.JSONEq(t, `{"foo":"bar"}`, readAll(t, resp))

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Handled())
	reqs[0].AssertMethod(t, "get")

	srv.Stop()
	srv.Stop()
	assert.Empty(t, srv.URL())
}

func TestMapOrigin_ConcurrentWithEntries(t *testing.T) {
	srv := New(t, webarchive.Options{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		origin := fmt.Sprintf("http://svc-%d.local", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			srv.MapOrigin(origin)
		}()
		go func() {
			defer wg.Done()
			srv.Entry("GET", origin+"/ping").WithBody("pong").Reply()
		}()
	}
	wg.Wait()

	assert.Len(t, srv.options().DomainMappings, 4)
	assert.Len(t, srv.Runtime().Routes(), 4)
}

func TestRequests_Assertions(t *testing.T) {
	srv := New(t, webarchive.Options{})
	srv.Entry("POST", "https://api.example.com/items").WithStatus(http.StatusCreated).Reply()

	req, err := http.NewRequest(http.MethodPost, "https://api.example.com/items?dry=true", strings.NewReader(`{"name":"widget","tags":["a"]}`))
	require.NoError(t, err)
	req.Header.Set("X-Trace", "t-1")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	_ = readAll(t, resp)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	r := reqs[0]
	r.AssertBody(t, `{"name":"widget","tags":["a"]}`)
	r.AssertBodyContains(t, "widget")
	r.AssertJSONBody(t, map[string]any{"name": "widget", "tags": []string{"a"}})
	r.AssertHeader(t, "x-trace", "t-1")
	r.AssertQueryParam(t, "dry", "true")
	assert.Equal(t, http.StatusCreated, r.Status)
	assert.True(t, r.Handled())
}

func TestReset(t *testing.T) {
	srv := Load(t, filepath.Join(fixtures, "localhost.har"), webarchive.Options{})
	srv.Reset()
	_, err := srv.Client().Get("http://localhost:4000/hello")
	assert.Error(t, err)
	assert.Empty(t, srv.Runtime().Routes())
}
