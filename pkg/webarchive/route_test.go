package webarchive

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoute_SupportedMethods(t *testing.T) {
	for _, method := range []string{"GET", "post", "Put", "DELETE", "PATCH", "HEAD", "OPTIONS"} {
		t.Run(method, func(t *testing.T) {
			route, err := NewRoute(getEntry(method, "https://example.org/x"), Options{Quiet: true})
			require.NoError(t, err)
			require.NotNil(t, route)
			assert.Equal(t, strings.ToLower(method), route.Method)
			assert.Equal(t, "https://example.org/x", route.URL)
			assert.NotEmpty(t, route.ID)
		})
	}
}

func TestNewRoute_UnsupportedMethodIsSkipped(t *testing.T) {
	for _, method := range []string{"TRACE", "CONNECT", "all", "ALL", ""} {
		t.Run(method, func(t *testing.T) {
			logger, buf := newTestLogger()
			route, err := NewRoute(getEntry(method, "https://example.org/x"), Options{Logger: logger})
			assert.NoError(t, err)
			assert.Nil(t, route)
			assert.Contains(t, buf.String(), "Registering route for "+method+" for https://example.org/x")
		})
	}
}

func TestNewRoute_URLMustBeString(t *testing.T) {
	tests := []struct {
		name     string
		url      any
		typeName string
	}{
		{"number", float64(42), "number"},
		{"missing", nil, "undefined"},
		{"object", map[string]any{"href": "x"}, "object"},
		{"array", []any{"x"}, "array"},
		{"boolean", true, "boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := getEntry("GET", "")
			entry.Request.URL = tt.url
			route, err := NewRoute(entry, Options{Quiet: true})
			assert.Nil(t, route)
			require.ErrorIs(t, err, ErrURLNotString)
			assert.Contains(t, err.Error(), "'"+tt.typeName+"'")
		})
	}
}

func TestNewRoute_URLMustBeString_EvenForUnsupportedMethod(t *testing.T) {
	entry := getEntry("TRACE", "")
	entry.Request.URL = 1.0
	_, err := NewRoute(entry, Options{Quiet: true})
	assert.ErrorIs(t, err, ErrURLNotString)
}

func TestNewRoute_RelativeURL(t *testing.T) {
	_, err := NewRoute(getEntry("GET", "/relative/path"), Options{Quiet: true})
	assert.Error(t, err)
}

func TestNewRoute_SplitsQuery(t *testing.T) {
	route, err := NewRoute(getEntry("GET", "https://Example.org?query=string#frag"), Options{Quiet: true, StrictQueryString: true})
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/", route.URL)
	assert.Equal(t, "query=string", route.Query)
	assert.True(t, route.StrictQuery)
	assert.Equal(t, "GET https://example.org/?query=string", route.String())
}

func TestNewRoute_DomainMappings(t *testing.T) {
	tests := []struct {
		name     string
		mappings DomainMappings
		rawURL   string
		want     string
	}{
		{
			name:   "no mappings",
			rawURL: "http://localhost:4000/hello",
			want:   "http://localhost:4000/hello",
		},
		{
			name:     "matching prefix",
			mappings: DomainMappings{{From: "http://localhost:4000", To: "http://localhost:1000"}},
			rawURL:   "http://localhost:4000/hello",
			want:     "http://localhost:1000/hello",
		},
		{
			name:     "non-matching prefix",
			mappings: DomainMappings{{From: "http://localhost:5000", To: "http://localhost:1000"}},
			rawURL:   "http://localhost:4000/hello",
			want:     "http://localhost:4000/hello",
		},
		{
			name: "first match wins over longer prefix",
			mappings: DomainMappings{
				{From: "https://api.example.org", To: "http://first.test"},
				{From: "https://api.example.org/v2", To: "http://second.test"},
			},
			rawURL: "https://api.example.org/v2/users",
			want:   "http://first.test/v2/users",
		},
		{
			name: "declaration order decides",
			mappings: DomainMappings{
				{From: "https://api.example.org/v2", To: "http://second.test"},
				{From: "https://api.example.org", To: "http://first.test"},
			},
			rawURL: "https://api.example.org/v2/users",
			want:   "http://second.test/users",
		},
		{
			name:     "only one replacement",
			mappings: DomainMappings{{From: "http://a.test", To: "http://b.test"}},
			rawURL:   "http://a.test/redirect?to=http://a.test/x",
			want:     "http://b.test/redirect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := NewRoute(getEntry("GET", tt.rawURL), Options{Quiet: true, DomainMappings: tt.mappings})
			require.NoError(t, err)
			assert.Equal(t, tt.want, route.URL)
		})
	}
}

func TestNewRoute_DomainMappingIsLogged(t *testing.T) {
	logger, buf := newTestLogger()
	_, err := NewRoute(getEntry("GET", "http://localhost:4000/hello"), Options{
		Logger:         logger,
		DomainMappings: DomainMappings{{From: "http://localhost:4000", To: "http://localhost:1000"}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "mapping 'http://localhost:4000/hello' to 'http://localhost:1000/hello'")
}

func TestNewRoute_QuietSilencesRegistration(t *testing.T) {
	logger, buf := newTestLogger()
	_, err := NewRoute(getEntry("GET", "http://localhost:4000/hello"), Options{
		Logger:         logger,
		Quiet:          true,
		DomainMappings: DomainMappings{{From: "http://localhost:4000", To: "http://localhost:1000"}},
	})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestRoute_Matches(t *testing.T) {
	route, err := NewRoute(getEntry("GET", "https://example.org/users?id=1"), Options{Quiet: true})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		target string
		want   bool
	}{
		{"exact", http.MethodGet, "https://example.org/users?id=1", true},
		{"other query still matches", http.MethodGet, "https://example.org/users?id=2", true},
		{"no query", http.MethodGet, "https://example.org/users", true},
		{"host case", http.MethodGet, "https://EXAMPLE.org/users", true},
		{"method", http.MethodPost, "https://example.org/users", false},
		{"path", http.MethodGet, "https://example.org/users/1", false},
		{"scheme", http.MethodGet, "http://example.org/users", false},
		{"port", http.MethodGet, "https://example.org:8443/users", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			assert.Equal(t, tt.want, route.Matches(req))
		})
	}

	assert.False(t, route.Matches(nil))
}

func TestMatchKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.org", "https://example.org/"},
		{"https://example.org?x=1", "https://example.org/"},
		{"HTTPS://Example.ORG/Path", "https://example.org/Path"},
		{"http://localhost:4000/a/b?c#d", "http://localhost:4000/a/b"},
		{"https://example.org/a%2Fb", "https://example.org/a%2Fb"},
		{"http://example.org:80/x", "http://example.org/x"},
		{"https://example.org:443", "https://example.org/"},
		{"http://[::1]:80/x", "http://[::1]/x"},
		{"http://example.org:443/x", "http://example.org:443/x"},
		{"http://example.org:8080/x", "http://example.org:8080/x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := url.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, MatchKey(u))
		})
	}
}

func TestRoute_MatchesAcrossDefaultPort(t *testing.T) {
	explicit, err := NewRoute(getEntry("GET", "http://example.org:80/x"), Options{Quiet: true})
	require.NoError(t, err)
	assert.True(t, explicit.Matches(httptest.NewRequest(http.MethodGet, "http://example.org/x", nil)))

	implicit, err := NewRoute(getEntry("GET", "https://example.org/x"), Options{Quiet: true})
	require.NoError(t, err)
	assert.True(t, implicit.Matches(httptest.NewRequest(http.MethodGet, "https://example.org:443/x", nil)))
	assert.False(t, implicit.Matches(httptest.NewRequest(http.MethodGet, "https://example.org:8443/x", nil)))
}

func TestDomainMappings_SkipsEmptyFrom(t *testing.T) {
	got, changed := DomainMappings{{From: "", To: "http://x.test"}}.Apply("http://a.test/")
	assert.False(t, changed)
	assert.Equal(t, "http://a.test/", got)
}

func TestDomainMappings_ReplacesOnce(t *testing.T) {
	got, changed := DomainMappings{{From: "http://a.test", To: "http://b.test"}}.Apply("http://a.test/redirect?to=http://a.test/x")
	assert.True(t, changed)
	assert.Equal(t, "http://b.test/redirect?to=http://a.test/x", got)
}
