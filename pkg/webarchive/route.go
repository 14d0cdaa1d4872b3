package webarchive

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/getmockd/harmock/pkg/har"
	"github.com/getmockd/harmock/pkg/logging"
)

// ErrURLNotString reports an archive entry whose request URL is not a string.
var ErrURLNotString = errors.New("url must be a string")

// supportedMethods maps the lower-cased verbs a route can be registered for
// to their canonical form. There is deliberately no wildcard entry.
var supportedMethods = map[string]string{
	"get":     http.MethodGet,
	"post":    http.MethodPost,
	"put":     http.MethodPut,
	"delete":  http.MethodDelete,
	"patch":   http.MethodPatch,
	"head":    http.MethodHead,
	"options": http.MethodOptions,
}

// Route is a request matcher plus the recorded response it answers with.
// Routes are immutable once built and safe for concurrent use.
type Route struct {
	// ID uniquely identifies the route within the process.
	ID string `json:"id"`

	// Index is the position of the source entry in the archive.
	Index int `json:"index"`

	// Method is the lower-cased HTTP verb.
	Method string `json:"method"`

	// URL is the absolute URL without query string or fragment.
	URL string `json:"url"`

	// Query is the captured raw query string, without the leading '?'.
	Query string `json:"query,omitempty"`

	// StrictQuery requires live requests to carry exactly Query.
	StrictQuery bool `json:"strictQuery,omitempty"`

	// Once marks a route that stops matching after one answer.
	Once bool `json:"once,omitempty"`

	res resolution
}

// NewRoute builds the route for one archive entry.
//
// It returns (nil, nil) when the entry uses a verb no route can be registered
// for; the entry is skipped. A non-string request URL or an unparseable URL is
// an error.
func NewRoute(entry har.Entry, opts Options) (*Route, error) {
	log := logging.Gate(opts.Logger, opts.Quiet)

	rawURL, ok := entry.Request.URL.(string)
	if !ok {
		return nil, fmt.Errorf("%w, got: '%s'", ErrURLNotString, jsonTypeName(entry.Request.URL))
	}

	target := rawURL
	if mapped, changed := opts.DomainMappings.Apply(rawURL); changed {
		target = mapped
		log.Info(fmt.Sprintf("mapping '%s' to '%s'", rawURL, target))
	}

	log.Info(fmt.Sprintf("Registering route for %s for %s", entry.Request.Method, rawURL))

	method := strings.ToLower(entry.Request.Method)
	if _, supported := supportedMethods[method]; !supported {
		log.Warn("skipping entry with unsupported method", "method", entry.Request.Method, "url", rawURL)
		return nil, nil
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", target, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("request url %q is not absolute", target)
	}

	return &Route{
		ID:          uuid.NewString(),
		Method:      method,
		URL:         MatchKey(parsed),
		Query:       parsed.RawQuery,
		StrictQuery: opts.StrictQueryString,
		Once:        opts.UseUniqueRequests,
		res: resolution{
			entry:    entry,
			host:     parsed.Hostname(),
			query:    parsed.RawQuery,
			strict:   opts.StrictQueryString,
			cors:     opts.ResolveCrossOrigins,
			delay:    opts.ResponseDelay,
			log:      log,
			routeURL: target,
		},
	}, nil
}

// Matches reports whether req targets this route's method and URL.
// The query string is not considered here; see Resolve.
func (r *Route) Matches(req *http.Request) bool {
	if req == nil || req.URL == nil {
		return false
	}
	return strings.EqualFold(req.Method, r.Method) && MatchKey(req.URL) == r.URL
}

// CanonicalMethod returns the upper-case form of Method.
func (r *Route) CanonicalMethod() string {
	return supportedMethods[r.Method]
}

// Resolve answers req with the recorded response, or reports false when the
// route declines it. Any configured delay has elapsed when Resolve returns.
func (r *Route) Resolve(req *http.Request) (*Response, bool) {
	return r.res.resolve(req)
}

// String returns a short description for logs.
func (r *Route) String() string {
	s := r.CanonicalMethod() + " " + r.URL
	if r.Query != "" {
		s += "?" + r.Query
	}
	return s
}

// MatchKey normalizes an absolute URL to the form routes are keyed by:
// lower-cased scheme and host without the scheme's default port, path
// defaulting to "/", no query, no fragment.
func MatchKey(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	key := url.URL{
		Scheme:  scheme,
		User:    u.User,
		Host:    strings.TrimSuffix(strings.ToLower(u.Host), defaultPorts[scheme]),
		Path:    u.Path,
		RawPath: u.RawPath,
	}
	if key.Path == "" {
		key.Path = "/"
		key.RawPath = ""
	}
	return key.String()
}

// defaultPorts holds the port suffix each scheme implies.
var defaultPorts = map[string]string{
	"http":  ":80",
	"https": ":443",
	"ws":    ":80",
	"wss":   ":443",
}

// jsonTypeName names the JSON type a decoded value came from.
func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
