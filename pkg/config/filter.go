package config

import (
	"fmt"
	"net/url"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/harmock/pkg/webarchive"
)

// Filter selects routes by URL path using doublestar patterns.
// A route is kept when it matches at least one include pattern (or there are
// none) and no exclude pattern.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter validates the patterns and returns a Filter.
func NewFilter(include, exclude []string) (*Filter, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	return &Filter{include: include, exclude: exclude}, nil
}

// Empty reports whether the filter keeps everything.
func (f *Filter) Empty() bool {
	return f == nil || (len(f.include) == 0 && len(f.exclude) == 0)
}

// Keep reports whether a route for rawURL passes the filter. Patterns are
// matched against host and path joined, e.g. "api.example.com/v1/users", so
// "**/v1/**" and "api.example.com/**" both work.
func (f *Filter) Keep(rawURL string) bool {
	if f.Empty() {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	target := u.Host + u.EscapedPath()
	if u.EscapedPath() == "" {
		target += "/"
	}

	if len(f.include) > 0 && !matchAny(f.include, target) {
		return false
	}
	return !matchAny(f.exclude, target)
}

// Routes returns the routes that pass the filter, keeping their order.
func (f *Filter) Routes(routes []*webarchive.Route) []*webarchive.Route {
	if f.Empty() {
		return routes
	}
	kept := make([]*webarchive.Route, 0, len(routes))
	for _, r := range routes {
		if f.Keep(r.URL) {
			kept = append(kept, r)
		}
	}
	return kept
}

func matchAny(patterns []string, target string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, target); ok {
			return true
		}
	}
	return false
}
