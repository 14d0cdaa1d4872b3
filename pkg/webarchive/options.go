package webarchive

import (
	"log/slog"
	"strings"
)

// Options control how archive entries are turned into routes.
// The zero value is ready to use: lenient query matching, reusable routes,
// recorded delays and logging to slog.Default().
type Options struct {
	// StrictQueryString makes a route decline live requests whose raw query
	// string is not byte-identical to the captured one.
	StrictQueryString bool

	// UseUniqueRequests makes every route answer at most one live request.
	UseUniqueRequests bool

	// ResolveCrossOrigins rewrites captured Access-Control-Allow-Origin
	// values. It receives the raw captured header value.
	ResolveCrossOrigins func(origin string) string

	// DomainMappings rewrite captured URL origins before matching.
	// The first mapping whose From is a prefix of the URL wins.
	DomainMappings DomainMappings

	// ResponseDelay decides the simulated latency. Nil means DelayReal.
	ResponseDelay DelayPolicy

	// Quiet suppresses every diagnostic.
	Quiet bool

	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// DomainMapping replaces the URL prefix From with To.
type DomainMapping struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// DomainMappings is an ordered list of prefix rewrites.
type DomainMappings []DomainMapping

// Apply rewrites rawURL with the first mapping whose From is a prefix of it.
// Only that one occurrence is replaced; the URL is not reparsed.
func (m DomainMappings) Apply(rawURL string) (string, bool) {
	for _, mapping := range m {
		if mapping.From == "" {
			continue
		}
		if strings.HasPrefix(rawURL, mapping.From) {
			return strings.Replace(rawURL, mapping.From, mapping.To, 1), true
		}
	}
	return rawURL, false
}
