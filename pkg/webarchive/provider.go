package webarchive

import (
	"github.com/getmockd/harmock/pkg/har"
	"github.com/getmockd/harmock/pkg/logging"
)

// NoDefinitionsMessage is logged when an archive yields no entries.
const NoDefinitionsMessage = "Note: No request definitions found in passed web-archive file"

// Registrar is the registration primitive of an interception runtime.
// Install never reads the runtime's state.
type Registrar interface {
	Use(routes ...*Route)
}

// Synthesize builds one route per entry, in entry order. Entries with an
// unsupported method are dropped. The first fatal entry error aborts the
// whole batch.
func Synthesize(entries []har.Entry, opts Options) ([]*Route, error) {
	if len(entries) == 0 {
		logging.Gate(opts.Logger, opts.Quiet).Warn(NoDefinitionsMessage)
		return nil, nil
	}

	routes := make([]*Route, 0, len(entries))
	for i, entry := range entries {
		route, err := NewRoute(entry, opts)
		if err != nil {
			return nil, &EntryError{Index: i, Err: err}
		}
		if route == nil {
			continue
		}
		route.Index = i
		routes = append(routes, route)
	}
	return routes, nil
}

// Install synthesizes the routes for doc and registers them with r.
// Nothing is registered when synthesis fails.
func Install(r Registrar, doc *har.Document, opts Options) error {
	routes, err := Synthesize(doc.AllEntries(), opts)
	if err != nil {
		return err
	}
	if len(routes) > 0 {
		r.Use(routes...)
	}
	return nil
}
