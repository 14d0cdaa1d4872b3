package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/getmockd/harmock/pkg/config"
	"github.com/getmockd/harmock/pkg/har"
	"github.com/getmockd/harmock/pkg/webarchive"
)

// routeFlags are the flags that shape route synthesis. They are shared by
// serve and routes and override the configuration file when set.
type routeFlags struct {
	strictQuery bool
	unique      bool
	delay       string
	delayExpr   string
	mappings    []string
	corsOrigin  string
	quiet       bool
	include     []string
	exclude     []string
}

func (f *routeFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.strictQuery, "strict-query", false, "Require the query string to match the recorded one exactly")
	fs.BoolVar(&f.unique, "unique", false, "Answer each recorded request only once")
	fs.StringVar(&f.delay, "delay", "", "Response delay mode (real, none)")
	fs.StringVar(&f.delayExpr, "delay-expr", "", "Delay expression in milliseconds, e.g. 'recorded / 2'")
	fs.StringArrayVar(&f.mappings, "map", nil, "Domain mapping from=to (repeatable, first match wins)")
	fs.StringVar(&f.corsOrigin, "cors-origin", "", "Replace recorded Access-Control-Allow-Origin values")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Silence route diagnostics")
	fs.StringSliceVar(&f.include, "include", nil, "Only keep routes matching these host/path globs")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Drop routes matching these host/path globs")
}

// apply copies the flags the user actually set onto cfg.
func (f *routeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("strict-query") {
		cfg.StrictQueryString = f.strictQuery
	}
	if fs.Changed("unique") {
		cfg.UseUniqueRequests = f.unique
	}
	if fs.Changed("delay") {
		cfg.ResponseDelay = f.delay
	}
	if fs.Changed("delay-expr") {
		cfg.ResponseDelayExpr = f.delayExpr
	}
	if fs.Changed("map") {
		mappings := make(config.Mappings, 0, len(f.mappings))
		for _, raw := range f.mappings {
			m, err := config.ParseMapping(raw)
			if err != nil {
				return err
			}
			mappings = append(mappings, m)
		}
		cfg.DomainMappings = mappings
	}
	if fs.Changed("cors-origin") {
		cfg.CORSOrigin = f.corsOrigin
	}
	if fs.Changed("quiet") {
		cfg.Quiet = f.quiet
	}
	if fs.Changed("include") {
		cfg.Include = f.include
	}
	if fs.Changed("exclude") {
		cfg.Exclude = f.exclude
	}
	return cfg.Validate()
}

// registrarFunc adapts a function to webarchive.Registrar.
type registrarFunc func(routes ...*webarchive.Route)

func (f registrarFunc) Use(routes ...*webarchive.Route) { f(routes...) }

// loadRoutes reads the archive at path and synthesizes its routes under cfg,
// applying the include/exclude filter.
func loadRoutes(path string, cfg *config.Config, log *slog.Logger) ([]*webarchive.Route, error) {
	doc, err := har.LoadFile(path)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options(log)
	if err != nil {
		return nil, err
	}
	filter, err := cfg.Filter()
	if err != nil {
		return nil, err
	}

	var routes []*webarchive.Route
	collect := registrarFunc(func(batch ...*webarchive.Route) {
		routes = append(routes, filter.Routes(batch)...)
	})
	if err := webarchive.Install(collect, doc, opts); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return routes, nil
}
