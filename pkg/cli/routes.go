package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/harmock/pkg/cli/internal/output"
	"github.com/getmockd/harmock/pkg/util"
	"github.com/getmockd/harmock/pkg/webarchive"
)

// routeOutput is one row of the routes listing.
type routeOutput struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Method string `json:"method"`
	URL    string `json:"url"`
	Query  string `json:"query,omitempty"`
	Strict bool   `json:"strictQuery,omitempty"`
	Once   bool   `json:"once,omitempty"`
}

func newRoutesCmd(opts *rootOptions) *cobra.Command {
	var rf routeFlags

	cmd := &cobra.Command{
		Use:   "routes <archive.har>",
		Short: "Print the routes an archive produces",
		Example: `  # List routes
  harmock routes session.har

  # List routes after remapping an origin, as JSON
  harmock routes session.har --map http://localhost:4000=http://localhost:1000 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := rf.apply(cmd, cfg); err != nil {
				return err
			}

			log := newLogger(cfg, cmd.ErrOrStderr())
			routes, err := loadRoutes(args[0], cfg, log)
			if err != nil {
				return err
			}
			return printRoutes(cmd, opts.jsonOutput, routes)
		},
	}
	rf.register(cmd.Flags())
	return cmd
}

func printRoutes(cmd *cobra.Command, jsonOutput bool, routes []*webarchive.Route) error {
	rows := make([]routeOutput, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, routeOutput{
			Index:  r.Index,
			ID:     r.ID,
			Method: r.CanonicalMethod(),
			URL:    r.URL,
			Query:  r.Query,
			Strict: r.StrictQuery,
			Once:   r.Once,
		})
	}

	if jsonOutput {
		return output.JSON(cmd.OutOrStdout(), rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No routes.")
		return nil
	}
	w := output.Table(cmd.OutOrStdout())
	fmt.Fprintln(w, "#\tMETHOD\tURL\tQUERY")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Index, r.Method, r.URL, util.Ellipsis(r.Query, 40))
	}
	return w.Flush()
}
