package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/harmock/pkg/config"
	"github.com/getmockd/harmock/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootOptions holds persistent flags shared by all subcommands.
type rootOptions struct {
	configPath string
	jsonOutput bool
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the harmock command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "harmock",
		Short: "harmock replays HAR archives as a mock HTTP server",
		Long: `harmock turns the requests captured in a HAR (HTTP Archive) file into mock
routes and answers live requests with the recorded responses.

Settings can be provided via flags or a configuration file (--config).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (YAML or JSON)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output command results in JSON format")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")

	cmd.AddCommand(
		newServeCmd(opts, nil),
		newRoutesCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// Execute runs the root command.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, if any, and applies the
// persistent flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		loaded, err := config.LoadFromFile(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	return cfg, nil
}

// newLogger builds the operational logger writing to w.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	lc := cfg.Log.Logging()
	lc.Output = w
	return logging.New(lc)
}
