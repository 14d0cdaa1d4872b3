package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getmockd/harmock/pkg/intercept"
	"github.com/getmockd/harmock/pkg/logging"
	"github.com/getmockd/harmock/pkg/webarchive"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultListen is the serve address used when none is configured.
const DefaultListen = "127.0.0.1:4280"

// Config is the harmock configuration file.
type Config struct {
	StrictQueryString bool      `json:"strictQueryString" yaml:"strictQueryString"`
	UseUniqueRequests bool      `json:"useUniqueRequests" yaml:"useUniqueRequests"`
	Quiet             bool      `json:"quiet" yaml:"quiet"`
	ResponseDelay     string    `json:"responseDelay,omitempty" yaml:"responseDelay,omitempty"`
	ResponseDelayExpr string    `json:"responseDelayExpr,omitempty" yaml:"responseDelayExpr,omitempty"`
	CORSOrigin        string    `json:"corsOrigin,omitempty" yaml:"corsOrigin,omitempty"`
	DomainMappings    Mappings  `json:"domainMappings,omitempty" yaml:"domainMappings,omitempty"`
	Include           []string  `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude           []string  `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	OnUnhandled       string    `json:"onUnhandled,omitempty" yaml:"onUnhandled,omitempty"`
	Listen            string    `json:"listen,omitempty" yaml:"listen,omitempty"`
	Log               LogConfig `json:"log" yaml:"log"`
}

// LogConfig selects the operational log output.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Logging converts lc to a logging.Config writing to stderr.
func (lc LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(lc.Level)
	cfg.Format = logging.ParseFormat(lc.Format)
	return cfg
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ResponseDelay: string(webarchive.DelayReal),
		OnUnhandled:   string(intercept.UnhandledError),
		Listen:        DefaultListen,
		Log:           LogConfig{Level: "info", Format: string(logging.FormatText)},
	}
}

// Validate checks field values that would otherwise be silently coerced.
// An unknown responseDelay is not an error: Options falls back to real
// recorded timings for it.
func (c *Config) Validate() error {
	switch intercept.UnhandledMode(c.OnUnhandled) {
	case "", intercept.UnhandledError, intercept.UnhandledBypass, intercept.UnhandledNotFound:
	default:
		return fmt.Errorf("%w: onUnhandled must be one of error, bypass, notfound, got %q",
			ErrInvalidConfig, c.OnUnhandled)
	}

	for _, m := range c.DomainMappings {
		if strings.TrimSpace(m.From) == "" {
			return fmt.Errorf("%w: domain mapping with empty source (to %q)", ErrInvalidConfig, m.To)
		}
	}

	if c.ResponseDelayExpr != "" {
		if _, err := CompileDelay(c.ResponseDelayExpr); err != nil {
			return fmt.Errorf("%w: responseDelayExpr: %v", ErrInvalidConfig, err)
		}
	}

	if _, err := NewFilter(c.Include, c.Exclude); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Options builds the route options described by c. The logger is used for
// route diagnostics unless Quiet is set.
func (c *Config) Options(log *slog.Logger) (webarchive.Options, error) {
	opts := webarchive.Options{
		StrictQueryString: c.StrictQueryString,
		UseUniqueRequests: c.UseUniqueRequests,
		DomainMappings:    webarchive.DomainMappings(c.DomainMappings),
		ResponseDelay:     webarchive.DelayMode(c.ResponseDelay),
		Quiet:             c.Quiet,
		Logger:            log,
	}
	switch webarchive.DelayMode(c.ResponseDelay) {
	case webarchive.DelayReal, webarchive.DelayNone:
	case "":
		opts.ResponseDelay = webarchive.DelayReal
	default:
		logging.Gate(log, c.Quiet).Warn("unknown responseDelay, replaying recorded timings",
			"responseDelay", c.ResponseDelay, "using", webarchive.DelayReal)
		opts.ResponseDelay = webarchive.DelayReal
	}
	if c.ResponseDelayExpr != "" {
		delay, err := CompileDelay(c.ResponseDelayExpr)
		if err != nil {
			return webarchive.Options{}, fmt.Errorf("%w: responseDelayExpr: %v", ErrInvalidConfig, err)
		}
		opts.ResponseDelay = delay
	}
	if origin := c.CORSOrigin; origin != "" {
		opts.ResolveCrossOrigins = func(string) string { return origin }
	}
	return opts, nil
}

// Unhandled returns the runtime mode for unmatched requests.
func (c *Config) Unhandled() intercept.UnhandledMode {
	return intercept.ParseUnhandledMode(c.OnUnhandled)
}

// Filter returns the route filter described by Include and Exclude.
func (c *Config) Filter() (*Filter, error) {
	return NewFilter(c.Include, c.Exclude)
}
