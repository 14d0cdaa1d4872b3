package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/getmockd/harmock/pkg/config"
	"github.com/getmockd/harmock/pkg/httputil"
	"github.com/getmockd/harmock/pkg/intercept"
	"github.com/getmockd/harmock/pkg/metrics"
)

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown.
	shutdownTimeout = 5 * time.Second

	// reloadDebounce lets a file write settle before reloading. Writers
	// often truncate first and flush the new content afterwards.
	reloadDebounce = 200 * time.Millisecond

	metricsPath  = "/__harmock/metrics"
	requestsPath = "/__harmock/requests"
)

type serveDeps struct {
	newWatcher    func() (*fsnotify.Watcher, error)
	notifyContext func(context.Context, ...os.Signal) (context.Context, context.CancelFunc)
	listen        func(network, addr string) (net.Listener, error)
}

func defaultServeDeps() serveDeps {
	return serveDeps{
		newWatcher:    fsnotify.NewWatcher,
		notifyContext: signal.NotifyContext,
		listen:        net.Listen,
	}
}

// serveFlags holds the serve-only flags.
type serveFlags struct {
	routeFlags
	listen      string
	onUnhandled string
	watch       bool
	metrics     bool
}

func newServeCmd(opts *rootOptions, deps *serveDeps) *cobra.Command {
	var f serveFlags

	resolved := defaultServeDeps()
	if deps != nil {
		if deps.newWatcher != nil {
			resolved.newWatcher = deps.newWatcher
		}
		if deps.notifyContext != nil {
			resolved.notifyContext = deps.notifyContext
		}
		if deps.listen != nil {
			resolved.listen = deps.listen
		}
	}

	cmd := &cobra.Command{
		Use:   "serve <archive.har>",
		Short: "Serve the recorded responses of an archive",
		Long: `Serve the recorded responses of a HAR archive over HTTP.

Requests are matched on method and URL. Requests sent straight to the server
are matched against the Host they were sent to; the server also works as an
HTTP forward proxy, in which case the full proxied URL is matched.`,
		Example: `  # Serve an archive without replaying recorded timings
  harmock serve session.har --delay none

  # Remap a captured origin and reload on change
  harmock serve session.har --map http://localhost:4000=http://localhost:4280 --watch

  # Use a configuration file and expose Prometheus metrics
  harmock serve session.har --config harmock.yaml --metrics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = f.listen
			}
			if cmd.Flags().Changed("on-unhandled") {
				cfg.OnUnhandled = f.onUnhandled
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return runServe(cmd, resolved, &serveRun{
				archive:    args[0],
				configPath: opts.configPath,
				cfg:        cfg,
				overrides:  func(c *config.Config) error { return f.apply(cmd, c) },
				watch:      f.watch,
				metrics:    f.metrics,
			})
		},
	}

	f.routeFlags.register(cmd.Flags())
	cmd.Flags().StringVarP(&f.listen, "listen", "l", config.DefaultListen, "Address to listen on")
	cmd.Flags().StringVar(&f.onUnhandled, "on-unhandled", "", "What to do with unmatched requests (error, bypass, notfound)")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "Reload the archive and config file when they change")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Expose Prometheus metrics on "+metricsPath)
	return cmd
}

// serveRun is one invocation of serve.
type serveRun struct {
	archive    string
	configPath string
	cfg        *config.Config
	overrides  func(*config.Config) error
	watch      bool
	metrics    bool
}

func runServe(cmd *cobra.Command, deps serveDeps, run *serveRun) error {
	logger := newLogger(run.cfg, cmd.ErrOrStderr())

	srv, err := newServer(run.archive, run.cfg, logger, run.metrics)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if run.watch {
		watcher, err := deps.newWatcher()
		if err != nil {
			return fmt.Errorf("serve: create file watcher: %w", err)
		}
		defer func() { _ = watcher.Close() }()

		for _, p := range srv.watchedFiles(run.configPath) {
			// Watch the directory so editors that replace the file by
			// renaming keep triggering events.
			if err := watcher.Add(filepath.Dir(p)); err != nil {
				return fmt.Errorf("serve: watch %s: %w", p, err)
			}
		}
		events, watchErrs = watcher.Events, watcher.Errors
	}

	ln, err := deps.listen("tcp", run.cfg.Listen)
	if err != nil {
		return fmt.Errorf("serve: listen on %s: %w", run.cfg.Listen, err)
	}
	httpServer := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	logger.Info("serve: listening",
		"addr", ln.Addr().String(),
		"archive", run.archive,
		"routes", len(srv.rt.Routes()),
		"watch", run.watch,
		"metrics", run.metrics,
	)
	fmt.Fprintf(cmd.ErrOrStderr(), "harmock listening on http://%s\n", ln.Addr())

	sigCtx, stop := deps.notifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var debounce *time.Timer
	var reloadCh <-chan time.Time
	for {
		select {
		case <-sigCtx.Done():
			logger.Info("serve: shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("serve: shutdown failed", "error", err)
			}
			return nil
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: server failed: %w", err)
			}
			return nil
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !isReloadEvent(event) || !srv.watches(event.Name, run.configPath) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
			} else {
				debounce.Reset(reloadDebounce)
			}
			reloadCh = debounce.C
		case <-reloadCh:
			reloadCh = nil
			if run.configPath != "" {
				if err := srv.reloadConfig(run.configPath, run.overrides); err != nil {
					logger.Error("serve: config reload failed", "path", run.configPath, "error", err)
					continue
				}
			}
			if err := srv.reload(); err != nil {
				logger.Error("serve: reload failed", "archive", run.archive, "error", err)
				continue
			}
			logger.Info("serve: archive reloaded", "archive", run.archive, "routes", len(srv.rt.Routes()))
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			logger.Error("serve: watcher error", "error", err)
		}
	}
}

// server serves an archive through an interception runtime.
type server struct {
	archive string
	log     *slog.Logger
	rt      *intercept.Runtime
	metrics *metrics.Collector

	mu  sync.Mutex
	cfg *config.Config
}

func newServer(archive string, cfg *config.Config, log *slog.Logger, withMetrics bool) (*server, error) {
	s := &server{archive: archive, cfg: cfg, log: log}

	rtOpts := []intercept.Option{
		intercept.WithUnhandled(cfg.Unhandled()),
		intercept.WithLogger(log),
	}
	if withMetrics {
		s.metrics = metrics.New()
		rtOpts = append(rtOpts, intercept.WithObserver(s.metrics))
	}
	s.rt = intercept.New(rtOpts...)

	routes, err := loadRoutes(archive, cfg, log)
	if err != nil {
		return nil, err
	}
	s.rt.Use(routes...)
	return s, nil
}

// reload rebuilds the routes from the archive and swaps them in atomically.
// On failure the previous routes stay active.
func (s *server) reload() error {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	routes, err := loadRoutes(s.archive, cfg, s.log)
	if s.metrics != nil {
		s.metrics.ObserveReload(err)
	}
	if err != nil {
		return err
	}
	s.rt.Replace(routes...)
	return nil
}

// reloadConfig re-reads the configuration file and reapplies the command
// line overrides. Listen address, unhandled mode and logging only take
// effect on restart.
func (s *server) reloadConfig(path string, overrides func(*config.Config) error) error {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return err
	}
	if overrides != nil {
		if err := overrides(cfg); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.Listen = s.cfg.Listen
	cfg.OnUnhandled = s.cfg.OnUnhandled
	cfg.Log = s.cfg.Log
	s.cfg = cfg
	return nil
}

func (s *server) watchedFiles(configPath string) []string {
	files := []string{s.archive}
	if configPath != "" {
		files = append(files, configPath)
	}
	return files
}

func (s *server) watches(name, configPath string) bool {
	for _, p := range s.watchedFiles(configPath) {
		if samePath(p, name) {
			return true
		}
	}
	return false
}

// ServeHTTP routes the harmock endpoints and hands everything else to the
// runtime.
func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !r.URL.IsAbs() {
		switch r.URL.Path {
		case metricsPath:
			if s.metrics != nil {
				s.metrics.Handler().ServeHTTP(w, r)
				return
			}
		case requestsPath:
			if r.Method == http.MethodGet {
				httputil.WriteOK(w, s.rt.Requests())
				return
			}
		}
	}
	s.rt.ServeHTTP(w, r)
}

func isReloadEvent(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(strings.TrimSpace(a))
	absB, errB := filepath.Abs(strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return filepath.Clean(strings.TrimSpace(a)) == filepath.Clean(strings.TrimSpace(b))
	}
	return absA == absB
}
