// Package cli provides the command-line interface for harmock.
//
// Commands:
//   - serve: Serve the recorded responses of a HAR archive over HTTP
//   - routes: Print the routes an archive produces
//   - version: Show harmock version
//
// Every command accepts --config to read settings from a YAML or JSON file
// (see package config). Flags given on the command line override the file.
//
// The serve command answers requests sent directly to it, matched against
// the Host they were sent to, and works as a plain HTTP forward proxy:
//
//	harmock serve session.har --listen 127.0.0.1:4280 --delay none
//	curl -x http://127.0.0.1:4280 http://api.example.com/users
//
// With --watch the archive and configuration file are reloaded when they
// change. With --metrics, Prometheus metrics are served on
// /__harmock/metrics. The request log is always available as JSON on
// /__harmock/requests.
package cli
