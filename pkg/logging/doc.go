// Package logging provides structured logging configuration for harmock.
//
// This package wraps log/slog so every component logs the same way. The
// archive translation core never talks to a global logger directly: it is
// handed a *slog.Logger and, when the caller asked for quiet operation, that
// logger is swapped for Nop through Gate.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("serving archive", "file", path, "routes", n)
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or options.
// If no logger is provided, OrDefault falls back to slog.Default(), which is
// the channel the host process already configured.
package logging
