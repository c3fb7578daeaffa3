// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log holds the process-wide zerolog logger. Components never build
// their own; they derive a child through WithComponent or
// WithComponentFromContext so service and version fields are always present.
package log

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	// Level is a zerolog level name. Empty or unparsable values fall back to
	// TOKBRIDGE_LOG_LEVEL, then info.
	Level   string
	Output  io.Writer // defaults to os.Stdout
	Service string
	Version string
}

const (
	envLevel       = "TOKBRIDGE_LOG_LEVEL"
	envService     = "TOKBRIDGE_LOG_SERVICE"
	defaultService = "tokbridge"
)

var base atomic.Pointer[zerolog.Logger]

// Configure replaces the global logger. main calls it once before the config
// is read and again afterwards.
func Configure(cfg Config) {
	zerolog.SetGlobalLevel(resolveLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	l := zerolog.New(out).With().
		Timestamp().
		Str(FieldService, firstNonEmpty(cfg.Service, os.Getenv(envService), defaultService)).
		Str(FieldVersion, cfg.Version).
		Logger()
	base.Store(&l)
}

func resolveLevel(name string) zerolog.Level {
	for _, candidate := range []string{name, os.Getenv(envLevel)} {
		if candidate == "" {
			continue
		}
		if lvl, err := zerolog.ParseLevel(candidate); err == nil {
			return lvl
		}
	}
	return zerolog.InfoLevel
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Base returns the current global logger.
func Base() zerolog.Logger {
	return *base.Load()
}

// WithComponent returns a child logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}

func init() {
	Configure(Config{})
}
