// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package middleware holds the HTTP ingress stack of the demo server.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	xglog "github.com/ManuGH/tokbridge/internal/log"
)

// StackConfig selects the optional layers. Recoverer and RequestID are always on.
type StackConfig struct {
	AllowedOrigins []string

	EnableMetrics  bool
	TracingService string // empty disables tracing
	EnableLogging  bool

	// RateLimitPerMinute is the per-IP budget; 0 disables rate limiting.
	RateLimitPerMinute int
}

// Layers returns the middlewares selected by cfg, outermost first.
func (cfg StackConfig) Layers() []func(http.Handler) http.Handler {
	layers := []func(http.Handler) http.Handler{Recoverer, RequestID}
	if len(cfg.AllowedOrigins) > 0 {
		layers = append(layers, CORS(cfg.AllowedOrigins))
	}
	if cfg.EnableMetrics {
		layers = append(layers, Metrics())
	}
	if cfg.TracingService != "" {
		layers = append(layers, Tracing(cfg.TracingService))
	}
	if cfg.EnableLogging {
		layers = append(layers, xglog.Middleware())
	}
	if cfg.RateLimitPerMinute > 0 {
		layers = append(layers, RateLimit(cfg.RateLimitPerMinute, time.Minute))
	}
	return layers
}

// NewRouter returns a chi router with the stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(cfg.Layers()...)
	return r
}
