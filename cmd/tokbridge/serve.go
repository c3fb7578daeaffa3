// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ManuGH/tokbridge/internal/config"
	"github.com/ManuGH/tokbridge/internal/daemon"
	"github.com/ManuGH/tokbridge/internal/demo"
	"github.com/ManuGH/tokbridge/internal/demo/middleware"
	xglog "github.com/ManuGH/tokbridge/internal/log"
	"github.com/ManuGH/tokbridge/internal/telemetry"
	"github.com/ManuGH/tokbridge/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the archiving demo service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}
			ctx, stop := daemon.SignalContext(cmd.Context())
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "override the listen address")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	stack := middleware.StackConfig{
		AllowedOrigins:     cfg.AllowedOrigins,
		EnableMetrics:      true,
		EnableLogging:      true,
		RateLimitPerMinute: cfg.DemoRateLimit,
	}
	if cfg.Tracing.Enabled {
		stack.TracingService = cfg.LogService
	}
	handler := demo.NewRouter(client, demo.Options{SessionID: cfg.SessionID, Stack: stack})

	dcfg := daemon.DefaultConfig(cfg.ListenAddr)
	dcfg.Telemetry = telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: version.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	}

	logger := xglog.WithComponent("cli")
	logger.Info().
		Str(xglog.FieldEvent, "serve.start").
		Str("addr", cfg.ListenAddr).
		Int("api_key", client.APIKey()).
		Msg("starting demo service")
	return daemon.New(dcfg, handler).Run(ctx)
}
