// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command tokbridge runs the archiving demo service and exposes the SDK
// operations as one-shot subcommands.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/ManuGH/tokbridge/internal/config"
	"github.com/ManuGH/tokbridge/internal/gateway"
	xglog "github.com/ManuGH/tokbridge/internal/log"
	"github.com/ManuGH/tokbridge/internal/opentok"
	"github.com/ManuGH/tokbridge/internal/version"
)

func main() {
	xglog.Configure(xglog.Config{
		Level:   config.DefaultLogLevel,
		Output:  os.Stderr,
		Service: config.DefaultLogService,
		Version: version.Version,
	})
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{out: out}
	root := &cobra.Command{
		Use:          "tokbridge",
		Short:        "Video session SDK and archiving demo service",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (YAML)")

	root.AddCommand(
		newServeCmd(opts),
		newSessionCmd(opts),
		newTokenCmd(opts),
		newArchiveCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// load resolves configuration and reconfigures logging from it.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.NewLoader(o.configPath).Load()
	if err != nil {
		return cfg, err
	}
	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  os.Stderr,
		Service: cfg.LogService,
		Version: version.Version,
	})
	logger := xglog.WithComponent("cli")
	logger.Debug().Str("config", cfg.String()).Msg("configuration loaded")
	return cfg, nil
}

// newClient builds an SDK client from cfg.
func newClient(cfg config.Config) (*opentok.Client, error) {
	return opentok.New(cfg.APIKey, cfg.APISecret, opentok.Options{
		Gateway: gateway.Options{
			BaseURL:   cfg.APIURL,
			UserAgent: cfg.UserAgent,
			HTTPClient: &http.Client{
				Timeout:   cfg.RequestTimeout,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
			RateLimit:      rate.Limit(cfg.RateLimit),
			RateLimitBurst: cfg.RateBurst,
		},
	})
}

func (o *rootOptions) client() (*opentok.Client, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return newClient(cfg)
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(opts.out, version.String())
			return err
		},
	}
}
