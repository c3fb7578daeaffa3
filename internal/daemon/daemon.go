// SPDX-License-Identifier: MIT

// Package daemon runs the demo HTTP server and owns its shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	xglog "github.com/ManuGH/tokbridge/internal/log"
	"github.com/ManuGH/tokbridge/internal/telemetry"
)

// Config holds the HTTP server settings.
type Config struct {
	ListenAddr string

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// ShutdownTimeout bounds the graceful drain.
	ShutdownTimeout time.Duration

	Telemetry telemetry.Config
}

// DefaultConfig fills the server timeouts.
func DefaultConfig(listenAddr string) Config {
	return Config{
		ListenAddr:        listenAddr,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ShutdownTimeout:   15 * time.Second,
	}
}

// Daemon serves one handler until its context is cancelled.
type Daemon struct {
	cfg     Config
	handler http.Handler
	logger  zerolog.Logger

	// ready receives the bound address once the listener is open.
	ready chan string
}

func New(cfg Config, handler http.Handler) *Daemon {
	return &Daemon{
		cfg:     cfg,
		handler: handler,
		logger:  xglog.WithComponent("daemon"),
		ready:   make(chan string, 1),
	}
}

// Addr blocks until the listener is bound or ctx ends.
func (d *Daemon) Addr(ctx context.Context) (string, error) {
	select {
	case addr := <-d.ready:
		d.ready <- addr
		return addr, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Run blocks until ctx is cancelled or the server fails, then drains
// in-flight requests and flushes telemetry.
func (d *Daemon) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", d.cfg.ListenAddr, err)
	}

	tp, err := telemetry.NewProvider(ctx, d.cfg.Telemetry)
	if err != nil {
		d.logger.Warn().Err(err).Str(xglog.FieldEvent, "telemetry.init_failed").Msg("continuing without tracing")
	}

	srv := &http.Server{
		Handler:           d.handler,
		ReadTimeout:       d.cfg.ReadTimeout,
		ReadHeaderTimeout: d.cfg.ReadHeaderTimeout,
		WriteTimeout:      d.cfg.WriteTimeout,
		IdleTimeout:       d.cfg.IdleTimeout,
		MaxHeaderBytes:    d.cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.logger.Info().
			Str(xglog.FieldEvent, "server.listening").
			Str("addr", ln.Addr().String()).
			Msg("HTTP server listening")
		d.ready <- ln.Addr().String()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return d.shutdown(srv, tp)
	})
	return g.Wait()
}

func (d *Daemon) shutdown(srv *http.Server, tp *telemetry.Provider) error {
	d.logger.Info().Str(xglog.FieldEvent, "server.shutdown").Msg("shutting down")

	timeout := d.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	d.logger.Info().Str(xglog.FieldEvent, "server.stopped").Msg("daemon stopped")
	return errors.Join(errs...)
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
