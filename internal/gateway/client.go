// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package gateway executes signed HTTP calls against the provider's REST API.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/tokbridge/internal/credential"
	xglog "github.com/ManuGH/tokbridge/internal/log"
	"github.com/ManuGH/tokbridge/internal/sdkerr"
	"github.com/ManuGH/tokbridge/internal/telemetry"
	"github.com/ManuGH/tokbridge/internal/version"
)

const (
	// DefaultBaseURL is the provider's production endpoint.
	DefaultBaseURL = "https://api.tokbox.com"

	HeaderPartnerAuth = "X-TB-PARTNER-AUTH"
	HeaderVersion     = "X-TB-VERSION"
	ProtocolVersion   = "1"
)

// Options configures the gateway.
type Options struct {
	BaseURL   string
	UserAgent string
	// HTTPClient overrides the default otelhttp-instrumented client.
	HTTPClient *http.Client
	// RateLimit throttles outbound calls client-side; 0 disables it.
	RateLimit      rate.Limit
	RateLimitBurst int
}

// Client is safe for concurrent use; it holds no per-call state.
type Client struct {
	base      string
	cred      credential.Credential
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// New creates a gateway bound to cred.
func New(cred credential.Credential, opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = "tokbridge-go/" + version.Version
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}
	return &Client{
		base:      base,
		cred:      cred,
		userAgent: ua,
		http:      hc,
		limiter:   limiter,
	}
}

// BaseURL returns the normalized provider base URL.
func (c *Client) BaseURL() string { return c.base }

// Get issues a GET and returns the response body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

// Post issues a POST. A non-nil body is sent as is; otherwise non-empty form
// values are sent form-encoded.
func (c *Client) Post(ctx context.Context, path string, header http.Header, form url.Values, body []byte) ([]byte, error) {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	var payload []byte
	switch {
	case body != nil:
		payload = body
	case len(form) > 0:
		payload = []byte(form.Encode())
		if h.Get("Content-Type") == "" {
			h.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	return c.do(ctx, http.MethodPost, path, h, payload)
}

// Delete issues a DELETE and returns the (possibly empty) response body.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, payload []byte) ([]byte, error) {
	route := routeTemplate(path)
	ctx, span := telemetry.Tracer("tokbridge.gateway").Start(ctx, "tokbridge.gateway.request",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	logger := xglog.WithComponentFromContext(ctx, "gateway")
	start := time.Now()

	body, status, err := c.exchange(ctx, method, path, header, payload)
	duration := time.Since(start)
	transportErr := err
	if status > 0 {
		transportErr = nil
	}
	recordMetrics(method, route, status, duration, transportErr)

	span.SetAttributes(telemetry.HTTPAttributes(method, route, c.base+route, status)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debug().
			Err(err).
			Str(xglog.FieldEvent, "gateway.request").
			Str(xglog.FieldMethod, method).
			Str(xglog.FieldRoute, route).
			Int(xglog.FieldStatus, status).
			Int64(xglog.FieldDurationMS, duration.Milliseconds()).
			Msg("provider request failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	logger.Debug().
		Str(xglog.FieldEvent, "gateway.request").
		Str(xglog.FieldMethod, method).
		Str(xglog.FieldRoute, route).
		Int(xglog.FieldStatus, status).
		Int64(xglog.FieldDurationMS, duration.Milliseconds()).
		Msg("provider request completed")
	return body, nil
}

// exchange performs exactly one HTTP round trip. Every failure is a
// RequestFailed error; transport failures carry status 500.
func (c *Client) exchange(ctx context.Context, method, path string, header http.Header, payload []byte) ([]byte, int, error) {
	if c.limiter != nil {
		waitStart := time.Now()
		err := c.limiter.Wait(ctx)
		limiterWait.Observe(time.Since(waitStart).Seconds())
		if err != nil {
			return nil, 0, transportError(err)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return nil, 0, transportError(err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, sdkerr.RequestFailed(resp.StatusCode,
			"Error response: message: "+statusText(resp), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, transportError(fmt.Errorf("read body: %w", err))
	}
	return body, resp.StatusCode, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set(HeaderPartnerAuth, c.cred.PartnerAuth())
	req.Header.Set(HeaderVersion, ProtocolVersion)
	req.Header.Set("User-Agent", c.userAgent)
}

func transportError(err error) error {
	return sdkerr.RequestFailed(http.StatusInternalServerError, err.Error(), err)
}

// statusText prefers the reason phrase the provider sent.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
