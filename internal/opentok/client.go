// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package opentok is the server-side SDK façade: it owns the account
// credential and exposes session, token and archive operations.
package opentok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/tokbridge/internal/archive"
	"github.com/ManuGH/tokbridge/internal/credential"
	"github.com/ManuGH/tokbridge/internal/gateway"
	xglog "github.com/ManuGH/tokbridge/internal/log"
	"github.com/ManuGH/tokbridge/internal/sdkerr"
	"github.com/ManuGH/tokbridge/internal/telemetry"
)

const (
	// DefaultListCount is the window size used when ListArchives gets count 0.
	DefaultListCount = 50
	// MaxListCount is the provider's upper bound for one listing window.
	MaxListCount = 1000
)

// Options configures a Client.
type Options struct {
	Gateway gateway.Options
	// Now overrides the clock used for token timestamps.
	Now func() time.Time
}

// Client is safe for concurrent use. All fields are immutable after New.
type Client struct {
	cred credential.Credential
	gw   *gateway.Client
	now  func() time.Time
}

// New builds a Client for the given account.
func New(apiKey int, apiSecret string, opts Options) (*Client, error) {
	if apiKey <= 0 {
		return nil, sdkerr.InvalidArgument("", "api key must be a positive integer")
	}
	if strings.TrimSpace(apiSecret) == "" {
		return nil, sdkerr.InvalidArgument("", "api secret must not be empty")
	}
	cred := credential.New(apiKey, apiSecret)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		cred: cred,
		gw:   gateway.New(cred, opts.Gateway),
		now:  now,
	}, nil
}

// APIKey returns the account key the client signs with.
func (c *Client) APIKey() int { return c.cred.APIKey() }

// CreateSession asks the provider for a new session id.
func (c *Client) CreateSession(ctx context.Context, props *SessionProperties) (string, error) {
	ctx, span := c.startSpan(ctx, sdkerr.OpCreateSession, "")
	defer span.End()

	body, err := c.gw.Post(ctx, "/session/create", nil, props.Form(), nil)
	if err != nil {
		return "", c.fail(span, sdkerr.Annotate(sdkerr.OpCreateSession, err))
	}

	id, err := parseCreateSession(body)
	switch {
	case err == errSessionRejected:
		e := sdkerr.RequestFailed(http.StatusInternalServerError, "Unable to create session", err)
		return "", c.fail(span, sdkerr.Annotate(sdkerr.OpCreateSession, e))
	case err != nil:
		return "", c.fail(span, sdkerr.MalformedResponse(sdkerr.OpCreateSession, err))
	}

	logger := xglog.WithComponentFromContext(ctx, "opentok")
	logger.Info().
		Str(xglog.FieldEvent, "session.created").
		Str(xglog.FieldSessionID, id).
		Msg("session created")
	return id, nil
}

// GenerateToken signs a token for sessionID. The zero TokenOptions yields a
// publisher token that expires in 24 hours.
func (c *Client) GenerateToken(sessionID string, opts credential.TokenOptions) (string, error) {
	return credential.GenerateToken(c.cred, sessionID, opts, c.now())
}

// VerifyToken checks that token was signed with this client's secret.
func (c *Client) VerifyToken(token string) (credential.Claims, error) {
	return credential.VerifyToken(c.cred, token)
}

// StartArchive starts recording sessionID.
func (c *Client) StartArchive(ctx context.Context, sessionID, name string) (archive.Archive, error) {
	if sessionID == "" {
		return archive.Archive{}, sdkerr.InvalidArgument(sdkerr.OpStartArchive, "Session not valid")
	}
	ctx, span := c.startSpan(ctx, sdkerr.OpStartArchive, "")
	defer span.End()

	payload, err := json.Marshal(struct {
		SessionID string `json:"sessionId"`
		Name      string `json:"name,omitempty"`
	}{sessionID, name})
	if err != nil {
		return archive.Archive{}, c.fail(span, fmt.Errorf("encode start request: %w", err))
	}

	body, err := c.gw.Post(ctx, c.archivePath(""), jsonHeader(), nil, payload)
	if err != nil {
		return archive.Archive{}, c.fail(span, sdkerr.Annotate(sdkerr.OpStartArchive, err))
	}
	a, err := c.parseArchive(span, sdkerr.OpStartArchive, body)
	if err != nil {
		return archive.Archive{}, err
	}

	logger := xglog.WithComponentFromContext(ctx, "opentok")
	logger.Info().
		Str(xglog.FieldEvent, "archive.started").
		Str(xglog.FieldArchiveID, a.ID).
		Str(xglog.FieldSessionID, sessionID).
		Msg("archive started")
	return a, nil
}

// StopArchive stops a recording in progress.
func (c *Client) StopArchive(ctx context.Context, archiveID string) (archive.Archive, error) {
	if archiveID == "" {
		return archive.Archive{}, sdkerr.InvalidArgument(sdkerr.OpStopArchive, "archive id must not be empty")
	}
	ctx, span := c.startSpan(ctx, sdkerr.OpStopArchive, archiveID)
	defer span.End()

	body, err := c.gw.Post(ctx, c.archivePath(archiveID)+"/stop", jsonHeader(), nil, []byte{})
	if err != nil {
		return archive.Archive{}, c.fail(span, sdkerr.Annotate(sdkerr.OpStopArchive, err))
	}
	a, err := c.parseArchive(span, sdkerr.OpStopArchive, body)
	if err != nil {
		return archive.Archive{}, err
	}

	logger := xglog.WithComponentFromContext(ctx, "opentok")
	logger.Info().
		Str(xglog.FieldEvent, "archive.stopped").
		Str(xglog.FieldArchiveID, a.ID).
		Str("status", string(a.Status)).
		Msg("archive stopped")
	return a, nil
}

// DeleteArchive removes an archive from listings. For an available archive
// the media file is removed as well.
func (c *Client) DeleteArchive(ctx context.Context, archiveID string) error {
	if archiveID == "" {
		return sdkerr.InvalidArgument(sdkerr.OpDeleteArchive, "archive id must not be empty")
	}
	ctx, span := c.startSpan(ctx, sdkerr.OpDeleteArchive, archiveID)
	defer span.End()

	if _, err := c.gw.Delete(ctx, c.archivePath(archiveID)); err != nil {
		return c.fail(span, sdkerr.Annotate(sdkerr.OpDeleteArchive, err))
	}

	logger := xglog.WithComponentFromContext(ctx, "opentok")
	logger.Info().
		Str(xglog.FieldEvent, "archive.deleted").
		Str(xglog.FieldArchiveID, archiveID).
		Msg("archive deleted")
	return nil
}

// GetArchive fetches one archive.
func (c *Client) GetArchive(ctx context.Context, archiveID string) (archive.Archive, error) {
	if archiveID == "" {
		return archive.Archive{}, sdkerr.InvalidArgument(sdkerr.OpGetArchive, "archive id must not be empty")
	}
	ctx, span := c.startSpan(ctx, sdkerr.OpGetArchive, archiveID)
	defer span.End()

	body, err := c.gw.Get(ctx, c.archivePath(archiveID))
	if err != nil {
		return archive.Archive{}, c.fail(span, sdkerr.Annotate(sdkerr.OpGetArchive, err))
	}
	return c.parseArchive(span, sdkerr.OpGetArchive, body)
}

// ListArchives returns one window of archives, most recently started first.
// count 0 selects DefaultListCount.
func (c *Client) ListArchives(ctx context.Context, offset, count int) (archive.List, error) {
	if count == 0 {
		count = DefaultListCount
	}
	if offset < 0 {
		return archive.List{}, sdkerr.InvalidArgument(sdkerr.OpListArchives, "offset must not be negative")
	}
	if count < 1 || count > MaxListCount {
		return archive.List{}, sdkerr.InvalidArgument(sdkerr.OpListArchives, "count must be between 1 and %d", MaxListCount)
	}
	ctx, span := c.startSpan(ctx, sdkerr.OpListArchives, "")
	defer span.End()

	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("count", strconv.Itoa(count))
	body, err := c.gw.Get(ctx, c.archivePath("")+"?"+q.Encode())
	if err != nil {
		return archive.List{}, c.fail(span, sdkerr.Annotate(sdkerr.OpListArchives, err))
	}
	list, err := archive.ParseList(body)
	if err != nil {
		return archive.List{}, c.fail(span, fmt.Errorf("%s: %w", sdkerr.OpListArchives, err))
	}
	return list, nil
}

func (c *Client) archivePath(archiveID string) string {
	p := "/v2/partner/" + strconv.Itoa(c.cred.APIKey()) + "/archive"
	if archiveID != "" {
		p += "/" + url.PathEscape(archiveID)
	}
	return p
}

func (c *Client) parseArchive(span trace.Span, op sdkerr.Op, body []byte) (archive.Archive, error) {
	a, err := archive.ParseArchive(body)
	if err != nil {
		return archive.Archive{}, c.fail(span, fmt.Errorf("%s: %w", op, err))
	}
	span.SetAttributes(telemetry.ArchiveAttributes("", a.ID, string(a.Status))...)
	return a, nil
}

func (c *Client) startSpan(ctx context.Context, op sdkerr.Op, archiveID string) (context.Context, trace.Span) {
	ctx, span := telemetry.Tracer("tokbridge.opentok").Start(ctx, "tokbridge.opentok."+string(op))
	span.SetAttributes(telemetry.ArchiveAttributes(string(op), archiveID, "")...)
	return ctx, span
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if sub := sdkerr.SubOf(err); sub != "" {
		span.SetAttributes(telemetry.ErrorAttributes(string(sub))...)
	}
	return err
}

func jsonHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}
