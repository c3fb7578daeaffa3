// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package demo exposes the archiving sample as a small JSON REST resource
// mounted under /jsonServices.
package demo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/tokbridge/internal/archive"
	"github.com/ManuGH/tokbridge/internal/credential"
	"github.com/ManuGH/tokbridge/internal/demo/middleware"
	xglog "github.com/ManuGH/tokbridge/internal/log"
	"github.com/ManuGH/tokbridge/internal/opentok"
	"github.com/ManuGH/tokbridge/internal/sdkerr"
)

// BasePath is where the resource is mounted.
const BasePath = "/jsonServices"

// SessionAPI is the subset of opentok.Client the resource drives.
type SessionAPI interface {
	APIKey() int
	CreateSession(ctx context.Context, props *opentok.SessionProperties) (string, error)
	GenerateToken(sessionID string, opts credential.TokenOptions) (string, error)
	StartArchive(ctx context.Context, sessionID, name string) (archive.Archive, error)
	StopArchive(ctx context.Context, archiveID string) (archive.Archive, error)
	DeleteArchive(ctx context.Context, archiveID string) error
	ListArchives(ctx context.Context, offset, count int) (archive.List, error)
}

// Options tune the router.
type Options struct {
	// SessionID pins retrievecredentials to an existing session.
	SessionID string
	Stack     middleware.StackConfig
}

// Handler serves the demo routes. The cached session id is its only mutable state.
type Handler struct {
	api SessionAPI

	mu        sync.Mutex
	sessionID string
}

// New returns a Handler bound to api.
func New(api SessionAPI, sessionID string) *Handler {
	return &Handler{api: api, sessionID: sessionID}
}

// NewRouter mounts the resource plus /healthz and /metrics behind the ingress stack.
func NewRouter(api SessionAPI, opts Options) http.Handler {
	h := New(api, opts.SessionID)
	r := middleware.NewRouter(opts.Stack)
	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Route(BasePath, h.Routes)
	return r
}

// Routes registers the resource on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/start/{sessionId}/{archiveName}", h.start)
	r.Post("/stop/{archiveId}", h.stop)
	r.Delete("/delete/{archiveId}", h.remove)
	r.Get("/listarchives", h.list)
	r.Get("/retrievecredentials", h.credentials)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	a, err := h.api.StartArchive(r.Context(), pathParam(r, "sessionId"), pathParam(r, "archiveName"))
	if err != nil {
		writeFailure(w, r, sdkerr.OpStartArchive, err)
		return
	}
	writeJSON(w, a)
}

func (h *Handler) stop(w http.ResponseWriter, r *http.Request) {
	a, err := h.api.StopArchive(r.Context(), pathParam(r, "archiveId"))
	if err != nil {
		writeFailure(w, r, sdkerr.OpStopArchive, err)
		return
	}
	writeJSON(w, a)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteArchive(r.Context(), pathParam(r, "archiveId")); err != nil {
		writeFailure(w, r, sdkerr.OpDeleteArchive, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Archive Deleted"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	count, err := queryInt(r, "count", opentok.DefaultListCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "count must be an integer")
		return
	}

	list, err := h.api.ListArchives(r.Context(), offset, count)
	if err != nil {
		writeFailure(w, r, sdkerr.OpListArchives, err)
		return
	}
	writeJSON(w, list)
}

type credentialsResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	APIKey    string `json:"apiKey"`
}

func (h *Handler) credentials(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.session(r.Context())
	if err != nil {
		writeFailure(w, r, sdkerr.OpCreateSession, err)
		return
	}
	token, err := h.api.GenerateToken(sessionID, credential.TokenOptions{})
	if err != nil {
		writeFailure(w, r, sdkerr.OpGenerateToken, err)
		return
	}
	writeJSON(w, credentialsResponse{
		SessionID: sessionID,
		Token:     token,
		APIKey:    strconv.Itoa(h.api.APIKey()),
	})
}

// session returns the configured or cached session id, creating one on first use.
func (h *Handler) session(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessionID != "" {
		return h.sessionID, nil
	}
	id, err := h.api.CreateSession(ctx, nil)
	if err != nil {
		return "", err
	}
	h.sessionID = id
	return id, nil
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// pathParam undoes percent-encoding chi leaves in place when it routed on
// RawPath. Without a RawPath the parameter is already decoded.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// errorBody is the original sample's failure contract, sent with HTTP 200.
type errorBody struct {
	Code    string `json:"errorcode"`
	Message string `json:"errormessage"`
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, errorBody{Code: strconv.Itoa(code), Message: message})
}

func writeFailure(w http.ResponseWriter, r *http.Request, op sdkerr.Op, err error) {
	code, message := Describe(op, err)

	logger := xglog.WithComponentFromContext(r.Context(), "demo")
	ev := logger.Warn()
	if code >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Err(err).
		Str(xglog.FieldEvent, "demo.failure").
		Str(xglog.FieldOperation, string(op)).
		Int(xglog.FieldStatus, code).
		Msg("operation failed")

	writeError(w, code, message)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// Describe maps an SDK error to the display code and message of op.
func Describe(op sdkerr.Op, err error) (int, string) {
	switch {
	case errors.Is(err, sdkerr.ErrInvalidArgument), errors.Is(err, sdkerr.ErrSessionNotFound):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, sdkerr.ErrMalformedResponse):
		return http.StatusInternalServerError, messageOTError
	case errors.Is(err, sdkerr.ErrRequestFailed):
		status := sdkerr.StatusOf(err)
		if msg, ok := messages[op][status]; ok {
			return status, msg
		}
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, messageOTError
	}
	return http.StatusInternalServerError, messageOTError
}

const (
	messageInvalidSession = "Invalid SessionId or invalid action or no clients connected to OT session"
	messageInvalidKey     = "Invalid API_KEY or PARTNER_SECRET"
	messageNoSession      = "Session does not exist"
	messageStartConflict  = "Session already being recorded or you are attempting to record p2p session"
	messageStopConflict   = "Attempting to stop an archive not currently recorded"
	messageOTError        = "OpenTok Error"
)

var messages = map[sdkerr.Op]map[int]string{
	sdkerr.OpStartArchive: {
		http.StatusBadRequest:          messageInvalidSession,
		http.StatusForbidden:           messageInvalidKey,
		http.StatusNotFound:            messageNoSession,
		http.StatusConflict:            messageStartConflict,
		http.StatusInternalServerError: messageOTError,
	},
	sdkerr.OpStopArchive: {
		http.StatusBadRequest:          messageInvalidSession,
		http.StatusForbidden:           messageInvalidKey,
		http.StatusConflict:            messageStopConflict,
		http.StatusInternalServerError: messageOTError,
	},
	sdkerr.OpDeleteArchive: {
		http.StatusForbidden:           messageInvalidKey,
		http.StatusInternalServerError: messageOTError,
	},
	sdkerr.OpListArchives: {
		http.StatusForbidden:           messageInvalidKey,
		http.StatusInternalServerError: messageOTError,
	},
	sdkerr.OpCreateSession: {
		http.StatusForbidden:           messageInvalidKey,
		http.StatusInternalServerError: messageOTError,
	},
}
