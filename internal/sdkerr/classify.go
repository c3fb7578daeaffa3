// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sdkerr

import (
	"errors"
	"net/http"
)

// Op names a SessionClient operation.
type Op string

const (
	OpCreateSession Op = "create_session"
	OpGenerateToken Op = "generate_token"
	OpVerifyToken   Op = "verify_token"
	OpStartArchive  Op = "start_archive"
	OpStopArchive   Op = "stop_archive"
	OpDeleteArchive Op = "delete_archive"
	OpGetArchive    Op = "get_archive"
	OpListArchives  Op = "list_archives"
)

// Sub is the sub-kind of a RequestFailed error.
type Sub string

func (s Sub) Error() string { return string(s) }

const (
	SubInvalidSession   Sub = "invalid-session"
	SubInvalidKey       Sub = "invalid-key"
	SubNoSuchSession    Sub = "no-such-session"
	SubAlreadyRecording Sub = "already-recording"
	SubNotRecording     Sub = "not-recording"
	SubProviderError    Sub = "provider-error"
	SubUnclassified     Sub = "unclassified"
)

var operationSubs = map[Op]map[int]Sub{
	OpStartArchive: {
		http.StatusBadRequest:          SubInvalidSession,
		http.StatusForbidden:           SubInvalidKey,
		http.StatusNotFound:            SubNoSuchSession,
		http.StatusConflict:            SubAlreadyRecording,
		http.StatusInternalServerError: SubProviderError,
	},
	OpStopArchive: {
		http.StatusBadRequest:          SubInvalidSession,
		http.StatusForbidden:           SubInvalidKey,
		http.StatusConflict:            SubNotRecording,
		http.StatusInternalServerError: SubProviderError,
	},
	OpDeleteArchive: {
		http.StatusForbidden:           SubInvalidKey,
		http.StatusInternalServerError: SubProviderError,
	},
	OpListArchives: {
		http.StatusForbidden:           SubInvalidKey,
		http.StatusInternalServerError: SubProviderError,
	},
	OpCreateSession: {
		http.StatusForbidden:           SubInvalidKey,
		http.StatusInternalServerError: SubProviderError,
	},
	OpGetArchive: {
		http.StatusForbidden:           SubInvalidKey,
		http.StatusInternalServerError: SubProviderError,
	},
}

// Classify maps a provider status to the sub-kind defined for op.
func Classify(op Op, status int) Sub {
	if sub, ok := operationSubs[op][status]; ok {
		return sub
	}
	return SubUnclassified
}

// Annotate stamps op and its classified sub-kind onto a RequestFailed error.
// Other errors are returned unchanged.
func Annotate(op Op, err error) error {
	var e *Error
	if !errors.As(err, &e) || !errors.Is(e.Kind, ErrRequestFailed) {
		return err
	}
	out := *e
	out.Op = op
	out.Sub = Classify(op, e.Status)
	return &out
}
