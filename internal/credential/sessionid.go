// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package credential holds the account credential, the session-id codec and
// the token signer. Nothing in here performs I/O.
package credential

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/ManuGH/tokbridge/internal/sdkerr"
)

const (
	sessionIDPrefixLen = 2
	sessionIDDelimiter = "~"
	// The provider strips base64 padding, so 0, 1 and 2 '=' are tried in order.
	maxPaddingProbe = 2
)

var errNoDelimiter = errors.New("no delimiter in decoded session id")

var urlSafeReplacer = strings.NewReplacer("-", "+", "_", "/")

// DecodeSessionID returns the account key embedded in a provider session id.
func DecodeSessionID(sessionID string) (int, error) {
	if sessionID == "" {
		return 0, sdkerr.InvalidArgument(sdkerr.OpGenerateToken, "Session not valid")
	}
	if len(sessionID) <= sessionIDPrefixLen {
		return 0, sdkerr.SessionNotFound(sdkerr.OpGenerateToken, errNoDelimiter)
	}

	payload := urlSafeReplacer.Replace(sessionID[sessionIDPrefixLen:])
	decoded, err := probeDecode(payload)
	if err != nil {
		return 0, sdkerr.SessionNotFound(sdkerr.OpGenerateToken, err)
	}

	fields := strings.Split(decoded, sessionIDDelimiter)
	if len(fields) < 2 {
		return 0, sdkerr.SessionNotFound(sdkerr.OpGenerateToken, errNoDelimiter)
	}
	key, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, sdkerr.SessionNotFound(sdkerr.OpGenerateToken, err)
	}
	return key, nil
}

// probeDecode tries each padding length and stops at the first result that
// contains the delimiter.
func probeDecode(payload string) (string, error) {
	latin1 := charmap.ISO8859_1.NewDecoder()
	for pad := 0; pad <= maxPaddingProbe; pad++ {
		raw, err := base64.StdEncoding.DecodeString(payload + strings.Repeat("=", pad))
		if err != nil {
			continue
		}
		text, err := latin1.Bytes(raw)
		if err != nil {
			return "", err
		}
		if strings.Contains(string(text), sessionIDDelimiter) {
			return string(text), nil
		}
	}
	return "", errNoDelimiter
}
