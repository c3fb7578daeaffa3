// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package archive models the provider's archive (recording) resources.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/tokbridge/internal/sdkerr"
)

// Status is the lifecycle state of an archive. Unknown values are kept verbatim.
type Status string

const (
	StatusStarted   Status = "started"
	StatusStopped   Status = "stopped"
	StatusPaused    Status = "paused"
	StatusAvailable Status = "available"
	StatusUploaded  Status = "uploaded"
	StatusDeleted   Status = "deleted"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// Deletable reports whether the provider accepts a delete in this state.
func (s Status) Deletable() bool {
	return s == StatusAvailable || s == StatusUploaded
}

// Recording reports whether the archive is still capturing media.
func (s Status) Recording() bool {
	return s == StatusStarted || s == StatusPaused
}

// Archive mirrors the provider's archive JSON object.
type Archive struct {
	ID        string  `json:"id"`
	SessionID string  `json:"sessionId"`
	PartnerID Int64   `json:"partnerId"`
	Status    Status  `json:"status"`
	Name      string  `json:"name"`
	Reason    string  `json:"reason"`
	CreatedAt Int64   `json:"createdAt"` // unix milliseconds
	Duration  Int64   `json:"duration"`  // seconds
	Size      Int64   `json:"size"`      // bytes
	URL       *string `json:"url"`       // set once the archive is available
}

// Created returns CreatedAt as a time.Time.
func (a Archive) Created() time.Time {
	return time.UnixMilli(int64(a.CreatedAt))
}

// List is one window of the provider's archive listing.
type List struct {
	Count int       `json:"count"`
	Items []Archive `json:"items"`
}

var (
	errMissingID      = errors.New("archive: missing id")
	errMissingSession = errors.New("archive: missing sessionId")
	errMissingStatus  = errors.New("archive: missing status")
	errMissingCount   = errors.New("archive list: missing count")
)

// ParseArchive decodes a single archive object.
func ParseArchive(data []byte) (Archive, error) {
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return Archive{}, sdkerr.MalformedResponse("", err)
	}
	if err := a.validate(); err != nil {
		return Archive{}, sdkerr.MalformedResponse("", err)
	}
	return a, nil
}

func (a Archive) validate() error {
	switch {
	case a.ID == "":
		return errMissingID
	case a.SessionID == "":
		return errMissingSession
	case a.Status == "":
		return errMissingStatus
	}
	return nil
}

// ParseList decodes an archive listing. A single malformed item fails the
// whole parse.
func ParseList(data []byte) (List, error) {
	var raw struct {
		Count *int              `json:"count"`
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return List{}, sdkerr.MalformedResponse("", err)
	}
	if raw.Count == nil {
		return List{}, sdkerr.MalformedResponse("", errMissingCount)
	}

	out := List{Count: *raw.Count, Items: make([]Archive, 0, len(raw.Items))}
	for i, item := range raw.Items {
		a, err := ParseArchive(item)
		if err != nil {
			return List{}, fmt.Errorf("item %d: %w", i, err)
		}
		out.Items = append(out.Items, a)
	}
	return out, nil
}
