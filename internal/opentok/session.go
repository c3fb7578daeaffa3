// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package opentok

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"net/url"
	"strings"
)

// P2P preference values accepted by the provider.
const (
	P2PEnabled  = "enabled"
	P2PDisabled = "disabled"
)

// SessionProperties are the optional session-create parameters.
type SessionProperties struct {
	// Location is an IP address hint used to pick the media server region.
	Location string
	// P2PPreference is P2PEnabled, P2PDisabled or empty for the provider default.
	P2PPreference string
	// Extra carries additional provider properties verbatim.
	Extra map[string]string
}

// Form encodes the properties as session-create form fields.
func (p *SessionProperties) Form() url.Values {
	v := url.Values{}
	if p == nil {
		return v
	}
	for k, val := range p.Extra {
		v.Set(k, val)
	}
	if p.Location != "" {
		v.Set("location", p.Location)
	}
	if p.P2PPreference != "" {
		v.Set("p2p.preference", p.P2PPreference)
	}
	return v
}

var (
	errSessionRejected = errors.New("provider returned an error element")
	errNoSessionID     = errors.New("no session_id element in response")
)

// parseCreateSession walks the XML response and returns the text of the first
// session_id element under Session, or errSessionRejected when an error
// element appears under Errors.
func parseCreateSession(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []string
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "error" && parentIs(stack, "Errors") {
				return "", errSessionRejected
			}
			stack = append(stack, t.Name.Local)
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if t.Name.Local == "session_id" && len(stack) >= 2 && stack[len(stack)-2] == "Session" {
				if id := strings.TrimSpace(text.String()); id != "" {
					return id, nil
				}
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return "", errNoSessionID
}

func parentIs(stack []string, name string) bool {
	return len(stack) > 0 && stack[len(stack)-1] == name
}
