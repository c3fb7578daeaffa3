// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package credential

import (
	"strconv"
	"strings"
)

// Credential is the account key/secret pair. It is immutable once built.
type Credential struct {
	apiKey    int
	apiSecret string
}

// New builds a Credential. Surrounding whitespace is trimmed from the secret.
func New(apiKey int, apiSecret string) Credential {
	return Credential{apiKey: apiKey, apiSecret: strings.TrimSpace(apiSecret)}
}

// APIKey returns the numeric account key.
func (c Credential) APIKey() int { return c.apiKey }

// PartnerAuth returns the "key:secret" value of the provider's auth header.
func (c Credential) PartnerAuth() string {
	return strconv.Itoa(c.apiKey) + ":" + c.apiSecret
}

// String masks the secret so the credential is safe to log.
func (c Credential) String() string {
	return strconv.Itoa(c.apiKey) + ":***"
}

func (c Credential) secret() []byte { return []byte(c.apiSecret) }
