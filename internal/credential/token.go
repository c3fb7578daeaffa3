// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package credential

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1" // #nosec G505 -- HMAC-SHA1 is the provider's token signature
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ManuGH/tokbridge/internal/sdkerr"
)

const (
	tokenSentinel = "T1=="

	// DefaultTokenTTL applies when TokenOptions.ExpireTime is zero.
	DefaultTokenTTL = 24 * time.Hour
	// MaxTokenTTL bounds an explicit expire time.
	MaxTokenTTL = 30 * 24 * time.Hour
	// MaxConnectionData is the limit on connection metadata, in characters.
	MaxConnectionData = 1000
)

// TokenOptions are the optional token parameters. The zero value yields a
// publisher token valid for DefaultTokenTTL with no connection data.
type TokenOptions struct {
	Role Role
	// ExpireTime is an absolute unix timestamp in seconds; 0 means now+24h.
	ExpireTime     int64
	ConnectionData string
}

// Claims are the fields carried inside a token.
type Claims struct {
	APIKey         int
	SessionID      string
	Role           Role
	CreateTime     int64
	ExpireTime     int64
	Nonce          uint32
	ConnectionData string
}

// Expires returns the expiry as a time.Time.
func (c Claims) Expires() time.Time { return time.Unix(c.ExpireTime, 0) }

// GenerateToken validates sessionID against cred and returns a signed token.
func GenerateToken(cred Credential, sessionID string, opts TokenOptions, now time.Time) (string, error) {
	key, err := DecodeSessionID(sessionID)
	if err != nil {
		return "", err
	}
	if key != cred.APIKey() {
		return "", sdkerr.SessionNotFound(sdkerr.OpGenerateToken,
			fmt.Errorf("session belongs to account %d", key))
	}

	role := opts.Role
	if role == "" {
		role = DefaultRole
	}
	if !role.Valid() {
		return "", sdkerr.InvalidArgument(sdkerr.OpGenerateToken, "unknown role %q", role)
	}

	expire, err := resolveExpiry(opts.ExpireTime, now)
	if err != nil {
		return "", err
	}

	if utf8.RuneCountInString(opts.ConnectionData) > MaxConnectionData {
		return "", sdkerr.InvalidArgument(sdkerr.OpGenerateToken,
			"Connection data must be less than %d characters", MaxConnectionData)
	}

	nonce, err := newNonce()
	if err != nil {
		return "", fmt.Errorf("token nonce: %w", err)
	}

	claims := Claims{
		APIKey:         cred.APIKey(),
		SessionID:      sessionID,
		Role:           role,
		CreateTime:     now.Unix(),
		ExpireTime:     expire,
		Nonce:          nonce,
		ConnectionData: opts.ConnectionData,
	}
	return sign(cred, claims), nil
}

func resolveExpiry(expireTime int64, now time.Time) (int64, error) {
	if expireTime == 0 {
		return now.Add(DefaultTokenTTL).Unix(), nil
	}
	if expireTime < now.Unix() {
		return 0, sdkerr.InvalidArgument(sdkerr.OpGenerateToken, "Expire time must be in the future")
	}
	if expireTime > now.Add(MaxTokenTTL).Unix() {
		return 0, sdkerr.InvalidArgument(sdkerr.OpGenerateToken, "Expire time must be in the next 30 days")
	}
	return expireTime, nil
}

// dataString renders the signed portion of a token. Field order is fixed.
func dataString(c Claims) string {
	var b strings.Builder
	b.WriteString("session_id=")
	b.WriteString(c.SessionID)
	b.WriteString("&create_time=")
	b.WriteString(strconv.FormatInt(c.CreateTime, 10))
	b.WriteString("&role=")
	b.WriteString(string(c.Role))
	b.WriteString("&nonce=")
	b.WriteString(strconv.FormatUint(uint64(c.Nonce), 10))
	b.WriteString("&expire_time=")
	b.WriteString(strconv.FormatInt(c.ExpireTime, 10))
	if c.ConnectionData != "" {
		b.WriteString("&connection_data=")
		b.WriteString(url.QueryEscape(c.ConnectionData))
	}
	return b.String()
}

func sign(cred Credential, c Claims) string {
	data := dataString(c)
	inner := "partner_id=" + strconv.Itoa(cred.APIKey()) + "&sig=" + signature(cred, data) + ":" + data
	return tokenSentinel + base64.StdEncoding.EncodeToString([]byte(inner))
}

func signature(cred Credential, data string) string {
	mac := hmac.New(sha1.New, cred.secret())
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func newNonce() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]) >> 1, nil
}

var errBadToken = errors.New("token is not a valid signed token")

// VerifyToken checks the signature of token against cred and returns its claims.
func VerifyToken(cred Credential, token string) (Claims, error) {
	fail := func(format string, args ...any) (Claims, error) {
		e := sdkerr.InvalidArgument(sdkerr.OpVerifyToken, format, args...)
		e.Err = errBadToken
		return Claims{}, e
	}

	if !strings.HasPrefix(token, tokenSentinel) {
		return fail("missing %s prefix", tokenSentinel)
	}
	raw, err := base64.StdEncoding.DecodeString(token[len(tokenSentinel):])
	if err != nil {
		return fail("token body is not base64")
	}
	header, data, ok := strings.Cut(string(raw), ":")
	if !ok {
		return fail("token body has no signature separator")
	}

	hv, err := url.ParseQuery(header)
	if err != nil {
		return fail("token header: %v", err)
	}
	partner, err := strconv.Atoi(hv.Get("partner_id"))
	if err != nil || partner != cred.APIKey() {
		return fail("token issued for another account")
	}
	if !hmac.Equal([]byte(hv.Get("sig")), []byte(signature(cred, data))) {
		return fail("signature mismatch")
	}

	dv, err := url.ParseQuery(data)
	if err != nil {
		return fail("token data: %v", err)
	}
	c := Claims{
		APIKey:         partner,
		SessionID:      dv.Get("session_id"),
		Role:           Role(dv.Get("role")),
		ConnectionData: dv.Get("connection_data"),
	}
	if c.CreateTime, err = strconv.ParseInt(dv.Get("create_time"), 10, 64); err != nil {
		return fail("create_time: %v", err)
	}
	if c.ExpireTime, err = strconv.ParseInt(dv.Get("expire_time"), 10, 64); err != nil {
		return fail("expire_time: %v", err)
	}
	nonce, err := strconv.ParseUint(dv.Get("nonce"), 10, 32)
	if err != nil {
		return fail("nonce: %v", err)
	}
	c.Nonce = uint32(nonce)
	return c, nil
}
