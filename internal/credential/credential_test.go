// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package credential

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/tokbridge/internal/sdkerr"
)

// makeSessionID mimics the provider: prefix + unpadded URL-safe base64.
func makeSessionID(payload string) string {
	return "1_" + base64.RawURLEncoding.EncodeToString([]byte(payload))
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestDecodeSessionID_PaddingVariants(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		pad     int
	}{
		{"no padding", "2~4242~x~", 0},
		{"one pad char", "1~4242~~Mon Jan 01~0.5~", 1},
		{"two pad chars", "1~4242~", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := makeSessionID(tc.payload)
			require.Equal(t, tc.pad, (4-len(id[2:])%4)%4, "fixture must exercise the intended padding")

			key, err := DecodeSessionID(id)
			require.NoError(t, err)
			assert.Equal(t, 4242, key)
		})
	}
}

func TestDecodeSessionID_ProviderSample(t *testing.T) {
	key, err := DecodeSessionID("2_MX4xMDB-flR1ZSBOb3YgMTkgMTE6MDk6NTggUFNUIDIwMTN-MC4zNzQxNzIxNX4")
	require.NoError(t, err)
	assert.Equal(t, 100, key)
}

func TestDecodeSessionID_Latin1Payload(t *testing.T) {
	id := "1_" + base64.RawURLEncoding.EncodeToString([]byte("1~31~caf\xe9~"))
	key, err := DecodeSessionID(id)
	require.NoError(t, err)
	assert.Equal(t, 31, key)
}

func TestDecodeSessionID_Failures(t *testing.T) {
	cases := []struct {
		name string
		in   string
		kind error
	}{
		{"empty", "", sdkerr.ErrInvalidArgument},
		{"prefix only", "1_", sdkerr.ErrSessionNotFound},
		{"not base64", "1_!!!!", sdkerr.ErrSessionNotFound},
		{"no delimiter", makeSessionID("hello world"), sdkerr.ErrSessionNotFound},
		{"single field", makeSessionID("abc~"), sdkerr.ErrSessionNotFound},
		{"non numeric key", makeSessionID("1~abc~"), sdkerr.ErrSessionNotFound},
		{"impossible length", "1_MX40M", sdkerr.ErrSessionNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := DecodeSessionID(tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
			assert.Zero(t, key)
		})
	}
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	cred := New(4242, "  s3cret \n")
	id := makeSessionID("1~4242~~")

	tok, err := GenerateToken(cred, id, TokenOptions{
		Role:           RoleModerator,
		ConnectionData: "username=Bob,userLevel=4",
	}, fixedNow)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok, "T1=="))

	claims, err := VerifyToken(New(4242, "s3cret"), tok)
	require.NoError(t, err)
	assert.Equal(t, 4242, claims.APIKey)
	assert.Equal(t, id, claims.SessionID)
	assert.Equal(t, RoleModerator, claims.Role)
	assert.Equal(t, fixedNow.Unix(), claims.CreateTime)
	assert.True(t, fixedNow.Add(DefaultTokenTTL).Equal(claims.Expires()))
	assert.Equal(t, "username=Bob,userLevel=4", claims.ConnectionData)
}

func TestGenerateToken_Defaults(t *testing.T) {
	cred := New(4242, "s3cret")
	tok, err := GenerateToken(cred, makeSessionID("1~4242~"), TokenOptions{}, fixedNow)
	require.NoError(t, err)

	claims, err := VerifyToken(cred, tok)
	require.NoError(t, err)
	assert.Equal(t, RolePublisher, claims.Role)
	assert.Empty(t, claims.ConnectionData)
}

func TestGenerateToken_AccountMismatch(t *testing.T) {
	_, err := GenerateToken(New(1, "s"), makeSessionID("1~4242~"), TokenOptions{}, fixedNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrSessionNotFound))
}

func TestGenerateToken_ConnectionDataLimit(t *testing.T) {
	cred := New(4242, "s3cret")
	id := makeSessionID("1~4242~")

	_, err := GenerateToken(cred, id, TokenOptions{ConnectionData: strings.Repeat("a", 1000)}, fixedNow)
	require.NoError(t, err)

	_, err = GenerateToken(cred, id, TokenOptions{ConnectionData: strings.Repeat("a", 1001)}, fixedNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidArgument))
}

func TestGenerateToken_Expiry(t *testing.T) {
	cred := New(4242, "s3cret")
	id := makeSessionID("1~4242~")

	explicit := fixedNow.Add(2 * time.Hour).Unix()
	tok, err := GenerateToken(cred, id, TokenOptions{ExpireTime: explicit}, fixedNow)
	require.NoError(t, err)
	claims, err := VerifyToken(cred, tok)
	require.NoError(t, err)
	assert.Equal(t, explicit, claims.ExpireTime)

	_, err = GenerateToken(cred, id, TokenOptions{ExpireTime: fixedNow.Add(MaxTokenTTL).Unix()}, fixedNow)
	assert.NoError(t, err, "exactly thirty days is allowed")

	_, err = GenerateToken(cred, id, TokenOptions{ExpireTime: fixedNow.Add(MaxTokenTTL).Unix() + 1}, fixedNow)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidArgument))

	_, err = GenerateToken(cred, id, TokenOptions{ExpireTime: fixedNow.Unix() - 1}, fixedNow)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidArgument))
}

func TestGenerateToken_UnknownRole(t *testing.T) {
	_, err := GenerateToken(New(4242, "s"), makeSessionID("1~4242~"), TokenOptions{Role: "admin"}, fixedNow)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidArgument))
}

func TestVerifyToken_Rejects(t *testing.T) {
	cred := New(4242, "s3cret")
	tok, err := GenerateToken(cred, makeSessionID("1~4242~"), TokenOptions{}, fixedNow)
	require.NoError(t, err)

	_, err = VerifyToken(New(4242, "other"), tok)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidArgument), "wrong secret")

	_, err = VerifyToken(New(7, "s3cret"), tok)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidArgument), "wrong account")

	_, err = VerifyToken(cred, "T2=="+tok[4:])
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidArgument), "wrong prefix")

	raw, _ := base64.StdEncoding.DecodeString(tok[4:])
	tampered := strings.Replace(string(raw), "role=publisher", "role=moderator", 1)
	_, err = VerifyToken(cred, "T1=="+base64.StdEncoding.EncodeToString([]byte(tampered)))
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidArgument), "tampered data")
}

func TestGenerateToken_NoncesDiffer(t *testing.T) {
	cred := New(4242, "s3cret")
	id := makeSessionID("1~4242~")
	a, err := GenerateToken(cred, id, TokenOptions{}, fixedNow)
	require.NoError(t, err)
	b, err := GenerateToken(cred, id, TokenOptions{}, fixedNow)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRole(t *testing.T) {
	r, err := ParseRole("MODERATOR")
	require.NoError(t, err)
	assert.Equal(t, RoleModerator, r)

	r, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RolePublisher, r)

	_, err = ParseRole("owner")
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidArgument))

	assert.True(t, RoleModerator.Includes(RolePublisher))
	assert.True(t, RolePublisher.Includes(RoleSubscriber))
	assert.True(t, RolePublisher.Includes(RolePublisher))
	assert.False(t, RoleSubscriber.Includes(RolePublisher))
	assert.False(t, Role("owner").Includes(RoleSubscriber))
}

func TestCredential_StringMasksSecret(t *testing.T) {
	c := New(99, "topsecret")
	assert.Equal(t, "99:***", c.String())
	assert.Equal(t, "99:topsecret", c.PartnerAuth())
}
