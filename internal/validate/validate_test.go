// SPDX-License-Identifier: MIT
package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"https", "https://api.opentok.com", false},
		{"http with port", "http://127.0.0.1:9000", false},
		{"empty", "", true},
		{"no host", "https://", true},
		{"ftp", "ftp://example.com", true},
		{"no scheme", "api.opentok.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("APIURL", tt.value, []string{"http", "https"})
			assert.Equal(t, tt.wantErr, !v.IsValid(), "err=%v", v.Err())
		})
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	for addr, ok := range map[string]bool{
		":8080":         true,
		"127.0.0.1:0":   true,
		"[::1]:443":     true,
		"localhost":     false,
		":http":         false,
		"0.0.0.0:70000": false,
	} {
		v := New()
		v.ListenAddr("ListenAddr", addr)
		assert.Equal(t, ok, v.IsValid(), addr)
	}
}

func TestValidator_Origin(t *testing.T) {
	for origin, ok := range map[string]bool{
		"*":                       true,
		"https://app.example.com": true,
		"http://localhost:3000":   true,
		"https://a.example/path":  false,
		"app.example.com":         false,
	} {
		v := New()
		v.Origin("AllowedOrigins", origin)
		assert.Equal(t, ok, v.IsValid(), origin)
	}
}

func TestValidator_Numbers(t *testing.T) {
	v := New()
	v.Positive("APIKey", 0)
	v.NonNegative("RateBurst", -1)
	v.FloatRange("SamplingRate", 1.5, 0, 1)
	v.OneOf("Exporter", "zipkin", []string{"grpc", "http"})
	v.NotEmpty("APISecret", "  ")

	err := v.Err()
	require.Error(t, err)
	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Errors(), 5)
	assert.Equal(t, "APIKey", ve.Errors()[0].Field)
	assert.Contains(t, err.Error(), "; ")
}

func TestValidator_ErrIsSnapshot(t *testing.T) {
	v := New()
	assert.NoError(t, v.Err())

	v.AddError("a", "bad", nil)
	err := v.Err()
	v.AddError("b", "bad", nil)

	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Errors(), 1)
}
