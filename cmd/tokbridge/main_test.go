// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/tokbridge/internal/config"
	"github.com/ManuGH/tokbridge/internal/gateway"
	"github.com/ManuGH/tokbridge/internal/version"
)

const testSessionID = "1_MX40MjQyfn4"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func withCredentials(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "4242")
	t.Setenv(config.EnvAPISecret, "s3cret")
	if apiURL != "" {
		t.Setenv(config.EnvAPIURL, apiURL)
	}
}

func TestSessionIDFixtureDecodes(t *testing.T) {
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(testSessionID, "1_"))
	require.NoError(t, err)
	assert.Equal(t, "1~4242~~", string(raw))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, version.Version))
}

func TestTokenRoundTrip(t *testing.T) {
	withCredentials(t, "")

	out, err := run(t, "token", "--session", testSessionID, "--role", "moderator", "--data", "name=alice")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(token, "T1=="))

	out, err = run(t, "token", "inspect", token)
	require.NoError(t, err)
	var claims map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &claims))
	assert.Equal(t, testSessionID, claims["sessionId"])
	assert.Equal(t, "moderator", claims["role"])
	assert.Equal(t, "name=alice", claims["connectionData"])
	assert.EqualValues(t, 4242, claims["apiKey"])
}

func TestToken_UnknownRole(t *testing.T) {
	withCredentials(t, "")
	_, err := run(t, "token", "--session", testSessionID, "--role", "admin")
	assert.Error(t, err)
}

func TestToken_MissingCredentials(t *testing.T) {
	_, err := run(t, "token", "--session", testSessionID)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestServe_ListenError(t *testing.T) {
	withCredentials(t, "")
	t.Setenv(config.EnvLogLevel, "debug")

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = taken.Close() }()

	_, err = run(t, "serve", "--listen", taken.Addr().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestServe_StopsWhenContextEnds(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIKey = 4242
	cfg.APISecret = "s3cret"
	cfg.ListenAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, serve(ctx, cfg))
}

func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /session/create", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "enabled", r.FormValue("p2p.preference"))
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<sessions><Session><session_id>` + testSessionID + `</session_id></Session></sessions>`))
	})
	mux.HandleFunc("GET /v2/partner/4242/archive", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("offset"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`{"count":1,"items":[{"id":"a1","sessionId":"s","partnerId":4242,"status":"available","createdAt":1,"duration":"5","size":10,"url":"https://x"}]}`))
	})
	mux.HandleFunc("DELETE /v2/partner/4242/archive/a1", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(gateway.HeaderPartnerAuth) != "4242:s3cret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionCreate(t *testing.T) {
	withCredentials(t, fakeProvider(t).URL)
	out, err := run(t, "session", "create", "--p2p")
	require.NoError(t, err)
	assert.Equal(t, testSessionID+"\n", out)
}

func TestArchiveListAndDelete(t *testing.T) {
	withCredentials(t, fakeProvider(t).URL)

	out, err := run(t, "archive", "list", "--offset", "2", "--count", "3")
	require.NoError(t, err)
	var list struct {
		Count int `json:"count"`
		Items []struct {
			ID       string `json:"id"`
			Duration int    `json:"duration"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "a1", list.Items[0].ID)
	assert.Equal(t, 5, list.Items[0].Duration)

	out, err = run(t, "archive", "delete", "a1")
	require.NoError(t, err)
	assert.Equal(t, "deleted a1\n", out)
}

func TestArchive_ProviderRejectsSecret(t *testing.T) {
	srv := fakeProvider(t)
	t.Setenv(config.EnvAPIKey, "4242")
	t.Setenv(config.EnvAPISecret, "wrong")
	t.Setenv(config.EnvAPIURL, srv.URL)

	_, err := run(t, "archive", "get", "a1")
	assert.Error(t, err)
}

func TestArchiveStart_RequiresSession(t *testing.T) {
	_, err := run(t, "archive", "start")
	assert.Error(t, err)
}
