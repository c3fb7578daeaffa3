// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/tokbridge/internal/log"
)

// Environment keys.
const (
	EnvAPIKey          = "TOKBRIDGE_API_KEY"
	EnvAPISecret       = "TOKBRIDGE_API_SECRET"
	EnvAPIURL          = "TOKBRIDGE_API_URL"
	EnvUserAgent       = "TOKBRIDGE_USER_AGENT"
	EnvRequestTimeout  = "TOKBRIDGE_REQUEST_TIMEOUT"
	EnvRateLimit       = "TOKBRIDGE_RATE_LIMIT"
	EnvRateBurst       = "TOKBRIDGE_RATE_BURST"
	EnvSessionID       = "TOKBRIDGE_SESSION_ID"
	EnvListenAddr      = "TOKBRIDGE_LISTEN_ADDR"
	EnvAllowedOrigins  = "TOKBRIDGE_ALLOWED_ORIGINS"
	EnvDemoRateLimit   = "TOKBRIDGE_DEMO_RATE_LIMIT"
	EnvLogLevel        = "TOKBRIDGE_LOG_LEVEL"
	EnvLogService      = "TOKBRIDGE_LOG_SERVICE"
	EnvTracingEnabled  = "TOKBRIDGE_TRACING_ENABLED"
	EnvTracingExporter = "TOKBRIDGE_TRACING_EXPORTER"
	EnvTracingEndpoint = "TOKBRIDGE_TRACING_ENDPOINT"
	EnvTracingSampling = "TOKBRIDGE_TRACING_SAMPLING_RATE"
	EnvEnvironment     = "TOKBRIDGE_ENVIRONMENT"
)

// ParseString reads key from the environment or returns defaultValue.
func ParseString(key, defaultValue string) string {
	return parseEnv(logger(), key, defaultValue, func(s string) (string, error) { return s, nil })
}

// ParseInt falls back to defaultValue when the variable is unset, empty or not an integer.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(logger(), key, defaultValue, strconv.Atoi)
}

func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(logger(), key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseDuration accepts Go duration syntax such as "5s".
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(logger(), key, defaultValue, time.ParseDuration)
}

// ParseBool accepts true/false, 1/0 and yes/no, case-insensitive.
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(logger(), key, defaultValue, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("invalid boolean %q", s)
	})
}

// ParseList splits a comma-separated variable, dropping blank entries.
func ParseList(key string, defaultValue []string) []string {
	return parseEnv(logger(), key, defaultValue, func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	})
}

func logger() zerolog.Logger { return xglog.WithComponent("config") }

// parseEnv logs where each value came from. Values of sensitive keys are
// never logged.
func parseEnv[T any](logger zerolog.Logger, key string, defaultValue T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok {
		logger.Debug().Str("key", key).Str("source", "default").Msg("using default value")
		return defaultValue
	}
	if raw == "" {
		logger.Debug().Str("key", key).Str("source", "default").Msg("using default value (environment variable is empty)")
		return defaultValue
	}

	v, err := parse(raw)
	sensitive := isSensitiveKey(key)
	if err != nil {
		ev := logger.Warn().Str("key", key)
		if !sensitive {
			ev = ev.Str("value", raw)
		}
		ev.Msg("invalid value in environment variable, using default")
		return defaultValue
	}

	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if sensitive {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", raw)
	}
	ev.Msg("using environment variable")
	return v
}
