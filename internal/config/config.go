// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads tokbridge settings with precedence ENV > YAML file > defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/tokbridge/internal/validate"
)

const (
	DefaultAPIURL         = "https://api.tokbox.com"
	DefaultListenAddr     = ":8080"
	DefaultRequestTimeout = 30 * time.Second
	DefaultDemoRateLimit  = 120
	DefaultLogLevel       = "info"
	DefaultLogService     = "tokbridge"
)

// Config is the resolved configuration of one process.
type Config struct {
	APIKey    int    `yaml:"apiKey"`
	APISecret string `yaml:"apiSecret"`
	APIURL    string `yaml:"apiUrl"`
	UserAgent string `yaml:"userAgent"`
	// RequestTimeout bounds one provider round trip.
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	// RateLimit is the outbound budget in requests per second; 0 disables it.
	RateLimit float64 `yaml:"rateLimit"`
	RateBurst int     `yaml:"rateBurst"`

	// SessionID pins the demo to an existing session instead of creating one.
	SessionID      string   `yaml:"sessionId"`
	ListenAddr     string   `yaml:"listenAddr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	// DemoRateLimit is the inbound budget per client IP per minute; 0 disables it.
	DemoRateLimit int `yaml:"demoRateLimit"`

	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	Tracing TracingConfig `yaml:"tracing"`
}

// TracingConfig mirrors telemetry.Config in file form.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// Defaults returns a Config with every optional field populated.
func Defaults() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: DefaultRequestTimeout,
		ListenAddr:     DefaultListenAddr,
		DemoRateLimit:  DefaultDemoRateLimit,
		LogLevel:       DefaultLogLevel,
		LogService:     DefaultLogService,
		Tracing: TracingConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	v := validate.New()
	v.Positive("APIKey", c.APIKey)
	v.NotEmpty("APISecret", c.APISecret)
	v.URL("APIURL", c.APIURL, []string{"http", "https"})
	v.NonNegative("RateBurst", c.RateBurst)
	v.NonNegative("DemoRateLimit", c.DemoRateLimit)
	if c.RateLimit < 0 {
		v.AddError("RateLimit", "must be >= 0", c.RateLimit)
	}
	if c.RequestTimeout < 0 {
		v.AddError("RequestTimeout", "must be >= 0", c.RequestTimeout)
	}
	v.ListenAddr("ListenAddr", c.ListenAddr)
	for _, o := range c.AllowedOrigins {
		v.Origin("AllowedOrigins", o)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil || c.LogLevel == "" {
		v.AddError("LogLevel", "unknown log level", c.LogLevel)
	}
	if c.Tracing.Enabled {
		v.OneOf("Tracing.Exporter", c.Tracing.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Tracing.Endpoint", c.Tracing.Endpoint)
		v.FloatRange("Tracing.SamplingRate", c.Tracing.SamplingRate, 0, 1)
	}
	return v.Err()
}

// String renders the configuration for logs with the secret masked.
func (c Config) String() string {
	secret := ""
	if c.APISecret != "" {
		secret = maskedValue
	}
	return fmt.Sprintf(
		"apiKey=%d apiSecret=%s apiUrl=%s userAgent=%q requestTimeout=%s rateLimit=%g rateBurst=%d "+
			"sessionId=%q listenAddr=%s allowedOrigins=%v demoRateLimit=%d logLevel=%s logService=%s "+
			"tracing.enabled=%t tracing.exporter=%s tracing.endpoint=%s",
		c.APIKey, secret, MaskURL(c.APIURL), c.UserAgent, c.RequestTimeout, c.RateLimit, c.RateBurst,
		c.SessionID, c.ListenAddr, c.AllowedOrigins, c.DemoRateLimit, c.LogLevel, c.LogService,
		c.Tracing.Enabled, c.Tracing.Exporter, c.Tracing.Endpoint,
	)
}
