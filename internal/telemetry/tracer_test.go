// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{ServiceName: "test", ExporterType: "grpc"})
	require.NoError(t, err)
	assert.False(t, provider.Enabled())

	_, span := Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording())
	span.End()

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestProvider_NilIsDisabled(t *testing.T) {
	var p *Provider
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ExporterType: "zipkin"})
	require.Error(t, err)
	assert.Equal(t, `unsupported exporter type "zipkin" (supported: grpc, http)`, err.Error())
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1.5).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.5).Description(), "TraceIDRatioBased")
}

func TestArchiveAttributes_SkipsEmpty(t *testing.T) {
	attrs := ArchiveAttributes("start_archive", "", "started")
	assert.Equal(t, []attribute.KeyValue{
		ProviderOperationKey.String("start_archive"),
		ArchiveStatusKey.String("started"),
	}, attrs)
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("invalid-key")
	assert.Equal(t, ErrorTypeKey.String("invalid-key"), attrs[1])
}
