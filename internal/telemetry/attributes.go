// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys shared by the gateway, the SDK client and the demo server.
const (
	HTTPMethodKey     = attribute.Key("http.method")
	HTTPStatusCodeKey = attribute.Key("http.status_code")
	HTTPRouteKey      = attribute.Key("http.route")
	HTTPURLKey        = attribute.Key("http.url")
	RequestIDKey      = attribute.Key("http.request_id")

	ProviderOperationKey = attribute.Key("opentok.operation")
	ArchiveIDKey         = attribute.Key("opentok.archive_id")
	ArchiveStatusKey     = attribute.Key("opentok.archive_status")

	ErrorKey     = attribute.Key("error")
	ErrorTypeKey = attribute.Key("error.type")
)

// HTTPAttributes describes one request. route is the template, never the raw
// path, so ids stay out of span names.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		HTTPMethodKey.String(method),
		HTTPRouteKey.String(route),
		HTTPURLKey.String(url),
		HTTPStatusCodeKey.Int(statusCode),
	}
}

// ArchiveAttributes skips empty values.
func ArchiveAttributes(operation, archiveID, status string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, kv := range []attribute.KeyValue{
		ProviderOperationKey.String(operation),
		ArchiveIDKey.String(archiveID),
		ArchiveStatusKey.String(status),
	} {
		if kv.Value.AsString() != "" {
			attrs = append(attrs, kv)
		}
	}
	return attrs
}

// ErrorAttributes marks a span as failed with the SDK error sub-kind.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		ErrorKey.Bool(true),
		ErrorTypeKey.String(errorType),
	}
}
