// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label sets use the route template, so archive ids never become series.
var (
	providerLabels = []string{"method", "route", "status_class"}

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokbridge",
		Subsystem: "gateway",
		Name:      "request_total",
		Help:      "Provider API calls by outcome.",
	}, providerLabels)

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tokbridge",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Provider API call latency, including any rate-limit wait.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
	}, providerLabels)

	requestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokbridge",
		Subsystem: "gateway",
		Name:      "request_errors_total",
		Help:      "Provider API calls that ended in a non-2xx status or a transport failure.",
	}, providerLabels)

	limiterWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tokbridge",
		Subsystem: "gateway",
		Name:      "rate_limit_wait_seconds",
		Help:      "Time spent waiting on the client-side rate limiter.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)

// statusClass buckets status into "2xx".."5xx". Transport failures are
// "error" and a missing status is "unknown".
func statusClass(err error, status int) string {
	switch {
	case err != nil:
		return "error"
	case status < 100 || status > 599:
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

func recordMetrics(method, route string, status int, duration time.Duration, err error) {
	class := statusClass(err, status)
	labels := prometheus.Labels{"method": method, "route": route, "status_class": class}
	requestTotal.With(labels).Inc()
	requestDuration.With(labels).Observe(duration.Seconds())
	if class != "2xx" {
		requestErrors.With(labels).Inc()
	}
}
