package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haulage",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Gateway requests by method and response status (0 when no response arrived).",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "haulage",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Gateway request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	invalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haulage",
		Subsystem: "gateway",
		Name:      "invalidations_total",
		Help:      "Cache tags invalidated by mutations, by resource.",
	}, []string{"resource"})
)
