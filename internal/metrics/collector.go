package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests labeled by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	walletOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_operations_total",
			Help: "Total number of wallet operations labeled by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	walletAmountCents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_amount_cents_total",
			Help: "Total amount in cents moved by successful wallet operations",
		},
		[]string{"operation"},
	)
)

// RecordRequest increments request counters and records duration.
func RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}
	httpRequestsTotal.WithLabelValues(method, route, statusLabel(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordWalletOperation tracks transfers, credits, unlocks, tips and
// subscription charges. Amount is counted only on success.
func RecordWalletOperation(operation string, amount int64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	walletOperationsTotal.WithLabelValues(operation, outcome).Inc()
	if err == nil && amount > 0 {
		walletAmountCents.WithLabelValues(operation).Add(float64(amount))
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
