package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersCompleted     *prometheus.CounterVec
	TransferDuration       *prometheus.HistogramVec
	TransferAmount         *prometheus.HistogramVec
	TransferFailures       *prometheus.CounterVec
	LimitRejections        *prometheus.CounterVec
	TrackingCodeCollisions prometheus.Counter

	// API metrics
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	HTTPInFlight      prometheus.Gauge
	IdempotentReplays prometheus.Counter
	RateLimitHits     prometheus.Counter

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Outbox metrics
	OutboxEvents *prometheus.CounterVec
}

// New creates all metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransfersCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_transfers_completed_total",
				Help: "Total number of committed transfers by channel",
			},
			[]string{"channel"},
		),
		TransferDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_transfer_duration_seconds",
				Help:    "Duration of committed transfers, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"channel"},
		),
		TransferAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_transfer_amount",
				Help:    "Transfer amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000},
			},
			[]string{"channel"},
		),
		TransferFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_transfer_failures_total",
				Help: "Total number of rejected or failed transfers by error kind",
			},
			[]string{"channel", "kind"},
		),
		LimitRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_limit_rejections_total",
				Help: "Transfers rejected by the daily limit",
			},
			[]string{"channel"},
		),
		TrackingCodeCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_tracking_code_collisions_total",
			Help: "Generated tracking codes that were already taken",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bankledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_idempotent_replays_total",
			Help: "Responses served from the idempotency store",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		OutboxEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_outbox_events_total",
				Help: "Outbox events handled by the publisher",
			},
			[]string{"status"},
		),
	}
}

// TransferCompleted records a committed transfer.
func (m *Metrics) TransferCompleted(ch domain.Channel, amount decimal.Decimal, duration time.Duration) {
	m.TransfersCompleted.WithLabelValues(ch.String()).Inc()
	m.TransferDuration.WithLabelValues(ch.String()).Observe(duration.Seconds())
	m.TransferAmount.WithLabelValues(ch.String()).Observe(amount.InexactFloat64())
}

// TransferFailed records a transfer that ended with an error of the given kind.
func (m *Metrics) TransferFailed(ch domain.Channel, kind string) {
	m.TransferFailures.WithLabelValues(ch.String(), kind).Inc()
	if kind == domain.KindLimitExceeded {
		m.LimitRejections.WithLabelValues(ch.String()).Inc()
	}
}

// TrackingCodeCollision records a tracking code that had to be regenerated.
func (m *Metrics) TrackingCodeCollision() {
	m.TrackingCodeCollisions.Inc()
}

// OutboxPublished records the outcome of one outbox event.
func (m *Metrics) OutboxPublished(ok bool) {
	status := "published"
	if !ok {
		status = "failed"
	}
	m.OutboxEvents.WithLabelValues(status).Inc()
}
