package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus метрик сервиса.
// Все методы записи безопасны для nil-получателя: при выключенных метриках передается nil.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBOpenConnections prometheus.Gauge
	DBInUse           prometheus.Gauge
	DBIdle            prometheus.Gauge

	HoldsCreated        prometheus.Counter
	HoldsConsumed       prometheus.Counter
	HoldConsumeRejected *prometheus.CounterVec
	HoldsExpired        prometheus.Counter

	OutboxEvents      *prometheus.CounterVec
	AvailabilityCache *prometheus.CounterVec
	PayRunsCreated    prometheus.Counter
}

// New регистрирует метрики в глобальном prometheus registry
func New(serviceName string) *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegisterer регистрирует метрики в переданном registerer
func NewWithRegisterer(reg prometheus.Registerer, serviceName string) *Metrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: labels,
		}, []string{"operation"}),
		DBOpenConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Open connections in the pool",
			ConstLabels: labels,
		}),
		DBInUse: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Connections currently in use",
			ConstLabels: labels,
		}),
		DBIdle: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Idle connections in the pool",
			ConstLabels: labels,
		}),

		HoldsCreated: f.NewCounter(prometheus.CounterOpts{
			Name:        "booking_holds_created_total",
			Help:        "Booking holds created",
			ConstLabels: labels,
		}),
		HoldsConsumed: f.NewCounter(prometheus.CounterOpts{
			Name:        "booking_holds_consumed_total",
			Help:        "Booking holds converted into bookings",
			ConstLabels: labels,
		}),
		HoldConsumeRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_hold_consume_rejected_total",
			Help:        "Rejected hold consume attempts by reason",
			ConstLabels: labels,
		}, []string{"reason"}),
		HoldsExpired: f.NewCounter(prometheus.CounterOpts{
			Name:        "booking_holds_expired_total",
			Help:        "Holds marked expired by the sweeper",
			ConstLabels: labels,
		}),

		OutboxEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "outbox_events_total",
			Help:        "Outbox dispatch results",
			ConstLabels: labels,
		}, []string{"result"}),
		AvailabilityCache: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_cache_requests_total",
			Help:        "Availability cache lookups by result",
			ConstLabels: labels,
		}, []string{"result"}),
		PayRunsCreated: f.NewCounter(prometheus.CounterOpts{
			Name:        "pay_runs_created_total",
			Help:        "Pay runs created",
			ConstLabels: labels,
		}),
	}
}

func (m *Metrics) IncHoldsCreated() {
	if m == nil {
		return
	}
	m.HoldsCreated.Inc()
}

func (m *Metrics) IncHoldsConsumed() {
	if m == nil {
		return
	}
	m.HoldsConsumed.Inc()
}

func (m *Metrics) IncHoldConsumeRejected(reason string) {
	if m == nil {
		return
	}
	m.HoldConsumeRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) AddHoldsExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.HoldsExpired.Add(float64(n))
}

// IncOutbox result: published | failed
func (m *Metrics) IncOutbox(result string) {
	if m == nil {
		return
	}
	m.OutboxEvents.WithLabelValues(result).Inc()
}

// IncAvailabilityCache result: hit | miss | error
func (m *Metrics) IncAvailabilityCache(result string) {
	if m == nil {
		return
	}
	m.AvailabilityCache.WithLabelValues(result).Inc()
}

func (m *Metrics) IncPayRunsCreated() {
	if m == nil {
		return
	}
	m.PayRunsCreated.Inc()
}
