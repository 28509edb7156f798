package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

type Metrics struct {
	registry *prometheus.Registry

	updates  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	archived *prometheus.CounterVec

	handlerDuration *prometheus.HistogramVec
	activeUsers     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.updates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates processed",
		},
		[]string{"type"},
	)

	m.errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_errors_total",
			Help: "Total number of bot errors",
		},
		[]string{"type"},
	)

	m.archived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_archived_total",
			Help: "Total number of messages written to the archive",
		},
		[]string{"kind"},
	)

	m.handlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_handler_duration_seconds",
			Help:    "Duration of bot handler execution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	m.activeUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_users",
			Help: "Number of active users",
		},
	)

	m.registry.MustRegister(m.updates, m.errors, m.archived, m.handlerDuration, m.activeUsers)

	return m
}

func (m *Metrics) IncUpdate(updateType string) {
	m.updates.WithLabelValues(updateType).Inc()
}

func (m *Metrics) IncError(errorType string) {
	m.errors.WithLabelValues(errorType).Inc()
}

func (m *Metrics) IncMessagesArchived(kind string) {
	m.archived.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveHandlerDuration(handlerType string, seconds float64) {
	m.handlerDuration.WithLabelValues(handlerType).Observe(seconds)
}

func (m *Metrics) SetActiveUsers(count float64) {
	m.activeUsers.Set(count)
}

// Handler exposes the registry for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CounterValue reads back a counter value, used by tests and health checks
func (m *Metrics) CounterValue(vec *prometheus.CounterVec, labels ...string) float64 {
	counter, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

// ArchivedValue returns the current messages_archived_total value for a kind
func (m *Metrics) ArchivedValue(kind string) float64 {
	return m.CounterValue(m.archived, kind)
}

// UpdatesValue returns the current bot_updates_total value for a type
func (m *Metrics) UpdatesValue(updateType string) float64 {
	return m.CounterValue(m.updates, updateType)
}
