package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "atelier"

// Metrics holds the service's collectors. A nil *Metrics records nothing.
type Metrics struct {
	HTTPDuration *prometheus.HistogramVec

	bookingsCreated  *prometheus.CounterVec
	bookingsRejected *prometheus.CounterVec
	bookingsDeleted  *prometheus.CounterVec
	chatAnswers      *prometheus.CounterVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		bookingsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Costume bookings created by kind.",
		}, []string{"kind"}),
		bookingsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_rejected_total",
			Help:      "Costume booking attempts rejected by kind and reason.",
		}, []string{"kind", "reason"}),
		bookingsDeleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_deleted_total",
			Help:      "Costume bookings deleted by kind.",
		}, []string{"kind"}),
		chatAnswers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_answers_total",
			Help:      "Chat answers by source (kb, cache, llm, fallback).",
		}, []string{"source"}),
	}
}

// BookingCreated counts a stored order or reservation.
func (m *Metrics) BookingCreated(kind string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(kind).Inc()
}

// BookingRejected counts a refused booking by reason.
func (m *Metrics) BookingRejected(kind, reason string) {
	if m == nil {
		return
	}
	m.bookingsRejected.WithLabelValues(kind, reason).Inc()
}

// BookingDeleted counts an admin removal.
func (m *Metrics) BookingDeleted(kind string) {
	if m == nil {
		return
	}
	m.bookingsDeleted.WithLabelValues(kind).Inc()
}

// ChatAnswered records where a chat reply came from.
func (m *Metrics) ChatAnswered(source string) {
	if m == nil {
		return
	}
	m.chatAnswers.WithLabelValues(source).Inc()
}
