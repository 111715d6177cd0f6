package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotifyMetrics records outcomes of notification dispatches per event type.
type NotifyMetrics struct {
	duration *prometheus.HistogramVec
	sent     *prometheus.CounterVec
	failed   *prometheus.CounterVec
	skipped  *prometheus.CounterVec
}

// NewNotifyMetrics registers the notification metrics on the provided registerer.
func NewNotifyMetrics(reg prometheus.Registerer) *NotifyMetrics {
	if reg == nil {
		return &NotifyMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_dispatch_duration_seconds",
		Help:    "Duration of notification dispatches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_sent_total",
		Help: "Notifications accepted by the mail provider.",
	}, []string{"event"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failed_total",
		Help: "Notification dispatches recorded as failed in the ledger.",
	}, []string{"event"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_skipped_total",
		Help: "Dispatches skipped because the ledger already held the event.",
	}, []string{"event"})
	reg.MustRegister(duration, sent, failed, skipped)
	return &NotifyMetrics{
		duration: duration,
		sent:     sent,
		failed:   failed,
		skipped:  skipped,
	}
}

// ObserveDuration records the dispatch duration for the event type.
func (m *NotifyMetrics) ObserveDuration(event string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(event)).Observe(d.Seconds())
}

// IncSent increments the sent counter for the event type.
func (m *NotifyMetrics) IncSent(event string) {
	if m == nil || m.sent == nil {
		return
	}
	m.sent.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncFailed increments the failed counter for the event type.
func (m *NotifyMetrics) IncFailed(event string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncSkipped increments the skipped counter for the event type.
func (m *NotifyMetrics) IncSkipped(event string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(event string) string {
	if event == "" {
		return "unknown"
	}
	return event
}
