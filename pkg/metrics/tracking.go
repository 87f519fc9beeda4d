package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TrackingMetrics records location pipeline and auth event counters.
type TrackingMetrics struct {
	samplesWritten *prometheus.CounterVec
	sampleFailures *prometheus.CounterVec
	watchErrors    *prometheus.CounterVec
	publishLatency *prometheus.HistogramVec
	authEvents     *prometheus.CounterVec
}

// NewTrackingMetrics registers the tracking metrics on the provided registerer.
func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	if reg == nil {
		return &TrackingMetrics{}
	}
	samplesWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "location_samples_written",
		Help: "Vendor location samples persisted.",
	}, []string{"vendor"})
	sampleFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "location_sample_failures",
		Help: "Vendor location samples that failed to persist.",
	}, []string{"vendor"})
	watchErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "location_watch_errors",
		Help: "Device watch errors by kind.",
	}, []string{"kind"})
	publishLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "location_publish_seconds",
		Help:    "Latency of publishing a location sample to subscribers.",
		Buckets: prometheus.DefBuckets,
	}, []string{"vendor"})
	authEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_events",
		Help: "Authentication events by type.",
	}, []string{"event"})
	reg.MustRegister(samplesWritten, sampleFailures, watchErrors, publishLatency, authEvents)
	return &TrackingMetrics{
		samplesWritten: samplesWritten,
		sampleFailures: sampleFailures,
		watchErrors:    watchErrors,
		publishLatency: publishLatency,
		authEvents:     authEvents,
	}
}

// IncSampleWritten increments the persisted-sample counter for the vendor.
func (t *TrackingMetrics) IncSampleWritten(vendor string) {
	if t == nil || t.samplesWritten == nil {
		return
	}
	t.samplesWritten.WithLabelValues(normalizeLabel(vendor)).Inc()
}

// IncSampleFailure increments the failed-sample counter for the vendor.
func (t *TrackingMetrics) IncSampleFailure(vendor string) {
	if t == nil || t.sampleFailures == nil {
		return
	}
	t.sampleFailures.WithLabelValues(normalizeLabel(vendor)).Inc()
}

// IncWatchError increments the device watch error counter for the kind.
func (t *TrackingMetrics) IncWatchError(kind string) {
	if t == nil || t.watchErrors == nil {
		return
	}
	t.watchErrors.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObservePublishLatency records the time spent fanning a sample out.
func (t *TrackingMetrics) ObservePublishLatency(vendor string, duration time.Duration) {
	if t == nil || t.publishLatency == nil {
		return
	}
	t.publishLatency.WithLabelValues(normalizeLabel(vendor)).Observe(duration.Seconds())
}

// IncAuthEvent increments the auth event counter for the event type.
func (t *TrackingMetrics) IncAuthEvent(event string) {
	if t == nil || t.authEvents == nil {
		return
	}
	t.authEvents.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
