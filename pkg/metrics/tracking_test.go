package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTrackingMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewTrackingMetrics(reg)

	metrics.IncSampleWritten("vendor-1")
	metrics.IncSampleWritten("vendor-1")
	metrics.IncSampleFailure("vendor-1")
	metrics.IncWatchError("permission_denied")
	metrics.IncAuthEvent("sign_in")
	metrics.ObservePublishLatency("vendor-1", 50*time.Millisecond)

	if got := testutil.ToFloat64(metrics.samplesWritten.WithLabelValues("vendor-1")); got != 2 {
		t.Fatalf("expected 2 samples written, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.sampleFailures.WithLabelValues("vendor-1")); got != 1 {
		t.Fatalf("expected 1 sample failure, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.watchErrors.WithLabelValues("permission_denied")); got != 1 {
		t.Fatalf("expected 1 watch error, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.authEvents.WithLabelValues("sign_in")); got != 1 {
		t.Fatalf("expected 1 auth event, got %f", got)
	}
}

func TestTrackingMetricsNilSafe(t *testing.T) {
	var metrics *TrackingMetrics
	metrics.IncSampleWritten("v")
	metrics.IncSampleFailure("v")
	metrics.IncWatchError("k")
	metrics.IncAuthEvent("e")
	metrics.ObservePublishLatency("v", time.Second)

	empty := NewTrackingMetrics(nil)
	empty.IncSampleWritten("")
}
