// Package metrics provides Prometheus metrics for monitoring scroll animations.
package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for ScrollsFinished.
const (
	ResultCompleted  = "completed"
	ResultAborted    = "aborted"
	ResultSuperseded = "superseded"
	ResultRejected   = "rejected"
)

var (
	// ScrollsStarted counts animations started by target kind.
	ScrollsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smoothie_scrolls_started_total",
			Help: "Total scroll animations started",
		},
		[]string{"target"},
	)

	// ScrollsFinished counts settled scroll requests by result.
	ScrollsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smoothie_scrolls_finished_total",
			Help: "Total scroll requests settled by result",
		},
		[]string{"result"},
	)

	// ScrollDuration tracks wall time from start to settlement.
	ScrollDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smoothie_scroll_duration_seconds",
			Help:    "Scroll animation wall time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"result"},
	)

	// TickWriteFailures counts offset writes the page rejected.
	TickWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "smoothie_tick_write_failures_total",
			Help: "Total failed scroll offset writes during animations",
		},
	)

	// ActiveAnimations shows whether an animation is in flight.
	ActiveAnimations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smoothie_active_animations",
			Help: "Number of scroll animations currently driving",
		},
	)

	// EasingReloads counts easing catalog reloads by status.
	EasingReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smoothie_easing_reloads_total",
			Help: "Total easing catalog reload attempts by status",
		},
		[]string{"status"},
	)

	// GoroutineCount shows current goroutine count.
	GoroutineCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smoothie_goroutines",
			Help: "Current number of goroutines",
		},
	)

	// BuildInfo provides build information as labels.
	BuildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smoothie_build_info",
			Help: "Build information",
		},
		[]string{"version", "go_version"},
	)
)

func init() {
	prometheus.MustRegister(
		ScrollsStarted,
		ScrollsFinished,
		ScrollDuration,
		TickWriteFailures,
		ActiveAnimations,
		EasingReloads,
		GoroutineCount,
		BuildInfo,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}

// StartRuntimeCollector periodically updates runtime gauges until stopCh closes.
func StartRuntimeCollector(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		case <-stopCh:
			return
		}
	}
}

// RecordStart records an animation start.
func RecordStart(targetKind string) {
	ScrollsStarted.WithLabelValues(targetKind).Inc()
	ActiveAnimations.Inc()
}

// RecordFinish records a settled animation that had started driving.
func RecordFinish(result string, duration time.Duration) {
	ActiveAnimations.Dec()
	ScrollsFinished.WithLabelValues(result).Inc()
	ScrollDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordRejected records a request rejected before it started driving.
func RecordRejected() {
	ScrollsFinished.WithLabelValues(ResultRejected).Inc()
}

// RecordTickWriteFailure records a failed offset write.
func RecordTickWriteFailure() {
	TickWriteFailures.Inc()
}

// RecordEasingReload records an easing catalog reload attempt.
func RecordEasingReload(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	EasingReloads.WithLabelValues(status).Inc()
}
