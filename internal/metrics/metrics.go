// Package metrics exposes run counters in Prometheus form. Collectors live
// in a private registry so the --metrics-file export holds only conversion
// metrics; recorders register lazily and are safe for concurrent use.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "source1import"

var (
	registerOnce sync.Once

	// Registry holds every collector in this package.
	Registry = prometheus.NewRegistry()

	assetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "convert",
			Name:      "assets_total",
			Help:      "Source assets processed, by result.",
		},
		[]string{"result"},
	)
	attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "attempts_total",
			Help:      "Backend invocations, by backend tag and success.",
		},
		[]string{"backend", "success"},
	)
	attemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "attempt_duration_seconds",
			Help:      "Backend invocation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
	artifactsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "convert",
			Name:      "artifacts_total",
			Help:      "Artifacts relocated into the output tree.",
		},
		[]string{"kind", "ext", "backend"},
	)
	anomaliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "no_artifact_total",
			Help:      "Backend runs that exited 0 but left no artifact.",
		},
		[]string{"backend"},
	)
	relocateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "convert",
			Name:      "relocate_failures_total",
			Help:      "Produced files that could not be moved into the output tree, by reason.",
		},
		[]string{"backend", "reason"},
	)
	inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "jobs_in_flight",
			Help:      "Conversion jobs currently running.",
		},
	)
	errorRate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "convert",
			Name:      "error_rate_percent",
			Help:      "Failed assets as a percentage of all assets in the last run.",
		},
	)
)

// Register adds all collectors to [Registry]. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		Registry.MustRegister(assetsTotal, attemptsTotal, attemptDuration,
			artifactsTotal, anomaliesTotal, relocateFailures, inFlight, errorRate)
	})
}

// RecordAttempt counts one backend invocation.
func RecordAttempt(backend string, success bool, duration time.Duration) {
	Register()
	attemptsTotal.WithLabelValues(backend, strconv.FormatBool(success)).Inc()
	attemptDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordArtifact counts one relocated artifact.
func RecordArtifact(kind, ext, backend string) {
	Register()
	artifactsTotal.WithLabelValues(kind, ext, backend).Inc()
}

// RecordNoArtifact counts a zero-exit backend run that produced nothing.
func RecordNoArtifact(backend string) {
	Register()
	anomaliesTotal.WithLabelValues(backend).Inc()
}

// RecordRelocateFailure counts one produced file left in place.
func RecordRelocateFailure(backend, reason string) {
	Register()
	relocateFailures.WithLabelValues(backend, reason).Inc()
}

// RecordAsset counts one finished asset.
func RecordAsset(succeeded bool) {
	Register()
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	assetsTotal.WithLabelValues(result).Inc()
}

// JobStarted and JobFinished track scheduler occupancy.
func JobStarted() {
	Register()
	inFlight.Inc()
}

func JobFinished() {
	Register()
	inFlight.Dec()
}

// SetErrorRate publishes the final error rate of a run.
func SetErrorRate(percent float64) {
	Register()
	errorRate.Set(percent)
}

// WriteTextfile writes the current metrics in the Prometheus text format, for
// node_exporter's textfile collector. The write is atomic.
func WriteTextfile(path string) error {
	Register()
	return prometheus.WriteToTextfile(path, Registry)
}
