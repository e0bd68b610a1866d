// Package metrics exposes Prometheus collectors for path recording and
// loading.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "npcpath"

// Metrics holds the collectors. Create it with New.
type Metrics struct {
	sessionsActive    prometheus.Gauge
	sessionsStarted   prometheus.Counter
	sessionsEnded     *prometheus.CounterVec
	waypointsRecorded prometheus.Counter
	persistDuration   prometheus.Histogram
	pathsLoaded       prometheus.Counter
	pathLoadFailures  prometheus.Counter
	pathsRegistered   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "sessions_active",
			Help:      "Recording sessions currently sampling.",
		}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "sessions_started_total",
			Help:      "Recording sessions started.",
		}),
		sessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "sessions_ended_total",
			Help:      "Recording sessions ended, by final status.",
		}, []string{"status"}),
		waypointsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "waypoints_recorded_total",
			Help:      "Samples accepted by the debounce filter.",
		}),
		persistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "persist_duration_seconds",
			Help:      "Time spent encoding and writing a finished path.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		pathsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "paths_loaded_total",
			Help:      "Path files decoded and registered.",
		}),
		pathLoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "path_load_failures_total",
			Help:      "Path files skipped because they could not be read or decoded.",
		}),
		pathsRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "paths",
			Help:      "Paths currently registered.",
		}),
	}

	reg.MustRegister(
		m.sessionsActive,
		m.sessionsStarted,
		m.sessionsEnded,
		m.waypointsRecorded,
		m.persistDuration,
		m.pathsLoaded,
		m.pathLoadFailures,
		m.pathsRegistered,
	)
	return m
}

// SessionStarted records a new active session.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
	m.sessionsActive.Inc()
}

// SessionEnded records a session leaving the active state.
func (m *Metrics) SessionEnded(status string) {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
	m.sessionsEnded.WithLabelValues(status).Inc()
}

// WaypointRecorded counts one accepted sample.
func (m *Metrics) WaypointRecorded() {
	if m == nil {
		return
	}
	m.waypointsRecorded.Inc()
}

// ObservePersist records how long persisting a path took.
func (m *Metrics) ObservePersist(d time.Duration) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(d.Seconds())
}

// PathLoaded counts a registered file and updates the registry size.
func (m *Metrics) PathLoaded(registered int) {
	if m == nil {
		return
	}
	m.pathsLoaded.Inc()
	m.pathsRegistered.Set(float64(registered))
}

// PathLoadFailed counts a skipped file.
func (m *Metrics) PathLoadFailed() {
	if m == nil {
		return
	}
	m.pathLoadFailures.Inc()
}

// SetRegistered sets the registry size gauge.
func (m *Metrics) SetRegistered(n int) {
	if m == nil {
		return
	}
	m.pathsRegistered.Set(float64(n))
}
