package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Position lookup outcomes.
const (
	OutcomeRanked    = "ranked"
	OutcomeNotRanked = "not_ranked"
)

// latencyBuckets are in milliseconds; a leaderboard read is a single query.
var latencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000}

// Manager owns the Prometheus collectors of the leaderboard core.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	computations       *prometheus.CounterVec
	computationLatency *prometheus.HistogramVec
	storeErrors        *prometheus.CounterVec
	leaderboardSize    prometheus.Gauge
	positionLookups    *prometheus.CounterVec
}

var (
	mu            sync.RWMutex
	globalManager = NewManager() //nolint:gochecknoglobals // singleton used by package-level helpers
)

// NewManager creates a Manager on its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "puzzlenode",
		subsystem:        "leaderboard",
		histogramBuckets: latencyBuckets,
		constLabels:      map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.computations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "computations_total",
		Help:        "Leaderboard computations by execution mode",
		ConstLabels: m.constLabels,
	}, []string{"mode"})

	m.computationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "computation_latency_milliseconds",
		Help:        "Leaderboard computation latency in milliseconds, store fetch included",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"mode"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_errors_total",
		Help:        "Store read failures by operation",
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.leaderboardSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_size",
		Help:        "Number of entries in the most recently computed leaderboard",
		ConstLabels: m.constLabels,
	})

	m.positionLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "position_lookups_total",
		Help:        "Leaderboard position lookups by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})
}

// Registry returns the registry the manager's collectors live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordComputation counts one leaderboard computation and its latency.
func (m *Manager) RecordComputation(mode string, latencyMs float64, size int) {
	m.computations.WithLabelValues(mode).Inc()
	m.computationLatency.WithLabelValues(mode).Observe(latencyMs)
	m.leaderboardSize.Set(float64(size))
}

// RecordStoreError counts a failed store read.
func (m *Manager) RecordStoreError(operation string) {
	m.storeErrors.WithLabelValues(operation).Inc()
}

// RecordPositionLookup counts a position lookup by outcome.
func (m *Manager) RecordPositionLookup(ranked bool) {
	outcome := OutcomeNotRanked
	if ranked {
		outcome = OutcomeRanked
	}
	m.positionLookups.WithLabelValues(outcome).Inc()
}

// Init replaces the global manager, e.g. to apply a configured namespace.
func Init(opts ...Option) *Manager {
	m := NewManager(opts...)
	mu.Lock()
	globalManager = m
	mu.Unlock()
	return m
}

// Default returns the global manager.
func Default() *Manager {
	mu.RLock()
	defer mu.RUnlock()
	return globalManager
}

// GetRegistry returns the registry of the global manager.
func GetRegistry() *prometheus.Registry {
	return Default().Registry()
}

// Handler serves the global registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
