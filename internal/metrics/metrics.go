package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shortlink"

// Shorten outcomes
const (
	ResultCreated      = "created"
	ResultDeduplicated = "deduplicated"
	ResultError        = "error"
)

// Resolve outcomes
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Metrics holds the collectors recorded by the shortening and resolution services
type Metrics struct {
	shortens   *prometheus.CounterVec
	collisions prometheus.Counter
	resolves   *prometheus.CounterVec
	storeOps   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil registerer
// leaves them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		shortens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shorten_total",
			Help:      "Shorten requests by outcome.",
		}, []string{"result"}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_collisions_total",
			Help:      "Generated codes that were already taken.",
		}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_total",
			Help:      "Resolve requests by outcome.",
		}, []string{"result"}),
		storeOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of mapping store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	if reg != nil {
		reg.MustRegister(m.shortens, m.collisions, m.resolves, m.storeOps)
	}

	return m
}

// ObserveShorten counts one shorten call with the given result
func (m *Metrics) ObserveShorten(result string) {
	m.shortens.WithLabelValues(result).Inc()
}

// ObserveCollision counts one generated code that was already taken
func (m *Metrics) ObserveCollision() {
	m.collisions.Inc()
}

// ObserveResolve counts one resolve call with the given result
func (m *Metrics) ObserveResolve(result string) {
	m.resolves.WithLabelValues(result).Inc()
}

// ObserveStoreOp records how long a store operation took
func (m *Metrics) ObserveStoreOp(operation string, start time.Time) {
	m.storeOps.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
