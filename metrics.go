package sapling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Index operation label values.
const (
	opInsert = "insert"
	opRemove = "remove"
	opSearch = "search"
)

// Registry set label values.
const (
	setShapes    = "shapes"
	setRoots     = "roots"
	setLeaves    = "leaves"
	setCollapsed = "collapsed"
)

// Metrics holds the instrumentation of one visualisation. Every series
// carries a constant uid label so several visualisations can share one
// registerer.
type Metrics struct {
	IndexOperations    *prometheus.CounterVec
	RegistryShapes     *prometheus.GaugeVec
	ActiveShapes       prometheus.Gauge
	Ticks              prometheus.Counter
	ConsistencyRepairs prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics registers the sapling series for uid on reg. A nil reg gets a
// private registry, reachable through Gatherer.
func NewMetrics(reg prometheus.Registerer, uid UID) *Metrics {
	m := &Metrics{}
	if reg == nil {
		m.registry = prometheus.NewRegistry()
		reg = m.registry
	}
	labels := prometheus.Labels{"uid": uid.String()}
	factory := promauto.With(reg)

	m.IndexOperations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "sapling_spatial_index_operations_total",
			Help:        "Spatial index inserts, removals and searches",
			ConstLabels: labels,
		},
		[]string{"op"},
	)
	m.RegistryShapes = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "sapling_registry_shapes",
			Help:        "Number of shapes in each registry set",
			ConstLabels: labels,
		},
		[]string{"set"},
	)
	m.ActiveShapes = factory.NewGauge(
		prometheus.GaugeOpts{
			Name:        "sapling_active_shapes",
			Help:        "Number of shapes receiving ticks",
			ConstLabels: labels,
		},
	)
	m.Ticks = factory.NewCounter(
		prometheus.CounterOpts{
			Name:        "sapling_ticks_total",
			Help:        "Simulation steps advanced",
			ConstLabels: labels,
		},
	)
	m.ConsistencyRepairs = factory.NewCounter(
		prometheus.CounterOpts{
			Name:        "sapling_consistency_repairs_total",
			Help:        "Stale node shapes force-removed when a data node was rebound",
			ConstLabels: labels,
		},
	)
	return m
}

// Gatherer returns the private registry, or nil when the metrics were
// registered on a caller-supplied registerer.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) indexOp(op string) {
	if m == nil {
		return
	}
	m.IndexOperations.WithLabelValues(op).Inc()
}

func (m *Metrics) setSize(set string, n int) {
	if m == nil {
		return
	}
	m.RegistryShapes.WithLabelValues(set).Set(float64(n))
}
