// Package metrics exposes Prometheus instruments for the poll loop and the
// display state machine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jpalmerr/typecast/internal/display"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "typecast"

// Poll results as recorded in the polls_total "result" label.
const (
	PollOK     = "ok"
	PollAbsent = "absent"
	PollError  = "error"
)

// Config configures [New].
type Config struct {
	// Namespace defaults to [DefaultNamespace].
	Namespace string

	// ConstLabels are added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets for the poll duration histogram. Default: prometheus.DefBuckets.
	Buckets []float64
}

// Metrics holds the registered instruments. It implements [display.Observer].
type Metrics struct {
	pollsTotal          *prometheus.CounterVec
	pollDuration        prometheus.Histogram
	offersTotal         *prometheus.CounterVec
	animationsCompleted prometheus.Counter
	phase               prometheus.Gauge
}

// New registers the typecast metrics with reg.
//
// Metrics collected:
//   - typecast_polls_total{result}: polls by result (ok, absent, error)
//   - typecast_poll_duration_seconds: source request latency
//   - typecast_offers_total{outcome}: values handed to the controller by outcome
//   - typecast_animations_completed_total: fades that ran to completion
//   - typecast_phase: current phase (0 idle, 1 revealing, 2 fading)
//
// New panics if the metrics are already registered with reg, as promauto does.
func New(reg prometheus.Registerer, cfg Config) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Buckets == nil {
		cfg.Buckets = prometheus.DefBuckets
	}
	factory := promauto.With(reg)

	return &Metrics{
		pollsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "polls_total",
			Help:        "Total number of source polls by result",
			ConstLabels: cfg.ConstLabels,
		}, []string{"result"}),

		pollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "poll_duration_seconds",
			Help:        "Source request duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		offersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "offers_total",
			Help:        "Total number of polled values offered to the display by outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"outcome"}),

		animationsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "animations_completed_total",
			Help:        "Total number of reveal-and-fade animations that finished",
			ConstLabels: cfg.ConstLabels,
		}),

		phase: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "phase",
			Help:        "Current display phase (0 idle, 1 revealing, 2 fading)",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// ObservePoll records one poll with its result label and latency.
func (m *Metrics) ObservePoll(result string, latency time.Duration) {
	m.pollsTotal.WithLabelValues(result).Inc()
	m.pollDuration.Observe(latency.Seconds())
}

// ObserveOffer records what the controller did with a polled value.
func (m *Metrics) ObserveOffer(outcome display.Outcome) {
	m.offersTotal.WithLabelValues(outcome.String()).Inc()
}

// PhaseChanged implements [display.Observer].
func (m *Metrics) PhaseChanged(from, to display.Phase) {
	m.phase.Set(float64(to))
	if from == display.PhaseFading && to == display.PhaseIdle {
		m.animationsCompleted.Inc()
	}
}
