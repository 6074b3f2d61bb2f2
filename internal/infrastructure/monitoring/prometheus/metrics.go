package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default buckets, sized to the pipeline: individual MILP solves run well
// under the one-second budget, whole estimations may branch into dozens of
// solves, and reaction counts are capped by search.max_reactions.
var (
	DefaultSolveDurationBuckets      = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}
	DefaultEstimationDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60}
	DefaultReactionCountBuckets      = []float64{0, 1, 2, 3, 5, 8, 13, 20}
)

// Metrics holds the instrument set of the estimation pipeline.  All observe
// methods are nil-safe, so components can carry a nil *Metrics when
// monitoring is not wired (tests, library embedding).
type Metrics struct {
	// EstimationsTotal counts finished estimation requests by outcome
	// ("success", "error").
	EstimationsTotal *prometheus.CounterVec

	// EstimationDuration observes wall-clock seconds per computed estimation.
	EstimationDuration prometheus.Histogram

	// ReactionsFound observes how many error-canceling reactions each
	// successful estimation discovered.
	ReactionsFound prometheus.Histogram

	// SolverSolvesTotal counts MILP solves by outcome status ("optimal",
	// "feasible", "infeasible", "timed_out", "error").
	SolverSolvesTotal *prometheus.CounterVec

	// SolverSolveDuration observes wall-clock seconds per MILP solve.
	SolverSolveDuration prometheus.Histogram

	// CacheRequestsTotal counts estimate-cache lookups by result
	// ("hit", "miss", "error").
	CacheRequestsTotal *prometheus.CounterVec
}

// NewMetrics registers the instrument set with reg and returns it.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EstimationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimations_total",
			Help:      "Finished estimation requests by outcome.",
		}, []string{"outcome"}),
		EstimationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimation_duration_seconds",
			Help:      "Wall-clock duration of computed estimations.",
			Buckets:   DefaultEstimationDurationBuckets,
		}),
		ReactionsFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimation_reactions_found",
			Help:      "Error-canceling reactions discovered per successful estimation.",
			Buckets:   DefaultReactionCountBuckets,
		}),
		SolverSolvesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solver_solves_total",
			Help:      "MILP solves by outcome status.",
		}, []string{"status"}),
		SolverSolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solver_solve_duration_seconds",
			Help:      "Wall-clock duration of individual MILP solves.",
			Buckets:   DefaultSolveDurationBuckets,
		}),
		CacheRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Estimate-cache lookups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.EstimationsTotal,
		m.EstimationDuration,
		m.ReactionsFound,
		m.SolverSolvesTotal,
		m.SolverSolveDuration,
		m.CacheRequestsTotal,
	)
	return m
}

// ObserveEstimation records one finished estimation.  The reaction count is
// only observed for successful outcomes.
func (m *Metrics) ObserveEstimation(outcome string, elapsed time.Duration, reactions int) {
	if m == nil {
		return
	}
	m.EstimationsTotal.WithLabelValues(outcome).Inc()
	m.EstimationDuration.Observe(elapsed.Seconds())
	if outcome == "success" {
		m.ReactionsFound.Observe(float64(reactions))
	}
}

// ObserveSolve records one MILP solve.
func (m *Metrics) ObserveSolve(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SolverSolvesTotal.WithLabelValues(status).Inc()
	m.SolverSolveDuration.Observe(elapsed.Seconds())
}

// ObserveCacheRequest records one estimate-cache lookup.
func (m *Metrics) ObserveCacheRequest(result string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}
