package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ThermoCancel/pkg/errors"
	"github.com/turtacn/ThermoCancel/pkg/solver"
)

func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func histogramSampleCount(t *testing.T, h prometheus.Histogram) int {
	t.Helper()
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	return int(m.GetHistogram().GetSampleCount())
}

func TestNewCollector(t *testing.T) {
	c, err := NewCollector(CollectorConfig{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, c.Registry())
	assert.NotNil(t, c.Handler())

	withRuntime, err := NewCollector(CollectorConfig{EnableProcessMetrics: true, EnableGoMetrics: true}, nil)
	require.NoError(t, err)
	families, err := withRuntime.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestObserveEstimation(t *testing.T) {
	m := newTestMetrics()

	m.ObserveEstimation("success", 50*time.Millisecond, 3)
	m.ObserveEstimation("success", 80*time.Millisecond, 1)
	m.ObserveEstimation("error", 10*time.Millisecond, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EstimationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EstimationsTotal.WithLabelValues("error")))
	// The reaction-count histogram only sees successes.
	assert.Equal(t, 2, histogramSampleCount(t, m.ReactionsFound))
}

func TestObserveCacheRequest(t *testing.T) {
	m := newTestMetrics()

	m.ObserveCacheRequest("hit")
	m.ObserveCacheRequest("miss")
	m.ObserveCacheRequest("miss")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("miss")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("error")))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.ObserveEstimation("success", time.Second, 1)
	m.ObserveSolve("optimal", time.Millisecond)
	m.ObserveCacheRequest("hit")
}

func TestInstrumentSolverRecordsOutcomes(t *testing.T) {
	m := newTestMetrics()
	slv, err := solver.New("")
	require.NoError(t, err)
	instrumented := InstrumentSolver(slv, m)
	assert.Equal(t, slv.Name(), instrumented.Name())

	// min x  s.t.  x = 2  ->  optimal.
	p := solver.NewProblem()
	p.AddVariable(0, 4)
	require.NoError(t, p.AddEquality([]float64{1}, 2))
	require.NoError(t, p.SetObjective([]float64{1}))
	sol, err := instrumented.Solve(context.Background(), p, time.Second)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)

	// x = 7 outside [0, 4]  ->  infeasible.
	q := solver.NewProblem()
	q.AddVariable(0, 4)
	require.NoError(t, q.AddEquality([]float64{1}, 7))
	require.NoError(t, q.SetObjective([]float64{1}))
	_, err = instrumented.Solve(context.Background(), q, time.Second)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SolverSolvesTotal.WithLabelValues("optimal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SolverSolvesTotal.WithLabelValues("infeasible")))
	assert.Equal(t, 2, histogramSampleCount(t, m.SolverSolveDuration))
}

func TestInstrumentSolverRecordsErrors(t *testing.T) {
	m := newTestMetrics()
	instrumented := InstrumentSolver(failingSolver{}, m)

	_, err := instrumented.Solve(context.Background(), solver.NewProblem(), time.Second)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SolverSolvesTotal.WithLabelValues("error")))
}

func TestInstrumentSolverNilMetrics(t *testing.T) {
	slv, err := solver.New("")
	require.NoError(t, err)
	assert.Equal(t, slv, InstrumentSolver(slv, nil))
}

type failingSolver struct{}

func (failingSolver) Name() string { return "failing" }

func (failingSolver) Solve(context.Context, *solver.Problem, time.Duration) (solver.Solution, error) {
	return solver.Solution{}, errors.New(errors.ErrCodeSolverInternal, "backend exploded")
}
