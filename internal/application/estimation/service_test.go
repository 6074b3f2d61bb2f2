package estimation

import (
	"context"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ThermoCancel/internal/config"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ThermoCancel/pkg/errors"
	"github.com/turtacn/ThermoCancel/pkg/solver"
	"github.com/turtacn/ThermoCancel/pkg/types/common"
)

// fakeCache is an in-memory EstimateCache recording its traffic.
type fakeCache struct {
	entries map[string]*Result
	gets    int
	sets    int
	failing bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*Result)}
}

func (c *fakeCache) Get(_ context.Context, key string) (*Result, error) {
	c.gets++
	if c.failing {
		return nil, errors.New(errors.ErrCodeCacheError, "cache down")
	}
	if r, ok := c.entries[key]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, nil
}

func (c *fakeCache) Set(_ context.Context, key string, result *Result) error {
	c.sets++
	if c.failing {
		return errors.New(errors.ErrCodeCacheError, "cache down")
	}
	clone := *result
	c.entries[key] = &clone
	return nil
}

// fakeRepo is an in-memory SpeciesRepository.
type fakeRepo struct {
	species map[string]SpeciesDefinition
}

func newFakeRepo(defs ...SpeciesDefinition) *fakeRepo {
	r := &fakeRepo{species: make(map[string]SpeciesDefinition)}
	for _, d := range defs {
		r.species[d.Label] = d
	}
	return r
}

func (r *fakeRepo) Save(_ context.Context, def SpeciesDefinition) (*StoredSpecies, error) {
	r.species[def.Label] = def
	return &StoredSpecies{BaseEntity: common.NewBaseEntity(), Definition: def}, nil
}

func (r *fakeRepo) FindByLabel(_ context.Context, label string) (*StoredSpecies, error) {
	def, ok := r.species[label]
	if !ok {
		return nil, errors.New(errors.ErrCodeSpeciesNotFound, "not found")
	}
	return &StoredSpecies{BaseEntity: common.NewBaseEntity(), Definition: def}, nil
}

func (r *fakeRepo) List(_ context.Context) ([]*StoredSpecies, error) {
	var out []*StoredSpecies
	for _, def := range r.species {
		out = append(out, &StoredSpecies{BaseEntity: common.NewBaseEntity(), Definition: def})
	}
	return out, nil
}

func (r *fakeRepo) DeleteByLabel(_ context.Context, label string) error {
	delete(r.species, label)
	return nil
}

func testDefinitions(t *testing.T) (SpeciesDefinition, []SpeciesDefinition) {
	t.Helper()
	doc, err := ParseSpeciesFile([]byte(sampleSpeciesYAML))
	require.NoError(t, err)
	return *doc.Target, doc.Benchmarks
}

func newTestService(t *testing.T, cache EstimateCache) *Service {
	t.Helper()
	slv, err := solver.New("")
	require.NoError(t, err)
	return NewService(config.DefaultSearchConfig(), slv, cache, nil, logging.NewNopLogger())
}

func TestServiceEstimate(t *testing.T) {
	target, benchmarks := testDefinitions(t)
	svc := newTestService(t, nil)

	result, err := svc.Estimate(context.Background(), target, benchmarks)
	require.NoError(t, err)

	assert.Equal(t, "propane", result.TargetLabel)
	assert.False(t, result.FromCache)
	require.Len(t, result.Reactions, 1)
	assert.Equal(t, "propane + 1 methane <=> 2 ethane", result.Reactions[0].Equation)

	// Default output unit is kJ/mol; the single-reaction estimate is
	// 2*(-84) - (-74.6) - (2*(-72) + 66 + 92) = -107.4 kJ/mol.
	assert.Equal(t, "kJ/mol", result.Estimate.Unit)
	assert.InDelta(t, -107.4, result.Estimate.Value, 1e-9)
	assert.InDelta(t, -107.4, result.Mean.Value, 1e-9)
	assert.InDelta(t, 0.0, result.StdDev.Value, 1e-9)
}

func TestServiceEstimateUsesCache(t *testing.T) {
	target, benchmarks := testDefinitions(t)
	cache := newFakeCache()
	svc := newTestService(t, cache)

	first, err := svc.Estimate(context.Background(), target, benchmarks)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.Estimate(context.Background(), target, benchmarks)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Estimate, second.Estimate)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)
}

func TestServiceCacheKeySensitivity(t *testing.T) {
	target, benchmarks := testDefinitions(t)
	cache := newFakeCache()
	svc := newTestService(t, cache)

	_, err := svc.Estimate(context.Background(), target, benchmarks)
	require.NoError(t, err)

	// Reordering the benchmark list must hit the same key.
	reversed := []SpeciesDefinition{benchmarks[1], benchmarks[0]}
	hit, err := svc.Estimate(context.Background(), target, reversed)
	require.NoError(t, err)
	assert.True(t, hit.FromCache)

	// A different target value must miss.
	altered := target
	altered.LowLevelHf298.Value = -90
	miss, err := svc.Estimate(context.Background(), altered, benchmarks)
	require.NoError(t, err)
	assert.False(t, miss.FromCache)
}

func TestServiceEstimateSurvivesCacheFailure(t *testing.T) {
	target, benchmarks := testDefinitions(t)
	cache := newFakeCache()
	cache.failing = true
	svc := newTestService(t, cache)

	result, err := svc.Estimate(context.Background(), target, benchmarks)
	require.NoError(t, err)
	assert.InDelta(t, -107.4, result.Estimate.Value, 1e-9)
}

func TestServiceEstimateNoReactions(t *testing.T) {
	target, benchmarks := testDefinitions(t)
	svc := newTestService(t, nil)

	// Methane alone cannot balance propane's C-C bonds.
	_, err := svc.Estimate(context.Background(), target, benchmarks[:1])
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoReactionsFound))
}

func TestServiceEstimateFromLibrary(t *testing.T) {
	target, benchmarks := testDefinitions(t)
	repo := newFakeRepo(benchmarks...)
	svc := newTestService(t, nil)

	result, err := svc.EstimateFromLibrary(context.Background(), target, repo)
	require.NoError(t, err)
	assert.InDelta(t, -107.4, result.Estimate.Value, 1e-9)
}

func TestServiceRecordsMetrics(t *testing.T) {
	target, benchmarks := testDefinitions(t)
	slv, err := solver.New("")
	require.NoError(t, err)
	m := prometheus.NewMetrics(promclient.NewRegistry())
	cache := newFakeCache()
	svc := NewService(config.DefaultSearchConfig(), slv, cache, m, logging.NewNopLogger())

	_, err = svc.Estimate(context.Background(), target, benchmarks)
	require.NoError(t, err)
	_, err = svc.Estimate(context.Background(), target, benchmarks)
	require.NoError(t, err)

	// One computed run, one cache hit.
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EstimationsTotal.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EstimationsTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("hit")))

	// The computed run solved the seed subset plus its two infeasible
	// children through the instrumented solver.
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SolverSolvesTotal.WithLabelValues("optimal")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SolverSolvesTotal.WithLabelValues("infeasible")))
}

func TestServiceRecordsErrorOutcome(t *testing.T) {
	target, benchmarks := testDefinitions(t)
	slv, err := solver.New("")
	require.NoError(t, err)
	m := prometheus.NewMetrics(promclient.NewRegistry())
	svc := NewService(config.DefaultSearchConfig(), slv, nil, m, logging.NewNopLogger())

	// Methane alone yields no reactions, which is an estimation error.
	_, err = svc.Estimate(context.Background(), target, benchmarks[:1])
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EstimationsTotal.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EstimationsTotal.WithLabelValues("success")))
}

func TestServiceEstimateFromLibraryEmpty(t *testing.T) {
	target, _ := testDefinitions(t)
	svc := newTestService(t, nil)

	_, err := svc.EstimateFromLibrary(context.Background(), target, newFakeRepo())
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyBenchmarkSet))

	_, err = svc.EstimateFromLibrary(context.Background(), target, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}
