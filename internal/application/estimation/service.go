package estimation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/ThermoCancel/internal/config"
	"github.com/turtacn/ThermoCancel/internal/domain/isodesmic"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ThermoCancel/pkg/errors"
	"github.com/turtacn/ThermoCancel/pkg/quantity"
	"github.com/turtacn/ThermoCancel/pkg/solver"
)

// ReactionSummary describes one discovered error-canceling reaction and the
// enthalpy estimate it contributes.
type ReactionSummary struct {
	Equation string          `json:"equation"`
	Estimate quantity.Scalar `json:"estimate"`
}

// Result is the outcome of one enthalpy estimation.
type Result struct {
	TargetLabel string            `json:"target_label"`
	Estimate    quantity.Scalar   `json:"estimate"`
	Reactions   []ReactionSummary `json:"reactions"`

	// Mean and StdDev describe the spread of the per-reaction estimates.
	// The reported Estimate is the median, which is what callers should use;
	// a large spread flags a poorly conditioned benchmark set.
	Mean   quantity.Scalar `json:"mean"`
	StdDev quantity.Scalar `json:"std_dev"`

	// FromCache reports whether the result was served from the estimate
	// cache rather than computed.
	FromCache bool `json:"-"`
}

// Service orchestrates enthalpy estimation: it materialises species
// definitions, runs the reaction search, and caches finished results.
type Service struct {
	cfg     config.SearchConfig
	solver  solver.Solver
	cache   EstimateCache
	metrics *prometheus.Metrics
	logger  logging.Logger
}

// NewService builds an estimation service.  cache and metrics may be nil, in
// which case every request is computed fresh and nothing is recorded.
func NewService(cfg config.SearchConfig, slv solver.Solver, cache EstimateCache, metrics *prometheus.Metrics, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		cfg:     cfg,
		solver:  prometheus.InstrumentSolver(slv, metrics),
		cache:   cache,
		metrics: metrics,
		logger:  logger.Named("estimation"),
	}
}

// Estimate computes the high-level enthalpy of formation of the target from
// the given benchmark definitions.  Cache failures are logged and ignored; the
// cache never decides correctness, only latency.
func (s *Service) Estimate(ctx context.Context, target SpeciesDefinition, benchmarks []SpeciesDefinition) (*Result, error) {
	key := s.cacheKey(target, benchmarks)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.metrics.ObserveCacheRequest("error")
			s.logger.Warn("estimate cache read failed", logging.Err(err))
		case cached != nil:
			s.metrics.ObserveCacheRequest("hit")
			cached.FromCache = true
			s.logger.Info("estimate served from cache",
				logging.String("target", target.Label))
			return cached, nil
		default:
			s.metrics.ObserveCacheRequest("miss")
		}
	}

	result, err := s.compute(ctx, target, benchmarks)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.logger.Warn("estimate cache write failed", logging.Err(err))
		}
	}
	return result, nil
}

// compute runs the full search and records the estimation metrics.
func (s *Service) compute(ctx context.Context, target SpeciesDefinition, benchmarks []SpeciesDefinition) (result *Result, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			s.metrics.ObserveEstimation("error", time.Since(start), 0)
			return
		}
		s.metrics.ObserveEstimation("success", time.Since(start), len(result.Reactions))
	}()

	targetSpecies, err := target.BuildTarget()
	if err != nil {
		return nil, err
	}
	candidates := make([]*isodesmic.Species, 0, len(benchmarks))
	for _, def := range benchmarks {
		sp, err := def.BuildBenchmark()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, sp)
	}

	scheme, err := isodesmic.NewScheme(targetSpecies, candidates, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}

	estimate, reactions, err := scheme.CalculateTargetEnthalpy(ctx, s.solver, s.cfg.MaxReactions)
	if err != nil {
		return nil, err
	}

	return s.buildResult(target.Label, estimate, reactions)
}

// EstimateFromLibrary runs Estimate against every benchmark species stored in
// the reference library.
func (s *Service) EstimateFromLibrary(ctx context.Context, target SpeciesDefinition, repo SpeciesRepository) (*Result, error) {
	if repo == nil {
		return nil, errors.InvalidParam("reference library repository is not configured")
	}
	stored, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	benchmarks := make([]SpeciesDefinition, 0, len(stored))
	for _, sp := range stored {
		if sp.Definition.Label == target.Label || !sp.Definition.IsBenchmark() {
			continue
		}
		benchmarks = append(benchmarks, sp.Definition)
	}
	if len(benchmarks) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyBenchmarkSet,
			"reference library holds no usable benchmark species")
	}
	return s.Estimate(ctx, target, benchmarks)
}

func (s *Service) buildResult(label string, estimate quantity.Scalar, reactions []*isodesmic.Reaction) (*Result, error) {
	outUnit := s.cfg.OutputUnit
	if outUnit == "" {
		outUnit = "J/mol"
	}

	converted, err := estimate.ConvertTo(outUnit)
	if err != nil {
		return nil, err
	}

	result := &Result{TargetLabel: label, Estimate: converted}
	values := make([]float64, 0, len(reactions))
	for _, r := range reactions {
		h, err := r.CalculateTargetThermo()
		if err != nil {
			return nil, err
		}
		hOut, err := h.ConvertTo(outUnit)
		if err != nil {
			return nil, err
		}
		result.Reactions = append(result.Reactions, ReactionSummary{
			Equation: r.String(),
			Estimate: hOut,
		})
		values = append(values, hOut.Value)
	}

	result.Mean = quantity.MustScalar(stat.Mean(values, nil), outUnit)
	if len(values) > 1 {
		result.StdDev = quantity.MustScalar(stat.StdDev(values, nil), outUnit)
	} else {
		result.StdDev = quantity.MustScalar(0, outUnit)
	}
	return result, nil
}

// cacheKey digests the full request: target definition, benchmark definitions
// in label order, and the search tunables.  Any change to either the chemistry
// or the search parameters produces a new key.
func (s *Service) cacheKey(target SpeciesDefinition, benchmarks []SpeciesDefinition) string {
	sorted := append([]SpeciesDefinition(nil), benchmarks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })

	payload := struct {
		Target     SpeciesDefinition   `json:"target"`
		Benchmarks []SpeciesDefinition `json:"benchmarks"`
		Search     config.SearchConfig `json:"search"`
	}{target, sorted, s.cfg}

	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
