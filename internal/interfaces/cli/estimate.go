package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ThermoCancel/internal/application/estimation"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/cache"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/database/postgres"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ThermoCancel/pkg/solver"
)

type estimateOptions struct {
	speciesFile  string
	solverName   string
	maxReactions int
	outputUnit   string
	useLibrary   bool
	noCache      bool
}

func newEstimateCommand() *cobra.Command {
	opts := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate a target's enthalpy of formation",
		Long: "Reads a species file declaring the target and benchmark species, searches\n" +
			"for error-canceling reactions, and reports the aggregated estimate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.speciesFile, "species-file", "f", "", "YAML species file (required)")
	f.StringVar(&opts.solverName, "solver", solver.DefaultBackend, "MILP solver backend")
	f.IntVar(&opts.maxReactions, "max-reactions", 0, "override the reaction cap")
	f.StringVar(&opts.outputUnit, "output-unit", "", "override the result unit (e.g. kJ/mol)")
	f.BoolVar(&opts.useLibrary, "use-library", false, "take benchmark species from the reference library instead of the file")
	f.BoolVar(&opts.noCache, "no-cache", false, "bypass the estimate cache")
	_ = cmd.MarkFlagRequired("species-file")
	return cmd
}

func runEstimate(cmd *cobra.Command, opts *estimateOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	doc, err := estimation.LoadSpeciesFile(opts.speciesFile)
	if err != nil {
		return err
	}

	searchCfg := cliCtx.Config.Search
	if opts.maxReactions > 0 {
		searchCfg.MaxReactions = opts.maxReactions
	}
	if opts.outputUnit != "" {
		searchCfg.OutputUnit = opts.outputUnit
	}

	slv, err := solver.New(opts.solverName)
	if err != nil {
		return err
	}

	var estimateCache estimation.EstimateCache
	if !opts.noCache && cliCtx.Config.Redis.Addr != "" {
		redisCache, err := cache.NewRedisEstimateCache(ctx, cliCtx.Config.Redis, cliCtx.Logger)
		if err != nil {
			cliCtx.Logger.Warn("estimate cache unavailable, continuing without",
				logging.Err(err))
		} else {
			defer redisCache.Close()
			estimateCache = redisCache
		}
	}

	svc := estimation.NewService(searchCfg, slv, estimateCache, cliCtx.Metrics, cliCtx.Logger)

	var result *estimation.Result
	if opts.useLibrary {
		conn, err := postgres.NewConnection(ctx, cliCtx.Config.Database, cliCtx.Logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		repo, err := postgres.NewSpeciesRepository(ctx, conn, cliCtx.Logger)
		if err != nil {
			return err
		}
		result, err = svc.EstimateFromLibrary(ctx, *doc.Target, repo)
		if err != nil {
			return err
		}
	} else {
		result, err = svc.Estimate(ctx, *doc.Target, doc.Benchmarks)
		if err != nil {
			return err
		}
	}

	return PrintResult(cliCtx, result, func() string { return renderEstimate(result) })
}

func renderEstimate(r *estimation.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target:    %s\n", r.TargetLabel)
	fmt.Fprintf(&b, "Estimate:  %s", r.Estimate)
	if r.FromCache {
		b.WriteString("  (cached)")
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Spread:    mean %s, stddev %s over %d reactions\n",
		r.Mean, r.StdDev, len(r.Reactions))
	for i, rxn := range r.Reactions {
		fmt.Fprintf(&b, "  [%d] %s  =>  %s\n", i+1, rxn.Equation, rxn.Estimate)
	}
	return strings.TrimRight(b.String(), "\n")
}
