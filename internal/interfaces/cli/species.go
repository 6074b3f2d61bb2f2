package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ThermoCancel/internal/application/estimation"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/database/postgres"
)

func newSpeciesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "species",
		Short: "Manage the reference species library",
	}
	cmd.AddCommand(newSpeciesImportCommand())
	cmd.AddCommand(newSpeciesListCommand())
	cmd.AddCommand(newSpeciesDeleteCommand())
	return cmd
}

// withRepository opens the database and hands a ready repository to fn.
func withRepository(cmd *cobra.Command, fn func(ctx context.Context, cliCtx *CLIContext, repo *postgres.SpeciesRepository) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cliCtx.Config.Database, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	repo, err := postgres.NewSpeciesRepository(ctx, conn, cliCtx.Logger)
	if err != nil {
		return err
	}
	return fn(ctx, cliCtx, repo)
}

func newSpeciesImportCommand() *cobra.Command {
	var speciesFile string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import species from a YAML file into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(ctx context.Context, cliCtx *CLIContext, repo *postgres.SpeciesRepository) error {
				doc, err := estimation.LoadSpeciesFile(speciesFile)
				if err != nil {
					return err
				}
				defs := append([]estimation.SpeciesDefinition{*doc.Target}, doc.Benchmarks...)
				imported := 0
				for _, def := range defs {
					if !def.IsBenchmark() {
						continue
					}
					if _, err := repo.Save(ctx, def); err != nil {
						return err
					}
					imported++
				}
				fmt.Printf("Imported %d benchmark species\n", imported)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&speciesFile, "species-file", "f", "", "YAML species file (required)")
	_ = cmd.MarkFlagRequired("species-file")
	return cmd
}

func newSpeciesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List species stored in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(ctx context.Context, cliCtx *CLIContext, repo *postgres.SpeciesRepository) error {
				stored, err := repo.List(ctx)
				if err != nil {
					return err
				}
				return PrintResult(cliCtx, stored, func() string {
					if len(stored) == 0 {
						return "library is empty"
					}
					var b strings.Builder
					for _, sp := range stored {
						fmt.Fprintf(&b, "%-24s low %-18s high %s\n",
							sp.Definition.Label,
							sp.Definition.LowLevelHf298,
							sp.Definition.HighLevelHf298)
					}
					return strings.TrimRight(b.String(), "\n")
				})
			})
		},
	}
}

func newSpeciesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <label>",
		Short: "Delete a species from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(ctx context.Context, cliCtx *CLIContext, repo *postgres.SpeciesRepository) error {
				if err := repo.DeleteByLabel(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted %s\n", args[0])
				return nil
			})
		},
	}
}
