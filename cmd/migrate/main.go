package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/migrate"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the storefront database schema",
		SilenceUsage: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPool(cmd.Context(), func(ctx context.Context, logger *zap.Logger, run runner) error {
					if err := migrate.Apply(ctx, run.pool); err != nil {
						return fmt.Errorf("apply migrations: %w", err)
					}
					logger.Info("migrations applied")
					return nil
				})
			},
		},
		downCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPool(cmd.Context(), func(ctx context.Context, _ *zap.Logger, run runner) error {
					v, dirty, err := migrate.Version(ctx, run.pool)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
					return nil
				})
			},
		},
	)
	return root
}

func downCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, logger *zap.Logger, run runner) error {
				if err := migrate.Rollback(ctx, run.pool, steps); err != nil {
					return err
				}
				logger.Info("migrations rolled back", zap.Int("steps", steps))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}
