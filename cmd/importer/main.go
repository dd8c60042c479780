package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/logging"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var detectOnly bool
	cmd := &cobra.Command{
		Use:          "importer <file.csv>",
		Short:        "Import a product or category CSV export into the catalog",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if detectOnly {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open file: %w", err)
				}
				defer f.Close()
				kind, err := importer.DetectKind(f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), kind)
				return nil
			}
			return runImport(cmd, path)
		},
	}
	cmd.Flags().BoolVar(&detectOnly, "detect", false, "only print whether the file holds products or categories")
	return cmd
}

func runImport(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.Named("importer")

	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool, logger), categoryrepo.NewPostgres(pool), logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	logger.Info("import complete", zap.String("file", path), zap.Int("count", count), zap.Duration("took", time.Since(start).Truncate(time.Millisecond)))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows from %s in %s\n", count, path, time.Since(start).Truncate(time.Millisecond))
	return nil
}
