package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-wall-must-hold/internal/cli"
	"github.com/Veraticus/the-wall-must-hold/internal/config"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
	"github.com/Veraticus/the-wall-must-hold/internal/storage"
	"github.com/Veraticus/the-wall-must-hold/internal/threshold"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

With --seed the built-in thresholds are written for the given year,
leaving any rows that already exist untouched.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current schema version without applying changes")
	cmd.Flags().Int("seed", 0, "Seed built-in thresholds for this year after migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	seedYear, _ := cmd.Flags().GetInt("seed")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		version, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Database %s is at schema version %d (latest %d)",
			cfg.DatabasePath, version, storage.ExpectedSchemaVersion)))
		return nil
	}

	slog.Info("Running database migrations", "database", cfg.DatabasePath)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess("Database migrations completed"))

	if seedYear > 0 {
		set := threshold.Builtin(seedYear)
		defs := make([]model.ThresholdDefinition, 0, len(set))
		for _, def := range set {
			defs = append(defs, def)
		}
		threshold.SortByAmount(defs)
		if err := store.SeedThresholds(ctx, defs); err != nil {
			return fmt.Errorf("failed to seed thresholds: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Seeded %d thresholds for %d", len(defs), seedYear)))
	}

	return nil
}
