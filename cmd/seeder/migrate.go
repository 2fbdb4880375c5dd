package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yigit/fneseed/internal/app/migrations"
	"github.com/yigit/fneseed/internal/bootstrap"
	"github.com/yigit/fneseed/internal/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Create the sandbox tables the seeder writes into",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		cfg, lgr, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		deps, err := bootstrap.BuildDependencies(ctx, cfg, lgr, bootstrap.BuildOptions{})
		if err != nil {
			return err
		}
		defer deps.Close()

		return runMigrations(ctx, deps)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// runMigrations applies the embedded schema once the safety gate has passed
func runMigrations(ctx context.Context, deps *bootstrap.Dependencies) error {
	if deps.DB == nil {
		return errors.New("migrations need a database connection")
	}
	if err := deps.Gate.Check(ctx, deps.Target()); err != nil {
		return err
	}

	applied, err := migrations.NewMigrator(deps.DB, logger.Component("migrations")).Up(ctx)
	if err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}
	deps.Logger.Info().Int("applied", len(applied)).Msg("Database migrations complete")
	return nil
}
