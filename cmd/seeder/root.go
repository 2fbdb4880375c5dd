package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yigit/fneseed/internal/bootstrap"
	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/safety"
	"github.com/yigit/fneseed/internal/seed"
)

type rootOptions struct {
	configPath       string
	skipCleanup      bool
	skipConfirmation bool
	dryRun           bool
	migrate          bool
	seed             uint64
	tag              string
}

var rootOpts rootOptions

// volumeFlags maps flag names onto the config field they override
var volumeFlags = map[string]func(*config.Volumes) *int{
	"users":        func(v *config.Volumes) *int { return &v.Users },
	"schools":      func(v *config.Volumes) *int { return &v.Schools },
	"admins":       func(v *config.Volumes) *int { return &v.Admins },
	"consultants":  func(v *config.Volumes) *int { return &v.Consultants },
	"supervisors":  func(v *config.Volumes) *int { return &v.Supervisors },
	"teachers":     func(v *config.Volumes) *int { return &v.Teachers },
	"courses":      func(v *config.Volumes) *int { return &v.Courses },
	"activities":   func(v *config.Volumes) *int { return &v.Activities },
	"max-sessions": func(v *config.Volumes) *int { return &v.MaxSessions },
}

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Populate a sandbox LMS database with realistic synthetic data",
	Long: `Generates schools, cohorts, growth communities, users, courses, activity and
learning progress into a non-production store. Every run is gated by the
production blacklist, the environment flag and a connectivity probe, and the
previous run's tagged rows are removed after an explicit confirmation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOpts.configPath, "config", filepath.Join("configs", "seeder.yaml"), "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&rootOpts.tag, "tag", "", "Seed tag marking generated rows (overrides seeding.tag)")

	flags := rootCmd.Flags()
	flags.BoolVar(&rootOpts.skipCleanup, "skip-cleanup", false, "Keep rows from earlier runs instead of deleting them first")
	flags.BoolVar(&rootOpts.skipConfirmation, "skip-confirmation", false, "Do not prompt before deleting earlier runs")
	flags.BoolVar(&rootOpts.dryRun, "dry-run", false, "Generate into an in-memory store; nothing is written to the database")
	flags.BoolVar(&rootOpts.migrate, "migrate", false, "Apply the sandbox schema before seeding")
	flags.Uint64Var(&rootOpts.seed, "seed", 0, "Random seed for a reproducible run (0 picks one)")
	for name := range volumeFlags {
		flags.Int(name, 0, fmt.Sprintf("Number of %s to generate (overrides volumes)", name))
	}
}

// loadConfig reads the configuration and applies command-line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(rootOpts.configPath)
	if err != nil {
		return nil, lgr, err
	}

	if rootOpts.tag != "" {
		cfg.Seeding.Tag = rootOpts.tag
	}
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		cfg.Seeding.RandomSeed = rootOpts.seed
	}
	for name, field := range volumeFlags {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		n, err := cmd.Flags().GetInt(name)
		if err != nil {
			return nil, lgr, err
		}
		*field(&cfg.Volumes) = n
	}
	if err := cfg.Volumes.Validate(); err != nil {
		return nil, lgr, err
	}
	return cfg, lgr, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func terminalConfirmer() safety.Confirmer {
	return safety.TerminalConfirmer{In: os.Stdin, Out: os.Stdout}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	cfg, lgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, lgr, bootstrap.BuildOptions{
		InMemory:  rootOpts.dryRun,
		Confirmer: terminalConfirmer(),
	})
	if err != nil {
		return err
	}
	defer deps.Close()

	if rootOpts.migrate {
		if rootOpts.dryRun {
			lgr.Warn().Msg("Ignoring --migrate for a dry run")
		} else if err := runMigrations(ctx, deps); err != nil {
			return err
		}
	}

	// The in-memory store starts empty, so there is nothing to confirm
	ro := deps.RunOptions(rootOpts.skipCleanup, rootOpts.skipConfirmation || rootOpts.dryRun)
	report, err := deps.Pipeline().Execute(ctx, ro)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(out io.Writer, r *seed.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Seed run %s (seed %d) finished in %.1fs\n\n", r.Tag, r.Seed, r.DurationSeconds)
	fmt.Fprintln(w, "TABLE\tEXPECTED\tACTUAL")
	for _, check := range r.Validation {
		fmt.Fprintf(w, "%s\t%d\t%d\n", check.Table, check.Expected, check.Actual)
	}
	w.Flush()

	fmt.Fprintf(out, "\nCompletion rate: %.1f%%  Average final score: %.1f\n", r.CompletionRate, r.AverageFinalScore)
	if len(r.Warnings) > 0 {
		fmt.Fprintf(out, "%d validation warning(s):\n", len(r.Warnings))
		for _, warning := range r.Warnings {
			fmt.Fprintf(out, "  - %s\n", warning)
		}
	}
	if r.ArtifactPath != "" {
		fmt.Fprintf(out, "Report written to %s\n", r.ArtifactPath)
	}
}
