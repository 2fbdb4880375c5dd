package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yigit/fneseed/internal/bootstrap"
	"github.com/yigit/fneseed/internal/seed"
)

var cleanupOpts struct {
	dryRun           bool
	skipConfirmation bool
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete every row carrying the configured seed tag",
	Long: `Removes the rows of earlier runs in reverse dependency order. Only rows whose
seed_tag matches the configured tag are touched. --dry-run only counts them.`,
	SilenceUsage: true,
	RunE:         runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().BoolVar(&cleanupOpts.dryRun, "dry-run", false, "Count tagged rows without deleting them")
	cleanupCmd.Flags().BoolVar(&cleanupOpts.skipConfirmation, "skip-confirmation", false, "Do not prompt before deleting")
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	cfg, lgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, lgr, bootstrap.BuildOptions{Confirmer: terminalConfirmer()})
	if err != nil {
		return err
	}
	defer deps.Close()

	summary, err := deps.Pipeline().Clean(ctx,
		deps.RunOptions(false, cleanupOpts.skipConfirmation),
		seed.CleanupOptions{DryRun: cleanupOpts.dryRun},
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tFOUND\tDELETED")
	for _, t := range summary.Tables {
		if t.Missing {
			fmt.Fprintf(w, "%s\t-\t-\n", t.Table)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", t.Table, t.Found, t.Deleted)
	}
	w.Flush()

	if summary.DryRun {
		fmt.Fprintf(out, "\nDry run: %d row(s) tagged %q would be deleted\n", summary.TotalFound, summary.Tag)
	} else {
		fmt.Fprintf(out, "\nDeleted %d row(s) tagged %q\n", summary.TotalDeleted, summary.Tag)
	}
	return nil
}
