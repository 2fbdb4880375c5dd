package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yigit/fneseed/internal/pkg/filestorage"
	"github.com/yigit/fneseed/internal/server"
)

var reportsPort string

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect the reports written by earlier runs",
}

var reportsServeCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Serve stored reports over HTTP",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		cfg, lgr, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		storage, err := filestorage.NewLocalStorage(cfg.Seeding.ReportDir)
		if err != nil {
			return err
		}
		return server.NewServer(cfg, storage, reportsPort, lgr).Run(ctx)
	},
}

var reportsListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List stored reports, newest first",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		storage, err := filestorage.NewLocalStorage(cfg.Seeding.ReportDir)
		if err != nil {
			return err
		}
		reports, err := storage.ListReports()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "REPORT\tBYTES\tMODIFIED")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.Filename, r.FileSize, r.ModTime.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsServeCmd, reportsListCmd)

	reportsServeCmd.Flags().StringVar(&reportsPort, "port", "", "Port to listen on (overrides server.port)")
}
