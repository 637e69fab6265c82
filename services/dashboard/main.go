package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/config"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/logging"
)

var (
	// Global flags
	verbose bool

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "AC installation progress dashboard service",
	Long: `Reconciles the site registry with the installation progress log and
serves KPIs, the daily trend, map markers and exports over HTTP.

Run without arguments to start the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.LogJSON)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "Export format: xlsx, csv or html")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: ac_installation_status.<format>, - for stdout)")
	exportCmd.Flags().StringSliceVar(&exportStatuses, "status", nil, "Keep only these statuses (INSTALLED, OPEN)")
	exportCmd.Flags().StringSliceVar(&exportRegions, "region", nil, "Keep only these regions")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "First installation date to keep (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "Last installation date to keep (YYYY-MM-DD)")

	snapshotCmd.Flags().BoolVar(&snapshotRecords, "records", false, "Include the reconciled site table")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
