package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/pipeline"
)

var snapshotRecords bool

// snapshotCmd runs the pipeline once and prints the snapshot
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Run the pipeline once and print the snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout(cfg))
		defer cancel()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		snap := a.pipeline.Run(ctx)
		if !snapshotRecords {
			snap.Records = nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return pipeline.Available(snap)
	},
}
