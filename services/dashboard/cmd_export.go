package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/export"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/pipeline"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/present"
)

var (
	exportFormat   string
	exportOut      string
	exportStatuses []string
	exportRegions  []string
	exportStart    string
	exportEnd      string
)

// exportCmd runs the pipeline once and writes the filtered table
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the pipeline once and write an xlsx, csv or html export",
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFormat)
	if format != "xlsx" && format != "csv" && format != "html" {
		return fmt.Errorf("unknown export format %q", exportFormat)
	}
	filter, err := present.ParseFilter(exportStatuses, exportRegions, exportStart, exportEnd, cfg.Location)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout(cfg))
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.pipeline.Run(ctx)
	if err := pipeline.Available(snap); err != nil {
		return err
	}
	view := present.Apply(snap.Records, filter)

	out := exportOut
	if out == "" {
		out = "ac_installation_status." + format
	}
	err = writeOutput(out, func(w io.Writer) error {
		switch format {
		case "xlsx":
			return export.WriteXLSX(w, view.Records)
		case "csv":
			return export.WriteCSV(w, view.Records)
		default:
			return export.WriteHTMLReport(w, export.Report{
				Title:       "AC Installation Progress Report",
				GeneratedAt: snap.GeneratedAt.In(cfg.Location),
				Summary:     view.Summary,
				Records:     view.Records,
			})
		}
	})
	if err != nil {
		return fmt.Errorf("write %s export: %w", format, err)
	}

	logger.Info("export written",
		zap.String("format", format),
		zap.String("out", out),
		zap.Int("sites", len(view.Records)),
	)
	return nil
}

// writeOutput runs write against stdout for "-" or a new file at path. A
// failed write or close removes the partial file.
func writeOutput(path string, write func(io.Writer) error) (err error) {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(f)
}
