package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/http"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/pipeline"
)

// serveCmd runs the API server with the periodic refresher
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API and the periodic pipeline refresh",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	refresher := pipeline.NewRefresher(a.pipeline, cfg.RefreshInterval, logger.Named("refresher"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		refresher.Start(ctx)
	}()

	srv := httpserver.New(cfg, refresher, logger.Named("http"))
	logger.Info("REST API listening", zap.String("addr", cfg.ListenAddr()))

	err = srv.Run(ctx)
	cancel()
	<-done
	return err
}
