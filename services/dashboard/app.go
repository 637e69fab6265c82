package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/config"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/db"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/pipeline"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/reconcile"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/source"
)

// app owns the resources behind one pipeline.
type app struct {
	pipeline *pipeline.Pipeline
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires readers, cache and reconciler from cfg.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	var querier source.TableQuerier
	if cfg.UsesDatabase() {
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connection error: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		querier = store
	}

	var cache source.Cache = source.NewMemoryCache()
	if cfg.RedisURL != "" {
		rc, err := source.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis connection error: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rc.Close() })
		cache = rc
	}

	client := &http.Client{Timeout: cfg.RequestTimeout}
	open := func(spec source.Spec) (source.Reader, error) {
		r, err := source.Open(spec, client, querier)
		if err != nil {
			return nil, err
		}
		return source.NewCachedReader(r, cache, cfg.CacheTTL, logger.Named("source")), nil
	}

	registry, err := open(cfg.Registry)
	if err != nil {
		a.Close()
		return nil, err
	}
	var progress source.Reader
	if !cfg.SingleSource {
		if progress, err = open(cfg.Progress); err != nil {
			a.Close()
			return nil, err
		}
	}

	rec, err := reconcile.New(reconcile.Config{
		Predicate: cfg.Predicate,
		Columns:   cfg.Columns,
		Location:  cfg.Location,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.pipeline, err = pipeline.New(pipeline.Config{
		Registry:       registry,
		Progress:       progress,
		Reconciler:     rec,
		IDColumn:       cfg.Columns.ID,
		DropMissingGeo: cfg.DropMissingGeo,
		Logger:         logger.Named("pipeline"),
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("pipeline configured",
		zap.String("predicate", string(cfg.Predicate)),
		zap.Bool("single_source", cfg.SingleSource),
		zap.Bool("drop_missing_geo", cfg.DropMissingGeo),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Bool("redis_cache", cfg.RedisURL != ""),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.String("timezone", cfg.Location.String()),
	)
	return a, nil
}

// runTimeout bounds a one-shot pipeline run from the CLI.
func runTimeout(cfg config.Config) time.Duration {
	return 2*cfg.RequestTimeout + 5*time.Second
}
