// Package pipeline runs fetch, normalize, reconcile and metrics as one unit
// and publishes the result as an immutable snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/apperr"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/metrics"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/normalize"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/reconcile"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/source"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

// NoDataMessage prefixes the message of every unavailable snapshot.
const NoDataMessage = "No data available"

// Config wires a Pipeline. Progress is nil for single-source deployments.
type Config struct {
	Registry       source.Reader
	Progress       source.Reader
	Reconciler     *reconcile.Reconciler
	IDColumn       string
	DropMissingGeo bool
	Logger         *zap.Logger
}

// Pipeline is safe to Run from one goroutine at a time; the Refresher
// guarantees that.
type Pipeline struct {
	cfg Config
	now func() time.Time
}

// New validates cfg.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Registry == nil {
		return nil, errors.New("pipeline: registry source is required")
	}
	if cfg.Reconciler == nil {
		return nil, errors.New("pipeline: reconciler is required")
	}
	if cfg.IDColumn == "" {
		return nil, errors.New("pipeline: identifier column is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, now: time.Now}, nil
}

// Run executes one full pass. It never returns nil: any fetch, schema or
// internal failure yields an empty snapshot with Available=false.
func (p *Pipeline) Run(ctx context.Context) *models.Snapshot {
	runID := uuid.NewString()
	log := p.cfg.Logger.With(zap.String("run_id", runID))
	start := p.now()

	snap, err := p.run(ctx, log)
	if err != nil {
		switch {
		case apperr.IsNoData(err):
			log.Warn("pipeline run produced no data", zap.Error(err))
		default:
			log.Error("pipeline run failed", zap.Error(err))
		}
		snap = Unavailable(err)
	}

	snap.RunID = runID
	snap.GeneratedAt = p.now().UTC()
	if snap.Available {
		log.Info("pipeline run complete",
			zap.Int("sites", snap.Summary.TotalSites),
			zap.Int("installed", snap.Summary.Installed),
			zap.Int("skipped_blank_ids", snap.SkippedIDs),
			zap.Int("parse_errors", snap.ParseErrors),
			zap.Duration("took", p.now().Sub(start)),
		)
	}
	return snap
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger) (*models.Snapshot, error) {
	registry, err := p.load(ctx, log, p.cfg.Registry, "registry")
	if err != nil {
		return nil, err
	}

	var progress *tabular.Table
	if p.cfg.Progress != nil {
		t, err := p.load(ctx, log, p.cfg.Progress, "progress")
		if err != nil {
			return nil, err
		}
		progress = &t
	}

	res, err := p.cfg.Reconciler.Reconcile(registry, progress)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	if res.DuplicateIDs > 0 {
		log.Debug("duplicate registry ids ignored", zap.Int("count", res.DuplicateIDs))
	}

	records := reconcile.ApplyGeoPolicy(res.Records, p.cfg.DropMissingGeo)
	summary, trend := metrics.Compute(records)

	return &models.Snapshot{
		Available:   true,
		Records:     records,
		Summary:     summary,
		Trend:       trend,
		SkippedIDs:  res.SkippedBlankIDs,
		ParseErrors: res.ParseErrors,
	}, nil
}

func (p *Pipeline) load(ctx context.Context, log *zap.Logger, r source.Reader, dataset string) (tabular.Table, error) {
	raw, err := r.Read(ctx)
	if err != nil {
		var fe *apperr.FetchError
		if !errors.As(err, &fe) {
			err = &apperr.FetchError{Source: dataset, Err: err}
		}
		return tabular.Table{}, err
	}
	t, err := normalize.Normalize(raw, p.cfg.IDColumn, dataset)
	if err != nil {
		return tabular.Table{}, err
	}
	log.Debug("dataset loaded", zap.String("dataset", dataset), zap.Int("rows", t.Len()))
	return t, nil
}

// Available returns nil for a snapshot with data. Otherwise the error matches
// apperr.ErrNoData and its text is the snapshot message.
func Available(snap *models.Snapshot) error {
	if snap != nil && snap.Available {
		return nil
	}
	msg := NoDataMessage
	if snap != nil && snap.Message != "" {
		msg = snap.Message
	}
	return &noDataError{msg: msg}
}

type noDataError struct{ msg string }

func (e *noDataError) Error() string { return e.msg }

func (e *noDataError) Unwrap() error { return apperr.ErrNoData }

// Unavailable is the empty snapshot shown when a run could not produce data.
func Unavailable(err error) *models.Snapshot {
	msg := NoDataMessage
	switch {
	case err == nil:
	case apperr.IsNoData(err):
		msg += ": " + err.Error()
	default:
		msg += ": " + apperr.ErrInternal.Error()
	}
	return &models.Snapshot{
		Available: false,
		Message:   msg,
		Records:   []models.SiteRecord{},
		Trend:     []models.TrendPoint{},
	}
}
