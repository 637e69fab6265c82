package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

// Runner produces one snapshot per call.
type Runner interface {
	Run(ctx context.Context) *models.Snapshot
}

// Refresher keeps the latest snapshot. Runs never overlap: concurrent
// triggers join the run already in flight.
type Refresher struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger

	latest atomic.Pointer[models.Snapshot]
	group  singleflight.Group
}

// NewRefresher returns a Refresher whose Latest is an unavailable snapshot
// until the first run completes. interval <= 0 disables periodic runs.
func NewRefresher(runner Runner, interval time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Refresher{runner: runner, interval: interval, logger: logger}
	pending := Unavailable(nil)
	pending.Message = NoDataMessage + ": first refresh pending"
	r.latest.Store(pending)
	return r
}

// Interval is the configured refresh period.
func (r *Refresher) Interval() time.Duration { return r.interval }

// Latest never blocks and never returns nil.
func (r *Refresher) Latest() *models.Snapshot {
	return r.latest.Load()
}

// Trigger runs the pipeline now, or waits for the run already in flight, and
// returns the snapshot it published.
func (r *Refresher) Trigger(ctx context.Context) *models.Snapshot {
	v, _, shared := r.group.Do("run", func() (any, error) {
		snap := r.runner.Run(ctx)
		if !snap.Available && ctx.Err() != nil {
			// Shutting down; keep serving the last good snapshot.
			return r.latest.Load(), nil
		}
		r.latest.Store(snap)
		return snap, nil
	})
	if shared {
		r.logger.Debug("refresh joined in-flight run")
	}
	return v.(*models.Snapshot)
}

// Start runs once immediately and then on every tick until ctx is done.
// It blocks; callers run it in its own goroutine.
func (r *Refresher) Start(ctx context.Context) {
	r.Trigger(ctx)
	if r.interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("refresher stopped")
			return
		case <-ticker.C:
			r.Trigger(ctx)
		}
	}
}
