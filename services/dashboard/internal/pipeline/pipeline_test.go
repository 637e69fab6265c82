package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/apperr"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/reconcile"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

type stubReader struct {
	key   string
	table tabular.Table
	err   error
}

func (s *stubReader) Key() string { return s.key }

func (s *stubReader) Read(context.Context) (tabular.Table, error) {
	if s.err != nil {
		return tabular.Table{}, s.err
	}
	return s.table.Clone(), nil
}

func newReconciler(t *testing.T, p reconcile.Predicate) *reconcile.Reconciler {
	t.Helper()
	r, err := reconcile.New(reconcile.Config{
		Predicate: p,
		Columns:   reconcile.DefaultColumns(),
		Location:  time.UTC,
	})
	require.NoError(t, err)
	return r
}

func registryTable() tabular.Table {
	return tabular.New(
		[]string{" Site ID ", "Latitude", "Longitude", "Region", "Region"},
		[][]string{
			{"a1", "24.71", "46.67", "Riyadh", "dup"},
			{"A2", "21.48", "39.19", "Jeddah", "dup"},
			{"A3", "", "", "Riyadh", "dup"},
			{"", "1", "1", "Riyadh", "dup"},
		},
	)
}

func progressTable() tabular.Table {
	return tabular.New(
		[]string{"Timestamp", "Site ID", "Count Of Installed ACs"},
		[][]string{
			{"2024-01-05 10:00:00", " a1 ", "2"},
			{"not a date", "A3", "1"},
			{"2024-01-07 10:00:00", "ZZ9", "1"},
		},
	)
}

func newPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	if cfg.Reconciler == nil {
		cfg.Reconciler = newReconciler(t, reconcile.PredicateTimestamp)
	}
	cfg.IDColumn = "Site ID"
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func TestRunTwoSources(t *testing.T) {
	p := newPipeline(t, Config{
		Registry:       &stubReader{key: "registry", table: registryTable()},
		Progress:       &stubReader{key: "progress", table: progressTable()},
		DropMissingGeo: true,
	})

	snap := p.Run(context.Background())
	require.True(t, snap.Available, snap.Message)

	_, err := uuid.Parse(snap.RunID)
	assert.NoError(t, err)
	assert.False(t, snap.GeneratedAt.IsZero())

	require.Len(t, snap.Records, 2)
	assert.Equal(t, "A1", snap.Records[0].SiteID)
	assert.Equal(t, models.StatusInstalled, snap.Records[0].Status)
	assert.Equal(t, models.StatusOpen, snap.Records[1].Status)

	assert.Equal(t, models.Summary{TotalSites: 2, Installed: 1, Open: 1, ProgressPct: 50, DailyRate: 1}, snap.Summary)
	assert.Equal(t, []models.TrendPoint{{Date: "2024-01-05", Count: 1}}, snap.Trend)
	assert.Equal(t, 1, snap.SkippedIDs)
	assert.Equal(t, 1, snap.ParseErrors)
}

func TestRunKeepsSitesWithoutGeo(t *testing.T) {
	p := newPipeline(t, Config{
		Registry:       &stubReader{table: registryTable()},
		Progress:       &stubReader{table: progressTable()},
		DropMissingGeo: false,
	})

	snap := p.Run(context.Background())
	require.True(t, snap.Available)
	require.Len(t, snap.Records, 3)
	assert.Equal(t, "A3", snap.Records[2].SiteID)
	assert.False(t, snap.Records[2].HasGeo())
	assert.Equal(t, 3, snap.Summary.TotalSites)
}

func TestRunSingleSource(t *testing.T) {
	registry := tabular.New(
		[]string{"Site ID", "Latitude", "Longitude", "Scope Status"},
		[][]string{
			{"S1", "1", "1", "Installed"},
			{"S2", "2", "2", "Pending"},
		},
	)
	p := newPipeline(t, Config{
		Registry:   &stubReader{table: registry},
		Reconciler: newReconciler(t, reconcile.PredicateScope),
	})

	snap := p.Run(context.Background())
	require.True(t, snap.Available)
	assert.Equal(t, 1, snap.Summary.Installed)
	assert.Equal(t, 50.0, snap.Summary.ProgressPct)
	assert.Equal(t, 0.0, snap.Summary.DailyRate)
	assert.Empty(t, snap.Trend)
}

func TestRunCollapsesToNoData(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		contains string
	}{
		{
			name: "registry fetch fails",
			cfg: Config{
				Registry: &stubReader{err: errors.New("connection refused")},
				Progress: &stubReader{table: progressTable()},
			},
			contains: "connection refused",
		},
		{
			name: "progress fetch fails",
			cfg: Config{
				Registry: &stubReader{table: registryTable()},
				Progress: &stubReader{err: &apperr.FetchError{Source: "progress", Err: errors.New("status 404")}},
			},
			contains: "fetch progress: status 404",
		},
		{
			name: "registry without id column",
			cfg: Config{
				Registry: &stubReader{table: tabular.New([]string{"Site"}, [][]string{{"A1"}})},
				Progress: &stubReader{table: progressTable()},
			},
			contains: `required column "Site ID" not found`,
		},
		{
			name: "membership without progress",
			cfg: Config{
				Registry:   &stubReader{table: registryTable()},
				Reconciler: nil,
			},
			contains: apperr.ErrInternal.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Progress == nil {
				tt.cfg.Reconciler = newReconciler(t, reconcile.PredicateMembership)
			}
			p := newPipeline(t, tt.cfg)

			snap := p.Run(context.Background())
			assert.False(t, snap.Available)
			assert.Contains(t, snap.Message, NoDataMessage)
			assert.Contains(t, snap.Message, tt.contains)
			assert.NotNil(t, snap.Records)
			assert.Empty(t, snap.Records)
			assert.NotNil(t, snap.Trend)
			assert.Zero(t, snap.Summary)
			assert.NotEmpty(t, snap.RunID)
		})
	}
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Registry: &stubReader{}})
	assert.Error(t, err)

	_, err = New(Config{Registry: &stubReader{}, Reconciler: newReconciler(t, reconcile.PredicateCount)})
	assert.Error(t, err)
}

func TestRunIsIdempotent(t *testing.T) {
	p := newPipeline(t, Config{
		Registry:       &stubReader{table: registryTable()},
		Progress:       &stubReader{table: progressTable()},
		DropMissingGeo: true,
	})

	first := p.Run(context.Background())
	second := p.Run(context.Background())
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Trend, second.Trend)
}

func TestRunLogsCarryRunID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	registry := tabular.New(
		[]string{"Site ID", "Latitude", "Longitude"},
		[][]string{{"A1", "1", "1"}, {"a1", "2", "2"}},
	)
	p := newPipeline(t, Config{
		Registry:       &stubReader{table: registry},
		Progress:       &stubReader{table: progressTable()},
		DropMissingGeo: true,
		Logger:         zap.New(core),
	})

	snap := p.Run(context.Background())
	require.True(t, snap.Available)

	for _, msg := range []string{"dataset loaded", "duplicate registry ids ignored", "pipeline run complete"} {
		entries := logs.FilterMessage(msg).All()
		require.NotEmpty(t, entries, msg)
		for _, e := range entries {
			assert.Equal(t, snap.RunID, e.ContextMap()["run_id"], msg)
		}
	}
	assert.Len(t, logs.FilterMessage("dataset loaded").All(), 2)
}

func TestAvailable(t *testing.T) {
	assert.NoError(t, Available(&models.Snapshot{Available: true}))

	err := Available(&models.Snapshot{Message: "No data available: fetch registry: status 404"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNoData)
	assert.True(t, apperr.IsNoData(err))
	assert.Equal(t, "No data available: fetch registry: status 404", err.Error())

	err = Available(nil)
	assert.ErrorIs(t, err, apperr.ErrNoData)
	assert.Equal(t, NoDataMessage, err.Error())
}
