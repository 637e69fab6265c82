// Package reconcile left-joins the site registry with the progress log and
// assigns each site its installation status.
package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/apperr"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/normalize"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

// Columns names the source columns read during reconciliation. Lookups are
// case and whitespace insensitive; list fields are tried in order.
type Columns struct {
	ID        string   `yaml:"id"`
	Latitude  string   `yaml:"latitude"`
	Longitude string   `yaml:"longitude"`
	Timestamp []string `yaml:"timestamp"`
	Region    []string `yaml:"region"`
	Scope     string   `yaml:"scope"`
	Count     string   `yaml:"count"`
}

// DefaultColumns matches the tracking sheet and installation form exports.
func DefaultColumns() Columns {
	return Columns{
		ID:        "Site ID",
		Latitude:  "Latitude",
		Longitude: "Longitude",
		Timestamp: []string{"Timestamp", "Installation Date"},
		Region:    []string{"Region"},
		Scope:     "Scope Status",
		Count:     "Count Of Installed ACs",
	}
}

// Config fixes the behaviour of a Reconciler.
type Config struct {
	Predicate Predicate
	Columns   Columns
	Location  *time.Location
}

// Result is the reconciled table plus the counters worth logging.
type Result struct {
	Records         []models.SiteRecord
	SkippedBlankIDs int
	DuplicateIDs    int
	ParseErrors     int
}

var errMembershipSingleSource = errors.New("membership predicate requires a progress dataset")

// Reconciler is stateless; the same inputs always give the same Result.
type Reconciler struct {
	cfg Config
}

// New validates cfg and returns a Reconciler.
func New(cfg Config) (*Reconciler, error) {
	if _, err := ParsePredicate(string(cfg.Predicate)); err != nil {
		return nil, err
	}
	if cfg.Columns.ID == "" {
		return nil, errors.New("identifier column name is required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Reconciler{cfg: cfg}, nil
}

type columnSet struct {
	id, lat, lon, ts, region, scope, count int
}

func (c Columns) resolve(t tabular.Table) columnSet {
	return columnSet{
		id:     t.Index(c.ID),
		lat:    t.Index(c.Latitude),
		lon:    t.Index(c.Longitude),
		ts:     t.IndexAny(c.Timestamp...),
		region: t.IndexAny(c.Region...),
		scope:  t.Index(c.Scope),
		count:  t.Index(c.Count),
	}
}

// Reconcile produces exactly one record per distinct, non-blank registry id,
// in registry order. progress may be nil for single-source deployments, in
// which case timestamps and counts are read from the registry itself.
// Progress ids missing from the registry are ignored; for a repeated progress
// id the first row wins. Coordinates and the installed count fall back from
// the matched progress row to the registry row, cell by cell.
func (r *Reconciler) Reconcile(registry tabular.Table, progress *tabular.Table) (Result, error) {
	regCols := r.cfg.Columns.resolve(registry)
	if regCols.id < 0 {
		return Result{}, fmt.Errorf("registry has no %q column: %w", r.cfg.Columns.ID, apperr.ErrInternal)
	}

	twoSource := progress != nil
	if !twoSource && r.cfg.Predicate == PredicateMembership {
		return Result{}, errMembershipSingleSource
	}

	var progCols columnSet
	firstMatch := map[string]int{}
	if twoSource {
		progCols = r.cfg.Columns.resolve(*progress)
		if progCols.id < 0 {
			return Result{}, fmt.Errorf("progress has no %q column: %w", r.cfg.Columns.ID, apperr.ErrInternal)
		}
		for i := range progress.Rows {
			id := progress.Value(i, progCols.id)
			if id == "" {
				continue
			}
			if _, ok := firstMatch[id]; !ok {
				firstMatch[id] = i
			}
		}
	}

	c := &coercer{times: normalize.TimeParser{Location: r.cfg.Location}}
	res := Result{Records: make([]models.SiteRecord, 0, registry.Len())}
	seen := make(map[string]struct{}, registry.Len())

	for i := range registry.Rows {
		id := registry.Value(i, regCols.id)
		if id == "" {
			res.SkippedBlankIDs++
			continue
		}
		if _, dup := seen[id]; dup {
			res.DuplicateIDs++
			continue
		}
		seen[id] = struct{}{}

		rec := models.SiteRecord{
			SiteID:    id,
			Region:    strings.TrimSpace(registry.Value(i, regCols.region)),
			Scope:     strings.TrimSpace(registry.Value(i, regCols.scope)),
			Latitude:  c.float(registry, i, regCols.lat),
			Longitude: c.float(registry, i, regCols.lon),
		}

		row, matched := firstMatch[id]
		switch {
		case matched:
			if rec.Latitude == nil {
				rec.Latitude = c.float(*progress, row, progCols.lat)
			}
			if rec.Longitude == nil {
				rec.Longitude = c.float(*progress, row, progCols.lon)
			}
			rec.InstalledAt = c.time(*progress, row, progCols.ts)
			rec.InstalledCount = c.count(*progress, row, progCols.count)
			if rec.InstalledCount == nil {
				rec.InstalledCount = c.count(registry, i, regCols.count)
			}
		case !twoSource:
			rec.InstalledAt = c.time(registry, i, regCols.ts)
			rec.InstalledCount = c.count(registry, i, regCols.count)
		}

		rec.Status = r.cfg.Predicate.status(rec, twoSource, matched)
		res.Records = append(res.Records, rec)
	}

	res.ParseErrors = c.failures
	return res, nil
}

// ApplyGeoPolicy drops records without coordinates when drop is set. The
// input slice is never modified.
func ApplyGeoPolicy(records []models.SiteRecord, drop bool) []models.SiteRecord {
	out := make([]models.SiteRecord, 0, len(records))
	for _, rec := range records {
		if drop && !rec.HasGeo() {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// coercer reads optional typed cells, turning parse failures into missing values.
type coercer struct {
	times    normalize.TimeParser
	failures int
}

func (c *coercer) float(t tabular.Table, row, col int) *float64 {
	if col < 0 {
		return nil
	}
	v, err := normalize.ParseFloat(t.Columns[col], t.Value(row, col))
	if err != nil {
		c.failures++
	}
	return v
}

func (c *coercer) count(t tabular.Table, row, col int) *int64 {
	if col < 0 {
		return nil
	}
	v, err := normalize.ParseCount(t.Columns[col], t.Value(row, col))
	if err != nil {
		c.failures++
	}
	return v
}

func (c *coercer) time(t tabular.Table, row, col int) *time.Time {
	if col < 0 {
		return nil
	}
	v, err := c.times.Parse(t.Columns[col], t.Value(row, col))
	if err != nil {
		c.failures++
	}
	return v
}
