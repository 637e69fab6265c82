package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/apperr"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/pipeline"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/present"
)

// view resolves the latest snapshot and the request filter. It writes the
// error response itself and returns ok=false when the handler must stop.
func (s *Server) view(c *gin.Context) (*models.Snapshot, present.View, bool) {
	snap := s.snapshot(c)
	if snap == nil {
		return nil, present.View{}, false
	}
	filter, err := parseFilter(c, s.cfg.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, present.View{}, false
	}
	return snap, present.Apply(snap.Records, filter), true
}

// snapshot returns the latest available snapshot or writes 503.
func (s *Server) snapshot(c *gin.Context) *models.Snapshot {
	snap := s.snapshots.Latest()
	if err := pipeline.Available(snap); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperr.ErrNoData) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil
	}
	return snap
}

func snapshotMeta(snap *models.Snapshot) gin.H {
	return gin.H{
		"run_id":       snap.RunID,
		"generated_at": snap.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

// handleV1Summary returns the KPI block and status distribution
// GET /api/v1/dashboard/summary
func (s *Server) handleV1Summary(c *gin.Context) {
	snap, v, ok := s.view(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"summary":       v.Summary,
			"status_counts": v.StatusCounts,
		},
		"meta": snapshotMeta(snap),
	})
}

// handleV1Sites returns the filtered site table
// GET /api/v1/dashboard/sites
func (s *Server) handleV1Sites(c *gin.Context) {
	snap, v, ok := s.view(c)
	if !ok {
		return
	}

	meta := snapshotMeta(snap)
	meta["count"] = len(v.Records)
	c.JSON(http.StatusOK, gin.H{
		"data": v.Records,
		"meta": meta,
	})
}

// handleV1Geo returns map markers for the filtered sites
// GET /api/v1/dashboard/geo
func (s *Server) handleV1Geo(c *gin.Context) {
	snap, v, ok := s.view(c)
	if !ok {
		return
	}

	meta := snapshotMeta(snap)
	meta["count"] = len(v.Geo)
	c.JSON(http.StatusOK, gin.H{
		"data": v.Geo,
		"meta": meta,
	})
}

// handleV1Trend returns installations per day
// GET /api/v1/dashboard/trend
func (s *Server) handleV1Trend(c *gin.Context) {
	snap, v, ok := s.view(c)
	if !ok {
		return
	}

	meta := snapshotMeta(snap)
	meta["count"] = len(v.Trend)
	c.JSON(http.StatusOK, gin.H{
		"data": v.Trend,
		"meta": meta,
	})
}

// handleV1Regions returns the region options over the full table
// GET /api/v1/dashboard/regions
func (s *Server) handleV1Regions(c *gin.Context) {
	snap := s.snapshot(c)
	if snap == nil {
		return
	}

	regions := present.Regions(snap.Records)
	meta := snapshotMeta(snap)
	meta["count"] = len(regions)
	c.JSON(http.StatusOK, gin.H{
		"data": regions,
		"meta": meta,
	})
}
