package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/present"
)

// parseFilter reads the status, region, start and end query parameters.
func parseFilter(c *gin.Context, loc *time.Location) (models.Filter, error) {
	return present.ParseFilter(c.QueryArray("status"), c.QueryArray("region"), c.Query("start"), c.Query("end"), loc)
}
