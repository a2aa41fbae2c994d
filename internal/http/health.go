package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdesk/jobdesk/internal/database"
)

// HealthController reports service and database status.
type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// Status handles GET /health.
func (hc *HealthController) Status(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"

	if hc.db != nil {
		sqlDB, err := hc.db.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			dbStatus = "unavailable"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": dbStatus,
		"version":  hc.version,
	})
}
