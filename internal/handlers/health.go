package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/samia-tarot/panel/pkg/response"
)

// Health reports process liveness plus database reachability so load
// balancers can distinguish a running panel from one whose store is gone.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": "ok"}

		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				response.Success(c, http.StatusServiceUnavailable, status)
				return
			}
		}

		response.Success(c, http.StatusOK, status)
	}
}
