package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type purgeCacheRequest struct {
	Tags []string `json:"tags"`
}

// PurgeCache drops cached pages and navigation. With tags only those are invalidated.
func (a *API) PurgeCache(c *gin.Context) {
	var payload purgeCacheRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &payload, "tags must be a list of strings") {
			return
		}
	}

	if len(payload.Tags) == 0 {
		a.cache.Purge()
	} else {
		a.cache.Invalidate(payload.Tags...)
	}
	respondOK(c, http.StatusOK, gin.H{
		"purged":  len(payload.Tags) == 0,
		"tags":    payload.Tags,
		"entries": a.cache.Len(),
	})
}
