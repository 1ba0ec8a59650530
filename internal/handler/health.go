package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Health handles GET /health
func Health(info BuildInfo, catalogSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "chatimmo",
			"listings":   catalogSize,
			"version":    info.Version,
			"build_time": info.BuildTime,
			"git_commit": info.GitCommit,
		})
	}
}

// Version handles GET /version
func Version(info BuildInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	}
}
