package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

type MetaHandler struct {
	env       string
	version   string
	startedAt time.Time
}

func NewMetaHandler(env, version string) *MetaHandler {
	return &MetaHandler{env: env, version: version, startedAt: time.Now().UTC()}
}

func (h *MetaHandler) GetMeta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":           "TrustRail Backend",
		"version":        h.version,
		"env":            h.env,
		"go_version":     runtime.Version(),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}
