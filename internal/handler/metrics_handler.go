package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ulk-sapr/equipment-api/internal/service"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
	"github.com/ulk-sapr/equipment-api/pkg/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      Pinger
	version string
	prefix  string
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, db Pinger, version, prefix string) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db, version: version, prefix: prefix}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports ready only when the database answers a ping.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.db == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "database not configured"))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Info describes the service and its main endpoints.
func (h *MetricsHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "equipment-api",
		"version": h.version,
		"endpoints": gin.H{
			"students":  h.prefix + "/students",
			"equipment": h.prefix + "/equipment",
			"requests":  h.prefix + "/requests",
			"rooms":     h.prefix + "/rooms",
			"docs":      "/docs/index.html",
			"metrics":   "/metrics",
		},
	})
}
