package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voltcast/forecast-api/internal/types"
)

// CatalogHandler serves the size preset catalog and the liveness check.
type CatalogHandler struct {
	deps   *Dependencies
	logger *slog.Logger
}

// NewCatalogHandler creates the handler with its dependencies.
func NewCatalogHandler(deps *Dependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps, logger: deps.Logger}
}

// HandleDataCenterTypes returns the named size presets.
func (h *CatalogHandler) HandleDataCenterTypes(c *gin.Context) {
	c.JSON(http.StatusOK, types.Presets())
}

// HealthResponse is the liveness check body.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// HandleHealthCheck reports liveness.
func (h *CatalogHandler) HandleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   h.deps.Config.ServiceName,
		Version:   h.deps.Config.Version,
		Timestamp: time.Now().UTC(),
	})
}
