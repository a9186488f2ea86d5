// Package handlers provides the HTTP request handlers for the forecast
// API. It implements a modular, dependency-injected architecture: every
// handler receives its collaborators through the Dependencies container
// and the only place errors become status codes or stream events is
// here.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voltcast/forecast-api/internal/providers"
	"github.com/voltcast/forecast-api/internal/simulation"
)

// Config holds handler-level application configuration.
type Config struct {
	Version     string
	ServiceName string
	ReportPath  string
}

// Dependencies holds all services the handlers depend on.
type Dependencies struct {
	Location  providers.LocationProvider
	Energy    providers.EnergyProvider
	Climate   providers.ClimateProvider
	Address   providers.AddressProvider
	Narrative providers.NarrativeStreamer

	Registry *simulation.GridRegistry
	Impact   *simulation.GridImpactCalculator

	Logger *slog.Logger
	Config *Config
}

// ErrorResponse is the standardized error body. Internal detail never
// leaves the process; Error carries a client-safe message only.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondWithError sends a standardized error response.
func RespondWithError(c *gin.Context, statusCode int, message, code string) {
	c.JSON(statusCode, ErrorResponse{Error: message, Code: code})
}

// LogRequest logs incoming requests with relevant details.
func LogRequest(logger *slog.Logger, c *gin.Context, operation string, params map[string]interface{}) {
	logger.Info("handling request",
		"operation", operation,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"params", params,
		"remote_addr", c.ClientIP(),
	)
}

// LogResponse logs response details at a level matching the status.
func LogResponse(logger *slog.Logger, operation string, statusCode int, params map[string]interface{}) {
	level := slog.LevelInfo
	if statusCode >= 400 {
		level = slog.LevelError
	} else if statusCode >= 300 {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "request completed",
		"operation", operation,
		"status_code", statusCode,
		"params", params,
	)
}

// RegisterHandlers registers all routes with the Gin router.
func RegisterHandlers(r *gin.Engine, deps *Dependencies) {
	forecastHandler := NewForecastHandler(deps)
	streamHandler := NewStreamHandler(deps)
	catalogHandler := NewCatalogHandler(deps)

	r.GET("/health", catalogHandler.HandleHealthCheck)

	api := r.Group("/api")
	{
		api.POST("/forecast", forecastHandler.HandleForecast)
		api.POST("/forecast/stream", streamHandler.HandleForecastStream)
		api.GET("/datacenter-types", catalogHandler.HandleDataCenterTypes)
	}
}

// CORSMiddleware provides CORS support for browser clients.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
