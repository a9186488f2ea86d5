package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/voltcast/forecast-api/internal/report"
	"github.com/voltcast/forecast-api/internal/simulation"
	"github.com/voltcast/forecast-api/internal/types"
)

// ForecastHandler serves the synchronous forecast endpoint.
type ForecastHandler struct {
	deps   *Dependencies
	logger *slog.Logger
}

// NewForecastHandler creates the handler with its dependencies.
func NewForecastHandler(deps *Dependencies) *ForecastHandler {
	return &ForecastHandler{deps: deps, logger: deps.Logger}
}

// HandleForecast runs the full pipeline and answers with the complete
// report. Input problems are 400s; simulation failures are 500s;
// provider failures degrade to defaults and never fail the request.
func (h *ForecastHandler) HandleForecast(c *gin.Context) {
	const operation = "forecast"

	var req types.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid request body", "invalid_json")
		return
	}
	if err := req.Validate(); err != nil {
		RespondWithError(c, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	LogRequest(h.logger, c, operation, map[string]interface{}{
		"latitude": *req.Latitude, "longitude": *req.Longitude,
		"size": req.Size, "custom": req.Custom, "hours": req.Hours(),
	})

	ctx := c.Request.Context()
	p := newPipeline(h.deps, &req)

	p.fetchLocation(ctx)
	p.fetchEnvironment(ctx)

	result, err := p.simulate(ctx, nil, nil)
	if err != nil {
		if errors.Is(err, simulation.ErrCanceled) {
			return // client gone, nothing to answer
		}
		h.logger.Error("simulation failed", "error", types.NewSimulationError(err))
		RespondWithError(c, http.StatusInternalServerError, "simulation failed", "simulation_error")
		LogResponse(h.logger, operation, http.StatusInternalServerError, nil)
		return
	}

	doc := p.buildReport(result, "")
	doc.Analysis = h.generateAnalysis(ctx, doc)

	p.persistReport(doc)

	LogResponse(h.logger, operation, http.StatusOK, map[string]interface{}{
		"annual_mwh": doc.Simulation.AnnualMWh,
		"region":     doc.Location.GridRegion,
	})
	c.JSON(http.StatusOK, doc)
}

// generateAnalysis collects the narrative stream into one string. A
// producer failure becomes the report's narrative text rather than an
// error, matching the degradation contract.
func (h *ForecastHandler) generateAnalysis(ctx context.Context, doc *report.Report) string {
	var sb strings.Builder
	err := h.deps.Narrative.Stream(ctx, report.NarrativePrompt(doc), func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	})
	if err != nil {
		h.logger.Warn("narrative generation failed", "error", err)
		return "Error generating analysis: " + err.Error()
	}
	return sb.String()
}
