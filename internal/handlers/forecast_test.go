package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltcast/forecast-api/internal/providers"
	"github.com/voltcast/forecast-api/internal/report"
	"github.com/voltcast/forecast-api/internal/simulation"
)

type stubLocation struct{ info providers.LocationInfo }

func (s stubLocation) ResolveLocation(context.Context, float64, float64) providers.LocationInfo {
	return s.info
}

type stubEnergy struct{ info providers.EnergyInfo }

func (s stubEnergy) ResolveEnergy(context.Context, string) providers.EnergyInfo {
	return s.info
}

type stubClimate struct{ reading providers.ClimateReading }

func (s stubClimate) ResolveClimate(context.Context, float64, float64) providers.ClimateReading {
	return s.reading
}

type stubAddress struct{}

func (stubAddress) ResolveAddress(context.Context, float64, float64) string {
	return "123 Main St, Austin, TX"
}

type stubNarrative struct {
	chunks []string
	err    error
}

func (s stubNarrative) Stream(_ context.Context, _ string, emit func(string) error) error {
	for _, chunk := range s.chunks {
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return s.err
}

func texasLocation() providers.LocationInfo {
	return providers.LocationInfo{
		LocationName: "Travis County, Texas",
		Population:   1300000,
		MedianIncome: 80000,
		StateFIPS:    "48",
	}
}

func testDeps(t *testing.T) *Dependencies {
	t.Helper()

	registry := simulation.NewGridRegistry()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	return &Dependencies{
		Location:  stubLocation{info: texasLocation()},
		Energy:    stubEnergy{info: providers.EnergyInfo{PricePerKWh: 0.08, State: "48"}},
		Climate:   stubClimate{reading: providers.ClimateReading{TemperatureF: 85, HumidityPct: 60, WindMPH: 5, Description: "clear sky"}},
		Address:   stubAddress{},
		Narrative: stubNarrative{chunks: []string{"Analysis ", "complete."}},
		Registry:  registry,
		Impact:    simulation.NewGridImpactCalculator(registry, logger),
		Logger:    logger,
		Config: &Config{
			Version:     "test",
			ServiceName: "forecast-api",
			ReportPath:  filepath.Join(t.TempDir(), "forecast_report.json"),
		},
	}
}

func testRouter(deps *Dependencies) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHandlers(r, deps)
	return r
}

func postForecast(t *testing.T, r *gin.Engine, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestForecast_MissingLatitude(t *testing.T) {
	r := testRouter(testDeps(t))

	w := postForecast(t, r, "/api/forecast", map[string]interface{}{
		"longitude": -97.74,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "latitude")
}

func TestForecast_InvalidJSON(t *testing.T) {
	r := testRouter(testDeps(t))

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForecast_MediumPresetTexas(t *testing.T) {
	deps := testDeps(t)
	r := testRouter(deps)

	w := postForecast(t, r, "/api/forecast", map[string]interface{}{
		"latitude":         30.27,
		"longitude":        -97.74,
		"size":             "medium",
		"simulation_hours": 24 * 7,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var doc report.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	assert.Equal(t, "ERCOT", doc.Location.GridRegion)
	assert.Equal(t, "Texas", doc.Location.State)
	assert.Equal(t, 24*7, doc.Simulation.HoursSimulated)
	assert.Greater(t, doc.Simulation.PeakPowerKW, doc.Simulation.AveragePowerKW)
	assert.Equal(t, 0.08, doc.Energy.BaseRate)
	assert.Equal(t, 0.391, doc.Carbon.CarbonIntensity)
	assert.Equal(t, "Analysis complete.", doc.Analysis)
	assert.Equal(t, "123 Main St, Austin, TX", doc.Location.Address)

	// The report is persisted for later retrieval.
	_, err := os.Stat(deps.Config.ReportPath)
	assert.NoError(t, err)
}

func TestForecast_UnknownStateFallsBackToDefault(t *testing.T) {
	deps := testDeps(t)
	deps.Location = stubLocation{info: providers.LocationInfo{
		LocationName: "Somewhere",
		Population:   2000000,
		StateFIPS:    "99",
	}}
	r := testRouter(deps)

	w := postForecast(t, r, "/api/forecast", map[string]interface{}{
		"latitude":         64.2,
		"longitude":        -149.5,
		"size":             "small",
		"simulation_hours": 48,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var doc report.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "DEFAULT", doc.Location.GridRegion)
	assert.Equal(t, 0.10, doc.Energy.BaseRate)
	assert.Equal(t, "low", doc.CommunityImpact.StabilityRisk)
}

func TestForecast_CustomSpec(t *testing.T) {
	r := testRouter(testDeps(t))

	w := postForecast(t, r, "/api/forecast", map[string]interface{}{
		"latitude":         30.27,
		"longitude":        -97.74,
		"custom":           true,
		"power_mw":         0.0005,
		"servers":          1,
		"square_feet":      100,
		"datacenter_type":  "ai_training",
		"simulation_hours": 24,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var doc report.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, 24, doc.Simulation.HoursSimulated)
	assert.GreaterOrEqual(t, doc.Simulation.AverageUtilization, 75.0)
	assert.Len(t, doc.Simulation.HourlyData.Hours, 1)
}

func TestForecast_NarrativeFailureDegrades(t *testing.T) {
	deps := testDeps(t)
	deps.Narrative = stubNarrative{err: errors.New("producer unavailable")}
	r := testRouter(deps)

	w := postForecast(t, r, "/api/forecast", map[string]interface{}{
		"latitude":         30.27,
		"longitude":        -97.74,
		"simulation_hours": 24,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var doc report.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc.Analysis, "Error generating analysis")
}

func TestDataCenterTypes(t *testing.T) {
	r := testRouter(testDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/api/datacenter-types", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var catalog map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog))
	for _, size := range []string{"small", "medium", "large", "mega"} {
		assert.Contains(t, catalog, size)
	}
}

func TestHealthCheck(t *testing.T) {
	r := testRouter(testDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.False(t, health.Timestamp.IsZero())
}
