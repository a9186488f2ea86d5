package report

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltcast/forecast-api/internal/providers"
	"github.com/voltcast/forecast-api/internal/simulation"
	"github.com/voltcast/forecast-api/internal/types"
)

func buildTestReport(t *testing.T, hours int) *Report {
	t.Helper()

	cfg := types.PresetOrDefault(types.SizeMedium)
	sim := simulation.NewSimulator(cfg.Spec(), simulation.NewGridImpactCalculator(nil, nil), rand.New(rand.NewSource(1)))
	sim.SetStart(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC))

	climate := providers.ClimateReading{TemperatureF: 85, HumidityPct: 60, WindMPH: 5, Description: "clear sky"}
	location := providers.LocationInfo{
		LocationName: "Travis County, Texas",
		Population:   1300000,
		MedianIncome: 80000,
		StateFIPS:    "48",
	}

	result, err := sim.Run(context.Background(), climate.ClimateSample(), location.GridContext("ERCOT"), hours, nil)
	require.NoError(t, err)

	registry := simulation.NewGridRegistry()
	return Build(Inputs{
		Latitude:  30.27,
		Longitude: -97.74,
		Config:    cfg,
		Location:  location,
		Climate:   climate,
		Region:    registry.Profile("ERCOT"),
		StateName: "Texas",
		Hours:     hours,
		Result:    result,
		Cooling:   sim.Cooling(),
		Analysis:  "narrative text",
	})
}

func TestBuild_Sections(t *testing.T) {
	doc := buildTestReport(t, 24*30)

	assert.Equal(t, "Travis County, Texas", doc.Location.Name)
	assert.Equal(t, "Texas", doc.Location.State)
	assert.Equal(t, "ERCOT", doc.Location.GridRegion)
	assert.Equal(t, "48", doc.Location.StateFIPS)

	assert.Equal(t, 24*30, doc.Simulation.HoursSimulated)
	assert.Greater(t, doc.Simulation.PeakPowerKW, doc.Simulation.AveragePowerKW)
	assert.GreaterOrEqual(t, doc.Simulation.WorstPUE, doc.Simulation.AveragePUE)
	assert.GreaterOrEqual(t, doc.Simulation.AveragePUE, doc.Simulation.BestPUE)
	assert.Greater(t, doc.Simulation.CoolingWaterGPH, 0.0)

	assert.InDelta(t, doc.Simulation.AnnualMWh*1000, doc.Energy.AnnualKWh, 1e-6)
	assert.InDelta(t, doc.Energy.AnnualKWh*0.08, doc.Energy.AnnualCost, 1e-6)
	assert.Equal(t, 0.08, doc.Energy.BaseRate)

	wantTons := doc.Energy.AnnualKWh * 0.391 / 907.185
	assert.InDelta(t, wantTons, doc.Carbon.AnnualTonsCO2, 1e-6)
	assert.InDelta(t, wantTons/4.6, doc.Carbon.EquivalentCars, 1e-6)
	assert.InDelta(t, doc.Energy.AnnualKWh/10000, doc.Carbon.EquivalentHomes, 1e-6)

	assert.Equal(t, "narrative text", doc.Analysis)
	assert.NotEmpty(t, doc.Timestamp)
}

func TestBuild_Downsample(t *testing.T) {
	doc := buildTestReport(t, 8760)

	data := doc.Simulation.HourlyData
	require.Len(t, data.Hours, 365)
	assert.Len(t, data.PowerKW, 365)
	assert.Len(t, data.Utilization, 365)
	assert.Len(t, data.PUE, 365)

	assert.Equal(t, 0, data.Hours[0])
	assert.Equal(t, 24, data.Hours[1])
	assert.Equal(t, 8736, data.Hours[364])
}

func TestBuild_DownsampleShortRun(t *testing.T) {
	doc := buildTestReport(t, 1)
	data := doc.Simulation.HourlyData
	require.Len(t, data.Hours, 1)
	assert.Equal(t, 0, data.Hours[0])
}

func TestWriteFile_Atomic(t *testing.T) {
	doc := buildTestReport(t, 24)
	path := filepath.Join(t.TempDir(), "forecast_report.json")

	require.NoError(t, WriteFile(path, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, doc.Location.GridRegion, decoded.Location.GridRegion)

	// Overwriting leaves no temp files behind.
	require.NoError(t, WriteFile(path, doc))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNarrativePrompt(t *testing.T) {
	doc := buildTestReport(t, 24)
	prompt := NarrativePrompt(doc)

	assert.Contains(t, prompt, "Medium Enterprise Data Center")
	assert.Contains(t, prompt, "Grid Region: ERCOT")
	assert.Contains(t, prompt, "Travis County, Texas")
	assert.Contains(t, prompt, "Air Cooled")
	assert.NotContains(t, prompt, "%!") // no formatting verbs left behind
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Liquid Cooling", titleCase("liquid_cooling"))
	assert.Equal(t, "Enterprise", titleCase("enterprise"))
	assert.Equal(t, "Nvidia H100", titleCase("nvidia_h100"))
}

func TestReportJSONFieldNames(t *testing.T) {
	doc := buildTestReport(t, 24)
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	for _, field := range []string{
		`"timestamp"`, `"location"`, `"datacenter"`, `"climate"`,
		`"simulation"`, `"energy"`, `"carbon"`, `"community_impact"`, `"analysis"`,
		`"hours_simulated"`, `"peak_power_kw"`, `"annual_consumption_mwh"`,
		`"stability_risk"`, `"grid_classification"`, `"hourly_data"`,
	} {
		assert.True(t, strings.Contains(string(data), field), "missing %s", field)
	}
}
