// Package report assembles the final forecast document from the
// simulator output and provider results, and persists the last report
// to disk.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/voltcast/forecast-api/internal/providers"
	"github.com/voltcast/forecast-api/internal/simulation"
	"github.com/voltcast/forecast-api/internal/types"
)

// Roll-up conversion constants.
const (
	kgPerUSTon      = 907.185
	tonsPerCarYear  = 4.6   // average passenger car, tons CO₂/year
	kwhPerHomeYear  = 10000 // average US home, kWh/year
	downsampleHours = 24
)

// Report is the complete forecast document returned by the API and
// persisted to disk.
type Report struct {
	Timestamp       string                   `json:"timestamp"`
	Location        LocationSection          `json:"location"`
	Datacenter      types.DataCenterConfig   `json:"datacenter"`
	Climate         providers.ClimateReading `json:"climate"`
	Simulation      SimulationSection        `json:"simulation"`
	Energy          EnergySection            `json:"energy"`
	Carbon          CarbonSection            `json:"carbon"`
	CommunityImpact CommunitySection         `json:"community_impact"`
	Analysis        string                   `json:"analysis"`
}

// LocationSection describes the evaluated site.
type LocationSection struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Address      string  `json:"address,omitempty"`
	Name         string  `json:"name"`
	State        string  `json:"state"`
	StateFIPS    string  `json:"state_fips"`
	GridRegion   string  `json:"grid_region"`
	Population   int     `json:"population"`
	MedianIncome int     `json:"median_income"`
}

// SimulationSection summarizes the hourly run. HourlyData carries the
// trace downsampled to every 24th hour to bound payload size; the full
// arrays stay server-side.
type SimulationSection struct {
	HoursSimulated     int        `json:"hours_simulated"`
	PeakPowerKW        float64    `json:"peak_power_kw"`
	AveragePowerKW     float64    `json:"average_power_kw"`
	AnnualMWh          float64    `json:"annual_consumption_mwh"`
	AverageUtilization float64    `json:"average_utilization"`
	PeakUtilization    float64    `json:"peak_utilization"`
	AveragePUE         float64    `json:"average_pue"`
	BestPUE            float64    `json:"best_pue"`
	WorstPUE           float64    `json:"worst_pue"`
	CoolingWaterGPH    float64    `json:"cooling_water_gph"`
	HourlyData         HourlyData `json:"hourly_data"`
}

// HourlyData is the downsampled trace.
type HourlyData struct {
	Hours       []int     `json:"hours"`
	PowerKW     []float64 `json:"power_kw"`
	Utilization []float64 `json:"utilization"`
	PUE         []float64 `json:"pue"`
}

// EnergySection carries the cost roll-up at the regional tariff.
type EnergySection struct {
	AnnualMWh       float64 `json:"annual_mwh"`
	AnnualKWh       float64 `json:"annual_kwh"`
	AnnualCost      float64 `json:"annual_cost"`
	GridRegion      string  `json:"grid_region"`
	BaseRate        float64 `json:"base_rate"`
	PeakMultiplier  float64 `json:"peak_multiplier"`
	PercentIncrease float64 `json:"percent_increase"`
}

// CarbonSection carries the emissions roll-up at the regional carbon
// intensity.
type CarbonSection struct {
	AnnualTonsCO2   float64 `json:"annual_tons_co2"`
	CarbonIntensity float64 `json:"carbon_intensity_kg_kwh"`
	EquivalentCars  float64 `json:"equivalent_cars"`
	EquivalentHomes float64 `json:"equivalent_homes"`
}

// CommunitySection mirrors the grid impact summary.
type CommunitySection struct {
	PeakImpactPct      float64                       `json:"peak_impact_percent"`
	AvgImpactPct       float64                       `json:"average_impact_percent"`
	StabilityRisk      string                        `json:"stability_risk"`
	GridClass          string                        `json:"grid_classification"`
	HouseholdImpact    simulation.HouseholdImpact    `json:"household_impact"`
	InfrastructureCost simulation.InfrastructureCost `json:"infrastructure_cost"`
}

// Inputs collects everything the builder needs.
type Inputs struct {
	Latitude  float64
	Longitude float64
	Address   string
	Config    types.DataCenterConfig
	Location  providers.LocationInfo
	Climate   providers.ClimateReading
	Region    simulation.GridProfile
	StateName string
	Hours     int
	Result    *simulation.SimulationResult
	Cooling   *simulation.CoolingModel
	Analysis  string
}

// Build assembles the report document from the simulation result and
// provider outputs.
func Build(in Inputs) *Report {
	res := in.Result

	annualKWh := res.AnnualMWh * 1000
	annualCost := annualKWh * in.Region.BaseRate
	annualCO2Tons := annualKWh * in.Region.CarbonKgPerKWh / kgPerUSTon

	avgUtil, peakUtil := meanMax(res.HourlyUtilization)
	avgPUE, worstPUE := meanMax(res.HourlyPUE)
	bestPUE := minOf(res.HourlyPUE)

	// Water draw at the average IT load: back the cooling overhead out
	// of the facility average.
	waterGPH := 0.0
	if in.Cooling != nil && avgPUE > 0 {
		itKW := res.AvgPowerKW / avgPUE
		waterGPH = in.Cooling.WaterGPH(itKW, in.Climate.ClimateSample())
	}

	return &Report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Location: LocationSection{
			Latitude:     in.Latitude,
			Longitude:    in.Longitude,
			Address:      in.Address,
			Name:         in.Location.LocationName,
			State:        in.StateName,
			StateFIPS:    in.Location.StateFIPS,
			GridRegion:   in.Region.RegionCode,
			Population:   in.Location.Population,
			MedianIncome: in.Location.MedianIncome,
		},
		Datacenter: in.Config,
		Climate:    in.Climate,
		Simulation: SimulationSection{
			HoursSimulated:     in.Hours,
			PeakPowerKW:        res.PeakPowerKW,
			AveragePowerKW:     res.AvgPowerKW,
			AnnualMWh:          res.AnnualMWh,
			AverageUtilization: avgUtil,
			PeakUtilization:    peakUtil,
			AveragePUE:         avgPUE,
			BestPUE:            bestPUE,
			WorstPUE:           worstPUE,
			CoolingWaterGPH:    waterGPH,
			HourlyData:         downsample(res),
		},
		Energy: EnergySection{
			AnnualMWh:       res.AnnualMWh,
			AnnualKWh:       annualKWh,
			AnnualCost:      annualCost,
			GridRegion:      in.Region.RegionCode,
			BaseRate:        in.Region.BaseRate,
			PeakMultiplier:  in.Region.PeakMultiplier,
			PercentIncrease: res.Impact.AvgImpactPct,
		},
		Carbon: CarbonSection{
			AnnualTonsCO2:   annualCO2Tons,
			CarbonIntensity: in.Region.CarbonKgPerKWh,
			EquivalentCars:  annualCO2Tons / tonsPerCarYear,
			EquivalentHomes: annualKWh / kwhPerHomeYear,
		},
		CommunityImpact: CommunitySection{
			PeakImpactPct:      res.Impact.PeakImpactPct,
			AvgImpactPct:       res.Impact.AvgImpactPct,
			StabilityRisk:      res.Impact.StabilityRisk,
			GridClass:          res.Impact.GridClass,
			HouseholdImpact:    res.Impact.HouseholdImpact,
			InfrastructureCost: res.Impact.InfrastructureCost,
		},
		Analysis: in.Analysis,
	}
}

// downsample keeps every 24th hour of the trace.
func downsample(res *simulation.SimulationResult) HourlyData {
	n := len(res.HourlyPowerKW)
	data := HourlyData{
		Hours:       make([]int, 0, n/downsampleHours+1),
		PowerKW:     make([]float64, 0, n/downsampleHours+1),
		Utilization: make([]float64, 0, n/downsampleHours+1),
		PUE:         make([]float64, 0, n/downsampleHours+1),
	}
	for i := 0; i < n; i += downsampleHours {
		data.Hours = append(data.Hours, i)
		data.PowerKW = append(data.PowerKW, res.HourlyPowerKW[i])
		data.Utilization = append(data.Utilization, res.HourlyUtilization[i])
		data.PUE = append(data.PUE, res.HourlyPUE[i])
	}
	return data
}

// WriteFile persists the report atomically (temp file + rename) so an
// external reader never observes a torn document. Best-effort
// persistence, not a database.
func WriteFile(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("creating temp report: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing report: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming report: %w", err)
	}
	return nil
}

func meanMax(values []float64) (mean, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max = values[0]
	sum := 0.0
	for _, v := range values {
		sum += v
		if v > max {
			max = v
		}
	}
	return sum / float64(len(values)), max
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
