// Package providers implements the external data lookups the forecast
// pipeline depends on: census demographics, EIA electricity prices,
// OpenWeather climate, reverse geocoding, and the streaming narrative
// producer. Every provider degrades to a documented default on failure;
// a provider error never fails a forecast on its own.
package providers

import (
	"context"
	"math"

	"github.com/voltcast/forecast-api/internal/simulation"
)

// LocationInfo is the demographic lookup result for a coordinate pair.
type LocationInfo struct {
	LocationName string `json:"location_name"`
	Population   int    `json:"population"`
	MedianIncome int    `json:"median_income"`
	StateFIPS    string `json:"state_fips"`
	CountyFIPS   string `json:"county_fips"`
}

// EnergyInfo is the electricity price lookup result for a state.
type EnergyInfo struct {
	PricePerKWh float64 `json:"price_per_kwh"`
	State       string  `json:"state"`
}

// ClimateReading is the raw weather lookup result before conversion to
// a simulation climate sample.
type ClimateReading struct {
	TemperatureF float64 `json:"temperature"`
	HumidityPct  float64 `json:"humidity"`
	WindMPH      float64 `json:"wind_speed"`
	Description  string  `json:"description"`
}

// Documented defaults substituted on provider failure.
const (
	DefaultPricePerKWh  = 0.11 // US national industrial average
	DefaultTemperatureF = 70
	DefaultHumidityPct  = 50
	DefaultWindMPH      = 5
)

// DefaultLocation is the lookup result when geocoding fails.
func DefaultLocation() LocationInfo {
	return LocationInfo{LocationName: "Unknown"}
}

// DefaultEnergy is the price result when the EIA lookup fails.
func DefaultEnergy(state string) EnergyInfo {
	return EnergyInfo{PricePerKWh: DefaultPricePerKWh, State: state}
}

// DefaultClimate is the weather result when the lookup fails.
func DefaultClimate() ClimateReading {
	return ClimateReading{
		TemperatureF: DefaultTemperatureF,
		HumidityPct:  DefaultHumidityPct,
		WindMPH:      DefaultWindMPH,
		Description:  "Unknown",
	}
}

// LocationProvider resolves coordinates to demographics.
type LocationProvider interface {
	ResolveLocation(ctx context.Context, lat, lon float64) LocationInfo
}

// EnergyProvider resolves a state FIPS code to an electricity price.
type EnergyProvider interface {
	ResolveEnergy(ctx context.Context, stateFIPS string) EnergyInfo
}

// ClimateProvider resolves coordinates to current weather.
type ClimateProvider interface {
	ResolveClimate(ctx context.Context, lat, lon float64) ClimateReading
}

// AddressProvider resolves coordinates to a display address. Display
// only; failures return a placeholder string.
type AddressProvider interface {
	ResolveAddress(ctx context.Context, lat, lon float64) string
}

// NarrativeStreamer produces the analysis narrative as a stream of text
// chunks. emit is called once per chunk; returning an error from emit
// stops the stream. Stream's own error means the producer failed.
type NarrativeStreamer interface {
	Stream(ctx context.Context, prompt string, emit func(chunk string) error) error
}

// ClimateSample converts a raw reading to the simulator's climate
// input, estimating wet-bulb temperature from temperature and humidity
// with the Stull (2011) approximation.
func (r ClimateReading) ClimateSample() simulation.ClimateSample {
	return simulation.ClimateSample{
		DryBulbF:    r.TemperatureF,
		WetBulbF:    estimateWetBulbF(r.TemperatureF, r.HumidityPct),
		HumidityPct: r.HumidityPct,
		WindMPH:     r.WindMPH,
	}
}

// estimateWetBulbF applies Stull's empirical wet-bulb formula. The fit
// was derived for Celsius readings but the original pipeline applies it
// to Fahrenheit inputs; that behavior is preserved so downstream
// evaporative-cooling numbers match.
func estimateWetBulbF(tempF, humidity float64) float64 {
	return tempF*math.Atan(0.151977*math.Sqrt(humidity+8.313659)) +
		math.Atan(tempF+humidity) - math.Atan(humidity-1.676331) +
		0.00391838*math.Pow(humidity, 1.5)*math.Atan(0.023101*humidity) - 4.686035
}

// GridContext derives the site grid state from demographics: 2.5
// persons per household and 1.5 kW average demand per household.
// Implausibly small populations fall back to 100,000.
func (l LocationInfo) GridContext(regionCode string) simulation.GridContext {
	population := l.Population
	if population < 1000 {
		population = 100000
	}

	households := int(float64(population) / 2.5)
	baselineMW := float64(households) * 1.5 / 1000

	return simulation.GridContext{
		RegionCode:       regionCode,
		BaselineDemandMW: baselineMW,
		TotalHouseholds:  households,
		AvgHouseholdBill: 120.0,
	}
}
