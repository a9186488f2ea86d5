package simulation

// Cooling technologies with defined efficiency profiles.
const (
	CoolingAir         = "air_cooled"
	CoolingWater       = "water_cooled"
	CoolingEvaporative = "evaporative"
	CoolingLiquid      = "liquid_cooling"
)

// ClimateSample is a point-in-time climate reading used for cooling
// calculations. Temperatures are Fahrenheit, wind is mph, irradiance is
// W/m². Immutable once constructed.
type ClimateSample struct {
	DryBulbF         float64 `json:"dry_bulb_f"`
	WetBulbF         float64 `json:"wet_bulb_f"`
	HumidityPct      float64 `json:"humidity_pct"`
	WindMPH          float64 `json:"wind_mph"`
	SolarIrradianceW float64 `json:"solar_irradiance_wm2"`
}

// coolingConfig parameterizes the PUE response of one cooling type.
type coolingConfig struct {
	basePUE         float64
	optimalTempF    float64
	tempSensitivity float64 // PUE increase per °F above optimal
	humidityFactor  float64 // PUE increase per % humidity above 45
	windBenefit     float64 // PUE reduction per mph above 5, capped
	maxPUE          float64
	waterFactor     float64 // gallons per kWh of cooling load
}

var coolingConfigs = map[string]coolingConfig{
	CoolingAir: {
		basePUE:         1.4,
		optimalTempF:    65,
		tempSensitivity: 0.012,
		humidityFactor:  0.003,
		windBenefit:     0.005,
		maxPUE:          2.0,
		waterFactor:     0.2,
	},
	CoolingWater: {
		basePUE:         1.25,
		optimalTempF:    75,
		tempSensitivity: 0.008,
		humidityFactor:  0.001,
		windBenefit:     0.001,
		maxPUE:          1.8,
		waterFactor:     1.8, // cooling towers
	},
	CoolingEvaporative: {
		basePUE:         1.15,
		optimalTempF:    70,
		tempSensitivity: 0.015,
		humidityFactor:  0.008,
		windBenefit:     0.003,
		maxPUE:          2.2,
		waterFactor:     1.0,
	},
	CoolingLiquid: {
		basePUE:         1.05,
		optimalTempF:    80,
		tempSensitivity: 0.005,
		humidityFactor:  0.0005,
		windBenefit:     0,
		maxPUE:          1.3,
		waterFactor:     0.3, // direct liquid cooling
	},
}

const (
	minPUE             = 1.02
	humidityPivotPct   = 45.0
	windPivotMPH       = 5.0
	maxWindBenefit     = 0.1
	wetBulbPivotF      = 65.0
	wetBulbSensitivity = 0.01
	waterTempPivotF    = 70.0
	waterTempPerDegree = 0.02
)

// shortCoolingNames maps the abbreviated API spellings onto the
// canonical identifiers.
var shortCoolingNames = map[string]string{
	"air":    CoolingAir,
	"water":  CoolingWater,
	"liquid": CoolingLiquid,
}

// NormalizeCoolingType resolves short spellings ("air", "water",
// "liquid") to the canonical names and passes canonical names through.
// Anything else is returned unchanged for the caller to fall back on.
func NormalizeCoolingType(coolingType string) string {
	if canonical, ok := shortCoolingNames[coolingType]; ok {
		return canonical
	}
	return coolingType
}

// CoolingModel computes PUE and water draw from climate for one cooling
// technology.
type CoolingModel struct {
	coolingType string
	config      coolingConfig
}

// NewCoolingModel resolves the configuration for a cooling type.
// Short names are normalized; unknown types fall back to air cooling.
func NewCoolingModel(coolingType string) *CoolingModel {
	coolingType = NormalizeCoolingType(coolingType)
	config, ok := coolingConfigs[coolingType]
	if !ok {
		coolingType = CoolingAir
		config = coolingConfigs[CoolingAir]
	}
	return &CoolingModel{coolingType: coolingType, config: config}
}

// Type returns the resolved cooling type (after any fallback).
func (m *CoolingModel) Type() string {
	return m.coolingType
}

// MaxPUE returns the upper PUE bound for this cooling type.
func (m *CoolingModel) MaxPUE() float64 {
	return m.config.maxPUE
}

// PUE computes the power usage effectiveness for a climate sample.
// Temperature above the optimum and humidity above 45% raise PUE; wind
// above 5 mph lowers it (capped at 0.1); evaporative cooling also pays
// for wet-bulb temperature above 65°F. The result is clamped to
// [1.02, max] for the cooling type.
func (m *CoolingModel) PUE(climate ClimateSample) float64 {
	pue := m.config.basePUE

	if delta := climate.DryBulbF - m.config.optimalTempF; delta > 0 {
		pue += delta * m.config.tempSensitivity
	}

	if excess := climate.HumidityPct - humidityPivotPct; excess > 0 {
		pue += excess * m.config.humidityFactor
	}

	if climate.WindMPH > windPivotMPH {
		benefit := (climate.WindMPH - windPivotMPH) * m.config.windBenefit
		if benefit > maxWindBenefit {
			benefit = maxWindBenefit
		}
		pue -= benefit
	}

	if m.coolingType == CoolingEvaporative {
		if excess := climate.WetBulbF - wetBulbPivotF; excess > 0 {
			pue += excess * wetBulbSensitivity
		}
	}

	return clamp(pue, minPUE, m.config.maxPUE)
}

// EfficiencyRating buckets a PUE value into a qualitative rating.
func (m *CoolingModel) EfficiencyRating(pue float64) string {
	switch {
	case pue < 1.2:
		return "excellent"
	case pue < 1.4:
		return "good"
	case pue < 1.6:
		return "fair"
	default:
		return "poor"
	}
}

// WaterGPH estimates cooling water draw in gallons per hour for a given
// IT load. The cooling load is the PUE overhead above 1.0; hotter air
// increases evaporation losses by 2% per °F above 70.
func (m *CoolingModel) WaterGPH(itPowerKW float64, climate ClimateSample) float64 {
	coolingKW := itPowerKW * (m.PUE(climate) - 1)

	tempMultiplier := 1.0
	if excess := climate.DryBulbF - waterTempPivotF; excess > 0 {
		tempMultiplier += excess * waterTempPerDegree
	}

	return coolingKW * m.config.waterFactor * tempMultiplier
}

// CoolingTypes lists every cooling type with a defined configuration.
func CoolingTypes() []string {
	return []string{CoolingAir, CoolingWater, CoolingEvaporative, CoolingLiquid}
}
