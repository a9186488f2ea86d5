package types

import "github.com/voltcast/forecast-api/internal/simulation"

// Size preset names accepted by the forecast endpoints.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
	SizeMega   = "mega"
)

// presets is the compiled-in catalog of facility sizes served by
// /api/datacenter-types. Larger tiers shift to water and liquid cooling
// and, at the top end, to GPU fleets running training workloads.
var presets = map[string]DataCenterConfig{
	SizeSmall: {
		Name:               "Small Edge Data Center",
		PowerMW:            1,
		Servers:            100,
		SquareFeet:         5000,
		WaterGallonsPerDay: 25000,
		Employees:          10,
		CoolingType:        simulation.CoolingAir,
		ServerType:         simulation.ServerEnterprise,
		DatacenterType:     simulation.WorkloadEnterprise,
	},
	SizeMedium: {
		Name:               "Medium Enterprise Data Center",
		PowerMW:            10,
		Servers:            1000,
		SquareFeet:         50000,
		WaterGallonsPerDay: 300000,
		Employees:          50,
		CoolingType:        simulation.CoolingAir,
		ServerType:         simulation.ServerEnterprise,
		DatacenterType:     simulation.WorkloadEnterprise,
	},
	SizeLarge: {
		Name:               "Large Hyperscale Data Center",
		PowerMW:            50,
		Servers:            10000,
		SquareFeet:         250000,
		WaterGallonsPerDay: 1500000,
		Employees:          200,
		CoolingType:        simulation.CoolingWater,
		ServerType:         simulation.ServerEnterprise,
		DatacenterType:     simulation.WorkloadCloudCompute,
	},
	SizeMega: {
		Name:               "Mega Hyperscale Data Center",
		PowerMW:            150,
		Servers:            50000,
		SquareFeet:         750000,
		WaterGallonsPerDay: 5000000,
		Employees:          500,
		CoolingType:        simulation.CoolingLiquid,
		ServerType:         simulation.ServerNvidiaH100,
		DatacenterType:     simulation.WorkloadAITraining,
	},
}

// Presets returns a copy of the size catalog.
func Presets() map[string]DataCenterConfig {
	out := make(map[string]DataCenterConfig, len(presets))
	for name, cfg := range presets {
		out[name] = cfg
	}
	return out
}

// PresetOrDefault resolves a size name, falling back to medium for
// unknown or empty sizes.
func PresetOrDefault(size string) DataCenterConfig {
	if cfg, ok := presets[size]; ok {
		return cfg
	}
	return presets[SizeMedium]
}
