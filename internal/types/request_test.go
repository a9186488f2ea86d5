package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltcast/forecast-api/internal/simulation"
)

func ptr(v float64) *float64 { return &v }

func TestForecastRequest_Validate(t *testing.T) {
	valid := ForecastRequest{Latitude: ptr(40.0), Longitude: ptr(-74.0)}
	assert.NoError(t, valid.Validate())

	missingLat := ForecastRequest{Longitude: ptr(-74.0)}
	err := missingLat.Validate()
	require.Error(t, err)
	assert.True(t, IsInputError(err))

	missingLon := ForecastRequest{Latitude: ptr(40.0)}
	assert.Error(t, missingLon.Validate())

	badLat := ForecastRequest{Latitude: ptr(91.0), Longitude: ptr(0.0)}
	assert.Error(t, badLat.Validate())

	badLon := ForecastRequest{Latitude: ptr(0.0), Longitude: ptr(181.0)}
	assert.Error(t, badLon.Validate())
}

func TestForecastRequest_Hours(t *testing.T) {
	req := ForecastRequest{}
	assert.Equal(t, 8760, req.Hours())

	req.SimulationHours = 24
	assert.Equal(t, 24, req.Hours())
}

func TestForecastRequest_PresetResolution(t *testing.T) {
	req := ForecastRequest{Size: SizeMega}
	cfg := req.Config()
	assert.Equal(t, 150.0, cfg.PowerMW)
	assert.Equal(t, 50000, cfg.Servers)
	assert.Equal(t, simulation.CoolingLiquid, cfg.CoolingType)
	assert.Equal(t, simulation.ServerNvidiaH100, cfg.ServerType)
	assert.Equal(t, simulation.WorkloadAITraining, cfg.DatacenterType)

	// Unknown and empty sizes fall back to medium.
	unknown := ForecastRequest{Size: "gigantic"}
	assert.Equal(t, PresetOrDefault(SizeMedium), unknown.Config())
	empty := ForecastRequest{}
	assert.Equal(t, PresetOrDefault(SizeMedium), empty.Config())
}

func TestForecastRequest_CustomDefaults(t *testing.T) {
	req := ForecastRequest{Custom: true}
	cfg := req.Config()

	assert.Equal(t, "Custom Data Center", cfg.Name)
	assert.Equal(t, 10.0, cfg.PowerMW)
	assert.Equal(t, 1000, cfg.Servers)
	assert.Equal(t, 50000.0, cfg.SquareFeet)
	assert.Equal(t, simulation.CoolingAir, cfg.CoolingType)
	assert.Equal(t, simulation.ServerEnterprise, cfg.ServerType)
	assert.Equal(t, simulation.WorkloadEnterprise, cfg.DatacenterType)
}

func TestForecastRequest_CustomOverrides(t *testing.T) {
	req := ForecastRequest{
		Custom:         true,
		Name:           "Test Site",
		PowerMW:        2,
		Servers:        200,
		CoolingType:    "liquid",
		ServerType:     simulation.ServerTPUv4,
		DatacenterType: simulation.WorkloadGaming,
	}
	cfg := req.Config()
	assert.Equal(t, "Test Site", cfg.Name)
	assert.Equal(t, 2.0, cfg.PowerMW)
	assert.Equal(t, 200, cfg.Servers)
}

func TestDataCenterConfig_Spec(t *testing.T) {
	cfg := PresetOrDefault(SizeMedium)
	spec := cfg.Spec()

	assert.Equal(t, 1000, spec.ServerCount)
	assert.InDelta(t, 10000.0, spec.MaxWattsPerServer, 1e-9) // 10 MW / 1000 servers
	assert.Equal(t, simulation.CoolingAir, spec.CoolingType)

	// Short cooling spellings normalize.
	custom := DataCenterConfig{PowerMW: 1, Servers: 100, SquareFeet: 1000, CoolingType: "liquid"}
	assert.Equal(t, simulation.CoolingLiquid, custom.Spec().CoolingType)

	// Zero servers degrade to the per-server default instead of
	// dividing by zero.
	zero := DataCenterConfig{PowerMW: 1, SquareFeet: 1000}
	spec = zero.Spec()
	assert.Equal(t, 500.0, spec.MaxWattsPerServer)
	assert.Equal(t, 1, spec.ServerCount)
}

func TestPresets_Catalog(t *testing.T) {
	catalog := Presets()
	require.Len(t, catalog, 4)

	small := catalog[SizeSmall]
	assert.Equal(t, 1.0, small.PowerMW)
	assert.Equal(t, 100, small.Servers)
	assert.Equal(t, 5000.0, small.SquareFeet)

	large := catalog[SizeLarge]
	assert.Equal(t, simulation.CoolingWater, large.CoolingType)
	assert.Equal(t, simulation.WorkloadCloudCompute, large.DatacenterType)

	// The returned map is a copy; mutating it must not touch the
	// catalog.
	catalog[SizeSmall] = DataCenterConfig{}
	assert.Equal(t, 1.0, Presets()[SizeSmall].PowerMW)
}
