package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridRegistry_Profiles(t *testing.T) {
	registry := NewGridRegistry()

	caiso := registry.Profile("CAISO")
	assert.Equal(t, 0.13, caiso.BaseRate)
	assert.Equal(t, 2.5, caiso.PeakMultiplier)
	assert.Equal(t, 0.209, caiso.CarbonKgPerKWh)

	ercot := registry.Profile("ERCOT")
	assert.Equal(t, 0.08, ercot.BaseRate)
	assert.Equal(t, 3.0, ercot.PeakMultiplier)
	assert.Equal(t, 0.391, ercot.CarbonKgPerKWh)

	def := registry.Profile(DefaultRegion)
	assert.Equal(t, 0.10, def.BaseRate)
	assert.Equal(t, 0.386, def.CarbonKgPerKWh)
}

func TestGridRegistry_UnknownRegionFallsBack(t *testing.T) {
	registry := NewGridRegistry()
	assert.Equal(t, registry.Profile(DefaultRegion), registry.Profile("ATLANTIS"))
}

func TestGridRegistry_AllRegionsPresent(t *testing.T) {
	regions := NewGridRegistry().Regions()
	for _, code := range []string{"CAISO", "ERCOT", "PJM", "NYISO", "SPP", "ISONE", "MISO", "SERC", "PACNW", "WEST", DefaultRegion} {
		profile, ok := regions[code]
		assert.True(t, ok, "missing region %s", code)
		assert.Greater(t, profile.BaseRate, 0.0)
		assert.GreaterOrEqual(t, profile.PeakMultiplier, 1.0)
		assert.GreaterOrEqual(t, profile.CarbonKgPerKWh, 0.0)
	}
}

func TestRegionForState(t *testing.T) {
	cases := map[string]string{
		"06": "CAISO",
		"48": "ERCOT",
		"42": "PJM",
		"36": "NYISO",
		"40": "SPP",
		"25": "ISONE",
		"55": "MISO",
		"12": "SERC",
		"53": "PACNW",
		"04": "WEST",
		"02": DefaultRegion, // Alaska
		"15": DefaultRegion, // Hawaii
		"99": DefaultRegion, // unmapped
		"":   DefaultRegion,
	}
	for fips, want := range cases {
		assert.Equal(t, want, RegionForState(fips), "fips %q", fips)
	}
}

// States covered by two operators must resolve to the pinned one.
func TestRegionForState_SplitStates(t *testing.T) {
	cases := map[string]string{
		"17": "MISO", // Illinois, not PJM
		"18": "MISO", // Indiana, not PJM
		"26": "MISO", // Michigan, not PJM
		"29": "MISO", // Missouri, not SPP
		"05": "MISO", // Arkansas, not SPP
		"22": "MISO", // Louisiana, not SPP
		"27": "MISO", // Minnesota, not SPP
		"19": "MISO", // Iowa, not SPP
		"28": "SERC", // Mississippi, not SPP
		"37": "SERC", // North Carolina, not PJM
		"47": "SERC", // Tennessee, not PJM
		"30": "WEST", // Montana, not PACNW
	}
	for fips, want := range cases {
		assert.Equal(t, want, RegionForState(fips), "fips %q", fips)
	}
}

func TestStateNameForFIPS(t *testing.T) {
	assert.Equal(t, "Texas", StateNameForFIPS("48"))
	assert.Equal(t, "California", StateNameForFIPS("06"))
	assert.Equal(t, "Unknown", StateNameForFIPS("99"))
}
