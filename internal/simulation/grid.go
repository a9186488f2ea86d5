package simulation

// GridProfile holds the electrical characteristics of one grid region.
// Rates are $/kWh, carbon intensity is kg CO₂/kWh. The table is
// lookup-only and never mutated at runtime.
type GridProfile struct {
	RegionCode     string  `json:"region_code"`
	BaseRate       float64 `json:"base_rate"`
	PeakMultiplier float64 `json:"peak_multiplier"`
	CarbonKgPerKWh float64 `json:"carbon_intensity"`
}

// DefaultRegion is the fallback for unmapped states and isolated grids.
const DefaultRegion = "DEFAULT"

// GridRegistry is an immutable table of per-region grid profiles. Load
// it once at startup and inject it; never read it through a global.
type GridRegistry struct {
	regions map[string]GridProfile
}

// NewGridRegistry returns the registry covering the major US grid
// operators. Rates are EIA 2024 industrial averages; carbon intensities
// are EPA eGRID 2022 subregion values.
func NewGridRegistry() *GridRegistry {
	regions := map[string]GridProfile{
		// California ISO: high solar/wind penetration, duck-curve peaks.
		"CAISO": {RegionCode: "CAISO", BaseRate: 0.13, PeakMultiplier: 2.5, CarbonKgPerKWh: 0.209},
		// Texas: isolated grid, highest price volatility.
		"ERCOT": {RegionCode: "ERCOT", BaseRate: 0.08, PeakMultiplier: 3.0, CarbonKgPerKWh: 0.391},
		// PJM Interconnection: 13 mid-Atlantic/midwestern states, most stable market.
		"PJM": {RegionCode: "PJM", BaseRate: 0.09, PeakMultiplier: 2.0, CarbonKgPerKWh: 0.367},
		// New York ISO: gas/nuclear/hydro, cleanest eastern mix.
		"NYISO": {RegionCode: "NYISO", BaseRate: 0.11, PeakMultiplier: 2.2, CarbonKgPerKWh: 0.178},
		// Southwest Power Pool: wind-heavy plains states, coal backup.
		"SPP": {RegionCode: "SPP", BaseRate: 0.07, PeakMultiplier: 2.8, CarbonKgPerKWh: 0.454},
		// ISO New England: constrained transmission, winter peaks, highest rates.
		"ISONE": {RegionCode: "ISONE", BaseRate: 0.16, PeakMultiplier: 2.4, CarbonKgPerKWh: 0.235},
		// Midcontinent ISO: coal/gas/wind across 15 states.
		"MISO": {RegionCode: "MISO", BaseRate: 0.08, PeakMultiplier: 2.3, CarbonKgPerKWh: 0.425},
		// Southeast regulated utilities (non-ISO).
		"SERC": {RegionCode: "SERC", BaseRate: 0.09, PeakMultiplier: 2.1, CarbonKgPerKWh: 0.398},
		// Pacific Northwest: hydro-dominated, most stable and cleanest.
		"PACNW": {RegionCode: "PACNW", BaseRate: 0.07, PeakMultiplier: 1.8, CarbonKgPerKWh: 0.158},
		// Mountain West (WECC non-CAISO): summer A/C peaks.
		"WEST": {RegionCode: "WEST", BaseRate: 0.09, PeakMultiplier: 2.6, CarbonKgPerKWh: 0.412},
		// US national averages for anything uncovered.
		DefaultRegion: {RegionCode: DefaultRegion, BaseRate: 0.10, PeakMultiplier: 2.2, CarbonKgPerKWh: 0.386},
	}
	return &GridRegistry{regions: regions}
}

// Profile returns the profile for a region code, falling back to
// DEFAULT for unknown codes.
func (r *GridRegistry) Profile(regionCode string) GridProfile {
	if profile, ok := r.regions[regionCode]; ok {
		return profile
	}
	return r.regions[DefaultRegion]
}

// Regions returns a copy of the full region table.
func (r *GridRegistry) Regions() map[string]GridProfile {
	out := make(map[string]GridProfile, len(r.regions))
	for code, profile := range r.regions {
		out[code] = profile
	}
	return out
}

// stateToGridRegion maps state FIPS codes to grid regions. Several
// states straddle two operators (Illinois is split between PJM and
// MISO, North Carolina between PJM and SERC, Montana between PACNW and
// WEST); this table pins each to a single operator, the one marked
// below, so a state always resolves to the same region.
var stateToGridRegion = map[string]string{
	"06": "CAISO", // California

	"48": "ERCOT", // Texas

	"10": "PJM", // Delaware
	"11": "PJM", // District of Columbia
	"21": "PJM", // Kentucky
	"24": "PJM", // Maryland
	"34": "PJM", // New Jersey
	"39": "PJM", // Ohio
	"42": "PJM", // Pennsylvania
	"51": "PJM", // Virginia
	"54": "PJM", // West Virginia

	"36": "NYISO", // New York

	"20": "SPP", // Kansas
	"31": "SPP", // Nebraska
	"38": "SPP", // North Dakota
	"40": "SPP", // Oklahoma
	"46": "SPP", // South Dakota

	"09": "ISONE", // Connecticut
	"23": "ISONE", // Maine
	"25": "ISONE", // Massachusetts
	"33": "ISONE", // New Hampshire
	"44": "ISONE", // Rhode Island
	"50": "ISONE", // Vermont

	"55": "MISO", // Wisconsin
	"27": "MISO", // Minnesota
	"19": "MISO", // Iowa
	"17": "MISO", // Illinois (split with PJM)
	"18": "MISO", // Indiana (split with PJM)
	"26": "MISO", // Michigan (split with PJM)
	"29": "MISO", // Missouri (split with SPP)
	"05": "MISO", // Arkansas (split with SPP)
	"22": "MISO", // Louisiana (split with SPP)

	"12": "SERC", // Florida
	"13": "SERC", // Georgia
	"01": "SERC", // Alabama
	"45": "SERC", // South Carolina
	"37": "SERC", // North Carolina (split with PJM)
	"28": "SERC", // Mississippi (split with SPP)
	"47": "SERC", // Tennessee (split with PJM)

	"53": "PACNW", // Washington
	"41": "PACNW", // Oregon
	"16": "PACNW", // Idaho

	"04": "WEST", // Arizona
	"32": "WEST", // Nevada
	"49": "WEST", // Utah
	"08": "WEST", // Colorado
	"35": "WEST", // New Mexico
	"56": "WEST", // Wyoming
	"30": "WEST", // Montana (split with PACNW)

	// Isolated grids use national averages.
	"02": DefaultRegion, // Alaska
	"15": DefaultRegion, // Hawaii
}

// RegionForState resolves a state FIPS code to a grid region, falling
// back to DEFAULT for unmapped codes.
func RegionForState(stateFIPS string) string {
	if region, ok := stateToGridRegion[stateFIPS]; ok {
		return region
	}
	return DefaultRegion
}

var fipsToStateName = map[string]string{
	"01": "Alabama", "02": "Alaska", "04": "Arizona", "05": "Arkansas",
	"06": "California", "08": "Colorado", "09": "Connecticut", "10": "Delaware",
	"11": "District of Columbia", "12": "Florida", "13": "Georgia", "15": "Hawaii",
	"16": "Idaho", "17": "Illinois", "18": "Indiana", "19": "Iowa",
	"20": "Kansas", "21": "Kentucky", "22": "Louisiana", "23": "Maine",
	"24": "Maryland", "25": "Massachusetts", "26": "Michigan", "27": "Minnesota",
	"28": "Mississippi", "29": "Missouri", "30": "Montana", "31": "Nebraska",
	"32": "Nevada", "33": "New Hampshire", "34": "New Jersey", "35": "New Mexico",
	"36": "New York", "37": "North Carolina", "38": "North Dakota", "39": "Ohio",
	"40": "Oklahoma", "41": "Oregon", "42": "Pennsylvania", "44": "Rhode Island",
	"45": "South Carolina", "46": "South Dakota", "47": "Tennessee", "48": "Texas",
	"49": "Utah", "50": "Vermont", "51": "Virginia", "53": "Washington",
	"54": "West Virginia", "55": "Wisconsin", "56": "Wyoming",
}

// StateNameForFIPS returns the state name for a FIPS code, or "Unknown".
func StateNameForFIPS(stateFIPS string) string {
	if name, ok := fipsToStateName[stateFIPS]; ok {
		return name
	}
	return "Unknown"
}
