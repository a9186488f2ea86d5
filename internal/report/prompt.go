package report

import (
	"fmt"
	"strings"
)

// NarrativePrompt renders the analysis prompt for the narrative
// producer from an assembled report.
func NarrativePrompt(r *Report) string {
	minUtil := r.Simulation.AverageUtilization
	for _, u := range r.Simulation.HourlyData.Utilization {
		if u < minUtil {
			minUtil = u
		}
	}

	return fmt.Sprintf(`You are an environmental impact analyst for data centers. Analyze the following data center simulation results:

DATA CENTER SPECIFICATIONS:
- Type: %s
- Power Capacity: %g MW
- Number of Servers: %d
- Size: %.0f square feet
- Cooling Type: %s
- Server Type: %s
- Data Center Type: %s
- Employees: %d

LOCATION DATA:
- Coordinates: %g, %g
- Location: %s, %s
- Grid Region: %s
- Population: %d
- Median Income: $%d

CLIMATE DATA:
- Temperature: %g°F
- Humidity: %g%%
- Conditions: %s

SIMULATION RESULTS (%d-hour simulation):
Energy Performance:
- Peak Power: %.0f kW
- Average Power: %.0f kW
- Annual Consumption: %.0f MWh
- Annual Energy Cost: $%.0f
- Average PUE: %.2f
- Best PUE: %.2f
- Worst PUE: %.2f

Workload Characteristics:
- Average Utilization: %.1f%%
- Peak Utilization: %.1f%%
- Minimum Utilization: %.1f%%

Carbon Impact:
- Annual CO2 Emissions: %.0f tons
- Grid Carbon Intensity: %.3f kg CO2/kWh
- Equivalent to %.0f cars
- Equivalent to power for %.0f homes

Community & Grid Impact:
- Peak Impact on Grid: %.2f%%
- Average Impact on Grid: %.2f%%
- Grid Stability Risk: %s
- Grid Impact Classification: %s
- Monthly Cost Per Household: $%.2f
- Household Bill Increase: %.2f%%
- Infrastructure Cost: $%.0f
- Infrastructure Required: %t

Please provide a comprehensive analysis covering:
1. **Overall Performance Assessment** - How well does this data center perform based on the simulation?
2. **Energy Efficiency Analysis** - Assess PUE trends, cooling efficiency, and optimization opportunities
3. **Grid & Community Impact** - Detailed analysis of impact on local grid and households
4. **Workload Pattern Analysis** - What do the utilization patterns tell us about this facility?
5. **Environmental Concerns** - Carbon footprint and environmental sustainability analysis
6. **Infrastructure Requirements** - What grid infrastructure upgrades are needed?
7. **Cost-Benefit Analysis** - Economic impacts (jobs, costs to community, energy costs)
8. **Risk Assessment** - Grid stability risks, power supply concerns, regulatory challenges
9. **Recommendations** - Specific mitigation strategies, optimization opportunities, and site suitability

Be specific, data-driven, and balanced. Use the actual simulation data to support your analysis. Consider both technical performance and community impact.`,
		r.Datacenter.Name,
		r.Datacenter.PowerMW,
		r.Datacenter.Servers,
		r.Datacenter.SquareFeet,
		titleCase(r.Datacenter.CoolingType),
		titleCase(r.Datacenter.ServerType),
		titleCase(r.Datacenter.DatacenterType),
		r.Datacenter.Employees,
		r.Location.Latitude, r.Location.Longitude,
		r.Location.Name, r.Location.State,
		r.Location.GridRegion,
		r.Location.Population,
		r.Location.MedianIncome,
		r.Climate.TemperatureF,
		r.Climate.HumidityPct,
		r.Climate.Description,
		r.Simulation.HoursSimulated,
		r.Simulation.PeakPowerKW,
		r.Simulation.AveragePowerKW,
		r.Simulation.AnnualMWh,
		r.Energy.AnnualCost,
		r.Simulation.AveragePUE,
		r.Simulation.BestPUE,
		r.Simulation.WorstPUE,
		r.Simulation.AverageUtilization,
		r.Simulation.PeakUtilization,
		minUtil,
		r.Carbon.AnnualTonsCO2,
		r.Carbon.CarbonIntensity,
		r.Carbon.EquivalentCars,
		r.Carbon.EquivalentHomes,
		r.CommunityImpact.PeakImpactPct,
		r.CommunityImpact.AvgImpactPct,
		strings.ToUpper(r.CommunityImpact.StabilityRisk),
		strings.ToUpper(r.CommunityImpact.GridClass),
		r.CommunityImpact.HouseholdImpact.MonthlyUSD,
		r.CommunityImpact.HouseholdImpact.PctIncrease,
		r.CommunityImpact.InfrastructureCost.Total,
		r.CommunityImpact.InfrastructureCost.Required,
	)
}

// titleCase renders snake_case identifiers as display labels
// ("liquid_cooling" -> "Liquid Cooling").
func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
