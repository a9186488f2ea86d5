package simulation

import "log/slog"

// GridContext is the site-specific grid state an impact calculation
// runs against.
type GridContext struct {
	RegionCode       string  `json:"region_code"`
	BaselineDemandMW float64 `json:"baseline_demand_mw"`
	TotalHouseholds  int     `json:"total_households"`
	AvgHouseholdBill float64 `json:"average_household_bill"`
}

// InfrastructureCost is the one-time capital expenditure attributable to
// the facility, split by asset class. Required is false when the grid
// absorbs the load within its planning margin.
type InfrastructureCost struct {
	Transmission float64 `json:"transmission"`
	Distribution float64 `json:"distribution"`
	Substation   float64 `json:"substation"`
	Total        float64 `json:"total"`
	Required     bool    `json:"required"`
}

// HouseholdImpact is the amortized cost passed through to ratepayers.
type HouseholdImpact struct {
	AnnualUSD         float64 `json:"annual_cost_per_household"`
	MonthlyUSD        float64 `json:"monthly_cost_per_household"`
	PctIncrease       float64 `json:"percentage_increase"`
	TotalCommunityUSD float64 `json:"total_community_cost"`
}

// ImpactSummary aggregates the facility's effect on the local grid.
type ImpactSummary struct {
	PeakImpactPct      float64            `json:"peak_impact_percent"`
	AvgImpactPct       float64            `json:"average_impact_percent"`
	StabilityRisk      string             `json:"stability_risk"`
	GridClass          string             `json:"grid_classification"`
	InfrastructureCost InfrastructureCost `json:"infrastructure_cost"`
	HouseholdImpact    HouseholdImpact    `json:"household_impact"`
}

// Contract constants for the impact calculation. The thresholds and
// monetary coefficients are part of the public behavior, not tunables.
const (
	defaultBaselineMW     = 100.0
	defaultHouseholds     = 40000
	planningMarginFactor  = 1.15
	planningMarginShare   = 0.15
	transmissionUSDPerMW  = 50000.0
	distributionUSDPerMW  = 75000.0
	substationUSDPerMW    = 100000.0
	minorUpgradeUSDPerMW  = 25000.0
	amortizationYears     = 15.0

	stabilityModeratePct = 0.5
	stabilityHighPct     = 2.0
	stabilityCriticalPct = 5.0

	classLowPct      = 0.1
	classModeratePct = 0.5
	classHighPct     = 2.0
	classCriticalPct = 5.0
)

// GridImpactCalculator aggregates an hourly power trace against a grid
// context. It carries the registry of regional tariffs and carbon
// factors for callers (see Registry); Calculate itself reads only the
// trace and the context.
type GridImpactCalculator struct {
	registry *GridRegistry
	logger   *slog.Logger
}

// NewGridImpactCalculator builds a calculator over the given registry.
// A nil logger falls back to slog's default.
func NewGridImpactCalculator(registry *GridRegistry, logger *slog.Logger) *GridImpactCalculator {
	if registry == nil {
		registry = NewGridRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GridImpactCalculator{registry: registry, logger: logger}
}

// Registry returns the grid registry backing the calculator.
func (c *GridImpactCalculator) Registry() *GridRegistry {
	return c.registry
}

// Calculate aggregates an hourly kW trace against the grid context.
// Non-positive baseline demand and household counts are replaced with
// the documented defaults and the substitution is logged; they never
// cause a division error.
func (c *GridImpactCalculator) Calculate(hourlyPowerKW []float64, ctx GridContext) ImpactSummary {
	baselineMW := ctx.BaselineDemandMW
	if baselineMW <= 0 {
		c.logger.Warn("baseline demand invalid, substituting default",
			"baseline_demand_mw", ctx.BaselineDemandMW,
			"default_mw", defaultBaselineMW)
		baselineMW = defaultBaselineMW
	}

	var peakMW, sumMW float64
	for _, kw := range hourlyPowerKW {
		mw := kw / 1000
		sumMW += mw
		if mw > peakMW {
			peakMW = mw
		}
	}
	avgMW := 0.0
	if len(hourlyPowerKW) > 0 {
		avgMW = sumMW / float64(len(hourlyPowerKW))
	}

	peakImpactPct := peakMW / baselineMW * 100
	avgImpactPct := avgMW / baselineMW * 100

	infra := c.infrastructureCost(peakMW, baselineMW)
	household := c.householdImpact(infra, ctx)

	return ImpactSummary{
		PeakImpactPct:      peakImpactPct,
		AvgImpactPct:       avgImpactPct,
		StabilityRisk:      stabilityRisk(peakImpactPct),
		GridClass:          classifyImpact(peakImpactPct),
		InfrastructureCost: infra,
		HouseholdImpact:    household,
	}
}

// infrastructureCost estimates capital requirements. New infrastructure
// is required when baseline plus the facility peak exceeds the grid's
// 15% planning margin; below that only minor distribution upgrades
// apply.
func (c *GridImpactCalculator) infrastructureCost(peakMW, baselineMW float64) InfrastructureCost {
	capacityUtilization := (baselineMW + peakMW) / (baselineMW * planningMarginFactor)

	if capacityUtilization > 1.0 {
		excessMW := peakMW - baselineMW*planningMarginShare
		transmission := excessMW * transmissionUSDPerMW
		distribution := peakMW * distributionUSDPerMW
		substation := excessMW * substationUSDPerMW
		return InfrastructureCost{
			Transmission: transmission,
			Distribution: distribution,
			Substation:   substation,
			Total:        transmission + distribution + substation,
			Required:     true,
		}
	}

	minor := peakMW * minorUpgradeUSDPerMW
	return InfrastructureCost{
		Distribution: minor,
		Total:        minor,
		Required:     false,
	}
}

// householdImpact amortizes the infrastructure total over 15 years and
// spreads it across the context's households.
func (c *GridImpactCalculator) householdImpact(infra InfrastructureCost, ctx GridContext) HouseholdImpact {
	households := ctx.TotalHouseholds
	if households <= 0 {
		c.logger.Warn("household count invalid, substituting default",
			"total_households", ctx.TotalHouseholds,
			"default_households", defaultHouseholds)
		households = defaultHouseholds
	}

	annualCommunity := infra.Total / amortizationYears
	annualPerHouse := annualCommunity / float64(households)
	monthlyPerHouse := annualPerHouse / 12

	pctIncrease := 0.0
	if ctx.AvgHouseholdBill > 0 {
		pctIncrease = monthlyPerHouse / ctx.AvgHouseholdBill * 100
	}

	return HouseholdImpact{
		AnnualUSD:         annualPerHouse,
		MonthlyUSD:        monthlyPerHouse,
		PctIncrease:       pctIncrease,
		TotalCommunityUSD: annualCommunity,
	}
}

func stabilityRisk(peakImpactPct float64) string {
	switch {
	case peakImpactPct < stabilityModeratePct:
		return "low"
	case peakImpactPct < stabilityHighPct:
		return "moderate"
	case peakImpactPct < stabilityCriticalPct:
		return "high"
	default:
		return "critical"
	}
}

func classifyImpact(peakImpactPct float64) string {
	switch {
	case peakImpactPct < classLowPct:
		return "negligible"
	case peakImpactPct < classModeratePct:
		return "low"
	case peakImpactPct < classHighPct:
		return "moderate"
	case peakImpactPct < classCriticalPct:
		return "high"
	default:
		return "critical"
	}
}
