package handlers

import (
	"context"
	"math/rand"
	"sync"

	"github.com/voltcast/forecast-api/internal/providers"
	"github.com/voltcast/forecast-api/internal/report"
	"github.com/voltcast/forecast-api/internal/simulation"
	"github.com/voltcast/forecast-api/internal/types"
)

// pipeline carries one forecast request through provider resolution,
// simulation and report assembly. Both the synchronous and the
// streaming handler run the same pipeline; they differ only in how they
// surface progress and the narrative.
type pipeline struct {
	deps *Dependencies

	lat, lon float64
	config   types.DataCenterConfig
	hours    int

	location  providers.LocationInfo
	stateName string
	profile   simulation.GridProfile
	energy    providers.EnergyInfo
	climate   providers.ClimateReading
	address   string

	simulator *simulation.Simulator
}

func newPipeline(deps *Dependencies, req *types.ForecastRequest) *pipeline {
	return &pipeline{
		deps:   deps,
		lat:    *req.Latitude,
		lon:    *req.Longitude,
		config: req.Config(),
		hours:  req.Hours(),
	}
}

// fetchLocation resolves demographics and the grid region. Provider
// failures surface as default values, never as errors.
func (p *pipeline) fetchLocation(ctx context.Context) {
	p.location = p.deps.Location.ResolveLocation(ctx, p.lat, p.lon)
	p.stateName = simulation.StateNameForFIPS(p.location.StateFIPS)
	p.profile = p.deps.Registry.Profile(simulation.RegionForState(p.location.StateFIPS))

	p.deps.Logger.Info("resolved location",
		"location", p.location.LocationName,
		"state_fips", p.location.StateFIPS,
		"grid_region", p.profile.RegionCode,
	)
}

// fetchEnvironment resolves energy price, climate and the display
// address. The three lookups are independent once the state is known,
// so they run in parallel.
func (p *pipeline) fetchEnvironment(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		p.energy = p.deps.Energy.ResolveEnergy(ctx, p.location.StateFIPS)
	}()
	go func() {
		defer wg.Done()
		p.climate = p.deps.Climate.ResolveClimate(ctx, p.lat, p.lon)
	}()
	go func() {
		defer wg.Done()
		p.address = p.deps.Address.ResolveAddress(ctx, p.lat, p.lon)
	}()

	wg.Wait()
}

// simulate runs the hourly loop. The RNG is task-local to the request.
func (p *pipeline) simulate(ctx context.Context, rng *rand.Rand, sink simulation.ProgressSink) (*simulation.SimulationResult, error) {
	p.simulator = simulation.NewSimulator(p.config.Spec(), p.deps.Impact, rng)
	return p.simulator.Run(ctx, p.climate.ClimateSample(), p.location.GridContext(p.profile.RegionCode), p.hours, sink)
}

// buildReport assembles the final document.
func (p *pipeline) buildReport(result *simulation.SimulationResult, analysis string) *report.Report {
	return report.Build(report.Inputs{
		Latitude:  p.lat,
		Longitude: p.lon,
		Address:   p.address,
		Config:    p.config,
		Location:  p.location,
		Climate:   p.climate,
		Region:    p.profile,
		StateName: p.stateName,
		Hours:     p.hours,
		Result:    result,
		Cooling:   p.simulator.Cooling(),
		Analysis:  analysis,
	})
}

// persistReport writes the report to the configured path, best-effort.
func (p *pipeline) persistReport(r *report.Report) {
	if p.deps.Config.ReportPath == "" {
		return
	}
	if err := report.WriteFile(p.deps.Config.ReportPath, r); err != nil {
		p.deps.Logger.Warn("failed to persist report", "path", p.deps.Config.ReportPath, "error", err)
	}
}
