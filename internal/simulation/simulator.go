package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// DataCenterSpec is the facility configuration under evaluation.
// Immutable after construction.
type DataCenterSpec struct {
	ServerCount       int     `json:"server_count"`
	MaxWattsPerServer float64 `json:"max_watts_per_server"`
	FacilitySqft      float64 `json:"facility_sqft"`
	CoolingType       string  `json:"cooling_type"`
	ServerClass       string  `json:"server_class"`
	WorkloadClass     string  `json:"workload_class"`
}

// Validate rejects specs the simulator cannot run.
func (s DataCenterSpec) Validate() error {
	if s.ServerCount < 1 {
		return fmt.Errorf("server_count must be at least 1, got %d", s.ServerCount)
	}
	if s.MaxWattsPerServer <= 0 {
		return fmt.Errorf("max_watts_per_server must be positive, got %g", s.MaxWattsPerServer)
	}
	if s.FacilitySqft <= 0 {
		return fmt.Errorf("facility_sqft must be positive, got %g", s.FacilitySqft)
	}
	return nil
}

// Progress is the event emitted at each 24-hour simulation boundary.
type Progress struct {
	HoursCompleted  int     `json:"hours_completed"`
	PercentComplete float64 `json:"percent_complete"`
	AvgPowerKW      float64 `json:"current_avg_power_kw"`
	AvgUtilization  float64 `json:"current_avg_utilization"`
	AvgPUE          float64 `json:"current_avg_pue"`
}

// ProgressSink receives progress events from a running simulation. A
// typed sink rather than a bare closure keeps the simulator testable
// without a network behind it.
type ProgressSink interface {
	Emit(Progress)
}

// SinkFunc adapts a function to the ProgressSink interface.
type SinkFunc func(Progress)

// Emit calls the wrapped function.
func (f SinkFunc) Emit(p Progress) { f(p) }

// SimulationResult is the complete output of one simulator run. The
// three hourly arrays have identical length equal to the requested
// hours.
type SimulationResult struct {
	HourlyPowerKW      []float64     `json:"hourly_power_kw"`
	HourlyUtilization  []float64     `json:"hourly_utilization"`
	HourlyPUE          []float64     `json:"hourly_pue"`
	PeakPowerKW        float64       `json:"peak_power_kw"`
	AvgPowerKW         float64       `json:"average_power_kw"`
	AnnualMWh          float64       `json:"annual_consumption_mwh"`
	Impact             ImpactSummary `json:"community_impact"`
}

// ErrCanceled reports that the client went away mid-simulation.
var ErrCanceled = errors.New("simulation canceled")

// progressInterval is the hourly stride between progress events.
const progressInterval = 24

// Simulator composes the power, workload and cooling models over an
// hourly loop and aggregates grid impact. Each request builds its own
// Simulator; nothing here is shared across requests.
type Simulator struct {
	spec     DataCenterSpec
	curve    *PowerCurve
	workload *WorkloadGenerator
	cooling  *CoolingModel
	impact   *GridImpactCalculator
	rng      *rand.Rand
	start    time.Time
}

// NewSimulator resolves the models for a spec. The RNG is task-local:
// pass a seeded rand.New(rand.NewSource(seed)) for reproducible traces,
// or nil for a time-seeded generator.
func NewSimulator(spec DataCenterSpec, impact *GridImpactCalculator, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if impact == nil {
		impact = NewGridImpactCalculator(nil, nil)
	}
	return &Simulator{
		spec:     spec,
		curve:    NewPowerCurve(spec.ServerClass),
		workload: NewWorkloadGenerator(spec.WorkloadClass),
		cooling:  NewCoolingModel(spec.CoolingType),
		impact:   impact,
		rng:      rng,
		start:    time.Now(),
	}
}

// SetStart pins the wall-clock origin of the hourly calendar. Tests use
// this to make weekday/month derivation deterministic.
func (s *Simulator) SetStart(start time.Time) {
	s.start = start
}

// Cooling exposes the resolved cooling model (the report needs its
// water-draw estimate).
func (s *Simulator) Cooling() *CoolingModel {
	return s.cooling
}

// Run executes the hourly loop for the requested number of hours and
// aggregates grid impact. Climate is held constant across the run under
// the current contract. The sink, when non-nil, receives a progress
// event every 24 simulated hours; with hours < 24 it never fires.
// Cancellation is honored at the top of each hourly iteration.
func (s *Simulator) Run(ctx context.Context, climate ClimateSample, gridCtx GridContext, hours int, sink ProgressSink) (*SimulationResult, error) {
	if hours < 1 {
		return nil, fmt.Errorf("simulation hours must be at least 1, got %d", hours)
	}
	if err := s.spec.Validate(); err != nil {
		return nil, err
	}

	hourlyPowerKW := make([]float64, 0, hours)
	hourlyUtilization := make([]float64, 0, hours)
	hourlyPUE := make([]float64, 0, hours)

	var sumKW, sumUtil, sumPUE float64

	for h := 0; h < hours; h++ {
		select {
		case <-ctx.Done():
			return nil, ErrCanceled
		default:
		}

		t := s.start.Add(time.Duration(h) * time.Hour)
		hourOfDay := t.Hour()
		weekday := mondayIndexed(t.Weekday())
		month := int(t.Month())

		util := s.workload.Sample(s.rng, hourOfDay, weekday, month)

		perServerW := s.curve.PowerWatts(s.spec.MaxWattsPerServer, util)
		totalW := perServerW * float64(s.spec.ServerCount)

		pue := s.cooling.PUE(climate)
		totalKW := totalW / 1000 * pue

		if math.IsNaN(totalKW) || math.IsInf(totalKW, 0) || totalKW < 0 {
			return nil, fmt.Errorf("non-finite power at hour %d: %g kW", h, totalKW)
		}

		hourlyPowerKW = append(hourlyPowerKW, totalKW)
		hourlyUtilization = append(hourlyUtilization, util)
		hourlyPUE = append(hourlyPUE, pue)

		sumKW += totalKW
		sumUtil += util
		sumPUE += pue

		if sink != nil && (h+1)%progressInterval == 0 {
			done := float64(h + 1)
			sink.Emit(Progress{
				HoursCompleted:  h + 1,
				PercentComplete: done / float64(hours) * 100,
				AvgPowerKW:      sumKW / done,
				AvgUtilization:  sumUtil / done,
				AvgPUE:          sumPUE / done,
			})
		}
	}

	peakKW := hourlyPowerKW[0]
	for _, kw := range hourlyPowerKW[1:] {
		if kw > peakKW {
			peakKW = kw
		}
	}

	return &SimulationResult{
		HourlyPowerKW:     hourlyPowerKW,
		HourlyUtilization: hourlyUtilization,
		HourlyPUE:         hourlyPUE,
		PeakPowerKW:       peakKW,
		AvgPowerKW:        sumKW / float64(hours),
		AnnualMWh:         sumKW / 1000,
		Impact:            s.impact.Calculate(hourlyPowerKW, gridCtx),
	}, nil
}

// mondayIndexed converts Go's Sunday=0 weekday to the Monday=0..Sunday=6
// convention the workload patterns use.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}
