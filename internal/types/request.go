// Package types holds the request/response contracts shared between the
// HTTP layer and the forecast pipeline, the size preset catalog, and the
// service error taxonomy.
package types

import (
	"fmt"

	"github.com/voltcast/forecast-api/internal/simulation"
)

// DefaultSimulationHours is one year of hourly steps.
const DefaultSimulationHours = 8760

// ForecastRequest is the body of POST /api/forecast and
// POST /api/forecast/stream. Size selects a preset; custom=true switches
// to the explicit fields with the documented defaults.
type ForecastRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Size            string `json:"size,omitempty"`
	SimulationHours int    `json:"simulation_hours,omitempty"`

	Custom             bool    `json:"custom,omitempty"`
	Name               string  `json:"name,omitempty"`
	PowerMW            float64 `json:"power_mw,omitempty"`
	Servers            int     `json:"servers,omitempty"`
	SquareFeet         float64 `json:"square_feet,omitempty"`
	WaterGallonsPerDay float64 `json:"water_gallons_per_day,omitempty"`
	Employees          int     `json:"employees,omitempty"`
	CoolingType        string  `json:"cooling_type,omitempty"`
	ServerType         string  `json:"server_type,omitempty"`
	DatacenterType     string  `json:"datacenter_type,omitempty"`
}

// Validate checks required fields and ranges. Failures are InputErrors.
func (r *ForecastRequest) Validate() error {
	if r.Latitude == nil {
		return NewInputError("latitude", "latitude is required")
	}
	if r.Longitude == nil {
		return NewInputError("longitude", "longitude is required")
	}
	if *r.Latitude < -90 || *r.Latitude > 90 {
		return NewInputError("latitude", "latitude must be between -90 and 90")
	}
	if *r.Longitude < -180 || *r.Longitude > 180 {
		return NewInputError("longitude", "longitude must be between -180 and 180")
	}
	if r.SimulationHours < 0 {
		return NewInputError("simulation_hours", "simulation_hours must be positive")
	}
	if r.Custom {
		if r.Servers < 0 {
			return NewInputError("servers", "servers cannot be negative")
		}
		if r.PowerMW < 0 {
			return NewInputError("power_mw", "power_mw cannot be negative")
		}
	}
	return nil
}

// Hours returns the requested simulation length, defaulting to a year.
func (r *ForecastRequest) Hours() int {
	if r.SimulationHours > 0 {
		return r.SimulationHours
	}
	return DefaultSimulationHours
}

// Config resolves the request to a concrete facility configuration:
// either the named preset (unknown sizes fall back to medium) or the
// custom fields with their defaults.
func (r *ForecastRequest) Config() DataCenterConfig {
	if !r.Custom {
		return PresetOrDefault(r.Size)
	}

	cfg := DataCenterConfig{
		Name:               r.Name,
		PowerMW:            r.PowerMW,
		Servers:            r.Servers,
		SquareFeet:         r.SquareFeet,
		WaterGallonsPerDay: r.WaterGallonsPerDay,
		Employees:          r.Employees,
		CoolingType:        r.CoolingType,
		ServerType:         r.ServerType,
		DatacenterType:     r.DatacenterType,
	}
	if cfg.Name == "" {
		cfg.Name = "Custom Data Center"
	}
	if cfg.PowerMW == 0 {
		cfg.PowerMW = 10
	}
	if cfg.Servers == 0 {
		cfg.Servers = 1000
	}
	if cfg.SquareFeet == 0 {
		cfg.SquareFeet = 50000
	}
	if cfg.WaterGallonsPerDay == 0 {
		cfg.WaterGallonsPerDay = 300000
	}
	if cfg.Employees == 0 {
		cfg.Employees = 50
	}
	if cfg.CoolingType == "" {
		cfg.CoolingType = simulation.CoolingAir
	}
	if cfg.ServerType == "" {
		cfg.ServerType = simulation.ServerEnterprise
	}
	if cfg.DatacenterType == "" {
		cfg.DatacenterType = simulation.WorkloadEnterprise
	}
	return cfg
}

// DataCenterConfig is a resolved facility configuration: a preset or a
// filled-in custom request.
type DataCenterConfig struct {
	Name               string  `json:"name"`
	PowerMW            float64 `json:"power_mw"`
	Servers            int     `json:"servers"`
	SquareFeet         float64 `json:"square_feet"`
	WaterGallonsPerDay float64 `json:"water_gallons_per_day"`
	Employees          int     `json:"employees"`
	CoolingType        string  `json:"cooling_type"`
	ServerType         string  `json:"server_type"`
	DatacenterType     string  `json:"datacenter_type"`
}

// Spec converts the configuration to the simulator's facility spec. The
// per-server rating is derived from total capacity; a zero server count
// degrades to the 500 W default rather than dividing by zero.
func (c DataCenterConfig) Spec() simulation.DataCenterSpec {
	maxWattsPerServer := 500.0
	if c.Servers > 0 {
		maxWattsPerServer = c.PowerMW * 1e6 / float64(c.Servers)
	}

	servers := c.Servers
	if servers < 1 {
		servers = 1
	}

	return simulation.DataCenterSpec{
		ServerCount:       servers,
		MaxWattsPerServer: maxWattsPerServer,
		FacilitySqft:      c.SquareFeet,
		CoolingType:       simulation.NormalizeCoolingType(c.CoolingType),
		ServerClass:       c.ServerType,
		WorkloadClass:     c.DatacenterType,
	}
}

// String identifies the configuration in logs.
func (c DataCenterConfig) String() string {
	return fmt.Sprintf("%s (%g MW, %d servers)", c.Name, c.PowerMW, c.Servers)
}
