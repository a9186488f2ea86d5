package providers

import (
	"context"
	"fmt"

	"github.com/voltcast/forecast-api/internal/cache"
)

// Coordinates are rounded to ~1 km before keying so nearby requests
// share cache entries.
func coordKey(prefix string, lat, lon float64) string {
	return cache.Key(prefix, fmt.Sprintf("%.2f", lat), fmt.Sprintf("%.2f", lon))
}

// CachedLocation wraps a LocationProvider with the Redis cache.
type CachedLocation struct {
	Inner LocationProvider
	Cache *cache.Service
}

// ResolveLocation serves from cache when possible. Default results are
// not cached so a transient provider failure does not pin the fallback.
func (p *CachedLocation) ResolveLocation(ctx context.Context, lat, lon float64) LocationInfo {
	key := coordKey("location", lat, lon)

	var cached LocationInfo
	if p.Cache.Get(ctx, key, &cached) {
		return cached
	}

	info := p.Inner.ResolveLocation(ctx, lat, lon)
	if info.StateFIPS != "" {
		p.Cache.Set(ctx, key, info)
	}
	return info
}

// CachedEnergy wraps an EnergyProvider with the Redis cache.
type CachedEnergy struct {
	Inner EnergyProvider
	Cache *cache.Service
}

// ResolveEnergy serves from cache when possible.
func (p *CachedEnergy) ResolveEnergy(ctx context.Context, stateFIPS string) EnergyInfo {
	key := cache.Key("energy", stateFIPS)

	var cached EnergyInfo
	if p.Cache.Get(ctx, key, &cached) {
		return cached
	}

	info := p.Inner.ResolveEnergy(ctx, stateFIPS)
	if info.PricePerKWh != DefaultPricePerKWh {
		p.Cache.Set(ctx, key, info)
	}
	return info
}

// CachedClimate wraps a ClimateProvider with the Redis cache.
type CachedClimate struct {
	Inner ClimateProvider
	Cache *cache.Service
}

// ResolveClimate serves from cache when possible.
func (p *CachedClimate) ResolveClimate(ctx context.Context, lat, lon float64) ClimateReading {
	key := coordKey("climate", lat, lon)

	var cached ClimateReading
	if p.Cache.Get(ctx, key, &cached) {
		return cached
	}

	reading := p.Inner.ResolveClimate(ctx, lat, lon)
	if reading.Description != "Unknown" || reading.TemperatureF != DefaultTemperatureF {
		p.Cache.Set(ctx, key, reading)
	}
	return reading
}
