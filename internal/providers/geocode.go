package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const geocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// addressNotFound is the display placeholder when reverse geocoding
// fails. Non-critical: nothing downstream depends on the address.
const addressNotFound = "Address not found"

// GeocodeClient resolves coordinates to a display street address.
type GeocodeClient struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewGeocodeClient builds an address provider.
func NewGeocodeClient(apiKey string, timeout time.Duration, logger *slog.Logger) *GeocodeClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeocodeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		baseURL:    geocodeURL,
	}
}

type geocodeResponse struct {
	Results []struct {
		FormattedAddress string   `json:"formatted_address"`
		Types            []string `json:"types"`
	} `json:"results"`
}

// ResolveAddress reverse geocodes (lat, lon), preferring a precise
// street address, then a route, then the first result.
func (c *GeocodeClient) ResolveAddress(ctx context.Context, lat, lon float64) string {
	if c.apiKey == "" {
		return addressNotFound
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%g,%g", lat, lon))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Warn("reverse geocode failed", "error", err)
		return addressNotFound
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("reverse geocode failed", "error", err)
		return addressNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("reverse geocode failed", "status", resp.StatusCode)
		return addressNotFound
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("reverse geocode decode failed", "error", err)
		return addressNotFound
	}
	if len(payload.Results) == 0 {
		return addressNotFound
	}

	for _, wanted := range []string{"street_address", "route"} {
		for _, result := range payload.Results {
			for _, t := range result.Types {
				if t == wanted && result.FormattedAddress != "" {
					return result.FormattedAddress
				}
			}
		}
	}

	if payload.Results[0].FormattedAddress != "" {
		return payload.Results[0].FormattedAddress
	}
	return addressNotFound
}
