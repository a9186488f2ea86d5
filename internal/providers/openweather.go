package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/voltcast/forecast-api/internal/types"
)

const openWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherClient fetches current conditions from OpenWeatherMap in
// imperial units.
type OpenWeatherClient struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewOpenWeatherClient builds a climate provider.
func NewOpenWeatherClient(apiKey string, timeout time.Duration, logger *slog.Logger) *OpenWeatherClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenWeatherClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		baseURL:    openWeatherURL,
	}
}

// NewOpenWeatherClientWithBaseURL is the test hook for pointing the
// client at a local server.
func NewOpenWeatherClientWithBaseURL(baseURL string, logger *slog.Logger) *OpenWeatherClient {
	c := NewOpenWeatherClient("", 5*time.Second, logger)
	c.baseURL = baseURL
	return c
}

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// ResolveClimate fetches current weather for a coordinate pair. Any
// failure returns the documented default reading (70°F, 50%, 5 mph).
func (c *OpenWeatherClient) ResolveClimate(ctx context.Context, lat, lon float64) ClimateReading {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "imperial")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Warn("climate request failed, using default", "error", &types.ProviderFailure{Provider: "openweather", Err: err})
		return DefaultClimate()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("climate request failed, using default", "error", &types.ProviderFailure{Provider: "openweather", Err: err})
		return DefaultClimate()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("climate request failed, using default",
			"error", &types.ProviderFailure{Provider: "openweather", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)})
		return DefaultClimate()
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("climate decode failed, using default", "error", &types.ProviderFailure{Provider: "openweather", Err: err})
		return DefaultClimate()
	}

	reading := ClimateReading{
		TemperatureF: payload.Main.Temp,
		HumidityPct:  payload.Main.Humidity,
		WindMPH:      payload.Wind.Speed,
		Description:  "Unknown",
	}
	if len(payload.Weather) > 0 {
		reading.Description = payload.Weather[0].Description
	}
	if reading.WindMPH == 0 {
		reading.WindMPH = DefaultWindMPH
	}
	return reading
}
