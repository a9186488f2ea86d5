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

const (
	censusGeocoderURL = "https://geocoding.geo.census.gov/geocoder/geographies/coordinates"
	censusACSURL      = "https://api.census.gov/data/2021/acs/acs5"
)

// CensusClient resolves coordinates to county demographics using the
// Census geocoder and the ACS 5-year estimates.
type CensusClient struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	geocoderURL string
	acsURL      string
}

// NewCensusClient builds a census location provider. An empty API key
// still works for the geocoder; the ACS call may be rate limited.
func NewCensusClient(apiKey string, timeout time.Duration, logger *slog.Logger) *CensusClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CensusClient{
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
		geocoderURL: censusGeocoderURL,
		acsURL:      censusACSURL,
	}
}

// NewCensusClientWithBaseURLs is the test hook for pointing the client
// at a local server.
func NewCensusClientWithBaseURLs(geocoderURL, acsURL string, logger *slog.Logger) *CensusClient {
	c := NewCensusClient("", 5*time.Second, logger)
	c.geocoderURL = geocoderURL
	c.acsURL = acsURL
	return c
}

type geocoderResponse struct {
	Result struct {
		Geographies struct {
			Counties []struct {
				State  string `json:"STATE"`
				County string `json:"COUNTY"`
			} `json:"Counties"`
		} `json:"geographies"`
	} `json:"result"`
}

// ResolveLocation looks up the county containing (lat, lon) and its
// population and median income. Any failure returns the documented
// default, carrying whatever FIPS codes were resolved before the
// failure.
func (c *CensusClient) ResolveLocation(ctx context.Context, lat, lon float64) LocationInfo {
	stateFIPS, countyFIPS, err := c.lookupFIPS(ctx, lat, lon)
	if err != nil {
		c.logger.Warn("census geocoder failed, using default location",
			"error", &types.ProviderFailure{Provider: "census_geocoder", Err: err})
		return DefaultLocation()
	}

	info := LocationInfo{
		LocationName: "Unknown",
		StateFIPS:    stateFIPS,
		CountyFIPS:   countyFIPS,
	}

	name, population, income, err := c.lookupDemographics(ctx, stateFIPS, countyFIPS)
	if err != nil {
		c.logger.Warn("census demographics failed, using FIPS-only location",
			"state_fips", stateFIPS, "county_fips", countyFIPS,
			"error", &types.ProviderFailure{Provider: "census_acs", Err: err})
		return info
	}

	info.LocationName = name
	info.Population = population
	info.MedianIncome = income
	return info
}

func (c *CensusClient) lookupFIPS(ctx context.Context, lat, lon float64) (string, string, error) {
	params := url.Values{}
	params.Set("x", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("benchmark", "Public_AR_Current")
	params.Set("vintage", "Current_Current")
	params.Set("format", "json")

	var resp geocoderResponse
	if err := c.getJSON(ctx, c.geocoderURL+"?"+params.Encode(), &resp); err != nil {
		return "", "", err
	}

	counties := resp.Result.Geographies.Counties
	if len(counties) == 0 {
		return "", "", fmt.Errorf("no county for %g,%g", lat, lon)
	}
	return counties[0].State, counties[0].County, nil
}

// lookupDemographics fetches NAME, total population (B01003_001E) and
// median household income (B19013_001E) for a county. The ACS API
// answers with a two-row array: header then values.
func (c *CensusClient) lookupDemographics(ctx context.Context, stateFIPS, countyFIPS string) (string, int, int, error) {
	params := url.Values{}
	params.Set("get", "NAME,B01003_001E,B19013_001E")
	params.Set("for", "county:"+countyFIPS)
	params.Set("in", "state:"+stateFIPS)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var rows [][]string
	if err := c.getJSON(ctx, c.acsURL+"?"+params.Encode(), &rows); err != nil {
		return "", 0, 0, err
	}
	if len(rows) < 2 || len(rows[1]) < 3 {
		return "", 0, 0, fmt.Errorf("malformed ACS response")
	}

	row := rows[1]
	population, _ := strconv.Atoi(row[1])
	income, _ := strconv.Atoi(row[2])
	return row[0], population, income, nil
}

func (c *CensusClient) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
