package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/voltcast/forecast-api/internal/types"
)

const eiaRetailSalesURL = "https://api.eia.gov/v2/electricity/retail-sales/data/"

// EIAClient fetches industrial electricity prices from the EIA retail
// sales dataset.
type EIAClient struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewEIAClient builds an energy price provider.
func NewEIAClient(apiKey string, timeout time.Duration, logger *slog.Logger) *EIAClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &EIAClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		baseURL:    eiaRetailSalesURL,
	}
}

// NewEIAClientWithBaseURL is the test hook for pointing the client at a
// local server.
func NewEIAClientWithBaseURL(baseURL string, logger *slog.Logger) *EIAClient {
	c := NewEIAClient("", 5*time.Second, logger)
	c.baseURL = baseURL
	return c
}

type eiaResponse struct {
	Response struct {
		Data []struct {
			Price float64 `json:"price"`
		} `json:"data"`
	} `json:"response"`
}

// ResolveEnergy fetches the latest annual industrial price for a state.
// The API reports cents/kWh; the result is dollars. Any failure returns
// the national-average default.
func (c *EIAClient) ResolveEnergy(ctx context.Context, stateFIPS string) EnergyInfo {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("frequency", "annual")
	params.Set("data[0]", "price")
	params.Set("facets[stateid][]", stateFIPS)
	params.Set("facets[sectorid][]", "IND")
	params.Set("sort[0][column]", "period")
	params.Set("sort[0][direction]", "desc")
	params.Set("length", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Warn("energy price request failed, using default", "error", &types.ProviderFailure{Provider: "eia", Err: err})
		return DefaultEnergy(stateFIPS)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("energy price request failed, using default", "error", &types.ProviderFailure{Provider: "eia", Err: err})
		return DefaultEnergy(stateFIPS)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("energy price request failed, using default",
			"error", &types.ProviderFailure{Provider: "eia", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)})
		return DefaultEnergy(stateFIPS)
	}

	var payload eiaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("energy price decode failed, using default", "error", &types.ProviderFailure{Provider: "eia", Err: err})
		return DefaultEnergy(stateFIPS)
	}
	if len(payload.Response.Data) == 0 {
		c.logger.Warn("energy price response empty, using default", "state_fips", stateFIPS)
		return DefaultEnergy(stateFIPS)
	}

	return EnergyInfo{
		PricePerKWh: payload.Response.Data[0].Price / 100,
		State:       stateFIPS,
	}
}
