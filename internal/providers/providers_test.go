package providers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEstimateWetBulb(t *testing.T) {
	// Wet bulb never exceeds dry bulb and rises with humidity.
	dry := estimateWetBulbF(85, 20)
	humid := estimateWetBulbF(85, 90)
	assert.Less(t, dry, humid)
	assert.Less(t, humid, 85.0)
}

func TestClimateReadingToSample(t *testing.T) {
	reading := ClimateReading{TemperatureF: 85, HumidityPct: 60, WindMPH: 8}
	sample := reading.ClimateSample()

	assert.Equal(t, 85.0, sample.DryBulbF)
	assert.Equal(t, 60.0, sample.HumidityPct)
	assert.Equal(t, 8.0, sample.WindMPH)
	assert.Greater(t, sample.WetBulbF, 0.0)
	assert.Less(t, sample.WetBulbF, sample.DryBulbF)
}

func TestGridContextDerivation(t *testing.T) {
	loc := LocationInfo{Population: 250000}
	ctx := loc.GridContext("ERCOT")

	assert.Equal(t, "ERCOT", ctx.RegionCode)
	assert.Equal(t, 100000, ctx.TotalHouseholds)
	assert.InDelta(t, 150.0, ctx.BaselineDemandMW, 1e-9)
	assert.Equal(t, 120.0, ctx.AvgHouseholdBill)
}

func TestGridContextTinyPopulationFallsBack(t *testing.T) {
	loc := LocationInfo{Population: 12}
	ctx := loc.GridContext("DEFAULT")

	// 100,000 default population -> 40,000 households.
	assert.Equal(t, 40000, ctx.TotalHouseholds)
	assert.InDelta(t, 60.0, ctx.BaselineDemandMW, 1e-9)
}

func TestCensusClient_ResolveLocation(t *testing.T) {
	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"geographies":{"Counties":[{"STATE":"48","COUNTY":"453"}]}}}`))
	}))
	defer geocoder.Close()

	acs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[["NAME","B01003_001E","B19013_001E","state","county"],["Travis County, Texas","1290188","80668","48","453"]]`))
	}))
	defer acs.Close()

	client := NewCensusClientWithBaseURLs(geocoder.URL, acs.URL, discardLogger())
	info := client.ResolveLocation(context.Background(), 30.27, -97.74)

	assert.Equal(t, "Travis County, Texas", info.LocationName)
	assert.Equal(t, 1290188, info.Population)
	assert.Equal(t, 80668, info.MedianIncome)
	assert.Equal(t, "48", info.StateFIPS)
	assert.Equal(t, "453", info.CountyFIPS)
}

func TestCensusClient_GeocoderFailureUsesDefault(t *testing.T) {
	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer geocoder.Close()

	client := NewCensusClientWithBaseURLs(geocoder.URL, geocoder.URL, discardLogger())
	info := client.ResolveLocation(context.Background(), 30.27, -97.74)

	assert.Equal(t, DefaultLocation(), info)
}

func TestCensusClient_DemographicsFailureKeepsFIPS(t *testing.T) {
	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"geographies":{"Counties":[{"STATE":"48","COUNTY":"453"}]}}}`))
	}))
	defer geocoder.Close()

	acs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer acs.Close()

	client := NewCensusClientWithBaseURLs(geocoder.URL, acs.URL, discardLogger())
	info := client.ResolveLocation(context.Background(), 30.27, -97.74)

	// The state code survives so region resolution still works.
	assert.Equal(t, "48", info.StateFIPS)
	assert.Equal(t, "Unknown", info.LocationName)
	assert.Zero(t, info.Population)
}

func TestEIAClient_ResolveEnergy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "48", r.URL.Query().Get("facets[stateid][]"))
		w.Write([]byte(`{"response":{"data":[{"price":6.55}]}}`))
	}))
	defer server.Close()

	client := NewEIAClientWithBaseURL(server.URL, discardLogger())
	info := client.ResolveEnergy(context.Background(), "48")

	assert.InDelta(t, 0.0655, info.PricePerKWh, 1e-9) // cents to dollars
	assert.Equal(t, "48", info.State)
}

func TestEIAClient_FailureUsesNationalAverage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewEIAClientWithBaseURL(server.URL, discardLogger())
	info := client.ResolveEnergy(context.Background(), "48")
	assert.Equal(t, DefaultPricePerKWh, info.PricePerKWh)
}

func TestEIAClient_EmptyDataUsesNationalAverage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"data":[]}}`))
	}))
	defer server.Close()

	client := NewEIAClientWithBaseURL(server.URL, discardLogger())
	info := client.ResolveEnergy(context.Background(), "99")
	assert.Equal(t, DefaultPricePerKWh, info.PricePerKWh)
}

func TestOpenWeatherClient_ResolveClimate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		w.Write([]byte(`{"main":{"temp":91.4,"humidity":55},"wind":{"speed":9.2},"weather":[{"description":"clear sky"}]}`))
	}))
	defer server.Close()

	client := NewOpenWeatherClientWithBaseURL(server.URL, discardLogger())
	reading := client.ResolveClimate(context.Background(), 30.27, -97.74)

	assert.Equal(t, 91.4, reading.TemperatureF)
	assert.Equal(t, 55.0, reading.HumidityPct)
	assert.Equal(t, 9.2, reading.WindMPH)
	assert.Equal(t, "clear sky", reading.Description)
}

func TestOpenWeatherClient_FailureUsesDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewOpenWeatherClientWithBaseURL(server.URL, discardLogger())
	reading := client.ResolveClimate(context.Background(), 30.27, -97.74)
	assert.Equal(t, DefaultClimate(), reading)
}

func TestAnthropicClient_StreamsChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "event: content_block_delta\n")
		io.WriteString(w, `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Hello "}}`+"\n\n")
		io.WriteString(w, `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"world"}}`+"\n\n")
		io.WriteString(w, `data: {"type":"message_stop"}`+"\n\n")
	}))
	defer server.Close()

	client := NewAnthropicClientWithBaseURL(server.URL, "test-key", discardLogger())

	var chunks []string
	err := client.Stream(context.Background(), "prompt", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello ", "world"}, chunks)
}

func TestAnthropicClient_ErrorEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `data: {"type":"error","error":{"message":"overloaded"}}`+"\n\n")
	}))
	defer server.Close()

	client := NewAnthropicClientWithBaseURL(server.URL, "test-key", discardLogger())
	err := client.Stream(context.Background(), "prompt", func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestAnthropicClient_MissingKey(t *testing.T) {
	client := NewAnthropicClientWithBaseURL("http://127.0.0.1:1", "", discardLogger())
	err := client.Stream(context.Background(), "prompt", func(string) error { return nil })
	assert.Error(t, err)
}
