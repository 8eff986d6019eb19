package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/daybreak-home/daybreak/internal/httpkit"
)

const defaultPirateWeatherURL = "https://api.pirateweather.net"

// PirateWeather is a Provider backed by the Pirate Weather API, a
// Dark-Sky-compatible forecast service.
type PirateWeather struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewPirateWeather creates a Pirate Weather provider.
func NewPirateWeather(apiKey string) *PirateWeather {
	return &PirateWeather{
		apiKey:     apiKey,
		baseURL:    defaultPirateWeatherURL,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(15 * time.Second)),
	}
}

// pirateResponse covers the subset of the Dark-Sky-shaped payload we consume.
type pirateResponse struct {
	Currently struct {
		Summary             string  `json:"summary"`
		ApparentTemperature float64 `json:"apparentTemperature"`
	} `json:"currently"`
	Hourly struct {
		Summary string `json:"summary"`
	} `json:"hourly"`
	Daily struct {
		Data []struct {
			ApparentTemperatureHigh float64 `json:"apparentTemperatureHigh"`
			ApparentTemperatureLow  float64 `json:"apparentTemperatureLow"`
		} `json:"data"`
	} `json:"daily"`
}

// Forecast implements Provider.
func (p *PirateWeather) Forecast(ctx context.Context, lat, lon float64) (string, error) {
	endpoint := fmt.Sprintf("%s/forecast/%s/%f,%f?units=us", p.baseURL, p.apiKey, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("forecast request: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		body := httpkit.ReadErrorBody(resp.Body, 512)
		return "", fmt.Errorf("forecast API error %d: %s", resp.StatusCode, body)
	}

	var data pirateResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode forecast response: %w", err)
	}

	if len(data.Daily.Data) == 0 {
		return "", fmt.Errorf("forecast response has no daily data")
	}

	today := data.Daily.Data[0]
	var sb strings.Builder
	fmt.Fprintf(&sb, "Current Conditions: %s\n", data.Currently.Summary)
	fmt.Fprintf(&sb, "Current Temp: %d°F\n", round(data.Currently.ApparentTemperature))
	fmt.Fprintf(&sb, "Conditions for the day: %s\n", data.Hourly.Summary)
	fmt.Fprintf(&sb, "High: %d°F\n", round(today.ApparentTemperatureHigh))
	fmt.Fprintf(&sb, "Low: %d°F", round(today.ApparentTemperatureLow))
	return sb.String(), nil
}
