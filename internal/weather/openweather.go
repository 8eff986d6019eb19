package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daybreak-home/daybreak/internal/httpkit"
)

const defaultOpenWeatherURL = "https://api.openweathermap.org/data/3.0/onecall"

// OpenWeather is a Provider backed by the OpenWeather One Call API.
type OpenWeather struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenWeather creates an OpenWeather provider.
func NewOpenWeather(apiKey string) *OpenWeather {
	return &OpenWeather{
		apiKey:     apiKey,
		baseURL:    defaultOpenWeatherURL,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(15 * time.Second)),
	}
}

// oneCallResponse covers the subset of the One Call payload we consume.
type oneCallResponse struct {
	Current struct {
		FeelsLike float64 `json:"feels_like"`
		Weather   []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"current"`
	Daily []struct {
		Temp struct {
			Morn  float64 `json:"morn"`
			Day   float64 `json:"day"`
			Eve   float64 `json:"eve"`
			Night float64 `json:"night"`
		} `json:"temp"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"daily"`
}

// Forecast implements Provider.
func (p *OpenWeather) Forecast(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{
		"lat":     {fmt.Sprintf("%f", lat)},
		"lon":     {fmt.Sprintf("%f", lon)},
		"exclude": {"minutely,hourly"},
		"units":   {"imperial"},
		"appid":   {p.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("onecall request: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		body := httpkit.ReadErrorBody(resp.Body, 512)
		return "", fmt.Errorf("onecall API error %d: %s", resp.StatusCode, body)
	}

	var data oneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode onecall response: %w", err)
	}

	if len(data.Current.Weather) == 0 || len(data.Daily) == 0 || len(data.Daily[0].Weather) == 0 {
		return "", fmt.Errorf("onecall response missing current or daily forecast")
	}

	today := data.Daily[0]
	var sb strings.Builder
	fmt.Fprintf(&sb, "Current Conditions: %s\n", data.Current.Weather[0].Description)
	fmt.Fprintf(&sb, "Current Temp: %d°F\n", round(data.Current.FeelsLike))
	fmt.Fprintf(&sb, "Conditions for the day: %s\n", today.Weather[0].Description)
	fmt.Fprintf(&sb, "Morning Temp: %d°F\n", round(today.Temp.Morn))
	fmt.Fprintf(&sb, "Day Temp: %d°F\n", round(today.Temp.Day))
	fmt.Fprintf(&sb, "Evening Temp: %d°F\n", round(today.Temp.Eve))
	fmt.Fprintf(&sb, "Nighttime Temp: %d°F", round(today.Temp.Night))
	return sb.String(), nil
}

// round converts a temperature to the nearest whole degree.
func round(f float64) int {
	return int(math.Round(f))
}
