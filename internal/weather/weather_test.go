package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const oneCallFixture = `{
	"current": {
		"feels_like": 54.4,
		"weather": [{"description": "scattered clouds"}]
	},
	"daily": [{
		"temp": {"morn": 51.2, "day": 63.8, "eve": 60.1, "night": 48.6},
		"weather": [{"description": "light rain"}]
	}]
}`

func TestOpenWeatherForecast(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("units") != "imperial" {
			t.Errorf("units = %q, want imperial", q.Get("units"))
		}
		if q.Get("appid") != "ow-key" {
			t.Errorf("appid = %q", q.Get("appid"))
		}
		if q.Get("exclude") != "minutely,hourly" {
			t.Errorf("exclude = %q", q.Get("exclude"))
		}
		w.Write([]byte(oneCallFixture))
	}))
	defer ts.Close()

	p := NewOpenWeather("ow-key")
	p.baseURL = ts.URL

	got, err := p.Forecast(context.Background(), 30.0, -97.0)
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}

	want := "Current Conditions: scattered clouds\n" +
		"Current Temp: 54°F\n" +
		"Conditions for the day: light rain\n" +
		"Morning Temp: 51°F\n" +
		"Day Temp: 64°F\n" +
		"Evening Temp: 60°F\n" +
		"Nighttime Temp: 49°F"
	if got != want {
		t.Errorf("Forecast =\n%s\nwant\n%s", got, want)
	}
}

func TestOpenWeatherForecast_EmptyDaily(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{"feels_like":50,"weather":[{"description":"clear"}]},"daily":[]}`))
	}))
	defer ts.Close()

	p := NewOpenWeather("k")
	p.baseURL = ts.URL

	if _, err := p.Forecast(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error for empty daily forecast")
	}
}

const pirateFixture = `{
	"currently": {"summary": "Partly Cloudy", "apparentTemperature": 71.6},
	"hourly": {"summary": "Clear throughout the day."},
	"daily": {"data": [{"apparentTemperatureHigh": 84.5, "apparentTemperatureLow": 62.3}]}
}`

func TestPirateWeatherForecast(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/forecast/pw-key/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(pirateFixture))
	}))
	defer ts.Close()

	p := NewPirateWeather("pw-key")
	p.baseURL = ts.URL

	got, err := p.Forecast(context.Background(), 30.0, -97.0)
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}

	want := "Current Conditions: Partly Cloudy\n" +
		"Current Temp: 72°F\n" +
		"Conditions for the day: Clear throughout the day.\n" +
		"High: 85°F\n" +
		"Low: 62°F"
	if got != want {
		t.Errorf("Forecast =\n%s\nwant\n%s", got, want)
	}
}

type fakeLocator struct {
	lat, lon float64
	err      error
}

func (f *fakeLocator) HomeCoordinates(ctx context.Context, entityID string) (float64, float64, error) {
	return f.lat, f.lon, f.err
}

type fakeProvider struct {
	gotLat, gotLon float64
}

func (f *fakeProvider) Forecast(ctx context.Context, lat, lon float64) (string, error) {
	f.gotLat, f.gotLon = lat, lon
	return "forecast text", nil
}

func TestServiceFragment(t *testing.T) {
	prov := &fakeProvider{}
	svc := NewService(&fakeLocator{lat: 30.1, lon: -97.2}, "zone.home", prov)

	got, err := svc.Fragment(context.Background())
	if err != nil {
		t.Fatalf("Fragment error: %v", err)
	}
	if got != "forecast text" {
		t.Errorf("Fragment = %q", got)
	}
	if prov.gotLat != 30.1 || prov.gotLon != -97.2 {
		t.Errorf("provider got (%v, %v), want (30.1, -97.2)", prov.gotLat, prov.gotLon)
	}
}

func TestServiceFragment_LocatorFailure(t *testing.T) {
	svc := NewService(&fakeLocator{err: errors.New("unreachable")}, "zone.home", &fakeProvider{})

	if _, err := svc.Fragment(context.Background()); err == nil {
		t.Fatal("expected error when locator fails")
	}
}
