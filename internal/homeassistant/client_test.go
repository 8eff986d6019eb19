package homeassistant

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestGetState(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/states/climate.main_floor" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entity_id":"climate.main_floor","state":"heat","attributes":{"current_temperature":68.5}}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "test-token", testLogger())
	state, err := c.GetState(context.Background(), "climate.main_floor")
	if err != nil {
		t.Fatalf("GetState error: %v", err)
	}
	if state.State != "heat" {
		t.Errorf("state = %q, want %q", state.State, "heat")
	}
}

func TestIndoorTemperature(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entity_id":"climate.main_floor","attributes":{"current_temperature":71.0}}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "t", testLogger())
	temp, err := c.IndoorTemperature(context.Background(), "climate.main_floor")
	if err != nil {
		t.Fatalf("IndoorTemperature error: %v", err)
	}
	if temp != 71.0 {
		t.Errorf("temp = %v, want 71.0", temp)
	}
}

func TestIndoorTemperature_MissingAttribute(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entity_id":"climate.main_floor","attributes":{}}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "t", testLogger())
	if _, err := c.IndoorTemperature(context.Background(), "climate.main_floor"); err == nil {
		t.Fatal("expected error for missing current_temperature")
	}
}

func TestHomeCoordinates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entity_id":"zone.home","attributes":{"latitude":30.2672,"longitude":-97.7431}}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "t", testLogger())
	lat, lon, err := c.HomeCoordinates(context.Background(), "zone.home")
	if err != nil {
		t.Fatalf("HomeCoordinates error: %v", err)
	}
	if lat != 30.2672 || lon != -97.7431 {
		t.Errorf("coordinates = (%v, %v)", lat, lon)
	}
}

func TestGetState_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "entity not found", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "t", testLogger())
	if _, err := c.GetState(context.Background(), "climate.missing"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
