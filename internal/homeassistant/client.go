// Package homeassistant provides a client for the Home Assistant API.
//
// Daybreak uses Home Assistant for two things: the indoor temperature from
// a climate entity, and the home coordinates from a zone entity (which the
// weather providers need).
package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/daybreak-home/daybreak/internal/httpkit"
)

// Client is a Home Assistant REST API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Home Assistant client.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(30 * time.Second)),
		logger:     logger,
	}
}

// State represents an entity state from Home Assistant.
type State struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated"`
}

// APIStatus represents the HA API status response.
type APIStatus struct {
	Message string `json:"message"`
}

// Ping checks if the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var status APIStatus
	if err := c.get(ctx, "/api/", &status); err != nil {
		return err
	}
	if status.Message != "API running." {
		return fmt.Errorf("unexpected API status: %s", status.Message)
	}
	return nil
}

// GetState retrieves a single entity state.
func (c *Client) GetState(ctx context.Context, entityID string) (*State, error) {
	var state State
	if err := c.get(ctx, "/api/states/"+entityID, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// IndoorTemperature returns the current_temperature attribute of a climate
// entity.
func (c *Client) IndoorTemperature(ctx context.Context, entityID string) (float64, error) {
	state, err := c.GetState(ctx, entityID)
	if err != nil {
		return 0, err
	}

	temp, ok := state.Attributes["current_temperature"].(float64)
	if !ok {
		return 0, fmt.Errorf("entity %s has no numeric current_temperature attribute", entityID)
	}
	return temp, nil
}

// HomeCoordinates returns the latitude and longitude attributes of a zone
// entity.
func (c *Client) HomeCoordinates(ctx context.Context, entityID string) (lat, lon float64, err error) {
	state, err := c.GetState(ctx, entityID)
	if err != nil {
		return 0, 0, err
	}
	c.logger.Debug("zone state", "entity_id", entityID, "attributes", state.Attributes)

	lat, latOK := state.Attributes["latitude"].(float64)
	lon, lonOK := state.Attributes["longitude"].(float64)
	if !latOK || !lonOK {
		return 0, 0, fmt.Errorf("entity %s has no latitude/longitude attributes", entityID)
	}
	return lat, lon, nil
}

// get performs a GET request to the HA API.
func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	// Drain and close to ensure connection reuse even when result is nil.
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		body := httpkit.ReadErrorBody(resp.Body, 512)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, body)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
