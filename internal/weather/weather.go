// Package weather produces the outdoor-forecast block of the daily
// briefing. Two providers (OpenWeather One Call and Pirate Weather) sit
// behind a common interface. All temperatures are reported in whole
// degrees Fahrenheit.
package weather

import (
	"context"
	"fmt"
)

// Provider returns a formatted forecast block for a coordinate pair.
type Provider interface {
	// Forecast returns a multi-line text block describing current
	// conditions and the day ahead.
	Forecast(ctx context.Context, lat, lon float64) (string, error)
}

// Locator supplies the coordinates to forecast for. Satisfied by
// *homeassistant.Client.
type Locator interface {
	HomeCoordinates(ctx context.Context, entityID string) (lat, lon float64, err error)
}

// Service resolves the home location and fetches the forecast for it.
type Service struct {
	locator    Locator
	zoneEntity string
	provider   Provider
}

// NewService creates a weather service that forecasts for the location of
// the given zone entity.
func NewService(locator Locator, zoneEntity string, provider Provider) *Service {
	return &Service{
		locator:    locator,
		zoneEntity: zoneEntity,
		provider:   provider,
	}
}

// Fragment returns the weather block for the briefing.
func (s *Service) Fragment(ctx context.Context) (string, error) {
	lat, lon, err := s.locator.HomeCoordinates(ctx, s.zoneEntity)
	if err != nil {
		return "", fmt.Errorf("resolve home location: %w", err)
	}
	return s.provider.Forecast(ctx, lat, lon)
}
