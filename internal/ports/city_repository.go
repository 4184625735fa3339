package ports

import (
	"context"
	"errors"
	"lane-posting-service/internal/domain"
)

// ErrNotFound is returned by adapters when a lookup has no match.
var ErrNotFound = errors.New("not found")

// Port: read-only access to city reference data.
type CityRepository interface {
	// Resolve the canonical city record for a city/state pair.
	// Returns ErrNotFound when no record matches.
	FindCityByNameState(ctx context.Context, city, state string) (domain.City, error)
	// Return every city within radiusMiles of coord, nearest first.
	FindCitiesNear(ctx context.Context, coord domain.Coordinates, radiusMiles float64) ([]domain.City, error)
}
