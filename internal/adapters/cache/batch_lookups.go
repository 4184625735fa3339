package cache

import (
	"context"
	"errors"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/ports"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"
)

type cityResult struct {
	city  domain.City
	found bool
}

// BatchLookups memoizes city and rate lookups for the lifetime of one
// generation batch. A fresh instance is created per batch so reference data
// never leaks between requests. Safe for concurrent use by lane tasks.
//
// Concurrent misses on the same key may both reach the backing repository;
// lookups are read-only so the duplicate work is harmless.
type BatchLookups struct {
	cities ports.CityRepository
	rates  ports.RateRepository

	byName *xsync.Map[string, cityResult]
	near   *xsync.Map[string, []domain.City]
	matrix *xsync.Map[string, *domain.RateMatrix]
}

var (
	_ ports.CityRepository = (*BatchLookups)(nil)
	_ ports.RateRepository = (*BatchLookups)(nil)
)

func NewBatchLookups(cities ports.CityRepository, rates ports.RateRepository) *BatchLookups {
	return &BatchLookups{
		cities: cities,
		rates:  rates,
		byName: xsync.NewMap[string, cityResult](),
		near:   xsync.NewMap[string, []domain.City](),
		matrix: xsync.NewMap[string, *domain.RateMatrix](),
	}
}

func (b *BatchLookups) FindCityByNameState(ctx context.Context, city, state string) (domain.City, error) {
	key := domain.CityKey(city, state)
	if r, ok := b.byName.Load(key); ok {
		if !r.found {
			return domain.City{}, ports.ErrNotFound
		}
		return r.city, nil
	}

	c, err := b.cities.FindCityByNameState(ctx, city, state)
	if errors.Is(err, ports.ErrNotFound) {
		b.byName.Store(key, cityResult{})
		return domain.City{}, err
	}
	if err != nil {
		return domain.City{}, err
	}

	b.byName.Store(key, cityResult{city: c, found: true})
	return c, nil
}

func (b *BatchLookups) FindCitiesNear(ctx context.Context, coord domain.Coordinates, radiusMiles float64) ([]domain.City, error) {
	key := fmt.Sprintf("%.5f|%.5f|%.1f", coord.Lat, coord.Lon, radiusMiles)
	if cities, ok := b.near.Load(key); ok {
		return slices.Clone(cities), nil
	}

	cities, err := b.cities.FindCitiesNear(ctx, coord, radiusMiles)
	if err != nil {
		return nil, err
	}

	b.near.Store(key, cities)
	return slices.Clone(cities), nil
}

// LatestRateMatrix caches hits and misses alike; a nil entry records an
// unpublished matrix.
func (b *BatchLookups) LatestRateMatrix(ctx context.Context, equipment, level string) (*domain.RateMatrix, error) {
	if b.rates == nil {
		return nil, ports.ErrNotFound
	}

	key := equipment + "|" + level
	if m, ok := b.matrix.Load(key); ok {
		if m == nil {
			return nil, ports.ErrNotFound
		}
		return m, nil
	}

	m, err := b.rates.LatestRateMatrix(ctx, equipment, level)
	if errors.Is(err, ports.ErrNotFound) {
		b.matrix.Store(key, nil)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	b.matrix.Store(key, m)
	return m, nil
}

// Size returns the number of memoized entries, for diagnostics.
func (b *BatchLookups) Size() int {
	return b.byName.Size() + b.near.Size() + b.matrix.Size()
}
