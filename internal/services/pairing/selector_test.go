package pairing

import (
	"context"
	"errors"
	"lane-posting-service/internal/adapters/memory"
	"lane-posting-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	originLat, originLon = 40.0, -90.0
	destLat, destLon     = 34.0, -84.0
	// Roughly 6.9 miles of latitude.
	step = 0.1
)

func at(name, state, market string, lat, lon float64) domain.City {
	return domain.City{
		City:       name,
		State:      state,
		Coords:     domain.Coordinates{Lon: lon, Lat: lat},
		MarketArea: market,
		Population: 100_000,
		Hot:        true,
	}
}

func selectorStore(extra ...domain.City) *memory.Store {
	s := memory.NewStore()
	s.AddCities(
		at("Origin", "IL", "O_BASE", originLat, originLon),
		at("Dest", "GA", "D_BASE", destLat, destLon),
	)
	s.AddCities(extra...)
	return s
}

func testLane() domain.Lane {
	return domain.Lane{
		ID:          "lane-1",
		Origin:      domain.Place{City: "origin", State: "il"},
		Destination: domain.Place{City: "Dest", State: "GA"},
		Equipment:   "V",
	}
}

func TestSelectStrictDiversity(t *testing.T) {
	store := selectorStore(
		at("P1", "IL", "M1", originLat+step, originLon),
		at("P2", "IL", "M1", originLat+2*step, originLon),
		at("P3", "IL", "M2", originLat-step, originLon),
		at("P4", "IL", "M3", originLat-2*step, originLon),
		at("Q1", "GA", "N1", destLat+step, destLon),
		at("Q2", "GA", "N2", destLat+2*step, destLon),
		at("Q3", "GA", "N2", destLat-step, destLon),
		at("Q4", "GA", "N3", destLat-2*step, destLon),
	)

	sel, err := NewSelector(store, store, DefaultParams()).Select(context.Background(), testLane(), SelectOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Origin", sel.BaseOrigin.City)
	assert.Equal(t, "Dest", sel.BaseDest.City)
	require.Len(t, sel.Pairs, 3)
	assert.False(t, sel.UsedRelaxedDiversity)
	assert.NotEmpty(t, sel.ShortfallReason)
	assert.Equal(t, 100.0, sel.PickupRadiusMiles)

	pickups, deliveries := marketAreaCounts(sel.Pairs)
	for ma, n := range pickups {
		assert.Equal(t, 1, n, "pickup market %s", ma)
	}
	for ma, n := range deliveries {
		assert.Equal(t, 1, n, "delivery market %s", ma)
	}
	for _, p := range sel.Pairs {
		assert.NotEqual(t, "Origin", p.Pickup.City.City)
		assert.NotEqual(t, "Dest", p.Delivery.City.City)
	}
}

func TestSelectRelaxedFillsQuota(t *testing.T) {
	store := selectorStore(
		at("P1", "IL", "M1", originLat+step, originLon),
		at("P2", "IL", "M1", originLat+2*step, originLon),
		at("Q1", "GA", "N1", destLat+step, destLon),
		at("Q2", "GA", "N1", destLat+2*step, destLon),
	)
	s := NewSelector(store, store, DefaultParams())

	strict, err := s.Select(context.Background(), testLane(), SelectOptions{Target: 5})
	require.NoError(t, err)
	assert.Len(t, strict.Pairs, 1)
	assert.False(t, strict.UsedRelaxedDiversity)

	relaxed, err := s.Select(context.Background(), testLane(), SelectOptions{Target: 5, FillQuota: true})
	require.NoError(t, err)
	assert.Len(t, relaxed.Pairs, 2)
	assert.True(t, relaxed.UsedRelaxedDiversity)
	assert.Contains(t, relaxed.ShortfallReason, "found 2 of 5 pairs")

	pickups, _ := marketAreaCounts(relaxed.Pairs)
	assert.Equal(t, 2, pickups["M1"])
}

func TestSelectAdmitsNoBrainerFromOuterRing(t *testing.T) {
	outer := at("Ring", "IL", "M9", originLat+1.6, originLon) // ~110 miles
	outer.Population = 10_000_000
	store := selectorStore(
		at("P1", "IL", "M1", originLat+step, originLon),
		outer,
		at("Q1", "GA", "N1", destLat+step, destLon),
		at("Q2", "GA", "N2", destLat+2*step, destLon),
	)
	store.PutRateMatrix(&domain.RateMatrix{
		Equipment: "V",
		Level:     domain.RateLevelSpot,
		Rates:     map[string]float64{"IL|GA": 6},
	})

	p := DefaultParams()
	// Outer-ring proximity is zero, which caps a hot candidate at 0.85.
	p.NoBrainerThreshold = 0.84

	sel, err := NewSelector(store, store, p).Select(context.Background(), testLane(), SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, sel.NoBrainers)
	assert.Equal(t, 125.0, sel.PickupRadiusMiles)
	require.Len(t, sel.Pairs, 2)

	var picked []string
	for _, pr := range sel.Pairs {
		picked = append(picked, pr.Pickup.City.City)
	}
	assert.Contains(t, picked, "Ring")

	sel, err = NewSelector(store, store, DefaultParams()).Select(context.Background(), testLane(), SelectOptions{})
	require.NoError(t, err)
	assert.Zero(t, sel.NoBrainers, "default threshold is out of reach for the outer ring")
	assert.Len(t, sel.Pairs, 1)
}

func TestSelectEquipmentCaseInsensitive(t *testing.T) {
	store := selectorStore(
		at("P1", "IL", "M1", originLat+step, originLon),
		at("Q1", "GA", "N1", destLat+step, destLon),
	)
	store.PutRateMatrix(&domain.RateMatrix{
		Equipment: "V",
		Level:     domain.RateLevelSpot,
		Rates:     map[string]float64{"IL|GA": 6},
	})
	sel := NewSelector(store, store, DefaultParams())

	upper, err := sel.Select(context.Background(), testLane(), SelectOptions{})
	require.NoError(t, err)
	require.Len(t, upper.Pairs, 1)
	assert.Contains(t, upper.Pairs[0].Pickup.Reasons, domain.TagRate)

	lane := testLane()
	lane.Equipment = " v "
	lower, err := sel.Select(context.Background(), lane, SelectOptions{})
	require.NoError(t, err)
	require.Len(t, lower.Pairs, 1)
	assert.Equal(t, upper.Pairs[0].Pickup.Score, lower.Pairs[0].Pickup.Score)
	assert.Equal(t, upper.Pairs[0].Pickup.Reasons, lower.Pairs[0].Pickup.Reasons)
	assert.Equal(t, upper.Pairs[0].Delivery.Score, lower.Pairs[0].Delivery.Score)
}

func TestAdmitNoBrainers(t *testing.T) {
	p := DefaultParams()
	ring := make([]domain.ScoredCandidate, 20)
	for i := range ring {
		ring[i] = cand("C", "M", 0.95)
		ring[i].Hot = true
	}
	ring[0].City.City = "Top"

	admitted := admitNoBrainers(p, ring, "V")
	require.Len(t, admitted, 1, "top 5 percent of 20 is one candidate")
	assert.Equal(t, "Top", admitted[0].City.City)

	ring[0].Hot = false
	assert.Empty(t, admitNoBrainers(p, ring, "V"))

	ring[0].EquipmentBias = []string{"V"}
	assert.Len(t, admitNoBrainers(p, ring, "V"), 1)

	ring[0].Score = 0.91
	assert.Empty(t, admitNoBrainers(p, ring, "V"))
}

func TestSelectUnknownCity(t *testing.T) {
	store := selectorStore()
	lane := testLane()
	lane.Destination = domain.Place{City: "Nowhere", State: "GA"}

	_, err := NewSelector(store, store, DefaultParams()).Select(context.Background(), lane, SelectOptions{})
	var notFound *domain.CityNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "destination", notFound.Role)
}

// marketAreaCounts tallies pairs per market area on each side.
func marketAreaCounts(pairs []domain.Pair) (pickups, deliveries map[string]int) {
	pickups = make(map[string]int, len(pairs))
	deliveries = make(map[string]int, len(pairs))
	for _, p := range pairs {
		pickups[p.Pickup.MarketArea]++
		deliveries[p.Delivery.MarketArea]++
	}
	return pickups, deliveries
}
