package pairing

import (
	"context"
	"errors"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/platform/obs"
	"lane-posting-service/internal/ports"
	"strings"
)

// Selector resolves base cities for a lane and picks diverse alternate pairs.
// It is safe for concurrent use when its repositories are.
type Selector struct {
	cities ports.CityRepository
	rates  ports.RateRepository
	params Params
}

func NewSelector(cities ports.CityRepository, rates ports.RateRepository, params Params) *Selector {
	return &Selector{
		cities: cities,
		rates:  rates,
		params: params.withDefaults(),
	}
}

// Options for a single selection.
type SelectOptions struct {
	// Pairs wanted; defaults to Params.TargetCount.
	Target int
	// Allow the relaxed two-per-market-area retry when short of Target.
	FillQuota bool
}

// Result of selecting pairs for a lane.
type Selection struct {
	BaseOrigin           domain.City
	BaseDest             domain.City
	Pairs                []domain.Pair
	UsedRelaxedDiversity bool
	// Non-empty when fewer pairs than requested were found. A quality
	// warning, not a failure.
	ShortfallReason string

	PickupRadiusMiles   float64
	DeliveryRadiusMiles float64
	NoBrainers          int
}

// Select resolves the lane's base cities and returns scored alternate pairs.
// A *domain.CityNotFoundError is returned when either base city is unknown.
func (s *Selector) Select(ctx context.Context, lane domain.Lane, opts SelectOptions) (_ *Selection, err error) {
	defer obs.Time(ctx, "pairing.Select")(&err)

	target := opts.Target
	if target <= 0 {
		target = s.params.TargetCount
	}

	origin, err := s.resolve(ctx, lane.Origin, "origin")
	if err != nil {
		return nil, fmt.Errorf("select pairs lane=%s: %w", lane.ID, err)
	}
	dest, err := s.resolve(ctx, lane.Destination, "destination")
	if err != nil {
		return nil, fmt.Errorf("select pairs lane=%s: %w", lane.ID, err)
	}

	equipment := strings.ToUpper(strings.TrimSpace(lane.Equipment))
	rates, err := s.loadRates(ctx, equipment)
	if err != nil {
		return nil, fmt.Errorf("select pairs lane=%s: %w", lane.ID, err)
	}

	pickups, err := s.searchSide(ctx, sideQuery{
		base:             origin,
		side:             SidePickup,
		counterpartState: dest.State,
		equipment:        equipment,
		rates:            rates,
	})
	if err != nil {
		return nil, fmt.Errorf("select pairs lane=%s: %w", lane.ID, err)
	}

	deliveries, err := s.searchSide(ctx, sideQuery{
		base:             dest,
		side:             SideDelivery,
		counterpartState: origin.State,
		equipment:        equipment,
		rates:            rates,
	})
	if err != nil {
		return nil, fmt.Errorf("select pairs lane=%s: %w", lane.ID, err)
	}

	pairs := AssignPairs(pickups.capped, deliveries.capped, target, 0, nil, nil)
	relaxedUsed := false

	if len(pairs) < target && opts.FillQuota {
		pPool, pReused := relaxedPool(pickups.ranked, s.params.RelaxedScoreGap)
		dPool, dReused := relaxedPool(deliveries.ranked, s.params.RelaxedScoreGap)

		relaxed := AssignPairs(pPool, dPool, target, s.params.ReusePenalty, pReused, dReused)
		if len(relaxed) > len(pairs) {
			pairs = relaxed
			relaxedUsed = true
		}
	}

	sel := &Selection{
		BaseOrigin:           origin,
		BaseDest:             dest,
		Pairs:                pairs,
		UsedRelaxedDiversity: relaxedUsed,
		PickupRadiusMiles:    pickups.radiusMiles,
		DeliveryRadiusMiles:  deliveries.radiusMiles,
		NoBrainers:           pickups.noBrainers + deliveries.noBrainers,
	}

	if len(pairs) < target {
		sel.ShortfallReason = shortfallReason(len(pairs), target, pickups, deliveries)
	}

	return sel, nil
}

func (s *Selector) resolve(ctx context.Context, place domain.Place, role string) (domain.City, error) {
	city, err := s.cities.FindCityByNameState(ctx, strings.TrimSpace(place.City), strings.TrimSpace(place.State))
	if errors.Is(err, ports.ErrNotFound) {
		return domain.City{}, &domain.CityNotFoundError{City: place.City, State: place.State, Role: role}
	}
	if err != nil {
		return domain.City{}, fmt.Errorf("resolve %s %s, %s: %w", role, place.City, place.State, err)
	}
	return city, nil
}

// loadRates fetches spot and contract matrices; an unpublished level is
// treated as empty rather than as a failure.
func (s *Selector) loadRates(ctx context.Context, equipment string) (RateTable, error) {
	var table RateTable
	if s.rates == nil {
		return table, nil
	}

	for _, level := range []string{domain.RateLevelSpot, domain.RateLevelContract} {
		m, err := s.rates.LatestRateMatrix(ctx, equipment, level)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			return RateTable{}, fmt.Errorf("load %s rates for %s: %w", level, equipment, err)
		}
		if level == domain.RateLevelSpot {
			table.Spot = m
		} else {
			table.Contract = m
		}
	}
	return table, nil
}

func shortfallReason(got, target int, pickups, deliveries sideSearch) string {
	return fmt.Sprintf(
		"found %d of %d pairs: %d pickup markets within %.0fmi, %d delivery markets within %.0fmi",
		got, target,
		len(pickups.capped), pickups.radiusMiles,
		len(deliveries.capped), deliveries.radiusMiles,
	)
}
