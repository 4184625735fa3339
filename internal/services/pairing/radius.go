package pairing

import (
	"context"
	"fmt"
	"lane-posting-service/internal/domain"
	"math"
)

// Outcome of the radius search for one side of a lane.
type sideSearch struct {
	// All admitted candidates, ranked by score (no market cap applied).
	ranked []domain.ScoredCandidate
	// ranked after the strict one-per-market-area cap.
	capped []domain.ScoredCandidate
	// Radius of the last pass that contributed candidates.
	radiusMiles float64
	noBrainers  int
}

// sideQuery describes one side of a lane for the radius search.
type sideQuery struct {
	base             domain.City
	side             Side
	counterpartState string
	equipment        string
	rates            RateTable
}

// searchSide runs the progressive radius policy for one side:
// 75 miles, then 100 miles when short of target, then a 125-mile pass that
// only admits outer-ring no-brainer candidates.
func (s *Selector) searchSide(ctx context.Context, q sideQuery) (sideSearch, error) {
	p := s.params
	var res sideSearch

	for _, radius := range []float64{p.InitialRadiusMiles, p.ExpandedRadiusMiles} {
		cities, err := s.cities.FindCitiesNear(ctx, q.base.Coords, radius)
		if err != nil {
			return sideSearch{}, fmt.Errorf("search %s candidates within %.0fmi: %w", q.side, radius, err)
		}

		res.ranked = rankCandidates(s.scoreCities(q, cities, radius))
		res.capped = CapPerMarket(res.ranked, strictMarketCap)
		res.radiusMiles = radius
		if len(res.capped) >= p.TargetCount {
			return res, nil
		}
	}

	cities, err := s.cities.FindCitiesNear(ctx, q.base.Coords, p.NoBrainerRadiusMiles)
	if err != nil {
		return sideSearch{}, fmt.Errorf("search %s candidates within %.0fmi: %w", q.side, p.NoBrainerRadiusMiles, err)
	}

	outer := make([]domain.City, 0, len(cities))
	for _, c := range cities {
		if q.base.Coords.MilesTo(c.Coords) > p.ExpandedRadiusMiles {
			outer = append(outer, c)
		}
	}

	admitted := admitNoBrainers(p, rankCandidates(s.scoreCities(q, outer, p.NoBrainerRadiusMiles)), q.equipment)
	if len(admitted) == 0 {
		return res, nil
	}

	merged := make([]domain.ScoredCandidate, 0, len(res.ranked)+len(admitted))
	merged = append(merged, res.ranked...)
	merged = append(merged, admitted...)

	res.ranked = rankCandidates(merged)
	res.capped = CapPerMarket(res.ranked, strictMarketCap)
	res.radiusMiles = p.NoBrainerRadiusMiles
	res.noBrainers = len(admitted)
	return res, nil
}

// admitNoBrainers filters a ranked outer ring down to candidates in its top
// fraction by score that also clear the no-brainer threshold and are hot or
// equipment-biased.
func admitNoBrainers(p Params, rankedOuter []domain.ScoredCandidate, equipment string) []domain.ScoredCandidate {
	if len(rankedOuter) == 0 {
		return nil
	}

	top := int(math.Ceil(float64(len(rankedOuter)) * p.NoBrainerTopFraction))
	top = max(1, min(top, len(rankedOuter)))

	out := make([]domain.ScoredCandidate, 0, top)
	for _, c := range rankedOuter[:top] {
		if c.Score < p.NoBrainerThreshold {
			continue
		}
		if !c.Hot && !c.HasEquipmentBias(equipment) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// scoreCities scores every usable city within radius. The base city and
// cities without a market-area code are skipped.
func (s *Selector) scoreCities(q sideQuery, cities []domain.City, radius float64) []domain.ScoredCandidate {
	out := make([]domain.ScoredCandidate, 0, len(cities))
	for _, c := range cities {
		if c.MarketArea == "" || c.SameCity(q.base) {
			continue
		}
		sc := Score(s.params, ScoreInput{
			Base:             q.base.Coords,
			Candidate:        c,
			Equipment:        q.equipment,
			Side:             q.side,
			CounterpartState: q.counterpartState,
			Rates:            q.rates,
		})
		if sc.DistanceMiles > radius {
			continue
		}
		out = append(out, sc)
	}
	return out
}
