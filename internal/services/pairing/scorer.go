package pairing

import (
	"lane-posting-service/internal/domain"
	"math"
)

// Side of a lane a candidate is scored for.
type Side int

const (
	SidePickup Side = iota
	SideDelivery
)

func (s Side) String() string {
	if s == SideDelivery {
		return "delivery"
	}
	return "pickup"
}

// Latest spot and contract matrices for the lane's equipment. Either may be nil.
type RateTable struct {
	Spot     *domain.RateMatrix
	Contract *domain.RateMatrix
}

// Everything Score needs to rate one candidate.
type ScoreInput struct {
	Base      domain.Coordinates
	Candidate domain.City
	Equipment string
	Side      Side
	// State of the opposite lane endpoint (destination for pickups, origin for deliveries).
	CounterpartState string
	Rates            RateTable
}

const (
	rateTagThreshold = 0.5
	proxTagThreshold = 0.75
)

// Score rates a candidate city in [0,1] and explains the result with reason tags.
// It is a pure function of its inputs.
func Score(p Params, in ScoreInput) domain.ScoredCandidate {
	p = p.withDefaults()
	c := in.Candidate

	rate := rateFavorability(p, in)
	population := populationScore(p, c.Population)

	hot := 0.0
	if c.Hot {
		hot = 1
	}

	dist := in.Base.MilesTo(c.Coords)
	proximity := 1 - math.Min(dist, p.ExpandedRadiusMiles)/p.ExpandedRadiusMiles

	score := p.RateWeight*rate + p.PopulationWeight*population + p.HotWeight*hot + p.ProximityWeight*proximity

	biased := c.HasEquipmentBias(in.Equipment)
	if biased {
		score += p.EquipmentBonus
	}

	reasons := make([]string, 0, 4)
	if rate >= rateTagThreshold {
		reasons = append(reasons, domain.TagRate)
	}
	if c.Hot {
		reasons = append(reasons, domain.TagHot)
	}
	if biased {
		reasons = append(reasons, domain.TagReload)
	}
	if proximity >= proxTagThreshold {
		reasons = append(reasons, domain.TagProx)
	}

	return domain.ScoredCandidate{
		City:          c,
		Score:         clamp01(score),
		Reasons:       reasons,
		DistanceMiles: dist,
	}
}

// rateFavorability averages the available spot/contract rates for the lane
// direction implied by the side and normalizes against the rate ceiling.
func rateFavorability(p Params, in ScoreInput) float64 {
	from, to := in.Candidate.State, in.CounterpartState
	if in.Side == SideDelivery {
		from, to = in.CounterpartState, in.Candidate.State
	}

	var sum float64
	var n int
	for _, m := range []*domain.RateMatrix{in.Rates.Spot, in.Rates.Contract} {
		if r, ok := m.Rate(from, to); ok && r > 0 {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0
	}

	return clamp01((sum / float64(n)) / p.RateCeiling)
}

func populationScore(p Params, population int) float64 {
	if population <= 0 {
		return 0
	}
	return clamp01(math.Log10(float64(population)+1) / math.Log10(p.PopulationCeiling+1))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
