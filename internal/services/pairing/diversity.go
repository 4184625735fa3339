package pairing

import (
	"cmp"
	"lane-posting-service/internal/domain"
	"slices"
)

// rankCandidates orders candidates by descending score. The sort is stable, so
// equal scores keep their original order.
func rankCandidates(cands []domain.ScoredCandidate) []domain.ScoredCandidate {
	out := slices.Clone(cands)
	slices.SortStableFunc(out, func(a, b domain.ScoredCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// CapPerMarket keeps at most limit candidates per market-area code, walking
// the input in order. Callers pass ranked input so the best of each market wins.
func CapPerMarket(cands []domain.ScoredCandidate, limit int) []domain.ScoredCandidate {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]int, len(cands))
	out := make([]domain.ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		if seen[c.MarketArea] >= limit {
			continue
		}
		seen[c.MarketArea]++
		out = append(out, c)
	}
	return out
}

// relaxedPool widens a ranked candidate list to two per market area. A second
// candidate from a market is only admitted when it is within gap of the top
// score and carries at least one positive reason tag. The returned flags mark
// candidates whose market area was already represented.
func relaxedPool(ranked []domain.ScoredCandidate, gap float64) ([]domain.ScoredCandidate, []bool) {
	if len(ranked) == 0 {
		return nil, nil
	}
	top := ranked[0].Score

	seen := make(map[string]int, len(ranked))
	pool := make([]domain.ScoredCandidate, 0, len(ranked))
	reused := make([]bool, 0, len(ranked))
	for _, c := range ranked {
		n := seen[c.MarketArea]
		switch {
		case n == 0:
		case n < relaxedMarketCap && c.Score >= top-gap && c.HasPositiveReason():
		default:
			continue
		}
		seen[c.MarketArea]++
		pool = append(pool, c)
		reused = append(reused, n > 0)
	}
	return pool, reused
}
