package pairing

import (
	"lane-posting-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(name, market string, score float64) domain.ScoredCandidate {
	return domain.ScoredCandidate{
		City:    domain.City{City: name, State: "IL", MarketArea: market},
		Score:   score,
		Reasons: []string{domain.TagHot},
	}
}

func TestAssignPairsPicksBestSubset(t *testing.T) {
	pickups := []domain.ScoredCandidate{cand("A", "M1", 0.5), cand("B", "M2", 0.9), cand("C", "M3", 0.7)}
	deliveries := []domain.ScoredCandidate{cand("X", "N1", 0.2), cand("Y", "N2", 0.8)}

	pairs := AssignPairs(pickups, deliveries, 1, 0, nil, nil)
	require.Len(t, pairs, 1)
	assert.Equal(t, "B", pairs[0].Pickup.City.City)
	assert.Equal(t, "Y", pairs[0].Delivery.City.City)
	assert.InDelta(t, 0.85, pairs[0].Score, 1e-9)

	pairs = AssignPairs(pickups, deliveries, 10, 0, nil, nil)
	require.Len(t, pairs, 2, "bounded by the smaller side")
	assert.ElementsMatch(t, []string{"B", "C"}, []string{pairs[0].Pickup.City.City, pairs[1].Pickup.City.City})
	assert.GreaterOrEqual(t, pairs[0].Score, pairs[1].Score)
}

func TestAssignPairsNeverPairsACityWithItself(t *testing.T) {
	gary := cand("Gary", "M1", 0.9)
	pairs := AssignPairs(
		[]domain.ScoredCandidate{gary, cand("Joliet", "M2", 0.2)},
		[]domain.ScoredCandidate{gary, cand("Macon", "N1", 0.3)},
		2, 0, nil, nil,
	)
	require.Len(t, pairs, 2)
	for _, p := range pairs {
		assert.False(t, p.Pickup.SameCity(p.Delivery.City))
	}
}

func TestAssignPairsReusePenalty(t *testing.T) {
	pickups := []domain.ScoredCandidate{cand("A", "M1", 0.9), cand("B", "M1", 0.88), cand("C", "M2", 0.8)}
	reused := []bool{false, true, false}
	deliveries := []domain.ScoredCandidate{cand("X", "N1", 0.5), cand("Y", "N2", 0.5)}

	names := func(pairs []domain.Pair) []string {
		out := []string{}
		for _, p := range pairs {
			out = append(out, p.Pickup.City.City)
		}
		return out
	}

	// B leads C by 0.04 in combined score before its penalty.
	assert.Equal(t, []string{"A", "B"}, names(AssignPairs(pickups, deliveries, 2, 0.03, reused, nil)))
	assert.Equal(t, []string{"A", "C"}, names(AssignPairs(pickups, deliveries, 2, 0.05, reused, nil)))
}

func TestAssignPairsEmpty(t *testing.T) {
	assert.Nil(t, AssignPairs(nil, []domain.ScoredCandidate{cand("X", "N1", 1)}, 3, 0, nil, nil))
	assert.Nil(t, AssignPairs([]domain.ScoredCandidate{cand("A", "M1", 1)}, nil, 3, 0, nil, nil))
}

func TestMinCostAssignment(t *testing.T) {
	cost := [][]float64{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	}
	assert.Equal(t, []int{1, 0, 2}, minCostAssignment(cost))
}
