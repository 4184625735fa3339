package pairing

import (
	"cmp"
	"lane-posting-service/internal/domain"
	"slices"
)

// Cost assigned to cells that must never be matched (same city on both
// sides, or dummy-to-dummy in the padded matrix). Real costs lie in [-1, 1].
const forbiddenCost = 1e3

// AssignPairs matches pickups to deliveries, returning up to
// min(target, len(pickups), len(deliveries)) disjoint pairs with the largest
// total combined score.
//
// The combined score of a cell is the average of both candidate scores,
// minus penalty for every endpoint flagged in the reused slices (market area
// already represented). Either reused slice may be nil.
//
// To select exactly k real pairs the N×M matrix is padded to a square of size
// N+M-k: M-k dummy rows may only take real columns and N-k dummy columns may
// only take real rows, which leaves exactly k real-to-real matches.
func AssignPairs(
	pickups, deliveries []domain.ScoredCandidate,
	target int,
	penalty float64,
	pickupReused, deliveryReused []bool,
) []domain.Pair {
	n, m := len(pickups), len(deliveries)
	k := min(target, n, m)
	if k <= 0 {
		return nil
	}

	scores := make([][]float64, n)
	for i, pu := range pickups {
		scores[i] = make([]float64, m)
		for j, de := range deliveries {
			s := (pu.Score + de.Score) / 2
			if flagged(pickupReused, i) {
				s -= penalty
			}
			if flagged(deliveryReused, j) {
				s -= penalty
			}
			scores[i][j] = s
		}
	}

	size := n + m - k
	cost := make([][]float64, size)
	for r := 0; r < size; r++ {
		cost[r] = make([]float64, size)
		for c := 0; c < size; c++ {
			realRow, realCol := r < n, c < m
			switch {
			case realRow && realCol:
				if pickups[r].SameCity(deliveries[c].City) {
					cost[r][c] = forbiddenCost
				} else {
					cost[r][c] = -scores[r][c]
				}
			case !realRow && !realCol:
				cost[r][c] = forbiddenCost
			default:
				cost[r][c] = 0
			}
		}
	}

	assign := minCostAssignment(cost)

	pairs := make([]domain.Pair, 0, k)
	pickupIdx := make([]int, 0, k)
	for r := 0; r < n; r++ {
		c := assign[r]
		if c >= m || cost[r][c] >= forbiddenCost {
			continue
		}
		pairs = append(pairs, domain.Pair{
			Pickup:   pickups[r],
			Delivery: deliveries[c],
			Score:    scores[r][c],
		})
		pickupIdx = append(pickupIdx, r)
	}

	// Present best pairs first; equal scores keep pickup input order.
	order := make([]int, len(pairs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if c := cmp.Compare(pairs[b].Score, pairs[a].Score); c != 0 {
			return c
		}
		return cmp.Compare(pickupIdx[a], pickupIdx[b])
	})

	out := make([]domain.Pair, 0, len(pairs))
	for _, i := range order {
		out = append(out, pairs[i])
	}
	return out
}

func flagged(flags []bool, i int) bool {
	return i < len(flags) && flags[i]
}
