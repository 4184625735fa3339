package pairing

import (
	"lane-posting-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapPerMarketKeepsBestOfEachMarket(t *testing.T) {
	ranked := rankCandidates([]domain.ScoredCandidate{
		cand("A", "M1", 0.6), cand("B", "M1", 0.9), cand("C", "M2", 0.5), cand("D", "M2", 0.5),
	})

	strict := CapPerMarket(ranked, strictMarketCap)
	assert.Len(t, strict, 2)
	assert.Equal(t, "B", strict[0].City.City)
	assert.Equal(t, "C", strict[1].City.City, "ties keep input order")

	assert.Len(t, CapPerMarket(ranked, relaxedMarketCap), 4)
	assert.Nil(t, CapPerMarket(ranked, 0))
}

func TestRelaxedPool(t *testing.T) {
	noReason := cand("E", "M2", 0.88)
	noReason.Reasons = nil

	ranked := []domain.ScoredCandidate{
		cand("A", "M1", 0.90),
		cand("B", "M1", 0.86), // second in market, within gap
		cand("C", "M1", 0.85), // third in market
		noReason,              // first in market, admitted without a reason
		cand("F", "M2", 0.70), // second in market, outside gap
		cand("G", "M3", 0.60),
	}

	pool, reused := relaxedPool(ranked, 0.06)
	names := make([]string, 0, len(pool))
	for _, c := range pool {
		names = append(names, c.City.City)
	}
	assert.Equal(t, []string{"A", "B", "E", "G"}, names)
	assert.Equal(t, []bool{false, true, false, false}, reused)
}
