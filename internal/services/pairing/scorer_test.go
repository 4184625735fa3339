package pairing

import (
	"lane-posting-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

var spotAndContract = RateTable{
	Spot:     &domain.RateMatrix{Rates: map[string]float64{"IL|GA": 3.0}},
	Contract: &domain.RateMatrix{Rates: map[string]float64{"IL|GA": 3.0}},
}

func TestScoreTagsAndRange(t *testing.T) {
	base := domain.Coordinates{Lon: -87.63, Lat: 41.88}
	cand := domain.City{
		City: "Cicero", State: "IL", Coords: base, MarketArea: "IL_CHI",
		Population: 1_000_000, Hot: true, EquipmentBias: []string{"V"},
	}

	got := Score(DefaultParams(), ScoreInput{
		Base: base, Candidate: cand, Equipment: "V", Side: SidePickup,
		CounterpartState: "GA", Rates: spotAndContract,
	})

	assert.Equal(t, []string{domain.TagRate, domain.TagHot, domain.TagReload, domain.TagProx}, got.Reasons)
	assert.InDelta(t, 0.0, got.DistanceMiles, 1e-9)
	// 0.40*0.5 + 0.25*log(1e6)/log(1e7) + 0.20 + 0.15 + 0.05
	assert.InDelta(t, 0.2+0.25*6.0/7.0+0.2+0.15+0.05, got.Score, 1e-3)
}

func TestScoreRateDirectionFollowsSide(t *testing.T) {
	base := domain.Coordinates{Lon: -84.39, Lat: 33.75}
	cand := domain.City{City: "Marietta", State: "GA", Coords: base}

	delivery := Score(DefaultParams(), ScoreInput{
		Base: base, Candidate: cand, Side: SideDelivery, CounterpartState: "IL", Rates: spotAndContract,
	})
	pickup := Score(DefaultParams(), ScoreInput{
		Base: base, Candidate: cand, Side: SidePickup, CounterpartState: "IL", Rates: spotAndContract,
	})

	assert.Contains(t, delivery.Reasons, domain.TagRate)
	assert.NotContains(t, pickup.Reasons, domain.TagRate)
	assert.InDelta(t, 0.2, delivery.Score-pickup.Score, 1e-9)
}

func TestScoreIsClamped(t *testing.T) {
	base := domain.Coordinates{Lon: -90, Lat: 40}
	rich := RateTable{Spot: &domain.RateMatrix{Rates: map[string]float64{"IL|GA": 12}}}
	cand := domain.City{
		City: "Max", State: "IL", Coords: base, Population: 50_000_000,
		Hot: true, EquipmentBias: []string{"R"},
	}

	got := Score(DefaultParams(), ScoreInput{
		Base: base, Candidate: cand, Equipment: "R", CounterpartState: "GA", Rates: rich,
	})
	assert.Equal(t, 1.0, got.Score)

	far := cand
	far.Coords = domain.Coordinates{Lon: -90, Lat: 42}
	far.Hot, far.Population, far.EquipmentBias = false, 0, nil
	got = Score(DefaultParams(), ScoreInput{Base: base, Candidate: far, CounterpartState: "TX"})
	assert.Equal(t, 0.0, got.Score)
	assert.Empty(t, got.Reasons)
	assert.False(t, got.HasPositiveReason())
}
