package domain

import (
	"slices"
	"strings"
)

// Reference record for a city that may serve as a pickup or delivery point.
// Cities are read-only reference data; the pipeline never mutates them.
type City struct {
	City          string
	State         string
	Zip           string
	Coords        Coordinates
	MarketArea    string
	Population    int
	Hot           bool
	EquipmentBias []string
}

// Key identifies a city by normalized name and state.
func (c City) Key() string {
	return CityKey(c.City, c.State)
}

// SameCity reports whether both records name the same city.
func (c City) SameCity(other City) bool {
	return c.Key() == other.Key()
}

// HasEquipmentBias reports whether the city is tagged for the equipment code.
func (c City) HasEquipmentBias(equipment string) bool {
	eq := strings.ToUpper(strings.TrimSpace(equipment))
	if eq == "" {
		return false
	}
	return slices.ContainsFunc(c.EquipmentBias, func(tag string) bool {
		return strings.EqualFold(strings.TrimSpace(tag), eq)
	})
}

// CityKey normalizes a city/state pair for lookups and cache keys.
func CityKey(city, state string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " ")) + "|" + strings.ToUpper(strings.TrimSpace(state))
}

// Reason tags attached to scored candidates.
const (
	TagRate   = "rate+"
	TagHot    = "hot"
	TagReload = "reload"
	TagProx   = "prox"
)

// A City with its score for one side of a lane.
type ScoredCandidate struct {
	City
	Score         float64
	Reasons       []string
	DistanceMiles float64
}

// HasPositiveReason reports whether at least one reason tag was earned.
func (s ScoredCandidate) HasPositiveReason() bool { return len(s.Reasons) > 0 }

// An alternate pickup/delivery combination selected for a lane.
type Pair struct {
	Pickup   ScoredCandidate
	Delivery ScoredCandidate
	Score    float64
}
