package validation

import (
	"lane-posting-service/internal/domain"
	"strings"
)

// ValidatePair checks both endpoints of an alternate pair.
func ValidatePair(laneID string, p domain.Pair) error {
	c := &collector{laneID: laneID}

	validateCity(c, "pickup", p.Pickup.City)
	validateCity(c, "delivery", p.Delivery.City)

	if p.Pickup.City.City != "" && p.Pickup.SameCity(p.Delivery.City) {
		c.add("delivery", "distinct_from_pickup", "a city other than the pickup", p.Delivery.City.City+", "+p.Delivery.State)
	}

	return c.err("city pair is invalid")
}

func validateCity(c *collector, prefix string, city domain.City) {
	c.required(prefix+"_city", strings.TrimSpace(city.City))
	if c.required(prefix+"_state", city.State) {
		c.pattern(prefix+"_state", city.State, statePattern, "two-letter state code")
	}
	if city.Zip != "" {
		c.pattern(prefix+"_zip", city.Zip, zipPattern, "5-digit ZIP or ZIP+4")
	}
	c.required(prefix+"_market_area", city.MarketArea)
}
