package validation

import (
	"fmt"
	"lane-posting-service/internal/domain"
	"strconv"
	"strings"
)

// ValidateLane checks a lane's schema and business rules, returning a
// *domain.ValidationError listing every violation, or nil.
func ValidateLane(l domain.Lane) error {
	c := &collector{laneID: l.ID}

	if c.required("id", l.ID) {
		c.maxLen("id", l.ID, MaxLaneIDLength)
		c.pattern("id", l.ID, laneIDPattern, "letters, digits and _ . : -")
	}

	validatePlace(c, "origin", l.Origin)
	validatePlace(c, "destination", l.Destination)

	equipment := strings.ToUpper(strings.TrimSpace(l.Equipment))
	if c.required("equipment", equipment) && !domain.IsKnownEquipment(equipment) {
		c.add("equipment", "enum", "one of "+strings.Join(domain.EquipmentCodes(), ","), l.Equipment)
	}

	if l.LengthFt < MinLengthFt || l.LengthFt > MaxLengthFt {
		c.add("length_ft", "range", fmt.Sprintf("%d..%d", MinLengthFt, MaxLengthFt), strconv.Itoa(l.LengthFt))
	}

	if fp := strings.ToLower(strings.TrimSpace(l.FullPartial)); fp != "" && fp != domain.LoadFull && fp != domain.LoadPartial {
		c.add("full_partial", "enum", domain.LoadFull+","+domain.LoadPartial, l.FullPartial)
	}

	if l.PickupEarliest.IsZero() {
		c.add("pickup_earliest", "required", "a date", "")
	} else if !l.PickupLatest.IsZero() && l.PickupLatest.Before(l.PickupEarliest) {
		c.add("pickup_latest", "after_earliest",
			"on or after "+l.PickupEarliest.Format(domain.DateLayout),
			l.PickupLatest.Format(domain.DateLayout))
	}

	validateWeight(c, l.Weight, equipment)

	c.maxLen("commodity", l.Commodity, MaxCommodityLength)
	c.maxLen("comment", l.Comment, MaxCommentLength)

	switch l.Status {
	case "", domain.LaneStatusPending, domain.LaneStatusPosted, domain.LaneStatusArchived:
	default:
		c.add("status", "enum", "pending,posted,archived", string(l.Status))
	}

	return c.err(fmt.Sprintf("lane %q is invalid", l.ID))
}

func validatePlace(c *collector, prefix string, p domain.Place) {
	city := strings.TrimSpace(p.City)
	if c.required(prefix+"_city", city) {
		c.maxLen(prefix+"_city", city, MaxCityLength)
	}

	state := strings.ToUpper(strings.TrimSpace(p.State))
	if c.required(prefix+"_state", state) {
		c.pattern(prefix+"_state", state, statePattern, "two-letter state code")
	}

	if zip := strings.TrimSpace(p.Zip); zip != "" {
		c.pattern(prefix+"_zip", zip, zipPattern, "5-digit ZIP or ZIP+4")
	}
}

// validateWeight enforces the conditional weight fields: a positive fixed
// weight, or a positive min not above max when randomized. Either way the
// heaviest possible row must respect the equipment ceiling.
func validateWeight(c *collector, w domain.WeightSpec, equipment string) {
	heaviest := w.Fixed
	if w.Randomize {
		if w.Min <= 0 {
			c.add("weight_min", "range", "greater than 0", strconv.Itoa(w.Min))
		}
		if w.Max <= 0 {
			c.add("weight_max", "range", "greater than 0", strconv.Itoa(w.Max))
		}
		if w.Min > 0 && w.Max > 0 && w.Min > w.Max {
			c.add("weight_min", "not_above_max", "at most "+strconv.Itoa(w.Max), strconv.Itoa(w.Min))
		}
		heaviest = w.Max
	} else if w.Fixed <= 0 {
		c.add("weight_lbs", "range", "greater than 0", strconv.Itoa(w.Fixed))
	}

	if ceiling, ok := domain.EquipmentMaxWeight(equipment); ok && heaviest > ceiling {
		field := "weight_lbs"
		if w.Randomize {
			field = "weight_max"
		}
		c.add(field, "equipment_ceiling", fmt.Sprintf("at most %d for %s", ceiling, equipment), strconv.Itoa(heaviest))
	}
}
