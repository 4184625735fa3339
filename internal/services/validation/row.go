package validation

import (
	"fmt"
	"lane-posting-service/internal/domain"
	"slices"
	"strconv"
	"strings"
	"time"
)

var yesNoHeaders = map[string]bool{
	domain.HeaderUsePrivateNetwork:     true,
	domain.HeaderAllowPrivateBooking:   true,
	domain.HeaderAllowPrivateBidding:   true,
	domain.HeaderUseLoadboard:          true,
	domain.HeaderAllowLoadboardBooking: true,
	domain.HeaderUseExtendedNetwork:    true,
}

// ValidateRow checks an output row against the fixed header: every header
// present and no others, required columns non-empty, and per-column
// type, enum and pattern rules.
func ValidateRow(laneID string, row domain.Row) error {
	c := &collector{laneID: laneID}

	for _, h := range domain.Headers {
		if _, ok := row[h]; !ok {
			c.add(h, "missing_header", "column present", "")
		}
	}
	var extra []string
	for h := range row {
		if !slices.Contains(domain.Headers, h) {
			extra = append(extra, h)
		}
	}
	slices.Sort(extra)
	for _, h := range extra {
		c.add(h, "unexpected_header", "one of the fixed columns", h)
	}

	for _, h := range domain.Headers {
		v, ok := row[h]
		if !ok {
			continue
		}
		if domain.IsRequiredHeader(h) && !c.required(h, strings.TrimSpace(v)) {
			continue
		}
		if v == "" {
			continue
		}
		checkColumn(c, h, v)
	}

	return c.err("row is invalid")
}

func checkColumn(c *collector, h, v string) {
	switch {
	case h == domain.HeaderPickupEarliest || h == domain.HeaderPickupLatest:
		if !datePattern.MatchString(v) {
			c.add(h, "pattern", "MM/DD/YYYY", v)
		} else if _, err := time.Parse(domain.DateLayout, v); err != nil {
			c.add(h, "date", "a calendar date", v)
		}
	case h == domain.HeaderLength:
		checkIntRange(c, h, v, MinLengthFt, MaxLengthFt)
	case h == domain.HeaderWeight:
		checkIntRange(c, h, v, MinRowWeight, MaxRowWeight)
	case h == domain.HeaderFullPartial:
		if v != domain.LoadFull && v != domain.LoadPartial {
			c.add(h, "enum", domain.LoadFull+","+domain.LoadPartial, v)
		}
	case h == domain.HeaderEquipment:
		if !domain.IsKnownEquipment(v) || v != strings.ToUpper(v) {
			c.add(h, "enum", "a known upper-case equipment code", v)
		}
	case yesNoHeaders[h]:
		if v != "yes" && v != "no" {
			c.add(h, "enum", "yes,no", v)
		}
	case h == domain.HeaderPrivateNetworkRate || h == domain.HeaderLoadboardRate:
		c.pattern(h, v, ratePattern, "a non-negative amount with at most 2 decimals")
	case h == domain.HeaderContactMethod:
		if v != domain.ContactEmail && v != domain.ContactPhone {
			c.add(h, "enum", domain.ContactEmail+","+domain.ContactPhone, v)
		}
	case h == domain.HeaderOriginCity || h == domain.HeaderDestinationCity:
		c.maxLen(h, v, MaxCityLength)
	case h == domain.HeaderOriginState || h == domain.HeaderDestinationState:
		c.pattern(h, v, statePattern, "two-letter state code")
	case h == domain.HeaderOriginPostalCode || h == domain.HeaderDestinationPostalCode:
		c.pattern(h, v, zipPattern, "5-digit ZIP or ZIP+4")
	case h == domain.HeaderComment:
		c.maxLen(h, v, MaxCommentLength)
	case h == domain.HeaderCommodity:
		c.maxLen(h, v, MaxCommodityLength)
	case h == domain.HeaderReferenceID:
		c.maxLen(h, v, MaxReferenceID)
		c.pattern(h, v, refIDPattern, "RR followed by 5 digits")
	}
}

func checkIntRange(c *collector, h, v string, lo, hi int) {
	if !intPattern.MatchString(v) {
		c.add(h, "integer", "a plain integer", v)
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		c.add(h, "range", fmt.Sprintf("%d..%d", lo, hi), v)
	}
}
