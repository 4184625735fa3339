// Package validation checks lanes, city pairs and output rows against the
// marketplace schema and business rules. Every check collects all
// violations instead of stopping at the first one.
package validation

import (
	"lane-posting-service/internal/domain"
	"regexp"
	"strconv"
)

var (
	statePattern  = regexp.MustCompile(`^[A-Z]{2}$`)
	zipPattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	datePattern   = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	intPattern    = regexp.MustCompile(`^\d+$`)
	ratePattern   = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	refIDPattern  = regexp.MustCompile(`^RR\d{5}$`)
	laneIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)
)

// Field limits shared by lane and row checks.
const (
	MaxLaneIDLength    = 64
	MaxCityLength      = 64
	MaxCommodityLength = 70
	MaxCommentLength   = 140
	MaxReferenceID     = 8
	MinLengthFt        = 1
	MaxLengthFt        = 100
	MinRowWeight       = 1
	MaxRowWeight       = 80000
)

type collector struct {
	laneID string
	errs   []domain.FieldError
}

func (c *collector) add(field, rule, expected, actual string) {
	c.errs = append(c.errs, domain.FieldError{
		LaneID:   c.laneID,
		Field:    field,
		Rule:     rule,
		Expected: expected,
		Actual:   actual,
	})
}

func (c *collector) required(field, value string) bool {
	if value == "" {
		c.add(field, "required", "non-empty value", "")
		return false
	}
	return true
}

func (c *collector) maxLen(field, value string, limit int) {
	if n := len([]rune(value)); n > limit {
		c.add(field, "max_length", "at most "+strconv.Itoa(limit)+" characters", value)
	}
}

func (c *collector) pattern(field, value string, re *regexp.Regexp, expected string) {
	if !re.MatchString(value) {
		c.add(field, "pattern", expected, value)
	}
}

func (c *collector) err(message string) error {
	if len(c.errs) == 0 {
		return nil
	}
	return &domain.ValidationError{Message: message, Details: c.errs}
}
