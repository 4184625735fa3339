package validation

import (
	"errors"
	"lane-posting-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLane() domain.Lane {
	return domain.Lane{
		ID:             "lane-1001",
		Origin:         domain.Place{City: "Chicago", State: "IL", Zip: "60601"},
		Destination:    domain.Place{City: "Atlanta", State: "GA"},
		Equipment:      "V",
		Weight:         domain.WeightSpec{Fixed: 45000},
		LengthFt:       53,
		FullPartial:    domain.LoadFull,
		PickupEarliest: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		PickupLatest:   time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		Commodity:      "paper goods",
	}
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected *domain.ValidationError, got %v", err)
	out := make(map[string]string, len(verr.Details))
	for _, d := range verr.Details {
		out[d.Field] = d.Rule
	}
	return out
}

func TestValidateLaneAccepts(t *testing.T) {
	require.NoError(t, ValidateLane(validLane()))

	l := validLane()
	l.Weight = domain.WeightSpec{Randomize: true, Min: 30000, Max: 30000}
	require.NoError(t, ValidateLane(l), "min equal to max is allowed")
}

func TestValidateLaneCollectsEveryViolation(t *testing.T) {
	l := validLane()
	l.Origin.State = "Illinois"
	l.Destination.City = ""
	l.Equipment = "ZZ"
	l.LengthFt = 0
	l.PickupLatest = l.PickupEarliest.AddDate(0, 0, -1)

	got := fields(t, ValidateLane(l))
	assert.Equal(t, "pattern", got["origin_state"])
	assert.Equal(t, "required", got["destination_city"])
	assert.Equal(t, "enum", got["equipment"])
	assert.Equal(t, "range", got["length_ft"])
	assert.Equal(t, "after_earliest", got["pickup_latest"])
}

func TestValidateLaneWeightRules(t *testing.T) {
	cases := []struct {
		name  string
		w     domain.WeightSpec
		field string
		rule  string
	}{
		{"fixed zero", domain.WeightSpec{Fixed: 0}, "weight_lbs", "range"},
		{"fixed over ceiling", domain.WeightSpec{Fixed: 46000}, "weight_lbs", "equipment_ceiling"},
		{"min above max", domain.WeightSpec{Randomize: true, Min: 40000, Max: 30000}, "weight_min", "not_above_max"},
		{"negative max", domain.WeightSpec{Randomize: true, Min: 1000, Max: -1}, "weight_max", "range"},
		{"random over ceiling", domain.WeightSpec{Randomize: true, Min: 1000, Max: 50000}, "weight_max", "equipment_ceiling"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := validLane()
			l.Weight = tc.w
			assert.Equal(t, tc.rule, fields(t, ValidateLane(l))[tc.field])
		})
	}

	l := validLane()
	l.Weight = domain.WeightSpec{Randomize: true, Min: 1000, Max: 2000, Fixed: -5}
	assert.NoError(t, ValidateLane(l), "fixed weight is ignored when randomized")
}

func TestValidatePair(t *testing.T) {
	gary := domain.City{City: "Gary", State: "IN", MarketArea: "IL_CHI"}
	macon := domain.City{City: "Macon", State: "GA", MarketArea: "GA_MAC"}

	require.NoError(t, ValidatePair("l1", domain.Pair{
		Pickup:   domain.ScoredCandidate{City: gary},
		Delivery: domain.ScoredCandidate{City: macon},
	}))

	got := fields(t, ValidatePair("l1", domain.Pair{
		Pickup:   domain.ScoredCandidate{City: gary},
		Delivery: domain.ScoredCandidate{City: domain.City{City: "gary", State: "IN"}},
	}))
	assert.Equal(t, "distinct_from_pickup", got["delivery"])
	assert.Equal(t, "required", got["delivery_market_area"])
}

func validRow() domain.Row {
	row := make(domain.Row, domain.HeaderCount)
	for _, h := range domain.Headers {
		row[h] = ""
	}
	row[domain.HeaderPickupEarliest] = "03/02/2026"
	row[domain.HeaderLength] = "53"
	row[domain.HeaderWeight] = "45000"
	row[domain.HeaderFullPartial] = "full"
	row[domain.HeaderEquipment] = "V"
	row[domain.HeaderUsePrivateNetwork] = "yes"
	row[domain.HeaderUseLoadboard] = "yes"
	row[domain.HeaderContactMethod] = domain.ContactEmail
	row[domain.HeaderOriginCity] = "Chicago"
	row[domain.HeaderOriginState] = "IL"
	row[domain.HeaderDestinationCity] = "Atlanta"
	row[domain.HeaderDestinationState] = "GA"
	row[domain.HeaderReferenceID] = "RR01001"
	return row
}

func TestValidateRow(t *testing.T) {
	require.NoError(t, ValidateRow("l1", validRow()))

	row := validRow()
	delete(row, domain.HeaderCommodity)
	row["Bogus"] = "x"
	row[domain.HeaderWeight] = "4.5e4"
	row[domain.HeaderPickupEarliest] = "2026-03-02"
	row[domain.HeaderContactMethod] = "fax"
	row[domain.HeaderReferenceID] = "RR0000001"
	row[domain.HeaderOriginCity] = " "

	got := fields(t, ValidateRow("l1", row))
	assert.Equal(t, "missing_header", got[domain.HeaderCommodity])
	assert.Equal(t, "unexpected_header", got["Bogus"])
	assert.Equal(t, "integer", got[domain.HeaderWeight])
	assert.Equal(t, "pattern", got[domain.HeaderPickupEarliest])
	assert.Equal(t, "enum", got[domain.HeaderContactMethod])
	assert.Equal(t, "pattern", got[domain.HeaderReferenceID])
	assert.Equal(t, "required", got[domain.HeaderOriginCity])
}

func TestValidateBatch(t *testing.T) {
	bad := validLane()
	bad.ID = "lane-2"
	bad.Equipment = "XX"
	dup := validLane()

	report := ValidateBatch([]domain.Lane{validLane(), bad, dup}, BatchOptions{})
	assert.False(t, report.Valid)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 1, report.ValidCount)
	assert.Equal(t, 2, report.InvalidCount)
	assert.Equal(t, map[string]bool{"lane-2": true, "lane-1001": true}, report.Invalid())
	assert.True(t, report.Lanes[0].Valid)
	assert.Equal(t, "unique", report.Lanes[2].Errors[0].Rule)

	stopped := ValidateBatch([]domain.Lane{bad, validLane()}, BatchOptions{FailOnFirstError: true})
	assert.Equal(t, 1, stopped.Checked)
	assert.False(t, stopped.Valid)

	assert.False(t, ValidateBatch(nil, BatchOptions{}).Valid)
	assert.True(t, ValidateBatch([]domain.Lane{validLane()}, BatchOptions{}).Valid)
}
