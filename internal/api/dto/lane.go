package dto

import (
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/services/generation"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type PlaceRequest struct {
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

type WeightRequest struct {
	Randomize bool `json:"randomize"`
	Lbs       int  `json:"lbs"`
	Min       int  `json:"min"`
	Max       int  `json:"max"`
}

type LaneRequest struct {
	ID             string        `json:"id"`
	OrganizationID string        `json:"organization_id"`
	Origin         PlaceRequest  `json:"origin"`
	Destination    PlaceRequest  `json:"destination"`
	Equipment      string        `json:"equipment"`
	Weight         WeightRequest `json:"weight"`
	LengthFt       int           `json:"length_ft"`
	FullPartial    string        `json:"full_partial"`
	PickupEarliest string        `json:"pickup_earliest"`
	PickupLatest   string        `json:"pickup_latest"`
	Commodity      string        `json:"commodity"`
	Comment        string        `json:"comment"`
}

// ToDomain converts the request into a pending lane. An empty
// pickup_earliest is left zero for validation to report.
func (l LaneRequest) ToDomain() (domain.Lane, error) {
	earliest, err := parseDate(l.PickupEarliest)
	if err != nil {
		return domain.Lane{}, fmt.Errorf("lane %q: pickup_earliest: %w", l.ID, err)
	}
	latest, err := parseDate(l.PickupLatest)
	if err != nil {
		return domain.Lane{}, fmt.Errorf("lane %q: pickup_latest: %w", l.ID, err)
	}

	return domain.Lane{
		ID:             strings.TrimSpace(l.ID),
		OrganizationID: strings.TrimSpace(l.OrganizationID),
		Origin:         domain.Place(l.Origin),
		Destination:    domain.Place(l.Destination),
		Equipment:      strings.ToUpper(strings.TrimSpace(l.Equipment)),
		Weight: domain.WeightSpec{
			Randomize: l.Weight.Randomize,
			Fixed:     l.Weight.Lbs,
			Min:       l.Weight.Min,
			Max:       l.Weight.Max,
		},
		LengthFt:       l.LengthFt,
		FullPartial:    l.FullPartial,
		PickupEarliest: earliest,
		PickupLatest:   latest,
		Commodity:      l.Commodity,
		Comment:        l.Comment,
		Status:         domain.LaneStatusPending,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// ToDomainLanes converts every lane, failing on the first malformed date.
func ToDomainLanes(reqs []LaneRequest) ([]domain.Lane, error) {
	lanes := make([]domain.Lane, 0, len(reqs))
	for _, r := range reqs {
		l, err := r.ToDomain()
		if err != nil {
			return nil, err
		}
		lanes = append(lanes, l)
	}
	return lanes, nil
}

type ValidateRequest struct {
	Lanes    []LaneRequest `json:"lanes"`
	FailFast bool          `json:"fail_fast"`
}

type GenerateRequest struct {
	Lanes []LaneRequest `json:"lanes"`
	// Generate every pending lane of the lane store instead of Lanes.
	Pending bool             `json:"pending"`
	Options *GenerateOptions `json:"options"`
}

// Per-request overrides of the server's generation defaults.
type GenerateOptions struct {
	FillQuota            *bool `json:"fill_quota"`
	MinimumPostings      *int  `json:"minimum_postings"`
	TargetPairs          *int  `json:"target_pairs"`
	ChunkSize            *int  `json:"chunk_size"`
	SkipInvalidLanes     *bool `json:"skip_invalid_lanes"`
	VerifyWarnOnly       *bool `json:"verify_warn_only"`
	DegradeOnMissingCity *bool `json:"degrade_on_missing_city"`
	DryRun               *bool `json:"dry_run"`
}

func (o *GenerateOptions) Apply(base generation.Options) generation.Options {
	if o == nil {
		return base
	}
	setBool(&base.FillQuota, o.FillQuota)
	setInt(&base.MinimumPostings, o.MinimumPostings)
	setInt(&base.TargetPairs, o.TargetPairs)
	setInt(&base.ChunkSize, o.ChunkSize)
	setBool(&base.SkipInvalidLanes, o.SkipInvalidLanes)
	setBool(&base.VerifyWarnOnly, o.VerifyWarnOnly)
	setBool(&base.DegradeOnMissingCity, o.DegradeOnMissingCity)
	setBool(&base.DryRun, o.DryRun)
	return base
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
