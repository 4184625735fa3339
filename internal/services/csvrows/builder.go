package csvrows

import (
	"fmt"
	"lane-posting-service/internal/domain"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Builder turns a lane, its base cities and selected pairs into postings
// and rows. It is safe for concurrent use when its random source is.
type Builder struct {
	minimumPostings int
	intN            func(n int) int
}

// NewBuilder returns a Builder padding to minimumPostings (DefaultMinimumPostings
// if <= 0). intN draws uniform integers in [0, n); nil uses math/rand/v2.
func NewBuilder(minimumPostings int, intN func(n int) int) *Builder {
	if minimumPostings <= 0 {
		minimumPostings = DefaultMinimumPostings
	}
	if intN == nil {
		intN = rand.IntN
	}
	return &Builder{minimumPostings: minimumPostings, intN: intN}
}

// MinimumPostings is the posting floor applied when quota filling is on.
func (b *Builder) MinimumPostings() int { return b.minimumPostings }

// Output of building one lane.
type Output struct {
	Postings []domain.Posting
	Rows     []domain.Row
	// Number of synthetic fallback postings added as padding.
	Synthetic int
}

// BuildRows validates the lane's weight policy and expands one base posting
// plus one posting per pair into rows, two per posting. With fillQuota a
// shortfall below MinimumPostings is padded with synthetic postings that
// reuse the base cities; every real pair is posted.
func (b *Builder) BuildRows(lane domain.Lane, baseOrigin, baseDest domain.City, pairs []domain.Pair, fillQuota bool) (*Output, error) {
	if err := checkWeightPolicy(lane); err != nil {
		return nil, err
	}

	postings := make([]domain.Posting, 0, max(len(pairs)+1, b.minimumPostings))
	postings = append(postings, domain.Posting{
		Kind:        domain.PostingBase,
		Origin:      baseOrigin,
		Destination: baseDest,
		Score:       1,
	})
	for _, p := range pairs {
		postings = append(postings, domain.Posting{
			Kind:        domain.PostingAlternate,
			Origin:      p.Pickup.City,
			Destination: p.Delivery.City,
			Score:       p.Score,
			Tags:        mergeTags(p.Pickup.Reasons, p.Delivery.Reasons),
		})
	}

	synthetic := 0
	if fillQuota {
		for len(postings) < b.minimumPostings {
			postings = append(postings, domain.Posting{
				Kind:        domain.PostingSynthetic,
				Origin:      baseOrigin,
				Destination: baseDest,
				Tags:        []string{string(domain.PostingSynthetic)},
			})
			synthetic++
		}
	}

	title := cases.Title(language.AmericanEnglish)
	rows := make([]domain.Row, 0, len(postings)*RowsPerPosting())
	for _, p := range postings {
		for _, method := range domain.ContactMethods {
			rows = append(rows, b.row(lane, p, method, title))
		}
	}

	return &Output{Postings: postings, Rows: rows, Synthetic: synthetic}, nil
}

func (b *Builder) row(lane domain.Lane, p domain.Posting, method string, title cases.Caser) domain.Row {
	row := blankRow()

	latest := lane.PickupLatest
	if latest.IsZero() {
		latest = lane.PickupEarliest
	}
	fullPartial := strings.ToLower(strings.TrimSpace(lane.FullPartial))
	if fullPartial == "" {
		fullPartial = domain.LoadFull
	}

	row[domain.HeaderPickupEarliest] = lane.PickupEarliest.Format(domain.DateLayout)
	row[domain.HeaderPickupLatest] = latest.Format(domain.DateLayout)
	row[domain.HeaderLength] = strconv.Itoa(lane.LengthFt)
	row[domain.HeaderWeight] = strconv.Itoa(b.weight(lane.Weight))
	row[domain.HeaderFullPartial] = fullPartial
	row[domain.HeaderEquipment] = strings.ToUpper(strings.TrimSpace(lane.Equipment))
	row[domain.HeaderUsePrivateNetwork] = yes
	row[domain.HeaderAllowPrivateBooking] = no
	row[domain.HeaderAllowPrivateBidding] = no
	row[domain.HeaderUseLoadboard] = yes
	row[domain.HeaderAllowLoadboardBooking] = no
	row[domain.HeaderUseExtendedNetwork] = yes
	row[domain.HeaderContactMethod] = method
	row[domain.HeaderOriginCity] = cityName(title, p.Origin.City)
	row[domain.HeaderOriginState] = strings.ToUpper(clean(p.Origin.State))
	row[domain.HeaderOriginPostalCode] = clean(p.Origin.Zip)
	row[domain.HeaderDestinationCity] = cityName(title, p.Destination.City)
	row[domain.HeaderDestinationState] = strings.ToUpper(clean(p.Destination.State))
	row[domain.HeaderDestinationPostalCode] = clean(p.Destination.Zip)
	row[domain.HeaderComment] = clean(lane.Comment)
	row[domain.HeaderCommodity] = clean(lane.Commodity)
	row[domain.HeaderReferenceID] = clean(lane.ReferenceID)
	return row
}

// weight draws an independent value per row for randomized policies.
func (b *Builder) weight(w domain.WeightSpec) int {
	if !w.Randomize {
		return w.Fixed
	}
	return w.Min + b.intN(w.Max-w.Min+1)
}

func checkWeightPolicy(lane domain.Lane) error {
	w := lane.Weight
	if w.Randomize {
		if w.Min <= 0 || w.Max <= 0 || w.Min > w.Max {
			return &domain.WeightPolicyError{
				LaneID: lane.ID,
				Reason: fmt.Sprintf("randomized weight needs 0 < min <= max, got min=%d max=%d", w.Min, w.Max),
			}
		}
		return nil
	}
	if w.Fixed <= 0 {
		return &domain.WeightPolicyError{
			LaneID: lane.ID,
			Reason: fmt.Sprintf("fixed weight must be positive, got %d", w.Fixed),
		}
	}
	return nil
}

// StampReferenceID writes id into every row.
func StampReferenceID(rows []domain.Row, id string) {
	for _, r := range rows {
		r[domain.HeaderReferenceID] = id
	}
}

// clean collapses whitespace, including line breaks, to single spaces.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cityName(title cases.Caser, s string) string {
	return title.String(strings.ToLower(clean(s)))
}

func mergeTags(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	for _, t := range append(slices.Clone(a), b...) {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
