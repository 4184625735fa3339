package domain

import "time"

// Audit trail entry written when a generation batch is finalized.
type AuditRecord struct {
	ID                string
	BatchID           string
	LaneIDs           []string
	RowCount          int
	ChunkCount        int
	SyntheticPostings int
	CreatedAt         time.Time
}

// Rate levels published per equipment class.
const (
	RateLevelSpot     = "spot"
	RateLevelContract = "contract"
)

// Latest published state-to-state rates for one equipment class and level.
type RateMatrix struct {
	Equipment   string
	Level       string
	EffectiveAt time.Time
	Rates       map[string]float64
}

// RateKey builds the lookup key for an origin/destination state pair.
func RateKey(originState, destState string) string {
	return originState + "|" + destState
}

// Rate returns the per-mile rate for a state pair, if published.
func (m *RateMatrix) Rate(originState, destState string) (float64, bool) {
	if m == nil || m.Rates == nil {
		return 0, false
	}
	r, ok := m.Rates[RateKey(originState, destState)]
	return r, ok
}
