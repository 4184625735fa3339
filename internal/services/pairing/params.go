package pairing

// Tunables for scoring, radius expansion and assignment.
// RateCeiling and NoBrainerThreshold are empirical and expected to be tuned
// from configuration.
type Params struct {
	RateWeight       float64 `yaml:"rate_weight"`
	PopulationWeight float64 `yaml:"population_weight"`
	HotWeight        float64 `yaml:"hot_weight"`
	ProximityWeight  float64 `yaml:"proximity_weight"`
	EquipmentBonus   float64 `yaml:"equipment_bonus"`

	// Rate per mile that maps to a full rate score.
	RateCeiling       float64 `yaml:"rate_ceiling"`
	PopulationCeiling float64 `yaml:"population_ceiling"`

	InitialRadiusMiles   float64 `yaml:"initial_radius_miles"`
	ExpandedRadiusMiles  float64 `yaml:"expanded_radius_miles"`
	NoBrainerRadiusMiles float64 `yaml:"no_brainer_radius_miles"`

	// Candidates wanted per side, and pairs wanted per lane.
	TargetCount int `yaml:"target_count"`

	NoBrainerThreshold   float64 `yaml:"no_brainer_threshold"`
	NoBrainerTopFraction float64 `yaml:"no_brainer_top_fraction"`

	RelaxedScoreGap float64 `yaml:"relaxed_score_gap"`
	ReusePenalty    float64 `yaml:"reuse_penalty"`
}

const (
	strictMarketCap  = 1
	relaxedMarketCap = 2
)

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		RateWeight:           0.40,
		PopulationWeight:     0.25,
		HotWeight:            0.20,
		ProximityWeight:      0.15,
		EquipmentBonus:       0.05,
		RateCeiling:          6.0,
		PopulationCeiling:    10_000_000,
		InitialRadiusMiles:   75,
		ExpandedRadiusMiles:  100,
		NoBrainerRadiusMiles: 125,
		TargetCount:          10,
		NoBrainerThreshold:   0.92,
		NoBrainerTopFraction: 0.05,
		RelaxedScoreGap:      0.06,
		ReusePenalty:         0.05,
	}
}

// withDefaults fills zero-valued fields from DefaultParams so partially
// specified configuration stays usable.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.RateWeight == 0 && p.PopulationWeight == 0 && p.HotWeight == 0 && p.ProximityWeight == 0 {
		p.RateWeight, p.PopulationWeight, p.HotWeight, p.ProximityWeight =
			d.RateWeight, d.PopulationWeight, d.HotWeight, d.ProximityWeight
	}
	if p.RateCeiling <= 0 {
		p.RateCeiling = d.RateCeiling
	}
	if p.PopulationCeiling <= 0 {
		p.PopulationCeiling = d.PopulationCeiling
	}
	if p.InitialRadiusMiles <= 0 {
		p.InitialRadiusMiles = d.InitialRadiusMiles
	}
	if p.ExpandedRadiusMiles <= 0 {
		p.ExpandedRadiusMiles = d.ExpandedRadiusMiles
	}
	if p.NoBrainerRadiusMiles <= 0 {
		p.NoBrainerRadiusMiles = d.NoBrainerRadiusMiles
	}
	if p.TargetCount <= 0 {
		p.TargetCount = d.TargetCount
	}
	if p.NoBrainerThreshold <= 0 {
		p.NoBrainerThreshold = d.NoBrainerThreshold
	}
	if p.NoBrainerTopFraction <= 0 {
		p.NoBrainerTopFraction = d.NoBrainerTopFraction
	}
	if p.RelaxedScoreGap <= 0 {
		p.RelaxedScoreGap = d.RelaxedScoreGap
	}
	return p
}
