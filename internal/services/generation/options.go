package generation

import (
	"lane-posting-service/internal/services/csvrows"
	"time"
)

const defaultConcurrency = 10

// Options tune one Generate call. Zero values fall back to defaults.
type Options struct {
	// Pad every lane to MinimumPostings with synthetic postings.
	FillQuota       bool `yaml:"fill_quota" json:"fill_quota"`
	MinimumPostings int  `yaml:"minimum_postings" json:"minimum_postings"`
	// Alternate pairs requested per lane. 0 asks for MinimumPostings-1 with
	// FillQuota, else the scoring target count.
	TargetPairs int `yaml:"target_pairs" json:"target_pairs"`

	// Lane tasks run at once.
	Concurrency int           `yaml:"concurrency" json:"concurrency"`
	LaneTimeout time.Duration `yaml:"lane_timeout" json:"lane_timeout"`
	ChunkSize   int           `yaml:"chunk_size" json:"chunk_size"`

	// Generate the valid lanes of a batch that contains invalid ones.
	SkipInvalidLanes bool `yaml:"skip_invalid_lanes" json:"skip_invalid_lanes"`
	// Report verification defects as warnings instead of failing the batch.
	VerifyWarnOnly bool `yaml:"verify_warn_only" json:"verify_warn_only"`
	// Post a lane with unknown base cities using its literal text and
	// synthetic padding instead of failing it.
	DegradeOnMissingCity bool `yaml:"degrade_on_missing_city" json:"degrade_on_missing_city"`
	// Skip lane status updates and the audit record.
	DryRun bool `yaml:"dry_run" json:"dry_run"`
}

func DefaultOptions() Options {
	return Options{
		FillQuota:       true,
		MinimumPostings: csvrows.DefaultMinimumPostings,
		Concurrency:     defaultConcurrency,
		ChunkSize:       csvrows.MaxRowsPerFile,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinimumPostings <= 0 {
		o.MinimumPostings = d.MinimumPostings
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
	if o.ChunkSize <= 0 || o.ChunkSize > csvrows.MaxRowsPerFile {
		o.ChunkSize = d.ChunkSize
	}
	return o
}

// minimumRows is the verified row floor for one successful lane.
func (o Options) minimumRows() int {
	if o.FillQuota {
		return csvrows.MinimumRowsPerLane(o.MinimumPostings)
	}
	return csvrows.RowsPerPosting()
}

// pairTarget is the pair count requested from the selector; 0 defers to
// the selector's own target.
func (o Options) pairTarget() int {
	if o.TargetPairs > 0 {
		return o.TargetPairs
	}
	if o.FillQuota {
		return o.MinimumPostings - 1
	}
	return 0
}
