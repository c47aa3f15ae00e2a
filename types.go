package main

import (
	"github.com/banshee-data/niche.report/internal/niche"
)

// ComparisonResult holds everything computed for one grid pair.
type ComparisonResult struct {
	GridAPath string `json:"grid_a_path"`
	GridBPath string `json:"grid_b_path"`

	Overlap   float64 `json:"overlap"`
	Tolerance float64 `json:"tolerance"`

	Summary niche.Summary `json:"summary"`

	MeanDiff   float64 `json:"mean_diff"`
	StdDevDiff float64 `json:"stddev_diff"`

	ProcessingTimeMs int64  `json:"processing_time_ms"`
	RunID            string `json:"run_id,omitempty"`
}
