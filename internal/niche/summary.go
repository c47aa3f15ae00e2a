package niche

import (
	"math"

	"github.com/banshee-data/niche.report/internal/raster"
	"gonum.org/v1/gonum/stat"
)

// Summary breaks an agreement grid down by bucket. Percentages are taken
// over valid (non-missing) cells.
type Summary struct {
	Total   int `json:"total_cells"`
	Valid   int `json:"valid_cells"`
	Missing int `json:"missing_cells"`

	Lower  int `json:"lower_count"`
	Equal  int `json:"equal_count"`
	Higher int `json:"higher_count"`

	LowerPct  float64 `json:"lower_pct"`
	EqualPct  float64 `json:"equal_pct"`
	HigherPct float64 `json:"higher_pct"`
}

// SummarizeAgreement tallies the -1/0/+1/missing buckets of an agreement
// grid produced by AgreementMap.
func SummarizeAgreement(g *raster.Grid) Summary {
	s := Summary{Total: len(g.Data)}
	for _, v := range g.Data {
		switch {
		case math.IsNaN(v):
			s.Missing++
		case v < 0:
			s.Lower++
		case v > 0:
			s.Higher++
		default:
			s.Equal++
		}
	}
	s.Valid = s.Total - s.Missing
	if s.Valid > 0 {
		s.LowerPct = 100 * float64(s.Lower) / float64(s.Valid)
		s.EqualPct = 100 * float64(s.Equal) / float64(s.Valid)
		s.HigherPct = 100 * float64(s.Higher) / float64(s.Valid)
	}
	return s
}

// DiffStats returns the mean and standard deviation of the per-cell
// difference b - a over cells valid in both grids. Shapes must match;
// ErrNoValidData is returned when no cell is valid in both.
func DiffStats(a, b *raster.Grid) (mean, stddev float64, err error) {
	if !a.SameShape(b) {
		return 0, 0, &ShapeError{ARows: a.Rows, ACols: a.Cols, BRows: b.Rows, BCols: b.Cols}
	}
	diffs := make([]float64, 0, len(a.Data))
	for i := range a.Data {
		if math.IsNaN(a.Data[i]) || math.IsNaN(b.Data[i]) {
			continue
		}
		diffs = append(diffs, b.Data[i]-a.Data[i])
	}
	if len(diffs) == 0 {
		return 0, 0, ErrNoValidData
	}
	mean, stddev = stat.MeanStdDev(diffs, nil)
	if len(diffs) == 1 {
		stddev = 0
	}
	return mean, stddev, nil
}
