// Package niche implements the niche-overlap statistics: normalization of
// non-negative surfaces into probability distributions, Warren's I overlap
// between two co-registered grids, and a tolerance-banded agreement map.
//
// All functions are pure: they never mutate their inputs, never log, and
// report every failure as an error at the point of detection.
package niche

import (
	"fmt"
	"math"

	"github.com/banshee-data/niche.report/internal/raster"
	"gonum.org/v1/gonum/floats"
)

// Agreement map cell values. Missing cells hold NaN.
const (
	AgreementLower  = -1 // second grid lower by more than tolerance
	AgreementEqual  = 0  // within tolerance (inclusive)
	AgreementHigher = 1  // second grid higher by more than tolerance
)

// DefaultTolerance is the agreement band half-width used when callers have
// no opinion. Suitability surfaces are typically 0..1, so 0.05 treats
// differences under five percentage points as noise.
const DefaultTolerance = 0.05

// Normalize scales values so they sum to 1, turning a non-negative surface
// into an empirical probability distribution. Values are assumed >= 0;
// negative inputs are not rejected but break the probability
// interpretation, matching the permissive behavior of the reference
// statistic. Returns ErrZeroSum when the values sum to zero.
func Normalize(values []float64) ([]float64, error) {
	sum := floats.Sum(values)
	if sum == 0 {
		return nil, ErrZeroSum
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / sum
	}
	return out, nil
}

// WarrensI computes Warren's I niche-overlap statistic between two grids
// of identical shape:
//
//	I = 1 - 0.5 * Σ |p1_i - p2_i|
//
// where p1 and p2 are the two grids normalized to probability
// distributions over the cells valid in both. A cell missing in either
// grid is excluded from both sides. Each side is normalized by its own
// valid-cell total. The result is clamped to [0, 1] to absorb summation
// rounding.
//
// Returns *ShapeError when the shapes differ and ErrNoValidData when no
// cell is valid in both grids.
func WarrensI(a, b *raster.Grid) (float64, error) {
	if !a.SameShape(b) {
		return 0, &ShapeError{ARows: a.Rows, ACols: a.Cols, BRows: b.Rows, BCols: b.Cols}
	}

	av := make([]float64, 0, len(a.Data))
	bv := make([]float64, 0, len(b.Data))
	for i := range a.Data {
		if math.IsNaN(a.Data[i]) || math.IsNaN(b.Data[i]) {
			continue
		}
		av = append(av, a.Data[i])
		bv = append(bv, b.Data[i])
	}
	if len(av) == 0 {
		return 0, ErrNoValidData
	}

	p1, err := Normalize(av)
	if err != nil {
		return 0, fmt.Errorf("first grid: %w", err)
	}
	p2, err := Normalize(bv)
	if err != nil {
		return 0, fmt.Errorf("second grid: %w", err)
	}

	// L1 distance between the two distributions, 0 (identical) to 2
	// (disjoint support).
	dist := floats.Distance(p1, p2, 1)

	i := 1 - 0.5*dist
	if i < 0 {
		i = 0
	} else if i > 1 {
		i = 1
	}
	return i, nil
}

// AgreementMap classifies each cell of b against a within a tolerance
// band. The difference is taken as b - a, so positive classifications mean
// b is higher. Cells land in exactly one band:
//
//	-1  diff < -tolerance
//	 0  |diff| <= tolerance (a diff exactly at the tolerance is "equal")
//	+1  diff > tolerance
//
// A cell missing in either input is missing (NaN) in the output. The
// inputs are never modified; the returned grid carries a's spatial
// metadata.
//
// Returns *ShapeError when the shapes differ and ErrInvalidInput when
// tolerance is negative, since a negative band would make the lower and
// higher predicates overlap.
func AgreementMap(a, b *raster.Grid, tolerance float64) (*raster.Grid, error) {
	if !a.SameShape(b) {
		return nil, &ShapeError{ARows: a.Rows, ACols: a.Cols, BRows: b.Rows, BCols: b.Cols}
	}
	if tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance must be >= 0, got %v", ErrInvalidInput, tolerance)
	}

	out := raster.New(a.Rows, a.Cols)
	out.Meta = a.Meta
	for i := range a.Data {
		if math.IsNaN(a.Data[i]) || math.IsNaN(b.Data[i]) {
			out.Data[i] = math.NaN()
			continue
		}
		diff := b.Data[i] - a.Data[i]
		switch {
		case diff < -tolerance:
			out.Data[i] = AgreementLower
		case diff > tolerance:
			out.Data[i] = AgreementHigher
		default:
			out.Data[i] = AgreementEqual
		}
	}
	return out, nil
}
