package niche

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroSum indicates a sequence whose total is zero was passed to
	// Normalize. A zero total has no probability interpretation.
	ErrZeroSum = errors.New("cannot normalize values with sum = 0")

	// ErrNoValidData indicates that after masking missing cells across a
	// grid pair, no comparable cells remained.
	ErrNoValidData = errors.New("no valid data after removing missing cells")

	// ErrInvalidInput indicates a parameter outside its valid range.
	ErrInvalidInput = errors.New("invalid input")
)

// ShapeError reports a grid pair whose dimensions do not match.
type ShapeError struct {
	ARows, ACols int
	BRows, BCols int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("grids must be the same shape: got %dx%d and %dx%d",
		e.ARows, e.ACols, e.BRows, e.BCols)
}
