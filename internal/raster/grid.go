// Package raster provides the in-memory grid model and the file format
// providers used to read and write single-band raster surfaces. Readers
// normalize each format's NoData convention to NaN before any caller sees
// the data; writers translate NaN back to the format's marker.
package raster

import "math"

// Meta carries the spatial properties of a grid: where its lower-left
// corner sits, how large each cell is, and the coordinate reference system
// it was read with. The core statistics never look at Meta; it exists so
// outputs can be stamped with the same spatial properties as their inputs.
type Meta struct {
	XLLCorner float64
	YLLCorner float64
	CellSize  float64
	CRS       string
}

// Grid is a rows×cols raster surface stored row-major, with row 0 at the
// top of the raster. Missing cells hold NaN.
type Grid struct {
	Rows int
	Cols int
	Data []float64
	Meta Meta
}

// New returns a grid of the given shape with every cell set to zero.
func New(rows, cols int) *Grid {
	return &Grid{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// At returns the value at row r, column c.
func (g *Grid) At(r, c int) float64 {
	return g.Data[r*g.Cols+c]
}

// Set stores v at row r, column c.
func (g *Grid) Set(r, c int, v float64) {
	g.Data[r*g.Cols+c] = v
}

// SameShape reports whether g and o have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols
}

// IsMissing reports whether the cell at row r, column c holds the missing
// sentinel.
func (g *Grid) IsMissing(r, c int) bool {
	return math.IsNaN(g.At(r, c))
}

// Clone returns a deep copy of g, metadata included.
func (g *Grid) Clone() *Grid {
	out := New(g.Rows, g.Cols)
	copy(out.Data, g.Data)
	out.Meta = g.Meta
	return out
}

// ValidCount returns the number of cells that are not missing.
func (g *Grid) ValidCount() int {
	n := 0
	for _, v := range g.Data {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}
