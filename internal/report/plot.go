// Package report renders agreement grids as images and charts: static PNG
// heatmaps via gonum/plot and interactive HTML heatmaps via go-echarts.
package report

import (
	"image/color"

	"github.com/banshee-data/niche.report/internal/raster"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// agreementPalette colors the three agreement buckets: blue where the
// second surface is lower, grey where they agree, red where it is higher.
type agreementPalette struct{}

func (agreementPalette) Colors() []color.Color {
	return []color.Color{
		color.RGBA{R: 33, G: 102, B: 172, A: 255},
		color.RGBA{R: 229, G: 229, B: 229, A: 255},
		color.RGBA{R: 178, G: 24, B: 43, A: 255},
	}
}

var _ palette.Palette = agreementPalette{}

// gridData adapts a raster grid to gonum's heatmap interface. Grid row 0
// is the top of the raster, while plot rows grow upward, so rows are
// flipped. Cells are placed at their spatial centers when the grid carries
// metadata, or on a unit lattice when it does not.
type gridData struct {
	g *raster.Grid
}

func (d gridData) Dims() (c, r int) { return d.g.Cols, d.g.Rows }

func (d gridData) Z(c, r int) float64 { return d.g.At(d.g.Rows-1-r, c) }

func (d gridData) X(c int) float64 {
	return d.g.Meta.XLLCorner + (float64(c)+0.5)*d.cellSize()
}

func (d gridData) Y(r int) float64 {
	return d.g.Meta.YLLCorner + (float64(r)+0.5)*d.cellSize()
}

func (d gridData) cellSize() float64 {
	if d.g.Meta.CellSize > 0 {
		return d.g.Meta.CellSize
	}
	return 1
}

// SaveAgreementPNG renders an agreement grid as a PNG heatmap. Missing
// cells are left undrawn.
func SaveAgreementPNG(g *raster.Grid, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Easting"
	p.Y.Label.Text = "Northing"

	hm := plotter.NewHeatMap(gridData{g}, agreementPalette{})
	// Fix the scale to the bucket values so a grid missing a bucket still
	// colors consistently.
	hm.Min = -1
	hm.Max = 1
	p.Add(hm)

	return p.Save(10*vg.Inch, 8*vg.Inch, path)
}
