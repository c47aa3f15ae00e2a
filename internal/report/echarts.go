package report

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/banshee-data/niche.report/internal/raster"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Same diverging colors as the PNG palette: lower, equal, higher.
var agreementRampColors = []string{"#2166ac", "#e5e5e5", "#b2182b"}

// AgreementChart builds an interactive echarts heatmap for an agreement
// grid. Missing cells are omitted from the series, which echarts leaves
// blank.
func AgreementChart(g *raster.Grid, title, subtitle string) *charts.HeatMap {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Niche Agreement Map",
			Width:     "900px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "col"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "row"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:    opts.Bool(true),
			Min:     -1,
			Max:     1,
			InRange: &opts.VisualMapInRange{Color: agreementRampColors},
		}),
	)

	data := make([]opts.HeatMapData, 0, len(g.Data))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			v := g.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			// Chart rows grow upward; grid row 0 is the raster top.
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, g.Rows - 1 - r, v}})
		}
	}
	hm.AddSeries("agreement", data)
	return hm
}

// RenderAgreementHTML writes the chart page to w.
func RenderAgreementHTML(g *raster.Grid, title, subtitle string, w io.Writer) error {
	return AgreementChart(g, title, subtitle).Render(w)
}

// SaveAgreementHTML writes the chart page to a file.
func SaveAgreementHTML(g *raster.Grid, title, subtitle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := RenderAgreementHTML(g, title, subtitle, f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
