package raster

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// DefaultNoData is the NODATA_value written by the ASCII provider. It is
// the conventional marker for Arc/Info ASCII grids.
const DefaultNoData = -9999

// ASCIIGrid reads and writes ESRI ASCII grids (.asc/.txt): a six-line
// header (ncols, nrows, xllcorner, yllcorner, cellsize, NODATA_value)
// followed by whitespace-separated cell values, top row first. Cells equal
// to the header's NODATA_value become NaN on read. The format has no CRS
// field; a sidecar .prj file holds it when present.
type ASCIIGrid struct{}

func (a *ASCIIGrid) Name() string { return "ascii" }

func (a *ASCIIGrid) Extensions() []string { return []string{".asc", ".txt"} }

func (a *ASCIIGrid) Read(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raster: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("unexpected end of file in %s", path)
		}
		return sc.Text(), nil
	}

	header := map[string]float64{}
	var cols, rows int
	nodata := math.NaN()

	// Header keys are case-insensitive and may appear in any order, but
	// ncols/nrows/cellsize are mandatory.
	for len(header) < 6 {
		tok, err := next()
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(tok)
		switch key {
		case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
			val, err := next()
			if err != nil {
				return nil, err
			}
			fv, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("bad header value for %s: %q", key, val)
			}
			header[key] = fv
			if key == "nodata_value" {
				nodata = fv
			}
		default:
			// First data token: header is over.
			fv, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("unexpected token %q in header of %s", tok, path)
			}
			cols = int(header["ncols"])
			rows = int(header["nrows"])
			if cols <= 0 || rows <= 0 {
				return nil, fmt.Errorf("missing or invalid ncols/nrows in %s", path)
			}
			return a.readCells(path, sc, next, header, rows, cols, nodata, &fv)
		}
	}

	cols = int(header["ncols"])
	rows = int(header["nrows"])
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("missing or invalid ncols/nrows in %s", path)
	}
	return a.readCells(path, sc, next, header, rows, cols, nodata, nil)
}

func (a *ASCIIGrid) readCells(path string, sc *bufio.Scanner, next func() (string, error), header map[string]float64, rows, cols int, nodata float64, first *float64) (*Grid, error) {
	g := New(rows, cols)
	g.Meta = Meta{
		XLLCorner: header["xllcorner"],
		YLLCorner: header["yllcorner"],
		CellSize:  header["cellsize"],
	}
	// xllcenter variants locate the center of the corner cell.
	if v, ok := header["xllcenter"]; ok {
		g.Meta.XLLCorner = v - g.Meta.CellSize/2
	}
	if v, ok := header["yllcenter"]; ok {
		g.Meta.YLLCorner = v - g.Meta.CellSize/2
	}

	i := 0
	if first != nil {
		g.Data[0] = *first
		i = 1
	}
	for ; i < rows*cols; i++ {
		tok, err := next()
		if err != nil {
			return nil, fmt.Errorf("cell %d of %d: %w", i, rows*cols, err)
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("bad cell value %q at index %d in %s", tok, i, path)
		}
		g.Data[i] = v
	}

	// Normalize the format's NoData marker to the universal sentinel.
	if !math.IsNaN(nodata) {
		for i, v := range g.Data {
			if v == nodata {
				g.Data[i] = math.NaN()
			}
		}
	}

	if prj, err := os.ReadFile(prjPath(path)); err == nil {
		g.Meta.CRS = strings.TrimSpace(string(prj))
	}
	return g, nil
}

func (a *ASCIIGrid) Write(path string, g *Grid, ref Meta) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create raster: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "ncols %d\n", g.Cols)
	fmt.Fprintf(w, "nrows %d\n", g.Rows)
	fmt.Fprintf(w, "xllcorner %s\n", formatFloat(ref.XLLCorner))
	fmt.Fprintf(w, "yllcorner %s\n", formatFloat(ref.YLLCorner))
	fmt.Fprintf(w, "cellsize %s\n", formatFloat(ref.CellSize))
	fmt.Fprintf(w, "NODATA_value %d\n", DefaultNoData)

	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				w.WriteByte(' ')
			}
			v := g.At(r, c)
			if math.IsNaN(v) {
				fmt.Fprintf(w, "%d", DefaultNoData)
			} else {
				w.WriteString(formatFloat(v))
			}
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write raster: %w", err)
	}

	if ref.CRS != "" {
		if err := os.WriteFile(prjPath(path), []byte(ref.CRS+"\n"), 0644); err != nil {
			return fmt.Errorf("write projection sidecar: %w", err)
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func prjPath(path string) string {
	ext := strings.LastIndexByte(path, '.')
	if ext < 0 {
		return path + ".prj"
	}
	return path[:ext] + ".prj"
}
