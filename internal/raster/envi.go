package raster

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ENVIGrid reads and writes a flat-binary raster (.bin): little-endian
// float64 cells, top row first, with an ENVI-style text header in a
// sidecar .hdr file. NaN is stored directly in the payload, so no NoData
// translation is needed on this path.
type ENVIGrid struct{}

func (e *ENVIGrid) Name() string { return "envi" }

func (e *ENVIGrid) Extensions() []string { return []string{".bin"} }

func (e *ENVIGrid) Read(path string) (*Grid, error) {
	hdr, err := os.Open(hdrPath(path))
	if err != nil {
		return nil, fmt.Errorf("open raster header: %w", err)
	}
	defer hdr.Close()

	var rows, cols int
	meta := Meta{CellSize: 1}

	sc := bufio.NewScanner(hdr)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.ToLower(key))
		val = strings.TrimSpace(val)
		switch key {
		case "samples":
			cols, err = strconv.Atoi(val)
		case "lines":
			rows, err = strconv.Atoi(val)
		case "xllcorner":
			meta.XLLCorner, err = strconv.ParseFloat(val, 64)
		case "yllcorner":
			meta.YLLCorner, err = strconv.ParseFloat(val, 64)
		case "cellsize":
			meta.CellSize, err = strconv.ParseFloat(val, 64)
		case "crs":
			meta.CRS = val
		}
		if err != nil {
			return nil, fmt.Errorf("bad header value for %s: %q", key, val)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read raster header: %w", err)
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("missing or invalid samples/lines in %s", hdrPath(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raster: %w", err)
	}
	defer f.Close()

	g := New(rows, cols)
	g.Meta = meta
	if err := binary.Read(bufio.NewReader(f), binary.LittleEndian, g.Data); err != nil {
		return nil, fmt.Errorf("read %d cells from %s: %w", rows*cols, path, err)
	}
	return g, nil
}

func (e *ENVIGrid) Write(path string, g *Grid, ref Meta) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create raster: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, g.Data); err != nil {
		return fmt.Errorf("write cells: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write cells: %w", err)
	}

	var hdr strings.Builder
	hdr.WriteString("ENVI\n")
	fmt.Fprintf(&hdr, "samples = %d\n", g.Cols)
	fmt.Fprintf(&hdr, "lines = %d\n", g.Rows)
	hdr.WriteString("bands = 1\n")
	hdr.WriteString("data type = 5\n")
	hdr.WriteString("byte order = 0\n")
	fmt.Fprintf(&hdr, "xllcorner = %s\n", formatFloat(ref.XLLCorner))
	fmt.Fprintf(&hdr, "yllcorner = %s\n", formatFloat(ref.YLLCorner))
	fmt.Fprintf(&hdr, "cellsize = %s\n", formatFloat(ref.CellSize))
	if ref.CRS != "" {
		fmt.Fprintf(&hdr, "crs = %s\n", ref.CRS)
	}
	if err := os.WriteFile(hdrPath(path), []byte(hdr.String()), 0644); err != nil {
		return fmt.Errorf("write raster header: %w", err)
	}
	return nil
}

func hdrPath(path string) string {
	return path + ".hdr"
}
