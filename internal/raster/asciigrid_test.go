package raster

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestASCIIGridRead(t *testing.T) {
	content := `ncols 3
nrows 2
xllcorner 100.5
yllcorner 200.25
cellsize 30
NODATA_value -9999
0.1 0.2 0.3
-9999 0.5 0.6
`
	path := writeTempFile(t, "test.asc", content)

	g, err := (&ASCIIGrid{}).Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if g.Rows != 2 || g.Cols != 3 {
		t.Fatalf("Read() shape = %dx%d, want 2x3", g.Rows, g.Cols)
	}
	if g.Meta.XLLCorner != 100.5 || g.Meta.YLLCorner != 200.25 || g.Meta.CellSize != 30 {
		t.Errorf("Read() meta = %+v", g.Meta)
	}
	if g.At(0, 0) != 0.1 || g.At(0, 2) != 0.3 || g.At(1, 2) != 0.6 {
		t.Errorf("Read() cells wrong: %v", g.Data)
	}
	if !g.IsMissing(1, 0) {
		t.Errorf("Read() NODATA cell = %v, want NaN", g.At(1, 0))
	}
}

func TestASCIIGridReadCenterHeader(t *testing.T) {
	content := `NCOLS 2
NROWS 1
XLLCENTER 15
YLLCENTER 25
CELLSIZE 10
NODATA_VALUE -1
3 4
`
	path := writeTempFile(t, "center.asc", content)

	g, err := (&ASCIIGrid{}).Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	// Center coordinates are converted to the corner convention.
	if g.Meta.XLLCorner != 10 || g.Meta.YLLCorner != 20 {
		t.Errorf("Read() corner = (%v, %v), want (10, 20)", g.Meta.XLLCorner, g.Meta.YLLCorner)
	}
}

func TestASCIIGridReadNoNodataHeader(t *testing.T) {
	content := `ncols 2
nrows 1
xllcorner 0
yllcorner 0
cellsize 1
7 8
`
	path := writeTempFile(t, "nonodata.asc", content)

	g, err := (&ASCIIGrid{}).Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if g.At(0, 0) != 7 || g.At(0, 1) != 8 {
		t.Errorf("Read() cells = %v, want [7 8]", g.Data)
	}
}

func TestASCIIGridReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated data", "ncols 3\nnrows 3\nxllcorner 0\nyllcorner 0\ncellsize 1\nNODATA_value -9999\n1 2 3\n"},
		{"garbage cell", "ncols 2\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\nNODATA_value -9999\n1 banana\n"},
		{"missing dims", "xllcorner 0\nyllcorner 0\ncellsize 1\nNODATA_value -9999\nncols 0\nnrows 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "bad.asc", tt.content)
			if _, err := (&ASCIIGrid{}).Read(path); err == nil {
				t.Error("Read() expected error, got nil")
			}
		})
	}
}

func TestASCIIGridRoundTrip(t *testing.T) {
	g := New(2, 3)
	g.Data = []float64{0.1, 0.2, math.NaN(), 0.4, 0.5, 0.6}
	ref := Meta{XLLCorner: 10, YLLCorner: 20, CellSize: 5, CRS: `PROJCS["test"]`}

	path := filepath.Join(t.TempDir(), "out.asc")
	if err := (&ASCIIGrid{}).Write(path, g, ref); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	back, err := (&ASCIIGrid{}).Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !back.SameShape(g) {
		t.Fatalf("round trip shape = %dx%d, want 2x3", back.Rows, back.Cols)
	}
	for i := range g.Data {
		if math.IsNaN(g.Data[i]) {
			if !math.IsNaN(back.Data[i]) {
				t.Errorf("cell %d = %v, want NaN", i, back.Data[i])
			}
			continue
		}
		if back.Data[i] != g.Data[i] {
			t.Errorf("cell %d = %v, want %v", i, back.Data[i], g.Data[i])
		}
	}
	if back.Meta.XLLCorner != 10 || back.Meta.YLLCorner != 20 || back.Meta.CellSize != 5 {
		t.Errorf("round trip meta = %+v, want reference meta", back.Meta)
	}
	if back.Meta.CRS != ref.CRS {
		t.Errorf("round trip CRS = %q, want %q", back.Meta.CRS, ref.CRS)
	}
}

func TestASCIIGridWriteProjectionSidecar(t *testing.T) {
	g := New(1, 1)
	ref := Meta{CellSize: 1, CRS: "EPSG:4326"}
	path := filepath.Join(t.TempDir(), "out.asc")
	if err := (&ASCIIGrid{}).Write(path, g, ref); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	prj, err := os.ReadFile(filepath.Join(filepath.Dir(path), "out.prj"))
	if err != nil {
		t.Fatalf("expected .prj sidecar: %v", err)
	}
	if strings.TrimSpace(string(prj)) != "EPSG:4326" {
		t.Errorf(".prj content = %q, want EPSG:4326", prj)
	}
}
