package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/niche.report/internal/niche"
	"github.com/banshee-data/niche.report/internal/raster"
	"github.com/banshee-data/niche.report/internal/store"
)

func testServer(t *testing.T, s *store.RunStore) *WebServer {
	t.Helper()
	agreement := raster.New(2, 2)
	agreement.Data = []float64{-1, 0, 1, math.NaN()}
	result := &ComparisonResult{
		GridAPath: "a.asc",
		GridBPath: "b.asc",
		Overlap:   0.87,
		Tolerance: 0.05,
		Summary:   niche.SummarizeAgreement(agreement),
	}
	return NewWebServer(":0", result, agreement, s)
}

func TestHandleResult(t *testing.T) {
	ws := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/result", nil)
	rec := httptest.NewRecorder()
	ws.ServeMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/result status = %d", rec.Code)
	}
	var result ComparisonResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.Overlap != 0.87 {
		t.Errorf("overlap = %v, want 0.87", result.Overlap)
	}
	if result.Summary.Missing != 1 {
		t.Errorf("summary missing = %d, want 1", result.Summary.Missing)
	}
}

func TestHandleResultMethodNotAllowed(t *testing.T) {
	ws := testServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/result", nil)
	rec := httptest.NewRecorder()
	ws.ServeMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/result status = %d, want 405", rec.Code)
	}
}

func TestHandleRunsWithoutStore(t *testing.T) {
	ws := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	ws.ServeMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/runs status = %d, want 404", rec.Code)
	}
}

func TestHandleRuns(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()
	if err := s.Insert(&store.Run{GridAPath: "a.asc", GridBPath: "b.asc", Overlap: 0.5}); err != nil {
		t.Fatalf("insert run: %v", err)
	}

	ws := testServer(t, s)
	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	ws.ServeMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/runs status = %d", rec.Code)
	}
	var runs []*store.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(runs) != 1 || runs[0].Overlap != 0.5 {
		t.Errorf("runs = %+v, want one run with overlap 0.5", runs)
	}
}

func TestHandleDashboard(t *testing.T) {
	ws := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ws.ServeMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "0.8700") {
		t.Error("dashboard missing overlap score")
	}
}

func TestHandleAgreementChart(t *testing.T) {
	ws := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/charts/agreement", nil)
	rec := httptest.NewRecorder()
	ws.ServeMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /charts/agreement status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "heatmap") {
		t.Error("chart page missing heatmap series")
	}
}
