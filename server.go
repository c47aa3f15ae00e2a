package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/banshee-data/niche.report/internal/raster"
	"github.com/banshee-data/niche.report/internal/report"
	"github.com/banshee-data/niche.report/internal/store"
)

// WebServer serves the comparison result: an interactive agreement-map
// chart, the result as JSON, and the recorded run history when a store is
// attached.
type WebServer struct {
	listen    string
	result    *ComparisonResult
	agreement *raster.Grid
	store     *store.RunStore
}

func NewWebServer(listen string, result *ComparisonResult, agreement *raster.Grid, store *store.RunStore) *WebServer {
	return &WebServer{
		listen:    listen,
		result:    result,
		agreement: agreement,
		store:     store,
	}
}

func (ws *WebServer) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", ws.handleDashboard)
	mux.HandleFunc("/charts/agreement", ws.handleAgreementChart)
	mux.HandleFunc("/api/result", ws.handleResult)
	mux.HandleFunc("/api/runs", ws.handleRuns)
	return mux
}

// Run serves until SIGINT/SIGTERM.
func (ws *WebServer) Run() error {
	srv := &http.Server{Addr: ws.listen, Handler: ws.ServeMux()}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Dashboard listening on %s", ws.listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>Niche Comparison</title></head>
<body style="font-family: sans-serif; background: #111; color: #eee;">
<h1>Niche Comparison</h1>
<p>Warren's I: <strong>%.4f</strong> (tolerance %g)</p>
<p><a style="color:#6cf" href="/api/result">result JSON</a> |
<a style="color:#6cf" href="/api/runs">run history</a></p>
<iframe src="/charts/agreement" style="width: 950px; height: 750px; border: 0;"></iframe>
</body></html>`, ws.result.Overlap, ws.result.Tolerance)
}

func (ws *WebServer) handleAgreementChart(w http.ResponseWriter, r *http.Request) {
	subtitle := fmt.Sprintf("%s vs %s", ws.result.GridAPath, ws.result.GridBPath)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderAgreementHTML(ws.agreement, "Niche Agreement Map", subtitle, w); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
	}
}

func (ws *WebServer) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ws.writeJSON(w, ws.result)
}

func (ws *WebServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ws.store == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no run store configured")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	runs, err := ws.store.List(limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	ws.writeJSON(w, runs)
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
