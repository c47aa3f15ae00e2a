// nichereport compares two co-registered raster surfaces: it computes
// Warren's I niche-overlap statistic and a tolerance-banded agreement map,
// prints a per-bucket breakdown, and can write the agreement raster,
// render PNG/HTML reports, record the run, or serve an interactive
// dashboard.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/niche.report/internal/config"
	"github.com/banshee-data/niche.report/internal/niche"
	"github.com/banshee-data/niche.report/internal/raster"
	"github.com/banshee-data/niche.report/internal/report"
	"github.com/banshee-data/niche.report/internal/store"
)

var (
	gridAPath  = flag.String("a", "", "Path to the first raster (e.g. current suitability)")
	gridBPath  = flag.String("b", "", "Path to the second raster (e.g. projected suitability)")
	configPath = flag.String("config", "", "Optional YAML config file (also via NICHE_CONFIG)")
	tolerance  = flag.Float64("tolerance", niche.DefaultTolerance, "Agreement band half-width")
	format     = flag.String("format", "", "Force a raster provider by name (ascii, envi)")
	outPath    = flag.String("out", "", "Write the agreement map as a raster to this path")
	pngOut     = flag.Bool("png", false, "Render the agreement map as a PNG in the output directory")
	htmlOut    = flag.Bool("html", false, "Render the agreement map as an HTML report in the output directory")
	outputDir  = flag.String("output-dir", "", "Directory for PNG/HTML reports")
	jsonOut    = flag.String("json", "", "Export the comparison result as JSON to this path")
	dbPath     = flag.String("db", "", "Record the run in this sqlite database")
	serve      = flag.Bool("serve", false, "Serve the interactive dashboard after comparing")
	listen     = flag.String("listen", "", "Dashboard listen address")
)

func main() {
	flag.Parse()

	if *gridAPath == "" || *gridBPath == "" {
		log.Fatal("both -a and -b rasters are required")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	result, agreement, refMeta, err := runComparison(cfg)
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}

	printResults(result)

	if *outPath != "" {
		if err := writeAgreement(cfg, agreement, refMeta); err != nil {
			log.Fatalf("Failed to write agreement raster: %v", err)
		}
		log.Printf("Agreement raster written to: %s", *outPath)
	}

	if *pngOut || *htmlOut {
		if err := renderReports(cfg, result, agreement); err != nil {
			log.Fatalf("Failed to render reports: %v", err)
		}
	}

	if *jsonOut != "" {
		if err := exportJSON(result, *jsonOut); err != nil {
			log.Fatalf("Failed to export JSON: %v", err)
		}
		log.Printf("Result exported to: %s", *jsonOut)
	}

	var runStore *store.RunStore
	if cfg.DBPath != "" {
		runStore, err = store.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open run store: %v", err)
		}
		defer runStore.Close()
		if err := recordRun(runStore, result); err != nil {
			log.Fatalf("Failed to record run: %v", err)
		}
		log.Printf("Run recorded: %s", result.RunID)
	}

	if *serve {
		ws := NewWebServer(cfg.Listen, result, agreement, runStore)
		if err := ws.Run(); err != nil {
			log.Fatalf("Dashboard server failed: %v", err)
		}
	}
}

// loadConfig layers defaults, the optional config file, env vars, and
// finally any flags set on the command line.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tolerance":
			cfg.Tolerance = *tolerance
		case "format":
			cfg.Format = *format
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "db":
			cfg.DBPath = *dbPath
		case "listen":
			cfg.Listen = *listen
		}
	})
	return cfg, nil
}

func runComparison(cfg *config.Config) (*ComparisonResult, *raster.Grid, raster.Meta, error) {
	registry := raster.DefaultRegistry()

	readGrid := func(path string) (*raster.Grid, error) {
		var p raster.Provider
		var err error
		if cfg.Format != "" {
			p, err = registry.ByName(cfg.Format)
		} else {
			p, err = registry.ForPath(path)
		}
		if err != nil {
			return nil, err
		}
		return p.Read(path)
	}

	a, err := readGrid(*gridAPath)
	if err != nil {
		return nil, nil, raster.Meta{}, fmt.Errorf("read %s: %w", *gridAPath, err)
	}
	b, err := readGrid(*gridBPath)
	if err != nil {
		return nil, nil, raster.Meta{}, fmt.Errorf("read %s: %w", *gridBPath, err)
	}

	start := time.Now()

	overlap, err := niche.WarrensI(a, b)
	if err != nil {
		return nil, nil, raster.Meta{}, err
	}
	agreement, err := niche.AgreementMap(a, b, cfg.Tolerance)
	if err != nil {
		return nil, nil, raster.Meta{}, err
	}
	mean, stddev, err := niche.DiffStats(a, b)
	if err != nil {
		return nil, nil, raster.Meta{}, err
	}

	result := &ComparisonResult{
		GridAPath:        *gridAPath,
		GridBPath:        *gridBPath,
		Overlap:          overlap,
		Tolerance:        cfg.Tolerance,
		Summary:          niche.SummarizeAgreement(agreement),
		MeanDiff:         mean,
		StdDevDiff:       stddev,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	return result, agreement, a.Meta, nil
}

// writeAgreement persists the agreement grid with the reference grid's
// spatial metadata, falling back across write strategies.
func writeAgreement(cfg *config.Config, agreement *raster.Grid, ref raster.Meta) error {
	registry := raster.DefaultRegistry()
	var p raster.Provider
	var err error
	if cfg.Format != "" {
		p, err = registry.ByName(cfg.Format)
	} else {
		p, err = registry.ForPath(*outPath)
	}
	if err != nil {
		return err
	}
	return raster.DefaultWriteChain(p).Write(*outPath, agreement, ref)
}

func renderReports(cfg *config.Config, result *ComparisonResult, agreement *raster.Grid) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	subtitle := fmt.Sprintf("%s vs %s (I=%.4f, tolerance=%g)",
		filepath.Base(result.GridAPath), filepath.Base(result.GridBPath),
		result.Overlap, result.Tolerance)

	if *pngOut {
		path := filepath.Join(cfg.OutputDir, "agreement.png")
		if err := report.SaveAgreementPNG(agreement, "Niche Agreement Map", path); err != nil {
			return fmt.Errorf("save png: %w", err)
		}
		log.Printf("PNG report written to: %s", path)
	}
	if *htmlOut {
		path := filepath.Join(cfg.OutputDir, "agreement.html")
		if err := report.SaveAgreementHTML(agreement, "Niche Agreement Map", subtitle, path); err != nil {
			return fmt.Errorf("save html: %w", err)
		}
		log.Printf("HTML report written to: %s", path)
	}
	return nil
}

func recordRun(s *store.RunStore, result *ComparisonResult) error {
	run := &store.Run{
		GridAPath:    result.GridAPath,
		GridBPath:    result.GridBPath,
		Overlap:      result.Overlap,
		Tolerance:    result.Tolerance,
		LowerCount:   result.Summary.Lower,
		EqualCount:   result.Summary.Equal,
		HigherCount:  result.Summary.Higher,
		MissingCount: result.Summary.Missing,
		DurationMs:   result.ProcessingTimeMs,
	}
	if err := s.Insert(run); err != nil {
		return err
	}
	result.RunID = run.RunID
	return nil
}

func printResults(result *ComparisonResult) {
	s := result.Summary
	fmt.Printf("Warren's I: %.4f\n", result.Overlap)
	fmt.Printf("Agreement (tolerance %g, %d valid of %d cells):\n",
		result.Tolerance, s.Valid, s.Total)
	fmt.Printf("  lower  (-1): %8d (%5.1f%%)\n", s.Lower, s.LowerPct)
	fmt.Printf("  equal   (0): %8d (%5.1f%%)\n", s.Equal, s.EqualPct)
	fmt.Printf("  higher (+1): %8d (%5.1f%%)\n", s.Higher, s.HigherPct)
	fmt.Printf("  missing    : %8d\n", s.Missing)
	fmt.Printf("Mean diff: %+.4f (stddev %.4f)\n", result.MeanDiff, result.StdDevDiff)
}

func exportJSON(result *ComparisonResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
