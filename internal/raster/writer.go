package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteStrategy is one way of persisting a grid to a path.
type WriteStrategy interface {
	Name() string
	Write(path string, g *Grid, ref Meta) error
}

// StrategyFailure records why one strategy in a chain failed.
type StrategyFailure struct {
	Strategy string
	Err      error
}

// WriteChainError reports that every strategy in a chain failed, carrying
// each strategy's failure reason.
type WriteChainError struct {
	Path     string
	Failures []StrategyFailure
}

func (e *WriteChainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %d write strategies failed for %s:", len(e.Failures), e.Path)
	for _, f := range e.Failures {
		fmt.Fprintf(&b, " [%s: %v]", f.Strategy, f.Err)
	}
	return b.String()
}

// WriteChain tries an ordered list of strategies and stops at the first
// success. On total failure it returns a *WriteChainError aggregating
// every strategy's reason, rather than reporting only the last one.
type WriteChain struct {
	strategies []WriteStrategy
}

// NewWriteChain builds a chain over the given strategies, tried in order.
func NewWriteChain(strategies ...WriteStrategy) *WriteChain {
	return &WriteChain{strategies: strategies}
}

// DefaultWriteChain writes with the provider directly, then falls back to
// staging the output in a temporary file and renaming it into place.
func DefaultWriteChain(p Provider) *WriteChain {
	return NewWriteChain(DirectWrite{Provider: p}, TempRenameWrite{Provider: p})
}

func (c *WriteChain) Write(path string, g *Grid, ref Meta) error {
	if len(c.strategies) == 0 {
		return fmt.Errorf("write chain has no strategies")
	}
	var failures []StrategyFailure
	for _, s := range c.strategies {
		err := s.Write(path, g, ref)
		if err == nil {
			return nil
		}
		failures = append(failures, StrategyFailure{Strategy: s.Name(), Err: err})
	}
	return &WriteChainError{Path: path, Failures: failures}
}

// DirectWrite persists straight to the target path.
type DirectWrite struct {
	Provider Writer
}

func (s DirectWrite) Name() string { return "direct" }

func (s DirectWrite) Write(path string, g *Grid, ref Meta) error {
	return s.Provider.Write(path, g, ref)
}

// TempRenameWrite stages the output in a temporary file in the target
// directory and renames it into place, so a failed write never leaves a
// truncated raster at the target path.
type TempRenameWrite struct {
	Provider Writer
}

func (s TempRenameWrite) Name() string { return "temp-rename" }

func (s TempRenameWrite) Write(path string, g *Grid, ref Meta) error {
	dir := filepath.Dir(path)
	// Keep the original basename (extension included) in the temp name so
	// provider sidecar files land next to it with predictable names.
	tmp, err := os.CreateTemp(dir, ".tmp-*-"+filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := s.Provider.Write(tmpPath, g, ref); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	// Move any sidecar files the provider produced.
	for _, sc := range []struct{ from, to string }{
		{prjPath(tmpPath), prjPath(path)},
		{hdrPath(tmpPath), hdrPath(path)},
	} {
		if _, err := os.Stat(sc.from); err == nil {
			if err := os.Rename(sc.from, sc.to); err != nil {
				return fmt.Errorf("rename sidecar into place: %w", err)
			}
		}
	}
	return nil
}
