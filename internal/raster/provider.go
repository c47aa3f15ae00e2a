package raster

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Reader loads a grid from a file. Implementations must translate the
// format's NoData convention into NaN before returning, so callers only
// ever see the one missing sentinel.
type Reader interface {
	Read(path string) (*Grid, error)
}

// Writer persists a grid, stamping the output with ref's spatial
// properties. Implementations must translate NaN back into the format's
// NoData marker.
type Writer interface {
	Write(path string, g *Grid, ref Meta) error
}

// Provider couples a reader and writer for one on-disk format.
type Provider interface {
	Reader
	Writer
	Name() string
	Extensions() []string
}

// Registry maps file extensions to providers. Providers are registered
// explicitly by the caller; there is no ambient detection of what is
// available.
type Registry struct {
	providers []Provider
}

// NewRegistry returns a registry holding the given providers, consulted in
// order.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// DefaultRegistry returns a registry with every built-in provider.
func DefaultRegistry() *Registry {
	return NewRegistry(&ASCIIGrid{}, &ENVIGrid{})
}

// ForPath returns the provider claiming the path's extension.
func (r *Registry) ForPath(path string) (Provider, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, p := range r.providers {
		for _, e := range p.Extensions() {
			if e == ext {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("no raster provider for extension %q (path %s)", ext, path)
}

// ByName returns the provider with the given name, for callers that force
// a format regardless of extension.
func (r *Registry) ByName(name string) (Provider, error) {
	for _, p := range r.providers {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no raster provider named %q", name)
}

// Names lists the registered provider names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}
