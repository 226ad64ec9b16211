// Package catalog loads the sample query catalog from YAML.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/kgq/assets"
	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/pkg/filesystem"
	"github.com/doeshing/kgq/internal/ports"
)

// EmbeddedSource names the built-in catalog in Source().
const EmbeddedSource = "embedded"

type document struct {
	Samples []domain.SampleQuery `yaml:"samples"`
}

// Catalog is an ordered, read-only list of sample queries.
type Catalog struct {
	samples []domain.SampleQuery
	source  string
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := parse(assets.DefaultSamplesYAML, EmbeddedSource)
	if err != nil {
		// embedded catalog is covered by tests
		panic(err)
	}
	return c
}

// Load reads the catalog at path. An empty path selects the embedded catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	resolved := filesystem.ExpandPath(path)
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read sample catalog: %w", err)
	}
	return parse(data, resolved)
}

func parse(data []byte, source string) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sample catalog %s: %w", source, err)
	}
	samples := make([]domain.SampleQuery, 0, len(doc.Samples))
	for i, s := range doc.Samples {
		s.Query = strings.TrimSpace(s.Query)
		if s.Query == "" {
			continue
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("sample %d", i+1)
		}
		samples = append(samples, s)
	}
	return &Catalog{samples: samples, source: source}, nil
}

// Samples implements ports.SampleCatalog.
func (c *Catalog) Samples() []domain.SampleQuery {
	out := make([]domain.SampleQuery, len(c.samples))
	copy(out, c.samples)
	return out
}

// Source is the file path the catalog came from, or "embedded".
func (c *Catalog) Source() string { return c.source }

var _ ports.SampleCatalog = (*Catalog)(nil)
