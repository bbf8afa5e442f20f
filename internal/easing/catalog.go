package easing

import (
	"embed"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed curves.yaml
var defaultCurvesFS embed.FS

// Catalog is the YAML form of the named cubic-bezier curves.
type Catalog struct {
	Curves map[string][]float64 `yaml:"curves"`
}

// loadEmbedded reads the compiled-in catalog.
func loadEmbedded() (*Catalog, error) {
	data, err := defaultCurvesFS.ReadFile("curves.yaml")
	if err != nil {
		return nil, err
	}
	return parseCatalog(data)
}

// parseCatalog parses YAML data and validates every curve definition.
func parseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that each curve has four finite control values and that
// both x coordinates stay inside [0,1].
func (c *Catalog) Validate() error {
	if len(c.Curves) == 0 {
		return fmt.Errorf("catalog must define at least one curve")
	}
	for _, name := range c.names() {
		points := c.Curves[name]
		if name == "" {
			return fmt.Errorf("curve with empty name")
		}
		if len(points) != 4 {
			return fmt.Errorf("curve %q: expected 4 control values, got %d", name, len(points))
		}
		for _, v := range points {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("curve %q: control values must be finite", name)
			}
		}
		if points[0] < 0 || points[0] > 1 || points[2] < 0 || points[2] > 1 {
			return fmt.Errorf("curve %q: x control values must be within [0,1]", name)
		}
	}
	return nil
}

// funcs builds curve functions for every entry.
func (c *Catalog) funcs() map[string]Func {
	out := make(map[string]Func, len(c.Curves))
	for name, p := range c.Curves {
		out[name] = CubicBezier(p[0], p[1], p[2], p[3])
	}
	return out
}

func (c *Catalog) names() []string {
	names := make([]string, 0, len(c.Curves))
	for name := range c.Curves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
