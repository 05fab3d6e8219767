// Package guidance serves prevention and medication advice per condition and risk band.
// Clean Architecture: Adapter implementing ports.GuidanceSource.
package guidance

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

//go:embed recommendations.yaml
var embeddedRecommendations []byte

// Table is parsed once and never modified.
type Table struct {
	entries map[entities.Condition]map[entities.RiskBand]entities.Recommendations
}

// Load parses path, or the embedded table when path is empty.
func Load(path string) (*Table, error) {
	data := embeddedRecommendations
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("reading guidance file: %w", err)
		}
	}
	return Parse(data)
}

// Parse builds a Table from YAML keyed by condition, then band.
func Parse(data []byte) (*Table, error) {
	var doc map[string]map[string]entities.Recommendations
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing guidance: %w", err)
	}

	t := &Table{entries: make(map[entities.Condition]map[entities.RiskBand]entities.Recommendations, len(doc))}
	for name, bands := range doc {
		c, ok := entities.ParseCondition(name)
		if !ok {
			return nil, fmt.Errorf("parsing guidance: unknown condition %q", name)
		}
		byBand := make(map[entities.RiskBand]entities.Recommendations, len(bands))
		for band, recs := range bands {
			b := entities.RiskBand(band)
			if b != entities.RiskLow && b != entities.RiskMedium && b != entities.RiskHigh {
				return nil, fmt.Errorf("parsing guidance: %s has unknown band %q", c, band)
			}
			recs.Band = b
			byBand[b] = recs
		}
		t.entries[c] = byBand
	}
	return t, nil
}

// Recommendations implements ports.GuidanceSource. The returned slices are copies.
func (t *Table) Recommendations(condition entities.Condition, band entities.RiskBand) (entities.Recommendations, bool) {
	recs, ok := t.entries[condition][band]
	if !ok {
		return entities.Recommendations{}, false
	}
	recs.Preventions = append([]string{}, recs.Preventions...)
	recs.Medications = append([]string{}, recs.Medications...)
	return recs, true
}
