// Package predictor provides risk model adapters.
// Clean Architecture: Adapters implementing ports.RiskPredictor.
// The domain sees a probability; scalers and coefficients stay here.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/ports"
)

// ModelFeature is one standardized input of a logistic model.
type ModelFeature struct {
	Name        string   `yaml:"name"`
	Mean        float64  `yaml:"mean"`
	Scale       float64  `yaml:"scale"`
	Coefficient float64  `yaml:"coefficient"`
	Default     *float64 `yaml:"default,omitempty"`
}

// LabelBand is one labelled range of a LabelRule. A band with no bound matches anything.
type LabelBand struct {
	Label  string   `yaml:"label"`
	Below  *float64 `yaml:"below,omitempty"`   // value < Below
	AtMost *float64 `yaml:"at_most,omitempty"` // value <= AtMost
}

func (b LabelBand) admits(v float64) bool {
	switch {
	case b.Below != nil:
		return v < *b.Below
	case b.AtMost != nil:
		return v <= *b.AtMost
	default:
		return true
	}
}

// LabelRule names a prediction from one input, e.g. an anemia type from MCV.
// Bands are checked in order and the first that admits the value wins.
type LabelRule struct {
	Feature string      `yaml:"feature"`
	Bands   []LabelBand `yaml:"bands"`
}

// LinearModel is a standard-scaled logistic regression exported to YAML.
type LinearModel struct {
	Condition     string         `yaml:"condition"`
	Intercept     float64        `yaml:"intercept"`
	ModelFeatures []ModelFeature `yaml:"features"`
	Label         *LabelRule     `yaml:"label,omitempty"`
}

// LoadLinearModel reads and validates a model file.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}

	var m LinearModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

func (m *LinearModel) validate() error {
	if len(m.ModelFeatures) == 0 {
		return errors.New("no features")
	}
	seen := map[string]bool{}
	for _, f := range m.ModelFeatures {
		if f.Name == "" {
			return errors.New("feature without a name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate feature %q", f.Name)
		}
		seen[f.Name] = true
		if f.Scale == 0 {
			return fmt.Errorf("feature %q has zero scale", f.Name)
		}
	}
	if m.Label != nil {
		if m.Label.Feature == "" || len(m.Label.Bands) == 0 {
			return errors.New("label needs a feature and at least one band")
		}
		for _, b := range m.Label.Bands {
			if b.Label == "" {
				return errors.New("label band without a label")
			}
			if b.Below != nil && b.AtMost != nil {
				return fmt.Errorf("label band %q sets both below and at_most", b.Label)
			}
		}
	}
	return nil
}

// Features implements ports.FeatureLister.
func (m *LinearModel) Features() []string {
	names := make([]string, len(m.ModelFeatures))
	for i, f := range m.ModelFeatures {
		names[i] = f.Name
	}
	return names
}

// Predict implements ports.RiskPredictor. A feature missing from the input uses the
// model default, or fails when there is none.
func (m *LinearModel) Predict(ctx context.Context, features map[string]float64) (entities.Prediction, error) {
	z := m.Intercept
	for _, f := range m.ModelFeatures {
		x, ok := m.value(f.Name, features)
		if !ok {
			return entities.Prediction{}, fmt.Errorf("missing feature %q", f.Name)
		}
		z += f.Coefficient * (x - f.Mean) / f.Scale
	}
	return entities.Prediction{
		Probability: 1 / (1 + math.Exp(-z)),
		Label:       m.label(features),
	}, nil
}

// label is empty when the model has no rule or the rule's input is unavailable.
func (m *LinearModel) label(features map[string]float64) string {
	if m.Label == nil {
		return ""
	}
	v, ok := m.value(m.Label.Feature, features)
	if !ok {
		return ""
	}
	for _, b := range m.Label.Bands {
		if b.admits(v) {
			return b.Label
		}
	}
	return ""
}

func (m *LinearModel) value(name string, features map[string]float64) (float64, bool) {
	if x, ok := features[name]; ok {
		return x, true
	}
	for _, f := range m.ModelFeatures {
		if f.Name == name && f.Default != nil {
			return *f.Default, true
		}
	}
	return 0, false
}

// LoadModelDir loads <condition>.yaml for every known condition found in dir.
// Conditions without a file are left out of the map.
func LoadModelDir(dir string) (map[entities.Condition]ports.RiskPredictor, error) {
	out := map[entities.Condition]ports.RiskPredictor{}
	for _, c := range entities.Conditions {
		path := filepath.Join(dir, string(c)+".yaml")
		m, err := LoadLinearModel(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[c] = m
	}
	return out, nil
}
