// Package directory serves the static hospital and doctor listings.
// Clean Architecture: Adapter implementing ports.ProviderDirectory.
package directory

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

//go:embed providers.yaml
var embeddedProviders []byte

// Directory is parsed once and never modified.
type Directory struct {
	hospitals []entities.Hospital
	doctors   []entities.Doctor
}

type document struct {
	Hospitals []entities.Hospital `yaml:"hospitals"`
	Doctors   []entities.Doctor   `yaml:"doctors"`
}

// Load parses path, or the embedded listing when path is empty.
func Load(path string) (*Directory, error) {
	data := embeddedProviders
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("reading providers file: %w", err)
		}
	}
	return Parse(data)
}

// Parse builds a Directory from YAML.
func Parse(data []byte) (*Directory, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing providers: %w", err)
	}
	return &Directory{hospitals: doc.Hospitals, doctors: doc.Doctors}, nil
}

// Hospitals returns hospitals whose speciality contains the filter, ignoring case.
// An empty filter returns every hospital.
func (d *Directory) Hospitals(speciality string) []entities.Hospital {
	out := []entities.Hospital{}
	for _, h := range d.hospitals {
		if containsFold(h.Speciality, speciality) {
			out = append(out, h)
		}
	}
	return out
}

// Doctors returns doctors whose specialization contains the filter, ignoring case.
func (d *Directory) Doctors(specialization string) []entities.Doctor {
	out := []entities.Doctor{}
	for _, doc := range d.doctors {
		if containsFold(doc.Specialization, specialization) {
			out = append(out, doc)
		}
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
