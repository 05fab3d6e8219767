package usecases

import (
	"strings"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

const maxPrecautions = 4

// DiseaseKnowledge is everything the reference tables know about one disease.
type DiseaseKnowledge struct {
	Symptoms    []string
	Precautions []string
	Description *string
}

// Aggregate joins symptoms, precautions and a description for a disease name.
// Missing tables or rows leave the corresponding field empty; it never fails.
func Aggregate(diseaseName string, ref *entities.ReferenceData) DiseaseKnowledge {
	if ref == nil {
		ref = &entities.ReferenceData{}
	}
	name := entities.NormalizeName(diseaseName)
	return DiseaseKnowledge{
		Symptoms:    DiseaseSymptoms(name, ref.Matrix, ref.Catalogue),
		Precautions: DiseasePrecautions(name, ref.Precautions),
		Description: DiseaseDescription(name, ref.FAQ),
	}
}

// DiseaseSymptoms prefers the symptom matrix and falls back to the catalogue slots.
func DiseaseSymptoms(name string, matrix *entities.SymptomMatrix, catalogue *entities.SymptomCatalogue) []string {
	if name == "" {
		return []string{}
	}

	if i, ok := matrix.RowByName(name); ok {
		if symptoms := matrix.PresentSymptoms(i); len(symptoms) > 0 {
			return symptoms
		}
	}

	row, ok := catalogue.Lookup(name)
	if !ok {
		return []string{}
	}
	return filledSlots(row.Symptoms, len(row.Symptoms))
}

// DiseasePrecautions reads up to four precaution slots.
func DiseasePrecautions(name string, precautions *entities.PrecautionTable) []string {
	if name == "" {
		return []string{}
	}
	row, ok := precautions.Lookup(name)
	if !ok {
		return []string{}
	}
	return filledSlots(row.Precautions, maxPrecautions)
}

// DiseaseDescription returns the answer of the first FAQ row whose question mentions the disease.
func DiseaseDescription(name string, faq *entities.FaqTable) *string {
	if name == "" {
		return nil
	}
	for _, row := range faq.Rows() {
		if strings.Contains(row.NormalizedQuestion, name) {
			answer := row.Answer
			return &answer
		}
	}
	return nil
}

// filledSlots keeps the first limit slots that hold a real value.
func filledSlots(slots []string, limit int) []string {
	out := []string{}
	for i, s := range slots {
		if i >= limit {
			break
		}
		s = strings.TrimSpace(s)
		if isPlaceholder(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isPlaceholder(s string) bool {
	return s == "" || strings.EqualFold(s, "nan")
}
