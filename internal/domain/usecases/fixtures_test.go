package usecases

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

const (
	diabetesAnswer = "Diabetes is a disease in which blood glucose levels are too high."
	fluAnswer      = "Flu symptoms include fever, cough and body aches."
)

// newTestMatrix builds a small symptom matrix:
//
//	flu:          fever headache cough fatigue
//	common cold:  headache cough
//	diabetes:     fatigue increased_thirst frequent_urination
//	heart attack: fatigue chest_pain
func newTestMatrix(t *testing.T) *entities.SymptomMatrix {
	t.Helper()
	columns := []string{"fever", "headache", "cough", "fatigue", "chest pain", "increased_thirst", "frequent_urination"}
	m, err := entities.NewSymptomMatrix(
		[]string{"Flu", "Common Cold", "Diabetes", "Heart Attack"},
		columns,
		[]uint8{
			1, 1, 1, 1, 0, 0, 0,
			0, 1, 1, 0, 0, 0, 0,
			0, 0, 0, 1, 0, 1, 1,
			0, 0, 0, 1, 1, 0, 0,
		},
	)
	require.NoError(t, err)
	return m
}

func newTestReference(t *testing.T) *entities.ReferenceData {
	t.Helper()
	return &entities.ReferenceData{
		Precautions: entities.NewPrecautionTable([]entities.PrecautionRow{
			{Disease: "Diabetes ", Precautions: []string{"have balanced diet", "exercise", "nan", "consult doctor", "follow up"}},
			{Disease: "Flu", Precautions: []string{"rest", "drink fluids", "", ""}},
			{Disease: "Migraine", Precautions: []string{"meditation", "reduce stress"}},
		}),
		Catalogue: entities.NewSymptomCatalogue([]entities.SymptomCatalogueRow{
			{Disease: "Diabetes", Symptoms: []string{"fatigue", "weight_loss"}},
			{Disease: "Migraine", Symptoms: []string{" headache", "", "nausea", "nan"}},
		}),
		FAQ: entities.NewFaqTable([]entities.FaqRow{
			{Question: "What is Diabetes?", Answer: diabetesAnswer},
			{Question: "What are the symptoms of Flu?", Answer: fluAnswer},
			{Question: "How to prevent heart disease?", Answer: "Exercise and eat well."},
		}),
		Matrix: newTestMatrix(t),
	}
}

type fakeSnapshotSource struct {
	ref *entities.ReferenceData
}

func (f *fakeSnapshotSource) Snapshot() *entities.ReferenceData { return f.ref }
