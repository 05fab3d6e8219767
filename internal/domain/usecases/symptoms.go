package usecases

import (
	"strings"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

// SymptomMatch is the nearest disease row for a symptom list.
type SymptomMatch struct {
	Disease string
	Score   float64
	Vector  []float64
}

// MatchSymptoms finds the disease whose symptom vector is most similar to the given list.
// Unknown symptoms are dropped. It reports false when the matrix is absent or when no
// symptom is recognized, instead of returning the top row of an all-zero ranking.
func MatchSymptoms(symptoms []string, matrix *entities.SymptomMatrix) (SymptomMatch, bool) {
	if matrix == nil || matrix.Rows() == 0 {
		return SymptomMatch{}, false
	}

	query := make([]float64, len(matrix.Columns()))
	matched := 0
	for _, s := range symptoms {
		if j, ok := matrix.ColumnIndex(entities.SymptomKey(s)); ok {
			if query[j] == 0 {
				matched++
			}
			query[j] = 1
		}
	}
	if matched == 0 {
		return SymptomMatch{}, false
	}

	scores := matrix.Similarities(query)

	// Strict comparison keeps the first row on ties.
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	return SymptomMatch{
		Disease: matrix.Disease(best),
		Score:   scores[best],
		Vector:  matrix.Row(best),
	}, true
}

// SplitSymptoms splits a comma-separated list and trims each entry.
func SplitSymptoms(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
