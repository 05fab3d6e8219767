package usecases

import (
	"regexp"
	"strings"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

const (
	faqMatchThreshold = 0.4
	faqEarlyExitScore = 0.9
	faqSymptomBoost   = 0.3
	faqTermBoost      = 0.2
	minDiseaseTermLen = 5
)

// symptomQuestionPatterns detect symptom, cause and treatment style questions.
var symptomQuestionPatterns = compilePatterns([]string{
	`what (are|is) (the )?(symptoms|signs) of`,
	`what (are|is) (the )?(causes|reason) of`,
	`what (are|is) (the )?(treatment|remedy) for`,
	`how (to|do) (treat|handle|manage)`,
	`what (is|are)`,
})

var alphaToken = regexp.MustCompile(`[a-zA-Z]+`)

// FindBestMatch returns the FAQ row that best matches question, or false when no row
// scores above the match threshold.
//
// The scan stops at the first row whose running best exceeds 0.9, so a later row with a
// higher score can be passed over.
func FindBestMatch(question string, faq *entities.FaqTable) (entities.FaqRow, bool) {
	if faq.Len() == 0 {
		return entities.FaqRow{}, false
	}

	normalized := entities.NormalizeName(question)
	isSymptomQuestion := matchesAny(normalized, symptomQuestionPatterns)
	questionWords := wordSet(normalized)

	var diseaseTerms []string
	for _, term := range alphaToken.FindAllString(normalized, -1) {
		if len(term) >= minDiseaseTermLen {
			diseaseTerms = append(diseaseTerms, term)
		}
	}

	var (
		best      entities.FaqRow
		bestScore float64
	)
	for _, row := range faq.Rows() {
		candidate := row.NormalizedQuestion
		if candidate == "" {
			continue
		}

		score := 0.0
		if isSymptomQuestion && (strings.Contains(candidate, "symptom") || strings.Contains(candidate, "sign")) {
			score += faqSymptomBoost
		}

		if len(questionWords) > 0 {
			overlap := 0
			for w := range wordSet(candidate) {
				if _, ok := questionWords[w]; ok {
					overlap++
				}
			}
			score += float64(overlap) / float64(len(questionWords))
		}

		for _, term := range diseaseTerms {
			if strings.Contains(candidate, term) {
				score += faqTermBoost
			}
		}

		if score > bestScore {
			bestScore = score
			best = row
			if bestScore > faqEarlyExitScore {
				break
			}
		}
	}

	if bestScore > faqMatchThreshold {
		return best, true
	}
	return entities.FaqRow{}, false
}

func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(text)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
