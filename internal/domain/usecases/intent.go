// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
// They contain NO framework code, NO external dependencies - just pure business logic.
package usecases

import (
	"regexp"
	"strings"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

// questionPatterns mark free text as a question wherever they occur.
var questionPatterns = compilePatterns([]string{
	`\bwhat (are|is)`,
	`\bhow (to|do|can)`,
	`\bwhy (is|are)`,
	`\bwhen (should|do)`,
	`\bwhere (can|do)`,
	`\bwho (should|can)`,
	`\bcan you`,
	`\bcould you`,
	`\bwould you`,
	`\bexplain`,
	`\btell me about`,
})

const (
	maxSymptomListWords = 5
	maxDiseaseNameWords = 3
)

// Classify maps raw user text to an intent.
// The rules are evaluated top to bottom; later rules are fallbacks for earlier ones.
func Classify(text string) entities.Intent {
	normalized := entities.NormalizeName(text)
	if normalized == "" {
		return entities.IntentQuestion
	}

	if strings.Contains(normalized, "?") || matchesAny(normalized, questionPatterns) {
		return entities.IntentQuestion
	}

	words := len(strings.Fields(normalized))
	if strings.Contains(normalized, ",") && words <= maxSymptomListWords {
		return entities.IntentSymptoms
	}
	if words <= maxDiseaseNameWords {
		return entities.IntentDisease
	}
	return entities.IntentQuestion
}

// matchesAny checks if any pattern matches.
func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// compilePatterns compiles a slice of regex patterns.
func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
