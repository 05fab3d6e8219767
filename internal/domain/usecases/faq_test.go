package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

func TestFindBestMatch_SymptomQuestion(t *testing.T) {
	ref := newTestReference(t)

	row, ok := FindBestMatch("What are the symptoms of xyz?", ref.FAQ)

	require.True(t, ok)
	assert.Equal(t, fluAnswer, row.Answer)
}

func TestFindBestMatch_ThresholdIsExclusive(t *testing.T) {
	faq := entities.NewFaqTable([]entities.FaqRow{
		{Question: "aa bb zz", Answer: "two of five"},
	})

	// 2 of 5 words overlap: exactly 0.4 is rejected.
	_, ok := FindBestMatch("aa bb cc dd ee", faq)
	assert.False(t, ok)

	// 3 of 7 words overlap: 0.43 is accepted.
	faq = entities.NewFaqTable([]entities.FaqRow{
		{Question: "aa bb cc", Answer: "three of seven"},
	})
	row, ok := FindBestMatch("aa bb cc dd ee ff gg", faq)
	require.True(t, ok)
	assert.Equal(t, "three of seven", row.Answer)
}

func TestFindBestMatch_EarlyExitKeepsFirstStrongRow(t *testing.T) {
	faq := entities.NewFaqTable([]entities.FaqRow{
		{Question: "what is aa bb", Answer: "first"},
		{Question: "what is aa bb sign", Answer: "second"},
	})

	// The first row scores 1.0 and ends the scan, though the second would score 1.3.
	row, ok := FindBestMatch("what is aa bb", faq)

	require.True(t, ok)
	assert.Equal(t, "first", row.Answer)
}

func TestFindBestMatch_DiseaseTermBoost(t *testing.T) {
	faq := entities.NewFaqTable([]entities.FaqRow{
		{Question: "aa bb cc dd", Answer: "plain"},
		{Question: "aa asthma", Answer: "asthma"},
	})

	// "plain" scores 1/4; "asthma" scores 2/4 plus 0.2 for the term.
	row, ok := FindBestMatch("aa asthma xx yy", faq)

	require.True(t, ok)
	assert.Equal(t, "asthma", row.Answer)
}

func TestFindBestMatch_EmptyInputs(t *testing.T) {
	ref := newTestReference(t)

	_, ok := FindBestMatch("", ref.FAQ)
	assert.False(t, ok)

	_, ok = FindBestMatch("what is diabetes?", nil)
	assert.False(t, ok)

	_, ok = FindBestMatch("what is diabetes?", entities.NewFaqTable(nil))
	assert.False(t, ok)
}

func TestFindBestMatch_SkipsEmptyQuestions(t *testing.T) {
	faq := entities.NewFaqTable([]entities.FaqRow{
		{Question: "", Answer: "blank"},
		{Question: "what is anemia", Answer: "anemia"},
	})

	row, ok := FindBestMatch("what is anemia", faq)

	require.True(t, ok)
	assert.Equal(t, "anemia", row.Answer)
}
