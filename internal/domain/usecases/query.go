// Package usecases - query.go resolves free-text chat input into a structured response.
package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

// directConfidence is reported when the disease name comes from the user rather than a match.
const directConfidence = 0.95

// diseasePhrase captures the text after "symptoms of", "treatment for" and similar keywords.
// The two-word forms are listed first so "symptoms of diabetes" captures "diabetes".
var diseasePhrase = regexp.MustCompile(
	`\b(?:(?:symptoms?|signs?|causes?|treatments?)\s+(?:of|for)|symptoms|signs|causes|treatment|of|for)\s+([^?]+)`)

var leadingArticle = regexp.MustCompile(`^(?:the|a|an)\s+`)

// Aggregator gathers what the reference tables know about a disease.
type Aggregator func(diseaseName string, ref *entities.ReferenceData) DiseaseKnowledge

// SnapshotSource hands out the reference data a query should read.
type SnapshotSource interface {
	Snapshot() *entities.ReferenceData
}

// QueryUseCase answers chat messages against the current reference snapshot.
// Single Responsibility: Only query/response logic.
type QueryUseCase struct {
	source    SnapshotSource
	aggregate Aggregator
	logger    *slog.Logger
}

// NewQueryUseCase creates a QueryUseCase with injected dependencies.
func NewQueryUseCase(source SnapshotSource, logger *slog.Logger) *QueryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryUseCase{source: source, aggregate: Aggregate, logger: logger}
}

// Query resolves one message. It never fails; problems are reported in the response warning.
func (uc *QueryUseCase) Query(ctx context.Context, text string) entities.QueryResponse {
	resp := resolve(uc.source.Snapshot(), text, uc.aggregate)
	if resp.Warning != "" {
		uc.logger.WarnContext(ctx, "query resolved with warning", "intent", resp.Intent, "warning", resp.Warning)
	}
	uc.logger.DebugContext(ctx, "query resolved",
		"intent", resp.Intent,
		"confidence", resp.Confidence,
		"symptoms", len(resp.Symptoms),
		"faq", resp.FAQAnswer != nil,
	)
	return resp
}

// Resolve classifies text and fills a response from the reference tables.
// A panic during resolution is recovered; the partially filled response is returned
// with Warning set.
func Resolve(ref *entities.ReferenceData, text string) entities.QueryResponse {
	return resolve(ref, text, Aggregate)
}

func resolve(ref *entities.ReferenceData, text string, aggregate Aggregator) (resp entities.QueryResponse) {
	if ref == nil {
		ref = &entities.ReferenceData{}
	}

	// 1. Classify
	resp = entities.NewQueryResponse(Classify(text))

	defer func() {
		if r := recover(); r != nil {
			resp.Warning = fmt.Sprintf("error processing user input: %v", r)
		}
	}()

	// 2. Resolve by intent
	switch resp.Intent {
	case entities.IntentQuestion:
		resolveQuestion(&resp, ref, text, aggregate)
	case entities.IntentSymptoms:
		resolveSymptoms(&resp, ref, text, aggregate)
	case entities.IntentDisease:
		resolveDisease(&resp, ref, strings.TrimSpace(text), aggregate)
	}

	// 3. Assembled
	return resp
}

func resolveQuestion(resp *entities.QueryResponse, ref *entities.ReferenceData, text string, aggregate Aggregator) {
	lower := strings.ToLower(text)

	if disease := ExtractDiseasePhrase(text); disease != "" &&
		(strings.Contains(lower, "symptom") || strings.Contains(lower, "sign")) {
		knowledge := aggregate(disease, ref)
		if len(knowledge.Symptoms) > 0 {
			resp.Intent = entities.IntentDisease
			resp.ResolvedDisease = &disease
			resp.Confidence = directConfidence
			fill(resp, knowledge)
			return
		}
	}

	if row, ok := FindBestMatch(text, ref.FAQ); ok {
		resp.FAQQuestion = &row.Question
		resp.FAQAnswer = &row.Answer
	}
}

func resolveSymptoms(resp *entities.QueryResponse, ref *entities.ReferenceData, text string, aggregate Aggregator) {
	match, ok := MatchSymptoms(SplitSymptoms(text), ref.Matrix)
	if !ok {
		return
	}
	disease := match.Disease
	resp.ResolvedDisease = &disease
	resp.Confidence = match.Score
	fill(resp, aggregate(disease, ref))
}

func resolveDisease(resp *entities.QueryResponse, ref *entities.ReferenceData, disease string, aggregate Aggregator) {
	resp.ResolvedDisease = &disease
	resp.Confidence = directConfidence
	fill(resp, aggregate(disease, ref))
}

func fill(resp *entities.QueryResponse, k DiseaseKnowledge) {
	resp.Symptoms = k.Symptoms
	resp.Precautions = k.Precautions
	resp.Description = k.Description
}

// ExtractDiseasePhrase pulls the candidate disease name out of a question,
// e.g. "what are the symptoms of diabetes?" yields "diabetes".
func ExtractDiseasePhrase(question string) string {
	m := diseasePhrase.FindStringSubmatch(strings.ToLower(question))
	if m == nil {
		return ""
	}
	phrase := strings.TrimRight(strings.TrimSpace(m[1]), ".!")
	phrase = leadingArticle.ReplaceAllString(phrase, "")
	return strings.TrimSpace(phrase)
}
