package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/ports"
)

// AssessUseCase runs the pretrained risk models.
type AssessUseCase struct {
	predictors map[entities.Condition]ports.RiskPredictor
	guidance   ports.GuidanceSource
	logger     *slog.Logger
	now        func() time.Time
}

// NewAssessUseCase creates an AssessUseCase. Conditions without a predictor are reported
// as unknown. guidance may be nil, in which case assessments carry no recommendations.
func NewAssessUseCase(predictors map[entities.Condition]ports.RiskPredictor, guidance ports.GuidanceSource, logger *slog.Logger) *AssessUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssessUseCase{predictors: predictors, guidance: guidance, logger: logger, now: time.Now}
}

// Conditions lists the conditions that have a predictor, in display order.
func (uc *AssessUseCase) Conditions() []entities.Condition {
	var out []entities.Condition
	for _, c := range entities.Conditions {
		if _, ok := uc.predictors[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Assess scores one condition. features are passed to the model unchanged.
func (uc *AssessUseCase) Assess(ctx context.Context, condition string, features map[string]float64) (*entities.RiskAssessment, error) {
	c, ok := entities.ParseCondition(condition)
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownCondition, condition)
	}
	predictor, ok := uc.predictors[c]
	if !ok {
		return nil, fmt.Errorf("%w: no model for %s", entities.ErrUnknownCondition, c)
	}

	pred, err := predictor.Predict(ctx, features)
	if err != nil {
		return nil, fmt.Errorf("predicting %s risk: %w", c, err)
	}
	p := pred.Probability
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, fmt.Errorf("predicting %s risk: probability %v out of range", c, p)
	}

	var order []string
	if lister, ok := predictor.(ports.FeatureLister); ok {
		order = lister.Features()
	}

	risk := math.Round(p*10000) / 100
	assessment := &entities.RiskAssessment{
		Condition:  c,
		Risk:       risk,
		Band:       entities.BandFor(risk),
		Label:      pred.Label,
		Inputs:     orderedFeatures(features, order),
		AssessedAt: uc.now(),
	}
	if uc.guidance != nil {
		if recs, ok := uc.guidance.Recommendations(c, entities.GuidanceBand(risk)); ok {
			assessment.Recommendations = &recs
		}
	}

	uc.logger.InfoContext(ctx, "risk assessed", "condition", c, "risk", risk, "band", assessment.Band, "label", pred.Label)
	return assessment, nil
}

// orderedFeatures lists the inputs named in order first, in that order, then any others
// alphabetically.
func orderedFeatures(features map[string]float64, order []string) []entities.Feature {
	out := make([]entities.Feature, 0, len(features))
	listed := make(map[string]bool, len(order))
	for _, name := range order {
		if v, ok := features[name]; ok && !listed[name] {
			out = append(out, entities.Feature{Name: name, Value: v})
			listed[name] = true
		}
	}

	var rest []string
	for name := range features {
		if !listed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, entities.Feature{Name: name, Value: features[name]})
	}
	return out
}
