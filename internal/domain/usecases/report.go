package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/ports"
)

// ReportUseCase builds printable risk reports.
type ReportUseCase struct {
	renderer ports.ReportRenderer
}

// NewReportUseCase creates a ReportUseCase.
func NewReportUseCase(renderer ports.ReportRenderer) *ReportUseCase {
	return &ReportUseCase{renderer: renderer}
}

// Generate renders the assessments named by selection. "full report", "all" or an empty
// selection include every assessment; otherwise selection is a comma-separated list of
// conditions. Later assessments for the same condition replace earlier ones.
func (uc *ReportUseCase) Generate(ctx context.Context, assessments []entities.RiskAssessment, selection string) ([]byte, error) {
	selected := SelectAssessments(assessments, selection)
	if len(selected) == 0 {
		return nil, entities.ErrNoPredictions
	}

	pdf, err := uc.renderer.Render(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return pdf, nil
}

// SelectAssessments keeps the latest assessment per condition, in display order,
// restricted to the selection.
func SelectAssessments(assessments []entities.RiskAssessment, selection string) []entities.RiskAssessment {
	latest := make(map[entities.Condition]entities.RiskAssessment, len(assessments))
	for _, a := range assessments {
		latest[a.Condition] = a
	}

	wanted := map[entities.Condition]bool{}
	all := false
	switch s := entities.NormalizeName(selection); s {
	case "", "all", "full report":
		all = true
	default:
		for _, part := range strings.Split(s, ",") {
			if c, ok := entities.ParseCondition(part); ok {
				wanted[c] = true
			}
		}
	}

	var out []entities.RiskAssessment
	for _, c := range entities.Conditions {
		a, ok := latest[c]
		if ok && (all || wanted[c]) {
			out = append(out, a)
		}
	}
	return out
}
