package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

type mockRenderer struct {
	got []entities.RiskAssessment
	err error
}

func (m *mockRenderer) Render(ctx context.Context, assessments []entities.RiskAssessment) ([]byte, error) {
	m.got = assessments
	return []byte("%PDF-"), m.err
}

func sampleAssessments() []entities.RiskAssessment {
	return []entities.RiskAssessment{
		{Condition: entities.ConditionFever, Risk: 20},
		{Condition: entities.ConditionDiabetes, Risk: 50},
		{Condition: entities.ConditionDiabetes, Risk: 80},
	}
}

func conditionsOf(as []entities.RiskAssessment) []entities.Condition {
	var out []entities.Condition
	for _, a := range as {
		out = append(out, a.Condition)
	}
	return out
}

func TestSelectAssessments(t *testing.T) {
	all := SelectAssessments(sampleAssessments(), "Full Report")
	assert.Equal(t, []entities.Condition{entities.ConditionDiabetes, entities.ConditionFever}, conditionsOf(all))
	assert.Equal(t, 80.0, all[0].Risk, "latest assessment wins")

	assert.Len(t, SelectAssessments(sampleAssessments(), ""), 2)
	assert.Len(t, SelectAssessments(sampleAssessments(), "ALL"), 2)

	some := SelectAssessments(sampleAssessments(), "fever, heart")
	assert.Equal(t, []entities.Condition{entities.ConditionFever}, conditionsOf(some))

	assert.Empty(t, SelectAssessments(sampleAssessments(), "anemia"))
	assert.Empty(t, SelectAssessments(nil, "all"))
}

func TestReportUseCase_Generate(t *testing.T) {
	renderer := &mockRenderer{}
	uc := NewReportUseCase(renderer)

	pdf, err := uc.Generate(context.Background(), sampleAssessments(), "diabetes")

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-"), pdf)
	assert.Equal(t, []entities.Condition{entities.ConditionDiabetes}, conditionsOf(renderer.got))
}

func TestReportUseCase_NothingSelected(t *testing.T) {
	uc := NewReportUseCase(&mockRenderer{})

	_, err := uc.Generate(context.Background(), sampleAssessments(), "heart")
	assert.ErrorIs(t, err, entities.ErrNoPredictions)

	_, err = uc.Generate(context.Background(), nil, "")
	assert.ErrorIs(t, err, entities.ErrNoPredictions)
}

func TestReportUseCase_RenderError(t *testing.T) {
	uc := NewReportUseCase(&mockRenderer{err: errors.New("no font")})

	_, err := uc.Generate(context.Background(), sampleAssessments(), "all")

	assert.ErrorContains(t, err, "no font")
}
