package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curehelp/curehelp-go/internal/adapters/directory"
	"github.com/curehelp/curehelp-go/internal/adapters/guidance"
	"github.com/curehelp/curehelp-go/internal/adapters/profilestore"
	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/ports"
	"github.com/curehelp/curehelp-go/internal/domain/usecases"
)

type staticLoader struct{ ref *entities.ReferenceData }

func (l staticLoader) Load(ctx context.Context) (*entities.ReferenceData, error) { return l.ref, nil }

type fixedPredictor float64

func (p fixedPredictor) Predict(ctx context.Context, features map[string]float64) (entities.Prediction, error) {
	return entities.Prediction{Probability: float64(p)}, nil
}

type fakeRenderer struct{ pages int }

func (r *fakeRenderer) Render(ctx context.Context, assessments []entities.RiskAssessment) ([]byte, error) {
	r.pages = len(assessments)
	return []byte("%PDF-1.4 fake"), nil
}

func guidanceTable(t *testing.T) *guidance.Table {
	t.Helper()
	table, err := guidance.Load("")
	require.NoError(t, err)
	return table
}

func testReference(t *testing.T) *entities.ReferenceData {
	t.Helper()
	m, err := entities.NewSymptomMatrix(
		[]string{"Flu", "Diabetes"},
		[]string{"fever", "cough", "fatigue", "increased_thirst"},
		[]uint8{
			1, 1, 1, 0,
			0, 0, 1, 1,
		},
	)
	require.NoError(t, err)
	return &entities.ReferenceData{
		Precautions: entities.NewPrecautionTable([]entities.PrecautionRow{
			{Disease: "Flu", Precautions: []string{"rest", "drink fluids"}},
		}),
		FAQ: entities.NewFaqTable([]entities.FaqRow{
			{Question: "What is Diabetes?", Answer: "A disease of high blood glucose."},
		}),
		Matrix: m,
	}
}

func newTestServer(t *testing.T) (http.Handler, *fakeRenderer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	datasets := usecases.NewDatasetUseCase(staticLoader{ref: testReference(t)}, logger)
	require.NoError(t, datasets.Load(context.Background()))

	providers, err := directory.Parse([]byte(`
hospitals:
  - name: City General
    speciality: Multi-Speciality
doctors:
  - name: Dr. Heart
    specialization: Cardiologist
  - name: Dr. Skin
    specialization: Dermatologist
`))
	require.NoError(t, err)

	renderer := &fakeRenderer{}
	srv := NewServer(Deps{
		Query:    usecases.NewQueryUseCase(datasets, logger),
		Datasets: datasets,
		Assess: usecases.NewAssessUseCase(map[entities.Condition]ports.RiskPredictor{
			entities.ConditionDiabetes: fixedPredictor(0.8),
			entities.ConditionFever:    fixedPredictor(0.1),
		}, guidanceTable(t), logger),
		Profiles:  usecases.NewProfileUseCase(profilestore.NewInMemoryStore(), logger),
		Reports:   usecases.NewReportUseCase(renderer),
		Providers: providers,
	}, ":0", logger)
	return srv.Handler(), renderer
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[healthResponse](t, rec)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 2, body.Datasets.MatrixRows)
	assert.Equal(t, 1, body.Datasets.FAQ)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestChat(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/chat", `{"message":"fever, cough"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[entities.QueryResponse](t, rec)
	assert.Equal(t, entities.IntentSymptoms, resp.Intent)
	require.NotNil(t, resp.ResolvedDisease)
	assert.Equal(t, "Flu", *resp.ResolvedDisease)
	assert.Equal(t, []string{"rest", "drink fluids"}, resp.Precautions)
}

func TestChat_EmptyMessageAndJSONShape(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/chat", `{"message":""}`)

	require.Equal(t, http.StatusOK, rec.Code)
	raw := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "question", raw["intent"])
	assert.Nil(t, raw["resolved_disease"])
	assert.Equal(t, []any{}, raw["symptoms"])
	assert.NotContains(t, raw, "warning")
}

func TestChat_BadBody(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big := `{"message":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec = do(t, h, http.MethodPost, "/api/chat", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestProviders(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/providers/doctors?specialization=cardio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doctors := decodeBody[[]entities.Doctor](t, rec)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Heart", doctors[0].Name)

	rec = do(t, h, http.MethodGet, "/api/providers/hospitals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]entities.Hospital](t, rec), 1)
}

func TestProfiles_AssessAndReport(t *testing.T) {
	h, renderer := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/profiles",
		`{"name":"Asha","age":34,"gender":"Female","contact":"98765","address":"Kochi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	profile := decodeBody[entities.Profile](t, rec)
	require.NotEmpty(t, profile.ID)

	rec = do(t, h, http.MethodPost, "/api/assessments/diabetes",
		`{"features":{"Glucose":150,"BMI":31},"profile_id":"`+profile.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	a := decodeBody[entities.RiskAssessment](t, rec)
	assert.Equal(t, 80.0, a.Risk)
	assert.Equal(t, entities.RiskHigh, a.Band)
	require.NotNil(t, a.Recommendations)
	assert.Equal(t, entities.RiskHigh, a.Recommendations.Band)
	assert.Len(t, a.Recommendations.Preventions, 8)
	assert.Len(t, a.Recommendations.Medications, 8)

	rec = do(t, h, http.MethodGet, "/api/profiles/"+profile.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[entities.Profile](t, rec).Assessments, 1)

	rec = do(t, h, http.MethodGet, "/api/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]entities.Profile](t, rec), 1)

	rec = do(t, h, http.MethodPost, "/api/reports", `{"selection":"full report","profile_id":"`+profile.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 1, renderer.pages)
}

func TestErrors(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid profile", http.MethodPost, "/api/profiles", `{"name":"","age":0}`, http.StatusBadRequest},
		{"unknown profile", http.MethodGet, "/api/profiles/nope", "", http.StatusNotFound},
		{"unknown condition", http.MethodPost, "/api/assessments/cancer", `{"features":{}}`, http.StatusNotFound},
		{"condition without model", http.MethodPost, "/api/assessments/heart", `{"features":{}}`, http.StatusNotFound},
		{"empty report", http.MethodPost, "/api/reports", `{"selection":"all"}`, http.StatusUnprocessableEntity},
		{"report for unknown profile", http.MethodPost, "/api/reports", `{"profile_id":"nope"}`, http.StatusNotFound},
		{"wrong method", http.MethodGet, "/api/chat", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestReport_FromBody(t *testing.T) {
	h, renderer := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/reports",
		`{"selection":"fever","assessments":[{"condition":"fever","risk":10,"band":"low"},{"condition":"diabetes","risk":80,"band":"high"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, renderer.pages)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodOptions, "/api/chat", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestConditions(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/assessments", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string][]string](t, rec)
	assert.Equal(t, []string{"diabetes", "fever"}, body["conditions"])
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	srv := NewServer(Deps{}, "127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
