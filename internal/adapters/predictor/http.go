package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/ports"
)

// HTTPPredictor calls a remote model server for one condition.
type HTTPPredictor struct {
	baseURL   string
	condition entities.Condition
	client    *http.Client
}

// NewHTTPPredictor creates a predictor posting to {baseURL}/predict/{condition}.
func NewHTTPPredictor(baseURL string, condition entities.Condition) *HTTPPredictor {
	return &HTTPPredictor{
		baseURL:   strings.TrimRight(baseURL, "/"),
		condition: condition,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewHTTPPredictors returns one HTTPPredictor per known condition.
func NewHTTPPredictors(baseURL string) map[entities.Condition]ports.RiskPredictor {
	out := make(map[entities.Condition]ports.RiskPredictor, len(entities.Conditions))
	for _, c := range entities.Conditions {
		out[c] = NewHTTPPredictor(baseURL, c)
	}
	return out
}

// predictRequest is the model server request format.
type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

// predictResponse is the model server response format.
type predictResponse struct {
	Probability float64 `json:"probability"`
	Label       string  `json:"label,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Predict implements ports.RiskPredictor.
func (p *HTTPPredictor) Predict(ctx context.Context, features map[string]float64) (entities.Prediction, error) {
	jsonData, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return entities.Prediction{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := p.baseURL + "/predict/" + string(p.condition)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return entities.Prediction{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return entities.Prediction{}, fmt.Errorf("calling model server: %w", err)
	}
	defer resp.Body.Close()

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode == http.StatusOK {
		return entities.Prediction{}, fmt.Errorf("decoding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return entities.Prediction{}, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, out.Error)
		}
		return entities.Prediction{}, fmt.Errorf("model server returned status %d", resp.StatusCode)
	}
	if out.Error != "" {
		return entities.Prediction{}, fmt.Errorf("model server: %s", out.Error)
	}
	return entities.Prediction{Probability: out.Probability, Label: out.Label}, nil
}
