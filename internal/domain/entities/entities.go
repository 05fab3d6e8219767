// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import (
	"errors"
	"strings"
	"time"
)

// Sentinel errors shared by use cases and adapters.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidProfile   = errors.New("invalid profile")
	ErrUnknownCondition = errors.New("unknown condition")
	ErrNoPredictions    = errors.New("no predictions selected")
)

// Intent is the classified purpose of a user's free-text input.
type Intent string

const (
	IntentQuestion Intent = "question"
	IntentSymptoms Intent = "symptoms"
	IntentDisease  Intent = "disease"
)

// QueryResponse is the structured answer handed to the presentation layer.
// Optional fields are nil when the resolver could not fill them.
type QueryResponse struct {
	Intent          Intent   `json:"intent"`
	ResolvedDisease *string  `json:"resolved_disease"`
	Confidence      float64  `json:"confidence"`
	Symptoms        []string `json:"symptoms"`
	Precautions     []string `json:"precautions"`
	Description     *string  `json:"description"`
	FAQQuestion     *string  `json:"faq_question"`
	FAQAnswer       *string  `json:"faq_answer"`
	Warning         string   `json:"warning,omitempty"`
}

// NewQueryResponse returns a response with the initialization defaults.
func NewQueryResponse(intent Intent) QueryResponse {
	return QueryResponse{
		Intent:      intent,
		Symptoms:    []string{},
		Precautions: []string{},
	}
}

// Condition is one of the four conditions with a risk predictor.
type Condition string

const (
	ConditionDiabetes Condition = "diabetes"
	ConditionHeart    Condition = "heart"
	ConditionFever    Condition = "fever"
	ConditionAnemia   Condition = "anemia"
)

// Conditions lists every supported condition in display order.
var Conditions = []Condition{ConditionDiabetes, ConditionHeart, ConditionFever, ConditionAnemia}

// ParseCondition maps user input onto a known condition.
func ParseCondition(s string) (Condition, bool) {
	c := Condition(NormalizeName(s))
	for _, known := range Conditions {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// RiskBand buckets a risk percentage.
type RiskBand string

const (
	RiskLow    RiskBand = "low"
	RiskMedium RiskBand = "medium"
	RiskHigh   RiskBand = "high"
)

// BandFor returns the band for a risk percentage in [0,100].
func BandFor(risk float64) RiskBand {
	switch {
	case risk >= 75:
		return RiskHigh
	case risk > 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// GuidanceBand buckets a risk percentage for prevention and medication guidance, which
// uses its own cut-offs: below 35 is low, below 70 medium, anything else high.
func GuidanceBand(risk float64) RiskBand {
	switch {
	case risk < 35:
		return RiskLow
	case risk < 70:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Recommendations is the guidance shown alongside a risk score.
type Recommendations struct {
	Band        RiskBand `json:"band" yaml:"-"`
	Preventions []string `json:"preventions" yaml:"preventions"`
	Medications []string `json:"medications" yaml:"medications"`
}

// Prediction is what a risk model returns: a probability in [0,1] and, for models
// that also classify, a label such as a fever severity or an anemia type.
type Prediction struct {
	Probability float64
	Label       string
}

// Feature is one named model input, kept ordered for reports.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// RiskAssessment is the outcome of running one predictor.
type RiskAssessment struct {
	Condition       Condition        `json:"condition"`
	Risk            float64          `json:"risk"` // percentage, 0-100
	Band            RiskBand         `json:"band"`
	Label           string           `json:"label,omitempty"`
	Inputs          []Feature        `json:"inputs"`
	Recommendations *Recommendations `json:"recommendations,omitempty"`
	AssessedAt      time.Time        `json:"assessed_at"`
}

// Profile is a stored patient record.
type Profile struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Age         int              `json:"age"`
	Gender      string           `json:"gender"`
	Contact     string           `json:"contact"`
	Address     string           `json:"address"`
	Assessments []RiskAssessment `json:"assessments"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Hospital is a static directory entry.
type Hospital struct {
	Name        string `json:"name" yaml:"name"`
	Address     string `json:"address" yaml:"address"`
	Contact     string `json:"contact" yaml:"contact"`
	Speciality  string `json:"speciality" yaml:"speciality"`
	Distance    string `json:"distance" yaml:"distance"`
	LocationURL string `json:"location_url" yaml:"location_url"`
	WebsiteURL  string `json:"website_url" yaml:"website_url"`
}

// Doctor is a static directory entry.
type Doctor struct {
	Name           string `json:"name" yaml:"name"`
	Contact        string `json:"contact" yaml:"contact"`
	Address        string `json:"address" yaml:"address"`
	Qualification  string `json:"qualification" yaml:"qualification"`
	Specialization string `json:"specialization" yaml:"specialization"`
	Experience     string `json:"experience" yaml:"experience"`
	Rating         string `json:"rating" yaml:"rating"`
	LocationURL    string `json:"location_url" yaml:"location_url"`
	WebsiteURL     string `json:"website_url" yaml:"website_url"`
}

// NormalizeName lowercases and trims a disease name or question.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
