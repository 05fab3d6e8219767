package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/usecases"
)

type chatRequest struct {
	Message string `json:"message"`
}

type assessRequest struct {
	Features  map[string]float64 `json:"features"`
	ProfileID string             `json:"profile_id,omitempty"`
}

type reportRequest struct {
	Selection   string                    `json:"selection"`
	ProfileID   string                    `json:"profile_id,omitempty"`
	Assessments []entities.RiskAssessment `json:"assessments,omitempty"`
}

type healthResponse struct {
	Status   string        `json:"status"`
	Datasets datasetCounts `json:"datasets"`
}

type datasetCounts struct {
	Precautions int       `json:"precautions"`
	Catalogue   int       `json:"catalogue"`
	FAQ         int       `json:"faq"`
	MatrixRows  int       `json:"matrix_rows"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// handleHealth reports liveness and the size of the active reference snapshot.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.deps.Datasets != nil {
		ref := s.deps.Datasets.Snapshot()
		resp.Datasets = datasetCounts{
			Precautions: ref.Precautions.Len(),
			Catalogue:   ref.Catalogue.Len(),
			FAQ:         ref.FAQ.Len(),
			MatrixRows:  ref.Matrix.Rows(),
			LoadedAt:    ref.LoadedAt,
		}
		if ref.Empty() {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChat resolves one free-text message.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Query.Query(r.Context(), req.Message))
}

func (s *Server) handleHospitals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Providers.Hospitals(r.URL.Query().Get("speciality")))
}

func (s *Server) handleDoctors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Providers.Doctors(r.URL.Query().Get("specialization")))
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var in usecases.ProfileInput
	if !s.decode(w, r, &in) {
		return
	}
	p, err := s.deps.Profiles.Add(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.deps.Profiles.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Profiles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListConditions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"conditions": s.deps.Assess.Conditions()})
}

// handleAssess scores one condition and, when a profile id is given, records the result.
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if !s.decode(w, r, &req) {
		return
	}

	a, err := s.deps.Assess.Assess(r.Context(), chi.URLParam(r, "condition"), req.Features)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ProfileID != "" {
		if _, err := s.deps.Profiles.RecordAssessment(r.Context(), req.ProfileID, *a); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, a)
}

// handleReport renders a PDF from a stored profile's assessments or from the request body.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !s.decode(w, r, &req) {
		return
	}

	assessments := req.Assessments
	if req.ProfileID != "" {
		p, err := s.deps.Profiles.Get(r.Context(), req.ProfileID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		assessments = p.Assessments
	}

	pdf, err := s.deps.Reports.Generate(r.Context(), assessments, req.Selection)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="health_report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

// writeError maps domain errors onto status codes. Unexpected errors are logged and hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entities.ErrInvalidProfile):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, entities.ErrNoPredictions):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, entities.ErrNotFound), errors.Is(err, entities.ErrUnknownCondition):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
