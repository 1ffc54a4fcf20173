package httptransport

import (
	"context"
	"net/http"

	"surveyhub/internal/domains"
	"surveyhub/internal/httpx"
	"surveyhub/internal/service"
)

type ResultsHandlers struct {
	results   ResultsServices
	responses ResponseServices
}

type ResultsServices interface {
	Results(ctx context.Context, ownerID, surveyID int64, filter domains.ResponseFilter) (service.SurveyResults, error)
	ListResponses(ctx context.Context, ownerID, surveyID int64, filter domains.ResponseFilter) ([]domains.Response, error)
	ExportCSV(ctx context.Context, ownerID, surveyID int64, filter domains.ResponseFilter) ([]byte, error)
}

type ResponseServices interface {
	DeleteResponse(ctx context.Context, ownerID, surveyID, responseID int64) error
}

func NewResultsHandlers(results ResultsServices, responses ResponseServices) *ResultsHandlers {
	return &ResultsHandlers{results: results, responses: responses}
}

func (h *ResultsHandlers) GetResults(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}

	results, err := h.results.Results(r.Context(), owner, surveyID, filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, results)
}

func (h *ResultsHandlers) ListResponses(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}

	responses, err := h.results.ListResponses(r.Context(), owner, surveyID, filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, responses)
}

func (h *ResultsHandlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}

	data, err := h.results.ExportCSV(r.Context(), owner, surveyID, filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="responses.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ResultsHandlers) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}
	responseID, ok := pathID(w, r, "responseID")
	if !ok {
		return
	}

	if err := h.responses.DeleteResponse(r.Context(), owner, surveyID, responseID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func filterFromQuery(r *http.Request) domains.ResponseFilter {
	var filter domains.ResponseFilter
	if country := r.URL.Query().Get("country"); country != "" {
		filter.CountryCode = &country
	}
	if role := r.URL.Query().Get("role"); role != "" {
		filter.Role = &role
	}
	return filter
}
