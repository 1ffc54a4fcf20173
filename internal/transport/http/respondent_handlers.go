package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"surveyhub/internal/domains"
	"surveyhub/internal/httpx"
)

type RespondentHandlers struct {
	service RespondentService
}

type RespondentService interface {
	AccessSurvey(ctx context.Context, surveyID int64, token string) (domains.SurveyAccess, error)
	SubmitResponse(ctx context.Context, submit domains.ResponseSubmit) (domains.Response, error)
}

func NewRespondentHandlers(service RespondentService) *RespondentHandlers {
	return &RespondentHandlers{service: service}
}

// AccessSurvey serves the invitation link: ?survey_id=<n>&token=<opaque>.
// Both parameters are required; missing either is the explicit
// "invitation required" state. Validation here is read-only — reloading
// the form never consumes a use.
func (h *RespondentHandlers) AccessSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID, token := linkParams(r)

	access, err := h.service.AccessSurvey(r.Context(), surveyID, token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, access)
}

func (h *RespondentHandlers) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	submit, err := httpx.ReadBody[domains.ResponseSubmit](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	// Link parameters win over the body so the submission is always
	// judged against the link the respondent actually opened.
	if surveyID, token := linkParams(r); token != "" {
		submit.SurveyID = surveyID
		submit.Token = token
	}

	saved, err := h.service.SubmitResponse(r.Context(), submit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	slog.Info("response submitted", "survey_id", saved.SurveyID, "response_id", saved.ID)
	httpx.JSON(w, http.StatusCreated, saved)
}

func linkParams(r *http.Request) (int64, string) {
	token := r.URL.Query().Get("token")
	surveyID, err := strconv.ParseInt(r.URL.Query().Get("survey_id"), 10, 64)
	if err != nil {
		surveyID = 0
	}
	return surveyID, token
}
