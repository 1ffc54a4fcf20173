package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"surveyhub/internal/domains"
	"surveyhub/internal/httpx"

	"github.com/gorilla/mux"
)

type SurveyHandlers struct {
	surveys     SurveyServices
	invitations InvitationServices
}

type SurveyServices interface {
	CreateSurvey(ctx context.Context, ownerID int64, payload domains.SurveyCreate) (domains.SurveyDetails, error)
	GetAllSurveysByOwner(ctx context.Context, ownerID int64) ([]domains.SurveySummary, error)
	GetSurveyDetails(ctx context.Context, ownerID, surveyID int64) (domains.SurveyDetails, error)
	UpdateSurvey(ctx context.Context, ownerID, surveyID int64, update domains.SurveyUpdate) (domains.Survey, error)
	DeleteSurvey(ctx context.Context, ownerID, surveyID int64) error
	ReplaceQuestions(ctx context.Context, ownerID, surveyID int64, questions []domains.QuestionCreate) ([]domains.Question, error)
}

type InvitationServices interface {
	CreateInvitation(ctx context.Context, ownerID, surveyID int64, create domains.InvitationCreate) (domains.Invitation, error)
	ListInvitations(ctx context.Context, ownerID, surveyID int64) ([]domains.Invitation, error)
	SetInvitationActive(ctx context.Context, ownerID, surveyID, invitationID int64, active bool) (domains.Invitation, error)
	DeleteInvitation(ctx context.Context, ownerID, surveyID, invitationID int64) error
}

func NewSurveyHandlers(surveys SurveyServices, invitations InvitationServices) *SurveyHandlers {
	return &SurveyHandlers{surveys: surveys, invitations: invitations}
}

func (h *SurveyHandlers) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	owner, ok := httpx.AccountFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	payload, err := httpx.ReadBody[domains.SurveyCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.surveys.CreateSurvey(r.Context(), owner.ID, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, created)
}

func (h *SurveyHandlers) GetAllSurveys(w http.ResponseWriter, r *http.Request) {
	owner, ok := httpx.AccountFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	surveys, err := h.surveys.GetAllSurveysByOwner(r.Context(), owner.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, surveys)
}

func (h *SurveyHandlers) GetSurvey(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}

	details, err := h.surveys.GetSurveyDetails(r.Context(), owner, surveyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, details)
}

func (h *SurveyHandlers) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}

	request, err := httpx.ReadBody[SurveyUpdateRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	update, err := request.ToUpdate()
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.surveys.UpdateSurvey(r.Context(), owner, surveyID, update)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, updated)
}

func (h *SurveyHandlers) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}

	if err := h.surveys.DeleteSurvey(r.Context(), owner, surveyID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SurveyHandlers) ReplaceQuestions(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}

	request, err := httpx.ReadBody[ReplaceQuestionsRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := h.surveys.ReplaceQuestions(r.Context(), owner, surveyID, request.Questions)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, questions)
}

func (h *SurveyHandlers) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}

	create, err := httpx.ReadBody[domains.InvitationCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	invitation, err := h.invitations.CreateInvitation(r.Context(), owner, surveyID, create)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, invitation)
}

func (h *SurveyHandlers) ListInvitations(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}

	invitations, err := h.invitations.ListInvitations(r.Context(), owner, surveyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, invitations)
}

func (h *SurveyHandlers) ToggleInvitation(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}
	invitationID, ok := pathID(w, r, "invitationID")
	if !ok {
		return
	}

	request, err := httpx.ReadBody[InvitationToggleRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	invitation, err := h.invitations.SetInvitationActive(r.Context(), owner, surveyID, invitationID, request.IsActive)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, invitation)
}

func (h *SurveyHandlers) DeleteInvitation(w http.ResponseWriter, r *http.Request) {
	owner, surveyID, ok := ownerAndSurvey(w, r)
	if !ok {
		return
	}
	invitationID, ok := pathID(w, r, "invitationID")
	if !ok {
		return
	}

	if err := h.invitations.DeleteInvitation(r.Context(), owner, surveyID, invitationID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ownerAndSurvey(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	owner, ok := httpx.AccountFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return 0, 0, false
	}
	surveyID, ok := pathID(w, r, "id")
	if !ok {
		return 0, 0, false
	}
	return owner.ID, surveyID, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid identifier")
		return 0, false
	}
	return id, true
}
