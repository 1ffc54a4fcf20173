package httptransport

import (
	"net/http"

	"surveyhub/internal/config"
	"surveyhub/internal/httpx"
	"surveyhub/internal/service"
	"surveyhub/internal/storage/providers"

	"github.com/gorilla/mux"
)

func Router(allProviders *providers.Providers, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	authService := service.NewAuthService(allProviders.AuthProvider, cfg.JWT.Secret)
	invitationService := service.NewInvitationService(allProviders.InvitationProvider)
	surveyService := service.NewSurveyService(allProviders.SurveyProvider, allProviders.InvitationProvider)
	responseService := service.NewResponseService(allProviders.ResponseProvider, allProviders.SurveyProvider, allProviders.InvitationProvider)
	resultsService := service.NewResultsService(allProviders.SurveyProvider, allProviders.ResponseProvider)

	authHandler := NewAuthHandlers(authService)
	respondentHandler := NewRespondentHandlers(responseService)
	surveyHandler := NewSurveyHandlers(surveyService, invitationService)
	resultsHandler := NewResultsHandlers(resultsService, responseService)

	api := router.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)
	auth.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	// Respondent surface is invitation-gated, not session-gated.
	api.HandleFunc("/respond", respondentHandler.AccessSurvey).Methods(http.MethodGet)
	api.HandleFunc("/respond", respondentHandler.SubmitResponse).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(httpx.Protected(cfg.JWT.Secret), httpx.RequireAdmin(allProviders.AuthProvider))

	admin.HandleFunc("/surveys", surveyHandler.CreateSurvey).Methods(http.MethodPost)
	admin.HandleFunc("/surveys", surveyHandler.GetAllSurveys).Methods(http.MethodGet)
	admin.HandleFunc("/surveys/{id}", surveyHandler.GetSurvey).Methods(http.MethodGet)
	admin.HandleFunc("/surveys/{id}", surveyHandler.UpdateSurvey).Methods(http.MethodPatch)
	admin.HandleFunc("/surveys/{id}", surveyHandler.DeleteSurvey).Methods(http.MethodDelete)
	admin.HandleFunc("/surveys/{id}/questions", surveyHandler.ReplaceQuestions).Methods(http.MethodPut)

	admin.HandleFunc("/surveys/{id}/invitations", surveyHandler.CreateInvitation).Methods(http.MethodPost)
	admin.HandleFunc("/surveys/{id}/invitations", surveyHandler.ListInvitations).Methods(http.MethodGet)
	admin.HandleFunc("/surveys/{id}/invitations/{invitationID}", surveyHandler.ToggleInvitation).Methods(http.MethodPatch)
	admin.HandleFunc("/surveys/{id}/invitations/{invitationID}", surveyHandler.DeleteInvitation).Methods(http.MethodDelete)

	admin.HandleFunc("/surveys/{id}/results", resultsHandler.GetResults).Methods(http.MethodGet)
	admin.HandleFunc("/surveys/{id}/results/export", resultsHandler.ExportCSV).Methods(http.MethodGet)
	admin.HandleFunc("/surveys/{id}/responses", resultsHandler.ListResponses).Methods(http.MethodGet)
	admin.HandleFunc("/surveys/{id}/responses/{responseID}", resultsHandler.DeleteResponse).Methods(http.MethodDelete)

	return router
}
