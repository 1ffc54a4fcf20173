package providers

import "github.com/jackc/pgx/v5/pgxpool"

type Providers struct {
	AuthProvider       *AuthProvider
	SurveyProvider     *SurveyProvider
	InvitationProvider *InvitationProvider
	ResponseProvider   *ResponseProvider
}

func New(db *pgxpool.Pool) *Providers {
	return &Providers{
		AuthProvider:       NewAuthProvider(db),
		SurveyProvider:     NewSurveyProvider(db),
		InvitationProvider: NewInvitationProvider(db),
		ResponseProvider:   NewResponseProvider(db),
	}
}
