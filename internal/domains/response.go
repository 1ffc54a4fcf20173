package domains

import (
	"time"
)

// AnswerSet maps a question id (string key, as stored in jsonb) to the
// answer value: a number for scale/percentage, a string for text and
// single-choice select, a string array for multiple-choice select.
type AnswerSet map[string]any

type Response struct {
	ID             int64     `json:"id"`
	SurveyID       int64     `json:"survey_id"`
	InvitationID   *int64    `json:"invitation_id,omitempty"`
	UserID         *int64    `json:"user_id,omitempty"`
	RespondentID   string    `json:"respondent_id"`
	RespondentName string    `json:"respondent_name"`
	CountryCode    string    `json:"country_code"`
	Role           string    `json:"role"`
	Answers        AnswerSet `json:"answers"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type ResponseSubmit struct {
	SurveyID       int64     `json:"survey_id"`
	Token          string    `json:"token"`
	RespondentID   string    `json:"respondent_id,omitempty"`
	RespondentName string    `json:"respondent_name"`
	CountryCode    string    `json:"country_code"`
	Role           string    `json:"role"`
	Answers        AnswerSet `json:"answers"`
}

type ResponseToSave struct {
	SurveyID       int64
	InvitationID   int64
	UserID         *int64
	RespondentID   string
	RespondentName string
	CountryCode    string
	Role           string
	Answers        AnswerSet
	SubmittedAt    time.Time
}

// ResponseFilter narrows result sets before aggregation; nil fields
// leave the dimension unfiltered.
type ResponseFilter struct {
	CountryCode *string
	Role        *string
}
