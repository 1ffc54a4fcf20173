package domains

import (
	"time"
)

type Survey struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type SurveyCreate struct {
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	Questions   []QuestionCreate `json:"questions"`
}

type SurveyToSave struct {
	OwnerID     int64
	Title       string
	Description *string
	ImageURL    *string
	IsActive    bool
	Questions   []QuestionCreate
}

// OptionalString distinguishes "field absent" from "field set to null"
// in partial updates.
type OptionalString struct {
	Present bool
	Value   *string
}

type SurveyUpdate struct {
	Title       *string        `json:"title,omitempty"`
	Description OptionalString `json:"-"`
	ImageURL    OptionalString `json:"-"`
	IsActive    *bool          `json:"is_active,omitempty"`
}

func (u SurveyUpdate) HasChanges() bool {
	return u.Title != nil || u.Description.Present || u.ImageURL.Present || u.IsActive != nil
}

type SurveySummary struct {
	Survey          Survey `json:"survey"`
	QuestionCount   int    `json:"question_count"`
	InvitationCount int    `json:"invitation_count"`
	ResponseCount   int    `json:"response_count"`
}

type SurveyDetails struct {
	Survey      Survey       `json:"survey"`
	Questions   []Question   `json:"questions"`
	Invitations []Invitation `json:"invitations"`
}

// SurveyAccess is what a respondent sees after their invitation passed
// the read-only validation on form load.
type SurveyAccess struct {
	Survey     Survey     `json:"survey"`
	Questions  []Question `json:"questions"`
	Invitation Invitation `json:"invitation"`
}
