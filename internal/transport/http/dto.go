package httptransport

import (
	"encoding/json"

	"surveyhub/internal/domains"
)

type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ReplaceQuestionsRequest struct {
	Questions []domains.QuestionCreate `json:"questions"`
}

type InvitationToggleRequest struct {
	IsActive bool `json:"is_active"`
}

// SurveyUpdateRequest keeps nullable fields as raw JSON so "absent" and
// "explicitly null" survive decoding.
type SurveyUpdateRequest struct {
	Title       *string         `json:"title"`
	Description json.RawMessage `json:"description"`
	ImageURL    json.RawMessage `json:"image_url"`
	IsActive    *bool           `json:"is_active"`
}

func (r SurveyUpdateRequest) ToUpdate() (domains.SurveyUpdate, error) {
	update := domains.SurveyUpdate{
		Title:    r.Title,
		IsActive: r.IsActive,
	}

	description, err := optionalString(r.Description)
	if err != nil {
		return domains.SurveyUpdate{}, err
	}
	update.Description = description

	imageURL, err := optionalString(r.ImageURL)
	if err != nil {
		return domains.SurveyUpdate{}, err
	}
	update.ImageURL = imageURL

	return update, nil
}

func optionalString(raw json.RawMessage) (domains.OptionalString, error) {
	if len(raw) == 0 {
		return domains.OptionalString{}, nil
	}
	if string(raw) == "null" {
		return domains.OptionalString{Present: true}, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return domains.OptionalString{}, err
	}
	return domains.OptionalString{Present: true, Value: &value}, nil
}
