package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"surveyhub/internal/domains"
	"surveyhub/internal/storage"
)

type SurveyService struct {
	provider    SurveyProvider
	invitations invitationLister
}

type SurveyProvider interface {
	SaveSurvey(ctx context.Context, survey domains.SurveyToSave) (domains.Survey, []domains.Question, error)
	GetSurveyByID(ctx context.Context, ownerID, surveyID int64) (domains.Survey, error)
	GetAllSurveysByOwner(ctx context.Context, ownerID int64) ([]domains.SurveySummary, error)
	UpdateSurvey(ctx context.Context, surveyID, ownerID int64, update domains.SurveyUpdate) (domains.Survey, error)
	DeleteSurvey(ctx context.Context, surveyID, ownerID int64) error
	ReplaceQuestions(ctx context.Context, surveyID, ownerID int64, questions []domains.QuestionCreate) ([]domains.Question, error)
	ListQuestions(ctx context.Context, surveyID int64) ([]domains.Question, error)
}

type invitationLister interface {
	ListInvitations(ctx context.Context, ownerID, surveyID int64) ([]domains.Invitation, error)
}

func NewSurveyService(provider SurveyProvider, invitations invitationLister) *SurveyService {
	return &SurveyService{
		provider:    provider,
		invitations: invitations,
	}
}

func (h *SurveyService) CreateSurvey(ctx context.Context, ownerID int64, payload domains.SurveyCreate) (domains.SurveyDetails, error) {
	if payload.Title == "" {
		return domains.SurveyDetails{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := validateQuestions(payload.Questions); err != nil {
		return domains.SurveyDetails{}, err
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	survey, questions, err := h.provider.SaveSurvey(ctx, domains.SurveyToSave{
		OwnerID:     ownerID,
		Title:       payload.Title,
		Description: payload.Description,
		ImageURL:    payload.ImageURL,
		IsActive:    isActive,
		Questions:   payload.Questions,
	})
	if err != nil {
		slog.Error("SaveSurvey failed", "err", err, "owner_id", ownerID)
		return domains.SurveyDetails{}, err
	}

	return domains.SurveyDetails{Survey: survey, Questions: questions}, nil
}

func (h *SurveyService) GetAllSurveysByOwner(ctx context.Context, ownerID int64) ([]domains.SurveySummary, error) {
	surveys, err := h.provider.GetAllSurveysByOwner(ctx, ownerID)
	if err != nil {
		slog.Error("GetAllSurveysByOwner failed", "err", err, "owner_id", ownerID)
		return nil, err
	}
	return surveys, nil
}

func (h *SurveyService) GetSurveyDetails(ctx context.Context, ownerID, surveyID int64) (domains.SurveyDetails, error) {
	survey, err := h.provider.GetSurveyByID(ctx, ownerID, surveyID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("GetSurveyByID failed", "err", err, "owner_id", ownerID, "survey_id", surveyID)
		}
		return domains.SurveyDetails{}, err
	}

	questions, err := h.provider.ListQuestions(ctx, surveyID)
	if err != nil {
		slog.Error("ListQuestions failed", "err", err, "survey_id", surveyID)
		return domains.SurveyDetails{}, err
	}

	invitations, err := h.invitations.ListInvitations(ctx, ownerID, surveyID)
	if err != nil {
		slog.Error("ListInvitations failed", "err", err, "survey_id", surveyID)
		return domains.SurveyDetails{}, err
	}

	return domains.SurveyDetails{
		Survey:      survey,
		Questions:   questions,
		Invitations: invitations,
	}, nil
}

func (h *SurveyService) UpdateSurvey(ctx context.Context, ownerID, surveyID int64, update domains.SurveyUpdate) (domains.Survey, error) {
	if !update.HasChanges() {
		return h.provider.GetSurveyByID(ctx, ownerID, surveyID)
	}
	if update.Title != nil && *update.Title == "" {
		return domains.Survey{}, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}

	updated, err := h.provider.UpdateSurvey(ctx, surveyID, ownerID, update)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("UpdateSurvey failed", "err", err, "owner_id", ownerID, "survey_id", surveyID)
		}
		return domains.Survey{}, err
	}
	return updated, nil
}

func (h *SurveyService) DeleteSurvey(ctx context.Context, ownerID, surveyID int64) error {
	if err := h.provider.DeleteSurvey(ctx, surveyID, ownerID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("DeleteSurvey failed", "err", err, "owner_id", ownerID, "survey_id", surveyID)
		}
		return err
	}
	return nil
}

// ReplaceQuestions applies whole-survey replace semantics: the previous
// question set is dropped and the new one inserted in its place, so ids
// are reassigned on every save.
func (h *SurveyService) ReplaceQuestions(ctx context.Context, ownerID, surveyID int64, questions []domains.QuestionCreate) ([]domains.Question, error) {
	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	replaced, err := h.provider.ReplaceQuestions(ctx, surveyID, ownerID, questions)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("ReplaceQuestions failed", "err", err, "owner_id", ownerID, "survey_id", surveyID)
		}
		return nil, err
	}
	return replaced, nil
}

func validateQuestions(questions []domains.QuestionCreate) error {
	for i, question := range questions {
		if question.Text == "" {
			return fmt.Errorf("%w: question %d has no text", ErrValidation, i)
		}
		switch question.Type {
		case domains.QuestionScale:
			if question.ScaleMin == nil || question.ScaleMax == nil {
				return fmt.Errorf("%w: question %d needs scale bounds", ErrValidation, i)
			}
			if *question.ScaleMax < *question.ScaleMin {
				return fmt.Errorf("%w: question %d scale range is inverted", ErrValidation, i)
			}
		case domains.QuestionSelect:
			if len(question.Options) == 0 {
				return fmt.Errorf("%w: question %d needs options", ErrValidation, i)
			}
		case domains.QuestionPercentage:
			if question.PercentageMax != nil && *question.PercentageMax <= 0 {
				return fmt.Errorf("%w: question %d percentage maximum must be positive", ErrValidation, i)
			}
		case domains.QuestionText:
		default:
			return fmt.Errorf("%w: question %d has unknown type %q", ErrValidation, i, question.Type)
		}
	}
	return nil
}
