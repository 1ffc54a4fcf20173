package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"surveyhub/internal/domains"
	"surveyhub/internal/storage"

	"github.com/google/uuid"
)

type ResponseService struct {
	responses   ResponseStore
	surveys     SurveyReader
	invitations InvitationFinder
}

type ResponseStore interface {
	SubmitResponse(ctx context.Context, payload domains.ResponseToSave) (domains.Response, error)
	DeleteResponse(ctx context.Context, ownerID, surveyID, responseID int64) error
}

type SurveyReader interface {
	GetSurvey(ctx context.Context, surveyID int64) (domains.Survey, error)
	ListQuestions(ctx context.Context, surveyID int64) ([]domains.Question, error)
}

type InvitationFinder interface {
	FindInvitation(ctx context.Context, token string, surveyID int64) (domains.Invitation, error)
}

func NewResponseService(responses ResponseStore, surveys SurveyReader, invitations InvitationFinder) *ResponseService {
	return &ResponseService{
		responses:   responses,
		surveys:     surveys,
		invitations: invitations,
	}
}

// AccessSurvey performs the advisory form-load validation: it resolves
// the invitation, checks it read-only, and returns the survey with its
// questions. Nothing is consumed here; the authoritative check happens
// again at submission time.
func (s *ResponseService) AccessSurvey(ctx context.Context, surveyID int64, token string) (domains.SurveyAccess, error) {
	invitation, err := s.resolveInvitation(ctx, token, surveyID, time.Now().UTC())
	if err != nil {
		return domains.SurveyAccess{}, err
	}

	survey, err := s.surveys.GetSurvey(ctx, surveyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.SurveyAccess{}, ErrInvitationNotFound
		}
		slog.Error("GetSurvey failed", "err", err, "survey_id", surveyID)
		return domains.SurveyAccess{}, err
	}

	questions, err := s.surveys.ListQuestions(ctx, surveyID)
	if err != nil {
		slog.Error("ListQuestions failed", "err", err, "survey_id", surveyID)
		return domains.SurveyAccess{}, err
	}

	return domains.SurveyAccess{
		Survey:     survey,
		Questions:  questions,
		Invitation: invitation,
	}, nil
}

// SubmitResponse re-validates the invitation against the server clock —
// the form-load check is advisory only — then persists the response and
// consumes one use atomically through the store. Anonymous respondents
// leave user_id null.
func (s *ResponseService) SubmitResponse(ctx context.Context, submit domains.ResponseSubmit) (domains.Response, error) {
	now := time.Now().UTC()

	invitation, err := s.resolveInvitation(ctx, submit.Token, submit.SurveyID, now)
	if err != nil {
		return domains.Response{}, err
	}

	questions, err := s.surveys.ListQuestions(ctx, submit.SurveyID)
	if err != nil {
		slog.Error("ListQuestions failed", "err", err, "survey_id", submit.SurveyID)
		return domains.Response{}, err
	}
	if err := ValidateAnswers(questions, submit.Answers); err != nil {
		return domains.Response{}, err
	}

	respondentID := submit.RespondentID
	if respondentID == "" {
		respondentID = uuid.NewString()
	}

	saved, err := s.responses.SubmitResponse(ctx, domains.ResponseToSave{
		SurveyID:       submit.SurveyID,
		InvitationID:   invitation.ID,
		RespondentID:   respondentID,
		RespondentName: submit.RespondentName,
		CountryCode:    submit.CountryCode,
		Role:           submit.Role,
		Answers:        submit.Answers,
		SubmittedAt:    now,
	})
	if err != nil {
		if errors.Is(err, storage.ErrLimitReached) {
			// Lost the race against a concurrent redemption.
			return domains.Response{}, ErrInvitationExhausted
		}
		slog.Error("SubmitResponse failed", "err", err, "invitation_id", invitation.ID)
		return domains.Response{}, err
	}

	return saved, nil
}

func (s *ResponseService) DeleteResponse(ctx context.Context, ownerID, surveyID, responseID int64) error {
	if err := s.responses.DeleteResponse(ctx, ownerID, surveyID, responseID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("DeleteResponse failed", "err", err, "response_id", responseID)
		}
		return err
	}
	return nil
}

func (s *ResponseService) resolveInvitation(ctx context.Context, token string, surveyID int64, now time.Time) (domains.Invitation, error) {
	if token == "" || surveyID == 0 {
		return domains.Invitation{}, ErrInvitationRequired
	}

	invitation, err := s.invitations.FindInvitation(ctx, token, surveyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.Invitation{}, ErrInvitationNotFound
		}
		slog.Error("FindInvitation failed", "err", err, "survey_id", surveyID)
		return domains.Invitation{}, err
	}

	if err := CheckInvitation(invitation, now); err != nil {
		return domains.Invitation{}, err
	}

	return invitation, nil
}

// ValidateAnswers rejects malformed payloads before anything touches the
// store: missing required answers, non-numeric scale or percentage
// values, out-of-range percentages, empty required multi-selects.
func ValidateAnswers(questions []domains.Question, answers domains.AnswerSet) error {
	for _, question := range questions {
		key := strconv.FormatInt(question.ID, 10)
		value, ok := answers[key]
		if !ok || value == nil {
			if question.Required {
				return fmt.Errorf("%w: question %d requires an answer", ErrValidation, question.ID)
			}
			continue
		}

		switch question.Type {
		case domains.QuestionScale:
			number, ok := answerNumber(value)
			if !ok {
				return fmt.Errorf("%w: question %d expects a number", ErrValidation, question.ID)
			}
			if question.ScaleMin != nil && number < float64(*question.ScaleMin) {
				return fmt.Errorf("%w: question %d answer below scale minimum", ErrValidation, question.ID)
			}
			if question.ScaleMax != nil && number > float64(*question.ScaleMax) {
				return fmt.Errorf("%w: question %d answer above scale maximum", ErrValidation, question.ID)
			}
		case domains.QuestionPercentage:
			number, ok := answerNumber(value)
			if !ok {
				return fmt.Errorf("%w: question %d expects a number", ErrValidation, question.ID)
			}
			limit := 100.0
			if question.PercentageMax != nil {
				limit = float64(*question.PercentageMax)
			}
			if number < 0 || number > limit {
				return fmt.Errorf("%w: question %d percentage out of range", ErrValidation, question.ID)
			}
		case domains.QuestionSelect:
			if question.MultipleSelect {
				choices, ok := answerStrings(value)
				if !ok {
					return fmt.Errorf("%w: question %d expects a list of options", ErrValidation, question.ID)
				}
				if len(choices) == 0 && question.Required {
					return fmt.Errorf("%w: question %d requires at least one option", ErrValidation, question.ID)
				}
			} else {
				choice, ok := value.(string)
				if !ok {
					return fmt.Errorf("%w: question %d expects an option", ErrValidation, question.ID)
				}
				if choice == "" && question.Required {
					return fmt.Errorf("%w: question %d requires an answer", ErrValidation, question.ID)
				}
			}
		case domains.QuestionText:
			text, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: question %d expects text", ErrValidation, question.ID)
			}
			if text == "" && question.Required {
				return fmt.Errorf("%w: question %d requires an answer", ErrValidation, question.ID)
			}
		}
	}

	return nil
}
