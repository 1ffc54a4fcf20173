package service

import (
	"context"
	"errors"
	"testing"

	"surveyhub/internal/domains"
	"surveyhub/internal/storage"
)

type stubSurveyProvider struct {
	survey    domains.Survey
	questions []domains.Question
	replaced  [][]domains.QuestionCreate
	nextID    int64
}

func (s *stubSurveyProvider) SaveSurvey(_ context.Context, payload domains.SurveyToSave) (domains.Survey, []domains.Question, error) {
	s.nextID++
	survey := domains.Survey{
		ID:          s.nextID,
		OwnerID:     payload.OwnerID,
		Title:       payload.Title,
		Description: payload.Description,
		IsActive:    payload.IsActive,
		ImageURL:    payload.ImageURL,
	}
	questions := make([]domains.Question, 0, len(payload.Questions))
	for i, question := range payload.Questions {
		questions = append(questions, domains.Question{
			ID:       int64(i + 1),
			SurveyID: survey.ID,
			Text:     question.Text,
			Type:     question.Type,
			Position: i,
		})
	}
	s.survey = survey
	s.questions = questions
	return survey, questions, nil
}

func (s *stubSurveyProvider) GetSurveyByID(_ context.Context, _, surveyID int64) (domains.Survey, error) {
	if s.survey.ID != surveyID {
		return domains.Survey{}, storage.ErrNotFound
	}
	return s.survey, nil
}

func (s *stubSurveyProvider) GetAllSurveysByOwner(_ context.Context, _ int64) ([]domains.SurveySummary, error) {
	return nil, nil
}

func (s *stubSurveyProvider) UpdateSurvey(_ context.Context, surveyID, _ int64, _ domains.SurveyUpdate) (domains.Survey, error) {
	if s.survey.ID != surveyID {
		return domains.Survey{}, storage.ErrNotFound
	}
	return s.survey, nil
}

func (s *stubSurveyProvider) DeleteSurvey(_ context.Context, surveyID, _ int64) error {
	if s.survey.ID != surveyID {
		return storage.ErrNotFound
	}
	s.survey = domains.Survey{}
	return nil
}

func (s *stubSurveyProvider) ReplaceQuestions(_ context.Context, surveyID, _ int64, questions []domains.QuestionCreate) ([]domains.Question, error) {
	if s.survey.ID != surveyID {
		return nil, storage.ErrNotFound
	}
	s.replaced = append(s.replaced, questions)
	out := make([]domains.Question, 0, len(questions))
	for i, question := range questions {
		s.nextID++
		out = append(out, domains.Question{
			ID:       s.nextID,
			SurveyID: surveyID,
			Text:     question.Text,
			Type:     question.Type,
			Position: i,
		})
	}
	s.questions = out
	return out, nil
}

func (s *stubSurveyProvider) ListQuestions(_ context.Context, _ int64) ([]domains.Question, error) {
	return s.questions, nil
}

func newSurveyFixture() (*SurveyService, *stubSurveyProvider) {
	provider := &stubSurveyProvider{}
	return NewSurveyService(provider, &stubInvitationProvider{}), provider
}

func TestCreateSurveyDefaultsActive(t *testing.T) {
	svc, _ := newSurveyFixture()

	details, err := svc.CreateSurvey(context.Background(), 1, domains.SurveyCreate{Title: "Quarterly pulse"})
	if err != nil {
		t.Fatalf("CreateSurvey(): %v", err)
	}
	if !details.Survey.IsActive {
		t.Error("new survey should default to active")
	}
}

func TestCreateSurveyRequiresTitle(t *testing.T) {
	svc, _ := newSurveyFixture()

	_, err := svc.CreateSurvey(context.Background(), 1, domains.SurveyCreate{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("CreateSurvey() = %v, want %v", err, ErrValidation)
	}
}

func TestValidateQuestions(t *testing.T) {
	tests := []struct {
		name     string
		question domains.QuestionCreate
		wantErr  bool
	}{
		{name: "text", question: domains.QuestionCreate{Text: "Any comments?", Type: domains.QuestionText}},
		{name: "scale", question: domains.QuestionCreate{Text: "Rate us", Type: domains.QuestionScale, ScaleMin: intPtr(1), ScaleMax: intPtr(10)}},
		{name: "select", question: domains.QuestionCreate{Text: "Pick one", Type: domains.QuestionSelect, Options: []string{"a", "b"}}},
		{name: "percentage", question: domains.QuestionCreate{Text: "How much?", Type: domains.QuestionPercentage}},
		{name: "empty text", question: domains.QuestionCreate{Type: domains.QuestionText}, wantErr: true},
		{name: "scale without bounds", question: domains.QuestionCreate{Text: "Rate us", Type: domains.QuestionScale}, wantErr: true},
		{name: "inverted scale", question: domains.QuestionCreate{Text: "Rate us", Type: domains.QuestionScale, ScaleMin: intPtr(5), ScaleMax: intPtr(1)}, wantErr: true},
		{name: "select without options", question: domains.QuestionCreate{Text: "Pick one", Type: domains.QuestionSelect}, wantErr: true},
		{name: "non-positive percentage max", question: domains.QuestionCreate{Text: "How much?", Type: domains.QuestionPercentage, PercentageMax: intPtr(0)}, wantErr: true},
		{name: "unknown type", question: domains.QuestionCreate{Text: "??", Type: "matrix"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestions([]domains.QuestionCreate{tt.question})
			if tt.wantErr != (err != nil) {
				t.Errorf("validateQuestions() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("validateQuestions() = %v, want wrapped %v", err, ErrValidation)
			}
		})
	}
}

func TestReplaceQuestionsReassignsIDs(t *testing.T) {
	svc, provider := newSurveyFixture()

	details, err := svc.CreateSurvey(context.Background(), 1, domains.SurveyCreate{
		Title: "Quarterly pulse",
		Questions: []domains.QuestionCreate{
			{Text: "First", Type: domains.QuestionText},
		},
	})
	if err != nil {
		t.Fatalf("CreateSurvey(): %v", err)
	}

	replaced, err := svc.ReplaceQuestions(context.Background(), 1, details.Survey.ID, []domains.QuestionCreate{
		{Text: "First", Type: domains.QuestionText},
		{Text: "Second", Type: domains.QuestionText},
	})
	if err != nil {
		t.Fatalf("ReplaceQuestions(): %v", err)
	}
	if len(replaced) != 2 {
		t.Fatalf("len(replaced) = %d, want 2", len(replaced))
	}
	if replaced[0].ID == details.Questions[0].ID {
		t.Error("replace should reassign question ids, old id survived")
	}
	if len(provider.replaced) != 1 {
		t.Fatalf("provider saw %d replace calls, want 1", len(provider.replaced))
	}
}

func TestUpdateSurveyNoChanges(t *testing.T) {
	svc, _ := newSurveyFixture()

	details, err := svc.CreateSurvey(context.Background(), 1, domains.SurveyCreate{Title: "Quarterly pulse"})
	if err != nil {
		t.Fatalf("CreateSurvey(): %v", err)
	}

	got, err := svc.UpdateSurvey(context.Background(), 1, details.Survey.ID, domains.SurveyUpdate{})
	if err != nil {
		t.Fatalf("UpdateSurvey(): %v", err)
	}
	if got.Title != "Quarterly pulse" {
		t.Errorf("Title = %q, want unchanged", got.Title)
	}
}

func TestUpdateSurveyEmptyTitle(t *testing.T) {
	svc, _ := newSurveyFixture()

	empty := ""
	_, err := svc.UpdateSurvey(context.Background(), 1, 1, domains.SurveyUpdate{Title: &empty})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("UpdateSurvey() = %v, want %v", err, ErrValidation)
	}
}
