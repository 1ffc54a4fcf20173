package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"surveyhub/internal/domains"
	"surveyhub/internal/storage"
)

type stubResponseStore struct {
	mu       sync.Mutex
	maxUses  *int
	used     int
	saved    []domains.Response
	deleted  []int64
	nextID   int64
	failWith error
}

func (s *stubResponseStore) SubmitResponse(_ context.Context, payload domains.ResponseToSave) (domains.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return domains.Response{}, s.failWith
	}
	if s.maxUses != nil && s.used >= *s.maxUses {
		return domains.Response{}, fmt.Errorf("consume invitation use: %w", storage.ErrLimitReached)
	}
	s.used++
	s.nextID++
	response := domains.Response{
		ID:             s.nextID,
		SurveyID:       payload.SurveyID,
		InvitationID:   &payload.InvitationID,
		RespondentID:   payload.RespondentID,
		RespondentName: payload.RespondentName,
		CountryCode:    payload.CountryCode,
		Role:           payload.Role,
		Answers:        payload.Answers,
		SubmittedAt:    payload.SubmittedAt,
	}
	s.saved = append(s.saved, response)
	return response, nil
}

func (s *stubResponseStore) DeleteResponse(_ context.Context, _, _, responseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, responseID)
	return nil
}

func (s *stubResponseStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

type stubSurveyReader struct {
	survey    domains.Survey
	questions []domains.Question
}

func (s *stubSurveyReader) GetSurvey(_ context.Context, surveyID int64) (domains.Survey, error) {
	if s.survey.ID != surveyID {
		return domains.Survey{}, storage.ErrNotFound
	}
	return s.survey, nil
}

func (s *stubSurveyReader) ListQuestions(_ context.Context, _ int64) ([]domains.Question, error) {
	return s.questions, nil
}

func newSubmissionFixture(maxUses *int) (*ResponseService, *stubResponseStore) {
	store := &stubResponseStore{maxUses: maxUses}
	surveys := &stubSurveyReader{
		survey: domains.Survey{ID: 7, Title: "Onboarding feedback", IsActive: true},
		questions: []domains.Question{
			{ID: 1, SurveyID: 7, Text: "How satisfied are you?", Type: domains.QuestionScale, ScaleMin: intPtr(1), ScaleMax: intPtr(5)},
		},
	}
	invitations := &stubInvitationProvider{invitations: map[string]domains.Invitation{
		"tok": {ID: 3, SurveyID: 7, Token: "tok", IsActive: true, MaxUses: maxUses},
	}}
	return NewResponseService(store, surveys, invitations), store
}

func TestSubmitResponse(t *testing.T) {
	svc, store := newSubmissionFixture(nil)

	saved, err := svc.SubmitResponse(context.Background(), domains.ResponseSubmit{
		SurveyID:       7,
		Token:          "tok",
		RespondentName: "Ada",
		CountryCode:    "GB",
		Role:           "engineer",
		Answers:        domains.AnswerSet{"1": float64(4)},
	})
	if err != nil {
		t.Fatalf("SubmitResponse(): %v", err)
	}
	if saved.RespondentID == "" {
		t.Error("expected a generated respondent id for anonymous submission")
	}
	if saved.InvitationID == nil || *saved.InvitationID != 3 {
		t.Errorf("InvitationID = %v, want 3", saved.InvitationID)
	}
	if store.savedCount() != 1 {
		t.Errorf("saved responses = %d, want 1", store.savedCount())
	}
}

func TestSubmitResponseRejectedBeforeStore(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)

	tests := []struct {
		name       string
		invitation *domains.Invitation
		token      string
		want       error
	}{
		{name: "missing token", token: "", want: ErrInvitationRequired},
		{name: "unknown token", token: "other", want: ErrInvitationNotFound},
		{
			name:       "inactive",
			invitation: &domains.Invitation{ID: 3, SurveyID: 7, Token: "tok", IsActive: false},
			token:      "tok",
			want:       ErrInvitationInactive,
		},
		{
			name:       "expired",
			invitation: &domains.Invitation{ID: 3, SurveyID: 7, Token: "tok", IsActive: true, ExpiresAt: timePtr(past)},
			token:      "tok",
			want:       ErrInvitationExpired,
		},
		{
			name:       "exhausted",
			invitation: &domains.Invitation{ID: 3, SurveyID: 7, Token: "tok", IsActive: true, MaxUses: intPtr(1), UsedCount: 1},
			token:      "tok",
			want:       ErrInvitationExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newSubmissionFixture(nil)
			if tt.invitation != nil {
				svc.invitations = &stubInvitationProvider{invitations: map[string]domains.Invitation{
					tt.invitation.Token: *tt.invitation,
				}}
			}

			_, err := svc.SubmitResponse(context.Background(), domains.ResponseSubmit{
				SurveyID: 7,
				Token:    tt.token,
				Answers:  domains.AnswerSet{"1": float64(3)},
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("SubmitResponse() = %v, want %v", err, tt.want)
			}
			if store.savedCount() != 0 {
				t.Errorf("rejected submission persisted %d responses", store.savedCount())
			}
		})
	}
}

// A burst of submissions racing for the last uses of a limited invitation
// must persist exactly max_uses responses; the rest see exhausted.
func TestSubmitResponseConcurrentLimit(t *testing.T) {
	const attempts = 32
	maxUses := 5

	svc, store := newSubmissionFixture(&maxUses)

	var accepted, exhausted, unexpected atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SubmitResponse(context.Background(), domains.ResponseSubmit{
				SurveyID:     7,
				Token:        "tok",
				RespondentID: fmt.Sprintf("respondent-%d", i),
				Answers:      domains.AnswerSet{"1": float64(3)},
			})
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrInvitationExhausted):
				exhausted.Add(1)
			default:
				unexpected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if unexpected.Load() != 0 {
		t.Fatalf("%d submissions failed with unexpected errors", unexpected.Load())
	}
	if accepted.Load() != int64(maxUses) {
		t.Errorf("accepted = %d, want %d", accepted.Load(), maxUses)
	}
	if exhausted.Load() != int64(attempts-maxUses) {
		t.Errorf("exhausted = %d, want %d", exhausted.Load(), attempts-maxUses)
	}
	if store.savedCount() != maxUses {
		t.Errorf("persisted responses = %d, want %d", store.savedCount(), maxUses)
	}
}

func TestSubmitResponseStoreRace(t *testing.T) {
	svc, store := newSubmissionFixture(nil)
	store.failWith = fmt.Errorf("consume invitation use: %w", storage.ErrLimitReached)

	_, err := svc.SubmitResponse(context.Background(), domains.ResponseSubmit{
		SurveyID: 7,
		Token:    "tok",
		Answers:  domains.AnswerSet{"1": float64(3)},
	})
	if !errors.Is(err, ErrInvitationExhausted) {
		t.Fatalf("SubmitResponse() = %v, want %v", err, ErrInvitationExhausted)
	}
}

func TestAccessSurvey(t *testing.T) {
	svc, store := newSubmissionFixture(intPtr(1))

	access, err := svc.AccessSurvey(context.Background(), 7, "tok")
	if err != nil {
		t.Fatalf("AccessSurvey(): %v", err)
	}
	if access.Survey.ID != 7 {
		t.Errorf("Survey.ID = %d, want 7", access.Survey.ID)
	}
	if len(access.Questions) != 1 {
		t.Errorf("len(Questions) = %d, want 1", len(access.Questions))
	}
	if store.savedCount() != 0 {
		t.Error("AccessSurvey persisted a response")
	}

	// Loading the form never consumes a use.
	if _, err := svc.AccessSurvey(context.Background(), 7, "tok"); err != nil {
		t.Fatalf("AccessSurvey() second load: %v", err)
	}
}

func TestValidateAnswers(t *testing.T) {
	questions := []domains.Question{
		{ID: 1, Type: domains.QuestionScale, ScaleMin: intPtr(1), ScaleMax: intPtr(5), Required: true},
		{ID: 2, Type: domains.QuestionSelect, Options: []string{"red", "blue"}},
		{ID: 3, Type: domains.QuestionSelect, Options: []string{"a", "b", "c"}, MultipleSelect: true, Required: true},
		{ID: 4, Type: domains.QuestionPercentage},
		{ID: 5, Type: domains.QuestionText},
	}

	valid := domains.AnswerSet{
		"1": float64(4),
		"2": "red",
		"3": []any{"a", "c"},
		"4": float64(75),
		"5": "free text",
	}

	tests := []struct {
		name    string
		answers domains.AnswerSet
		wantErr bool
	}{
		{name: "all valid", answers: valid, wantErr: false},
		{name: "optional answers omitted", answers: domains.AnswerSet{"1": float64(3), "3": []any{"b"}}, wantErr: false},
		{name: "missing required scale", answers: domains.AnswerSet{"3": []any{"b"}}, wantErr: true},
		{name: "scale not a number", answers: domains.AnswerSet{"1": "four", "3": []any{"b"}}, wantErr: true},
		{name: "scale below minimum", answers: domains.AnswerSet{"1": float64(0), "3": []any{"b"}}, wantErr: true},
		{name: "scale above maximum", answers: domains.AnswerSet{"1": float64(6), "3": []any{"b"}}, wantErr: true},
		{name: "percentage out of range", answers: domains.AnswerSet{"1": float64(3), "3": []any{"b"}, "4": float64(150)}, wantErr: true},
		{name: "percentage negative", answers: domains.AnswerSet{"1": float64(3), "3": []any{"b"}, "4": float64(-1)}, wantErr: true},
		{name: "empty required multi-select", answers: domains.AnswerSet{"1": float64(3), "3": []any{}}, wantErr: true},
		{name: "multi-select not a list", answers: domains.AnswerSet{"1": float64(3), "3": "a"}, wantErr: true},
		{name: "single select not a string", answers: domains.AnswerSet{"1": float64(3), "2": float64(1), "3": []any{"b"}}, wantErr: true},
		{name: "text not a string", answers: domains.AnswerSet{"1": float64(3), "3": []any{"b"}, "5": float64(9)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnswers(questions, tt.answers)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ValidateAnswers() = %v, want %v", err, ErrValidation)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAnswers(): %v", err)
			}
		})
	}
}
