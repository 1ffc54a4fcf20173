package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"surveyhub/internal/domains"
	"surveyhub/internal/storage"
)

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func TestCheckInvitationOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name       string
		invitation domains.Invitation
		want       error
	}{
		{
			name:       "valid unlimited",
			invitation: domains.Invitation{IsActive: true},
			want:       nil,
		},
		{
			name:       "valid with remaining uses",
			invitation: domains.Invitation{IsActive: true, MaxUses: intPtr(3), UsedCount: 2, ExpiresAt: timePtr(future)},
			want:       nil,
		},
		{
			name:       "inactive",
			invitation: domains.Invitation{IsActive: false, ExpiresAt: timePtr(future)},
			want:       ErrInvitationInactive,
		},
		{
			name:       "expired",
			invitation: domains.Invitation{IsActive: true, ExpiresAt: timePtr(past)},
			want:       ErrInvitationExpired,
		},
		{
			name:       "exhausted",
			invitation: domains.Invitation{IsActive: true, MaxUses: intPtr(2), UsedCount: 2},
			want:       ErrInvitationExhausted,
		},
		{
			name:       "inactive wins over expired",
			invitation: domains.Invitation{IsActive: false, ExpiresAt: timePtr(past)},
			want:       ErrInvitationInactive,
		},
		{
			name:       "inactive wins over exhausted",
			invitation: domains.Invitation{IsActive: false, MaxUses: intPtr(1), UsedCount: 1},
			want:       ErrInvitationInactive,
		},
		{
			name:       "expired wins over exhausted",
			invitation: domains.Invitation{IsActive: true, ExpiresAt: timePtr(past), MaxUses: intPtr(1), UsedCount: 1},
			want:       ErrInvitationExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckInvitation(tt.invitation, now)
			if !errors.Is(got, tt.want) {
				t.Errorf("CheckInvitation() = %v, want %v", got, tt.want)
			}
		})
	}
}

type stubInvitationProvider struct {
	invitations map[string]domains.Invitation
	findCalls   int
}

func (s *stubInvitationProvider) FindInvitation(_ context.Context, token string, surveyID int64) (domains.Invitation, error) {
	s.findCalls++
	invitation, ok := s.invitations[token]
	if !ok || invitation.SurveyID != surveyID {
		return domains.Invitation{}, storage.ErrNotFound
	}
	return invitation, nil
}

func (s *stubInvitationProvider) CreateInvitation(_ context.Context, surveyID, _ int64, create domains.InvitationCreate, token string) (domains.Invitation, error) {
	invitation := domains.Invitation{
		ID:          int64(len(s.invitations) + 1),
		SurveyID:    surveyID,
		Token:       token,
		InviteeName: create.InviteeName,
		Email:       create.Email,
		MaxUses:     create.MaxUses,
		ExpiresAt:   create.ExpiresAt,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if s.invitations == nil {
		s.invitations = make(map[string]domains.Invitation)
	}
	s.invitations[token] = invitation
	return invitation, nil
}

func (s *stubInvitationProvider) ListInvitations(_ context.Context, _, surveyID int64) ([]domains.Invitation, error) {
	var out []domains.Invitation
	for _, invitation := range s.invitations {
		if invitation.SurveyID == surveyID {
			out = append(out, invitation)
		}
	}
	return out, nil
}

func (s *stubInvitationProvider) SetInvitationActive(_ context.Context, _, _, invitationID int64, active bool) (domains.Invitation, error) {
	for token, invitation := range s.invitations {
		if invitation.ID == invitationID {
			invitation.IsActive = active
			s.invitations[token] = invitation
			return invitation, nil
		}
	}
	return domains.Invitation{}, storage.ErrNotFound
}

func (s *stubInvitationProvider) DeleteInvitation(_ context.Context, _, _, invitationID int64) error {
	for token, invitation := range s.invitations {
		if invitation.ID == invitationID {
			delete(s.invitations, token)
			return nil
		}
	}
	return storage.ErrNotFound
}

func TestValidateUnknownToken(t *testing.T) {
	svc := NewInvitationService(&stubInvitationProvider{})

	_, err := svc.Validate(context.Background(), "no-such-token", 1)
	if !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("Validate() = %v, want %v", err, ErrInvitationNotFound)
	}
}

func TestValidateMissingToken(t *testing.T) {
	svc := NewInvitationService(&stubInvitationProvider{})

	_, err := svc.Validate(context.Background(), "", 1)
	if !errors.Is(err, ErrInvitationRequired) {
		t.Fatalf("Validate() = %v, want %v", err, ErrInvitationRequired)
	}
}

func TestValidateScopedToSurvey(t *testing.T) {
	provider := &stubInvitationProvider{invitations: map[string]domains.Invitation{
		"tok": {ID: 1, SurveyID: 7, Token: "tok", IsActive: true},
	}}
	svc := NewInvitationService(provider)

	if _, err := svc.Validate(context.Background(), "tok", 7); err != nil {
		t.Fatalf("Validate() for owning survey: %v", err)
	}
	if _, err := svc.Validate(context.Background(), "tok", 8); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("Validate() for other survey = %v, want %v", err, ErrInvitationNotFound)
	}
}

func TestValidateDoesNotConsume(t *testing.T) {
	provider := &stubInvitationProvider{invitations: map[string]domains.Invitation{
		"tok": {ID: 1, SurveyID: 7, Token: "tok", IsActive: true, MaxUses: intPtr(1)},
	}}
	svc := NewInvitationService(provider)

	for i := 0; i < 5; i++ {
		invitation, err := svc.Validate(context.Background(), "tok", 7)
		if err != nil {
			t.Fatalf("Validate() attempt %d: %v", i, err)
		}
		if invitation.UsedCount != 0 {
			t.Fatalf("Validate() mutated used_count to %d", invitation.UsedCount)
		}
	}
}

func TestCreateInvitationValidation(t *testing.T) {
	svc := NewInvitationService(&stubInvitationProvider{})

	if _, err := svc.CreateInvitation(context.Background(), 1, 1, domains.InvitationCreate{MaxUses: intPtr(0)}); !errors.Is(err, ErrValidation) {
		t.Errorf("CreateInvitation(max_uses=0) = %v, want %v", err, ErrValidation)
	}

	past := time.Now().UTC().Add(-time.Hour)
	if _, err := svc.CreateInvitation(context.Background(), 1, 1, domains.InvitationCreate{ExpiresAt: timePtr(past)}); !errors.Is(err, ErrValidation) {
		t.Errorf("CreateInvitation(past expiry) = %v, want %v", err, ErrValidation)
	}
}

func TestCreateInvitationTokensUnique(t *testing.T) {
	provider := &stubInvitationProvider{}
	svc := NewInvitationService(provider)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		invitation, err := svc.CreateInvitation(context.Background(), 1, 1, domains.InvitationCreate{})
		if err != nil {
			t.Fatalf("CreateInvitation(): %v", err)
		}
		if invitation.Token == "" {
			t.Fatal("CreateInvitation() returned empty token")
		}
		if seen[invitation.Token] {
			t.Fatalf("duplicate token %q", invitation.Token)
		}
		seen[invitation.Token] = true
	}
}
