package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"surveyhub/internal/domains"
	"surveyhub/internal/storage"

	"github.com/google/uuid"
)

type InvitationService struct {
	provider InvitationProvider
}

type InvitationProvider interface {
	CreateInvitation(ctx context.Context, surveyID, ownerID int64, create domains.InvitationCreate, token string) (domains.Invitation, error)
	FindInvitation(ctx context.Context, token string, surveyID int64) (domains.Invitation, error)
	ListInvitations(ctx context.Context, ownerID, surveyID int64) ([]domains.Invitation, error)
	SetInvitationActive(ctx context.Context, surveyID, ownerID, invitationID int64, active bool) (domains.Invitation, error)
	DeleteInvitation(ctx context.Context, surveyID, ownerID, invitationID int64) error
}

func NewInvitationService(provider InvitationProvider) *InvitationService {
	return &InvitationService{
		provider: provider,
	}
}

// CheckInvitation applies the redemption checks in their contractual
// order: inactive, expired, exhausted. The first failing check wins, so
// an inactive invitation reports inactive even when it is also expired
// or over its limit. Read-only: calling it never consumes a use.
func CheckInvitation(invitation domains.Invitation, now time.Time) error {
	if !invitation.IsActive {
		return ErrInvitationInactive
	}
	if invitation.ExpiresAt != nil && invitation.ExpiresAt.Before(now) {
		return ErrInvitationExpired
	}
	if invitation.MaxUses != nil && invitation.UsedCount >= *invitation.MaxUses {
		return ErrInvitationExhausted
	}
	return nil
}

// Validate resolves a token within its survey and runs CheckInvitation
// against the server clock. Safe to call repeatedly; a form can
// re-validate on every load without mutating state.
func (s *InvitationService) Validate(ctx context.Context, token string, surveyID int64) (domains.Invitation, error) {
	if token == "" || surveyID == 0 {
		return domains.Invitation{}, ErrInvitationRequired
	}

	invitation, err := s.provider.FindInvitation(ctx, token, surveyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.Invitation{}, ErrInvitationNotFound
		}
		slog.Error("FindInvitation failed", "err", err, "survey_id", surveyID)
		return domains.Invitation{}, err
	}

	if err := CheckInvitation(invitation, time.Now().UTC()); err != nil {
		return domains.Invitation{}, err
	}

	return invitation, nil
}

func (s *InvitationService) CreateInvitation(ctx context.Context, ownerID, surveyID int64, create domains.InvitationCreate) (domains.Invitation, error) {
	if create.MaxUses != nil && *create.MaxUses < 1 {
		return domains.Invitation{}, fmt.Errorf("%w: max_uses must be positive", ErrValidation)
	}
	if create.ExpiresAt != nil && create.ExpiresAt.Before(time.Now().UTC()) {
		return domains.Invitation{}, fmt.Errorf("%w: expires_at is in the past", ErrValidation)
	}

	token := uuid.NewString()
	invitation, err := s.provider.CreateInvitation(ctx, surveyID, ownerID, create, token)
	if err != nil {
		slog.Error("CreateInvitation failed", "err", err, "owner_id", ownerID, "survey_id", surveyID)
		return domains.Invitation{}, err
	}

	return invitation, nil
}

func (s *InvitationService) ListInvitations(ctx context.Context, ownerID, surveyID int64) ([]domains.Invitation, error) {
	invitations, err := s.provider.ListInvitations(ctx, ownerID, surveyID)
	if err != nil {
		slog.Error("ListInvitations failed", "err", err, "owner_id", ownerID, "survey_id", surveyID)
		return nil, err
	}
	return invitations, nil
}

func (s *InvitationService) SetInvitationActive(ctx context.Context, ownerID, surveyID, invitationID int64, active bool) (domains.Invitation, error) {
	invitation, err := s.provider.SetInvitationActive(ctx, surveyID, ownerID, invitationID, active)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("SetInvitationActive failed", "err", err, "invitation_id", invitationID)
		}
		return domains.Invitation{}, err
	}
	return invitation, nil
}

func (s *InvitationService) DeleteInvitation(ctx context.Context, ownerID, surveyID, invitationID int64) error {
	if err := s.provider.DeleteInvitation(ctx, surveyID, ownerID, invitationID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("DeleteInvitation failed", "err", err, "invitation_id", invitationID)
		}
		return err
	}
	return nil
}
