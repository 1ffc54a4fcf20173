package domains

import (
	"time"
)

// Invitation is append-only except for used_count and is_active.
// Invariant: used_count <= max_uses whenever max_uses is set; a nil
// max_uses means unlimited redemptions.
type Invitation struct {
	ID          int64      `json:"id"`
	SurveyID    int64      `json:"survey_id"`
	Token       string     `json:"token"`
	InviteeName *string    `json:"invitee_name,omitempty"`
	Email       *string    `json:"email,omitempty"`
	MaxUses     *int       `json:"max_uses,omitempty"`
	UsedCount   int        `json:"used_count"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

type InvitationCreate struct {
	InviteeName *string    `json:"invitee_name,omitempty"`
	Email       *string    `json:"email,omitempty"`
	MaxUses     *int       `json:"max_uses,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
