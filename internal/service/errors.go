package service

import "errors"

var (
	ErrPasswordIncorrect = errors.New("password incorrect")
	ErrTokenIncorrect    = errors.New("token incorrect")

	// Invitation failures are user-facing and non-retryable without a new
	// link. Their precedence is fixed: not found, inactive, expired,
	// exhausted — the first failing check wins.
	ErrInvitationRequired  = errors.New("invitation required")
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrInvitationInactive  = errors.New("invitation inactive")
	ErrInvitationExpired   = errors.New("invitation expired")
	ErrInvitationExhausted = errors.New("invitation usage limit reached")

	ErrValidation = errors.New("invalid submission")
)
