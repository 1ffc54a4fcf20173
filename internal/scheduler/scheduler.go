package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type InvitationLifecycleProvider interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// InvitationSweeper periodically flips expired invitations inactive so
// admin listings reflect reality. Validation checks expiry on its own;
// nothing depends on the sweep having run.
type InvitationSweeper struct {
	provider InvitationLifecycleProvider
	interval time.Duration
}

func NewInvitationSweeper(provider InvitationLifecycleProvider, interval time.Duration) *InvitationSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &InvitationSweeper{provider: provider, interval: interval}
}

func (s *InvitationSweeper) Start(ctx context.Context) {
	if s.provider == nil {
		slog.Warn("invitation sweeper skipped: no provider configured")
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *InvitationSweeper) run(ctx context.Context) {
	now := time.Now().UTC()
	if expired, err := s.provider.DeactivateExpired(ctx, now); err != nil {
		slog.Error("deactivate expired invitations failed", "err", err)
	} else if expired > 0 {
		slog.Info("invitations deactivated", "count", expired)
	}
}
