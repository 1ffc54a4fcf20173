package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surveyhub/internal/domains"
	"surveyhub/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvitationProvider struct {
	db *pgxpool.Pool
}

func NewInvitationProvider(db *pgxpool.Pool) *InvitationProvider {
	return &InvitationProvider{
		db: db,
	}
}

const invitationColumns = `id, survey_id, token, invitee_name, email, max_uses, used_count, expires_at, is_active, created_at`

func (p InvitationProvider) CreateInvitation(ctx context.Context, surveyID, ownerID int64, create domains.InvitationCreate, token string) (domains.Invitation, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return domains.Invitation{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var checkedID int64
	if err := tx.QueryRow(ctx,
		`SELECT id FROM surveys WHERE id = $1 AND owner_id = $2`,
		surveyID, ownerID,
	).Scan(&checkedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Invitation{}, fmt.Errorf("verify survey ownership: %w", storage.ErrNotFound)
		}
		return domains.Invitation{}, fmt.Errorf("verify survey ownership: %w", err)
	}

	const insertInvitation = `
		INSERT INTO invitations (survey_id, token, invitee_name, email, max_uses, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING ` + invitationColumns

	row, err := tx.Query(ctx, insertInvitation,
		surveyID,
		token,
		create.InviteeName,
		create.Email,
		create.MaxUses,
		create.ExpiresAt,
	)
	if err != nil {
		return domains.Invitation{}, err
	}
	invitation, err := pgx.CollectOneRow(row, pgx.RowToStructByName[domains.Invitation])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domains.Invitation{}, fmt.Errorf("insert invitation: %w", storage.ErrConflict)
		}
		return domains.Invitation{}, fmt.Errorf("insert invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Invitation{}, fmt.Errorf("commit: %w", err)
	}

	return invitation, nil
}

// FindInvitation is scoped by survey as well as token: a token minted for
// another survey must come back as not found, not as that survey's record.
func (p InvitationProvider) FindInvitation(ctx context.Context, token string, surveyID int64) (domains.Invitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE token = $1 AND survey_id = $2`

	row, err := p.db.Query(ctx, query, token, surveyID)
	if err != nil {
		return domains.Invitation{}, fmt.Errorf("find invitation: %w", err)
	}
	invitation, err := pgx.CollectOneRow(row, pgx.RowToStructByName[domains.Invitation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Invitation{}, fmt.Errorf("find invitation: %w", storage.ErrNotFound)
		}
		return domains.Invitation{}, fmt.Errorf("find invitation: %w", err)
	}
	return invitation, nil
}

func (p InvitationProvider) ListInvitations(ctx context.Context, ownerID, surveyID int64) ([]domains.Invitation, error) {
	const query = `
		SELECT i.id, i.survey_id, i.token, i.invitee_name, i.email, i.max_uses,
		       i.used_count, i.expires_at, i.is_active, i.created_at
		FROM invitations i
		JOIN surveys s ON s.id = i.survey_id
		WHERE s.owner_id = $1 AND i.survey_id = $2
		ORDER BY i.id`

	rows, err := p.db.Query(ctx, query, ownerID, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	invitations, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Invitation])
	if err != nil {
		return nil, fmt.Errorf("collect invitations: %w", err)
	}
	return invitations, nil
}

func (p InvitationProvider) SetInvitationActive(ctx context.Context, surveyID, ownerID, invitationID int64, active bool) (domains.Invitation, error) {
	const query = `
		UPDATE invitations i
		SET is_active = $1
		FROM surveys s
		WHERE i.id = $2
		  AND i.survey_id = $3
		  AND s.id = i.survey_id
		  AND s.owner_id = $4
		RETURNING i.id, i.survey_id, i.token, i.invitee_name, i.email, i.max_uses,
		          i.used_count, i.expires_at, i.is_active, i.created_at`

	row, err := p.db.Query(ctx, query, active, invitationID, surveyID, ownerID)
	if err != nil {
		return domains.Invitation{}, fmt.Errorf("toggle invitation: %w", err)
	}
	invitation, err := pgx.CollectOneRow(row, pgx.RowToStructByName[domains.Invitation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Invitation{}, fmt.Errorf("toggle invitation: %w", storage.ErrNotFound)
		}
		return domains.Invitation{}, fmt.Errorf("toggle invitation: %w", err)
	}
	return invitation, nil
}

func (p InvitationProvider) DeleteInvitation(ctx context.Context, surveyID, ownerID, invitationID int64) error {
	const query = `
		DELETE FROM invitations i
		USING surveys s
		WHERE i.id = $1
		  AND i.survey_id = $2
		  AND s.id = i.survey_id
		  AND s.owner_id = $3
		RETURNING i.id`

	var deletedID int64
	if err := p.db.QueryRow(ctx, query, invitationID, surveyID, ownerID).Scan(&deletedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("delete invitation: %w", storage.ErrNotFound)
		}
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

// ConditionallyIncrementUsage consumes one use if and only if the limit has
// not been reached yet. The WHERE guard makes competing redemptions
// serialize on the row; the affected-row count is the verdict.
func (p InvitationProvider) ConditionallyIncrementUsage(ctx context.Context, invitationID int64) (bool, error) {
	const query = `
		UPDATE invitations
		SET used_count = used_count + 1
		WHERE id = $1
		  AND (max_uses IS NULL OR used_count < max_uses)`

	tag, err := p.db.Exec(ctx, query, invitationID)
	if err != nil {
		return false, fmt.Errorf("increment invitation usage: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeactivateExpired is a bookkeeping sweep; validation checks expiry on
// its own and does not depend on this running.
func (p InvitationProvider) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE invitations
		SET is_active = false
		WHERE is_active
		  AND expires_at IS NOT NULL
		  AND expires_at < $1`

	tag, err := p.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired invitations: %w", err)
	}
	return tag.RowsAffected(), nil
}
