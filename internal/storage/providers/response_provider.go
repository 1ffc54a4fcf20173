package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"surveyhub/internal/domains"
	"surveyhub/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResponseProvider struct {
	db *pgxpool.Pool
}

func NewResponseProvider(db *pgxpool.Pool) *ResponseProvider {
	return &ResponseProvider{
		db: db,
	}
}

// SubmitResponse persists a response and consumes one invitation use in a
// single transaction. The guarded increment runs first: if the limit was
// reached between validation and now, nothing is written and the caller
// gets storage.ErrLimitReached. A response row therefore never exists
// without its usage increment, and competing redemptions of the same
// invitation serialize on the invitation row.
func (p ResponseProvider) SubmitResponse(ctx context.Context, payload domains.ResponseToSave) (domains.Response, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return domains.Response{}, fmt.Errorf("begin response tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const consumeUse = `
		UPDATE invitations
		SET used_count = used_count + 1
		WHERE id = $1
		  AND is_active
		  AND (expires_at IS NULL OR expires_at >= $2)
		  AND (max_uses IS NULL OR used_count < max_uses)`

	tag, err := tx.Exec(ctx, consumeUse, payload.InvitationID, payload.SubmittedAt)
	if err != nil {
		return domains.Response{}, fmt.Errorf("consume invitation use: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domains.Response{}, fmt.Errorf("consume invitation use: %w", storage.ErrLimitReached)
	}

	answersJSON, err := json.Marshal(payload.Answers)
	if err != nil {
		return domains.Response{}, fmt.Errorf("marshal answers: %w", err)
	}

	const insertResponse = `
		INSERT INTO responses (
			survey_id, invitation_id, user_id, respondent_id,
			respondent_name, country_code, role, answers, submitted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, survey_id, invitation_id, user_id, respondent_id,
		          respondent_name, country_code, role, answers, submitted_at`

	row := tx.QueryRow(ctx, insertResponse,
		payload.SurveyID,
		payload.InvitationID,
		payload.UserID,
		payload.RespondentID,
		payload.RespondentName,
		payload.CountryCode,
		payload.Role,
		answersJSON,
		payload.SubmittedAt,
	)
	response, err := scanResponse(row)
	if err != nil {
		return domains.Response{}, fmt.Errorf("insert response: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Response{}, fmt.Errorf("commit response: %w", err)
	}

	return response, nil
}

func (p ResponseProvider) ListResponses(ctx context.Context, ownerID, surveyID int64, filter domains.ResponseFilter) ([]domains.Response, error) {
	query := `
		SELECT r.id, r.survey_id, r.invitation_id, r.user_id, r.respondent_id,
		       r.respondent_name, r.country_code, r.role, r.answers, r.submitted_at
		FROM responses r
		JOIN surveys s ON s.id = r.survey_id
		WHERE s.owner_id = $1 AND r.survey_id = $2`
	args := []interface{}{ownerID, surveyID}
	idx := 3

	conditions := make([]string, 0, 2)
	if filter.CountryCode != nil {
		conditions = append(conditions, fmt.Sprintf("r.country_code = $%d", idx))
		args = append(args, *filter.CountryCode)
		idx++
	}
	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("r.role = $%d", idx))
		args = append(args, *filter.Role)
		idx++
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.submitted_at, r.id"

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var responses []domains.Response
	for rows.Next() {
		response, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}

	return responses, nil
}

func (p ResponseProvider) DeleteResponse(ctx context.Context, ownerID, surveyID, responseID int64) error {
	const query = `
		DELETE FROM responses r
		USING surveys s
		WHERE r.id = $1
		  AND r.survey_id = $2
		  AND s.id = r.survey_id
		  AND s.owner_id = $3
		RETURNING r.id`

	var deletedID int64
	if err := p.db.QueryRow(ctx, query, responseID, surveyID, ownerID).Scan(&deletedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("delete response: %w", storage.ErrNotFound)
		}
		return fmt.Errorf("delete response: %w", err)
	}
	return nil
}

func scanResponse(row pgx.Row) (domains.Response, error) {
	var (
		response    domains.Response
		answersJSON []byte
	)

	if err := row.Scan(
		&response.ID,
		&response.SurveyID,
		&response.InvitationID,
		&response.UserID,
		&response.RespondentID,
		&response.RespondentName,
		&response.CountryCode,
		&response.Role,
		&answersJSON,
		&response.SubmittedAt,
	); err != nil {
		return domains.Response{}, err
	}

	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &response.Answers); err != nil {
			return domains.Response{}, fmt.Errorf("unmarshal answers: %w", err)
		}
	}

	return response, nil
}
