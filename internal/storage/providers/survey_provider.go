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

type SurveyProvider struct {
	db *pgxpool.Pool
}

func NewSurveyProvider(db *pgxpool.Pool) *SurveyProvider {
	return &SurveyProvider{
		db: db,
	}
}

const surveyColumns = `id, owner_id, title, description, is_active, image_url, created_at`

func (s SurveyProvider) SaveSurvey(ctx context.Context, survey domains.SurveyToSave) (domains.Survey, []domains.Question, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.Survey{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertSurvey = `
		INSERT INTO surveys (owner_id, title, description, is_active, image_url)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING ` + surveyColumns

	row, err := tx.Query(ctx, insertSurvey,
		survey.OwnerID,
		survey.Title,
		survey.Description,
		survey.IsActive,
		survey.ImageURL,
	)
	if err != nil {
		return domains.Survey{}, nil, err
	}
	created, err := pgx.CollectOneRow(row, pgx.RowToStructByName[domains.Survey])
	if err != nil {
		return domains.Survey{}, nil, fmt.Errorf("insert survey: %w", err)
	}

	questions, err := insertQuestions(ctx, tx, created.ID, survey.Questions)
	if err != nil {
		return domains.Survey{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Survey{}, nil, fmt.Errorf("commit: %w", err)
	}

	return created, questions, nil
}

func (s SurveyProvider) GetSurveyByID(ctx context.Context, ownerID, surveyID int64) (domains.Survey, error) {
	const query = `
		SELECT ` + surveyColumns + `
		FROM surveys
		WHERE owner_id = $1 AND id = $2`

	row, err := s.db.Query(ctx, query, ownerID, surveyID)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("get survey: %w", err)
	}
	survey, err := pgx.CollectOneRow(row, pgx.RowToStructByName[domains.Survey])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Survey{}, fmt.Errorf("get survey: %w", storage.ErrNotFound)
		}
		return domains.Survey{}, fmt.Errorf("get survey: %w", err)
	}
	return survey, nil
}

// GetSurvey looks a survey up without owner scoping; the respondent flow
// authorizes through the invitation token instead.
func (s SurveyProvider) GetSurvey(ctx context.Context, surveyID int64) (domains.Survey, error) {
	const query = `
		SELECT ` + surveyColumns + `
		FROM surveys
		WHERE id = $1`

	row, err := s.db.Query(ctx, query, surveyID)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("get survey: %w", err)
	}
	survey, err := pgx.CollectOneRow(row, pgx.RowToStructByName[domains.Survey])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Survey{}, fmt.Errorf("get survey: %w", storage.ErrNotFound)
		}
		return domains.Survey{}, fmt.Errorf("get survey: %w", err)
	}
	return survey, nil
}

func (s SurveyProvider) GetAllSurveysByOwner(ctx context.Context, ownerID int64) ([]domains.SurveySummary, error) {
	const query = `
		SELECT
			s.id, s.owner_id, s.title, s.description, s.is_active, s.image_url, s.created_at,
			COALESCE(stats.question_count, 0) AS question_count,
			COALESCE(stats.invitation_count, 0) AS invitation_count,
			COALESCE(stats.response_count, 0) AS response_count
		FROM surveys s
		LEFT JOIN LATERAL (
			SELECT
				(SELECT COUNT(*) FROM questions q WHERE q.survey_id = s.id) AS question_count,
				(SELECT COUNT(*) FROM invitations i WHERE i.survey_id = s.id) AS invitation_count,
				(SELECT COUNT(*) FROM responses r WHERE r.survey_id = s.id) AS response_count
		) AS stats ON true
		WHERE s.owner_id = $1
		ORDER BY s.created_at DESC`

	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var result []domains.SurveySummary
	for rows.Next() {
		var summary domains.SurveySummary
		if err := rows.Scan(
			&summary.Survey.ID,
			&summary.Survey.OwnerID,
			&summary.Survey.Title,
			&summary.Survey.Description,
			&summary.Survey.IsActive,
			&summary.Survey.ImageURL,
			&summary.Survey.CreatedAt,
			&summary.QuestionCount,
			&summary.InvitationCount,
			&summary.ResponseCount,
		); err != nil {
			return nil, fmt.Errorf("scan survey summary: %w", err)
		}
		result = append(result, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate surveys: %w", err)
	}

	return result, nil
}

func (s SurveyProvider) UpdateSurvey(ctx context.Context, surveyID, ownerID int64, update domains.SurveyUpdate) (domains.Survey, error) {
	setClauses := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)
	idx := 1

	if update.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", idx))
		args = append(args, *update.Title)
		idx++
	}
	if update.Description.Present {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", idx))
		if update.Description.Value != nil {
			args = append(args, *update.Description.Value)
		} else {
			args = append(args, nil)
		}
		idx++
	}
	if update.ImageURL.Present {
		setClauses = append(setClauses, fmt.Sprintf("image_url = $%d", idx))
		if update.ImageURL.Value != nil {
			args = append(args, *update.ImageURL.Value)
		} else {
			args = append(args, nil)
		}
		idx++
	}
	if update.IsActive != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_active = $%d", idx))
		args = append(args, *update.IsActive)
		idx++
	}

	if len(setClauses) == 0 {
		return s.GetSurveyByID(ctx, ownerID, surveyID)
	}

	args = append(args, surveyID, ownerID)
	query := fmt.Sprintf(`
		UPDATE surveys
		SET %s
		WHERE id = $%d AND owner_id = $%d
		RETURNING `+surveyColumns,
		strings.Join(setClauses, ", "), idx, idx+1,
	)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("update survey: %w", err)
	}
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Survey])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Survey{}, fmt.Errorf("update survey: %w", storage.ErrNotFound)
		}
		return domains.Survey{}, fmt.Errorf("update survey: %w", err)
	}

	return updated, nil
}

// DeleteSurvey relies on ON DELETE CASCADE to drop questions, invitations
// and responses with the survey.
func (s SurveyProvider) DeleteSurvey(ctx context.Context, surveyID, ownerID int64) error {
	const query = `
		DELETE FROM surveys
		WHERE id = $1 AND owner_id = $2
		RETURNING id`

	var deletedID int64
	if err := s.db.QueryRow(ctx, query, surveyID, ownerID).Scan(&deletedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("delete survey: %w", storage.ErrNotFound)
		}
		return fmt.Errorf("delete survey: %w", err)
	}
	return nil
}

// ReplaceQuestions swaps a survey's entire question set in one transaction.
// Question ids are not stable across saves: answers persisted against the
// previous set keep their old keys and become orphaned.
func (s SurveyProvider) ReplaceQuestions(ctx context.Context, surveyID, ownerID int64, questions []domains.QuestionCreate) ([]domains.Question, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var checkedID int64
	if err := tx.QueryRow(ctx,
		`SELECT id FROM surveys WHERE id = $1 AND owner_id = $2`,
		surveyID, ownerID,
	).Scan(&checkedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("verify survey ownership: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("verify survey ownership: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE survey_id = $1`, surveyID); err != nil {
		return nil, fmt.Errorf("clear questions: %w", err)
	}

	inserted, err := insertQuestions(ctx, tx, surveyID, questions)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return inserted, nil
}

func (s SurveyProvider) ListQuestions(ctx context.Context, surveyID int64) ([]domains.Question, error) {
	const query = `
		SELECT id, survey_id, text, type, options, scale_min, scale_max,
		       multiple_select, percentage_max, required, position
		FROM questions
		WHERE survey_id = $1
		ORDER BY position, id`

	rows, err := s.db.Query(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domains.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	return questions, nil
}

func insertQuestions(ctx context.Context, tx pgx.Tx, surveyID int64, questions []domains.QuestionCreate) ([]domains.Question, error) {
	const insertQuestion = `
		INSERT INTO questions (
			survey_id, text, type, options, scale_min, scale_max,
			multiple_select, percentage_max, required, position
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`

	inserted := make([]domains.Question, 0, len(questions))
	for position, question := range questions {
		var optionsJSON interface{}
		if len(question.Options) > 0 {
			data, err := json.Marshal(question.Options)
			if err != nil {
				return nil, fmt.Errorf("marshal options: %w", err)
			}
			optionsJSON = data
		}

		var questionID int64
		if err := tx.QueryRow(ctx, insertQuestion,
			surveyID,
			question.Text,
			question.Type,
			optionsJSON,
			question.ScaleMin,
			question.ScaleMax,
			question.MultipleSelect,
			question.PercentageMax,
			question.Required,
			position,
		).Scan(&questionID); err != nil {
			return nil, fmt.Errorf("insert question: %w", err)
		}

		inserted = append(inserted, domains.Question{
			ID:             questionID,
			SurveyID:       surveyID,
			Text:           question.Text,
			Type:           question.Type,
			Options:        question.Options,
			ScaleMin:       question.ScaleMin,
			ScaleMax:       question.ScaleMax,
			MultipleSelect: question.MultipleSelect,
			PercentageMax:  question.PercentageMax,
			Required:       question.Required,
			Position:       position,
		})
	}

	return inserted, nil
}

func scanQuestion(row pgx.Row) (domains.Question, error) {
	var (
		question    domains.Question
		optionsJSON []byte
	)

	if err := row.Scan(
		&question.ID,
		&question.SurveyID,
		&question.Text,
		&question.Type,
		&optionsJSON,
		&question.ScaleMin,
		&question.ScaleMax,
		&question.MultipleSelect,
		&question.PercentageMax,
		&question.Required,
		&question.Position,
	); err != nil {
		return domains.Question{}, err
	}

	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &question.Options); err != nil {
			return domains.Question{}, fmt.Errorf("unmarshal options: %w", err)
		}
	}

	return question, nil
}
