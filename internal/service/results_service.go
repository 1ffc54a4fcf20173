package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"surveyhub/internal/domains"
)

type ResultsService struct {
	surveys   SurveyResultsReader
	responses ResponseLister
}

type SurveyResultsReader interface {
	GetSurveyByID(ctx context.Context, ownerID, surveyID int64) (domains.Survey, error)
	ListQuestions(ctx context.Context, surveyID int64) ([]domains.Question, error)
}

type ResponseLister interface {
	ListResponses(ctx context.Context, ownerID, surveyID int64, filter domains.ResponseFilter) ([]domains.Response, error)
}

func NewResultsService(surveys SurveyResultsReader, responses ResponseLister) *ResultsService {
	return &ResultsService{
		surveys:   surveys,
		responses: responses,
	}
}

type BucketCount struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

type TextAnswer struct {
	Answer         string    `json:"answer"`
	RespondentName string    `json:"respondent_name"`
	CountryCode    string    `json:"country_code"`
	Role           string    `json:"role"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// QuestionSummary carries the aggregate shape matching its question type:
// buckets for scale/select, an average for percentage, verbatim entries
// for text. AnswerCount is the number of responses that qualified.
type QuestionSummary struct {
	Question    domains.Question `json:"question"`
	AnswerCount int              `json:"answer_count"`
	Buckets     []BucketCount    `json:"buckets,omitempty"`
	Average     *float64         `json:"average,omitempty"`
	Texts       []TextAnswer     `json:"texts,omitempty"`
}

type SurveyResults struct {
	Survey        domains.Survey    `json:"survey"`
	ResponseCount int               `json:"response_count"`
	Summaries     []QuestionSummary `json:"summaries"`
}

func (s *ResultsService) Results(ctx context.Context, ownerID, surveyID int64, filter domains.ResponseFilter) (SurveyResults, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, ownerID, surveyID)
	if err != nil {
		return SurveyResults{}, err
	}

	questions, err := s.surveys.ListQuestions(ctx, surveyID)
	if err != nil {
		slog.Error("ListQuestions failed", "err", err, "survey_id", surveyID)
		return SurveyResults{}, err
	}

	responses, err := s.responses.ListResponses(ctx, ownerID, surveyID, filter)
	if err != nil {
		slog.Error("ListResponses failed", "err", err, "survey_id", surveyID)
		return SurveyResults{}, err
	}

	summaries := make([]QuestionSummary, 0, len(questions))
	for _, question := range questions {
		summaries = append(summaries, AggregateQuestion(question, responses))
	}

	return SurveyResults{
		Survey:        survey,
		ResponseCount: len(responses),
		Summaries:     summaries,
	}, nil
}

func (s *ResultsService) ListResponses(ctx context.Context, ownerID, surveyID int64, filter domains.ResponseFilter) ([]domains.Response, error) {
	responses, err := s.responses.ListResponses(ctx, ownerID, surveyID, filter)
	if err != nil {
		slog.Error("ListResponses failed", "err", err, "owner_id", ownerID, "survey_id", surveyID)
		return nil, err
	}
	return responses, nil
}

// AggregateQuestion never errors on malformed answers: values that do not
// fit the question type are simply not counted.
func AggregateQuestion(question domains.Question, responses []domains.Response) QuestionSummary {
	summary := QuestionSummary{Question: question}
	key := strconv.FormatInt(question.ID, 10)

	switch question.Type {
	case domains.QuestionScale:
		aggregateScale(&summary, question, responses, key)
	case domains.QuestionSelect:
		aggregateSelect(&summary, question, responses, key)
	case domains.QuestionPercentage:
		aggregatePercentage(&summary, responses, key)
	case domains.QuestionText:
		aggregateText(&summary, responses, key)
	}

	return summary
}

// aggregateScale builds one bucket per integer in [scale_min, scale_max],
// zero-count buckets included, even when no response qualifies.
func aggregateScale(summary *QuestionSummary, question domains.Question, responses []domains.Response, key string) {
	if question.ScaleMin == nil || question.ScaleMax == nil || *question.ScaleMax < *question.ScaleMin {
		return
	}
	min, max := *question.ScaleMin, *question.ScaleMax

	counts := make(map[int]int, max-min+1)
	for _, response := range responses {
		number, ok := answerNumber(response.Answers[key])
		if !ok || math.Trunc(number) != number {
			continue
		}
		value := int(number)
		if value < min || value > max {
			continue
		}
		counts[value]++
		summary.AnswerCount++
	}

	summary.Buckets = make([]BucketCount, 0, max-min+1)
	for value := min; value <= max; value++ {
		summary.Buckets = append(summary.Buckets, BucketCount{
			Option: strconv.Itoa(value),
			Count:  counts[value],
		})
	}
}

// aggregateSelect counts answers into the declared options, zero-count
// buckets included; answers naming an unlisted option are ignored. For
// multiple-choice questions each chosen element increments its bucket
// independently.
func aggregateSelect(summary *QuestionSummary, question domains.Question, responses []domains.Response, key string) {
	index := make(map[string]int, len(question.Options))
	summary.Buckets = make([]BucketCount, len(question.Options))
	for i, option := range question.Options {
		index[option] = i
		summary.Buckets[i] = BucketCount{Option: option}
	}

	for _, response := range responses {
		value, ok := response.Answers[key]
		if !ok || value == nil {
			continue
		}

		if question.MultipleSelect {
			choices, ok := answerStrings(value)
			if !ok || len(choices) == 0 {
				continue
			}
			summary.AnswerCount++
			for _, choice := range choices {
				if i, listed := index[choice]; listed {
					summary.Buckets[i].Count++
				}
			}
		} else {
			choice, ok := value.(string)
			if !ok || choice == "" {
				continue
			}
			summary.AnswerCount++
			if i, listed := index[choice]; listed {
				summary.Buckets[i].Count++
			}
		}
	}
}

// aggregatePercentage averages the answers that parse as finite numbers,
// rounded to two decimals. Missing and non-numeric answers are excluded
// from numerator and denominator both; with no qualifying answers the
// average stays nil rather than reporting NaN.
func aggregatePercentage(summary *QuestionSummary, responses []domains.Response, key string) {
	var sum float64
	for _, response := range responses {
		number, ok := answerNumber(response.Answers[key])
		if !ok {
			continue
		}
		sum += number
		summary.AnswerCount++
	}

	if summary.AnswerCount > 0 {
		average := math.Round(sum/float64(summary.AnswerCount)*100) / 100
		summary.Average = &average
	}
}

func aggregateText(summary *QuestionSummary, responses []domains.Response, key string) {
	summary.Texts = make([]TextAnswer, 0)
	for _, response := range responses {
		text, ok := response.Answers[key].(string)
		if !ok || text == "" {
			continue
		}
		summary.Texts = append(summary.Texts, TextAnswer{
			Answer:         text,
			RespondentName: response.RespondentName,
			CountryCode:    response.CountryCode,
			Role:           response.Role,
			SubmittedAt:    response.SubmittedAt,
		})
		summary.AnswerCount++
	}
}

// ExportCSV renders one row per in-scope response: name, country, role,
// timestamp, then one column per question in survey order. Multi-select
// answers are semicolon-joined within their cell.
func (s *ResultsService) ExportCSV(ctx context.Context, ownerID, surveyID int64, filter domains.ResponseFilter) ([]byte, error) {
	if _, err := s.surveys.GetSurveyByID(ctx, ownerID, surveyID); err != nil {
		return nil, err
	}

	questions, err := s.surveys.ListQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListResponses(ctx, ownerID, surveyID, filter)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"name", "country", "role", "timestamp"}
	for _, question := range questions {
		header = append(header, question.Text)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, response := range responses {
		record := []string{
			response.RespondentName,
			response.CountryCode,
			response.Role,
			response.SubmittedAt.Format(time.RFC3339),
		}
		for _, question := range questions {
			key := strconv.FormatInt(question.ID, 10)
			record = append(record, formatAnswer(response.Answers[key]))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatAnswer(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []string:
		return strings.Join(v, ";")
	case []any:
		parts := make([]string, 0, len(v))
		for _, element := range v {
			parts = append(parts, formatAnswer(element))
		}
		return strings.Join(parts, ";")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// answerNumber reports whether the value parses as a finite number.
func answerNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		number, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return number, true
	case string:
		number, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
			return 0, false
		}
		return number, true
	default:
		return 0, false
	}
}

func answerStrings(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		choices := make([]string, 0, len(v))
		for _, element := range v {
			choice, ok := element.(string)
			if !ok {
				return nil, false
			}
			choices = append(choices, choice)
		}
		return choices, true
	default:
		return nil, false
	}
}
