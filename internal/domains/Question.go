package domains

const (
	QuestionScale      = "scale"
	QuestionSelect     = "select"
	QuestionText       = "text"
	QuestionPercentage = "percentage"
)

// Question carries only the fields relevant to its type; the rest stay nil.
type Question struct {
	ID             int64    `json:"id"`
	SurveyID       int64    `json:"survey_id"`
	Text           string   `json:"text"`
	Type           string   `json:"type"`
	Options        []string `json:"options,omitempty"`
	ScaleMin       *int     `json:"scale_min,omitempty"`
	ScaleMax       *int     `json:"scale_max,omitempty"`
	MultipleSelect bool     `json:"multiple_select"`
	PercentageMax  *int     `json:"percentage_max,omitempty"`
	Required       bool     `json:"required"`
	Position       int      `json:"position"`
}

type QuestionCreate struct {
	Text           string   `json:"text"`
	Type           string   `json:"type"`
	Options        []string `json:"options,omitempty"`
	ScaleMin       *int     `json:"scale_min,omitempty"`
	ScaleMax       *int     `json:"scale_max,omitempty"`
	MultipleSelect bool     `json:"multiple_select"`
	PercentageMax  *int     `json:"percentage_max,omitempty"`
	Required       bool     `json:"required"`
}
