package attempt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
)

// AnswerValue accepts a single scalar or a list of scalars. Booleans and
// numbers keep their JSON spelling, so `true` is stored as "true".
type AnswerValue []string

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	items, ok := raw.([]interface{})
	if !ok {
		items = []interface{}{raw}
	}
	out := make(AnswerValue, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case nil:
		case string:
			out = append(out, x)
		case bool:
			out = append(out, strconv.FormatBool(x))
		case json.Number:
			out = append(out, x.String())
		default:
			return fmt.Errorf("answer value must be a string, number or boolean, got %T", item)
		}
	}
	*v = out
	return nil
}

type SaveAnswerRequest struct {
	QuestionID       uuid.UUID   `json:"question_id" validate:"required"`
	Value            AnswerValue `json:"value"`
	TimeSpentSeconds int         `json:"time_spent_seconds" validate:"min=0"`
}

type HistoryQuery struct {
	Category string
	Limit    int `validate:"min=0,max=100"`
}

type AttemptResponse struct {
	ID          uuid.UUID  `json:"id"`
	ExamID      uuid.UUID  `json:"exam_id"`
	Status      Status     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	TotalScore  *float64   `json:"total_score,omitempty"`
}

// QuestionView is a paper slot as shown to the candidate. It never carries
// the canonical answer.
type QuestionView struct {
	QuestionID uuid.UUID      `json:"question_id"`
	OrderNo    int            `json:"order_no"`
	Score      float64        `json:"score"`
	Type       question.Type  `json:"type"`
	Stem       string         `json:"stem"`
	Options    datatypes.JSON `json:"options,omitempty"`
	Difficulty int            `json:"difficulty"`
	Saved      []string       `json:"saved,omitempty"`
}

type StartResponse struct {
	Attempt         AttemptResponse `json:"attempt"`
	ExamTitle       string          `json:"exam_title"`
	DurationMinutes int             `json:"duration_minutes"`
	Questions       []QuestionView  `json:"questions"`
}

type DetailResponse = StartResponse

type AnswerResponse struct {
	AttemptID        uuid.UUID `json:"attempt_id"`
	QuestionID       uuid.UUID `json:"question_id"`
	Value            []string  `json:"value"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
}

type ResultItem struct {
	QuestionID      uuid.UUID      `json:"question_id"`
	OrderNo         int            `json:"order_no"`
	Type            question.Type  `json:"type"`
	Answered        bool           `json:"answered"`
	Value           []string       `json:"value,omitempty"`
	IsCorrect       bool           `json:"is_correct"`
	Score           float64        `json:"score"`
	MaxScore        float64        `json:"max_score"`
	CorrectAnswer   datatypes.JSON `json:"correct_answer"`
	Analysis        *string        `json:"analysis,omitempty"`
	MatchedKeywords []string       `json:"matched_keywords,omitempty"`
}

type ResultResponse struct {
	AttemptID    uuid.UUID    `json:"attempt_id"`
	ExamID       uuid.UUID    `json:"exam_id"`
	TotalScore   float64      `json:"total_score"`
	MaxScore     float64      `json:"max_score"`
	CorrectCount int          `json:"correct_count"`
	SubmittedAt  *time.Time   `json:"submitted_at,omitempty"`
	Items        []ResultItem `json:"items"`
}

type HistoryItem struct {
	AttemptID   uuid.UUID  `json:"attempt_id"`
	ExamID      uuid.UUID  `json:"exam_id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	TotalScore  *float64   `json:"total_score,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

func ToAttemptResponse(a *Attempt) AttemptResponse {
	return AttemptResponse{
		ID:          a.ID,
		ExamID:      a.ExamID,
		Status:      a.Status,
		StartedAt:   a.StartedAt,
		SubmittedAt: a.SubmittedAt,
		TotalScore:  a.TotalScore,
	}
}
