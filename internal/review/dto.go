package review

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
)

type ListQuery struct {
	DueOnly bool
	Page    int `validate:"min=1"`
	Size    int `validate:"min=1,max=200"`
}

type TopicRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type WrongQuestionItem struct {
	QuestionID   uuid.UUID      `json:"question_id"`
	Stem         string         `json:"stem"`
	Type         question.Type  `json:"type,omitempty"`
	Options      datatypes.JSON `json:"options,omitempty"`
	WrongCount   int            `json:"wrong_count"`
	LastWrongAt  time.Time      `json:"last_wrong_at"`
	NextReviewAt *time.Time     `json:"next_review_at,omitempty"`
	Due          bool           `json:"due"`
	Topics       []TopicRef     `json:"knowledge_points"`
}

type ListResponse struct {
	Items []WrongQuestionItem `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Size  int                 `json:"size"`
}
