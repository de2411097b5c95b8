package question

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Question struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type       Type           `gorm:"type:varchar(16);not null;index" json:"type"`
	Stem       string         `gorm:"type:text;not null" json:"stem"`
	Options    datatypes.JSON `json:"options,omitempty"`
	Answer     datatypes.JSON `gorm:"not null" json:"-"`
	Analysis   *string        `gorm:"type:text" json:"analysis,omitempty"`
	Difficulty int            `gorm:"not null;index" json:"difficulty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// QuestionKnowledge links a question to the topics it exercises.
type QuestionKnowledge struct {
	QuestionID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"question_id"`
	KnowledgeID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"knowledge_id"`
}

func (QuestionKnowledge) TableName() string {
	return "question_knowledge_map"
}
