package attempt

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attempt is one user's run through an exam. At most one DOING attempt may
// exist per (exam, user); submitted attempts are kept as history.
type Attempt struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ExamID      uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_attempt_doing,where:status = 'DOING'" json:"exam_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_attempt_doing,where:status = 'DOING'" json:"user_id"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	TotalScore  *float64   `json:"total_score,omitempty"`
	Status      Status     `gorm:"type:varchar(16);not null;default:'DOING'" json:"status"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Answer holds the normalized submitted tokens. IsCorrect and ScoreAwarded
// stay nil until the attempt is graded.
type Answer struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID        uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question" json:"attempt_id"`
	QuestionID       uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question" json:"question_id"`
	Value            datatypes.JSONSlice[string] `gorm:"not null" json:"value"`
	IsCorrect        *bool                       `json:"is_correct,omitempty"`
	ScoreAwarded     *float64                    `json:"score_awarded,omitempty"`
	TimeSpentSeconds int                         `gorm:"not null;default:0" json:"time_spent_seconds"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func (Answer) TableName() string {
	return "answers"
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
