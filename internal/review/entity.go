package review

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WrongQuestion is the ledger row for one missed question. Rows are never
// deleted; a later correct answer leaves them as they are.
type WrongQuestion struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_question;index:idx_user_next_review,priority:1" json:"user_id"`
	QuestionID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_question" json:"question_id"`
	WrongCount   int        `gorm:"not null;default:1" json:"wrong_count"`
	LastWrongAt  time.Time  `gorm:"not null" json:"last_wrong_at"`
	NextReviewAt *time.Time `gorm:"index:idx_user_next_review,priority:2" json:"next_review_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WrongQuestion) TableName() string {
	return "wrong_questions"
}

func (w *WrongQuestion) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// IsDue reports whether the row should be reviewed at now.
func (w WrongQuestion) IsDue(now time.Time) bool {
	return w.NextReviewAt != nil && !now.Before(*w.NextReviewAt)
}
