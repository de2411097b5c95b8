package goal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

// Goal is the exam a user is preparing for. The latest one drives planning.
type Goal struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	ExamDate     util.LocalDate `gorm:"not null" json:"exam_date"`
	TargetScore  *float64       `json:"target_score,omitempty"`
	DailyMinutes int            `gorm:"not null;default:60" json:"daily_minutes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Goal) TableName() string {
	return "user_goals"
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
