package plan

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

type LearningPlan struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_plan_user_active,priority:1" json:"user_id"`
	GoalID          uuid.UUID      `gorm:"type:uuid;not null" json:"goal_id"`
	StartDate       util.LocalDate `gorm:"not null" json:"start_date"`
	EndDate         util.LocalDate `gorm:"not null" json:"end_date"`
	StrategyVersion string         `gorm:"type:varchar(16);not null" json:"strategy_version"`
	IsActive        bool           `gorm:"not null;index:idx_plan_user_active,priority:2" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Items []PlanItem `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (LearningPlan) TableName() string {
	return "learning_plans"
}

func (p *LearningPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PlanItem is one unit of work on one day. Seq keeps generation order
// within the plan.
type PlanItem struct {
	ID              uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID          uuid.UUID                      `gorm:"type:uuid;not null;index" json:"plan_id"`
	Seq             int                            `gorm:"not null" json:"seq"`
	Date            util.LocalDate                 `gorm:"not null;index" json:"date"`
	Type            ItemType                       `gorm:"type:varchar(16);not null" json:"type"`
	KnowledgeID     *uuid.UUID                     `gorm:"type:uuid" json:"knowledge_id,omitempty"`
	QuestionID      *uuid.UUID                     `gorm:"type:uuid" json:"question_id,omitempty"`
	ExamID          *uuid.UUID                     `gorm:"type:uuid;index" json:"exam_id,omitempty"`
	Title           string                         `gorm:"type:text;not null" json:"title"`
	ExpectedMinutes int                            `gorm:"not null" json:"expected_minutes"`
	Status          ItemStatus                     `gorm:"type:varchar(16);not null" json:"status"`
	CompletedAt     *time.Time                     `json:"completed_at,omitempty"`
	Reason          datatypes.JSONType[ItemReason] `gorm:"not null" json:"reason"`
	CreatedAt       time.Time                      `json:"created_at"`
}

func (PlanItem) TableName() string {
	return "plan_items"
}

func (i *PlanItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
