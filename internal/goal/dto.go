package goal

import (
	"time"

	"github.com/google/uuid"

	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

type CreateGoalDTO struct {
	ExamDate     util.LocalDate `json:"exam_date"`
	TargetScore  *float64       `json:"target_score" validate:"omitempty,min=0"`
	DailyMinutes int            `json:"daily_minutes" validate:"min=0,max=1440"`
}

type UpdateGoalDTO struct {
	ExamDate     *util.LocalDate `json:"exam_date"`
	TargetScore  *float64        `json:"target_score" validate:"omitempty,min=0"`
	DailyMinutes *int            `json:"daily_minutes" validate:"omitempty,min=1,max=1440"`
}

type ListQuery struct {
	Page int `validate:"min=0"`
	Size int `validate:"min=0,max=100"`
}

type GoalResponse struct {
	ID           uuid.UUID      `json:"id"`
	ExamDate     util.LocalDate `json:"exam_date"`
	DaysLeft     int            `json:"days_left"`
	TargetScore  *float64       `json:"target_score,omitempty"`
	DailyMinutes int            `json:"daily_minutes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type GoalListResponse struct {
	Items []GoalResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}
