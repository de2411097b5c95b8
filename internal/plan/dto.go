package plan

import (
	"time"

	"github.com/google/uuid"

	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

type GenerateRequest struct {
	Days int `json:"days" validate:"min=1,max=365"`
}

type UpdateItemStatusRequest struct {
	Status ItemStatus `json:"status"`
}

type GenerateResponse struct {
	PlanID      uuid.UUID      `json:"plan_id"`
	StartDate   util.LocalDate `json:"start_date"`
	EndDate     util.LocalDate `json:"end_date"`
	TotalItems  int            `json:"total_items"`
	LearnItems  int            `json:"learn_items"`
	ReviewItems int            `json:"review_items"`
}

type ItemResponse struct {
	ID              uuid.UUID  `json:"id"`
	Type            ItemType   `json:"type"`
	Title           string     `json:"title"`
	KnowledgeID     *uuid.UUID `json:"knowledge_id,omitempty"`
	QuestionID      *uuid.UUID `json:"question_id,omitempty"`
	ExamID          *uuid.UUID `json:"exam_id,omitempty"`
	ExpectedMinutes int        `json:"expected_minutes"`
	Status          ItemStatus `json:"status"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Reason          ItemReason `json:"reason"`
}

type DayPlan struct {
	Date         string         `json:"date"`
	TotalMinutes int            `json:"total_minutes"`
	Items        []ItemResponse `json:"items"`
}

type ActivePlanResponse struct {
	PlanID          uuid.UUID      `json:"plan_id"`
	GoalID          uuid.UUID      `json:"goal_id"`
	StartDate       util.LocalDate `json:"start_date"`
	EndDate         util.LocalDate `json:"end_date"`
	StrategyVersion string         `json:"strategy_version"`
	Days            []DayPlan      `json:"days"`
}

type StartItemResponse struct {
	ItemID      uuid.UUID  `json:"item_id"`
	Action      Action     `json:"action"`
	KnowledgeID *uuid.UUID `json:"knowledge_id,omitempty"`
	ExamID      *uuid.UUID `json:"exam_id,omitempty"`
	AttemptID   *uuid.UUID `json:"attempt_id,omitempty"`
}

func ToItemResponse(item *PlanItem) ItemResponse {
	return ItemResponse{
		ID:              item.ID,
		Type:            item.Type,
		Title:           item.Title,
		KnowledgeID:     item.KnowledgeID,
		QuestionID:      item.QuestionID,
		ExamID:          item.ExamID,
		ExpectedMinutes: item.ExpectedMinutes,
		Status:          item.Status,
		CompletedAt:     item.CompletedAt,
		Reason:          item.Reason.Data(),
	}
}
