package paper

import (
	"time"

	"github.com/google/uuid"
)

// ExamListQuery lists every exam when Viewer is uuid.Nil; otherwise personal
// exams are limited to the viewer's own.
type ExamListQuery struct {
	Category Category
	Status   ExamStatus
	Viewer   uuid.UUID
	Page     int `validate:"min=0"`
	Size     int `validate:"min=0,max=100"`
}

type ExamResponse struct {
	ID              uuid.UUID  `json:"id"`
	PaperID         uuid.UUID  `json:"paper_id"`
	Title           string     `json:"title"`
	Category        Category   `json:"category"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          ExamStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ExamListResponse struct {
	Items []ExamResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type PracticeGenerateRequest struct {
	KnowledgeID uuid.UUID    `json:"knowledge_id" validate:"required"`
	Count       int          `json:"count" validate:"min=0"`
	Mode        PracticeMode `json:"mode"`
}

type MockGenerateRequest struct {
	Subject string         `json:"subject"`
	Total   int            `json:"total" validate:"min=0,max=200"`
	Ratio   map[string]int `json:"ratio"`
}

type ReviewGenerateRequest struct {
	Count       int         `json:"count" validate:"min=0"`
	QuestionIDs []uuid.UUID `json:"question_ids"`
}

type DiagnosticRegenerateRequest struct {
	Subject   string `json:"subject"`
	PerModule int    `json:"per_module" validate:"min=0,max=20"`
}

type CompositionResponse struct {
	ExamID          uuid.UUID       `json:"exam_id"`
	PaperID         uuid.UUID       `json:"paper_id"`
	Title           string          `json:"title"`
	Category        Category        `json:"category"`
	DurationMinutes int             `json:"duration_minutes"`
	QuestionCount   int             `json:"question_count"`
	TotalScore      float64         `json:"total_score"`
	Degraded        bool            `json:"degraded"`
	Warnings        []string        `json:"warnings,omitempty"`
	Audit           GenerationAudit `json:"audit"`
}

func ToExamResponse(e *Exam) ExamResponse {
	return ExamResponse{
		ID:              e.ID,
		PaperID:         e.PaperID,
		Title:           e.Title,
		Category:        e.Category,
		DurationMinutes: e.DurationMinutes,
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
	}
}

func ToCompositionResponse(c *Composition) CompositionResponse {
	return CompositionResponse{
		ExamID:          c.Exam.ID,
		PaperID:         c.Paper.ID,
		Title:           c.Exam.Title,
		Category:        c.Exam.Category,
		DurationMinutes: c.Exam.DurationMinutes,
		QuestionCount:   len(c.QuestionIDs),
		TotalScore:      c.Paper.TotalScore,
		Degraded:        c.Audit.Degraded,
		Warnings:        c.Audit.Warnings,
		Audit:           c.Audit,
	}
}
