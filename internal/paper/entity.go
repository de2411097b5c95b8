package paper

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Paper struct {
	ID         uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string                              `gorm:"type:text;not null" json:"title"`
	Mode       Mode                                `gorm:"type:varchar(16);not null" json:"mode"`
	Config     datatypes.JSONType[GenerationAudit] `gorm:"not null" json:"config"`
	TotalScore float64                             `gorm:"not null;default:0" json:"total_score"`
	CreatedBy  uuid.UUID                           `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt  time.Time                           `gorm:"autoCreateTime" json:"created_at"`

	Questions []PaperQuestion `gorm:"foreignKey:PaperID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Paper) TableName() string {
	return "papers"
}

func (p *Paper) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PaperQuestion is one scored slot of a paper. OrderNo is 1-based and unique
// within the paper.
type PaperQuestion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PaperID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_paper_order;uniqueIndex:idx_paper_question" json:"paper_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_paper_question" json:"question_id"`
	OrderNo    int       `gorm:"not null;uniqueIndex:idx_paper_order" json:"order_no"`
	Score      float64   `gorm:"not null;default:2" json:"score"`
}

func (PaperQuestion) TableName() string {
	return "paper_questions"
}

func (pq *PaperQuestion) BeforeCreate(tx *gorm.DB) error {
	if pq.ID == uuid.Nil {
		pq.ID = uuid.New()
	}
	return nil
}

type Exam struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PaperID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"paper_id"`
	Title           string     `gorm:"type:text;not null" json:"title"`
	Category        Category   `gorm:"type:varchar(16);not null;index:idx_exam_category_status,priority:1" json:"category"`
	DurationMinutes int        `gorm:"not null;default:0" json:"duration_minutes"`
	Status          ExamStatus `gorm:"type:varchar(16);not null;index:idx_exam_category_status,priority:2" json:"status"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Exam) TableName() string {
	return "exams"
}

// VisibleTo reports whether userID may see and start the exam.
func (e *Exam) VisibleTo(userID uuid.UUID) bool {
	return !e.Category.IsPersonal() || e.CreatedBy == userID
}

func (e *Exam) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
