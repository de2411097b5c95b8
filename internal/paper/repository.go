package paper

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExamFilter narrows exam listings. A set Viewer hides personal exams
// created by anyone else.
type ExamFilter struct {
	Category Category
	Status   ExamStatus
	Viewer   uuid.UUID
	Offset   int
	Limit    int
}

type Repository interface {
	CreatePaper(p *Paper) error
	CreateExam(e *Exam) error
	FindExam(id uuid.UUID) (*Exam, error)
	FindExamForUpdate(id uuid.UUID) (*Exam, error)
	ListExams(f ExamFilter) ([]Exam, int64, error)
	UpdateExamStatus(id uuid.UUID, status ExamStatus) error
	ArchivePublished(category Category) (int64, error)
	PaperQuestions(paperID uuid.UUID) ([]PaperQuestion, error)
	FindPaper(id uuid.UUID) (*Paper, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreatePaper inserts the paper together with its question slots.
func (r *repository) CreatePaper(p *Paper) error {
	return r.db.Create(p).Error
}

func (r *repository) CreateExam(e *Exam) error {
	return r.db.Create(e).Error
}

func (r *repository) FindExam(id uuid.UUID) (*Exam, error) {
	var exam Exam
	if err := r.db.First(&exam, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return &exam, nil
}

func (r *repository) FindExamForUpdate(id uuid.UUID) (*Exam, error) {
	var exam Exam
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&exam, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return &exam, nil
}

func (r *repository) ListExams(f ExamFilter) ([]Exam, int64, error) {
	q := r.db.Model(&Exam{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Viewer != uuid.Nil {
		q = q.Where("(category NOT IN ? OR created_by = ?)", personalCategories(), f.Viewer)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exams []Exam
	if err := q.Order("created_at DESC").Order("id ASC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&exams).Error; err != nil {
		return nil, 0, err
	}
	return exams, total, nil
}

func (r *repository) UpdateExamStatus(id uuid.UUID, status ExamStatus) error {
	return r.db.Model(&Exam{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repository) ArchivePublished(category Category) (int64, error) {
	res := r.db.Model(&Exam{}).
		Where("category = ? AND status = ?", category, ExamStatusPublished).
		Update("status", ExamStatusArchived)
	return res.RowsAffected, res.Error
}

func (r *repository) PaperQuestions(paperID uuid.UUID) ([]PaperQuestion, error) {
	var pqs []PaperQuestion
	if err := r.db.Where("paper_id = ?", paperID).Order("order_no ASC").Find(&pqs).Error; err != nil {
		return nil, err
	}
	return pqs, nil
}

func (r *repository) FindPaper(id uuid.UUID) (*Paper, error) {
	var p Paper
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}
	return &p, nil
}

func personalCategories() []Category {
	var out []Category
	for _, c := range AllCategories {
		if c.IsPersonal() {
			out = append(out, c)
		}
	}
	return out
}
