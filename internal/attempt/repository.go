package attempt

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryRow struct {
	AttemptID   uuid.UUID
	ExamID      uuid.UUID
	Title       string
	Category    string
	TotalScore  *float64
	StartedAt   time.Time
	SubmittedAt *time.Time
}

type Repository interface {
	Create(a *Attempt) error
	FindByID(id uuid.UUID) (*Attempt, error)
	FindForUpdate(id uuid.UUID) (*Attempt, error)
	FindDoing(userID, examID uuid.UUID) (*Attempt, error)
	UpsertAnswer(a *Answer) error
	Answers(attemptID uuid.UUID) ([]Answer, error)
	SaveGrade(a *Answer) error
	MarkSubmitted(id uuid.UUID, total float64, at time.Time) (int64, error)
	History(userID uuid.UUID, category string, limit int) ([]HistoryRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(a *Attempt) error {
	return r.db.Create(a).Error
}

func (r *repository) FindByID(id uuid.UUID) (*Attempt, error) {
	var a Attempt
	if err := r.db.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindForUpdate(id uuid.UUID) (*Attempt, error) {
	var a Attempt
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindDoing returns nil, nil when the user has no attempt in progress.
func (r *repository) FindDoing(userID, examID uuid.UUID) (*Attempt, error) {
	var a Attempt
	err := r.db.Where("user_id = ? AND exam_id = ? AND status = ?", userID, examID, StatusDoing).
		Limit(1).
		Find(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == uuid.Nil {
		return nil, nil
	}
	return &a, nil
}

// UpsertAnswer keeps one row per (attempt, question); a later save replaces
// the value and time spent.
func (r *repository) UpsertAnswer(a *Answer) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "time_spent_seconds", "updated_at"}),
	}).Create(a).Error
}

func (r *repository) Answers(attemptID uuid.UUID) ([]Answer, error) {
	var answers []Answer
	if err := r.db.Where("attempt_id = ?", attemptID).Order("question_id ASC").Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *repository) SaveGrade(a *Answer) error {
	return r.db.Model(&Answer{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"is_correct":    a.IsCorrect,
			"score_awarded": a.ScoreAwarded,
		}).Error
}

// MarkSubmitted moves DOING to SUBMITTED. Zero rows affected means another
// submit won.
func (r *repository) MarkSubmitted(id uuid.UUID, total float64, at time.Time) (int64, error) {
	res := r.db.Model(&Attempt{}).
		Where("id = ? AND status = ?", id, StatusDoing).
		Updates(map[string]interface{}{
			"status":       StatusSubmitted,
			"total_score":  total,
			"submitted_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) History(userID uuid.UUID, category string, limit int) ([]HistoryRow, error) {
	q := r.db.Table("attempts").
		Select("attempts.id AS attempt_id, attempts.exam_id, exams.title, exams.category, "+
			"attempts.total_score, attempts.started_at, attempts.submitted_at").
		Joins("JOIN exams ON exams.id = attempts.exam_id").
		Where("attempts.user_id = ? AND attempts.status = ?", userID, StatusSubmitted)
	if category != "" {
		q = q.Where("exams.category = ?", category)
	}

	var rows []HistoryRow
	if err := q.Order("attempts.submitted_at DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
