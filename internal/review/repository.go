package review

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	FindByUserAndQuestions(userID uuid.UUID, questionIDs []uuid.UUID) ([]WrongQuestion, error)
	Create(rows []WrongQuestion) error
	Reschedule(row *WrongQuestion) error
	List(userID uuid.UUID, dueAt *time.Time, offset, limit int) ([]WrongQuestion, int64, error)
	Due(userID uuid.UUID, now time.Time, limit int) ([]WrongQuestion, error)
	DueBetween(userID uuid.UUID, from, to time.Time) ([]WrongQuestion, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByUserAndQuestions(userID uuid.UUID, questionIDs []uuid.UUID) ([]WrongQuestion, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var rows []WrongQuestion
	if err := r.db.Where("user_id = ? AND question_id IN ?", userID, questionIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Create(rows []WrongQuestion) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Create(&rows).Error
}

func (r *repository) Reschedule(row *WrongQuestion) error {
	return r.db.Model(&WrongQuestion{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"wrong_count":    row.WrongCount,
			"last_wrong_at":  row.LastWrongAt,
			"next_review_at": row.NextReviewAt,
			"updated_at":     row.UpdatedAt,
		}).Error
}

// List pages the user's ledger by next_review_at. A non-nil dueAt keeps
// only rows due at that instant.
func (r *repository) List(userID uuid.UUID, dueAt *time.Time, offset, limit int) ([]WrongQuestion, int64, error) {
	q := r.db.Model(&WrongQuestion{}).Where("user_id = ?", userID)
	if dueAt != nil {
		q = q.Where("next_review_at IS NOT NULL AND next_review_at <= ?", *dueAt)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []WrongQuestion
	if err := q.Order("next_review_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Due returns the most overdue rows first.
func (r *repository) Due(userID uuid.UUID, now time.Time, limit int) ([]WrongQuestion, error) {
	var rows []WrongQuestion
	err := r.db.Where("user_id = ? AND next_review_at IS NOT NULL AND next_review_at <= ?", userID, now).
		Order("next_review_at ASC").Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// DueBetween returns rows whose next_review_at falls in [from, to).
func (r *repository) DueBetween(userID uuid.UUID, from, to time.Time) ([]WrongQuestion, error) {
	var rows []WrongQuestion
	err := r.db.Where("user_id = ? AND next_review_at >= ? AND next_review_at < ?", userID, from, to).
		Order("next_review_at ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}
