package goal

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(goal *Goal) error
	FindByID(id uuid.UUID) (*Goal, error)
	Current(userID uuid.UUID) (*Goal, error)
	List(userID uuid.UUID, offset, limit int) ([]Goal, int64, error)
	Update(goal *Goal) error
	Delete(id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(goal *Goal) error {
	return r.db.Create(goal).Error
}

func (r *repository) FindByID(id uuid.UUID) (*Goal, error) {
	var goal Goal
	if err := r.db.First(&goal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// Current is the most recently created goal, or nil, nil.
func (r *repository) Current(userID uuid.UUID) (*Goal, error) {
	var goal Goal
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(1).
		Find(&goal).Error
	if err != nil {
		return nil, err
	}
	if goal.ID == uuid.Nil {
		return nil, nil
	}
	return &goal, nil
}

func (r *repository) List(userID uuid.UUID, offset, limit int) ([]Goal, int64, error) {
	q := r.db.Model(&Goal{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var goals []Goal
	if err := q.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&goals).Error; err != nil {
		return nil, 0, err
	}
	return goals, total, nil
}

func (r *repository) Update(goal *Goal) error {
	return r.db.Save(goal).Error
}

func (r *repository) Delete(id uuid.UUID) error {
	return r.db.Delete(&Goal{}, "id = ?", id).Error
}
