package plan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const itemBatchSize = 200

type Repository interface {
	CreatePlan(p *LearningPlan) error
	CreateItems(items []PlanItem) error
	DeactivateAll(userID uuid.UUID) (int64, error)
	Active(userID uuid.UUID) (*LearningPlan, error)
	FindPlan(id uuid.UUID) (*LearningPlan, error)
	Items(planID uuid.UUID) ([]PlanItem, error)
	FindItemForUpdate(id uuid.UUID) (*PlanItem, error)
	LinkExam(itemID, examID uuid.UUID) error
	UpdateItemStatus(itemID uuid.UUID, status ItemStatus, completedAt *time.Time) error
	CompleteByExam(userID, examID uuid.UUID, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePlan(p *LearningPlan) error {
	return r.db.Omit("Items").Create(p).Error
}

func (r *repository) CreateItems(items []PlanItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&items, itemBatchSize).Error
}

func (r *repository) DeactivateAll(userID uuid.UUID) (int64, error) {
	res := r.db.Model(&LearningPlan{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// Active returns nil, nil when the user has no active plan.
func (r *repository) Active(userID uuid.UUID) (*LearningPlan, error) {
	var p LearningPlan
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *repository) FindPlan(id uuid.UUID) (*LearningPlan, error) {
	var p LearningPlan
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Items(planID uuid.UUID) ([]PlanItem, error) {
	var items []PlanItem
	if err := r.db.Where("plan_id = ?", planID).
		Order("date ASC").Order("seq ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindItemForUpdate(id uuid.UUID) (*PlanItem, error) {
	var item PlanItem
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) LinkExam(itemID, examID uuid.UUID) error {
	return r.db.Model(&PlanItem{}).Where("id = ?", itemID).Update("exam_id", examID).Error
}

func (r *repository) UpdateItemStatus(itemID uuid.UUID, status ItemStatus, completedAt *time.Time) error {
	return r.db.Model(&PlanItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		}).Error
}

// CompleteByExam marks every TODO item of the user's plans linked to the
// exam as DONE.
func (r *repository) CompleteByExam(userID, examID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.Model(&PlanItem{}).
		Where("exam_id = ? AND status = ?", examID, StatusTodo).
		Where("plan_id IN (?)", r.db.Model(&LearningPlan{}).Select("id").Where("user_id = ?", userID)).
		Updates(map[string]interface{}{
			"status":       StatusDone,
			"completed_at": at,
		})
	return res.RowsAffected, res.Error
}
