package mastery

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	FindByUser(userID uuid.UUID) ([]UserKnowledgeState, error)
	FindByUserAndTopics(userID uuid.UUID, topicIDs []uuid.UUID) ([]UserKnowledgeState, error)
	Get(userID, knowledgeID uuid.UUID) (*UserKnowledgeState, error)
	Upsert(states []UserKnowledgeState) error
	UpdateMastery(state *UserKnowledgeState) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByUser(userID uuid.UUID) ([]UserKnowledgeState, error) {
	var states []UserKnowledgeState
	if err := r.db.Where("user_id = ?", userID).Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repository) FindByUserAndTopics(userID uuid.UUID, topicIDs []uuid.UUID) ([]UserKnowledgeState, error) {
	if len(topicIDs) == 0 {
		return nil, nil
	}
	var states []UserKnowledgeState
	if err := r.db.Where("user_id = ? AND knowledge_id IN ?", userID, topicIDs).Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

// Get returns nil, nil when the pair was never observed.
func (r *repository) Get(userID, knowledgeID uuid.UUID) (*UserKnowledgeState, error) {
	var state UserKnowledgeState
	err := r.db.Where("user_id = ? AND knowledge_id = ?", userID, knowledgeID).
		Limit(1).
		Find(&state).Error
	if err != nil {
		return nil, err
	}
	if state.ID == uuid.Nil {
		return nil, nil
	}
	return &state, nil
}

// Upsert inserts first observations. A row created concurrently for the
// same pair is overwritten rather than duplicated.
func (r *repository) Upsert(states []UserKnowledgeState) error {
	if len(states) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "knowledge_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mastery", "updated_at"}),
	}).Create(&states).Error
}

func (r *repository) UpdateMastery(state *UserKnowledgeState) error {
	return r.db.Model(&UserKnowledgeState{}).
		Where("id = ?", state.ID).
		Updates(map[string]interface{}{
			"mastery":    state.Mastery,
			"updated_at": state.UpdatedAt,
		}).Error
}
