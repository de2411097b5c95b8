package mastery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserKnowledgeState is created on the first graded answer touching a topic
// and never deleted.
type UserKnowledgeState struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_knowledge" json:"user_id"`
	KnowledgeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_knowledge" json:"knowledge_id"`
	Mastery     float64   `gorm:"not null;default:0" json:"mastery"`
	Ability     *float64  `json:"ability,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserKnowledgeState) TableName() string {
	return "user_knowledge_states"
}

func (s *UserKnowledgeState) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
