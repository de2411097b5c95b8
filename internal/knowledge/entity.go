package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KnowledgePoint struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID         *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Name             string     `gorm:"type:text;not null" json:"name"`
	Code             *string    `gorm:"type:varchar(64);uniqueIndex" json:"code,omitempty"`
	Weight           float64    `gorm:"not null;default:1" json:"weight"`
	EstimatedMinutes int        `gorm:"not null;default:30" json:"estimated_minutes"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (KnowledgePoint) TableName() string {
	return "knowledge_points"
}

func (k *KnowledgePoint) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

func (k KnowledgePoint) CodeOrEmpty() string {
	if k.Code == nil {
		return ""
	}
	return *k.Code
}
