package knowledge

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	ListAll() ([]KnowledgePoint, error)
	FindByID(id uuid.UUID) (*KnowledgePoint, error)
	FindByCode(code string) (*KnowledgePoint, error)
	Create(kp *KnowledgePoint) error
	LoadTree() (*Tree, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListAll() ([]KnowledgePoint, error) {
	var points []KnowledgePoint
	if err := r.db.Order("name ASC").Order("id ASC").Find(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

func (r *repository) FindByID(id uuid.UUID) (*KnowledgePoint, error) {
	var kp KnowledgePoint
	if err := r.db.First(&kp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKnowledgePointNotFound
		}
		return nil, err
	}
	return &kp, nil
}

func (r *repository) FindByCode(code string) (*KnowledgePoint, error) {
	var kp KnowledgePoint
	if err := r.db.First(&kp, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKnowledgePointNotFound
		}
		return nil, err
	}
	return &kp, nil
}

func (r *repository) Create(kp *KnowledgePoint) error {
	return r.db.Create(kp).Error
}

// LoadTree is the one fetch every tree-dependent operation makes.
func (r *repository) LoadTree() (*Tree, error) {
	points, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	return NewTree(points)
}
