package question

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows candidate questions. A nil TopicIDs means the whole bank;
// an empty non-nil slice matches nothing.
type Filter struct {
	TopicIDs      []uuid.UUID
	Types         []Type
	MaxDifficulty int
}

type Repository interface {
	Create(q *Question, topicIDs []uuid.UUID) error
	ExistsByStem(stem string) (bool, error)
	FindByIDs(ids []uuid.UUID) ([]Question, error)
	Candidates(f Filter) ([]Question, error)
	TopicsFor(questionIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	CountByTopics(topicIDs []uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(q *Question, topicIDs []uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		if len(topicIDs) == 0 {
			return nil
		}
		links := make([]QuestionKnowledge, 0, len(topicIDs))
		for _, id := range topicIDs {
			links = append(links, QuestionKnowledge{QuestionID: q.ID, KnowledgeID: id})
		}
		return tx.Create(&links).Error
	})
}

func (r *repository) ExistsByStem(stem string) (bool, error) {
	var n int64
	if err := r.db.Model(&Question{}).Where("stem = ?", stem).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) FindByIDs(ids []uuid.UUID) ([]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []Question
	if err := r.db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// Candidates is ordered by id so that a seeded sampler sees a stable pool.
func (r *repository) Candidates(f Filter) ([]Question, error) {
	if f.TopicIDs != nil && len(f.TopicIDs) == 0 {
		return nil, nil
	}

	q := r.db.Model(&Question{})
	if f.TopicIDs != nil {
		q = q.Where("questions.id IN (?)",
			r.db.Model(&QuestionKnowledge{}).Select("question_id").Where("knowledge_id IN ?", f.TopicIDs))
	}
	if len(f.Types) > 0 {
		q = q.Where("questions.type IN ?", f.Types)
	}
	if f.MaxDifficulty > 0 {
		q = q.Where("questions.difficulty <= ?", f.MaxDifficulty)
	}

	var questions []Question
	if err := q.Order("questions.id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *repository) TopicsFor(questionIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	var links []QuestionKnowledge
	if err := r.db.Where("question_id IN ?", questionIDs).
		Order("question_id ASC").Order("knowledge_id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.QuestionID] = append(out[l.QuestionID], l.KnowledgeID)
	}
	return out, nil
}

func (r *repository) CountByTopics(topicIDs []uuid.UUID) (int64, error) {
	if len(topicIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.Model(&QuestionKnowledge{}).
		Where("knowledge_id IN ?", topicIDs).
		Distinct("question_id").
		Count(&n).Error
	return n, err
}
