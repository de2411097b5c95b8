package mastery

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/apperr"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
)

var ErrSubjectRequired = apperr.Validation("SUBJECT_REQUIRED", "subject is required")

type Service interface {
	ModuleMastery(ctx context.Context, userID uuid.UUID, subject string) (*ModuleMasteryResponse, error)
}

type service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Service {
	return &service{db: db}
}

// ModuleMastery reports, per module of subject, the mean mastery over the
// module subtree's observed topics as a percentage with one decimal.
func (s *service) ModuleMastery(ctx context.Context, userID uuid.UUID, subject string) (*ModuleMasteryResponse, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"user_id": userID, "subject": subject})

	subject = strings.ToUpper(strings.TrimSpace(subject))
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	db := s.db.WithContext(ctx)
	tree, err := knowledge.NewRepository(db).LoadTree()
	if err != nil {
		log.WithError(err).Error("Failed to load knowledge tree")
		return nil, err
	}
	modules, err := tree.Modules(subject)
	if err != nil {
		log.Warn("Module mastery requested for unknown subject")
		return nil, err
	}

	states, err := NewRepository(db).FindByUser(userID)
	if err != nil {
		log.WithError(err).Error("Failed to load mastery states")
		return nil, err
	}
	byTopic := make(map[uuid.UUID]float64, len(states))
	for _, st := range states {
		byTopic[st.KnowledgeID] = st.Mastery
	}

	resp := &ModuleMasteryResponse{Subject: subject, Items: make([]ModuleMasteryItem, 0, len(modules))}
	for _, m := range modules {
		var sum float64
		var observed int
		for _, id := range tree.Descendants(m.ID) {
			if v, ok := byTopic[id]; ok {
				sum += v
				observed++
			}
		}
		item := ModuleMasteryItem{
			ModuleID:       m.ID,
			Module:         m.Name,
			Code:           m.CodeOrEmpty(),
			ObservedTopics: observed,
		}
		if observed > 0 {
			item.Mastery = Percent(sum / float64(observed))
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}

// Percent renders a [0,1] ratio as a percentage rounded to one decimal.
func Percent(ratio float64) float64 {
	return math.Round(ratio*1000) / 10
}
