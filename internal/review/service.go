package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID, q ListQuery) (*ListResponse, error)
}

type service struct {
	db       *gorm.DB
	settings config.Settings
}

func NewService(db *gorm.DB, settings config.Settings) Service {
	return &service{db: db, settings: settings}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, q ListQuery) (*ListResponse, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"user_id": userID, "due_only": q.DueOnly})

	if q.Page == 0 {
		q.Page = 1
	}
	if q.Size == 0 {
		q.Size = 20
	}
	if err := config.Validate(q); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	now := s.settings.Now()
	var dueAt *time.Time
	if q.DueOnly {
		dueAt = &now
	}

	rows, total, err := NewRepository(db).List(userID, dueAt, (q.Page-1)*q.Size, q.Size)
	if err != nil {
		log.WithError(err).Error("Failed to list wrong questions")
		return nil, err
	}

	questionIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		questionIDs = append(questionIDs, r.QuestionID)
	}

	qrepo := question.NewRepository(db)
	questions, err := qrepo.FindByIDs(questionIDs)
	if err != nil {
		log.WithError(err).Error("Failed to load questions")
		return nil, err
	}
	byID := make(map[uuid.UUID]question.Question, len(questions))
	for _, qq := range questions {
		byID[qq.ID] = qq
	}

	topics, err := qrepo.TopicsFor(questionIDs)
	if err != nil {
		log.WithError(err).Error("Failed to load question topics")
		return nil, err
	}
	tree, err := knowledge.NewRepository(db).LoadTree()
	if err != nil {
		log.WithError(err).Error("Failed to load knowledge tree")
		return nil, err
	}

	resp := &ListResponse{Items: make([]WrongQuestionItem, 0, len(rows)), Total: total, Page: q.Page, Size: q.Size}
	for _, r := range rows {
		item := WrongQuestionItem{
			QuestionID:   r.QuestionID,
			WrongCount:   r.WrongCount,
			LastWrongAt:  r.LastWrongAt,
			NextReviewAt: r.NextReviewAt,
			Due:          r.IsDue(now),
			Topics:       []TopicRef{},
		}
		if qq, ok := byID[r.QuestionID]; ok {
			item.Stem = qq.Stem
			item.Type = qq.Type
			item.Options = qq.Options
		}
		for _, tid := range topics[r.QuestionID] {
			if kp, ok := tree.Get(tid); ok {
				item.Topics = append(item.Topics, TopicRef{ID: kp.ID, Name: kp.Name})
			}
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}
