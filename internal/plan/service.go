package plan

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/attempt"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/goal"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

type Service interface {
	Generate(ctx context.Context, userID uuid.UUID, dto GenerateRequest) (*GenerateResponse, error)
	ActivePlan(ctx context.Context, userID uuid.UUID) (*ActivePlanResponse, error)
	StartItem(ctx context.Context, userID, itemID uuid.UUID) (*StartItemResponse, error)
	UpdateItemStatus(ctx context.Context, userID, itemID uuid.UUID, dto UpdateItemStatusRequest) (*ItemResponse, error)
}

type service struct {
	db        *gorm.DB
	settings  config.Settings
	generator *Generator
	composer  *paper.Composer
	attempts  attempt.Service
}

func NewService(db *gorm.DB, settings config.Settings, composer *paper.Composer, attempts attempt.Service) Service {
	return &service{
		db:        db,
		settings:  settings,
		generator: NewGenerator(settings),
		composer:  composer,
		attempts:  attempts,
	}
}

// Generate replaces the user's active plan with a new one covering
// dto.Days days from today. Items and plan commit together.
func (s *service) Generate(ctx context.Context, userID uuid.UUID, dto GenerateRequest) (*GenerateResponse, error) {
	if err := config.Validate(dto); err != nil {
		return nil, err
	}
	log := config.WithContext(ctx).WithFields(logrus.Fields{"user_id": userID, "days": dto.Days})
	loc := s.settings.Loc()
	start := util.DateOf(s.settings.Now(), loc)

	var resp *GenerateResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := goal.NewRepository(tx).Current(userID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNoGoal
		}

		tree, err := knowledge.NewRepository(tx).LoadTree()
		if err != nil {
			return err
		}
		if tree.Len() == 0 {
			return ErrNoKnowledgePoints
		}

		states, err := mastery.NewRepository(tx).FindByUser(userID)
		if err != nil {
			return err
		}
		masteryByTopic := make(map[uuid.UUID]float64, len(states))
		for _, st := range states {
			masteryByTopic[st.KnowledgeID] = st.Mastery
		}

		reviews, err := s.reviewCandidates(tx, userID, start, dto.Days)
		if err != nil {
			return err
		}

		items := s.generator.Build(Horizon{
			Start:        start,
			Days:         dto.Days,
			DailyMinutes: current.DailyMinutes,
			Topics:       s.generator.Prioritize(tree.Topics(), masteryByTopic),
			Reviews:      reviews,
		})

		repo := NewRepository(tx)
		deactivated, err := repo.DeactivateAll(userID)
		if err != nil {
			return err
		}

		p := &LearningPlan{
			ID:              uuid.New(),
			UserID:          userID,
			GoalID:          current.ID,
			StartDate:       start,
			EndDate:         start.AddDays(dto.Days - 1),
			StrategyVersion: s.settings.StrategyVersion,
			IsActive:        true,
		}
		if err := repo.CreatePlan(p); err != nil {
			return err
		}

		resp = &GenerateResponse{PlanID: p.ID, StartDate: p.StartDate, EndDate: p.EndDate}
		for i := range items {
			items[i].PlanID = p.ID
			items[i].ID = uuid.New()
			switch items[i].Type {
			case ItemLearn:
				resp.LearnItems++
			case ItemReview:
				resp.ReviewItems++
			}
		}
		if err := repo.CreateItems(items); err != nil {
			return err
		}
		resp.TotalItems = len(items)

		log.WithFields(logrus.Fields{
			"plan_id":     p.ID,
			"items":       len(items),
			"deactivated": deactivated,
		}).Info("Learning plan generated")
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Plan generation failed")
		return nil, err
	}
	return resp, nil
}

// reviewCandidates loads ledger rows due inside the horizon with the
// question's stem and first topic.
func (s *service) reviewCandidates(tx *gorm.DB, userID uuid.UUID, start util.LocalDate, days int) ([]ReviewCandidate, error) {
	from, to := dayRange(start, days, s.settings.Loc())
	rows, err := review.NewRepository(tx).DueBetween(userID, from, to)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, w := range rows {
		ids = append(ids, w.QuestionID)
	}
	qrepo := question.NewRepository(tx)
	found, err := qrepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	stems := make(map[uuid.UUID]string, len(found))
	for _, q := range found {
		stems[q.ID] = q.Stem
	}
	topics, err := qrepo.TopicsFor(ids)
	if err != nil {
		return nil, err
	}

	out := make([]ReviewCandidate, 0, len(rows))
	for _, w := range rows {
		stem, ok := stems[w.QuestionID]
		if !ok {
			continue
		}
		rc := ReviewCandidate{Row: w, Title: reviewTitle(stem)}
		if kids := topics[w.QuestionID]; len(kids) > 0 {
			kid := kids[0]
			rc.KnowledgeID = &kid
		}
		out = append(out, rc)
	}
	return out, nil
}

func (s *service) ActivePlan(ctx context.Context, userID uuid.UUID) (*ActivePlanResponse, error) {
	repo := NewRepository(s.db.WithContext(ctx))

	p, err := repo.Active(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoActivePlan
	}

	items, err := repo.Items(p.ID)
	if err != nil {
		return nil, err
	}

	resp := &ActivePlanResponse{
		PlanID:          p.ID,
		GoalID:          p.GoalID,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		StrategyVersion: p.StrategyVersion,
		Days:            []DayPlan{},
	}
	for i := range items {
		key := items[i].Date.String()
		n := len(resp.Days)
		if n == 0 || resp.Days[n-1].Date != key {
			resp.Days = append(resp.Days, DayPlan{Date: key})
			n++
		}
		resp.Days[n-1].Items = append(resp.Days[n-1].Items, ToItemResponse(&items[i]))
		resp.Days[n-1].TotalMinutes += items[i].ExpectedMinutes
	}
	return resp, nil
}

// StartItem turns a TODO item into something to do. Exam-backed items get
// their exam composed once and linked; later starts reuse it.
func (s *service) StartItem(ctx context.Context, userID, itemID uuid.UUID) (*StartItemResponse, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"user_id": userID, "item_id": itemID})

	var resp *StartItemResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		item, err := s.ownedItem(repo, userID, itemID)
		if err != nil {
			return err
		}
		if item.Status != StatusTodo {
			return ErrItemNotTodo
		}

		resp = &StartItemResponse{ItemID: item.ID, KnowledgeID: item.KnowledgeID}
		if item.Type == ItemLearn {
			resp.Action = ActionLearn
			return nil
		}

		if item.ExamID == nil {
			examID, err := s.composeFor(ctx, tx, userID, item)
			if err != nil {
				return err
			}
			if err := repo.LinkExam(item.ID, examID); err != nil {
				return err
			}
			item.ExamID = &examID
			log.WithField("exam_id", examID).Info("Plan item exam composed")
		}

		a, err := s.attempts.StartOrResume(ctx, tx, userID, *item.ExamID)
		if err != nil {
			return err
		}
		resp.Action = ActionExam
		resp.ExamID = item.ExamID
		resp.AttemptID = &a.ID
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to start plan item")
		return nil, err
	}
	return resp, nil
}

func (s *service) composeFor(ctx context.Context, tx *gorm.DB, userID uuid.UUID, item *PlanItem) (uuid.UUID, error) {
	composer := s.composer.WithTx(tx)

	var (
		c   *paper.Composition
		err error
	)
	switch item.Type {
	case ItemPractice:
		if item.KnowledgeID == nil {
			return uuid.Nil, ErrItemMissingTopic
		}
		c, err = composer.ComposePractice(ctx, paper.PracticeRequest{
			UserID:      userID,
			KnowledgeID: *item.KnowledgeID,
			Mode:        paper.PracticeAdaptive,
		})
	case ItemReview:
		req := paper.ReviewRequest{UserID: userID}
		if item.QuestionID != nil {
			req.QuestionIDs = []uuid.UUID{*item.QuestionID}
		}
		c, err = composer.ComposeReview(ctx, req)
	case ItemMock:
		c, err = composer.ComposeMock(ctx, paper.MockRequest{CreatedBy: userID})
	default:
		return uuid.Nil, ErrItemNotTodo
	}
	if err != nil {
		return uuid.Nil, err
	}
	return c.Exam.ID, nil
}

func (s *service) UpdateItemStatus(ctx context.Context, userID, itemID uuid.UUID, dto UpdateItemStatusRequest) (*ItemResponse, error) {
	dto.Status = ItemStatus(strings.ToUpper(string(dto.Status)))
	if dto.Status != StatusDone && dto.Status != StatusSkipped {
		return nil, ErrInvalidItemStatus
	}

	var resp ItemResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		item, err := s.ownedItem(repo, userID, itemID)
		if err != nil {
			return err
		}
		if item.Status != StatusTodo {
			return ErrItemNotTodo
		}

		completedAt := item.CompletedAt
		if dto.Status == StatusDone {
			now := s.settings.Now()
			completedAt = &now
		}
		if err := repo.UpdateItemStatus(item.ID, dto.Status, completedAt); err != nil {
			return err
		}
		item.Status = dto.Status
		item.CompletedAt = completedAt
		resp = ToItemResponse(item)
		return nil
	})
	if err != nil {
		config.WithContext(ctx).WithError(err).WithField("item_id", itemID).Warn("Failed to update plan item")
		return nil, err
	}
	return &resp, nil
}

func (s *service) ownedItem(repo Repository, userID, itemID uuid.UUID) (*PlanItem, error) {
	item, err := repo.FindItemForUpdate(itemID)
	if err != nil {
		return nil, err
	}
	p, err := repo.FindPlan(item.PlanID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrItemNotFound
	}
	return item, nil
}
