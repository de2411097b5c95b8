package paper

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
)

type PracticeRequest struct {
	UserID      uuid.UUID
	KnowledgeID uuid.UUID
	Count       int
	Mode        PracticeMode
}

// TargetDifficulty maps mastery onto the difficulty a practice paper aims at.
func (c *Composer) TargetDifficulty(mode PracticeMode, m float64) int {
	if mode == PracticeFixed {
		return c.settings.PracticeFixedDifficulty
	}
	switch {
	case m < c.settings.PracticeLowMastery:
		return 2
	case m < c.settings.PracticeMidMastery:
		return 3
	default:
		return 4
	}
}

// ComposePractice fills Count questions from the topic subtree, starting at
// the target difficulty and stepping down one level at a time before
// sampling uniformly from whatever is left.
func (c *Composer) ComposePractice(ctx context.Context, req PracticeRequest) (*Composition, error) {
	if req.Count == 0 {
		req.Count = c.settings.PracticeDefaultCount
	}
	if req.Count < 0 || req.Count > c.settings.PracticeMaxCount {
		return nil, ErrInvalidCount
	}
	if req.Mode == "" {
		req.Mode = PracticeAdaptive
	}
	if !req.Mode.IsValid() {
		return nil, ErrInvalidPracticeMode
	}

	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"user_id":      req.UserID,
		"knowledge_id": req.KnowledgeID,
		"count":        req.Count,
	})

	var out *Composition
	err := c.transaction(ctx, func(tx *gorm.DB) error {
		tree, err := knowledge.NewRepository(tx).LoadTree()
		if err != nil {
			return err
		}
		topic, ok := tree.Get(req.KnowledgeID)
		if !ok {
			return knowledge.ErrKnowledgePointNotFound
		}

		pool, err := question.NewRepository(tx).Candidates(question.Filter{
			TopicIDs: tree.Descendants(topic.ID),
		})
		if err != nil {
			return err
		}
		if len(pool) == 0 {
			return ErrNoQuestionsForTopic
		}

		current := 0.0
		state, err := mastery.NewRepository(tx).Get(req.UserID, topic.ID)
		if err != nil {
			return err
		}
		if state != nil {
			current = state.Mastery
		}
		target := c.TargetDifficulty(req.Mode, current)

		byDifficulty := make(map[int][]question.Question)
		for _, q := range pool {
			byDifficulty[q.Difficulty] = append(byDifficulty[q.Difficulty], q)
		}

		pa := &PracticeAudit{
			KnowledgeID:      topic.ID,
			Mode:             req.Mode,
			Mastery:          current,
			TargetDifficulty: target,
		}
		taken := make(map[uuid.UUID]bool)
		var picked []question.Question
		for d := target; d >= 1 && len(picked) < req.Count; d-- {
			chosen := c.sample(byDifficulty[d], req.Count-len(picked))
			for _, q := range chosen {
				taken[q.ID] = true
				picked = append(picked, q)
			}
			pa.Steps = append(pa.Steps, DifficultyStep{Difficulty: d, Taken: len(chosen)})
		}
		if short := req.Count - len(picked); short > 0 {
			chosen := c.sample(exclude(pool, taken), short)
			picked = append(picked, chosen...)
			pa.FallbackCount = len(chosen)
		}

		audit := GenerationAudit{TotalTarget: req.Count, Practice: pa}
		if len(pa.Steps) == 0 || pa.Steps[0].Taken < req.Count {
			audit.Degraded = true
			audit.Warnings = append(audit.Warnings,
				fmt.Sprintf("difficulty %d had fewer than %d questions", target, req.Count))
		}
		if len(picked) < req.Count {
			audit.Warnings = append(audit.Warnings,
				fmt.Sprintf("topic has only %d questions", len(picked)))
		}

		out, err = c.materialize(tx, draft{
			title:     fmt.Sprintf("Practice: %s", topic.Name),
			category:  CategoryPractice,
			createdBy: req.UserID,
			questions: picked,
			audit:     audit,
		})
		return err
	})
	if err != nil {
		log.WithError(err).Warn("Practice composition failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"exam_id":   out.Exam.ID,
		"questions": len(out.QuestionIDs),
		"target":    out.Audit.Practice.TargetDifficulty,
	}).Info("Practice exam composed")
	return out, nil
}
