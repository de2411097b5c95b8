package paper

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
)

const (
	reviewSourceDue      = "DUE"
	reviewSourceSelected = "SELECTED"
)

// ReviewRequest picks either the Count most overdue ledger rows or, when
// QuestionIDs is set, exactly those rows.
type ReviewRequest struct {
	UserID      uuid.UUID
	Count       int
	QuestionIDs []uuid.UUID
}

// ComposeReview builds an untimed paper from the wrong-question ledger and
// moves the chosen rows to their next review slot.
func (c *Composer) ComposeReview(ctx context.Context, req ReviewRequest) (*Composition, error) {
	if len(req.QuestionIDs) == 0 {
		if req.Count == 0 {
			req.Count = c.settings.ReviewDefaultCount
		}
		if req.Count < 0 || req.Count > c.settings.PracticeMaxCount {
			return nil, ErrInvalidCount
		}
	}

	log := config.WithContext(ctx).WithField("user_id", req.UserID)
	now := c.settings.Now()

	var out *Composition
	err := c.transaction(ctx, func(tx *gorm.DB) error {
		repo := review.NewRepository(tx)
		ra := &ReviewAudit{Source: reviewSourceDue}

		var rows []review.WrongQuestion
		if len(req.QuestionIDs) > 0 {
			ra.Source = reviewSourceSelected
			ids := uniqueInOrder(req.QuestionIDs)
			found, err := repo.FindByUserAndQuestions(req.UserID, ids)
			if err != nil {
				return err
			}
			byQuestion := make(map[uuid.UUID]review.WrongQuestion, len(found))
			for _, w := range found {
				byQuestion[w.QuestionID] = w
			}
			for _, id := range ids {
				w, ok := byQuestion[id]
				if !ok {
					return ErrReviewQuestionNotFound
				}
				rows = append(rows, w)
			}
		} else {
			due, err := repo.Due(req.UserID, now, req.Count)
			if err != nil {
				return err
			}
			rows = due
		}
		if len(rows) == 0 {
			return ErrNoDueReviews
		}

		ids := make([]uuid.UUID, 0, len(rows))
		for _, w := range rows {
			ids = append(ids, w.QuestionID)
		}
		found, err := question.NewRepository(tx).FindByIDs(ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]question.Question, len(found))
		for _, q := range found {
			byID[q.ID] = q
		}
		picked := make([]question.Question, 0, len(ids))
		for _, id := range ids {
			if q, ok := byID[id]; ok {
				picked = append(picked, q)
				ra.QuestionIDs = append(ra.QuestionIDs, id)
			}
		}
		if len(picked) == 0 {
			return ErrNoDueReviews
		}

		if err := c.scheduler.Advance(tx, rows, now); err != nil {
			return err
		}

		audit := GenerationAudit{TotalTarget: len(rows), Review: ra}
		if len(picked) < len(rows) {
			audit.Warnings = append(audit.Warnings,
				fmt.Sprintf("%d ledger questions no longer exist", len(rows)-len(picked)))
		}

		out, err = c.materialize(tx, draft{
			title:     fmt.Sprintf("Review (%d questions)", len(picked)),
			category:  CategoryReview,
			createdBy: req.UserID,
			questions: picked,
			audit:     audit,
		})
		return err
	})
	if err != nil {
		log.WithError(err).Warn("Review composition failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"exam_id":   out.Exam.ID,
		"questions": len(out.QuestionIDs),
	}).Info("Review exam composed")
	return out, nil
}

func uniqueInOrder(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
