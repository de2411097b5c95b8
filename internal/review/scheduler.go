package review

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

// Scheduler maintains the wrong-question ledger on the caller's transaction.
type Scheduler struct {
	settings config.Settings
}

func NewScheduler(settings config.Settings) *Scheduler {
	return &Scheduler{settings: settings}
}

// NextReview is now plus the interval for the wrongCount-th miss; counts
// past the end of the table reuse its last entry.
func (s *Scheduler) NextReview(wrongCount int, now time.Time) time.Time {
	return now.Add(s.settings.ReviewInterval(wrongCount))
}

// RecordMisses inserts a row per first miss and bumps the count of repeat
// misses, rescheduling both from now.
func (s *Scheduler) RecordMisses(tx *gorm.DB, userID uuid.UUID, questionIDs []uuid.UUID, now time.Time) ([]WrongQuestion, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	ids := dedupe(questionIDs)

	repo := NewRepository(tx)
	existing, err := repo.FindByUserAndQuestions(userID, ids)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[uuid.UUID]WrongQuestion, len(existing))
	for _, w := range existing {
		byQuestion[w.QuestionID] = w
	}

	var created []WrongQuestion
	out := make([]WrongQuestion, 0, len(ids))
	for _, qid := range ids {
		row, ok := byQuestion[qid]
		if !ok {
			next := s.NextReview(1, now)
			row = WrongQuestion{
				ID:           uuid.New(),
				UserID:       userID,
				QuestionID:   qid,
				WrongCount:   1,
				LastWrongAt:  now,
				NextReviewAt: &next,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			created = append(created, row)
			out = append(out, row)
			continue
		}

		row.WrongCount++
		row.LastWrongAt = now
		next := s.NextReview(row.WrongCount, now)
		row.NextReviewAt = &next
		row.UpdatedAt = now
		if err := repo.Reschedule(&row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	if err := repo.Create(created); err != nil {
		return nil, err
	}
	return out, nil
}

// Advance pushes chosen rows past their current due moment without counting
// a new miss. Review composition calls it for the rows it puts on a paper.
func (s *Scheduler) Advance(tx *gorm.DB, rows []WrongQuestion, now time.Time) error {
	repo := NewRepository(tx)
	for i := range rows {
		next := s.NextReview(rows[i].WrongCount, now)
		rows[i].NextReviewAt = &next
		rows[i].UpdatedAt = now
		if err := repo.Reschedule(&rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
