package review_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
	"github.com/saulo-duarte/exam-prep-lambda/internal/testutil"
)

const day = 24 * time.Hour

func TestNextReview(t *testing.T) {
	settings, _ := testutil.Settings(testutil.Now)
	s := review.NewScheduler(settings)

	want := []int{1, 3, 7, 14, 30, 30}
	for i, days := range want {
		got := s.NextReview(i+1, testutil.Now)
		assert.Equal(t, testutil.Now.Add(time.Duration(days)*day), got, "wrong_count=%d", i+1)
	}
}

func TestRecordMisses(t *testing.T) {
	db := testutil.NewDB(t)
	settings, clock := testutil.Settings(testutil.Now)
	s := review.NewScheduler(settings)
	repo := review.NewRepository(db)
	userID := uuid.New()
	q1, q2 := uuid.New(), uuid.New()

	rows, err := s.RecordMisses(db, userID, []uuid.UUID{q1, q1, q2}, clock.T)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "duplicates within one event count once")

	clock.T = testutil.Now.Add(5 * day)
	_, err = s.RecordMisses(db, userID, []uuid.UUID{q1}, clock.T)
	require.NoError(t, err)

	stored, err := repo.FindByUserAndQuestions(userID, []uuid.UUID{q1, q2})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, row := range stored {
		switch row.QuestionID {
		case q1:
			assert.Equal(t, 2, row.WrongCount)
			assert.WithinDuration(t, clock.T, row.LastWrongAt, time.Second)
			assert.WithinDuration(t, clock.T.Add(3*day), *row.NextReviewAt, time.Second)
		case q2:
			assert.Equal(t, 1, row.WrongCount)
			assert.WithinDuration(t, testutil.Now.Add(day), *row.NextReviewAt, time.Second)
		}
	}

	t.Run("DueOrdering", func(t *testing.T) {
		due, err := repo.Due(userID, clock.T, 10)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, q2, due[0].QuestionID)
	})

	t.Run("AdvanceKeepsCount", func(t *testing.T) {
		due, err := repo.Due(userID, clock.T, 10)
		require.NoError(t, err)
		require.NoError(t, s.Advance(db, due, clock.T))

		after, err := repo.FindByUserAndQuestions(userID, []uuid.UUID{q2})
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, 1, after[0].WrongCount)
		assert.WithinDuration(t, clock.T.Add(day), *after[0].NextReviewAt, time.Second)
	})
}
