package goal_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/exam-prep-lambda/internal/goal"
	"github.com/saulo-duarte/exam-prep-lambda/internal/testutil"
	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

func newService(t *testing.T) goal.Service {
	t.Helper()
	settings, _ := testutil.Settings(testutil.Now)
	return goal.NewService(goal.NewRepository(testutil.NewDB(t)), settings)
}

func TestCreateGoal(t *testing.T) {
	userID := uuid.New()

	t.Run("DefaultsDailyMinutes", func(t *testing.T) {
		s := newService(t)
		resp, err := s.Create(userID, goal.CreateGoalDTO{ExamDate: util.NewLocalDate(2025, 3, 20)})
		require.NoError(t, err)
		assert.Equal(t, 60, resp.DailyMinutes)
		assert.Equal(t, 10, resp.DaysLeft)

		current, err := s.Current(userID)
		require.NoError(t, err)
		assert.Equal(t, resp.ID, current.ID)
	})

	t.Run("RejectsPastOrToday", func(t *testing.T) {
		s := newService(t)
		_, err := s.Create(userID, goal.CreateGoalDTO{ExamDate: util.NewLocalDate(2025, 3, 10)})
		assert.True(t, errors.Is(err, goal.ErrExamDateNotFuture))

		_, err = s.Create(userID, goal.CreateGoalDTO{})
		assert.True(t, errors.Is(err, goal.ErrExamDateRequired))
	})

	t.Run("RejectsNegativeMinutes", func(t *testing.T) {
		s := newService(t)
		_, err := s.Create(userID, goal.CreateGoalDTO{ExamDate: util.NewLocalDate(2025, 4, 1), DailyMinutes: -5})
		assert.Error(t, err)
	})
}

func TestGoalOwnership(t *testing.T) {
	s := newService(t)
	owner := uuid.New()

	created, err := s.Create(owner, goal.CreateGoalDTO{ExamDate: util.NewLocalDate(2025, 5, 1), DailyMinutes: 90})
	require.NoError(t, err)

	minutes := 120
	_, err = s.Update(created.ID, uuid.New(), goal.UpdateGoalDTO{DailyMinutes: &minutes})
	assert.True(t, errors.Is(err, goal.ErrGoalNotFound))

	updated, err := s.Update(created.ID, owner, goal.UpdateGoalDTO{DailyMinutes: &minutes})
	require.NoError(t, err)
	assert.Equal(t, 120, updated.DailyMinutes)

	list, err := s.List(owner, goal.ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	assert.True(t, errors.Is(s.Delete(created.ID, uuid.New()), goal.ErrGoalNotFound))
	require.NoError(t, s.Delete(created.ID, owner))

	_, err = s.Current(owner)
	assert.True(t, errors.Is(err, goal.ErrNoGoal))
}
