package plan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/attempt"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/plan"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
	"github.com/saulo-duarte/exam-prep-lambda/internal/testutil"
	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

type planFixture struct {
	db       *gorm.DB
	service  plan.Service
	attempts attempt.Service
	userID   uuid.UUID
	topic    uuid.UUID
	question question.Question
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()

	db := testutil.NewDB(t)
	settings, _ := testutil.Settings(testutil.Now)
	composer := paper.NewComposer(db, settings, testutil.Rand(7))
	attempts := attempt.NewService(db, settings, mastery.NewTracker(settings), review.NewScheduler(settings))
	attempts.OnSubmit(plan.NewCompleter())

	topic := testutil.Topic(t, db, nil, "Logic", "LOGIC", 1, 40)
	q := testutil.Question(t, db, question.TypeSingle, 2, `"A"`, topic.ID)

	return &planFixture{
		db:       db,
		service:  plan.NewService(db, settings, composer, attempts),
		attempts: attempts,
		userID:   uuid.New(),
		topic:    topic.ID,
		question: q,
	}
}

// miss records a wrong answer due for review at next.
func (f *planFixture) miss(t *testing.T, next time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&review.WrongQuestion{
		UserID:       f.userID,
		QuestionID:   f.question.ID,
		WrongCount:   1,
		LastWrongAt:  next.Add(-24 * time.Hour),
		NextReviewAt: &next,
	}).Error)
}

func (f *planFixture) items(t *testing.T) []plan.ItemResponse {
	t.Helper()
	active, err := f.service.ActivePlan(context.Background(), f.userID)
	require.NoError(t, err)
	var out []plan.ItemResponse
	for _, day := range active.Days {
		out = append(out, day.Items...)
	}
	return out
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresGoal", func(t *testing.T) {
		f := newPlanFixture(t)
		_, err := f.service.Generate(ctx, f.userID, plan.GenerateRequest{Days: 7})
		assert.True(t, errors.Is(err, plan.ErrNoGoal))
	})

	t.Run("RejectsBadHorizon", func(t *testing.T) {
		f := newPlanFixture(t)
		_, err := f.service.Generate(ctx, f.userID, plan.GenerateRequest{Days: 0})
		assert.Error(t, err)
	})

	t.Run("SchedulesReviewsAndLearning", func(t *testing.T) {
		f := newPlanFixture(t)
		testutil.Goal(t, f.db, f.userID, util.NewLocalDate(2025, 6, 1), 60)
		f.miss(t, testutil.Now.Add(24*time.Hour))

		resp, err := f.service.Generate(ctx, f.userID, plan.GenerateRequest{Days: 3})
		require.NoError(t, err)
		assert.Equal(t, util.NewLocalDate(2025, 3, 10), resp.StartDate)
		assert.Equal(t, util.NewLocalDate(2025, 3, 12), resp.EndDate)
		assert.Equal(t, 1, resp.LearnItems)
		assert.Equal(t, 1, resp.ReviewItems)

		active, err := f.service.ActivePlan(ctx, f.userID)
		require.NoError(t, err)
		require.Len(t, active.Days, 2)
		assert.Equal(t, "2025-03-10", active.Days[0].Date)
		assert.Equal(t, 40, active.Days[0].TotalMinutes)
		assert.Equal(t, plan.ItemLearn, active.Days[0].Items[0].Type)
		assert.Equal(t, "2025-03-11", active.Days[1].Date)
		assert.Equal(t, plan.ItemReview, active.Days[1].Items[0].Type)
		assert.Equal(t, f.question.ID, *active.Days[1].Items[0].QuestionID)
		assert.Equal(t, f.topic, *active.Days[1].Items[0].KnowledgeID)
	})

	t.Run("RegenerateKeepsOneActivePlan", func(t *testing.T) {
		f := newPlanFixture(t)
		testutil.Goal(t, f.db, f.userID, util.NewLocalDate(2025, 6, 1), 60)

		first, err := f.service.Generate(ctx, f.userID, plan.GenerateRequest{Days: 7})
		require.NoError(t, err)
		second, err := f.service.Generate(ctx, f.userID, plan.GenerateRequest{Days: 7})
		require.NoError(t, err)

		var active int64
		require.NoError(t, f.db.Model(&plan.LearningPlan{}).
			Where("user_id = ? AND is_active = ?", f.userID, true).Count(&active).Error)
		assert.EqualValues(t, 1, active)

		current, err := f.service.ActivePlan(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, second.PlanID, current.PlanID)
		assert.NotEqual(t, first.PlanID, current.PlanID)
	})

	t.Run("NoActivePlan", func(t *testing.T) {
		f := newPlanFixture(t)
		_, err := f.service.ActivePlan(ctx, f.userID)
		assert.True(t, errors.Is(err, plan.ErrNoActivePlan))
	})
}

func TestStartItem(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	testutil.Goal(t, f.db, f.userID, util.NewLocalDate(2025, 6, 1), 60)
	f.miss(t, testutil.Now.Add(24*time.Hour))

	_, err := f.service.Generate(ctx, f.userID, plan.GenerateRequest{Days: 2})
	require.NoError(t, err)
	items := f.items(t)
	require.Len(t, items, 2)
	learn, rv := items[0], items[1]

	t.Run("LearnNeedsNoExam", func(t *testing.T) {
		resp, err := f.service.StartItem(ctx, f.userID, learn.ID)
		require.NoError(t, err)
		assert.Equal(t, plan.ActionLearn, resp.Action)
		assert.Nil(t, resp.ExamID)
		assert.Equal(t, f.topic, *resp.KnowledgeID)
	})

	var attemptID uuid.UUID
	t.Run("ReviewComposesOnce", func(t *testing.T) {
		first, err := f.service.StartItem(ctx, f.userID, rv.ID)
		require.NoError(t, err)
		assert.Equal(t, plan.ActionExam, first.Action)
		require.NotNil(t, first.ExamID)
		require.NotNil(t, first.AttemptID)

		exam, err := paper.NewRepository(f.db).FindExam(*first.ExamID)
		require.NoError(t, err)
		assert.Equal(t, paper.CategoryReview, exam.Category)

		again, err := f.service.StartItem(ctx, f.userID, rv.ID)
		require.NoError(t, err)
		assert.Equal(t, *first.ExamID, *again.ExamID)
		assert.Equal(t, *first.AttemptID, *again.AttemptID)
		attemptID = *first.AttemptID
	})

	t.Run("SubmissionCompletesItem", func(t *testing.T) {
		require.NotEqual(t, uuid.Nil, attemptID)
		_, err := f.attempts.SaveAnswer(ctx, f.userID, attemptID, attempt.SaveAnswerRequest{
			QuestionID: f.question.ID,
			Value:      attempt.AnswerValue{"A"},
		})
		require.NoError(t, err)
		_, err = f.attempts.Submit(ctx, f.userID, attemptID)
		require.NoError(t, err)

		for _, item := range f.items(t) {
			if item.ID == rv.ID {
				assert.Equal(t, plan.StatusDone, item.Status)
				require.NotNil(t, item.CompletedAt)
				assert.WithinDuration(t, testutil.Now, *item.CompletedAt, time.Second)
			}
		}

		_, err = f.service.StartItem(ctx, f.userID, rv.ID)
		assert.True(t, errors.Is(err, plan.ErrItemNotTodo))
	})

	t.Run("OtherUsersItems", func(t *testing.T) {
		_, err := f.service.StartItem(ctx, uuid.New(), learn.ID)
		assert.True(t, errors.Is(err, plan.ErrItemNotFound))
	})
}

func TestUpdateItemStatus(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	testutil.Goal(t, f.db, f.userID, util.NewLocalDate(2025, 6, 1), 60)

	_, err := f.service.Generate(ctx, f.userID, plan.GenerateRequest{Days: 1})
	require.NoError(t, err)
	items := f.items(t)
	require.Len(t, items, 1)
	id := items[0].ID

	_, err = f.service.UpdateItemStatus(ctx, f.userID, id, plan.UpdateItemStatusRequest{Status: "TODO"})
	assert.True(t, errors.Is(err, plan.ErrInvalidItemStatus))

	resp, err := f.service.UpdateItemStatus(ctx, f.userID, id, plan.UpdateItemStatusRequest{Status: "skipped"})
	require.NoError(t, err)
	assert.Equal(t, plan.StatusSkipped, resp.Status)
	assert.Nil(t, resp.CompletedAt)

	_, err = f.service.UpdateItemStatus(ctx, f.userID, id, plan.UpdateItemStatusRequest{Status: plan.StatusDone})
	assert.True(t, errors.Is(err, plan.ErrItemNotTodo))

	_, err = f.service.UpdateItemStatus(ctx, f.userID, uuid.New(), plan.UpdateItemStatusRequest{Status: plan.StatusDone})
	assert.True(t, errors.Is(err, plan.ErrItemNotFound))
}
