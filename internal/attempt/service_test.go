package attempt_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/apperr"
	"github.com/saulo-duarte/exam-prep-lambda/internal/attempt"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
	"github.com/saulo-duarte/exam-prep-lambda/internal/testutil"
)

type fixture struct {
	db      *gorm.DB
	clock   *config.FixedClock
	service attempt.Service
	user    uuid.UUID

	single question.Question
	judge  question.Question
	exam   paper.Exam
	topicA uuid.UUID
	topicB uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	settings, clock := testutil.Settings(testutil.Now)
	service := attempt.NewService(db, settings, mastery.NewTracker(settings), review.NewScheduler(settings))

	a := testutil.Topic(t, db, nil, "Logic", "LOGIC", 1, 30)
	b := testutil.Topic(t, db, nil, "Verbal", "VERBAL", 1, 30)
	single := testutil.Question(t, db, question.TypeSingle, 2, `"A"`, a.ID)
	judge := testutil.Question(t, db, question.TypeJudge, 2, `"T"`, b.ID)
	user := uuid.New()

	return &fixture{
		db:      db,
		clock:   clock,
		service: service,
		user:    user,
		single:  single,
		judge:   judge,
		exam:    testutil.ExamBy(t, db, user, paper.CategoryPractice, 2, single, judge),
		topicA:  a.ID,
		topicB:  b.ID,
	}
}

func (f *fixture) answer(t *testing.T, userID, attemptID uuid.UUID, q question.Question, value ...string) {
	t.Helper()
	_, err := f.service.SaveAnswer(context.Background(), userID, attemptID, attempt.SaveAnswerRequest{
		QuestionID: q.ID,
		Value:      value,
	})
	require.NoError(t, err)
}

func (f *fixture) mastery(t *testing.T, userID, topicID uuid.UUID) float64 {
	t.Helper()
	state, err := mastery.NewRepository(f.db).Get(userID, topicID)
	require.NoError(t, err)
	require.NotNil(t, state)
	return state.Mastery
}

func TestSubmitGradesAndUpdatesLedgers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.user

	started, err := f.service.Start(ctx, userID, f.exam.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.StatusDoing, started.Attempt.Status)
	require.Len(t, started.Questions, 2)
	assert.Equal(t, 1, started.Questions[0].OrderNo)

	attemptID := started.Attempt.ID
	f.answer(t, userID, attemptID, f.single, "a")
	f.answer(t, userID, attemptID, f.judge, "否")

	result, err := f.service.Submit(ctx, userID, attemptID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.TotalScore, 1e-9)
	assert.InDelta(t, 4.0, result.MaxScore, 1e-9)
	assert.Equal(t, 1, result.CorrectCount)
	require.Len(t, result.Items, 2)
	assert.True(t, result.Items[0].IsCorrect)
	assert.False(t, result.Items[1].IsCorrect)

	rows, err := review.NewRepository(f.db).FindByUserAndQuestions(userID, []uuid.UUID{f.single.ID, f.judge.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1, "only the missed question enters the ledger")
	assert.Equal(t, f.judge.ID, rows[0].QuestionID)
	assert.Equal(t, 1, rows[0].WrongCount)
	assert.WithinDuration(t, testutil.Now.Add(24*time.Hour), *rows[0].NextReviewAt, time.Second)

	assert.InDelta(t, 1.0, f.mastery(t, userID, f.topicA), 1e-9)
	assert.InDelta(t, 0.0, f.mastery(t, userID, f.topicB), 1e-9)

	t.Run("SecondSubmitIsRejected", func(t *testing.T) {
		_, err := f.service.Submit(ctx, userID, attemptID)
		assert.True(t, errors.Is(err, attempt.ErrAttemptNotDoing))
		assert.True(t, errors.Is(err, apperr.ErrInvalidState))
		assert.InDelta(t, 1.0, f.mastery(t, userID, f.topicA), 1e-9, "a rejected submit changes nothing")
	})

	t.Run("ResultIsStable", func(t *testing.T) {
		again, err := f.service.Result(ctx, userID, attemptID)
		require.NoError(t, err)
		assert.Equal(t, result.TotalScore, again.TotalScore)
		assert.Equal(t, result.CorrectCount, again.CorrectCount)
	})

	t.Run("AnswersAreFrozen", func(t *testing.T) {
		_, err := f.service.SaveAnswer(ctx, userID, attemptID, attempt.SaveAnswerRequest{
			QuestionID: f.single.ID,
			Value:      attempt.AnswerValue{"B"},
		})
		assert.True(t, errors.Is(err, attempt.ErrAttemptNotDoing))
	})

	t.Run("OtherUsersCannotSeeIt", func(t *testing.T) {
		_, err := f.service.Result(ctx, uuid.New(), attemptID)
		assert.True(t, errors.Is(err, attempt.ErrAttemptNotFound))
	})
}

func TestRepeatedMissesFollowSchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.user

	run := func(value string) {
		started, err := f.service.Start(ctx, userID, f.exam.ID)
		require.NoError(t, err)
		f.answer(t, userID, started.Attempt.ID, f.single, value)
		_, err = f.service.Submit(ctx, userID, started.Attempt.ID)
		require.NoError(t, err)
	}

	run("A")
	assert.InDelta(t, 1.0, f.mastery(t, userID, f.topicA), 1e-9)

	f.clock.T = testutil.Now.Add(48 * time.Hour)
	run("B")
	assert.InDelta(t, 0.7, f.mastery(t, userID, f.topicA), 1e-9)

	f.clock.T = testutil.Now.Add(96 * time.Hour)
	run("C")
	assert.InDelta(t, 0.49, f.mastery(t, userID, f.topicA), 1e-9)

	rows, err := review.NewRepository(f.db).FindByUserAndQuestions(userID, []uuid.UUID{f.single.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].WrongCount)
	assert.WithinDuration(t, f.clock.T.Add(3*24*time.Hour), *rows[0].NextReviewAt, time.Second)

	untouched, err := mastery.NewRepository(f.db).Get(userID, f.topicB)
	require.NoError(t, err)
	assert.Nil(t, untouched, "unanswered topics get no mastery row")
}

func TestStartAndAnswerValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.user

	started, err := f.service.Start(ctx, userID, f.exam.ID)
	require.NoError(t, err)

	t.Run("OneDoingAttemptPerExam", func(t *testing.T) {
		_, err := f.service.Start(ctx, userID, f.exam.ID)
		assert.True(t, errors.Is(err, attempt.ErrAttemptInProgress))

		resumed, err := f.service.StartOrResume(ctx, nil, userID, f.exam.ID)
		require.NoError(t, err)
		assert.Equal(t, started.Attempt.ID, resumed.ID)
	})

	t.Run("UnpublishedExam", func(t *testing.T) {
		require.NoError(t, f.db.Model(&paper.Exam{}).Where("id = ?", f.exam.ID).
			Update("status", paper.ExamStatusArchived).Error)
		defer f.db.Model(&paper.Exam{}).Where("id = ?", f.exam.ID).Update("status", paper.ExamStatusPublished)

		_, err := f.service.Start(ctx, uuid.New(), f.exam.ID)
		assert.True(t, errors.Is(err, paper.ErrExamNotFound))
	})

	t.Run("ForeignQuestion", func(t *testing.T) {
		stray := testutil.Question(t, f.db, question.TypeSingle, 1, `"A"`, f.topicA)
		_, err := f.service.SaveAnswer(ctx, userID, started.Attempt.ID, attempt.SaveAnswerRequest{
			QuestionID: stray.ID,
			Value:      attempt.AnswerValue{"A"},
		})
		assert.True(t, errors.Is(err, attempt.ErrQuestionNotInExam))
	})

	t.Run("OverwriteKeepsOneRow", func(t *testing.T) {
		f.answer(t, userID, started.Attempt.ID, f.single, "B")
		f.answer(t, userID, started.Attempt.ID, f.single, "a")

		answers, err := attempt.NewRepository(f.db).Answers(started.Attempt.ID)
		require.NoError(t, err)
		require.Len(t, answers, 1)
		assert.Equal(t, []string{"A"}, []string(answers[0].Value))

		detail, err := f.service.Detail(ctx, userID, started.Attempt.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, detail.Questions[0].Saved)
	})

	t.Run("ResultBeforeSubmit", func(t *testing.T) {
		_, err := f.service.Result(ctx, userID, started.Attempt.ID)
		assert.True(t, errors.Is(err, attempt.ErrAttemptNotSubmitted))
	})
}

func TestSubmitWithoutAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.user

	started, err := f.service.Start(ctx, userID, f.exam.ID)
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, userID, started.Attempt.ID)
	assert.True(t, errors.Is(err, attempt.ErrNoAnswers))
	assert.True(t, errors.Is(err, apperr.ErrInsufficientData))

	a, err := attempt.NewRepository(f.db).FindByID(started.Attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.StatusDoing, a.Status)
}

func TestPartialCreditCountsAsMiss(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	settings, _ := testutil.Settings(testutil.Now)
	service := attempt.NewService(db, settings, mastery.NewTracker(settings), review.NewScheduler(settings))
	userID := uuid.New()

	topic := testutil.Topic(t, db, nil, "Essay", "ESSAY", 1, 30)
	short := testutil.Question(t, db, question.TypeShort, 3, `{"keywords":["GDP","inflation"],"min_hit":2}`, topic.ID)
	exam := testutil.ExamBy(t, db, userID, paper.CategoryPractice, 10, short)

	started, err := service.Start(ctx, userID, exam.ID)
	require.NoError(t, err)
	_, err = service.SaveAnswer(ctx, userID, started.Attempt.ID, attempt.SaveAnswerRequest{
		QuestionID: short.ID,
		Value:      attempt.AnswerValue{"gdp grew fast"},
	})
	require.NoError(t, err)

	result, err := service.Submit(ctx, userID, started.Attempt.ID)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.False(t, result.Items[0].IsCorrect)
	assert.Equal(t, []string{"gdp"}, result.Items[0].MatchedKeywords)
	assert.Greater(t, result.TotalScore, 0.0)
	assert.Less(t, result.TotalScore, 10.0)

	rows, err := review.NewRepository(db).FindByUserAndQuestions(userID, []uuid.UUID{short.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.user

	started, err := f.service.Start(ctx, userID, f.exam.ID)
	require.NoError(t, err)
	f.answer(t, userID, started.Attempt.ID, f.single, "A")
	_, err = f.service.Submit(ctx, userID, started.Attempt.ID)
	require.NoError(t, err)

	items, err := f.service.History(ctx, userID, attempt.HistoryQuery{Category: "practice"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, started.Attempt.ID, items[0].AttemptID)
	require.NotNil(t, items[0].TotalScore)
	assert.InDelta(t, 2.0, *items[0].TotalScore, 1e-9)

	items, err = f.service.History(ctx, userID, attempt.HistoryQuery{Category: "MOCK"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSeveralTokensOnSingleChoiceScoreNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.user

	started, err := f.service.Start(ctx, userID, f.exam.ID)
	require.NoError(t, err)
	f.answer(t, userID, started.Attempt.ID, f.single, "A", "B", "C", "D")
	f.answer(t, userID, started.Attempt.ID, f.judge, "T", "F")

	result, err := f.service.Submit(ctx, userID, started.Attempt.ID)
	require.NoError(t, err)
	assert.Zero(t, result.TotalScore)
	assert.Zero(t, result.CorrectCount)
	for _, item := range result.Items {
		assert.False(t, item.IsCorrect, "%s answered %v", item.Type, item.Value)
	}

	rows, err := review.NewRepository(f.db).FindByUserAndQuestions(userID, []uuid.UUID{f.single.ID, f.judge.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestPersonalExamsStayPrivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	settings, _ := testutil.Settings(testutil.Now)
	exams := paper.NewService(f.db)
	alice, bob := f.user, uuid.New()

	started, err := f.service.Start(ctx, alice, f.exam.ID)
	require.NoError(t, err)
	f.answer(t, alice, started.Attempt.ID, f.judge, "F")
	_, err = f.service.Submit(ctx, alice, started.Attempt.ID)
	require.NoError(t, err)

	composer := paper.NewComposer(f.db, settings, testutil.Rand(7))
	c, err := composer.ComposeReview(ctx, paper.ReviewRequest{UserID: alice, QuestionIDs: []uuid.UUID{f.judge.ID}})
	require.NoError(t, err)
	require.Equal(t, paper.ExamStatusPublished, c.Exam.Status)

	shared := testutil.Exam(t, f.db, paper.CategoryDiagnostic, 2, f.single)

	t.Run("ListHidesOtherUsersExams", func(t *testing.T) {
		list, err := exams.ListExams(ctx, paper.ExamListQuery{Status: paper.ExamStatusPublished, Viewer: bob})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, shared.ID, list.Items[0].ID)
		assert.EqualValues(t, 1, list.Total)

		list, err = exams.ListExams(ctx, paper.ExamListQuery{Category: paper.CategoryReview, Viewer: alice})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, c.Exam.ID, list.Items[0].ID)
	})

	t.Run("AdminListSeesEverything", func(t *testing.T) {
		list, err := exams.ListExams(ctx, paper.ExamListQuery{Status: paper.ExamStatusPublished})
		require.NoError(t, err)
		assert.EqualValues(t, 3, list.Total)
	})

	t.Run("StartIsRefused", func(t *testing.T) {
		_, err := f.service.Start(ctx, bob, c.Exam.ID)
		assert.True(t, errors.Is(err, paper.ErrExamNotFound))
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		_, err = f.service.Start(ctx, bob, f.exam.ID)
		assert.True(t, errors.Is(err, paper.ErrExamNotFound))

		_, err = f.service.StartOrResume(ctx, nil, bob, c.Exam.ID)
		assert.True(t, errors.Is(err, paper.ErrExamNotFound))

		_, err = f.service.Start(ctx, bob, shared.ID)
		assert.NoError(t, err)
	})

	t.Run("OwnerStarts", func(t *testing.T) {
		resp, err := f.service.Start(ctx, alice, c.Exam.ID)
		require.NoError(t, err)
		assert.Len(t, resp.Questions, 1)
	})
}

type countingHook struct {
	calls int
}

func (h *countingHook) OnAttemptSubmitted(tx *gorm.DB, userID, examID uuid.UUID, at time.Time) error {
	h.calls++
	return nil
}

func TestSubmitOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hook := &countingHook{}
	f.service.OnSubmit(hook)
	userID := f.user

	started, err := f.service.Start(ctx, userID, f.exam.ID)
	require.NoError(t, err)
	f.answer(t, userID, started.Attempt.ID, f.single, "B")
	f.answer(t, userID, started.Attempt.ID, f.judge, "T")

	first, err := f.service.Submit(ctx, userID, started.Attempt.ID)
	require.NoError(t, err)
	require.Equal(t, 1, hook.calls)

	ledger := review.NewRepository(f.db)
	before, err := ledger.FindByUserAndQuestions(userID, []uuid.UUID{f.single.ID})
	require.NoError(t, err)
	require.Len(t, before, 1)
	masteryBefore, err := mastery.NewRepository(f.db).Get(userID, f.topicA)
	require.NoError(t, err)

	f.clock.T = testutil.Now.Add(72 * time.Hour)
	_, err = f.service.Submit(ctx, userID, started.Attempt.ID)
	assert.True(t, errors.Is(err, attempt.ErrAttemptNotDoing))
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
	assert.Equal(t, 1, hook.calls)

	after, err := ledger.FindByUserAndQuestions(userID, []uuid.UUID{f.single.ID})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 1, after[0].WrongCount)
	assert.WithinDuration(t, *before[0].NextReviewAt, *after[0].NextReviewAt, time.Millisecond)

	masteryAfter, err := mastery.NewRepository(f.db).Get(userID, f.topicA)
	require.NoError(t, err)
	assert.Equal(t, masteryBefore.Mastery, masteryAfter.Mastery)
	assert.WithinDuration(t, masteryBefore.UpdatedAt, masteryAfter.UpdatedAt, time.Millisecond)

	result, err := f.service.Result(ctx, userID, started.Attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, first.TotalScore, result.TotalScore)
}

// submitElsewhere marks attemptID SUBMITTED right after Submit reads it under
// lock, the way a competing submit would, so the status guard on the final
// update finds no DOING row.
func submitElsewhere(t *testing.T, db *gorm.DB, attemptID uuid.UUID) {
	t.Helper()

	armed := true
	name := "test:submit_elsewhere"
	err := db.Callback().Query().After("gorm:query").Register(name, func(tx *gorm.DB) {
		if !armed || tx.Statement.Table != "attempts" {
			return
		}
		a, ok := tx.Statement.Dest.(*attempt.Attempt)
		if !ok || a.ID != attemptID {
			return
		}
		armed = false
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE attempts SET status = ? WHERE id = ?", attempt.StatusSubmitted, attemptID)
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Callback().Query().Remove(name) })
}

func TestSubmitLosesRaceWithoutSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hook := &countingHook{}
	f.service.OnSubmit(hook)
	userID := f.user

	started, err := f.service.Start(ctx, userID, f.exam.ID)
	require.NoError(t, err)
	f.answer(t, userID, started.Attempt.ID, f.single, "B")

	submitElsewhere(t, f.db, started.Attempt.ID)
	_, err = f.service.Submit(ctx, userID, started.Attempt.ID)
	assert.True(t, errors.Is(err, attempt.ErrAttemptNotDoing))
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
	assert.Zero(t, hook.calls)

	states, err := mastery.NewRepository(f.db).FindByUser(userID)
	require.NoError(t, err)
	assert.Empty(t, states)

	rows, err := review.NewRepository(f.db).FindByUserAndQuestions(userID, []uuid.UUID{f.single.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)

	answers, err := attempt.NewRepository(f.db).Answers(started.Attempt.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Nil(t, answers[0].IsCorrect, "grades roll back with the attempt")
}
