package paper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/exam-prep-lambda/internal/apperr"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/testutil"
)

func TestExamLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	service := paper.NewService(db)

	topic := testutil.Topic(t, db, nil, "Logic", "LOGIC", 1, 30)
	qs := testutil.Questions(t, db, 2, 2, topic.ID)
	exam := testutil.Exam(t, db, paper.CategoryMock, 2, qs...)
	require.NoError(t, db.Model(&paper.Exam{}).Where("id = ?", exam.ID).Update("status", paper.ExamStatusDraft).Error)

	t.Run("PublishDraft", func(t *testing.T) {
		resp, err := service.Publish(ctx, exam.ID)
		require.NoError(t, err)
		assert.Equal(t, paper.ExamStatusPublished, resp.Status)
	})

	t.Run("PublishTwiceIsRejected", func(t *testing.T) {
		_, err := service.Publish(ctx, exam.ID)
		assert.True(t, errors.Is(err, paper.ErrExamNotDraft))
		assert.True(t, errors.Is(err, apperr.ErrInvalidState))
	})

	t.Run("ArchiveIsOneWay", func(t *testing.T) {
		resp, err := service.Archive(ctx, exam.ID)
		require.NoError(t, err)
		assert.Equal(t, paper.ExamStatusArchived, resp.Status)

		_, err = service.Archive(ctx, exam.ID)
		assert.True(t, errors.Is(err, paper.ErrExamArchived))
		_, err = service.Publish(ctx, exam.ID)
		assert.True(t, errors.Is(err, paper.ErrExamArchived))
	})

	t.Run("UnknownExam", func(t *testing.T) {
		_, err := service.Archive(ctx, uuid.New())
		assert.True(t, errors.Is(err, paper.ErrExamNotFound))
	})
}

func TestListExams(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	service := paper.NewService(db)

	topic := testutil.Topic(t, db, nil, "Logic", "LOGIC", 1, 30)
	qs := testutil.Questions(t, db, 1, 2, topic.ID)
	testutil.Exam(t, db, paper.CategoryMock, 2, qs...)
	testutil.Exam(t, db, paper.CategoryMock, 2, qs...)
	archived := testutil.Exam(t, db, paper.CategoryDiagnostic, 2, qs...)
	_, err := service.Archive(ctx, archived.ID)
	require.NoError(t, err)

	resp, err := service.ListExams(ctx, paper.ExamListQuery{Status: paper.ExamStatusPublished})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Size)

	resp, err = service.ListExams(ctx, paper.ExamListQuery{Category: paper.CategoryDiagnostic})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, paper.ExamStatusArchived, resp.Items[0].Status)

	resp, err = service.ListExams(ctx, paper.ExamListQuery{Size: 1, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	assert.Len(t, resp.Items, 1)

	_, err = service.ListExams(ctx, paper.ExamListQuery{Category: "QUIZ"})
	assert.True(t, errors.Is(err, paper.ErrInvalidExamFilter))
}
