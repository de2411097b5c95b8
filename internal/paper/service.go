package paper

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/apperr"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

var ErrInvalidExamFilter = apperr.Validation("INVALID_EXAM_FILTER", "unknown category or status")

// Service manages the exam lifecycle. Composition is done by Composer.
type Service interface {
	ListExams(ctx context.Context, query ExamListQuery) (*ExamListResponse, error)
	GetExam(ctx context.Context, id uuid.UUID) (*ExamResponse, error)
	Publish(ctx context.Context, id uuid.UUID) (*ExamResponse, error)
	Archive(ctx context.Context, id uuid.UUID) (*ExamResponse, error)
}

type service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Service {
	return &service{db: db}
}

func (s *service) ListExams(ctx context.Context, query ExamListQuery) (*ExamListResponse, error) {
	if err := config.Validate(query); err != nil {
		return nil, err
	}
	if query.Category != "" && !query.Category.IsValid() {
		return nil, ErrInvalidExamFilter
	}
	if query.Status != "" && !query.Status.IsValid() {
		return nil, ErrInvalidExamFilter
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Size == 0 {
		query.Size = 20
	}

	exams, total, err := NewRepository(s.db.WithContext(ctx)).ListExams(ExamFilter{
		Category: query.Category,
		Status:   query.Status,
		Viewer:   query.Viewer,
		Offset:   (query.Page - 1) * query.Size,
		Limit:    query.Size,
	})
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to list exams")
		return nil, err
	}

	items := make([]ExamResponse, 0, len(exams))
	for i := range exams {
		items = append(items, ToExamResponse(&exams[i]))
	}
	return &ExamListResponse{Items: items, Total: total, Page: query.Page, Size: query.Size}, nil
}

func (s *service) GetExam(ctx context.Context, id uuid.UUID) (*ExamResponse, error) {
	exam, err := NewRepository(s.db.WithContext(ctx)).FindExam(id)
	if err != nil {
		return nil, err
	}
	resp := ToExamResponse(exam)
	return &resp, nil
}

func (s *service) Publish(ctx context.Context, id uuid.UUID) (*ExamResponse, error) {
	return s.transition(ctx, id, func(e *Exam) error {
		switch e.Status {
		case ExamStatusArchived:
			return ErrExamArchived
		case ExamStatusDraft:
			e.Status = ExamStatusPublished
			return nil
		default:
			return ErrExamNotDraft
		}
	})
}

// Archive is one-way. Archiving an archived exam is rejected.
func (s *service) Archive(ctx context.Context, id uuid.UUID) (*ExamResponse, error) {
	return s.transition(ctx, id, func(e *Exam) error {
		if e.Status == ExamStatusArchived {
			return ErrExamArchived
		}
		e.Status = ExamStatusArchived
		return nil
	})
}

func (s *service) transition(ctx context.Context, id uuid.UUID, apply func(e *Exam) error) (*ExamResponse, error) {
	log := config.WithContext(ctx).WithField("exam_id", id)

	var exam *Exam
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		var err error
		exam, err = repo.FindExamForUpdate(id)
		if err != nil {
			return err
		}
		from := exam.Status
		if err := apply(exam); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"from": from, "to": exam.Status}).Info("Exam status changed")
		return repo.UpdateExamStatus(exam.ID, exam.Status)
	})
	if err != nil {
		log.WithError(err).Warn("Exam status change rejected")
		return nil, err
	}

	resp := ToExamResponse(exam)
	return &resp, nil
}
