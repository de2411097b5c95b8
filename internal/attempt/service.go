package attempt

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/grading"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
)

// SubmitHook runs inside the grading transaction after the attempt is
// marked SUBMITTED. A hook error rolls the whole submission back.
type SubmitHook interface {
	OnAttemptSubmitted(tx *gorm.DB, userID, examID uuid.UUID, at time.Time) error
}

type Service interface {
	Start(ctx context.Context, userID, examID uuid.UUID) (*StartResponse, error)
	StartOrResume(ctx context.Context, tx *gorm.DB, userID, examID uuid.UUID) (*Attempt, error)
	SaveAnswer(ctx context.Context, userID, attemptID uuid.UUID, dto SaveAnswerRequest) (*AnswerResponse, error)
	Submit(ctx context.Context, userID, attemptID uuid.UUID) (*ResultResponse, error)
	Result(ctx context.Context, userID, attemptID uuid.UUID) (*ResultResponse, error)
	Detail(ctx context.Context, userID, attemptID uuid.UUID) (*DetailResponse, error)
	History(ctx context.Context, userID uuid.UUID, query HistoryQuery) ([]HistoryItem, error)
	OnSubmit(hook SubmitHook)
}

type service struct {
	db        *gorm.DB
	settings  config.Settings
	tracker   *mastery.Tracker
	scheduler *review.Scheduler
	hooks     []SubmitHook
}

func NewService(db *gorm.DB, settings config.Settings, tracker *mastery.Tracker, scheduler *review.Scheduler) Service {
	return &service{
		db:        db,
		settings:  settings,
		tracker:   tracker,
		scheduler: scheduler,
	}
}

func (s *service) OnSubmit(hook SubmitHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *service) Start(ctx context.Context, userID, examID uuid.UUID) (*StartResponse, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"user_id": userID, "exam_id": examID})

	var resp *StartResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exam, err := paper.NewRepository(tx).FindExam(examID)
		if err != nil {
			return err
		}
		if exam.Status != paper.ExamStatusPublished || !exam.VisibleTo(userID) {
			return paper.ErrExamNotFound
		}

		repo := NewRepository(tx)
		doing, err := repo.FindDoing(userID, examID)
		if err != nil {
			return err
		}
		if doing != nil {
			return ErrAttemptInProgress
		}

		a := &Attempt{
			ID:        uuid.New(),
			ExamID:    examID,
			UserID:    userID,
			StartedAt: s.settings.Now(),
			Status:    StatusDoing,
		}
		if err := repo.Create(a); err != nil {
			return err
		}

		resp, err = s.sheet(tx, exam, a, nil)
		return err
	})
	if err != nil {
		log.WithError(err).Warn("Failed to start exam")
		return nil, err
	}

	log.WithField("attempt_id", resp.Attempt.ID).Info("Exam started")
	return resp, nil
}

// StartOrResume returns the caller's DOING attempt for the exam, creating it
// when absent. A nil tx runs on the service's own connection.
func (s *service) StartOrResume(ctx context.Context, tx *gorm.DB, userID, examID uuid.UUID) (*Attempt, error) {
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}
	repo := NewRepository(tx)

	doing, err := repo.FindDoing(userID, examID)
	if err != nil {
		return nil, err
	}
	if doing != nil {
		return doing, nil
	}

	exam, err := paper.NewRepository(tx).FindExam(examID)
	if err != nil {
		return nil, err
	}
	if !exam.VisibleTo(userID) {
		return nil, paper.ErrExamNotFound
	}
	a := &Attempt{
		ID:        uuid.New(),
		ExamID:    examID,
		UserID:    userID,
		StartedAt: s.settings.Now(),
		Status:    StatusDoing,
	}
	if err := repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) SaveAnswer(ctx context.Context, userID, attemptID uuid.UUID, dto SaveAnswerRequest) (*AnswerResponse, error) {
	if err := config.Validate(dto); err != nil {
		return nil, err
	}

	var resp *AnswerResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		a, err := repo.FindForUpdate(attemptID)
		if err != nil {
			return err
		}
		if a.UserID != userID {
			return ErrAttemptNotFound
		}
		if a.Status != StatusDoing {
			return ErrAttemptNotDoing
		}

		prepo := paper.NewRepository(tx)
		exam, err := prepo.FindExam(a.ExamID)
		if err != nil {
			return err
		}
		slots, err := prepo.PaperQuestions(exam.PaperID)
		if err != nil {
			return err
		}
		inPaper := false
		for _, pq := range slots {
			if pq.QuestionID == dto.QuestionID {
				inPaper = true
				break
			}
		}
		if !inPaper {
			return ErrQuestionNotInExam
		}

		found, err := question.NewRepository(tx).FindByIDs([]uuid.UUID{dto.QuestionID})
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return ErrQuestionNotInExam
		}

		value := grading.NormalizeAnswer(found[0].Type, dto.Value)
		if value == nil {
			value = []string{}
		}
		now := s.settings.Now()
		ans := &Answer{
			AttemptID:        a.ID,
			QuestionID:       dto.QuestionID,
			Value:            value,
			TimeSpentSeconds: dto.TimeSpentSeconds,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := repo.UpsertAnswer(ans); err != nil {
			return err
		}

		resp = &AnswerResponse{
			AttemptID:        a.ID,
			QuestionID:       dto.QuestionID,
			Value:            value,
			TimeSpentSeconds: dto.TimeSpentSeconds,
		}
		return nil
	})
	if err != nil {
		config.WithContext(ctx).WithError(err).WithField("attempt_id", attemptID).Warn("Failed to save answer")
		return nil, err
	}
	return resp, nil
}

// Submit grades every saved answer and commits answers, mastery, the
// wrong-question ledger, the attempt status and the submit hooks together.
func (s *service) Submit(ctx context.Context, userID, attemptID uuid.UUID) (*ResultResponse, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"user_id": userID, "attempt_id": attemptID})
	now := s.settings.Now()

	var resp *ResultResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		a, err := repo.FindForUpdate(attemptID)
		if err != nil {
			return err
		}
		if a.UserID != userID {
			return ErrAttemptNotFound
		}
		if a.Status != StatusDoing {
			return ErrAttemptNotDoing
		}

		answers, err := repo.Answers(a.ID)
		if err != nil {
			return err
		}
		if len(answers) == 0 {
			return ErrNoAnswers
		}

		sheet, err := s.loadSheet(tx, a.ExamID)
		if err != nil {
			return err
		}

		qids := make([]uuid.UUID, 0, len(answers))
		for _, ans := range answers {
			qids = append(qids, ans.QuestionID)
		}
		topics, err := question.NewRepository(tx).TopicsFor(qids)
		if err != nil {
			return err
		}

		tallies := make(map[uuid.UUID]mastery.Tally)
		var missed []uuid.UUID
		total := 0.0
		for i := range answers {
			ans := &answers[i]
			q, ok := sheet.questions[ans.QuestionID]
			if !ok {
				return fmt.Errorf("answer %s references missing question %s", ans.ID, ans.QuestionID)
			}
			canonical, err := question.ParseCanonical(q.Type, []byte(q.Answer))
			if err != nil {
				return fmt.Errorf("question %s: %w", q.ID, err)
			}

			outcome := grading.Grade(q.Type, canonical, ans.Value)
			score := outcome.Score(sheet.weight(q.ID, s.settings.DefaultQuestionScore))
			correct := outcome.Correct
			ans.IsCorrect = &correct
			ans.ScoreAwarded = &score
			if err := repo.SaveGrade(ans); err != nil {
				return err
			}
			total += score

			for _, kid := range topics[q.ID] {
				t := tallies[kid]
				t.Total++
				if correct {
					t.Correct++
				}
				tallies[kid] = t
			}
			if !correct {
				missed = append(missed, q.ID)
			}
		}

		if _, err := s.tracker.Apply(tx, userID, tallies, now); err != nil {
			return err
		}
		if _, err := s.scheduler.RecordMisses(tx, userID, missed, now); err != nil {
			return err
		}

		affected, err := repo.MarkSubmitted(a.ID, total, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAttemptNotDoing
		}
		a.Status = StatusSubmitted
		a.TotalScore = &total
		a.SubmittedAt = &now

		for _, h := range s.hooks {
			if err := h.OnAttemptSubmitted(tx, userID, a.ExamID, now); err != nil {
				return err
			}
		}

		resp = buildResult(a, sheet, answers)
		log.WithFields(logrus.Fields{
			"score":   total,
			"topics":  len(tallies),
			"missed":  len(missed),
			"answers": len(answers),
		}).Info("Attempt graded")
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Submit failed")
		return nil, err
	}
	return resp, nil
}

func (s *service) Result(ctx context.Context, userID, attemptID uuid.UUID) (*ResultResponse, error) {
	db := s.db.WithContext(ctx)
	repo := NewRepository(db)

	a, err := repo.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	if a.Status != StatusSubmitted {
		return nil, ErrAttemptNotSubmitted
	}

	answers, err := repo.Answers(a.ID)
	if err != nil {
		return nil, err
	}
	sheet, err := s.loadSheet(db, a.ExamID)
	if err != nil {
		return nil, err
	}
	return buildResult(a, sheet, answers), nil
}

func (s *service) Detail(ctx context.Context, userID, attemptID uuid.UUID) (*DetailResponse, error) {
	db := s.db.WithContext(ctx)
	repo := NewRepository(db)

	a, err := repo.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrAttemptNotFound
	}

	exam, err := paper.NewRepository(db).FindExam(a.ExamID)
	if err != nil {
		return nil, err
	}
	answers, err := repo.Answers(a.ID)
	if err != nil {
		return nil, err
	}
	return s.sheet(db, exam, a, answers)
}

func (s *service) History(ctx context.Context, userID uuid.UUID, query HistoryQuery) ([]HistoryItem, error) {
	if err := config.Validate(query); err != nil {
		return nil, err
	}
	if query.Limit == 0 {
		query.Limit = 20
	}

	rows, err := NewRepository(s.db.WithContext(ctx)).History(userID, strings.ToUpper(query.Category), query.Limit)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to load attempt history")
		return nil, err
	}

	items := make([]HistoryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, HistoryItem{
			AttemptID:   r.AttemptID,
			ExamID:      r.ExamID,
			Title:       r.Title,
			Category:    r.Category,
			TotalScore:  r.TotalScore,
			StartedAt:   r.StartedAt,
			SubmittedAt: r.SubmittedAt,
		})
	}
	return items, nil
}

// answerSheet is an exam's ordered slots with their questions.
type answerSheet struct {
	slots     []paper.PaperQuestion
	questions map[uuid.UUID]question.Question
}

func (a answerSheet) weight(questionID uuid.UUID, fallback float64) float64 {
	for _, pq := range a.slots {
		if pq.QuestionID == questionID {
			return pq.Score
		}
	}
	return fallback
}

func (s *service) loadSheet(db *gorm.DB, examID uuid.UUID) (*answerSheet, error) {
	prepo := paper.NewRepository(db)
	exam, err := prepo.FindExam(examID)
	if err != nil {
		return nil, err
	}
	slots, err := prepo.PaperQuestions(exam.PaperID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(slots))
	for _, pq := range slots {
		ids = append(ids, pq.QuestionID)
	}
	found, err := question.NewRepository(db).FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]question.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	return &answerSheet{slots: slots, questions: byID}, nil
}

func (s *service) sheet(db *gorm.DB, exam *paper.Exam, a *Attempt, answers []Answer) (*StartResponse, error) {
	sheet, err := s.loadSheet(db, exam.ID)
	if err != nil {
		return nil, err
	}

	saved := make(map[uuid.UUID][]string, len(answers))
	for _, ans := range answers {
		saved[ans.QuestionID] = ans.Value
	}

	views := make([]QuestionView, 0, len(sheet.slots))
	for _, pq := range sheet.slots {
		q, ok := sheet.questions[pq.QuestionID]
		if !ok {
			continue
		}
		views = append(views, QuestionView{
			QuestionID: q.ID,
			OrderNo:    pq.OrderNo,
			Score:      pq.Score,
			Type:       q.Type,
			Stem:       q.Stem,
			Options:    q.Options,
			Difficulty: q.Difficulty,
			Saved:      saved[q.ID],
		})
	}

	return &StartResponse{
		Attempt:         ToAttemptResponse(a),
		ExamTitle:       exam.Title,
		DurationMinutes: exam.DurationMinutes,
		Questions:       views,
	}, nil
}

// buildResult lists every paper slot in order. Matched keywords are not
// stored, so SHORT answers are re-graded here to recover them.
func buildResult(a *Attempt, sheet *answerSheet, answers []Answer) *ResultResponse {
	byQuestion := make(map[uuid.UUID]Answer, len(answers))
	for _, ans := range answers {
		byQuestion[ans.QuestionID] = ans
	}

	resp := &ResultResponse{
		AttemptID:   a.ID,
		ExamID:      a.ExamID,
		SubmittedAt: a.SubmittedAt,
		Items:       make([]ResultItem, 0, len(sheet.slots)),
	}
	if a.TotalScore != nil {
		resp.TotalScore = *a.TotalScore
	}

	for _, pq := range sheet.slots {
		resp.MaxScore += pq.Score
		q, ok := sheet.questions[pq.QuestionID]
		if !ok {
			continue
		}
		item := ResultItem{
			QuestionID:    q.ID,
			OrderNo:       pq.OrderNo,
			Type:          q.Type,
			MaxScore:      pq.Score,
			CorrectAnswer: q.Answer,
			Analysis:      q.Analysis,
		}
		if ans, ok := byQuestion[q.ID]; ok {
			item.Answered = true
			item.Value = ans.Value
			if ans.IsCorrect != nil {
				item.IsCorrect = *ans.IsCorrect
			}
			if ans.ScoreAwarded != nil {
				item.Score = *ans.ScoreAwarded
			}
			if q.Type == question.TypeShort {
				if canonical, err := question.ParseCanonical(q.Type, []byte(q.Answer)); err == nil {
					item.MatchedKeywords = grading.Grade(q.Type, canonical, ans.Value).MatchedKeywords
				}
			}
		}
		if item.IsCorrect {
			resp.CorrectCount++
		}
		resp.Items = append(resp.Items, item)
	}

	sort.SliceStable(resp.Items, func(i, j int) bool { return resp.Items[i].OrderNo < resp.Items[j].OrderNo })
	return resp
}
