package goal

import (
	"github.com/google/uuid"

	"github.com/saulo-duarte/exam-prep-lambda/internal/apperr"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

const defaultDailyMinutes = 60

var (
	ErrGoalNotFound      = apperr.NotFound("GOAL_NOT_FOUND", "goal not found")
	ErrNoGoal            = apperr.InsufficientData("NO_GOAL", "set an exam goal first")
	ErrExamDateRequired  = apperr.Validation("EXAM_DATE_REQUIRED", "exam_date is required")
	ErrExamDateNotFuture = apperr.Validation("EXAM_DATE_NOT_FUTURE", "exam_date must be after today")
)

type Service interface {
	Create(userID uuid.UUID, dto CreateGoalDTO) (*GoalResponse, error)
	Current(userID uuid.UUID) (*GoalResponse, error)
	List(userID uuid.UUID, query ListQuery) (*GoalListResponse, error)
	Update(id uuid.UUID, userID uuid.UUID, dto UpdateGoalDTO) (*GoalResponse, error)
	Delete(id uuid.UUID, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	settings config.Settings
}

func NewService(repo Repository, settings config.Settings) Service {
	return &service{repo: repo, settings: settings}
}

func (s *service) today() util.LocalDate {
	return util.DateOf(s.settings.Now(), s.settings.Loc())
}

func (s *service) Create(userID uuid.UUID, dto CreateGoalDTO) (*GoalResponse, error) {
	if err := config.Validate(dto); err != nil {
		return nil, err
	}
	if dto.ExamDate.IsZero() {
		return nil, ErrExamDateRequired
	}
	if !dto.ExamDate.After(s.today()) {
		return nil, ErrExamDateNotFuture
	}
	if dto.DailyMinutes == 0 {
		dto.DailyMinutes = defaultDailyMinutes
	}

	goal := Goal{
		UserID:       userID,
		ExamDate:     dto.ExamDate,
		TargetScore:  dto.TargetScore,
		DailyMinutes: dto.DailyMinutes,
	}
	if err := s.repo.Create(&goal); err != nil {
		return nil, err
	}

	return s.toResponse(&goal), nil
}

func (s *service) Current(userID uuid.UUID) (*GoalResponse, error) {
	goal, err := s.repo.Current(userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrNoGoal
	}
	return s.toResponse(goal), nil
}

func (s *service) List(userID uuid.UUID, query ListQuery) (*GoalListResponse, error) {
	if err := config.Validate(query); err != nil {
		return nil, err
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Size == 0 {
		query.Size = 20
	}

	goals, total, err := s.repo.List(userID, (query.Page-1)*query.Size, query.Size)
	if err != nil {
		return nil, err
	}

	responses := make([]GoalResponse, 0, len(goals))
	for i := range goals {
		responses = append(responses, *s.toResponse(&goals[i]))
	}
	return &GoalListResponse{Items: responses, Total: total, Page: query.Page, Size: query.Size}, nil
}

func (s *service) Update(id uuid.UUID, userID uuid.UUID, dto UpdateGoalDTO) (*GoalResponse, error) {
	if err := config.Validate(dto); err != nil {
		return nil, err
	}

	goal, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotFound
	}

	if dto.ExamDate != nil {
		if !dto.ExamDate.After(s.today()) {
			return nil, ErrExamDateNotFuture
		}
		goal.ExamDate = *dto.ExamDate
	}
	if dto.TargetScore != nil {
		goal.TargetScore = dto.TargetScore
	}
	if dto.DailyMinutes != nil {
		goal.DailyMinutes = *dto.DailyMinutes
	}

	if err := s.repo.Update(goal); err != nil {
		return nil, err
	}

	return s.toResponse(goal), nil
}

func (s *service) Delete(id uuid.UUID, userID uuid.UUID) error {
	goal, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if goal.UserID != userID {
		return ErrGoalNotFound
	}

	return s.repo.Delete(id)
}

func (s *service) toResponse(goal *Goal) *GoalResponse {
	days := int(goal.ExamDate.Sub(s.today().Time).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &GoalResponse{
		ID:           goal.ID,
		ExamDate:     goal.ExamDate,
		DaysLeft:     days,
		TargetScore:  goal.TargetScore,
		DailyMinutes: goal.DailyMinutes,
		CreatedAt:    goal.CreatedAt,
		UpdatedAt:    goal.UpdatedAt,
	}
}
