package container

import (
	"context"

	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/attempt"
	"github.com/saulo-duarte/exam-prep-lambda/internal/auth"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/database"
	"github.com/saulo-duarte/exam-prep-lambda/internal/goal"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/plan"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
	"github.com/saulo-duarte/exam-prep-lambda/internal/router"
	"github.com/saulo-duarte/exam-prep-lambda/internal/user"
)

type Container struct {
	Settings config.Settings

	MasteryContainer *mastery.Container
	ReviewContainer  *review.Container
	PaperContainer   *paper.Container
	AttemptContainer *attempt.Container
	GoalContainer    *goal.Container
	PlanContainer    *plan.Container
	UserHandler      *user.Handler
}

// New reads the environment, connects to postgres and wires every feature.
// Configuration errors are fatal.
func New() *Container {
	config.Init()
	auth.Init()

	settings, err := config.LoadSettings()
	if err != nil {
		config.Logger.WithError(err).Fatal("Invalid engine settings")
	}

	dsn := config.GetEnv("DATABASE_DSN", "")
	if err := config.Connect(context.Background(), dsn); err != nil {
		config.Logger.WithError(err).Fatal("Failed to connect to DB")
	}

	if config.GetEnv("AUTO_MIGRATE", "false") == "true" {
		if err := database.AutoMigrate(config.DB); err != nil {
			config.Logger.WithError(err).Fatal("Migration failed")
		}
	}

	return Build(config.DB, settings)
}

// Build wires the feature containers over db. Submissions complete the
// plan items linked to the submitted exam.
func Build(db *gorm.DB, settings config.Settings) *Container {
	masteryContainer := mastery.NewContainer(db, settings)
	reviewContainer := review.NewContainer(db, settings)
	paperContainer := paper.NewContainer(db, settings, nil)
	goalContainer := goal.NewContainer(db, settings)

	attemptContainer := attempt.NewContainer(
		db,
		settings,
		masteryContainer.Tracker,
		reviewContainer.Scheduler,
	)
	planContainer := plan.NewContainer(
		db,
		settings,
		paperContainer.Composer,
		attemptContainer.Service,
	)
	attemptContainer.Service.OnSubmit(planContainer.Completer)

	return &Container{
		Settings:         settings,
		MasteryContainer: masteryContainer,
		ReviewContainer:  reviewContainer,
		PaperContainer:   paperContainer,
		AttemptContainer: attemptContainer,
		GoalContainer:    goalContainer,
		PlanContainer:    planContainer,
		UserHandler:      user.NewHandler(goalContainer.Service),
	}
}

func (c *Container) RouterConfig() router.RouterConfig {
	return router.RouterConfig{
		UserHandler:    c.UserHandler,
		PaperHandler:   c.PaperContainer.Handler,
		AttemptHandler: c.AttemptContainer.Handler,
		ReviewHandler:  c.ReviewContainer.Handler,
		MasteryHandler: c.MasteryContainer.Handler,
		GoalHandler:    c.GoalContainer.Handler,
		PlanHandler:    c.PlanContainer.Handler,
	}
}
