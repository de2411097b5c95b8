package attempt

import (
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
)

type Container struct {
	Handler *Handler
	Service Service
}

func NewContainer(db *gorm.DB, settings config.Settings, tracker *mastery.Tracker, scheduler *review.Scheduler) *Container {
	service := NewService(db, settings, tracker, scheduler)
	handler := NewHandler(service)

	return &Container{
		Handler: handler,
		Service: service,
	}
}
