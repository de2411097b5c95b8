package review

import (
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

type Container struct {
	Handler   *Handler
	Service   Service
	Scheduler *Scheduler
}

func NewContainer(db *gorm.DB, settings config.Settings) *Container {
	service := NewService(db, settings)
	handler := NewHandler(service)

	return &Container{
		Handler:   handler,
		Service:   service,
		Scheduler: NewScheduler(settings),
	}
}
