package mastery

import (
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

type Container struct {
	Handler *Handler
	Service Service
	Tracker *Tracker
}

func NewContainer(db *gorm.DB, settings config.Settings) *Container {
	service := NewService(db)
	handler := NewHandler(service, settings.DefaultSubject)

	return &Container{
		Handler: handler,
		Service: service,
		Tracker: NewTracker(settings),
	}
}
