package plan

import (
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/attempt"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
)

type Container struct {
	Handler   *Handler
	Service   Service
	Completer *Completer
}

func NewContainer(db *gorm.DB, settings config.Settings, composer *paper.Composer, attempts attempt.Service) *Container {
	service := NewService(db, settings, composer, attempts)
	handler := NewHandler(service)

	return &Container{
		Handler:   handler,
		Service:   service,
		Completer: NewCompleter(),
	}
}
