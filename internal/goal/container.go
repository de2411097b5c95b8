package goal

import (
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

type Container struct {
	Handler *Handler
	Service Service
}

func NewContainer(db *gorm.DB, settings config.Settings) *Container {
	repo := NewRepository(db)
	service := NewService(repo, settings)
	handler := NewHandler(service)

	return &Container{
		Handler: handler,
		Service: service,
	}
}
