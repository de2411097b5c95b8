package paper

import (
	"math/rand/v2"

	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

type Container struct {
	Handler  *Handler
	Service  Service
	Composer *Composer
}

func NewContainer(db *gorm.DB, settings config.Settings, rng *rand.Rand) *Container {
	service := NewService(db)
	composer := NewComposer(db, settings, rng)
	handler := NewHandler(service, composer)

	return &Container{
		Handler:  handler,
		Service:  service,
		Composer: composer,
	}
}
