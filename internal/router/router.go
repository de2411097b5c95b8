package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/saulo-duarte/exam-prep-lambda/internal/attempt"
	"github.com/saulo-duarte/exam-prep-lambda/internal/auth"
	"github.com/saulo-duarte/exam-prep-lambda/internal/goal"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/middlewares"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/plan"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
	"github.com/saulo-duarte/exam-prep-lambda/internal/user"
)

type RouterConfig struct {
	UserHandler    *user.Handler
	PaperHandler   *paper.Handler
	AttemptHandler *attempt.Handler
	ReviewHandler  *review.Handler
	MasteryHandler *mastery.Handler
	GoalHandler    *goal.Handler
	PlanHandler    *plan.Handler
}

func New(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/logout", auth.NewHandler().Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/users", user.Routes(cfg.UserHandler))
		r.Mount("/exams", paper.Routes(cfg.PaperHandler, cfg.AttemptHandler.Start))
		r.Mount("/attempts", attempt.Routes(cfg.AttemptHandler))
		r.Mount("/wrong-questions", review.Routes(cfg.ReviewHandler, cfg.PaperHandler.GenerateReview))
		r.Mount("/goals", goal.Routes(cfg.GoalHandler))
		r.Mount("/plans", plan.Routes(cfg.PlanHandler))
		r.Mount("/analytics", mastery.Routes(cfg.MasteryHandler))

		r.Post("/practice/generate", cfg.PaperHandler.GeneratePractice)
		r.Post("/mock/generate", cfg.PaperHandler.GenerateMock)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Mount("/admin/exams", paper.AdminRoutes(cfg.PaperHandler))
		})
	})
	return r
}
