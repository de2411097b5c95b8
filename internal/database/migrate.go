// Package database owns the schema. Every persisted model is listed here
// so that the CLI, the lambda cold start and the tests migrate the same set.
package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/attempt"
	"github.com/saulo-duarte/exam-prep-lambda/internal/goal"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/plan"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
)

func Models() []interface{} {
	return []interface{}{
		&knowledge.KnowledgePoint{},
		&question.Question{},
		&question.QuestionKnowledge{},
		&paper.Paper{},
		&paper.PaperQuestion{},
		&paper.Exam{},
		&attempt.Attempt{},
		&attempt.Answer{},
		&mastery.UserKnowledgeState{},
		&review.WrongQuestion{},
		&goal.Goal{},
		&plan.LearningPlan{},
		&plan.PlanItem{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
