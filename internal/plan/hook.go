package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

// Completer closes plan items when the exam they link to is submitted.
type Completer struct{}

func NewCompleter() *Completer {
	return &Completer{}
}

func (c *Completer) OnAttemptSubmitted(tx *gorm.DB, userID, examID uuid.UUID, at time.Time) error {
	n, err := NewRepository(tx).CompleteByExam(userID, examID, at)
	if err != nil {
		return err
	}
	if n > 0 {
		config.WithContext(tx.Statement.Context).WithFields(logrus.Fields{
			"user_id": userID,
			"exam_id": examID,
			"items":   n,
		}).Info("Plan items completed by submission")
	}
	return nil
}
