package attempt

import "github.com/saulo-duarte/exam-prep-lambda/internal/apperr"

var (
	ErrAttemptNotFound     = apperr.NotFound("ATTEMPT_NOT_FOUND", "attempt not found")
	ErrAttemptInProgress   = apperr.InvalidState("ATTEMPT_IN_PROGRESS", "an attempt for this exam is already in progress")
	ErrAttemptNotDoing     = apperr.InvalidState("ATTEMPT_NOT_DOING", "attempt is not in progress")
	ErrAttemptNotSubmitted = apperr.InvalidState("ATTEMPT_NOT_SUBMITTED", "attempt has not been submitted")
	ErrNoAnswers           = apperr.InsufficientData("NO_ANSWERS", "attempt has no answers to grade")
	ErrQuestionNotInExam   = apperr.Validation("QUESTION_NOT_IN_EXAM", "question does not belong to this exam")
)
