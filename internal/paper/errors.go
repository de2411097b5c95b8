package paper

import "github.com/saulo-duarte/exam-prep-lambda/internal/apperr"

var (
	ErrExamNotFound           = apperr.NotFound("EXAM_NOT_FOUND", "exam not found")
	ErrPaperNotFound          = apperr.NotFound("PAPER_NOT_FOUND", "paper not found")
	ErrExamArchived           = apperr.InvalidState("EXAM_ARCHIVED", "archived exams cannot change status")
	ErrExamNotDraft           = apperr.InvalidState("EXAM_NOT_DRAFT", "only draft exams can be published")
	ErrInsufficientQuestions  = apperr.InsufficientData("INSUFFICIENT_QUESTIONS", "no questions could be selected for this paper")
	ErrNoQuestionsForTopic    = apperr.InsufficientData("NO_QUESTIONS_FOR_TOPIC", "the topic has no linked questions")
	ErrNoModules              = apperr.InsufficientData("NO_MODULES", "the subject has no modules")
	ErrNoDueReviews           = apperr.InsufficientData("NO_DUE_REVIEWS", "no wrong questions are due for review")
	ErrReviewQuestionNotFound = apperr.NotFound("REVIEW_QUESTION_NOT_FOUND", "question is not in the wrong-question ledger")
	ErrInvalidCount           = apperr.Validation("INVALID_COUNT", "count is out of range")
	ErrInvalidRatio           = apperr.Validation("INVALID_RATIO", "ratio values must be non-negative")
	ErrInvalidPracticeMode    = apperr.Validation("INVALID_PRACTICE_MODE", "mode must be ADAPTIVE or FIXED")
)
