package plan

import (
	"github.com/saulo-duarte/exam-prep-lambda/internal/apperr"
	"github.com/saulo-duarte/exam-prep-lambda/internal/goal"
)

var (
	ErrNoGoal            = goal.ErrNoGoal
	ErrNoKnowledgePoints = apperr.InsufficientData("NO_KNOWLEDGE_POINTS", "no knowledge points to plan")
	ErrNoActivePlan      = apperr.NotFound("NO_ACTIVE_PLAN", "no active learning plan")
	ErrItemNotFound      = apperr.NotFound("PLAN_ITEM_NOT_FOUND", "plan item not found")
	ErrItemNotTodo       = apperr.InvalidState("PLAN_ITEM_NOT_TODO", "only TODO items can be started or changed")
	ErrInvalidItemStatus = apperr.Validation("INVALID_ITEM_STATUS", "status must be DONE or SKIPPED")
	ErrItemMissingTopic  = apperr.InvalidState("PLAN_ITEM_MISSING_TOPIC", "practice item has no knowledge point")
)
