package plan

type ItemType string

const (
	ItemLearn    ItemType = "LEARN"
	ItemPractice ItemType = "PRACTICE"
	ItemReview   ItemType = "REVIEW"
	ItemMock     ItemType = "MOCK"
)

type ItemStatus string

const (
	StatusTodo    ItemStatus = "TODO"
	StatusDone    ItemStatus = "DONE"
	StatusSkipped ItemStatus = "SKIPPED"
)

var AllItemStatuses = []ItemStatus{StatusTodo, StatusDone, StatusSkipped}

func (s ItemStatus) IsValid() bool {
	for _, v := range AllItemStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Action tells the client what starting an item produced.
type Action string

const (
	ActionLearn Action = "LEARN"
	ActionExam  Action = "EXAM"
)
