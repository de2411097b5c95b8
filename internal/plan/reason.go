package plan

import "time"

// ItemReason explains why an item was scheduled. Exactly one of Learn or
// Review is set, matching the item type.
type ItemReason struct {
	Kind        ItemType      `json:"kind"`
	Learn       *LearnReason  `json:"learn,omitempty"`
	Review      *ReviewReason `json:"review,omitempty"`
	Explanation string        `json:"explanation"`
}

type LearnReason struct {
	Mastery          float64 `json:"mastery"`
	Weight           float64 `json:"weight"`
	Priority         float64 `json:"priority"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	Truncated        bool    `json:"truncated"`
}

type ReviewReason struct {
	WrongCount   int       `json:"wrong_count"`
	LastWrongAt  time.Time `json:"last_wrong_at"`
	NextReviewAt time.Time `json:"next_review_at"`
}
