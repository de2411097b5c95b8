package plan

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

// TopicPriority is a topic ranked for study.
type TopicPriority struct {
	Topic    knowledge.KnowledgePoint
	Mastery  float64
	Priority float64
	Minutes  int
}

// ReviewCandidate is a ledger row with what the item needs to show.
type ReviewCandidate struct {
	Row         review.WrongQuestion
	Title       string
	KnowledgeID *uuid.UUID
}

// Horizon is everything the day loop consumes.
type Horizon struct {
	Start        util.LocalDate
	Days         int
	DailyMinutes int
	Topics       []TopicPriority
	Reviews      []ReviewCandidate
}

type Generator struct {
	settings config.Settings
}

func NewGenerator(settings config.Settings) *Generator {
	return &Generator{settings: settings}
}

// Prioritize ranks topics by (1 - mastery) * weight, highest first. Unseen
// topics count as mastery 0; ties keep input order.
func (g *Generator) Prioritize(topics []knowledge.KnowledgePoint, mastery map[uuid.UUID]float64) []TopicPriority {
	out := make([]TopicPriority, 0, len(topics))
	for _, kp := range topics {
		m := mastery[kp.ID]
		minutes := kp.EstimatedMinutes
		if minutes <= 0 {
			minutes = g.settings.DefaultLearnMinutes
		}
		out = append(out, TopicPriority{
			Topic:    kp,
			Mastery:  m,
			Priority: (1 - m) * kp.Weight,
			Minutes:  minutes,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// Build lays out the horizon day by day. Reviews due on a day come first at
// a fixed cost each; LEARN items then fill the budget from one cursor over
// the ranked topics, so a topic is scheduled at most once.
func (g *Generator) Build(h Horizon) []PlanItem {
	loc := g.settings.Loc()

	byDay := make(map[string][]ReviewCandidate)
	for _, rc := range h.Reviews {
		if rc.Row.NextReviewAt == nil {
			continue
		}
		day := util.DateOf(*rc.Row.NextReviewAt, loc).String()
		byDay[day] = append(byDay[day], rc)
	}

	var items []PlanItem
	seq := 0
	cursor := 0
	for d := 0; d < h.Days; d++ {
		date := h.Start.AddDays(d)
		remaining := h.DailyMinutes

		for _, rc := range byDay[date.String()] {
			if remaining <= 0 {
				break
			}
			minutes := g.settings.ReviewItemMinutes
			if minutes > remaining {
				minutes = remaining
			}
			qid := rc.Row.QuestionID
			seq++
			items = append(items, PlanItem{
				Seq:             seq,
				Date:            date,
				Type:            ItemReview,
				KnowledgeID:     rc.KnowledgeID,
				QuestionID:      &qid,
				Title:           rc.Title,
				ExpectedMinutes: minutes,
				Status:          StatusTodo,
				Reason: datatypes.NewJSONType(ItemReason{
					Kind: ItemReview,
					Review: &ReviewReason{
						WrongCount:   rc.Row.WrongCount,
						LastWrongAt:  rc.Row.LastWrongAt,
						NextReviewAt: *rc.Row.NextReviewAt,
					},
					Explanation: fmt.Sprintf("missed %d times, due %s", rc.Row.WrongCount, date),
				}),
			})
			remaining -= g.settings.ReviewItemMinutes
		}

		for remaining > 0 && cursor < len(h.Topics) {
			tp := h.Topics[cursor]
			cursor++

			minutes := tp.Minutes
			if minutes > remaining {
				minutes = remaining
			}
			kid := tp.Topic.ID
			seq++
			items = append(items, PlanItem{
				Seq:             seq,
				Date:            date,
				Type:            ItemLearn,
				KnowledgeID:     &kid,
				Title:           "Learn: " + tp.Topic.Name,
				ExpectedMinutes: minutes,
				Status:          StatusTodo,
				Reason: datatypes.NewJSONType(ItemReason{
					Kind: ItemLearn,
					Learn: &LearnReason{
						Mastery:          tp.Mastery,
						Weight:           tp.Topic.Weight,
						Priority:         tp.Priority,
						EstimatedMinutes: tp.Minutes,
						Truncated:        minutes < tp.Minutes,
					},
					Explanation: fmt.Sprintf("mastery %.1f%%, weight %g, priority %.2f",
						tp.Mastery*100, tp.Topic.Weight, tp.Priority),
				}),
			})
			remaining -= minutes
		}
	}
	return items
}

// reviewTitle shortens the stem to a list-friendly label.
func reviewTitle(stem string) string {
	const max = 20
	r := []rune(stem)
	if len(r) <= max {
		return "Review: " + stem
	}
	return "Review: " + string(r[:max]) + "..."
}

func dayRange(start util.LocalDate, days int, loc *time.Location) (time.Time, time.Time) {
	return start.StartIn(loc).UTC(), start.AddDays(days).StartIn(loc).UTC()
}
