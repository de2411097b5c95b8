package mastery

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

// Tracker applies one grading event's tallies to the user's mastery rows.
// It runs on the caller's transaction.
type Tracker struct {
	settings config.Settings
}

func NewTracker(settings config.Settings) *Tracker {
	return &Tracker{settings: settings}
}

// Apply updates each touched topic once, using the event's aggregate rate,
// and stamps every row with at. Unobserved pairs start at the observed rate.
func (t *Tracker) Apply(tx *gorm.DB, userID uuid.UUID, tallies map[uuid.UUID]Tally, at time.Time) ([]UserKnowledgeState, error) {
	if len(tallies) == 0 {
		return nil, nil
	}

	topicIDs := make([]uuid.UUID, 0, len(tallies))
	for id, tally := range tallies {
		if tally.Total > 0 {
			topicIDs = append(topicIDs, id)
		}
	}
	sort.Slice(topicIDs, func(i, j int) bool { return topicIDs[i].String() < topicIDs[j].String() })

	repo := NewRepository(tx)
	existing, err := repo.FindByUserAndTopics(userID, topicIDs)
	if err != nil {
		return nil, err
	}
	prior := make(map[uuid.UUID]UserKnowledgeState, len(existing))
	for _, s := range existing {
		prior[s.KnowledgeID] = s
	}

	var created []UserKnowledgeState
	updated := make([]UserKnowledgeState, 0, len(topicIDs))
	for _, id := range topicIDs {
		observed := tallies[id].Observed()
		state, ok := prior[id]
		if !ok {
			state = UserKnowledgeState{
				ID:          uuid.New(),
				UserID:      userID,
				KnowledgeID: id,
				Mastery:     clamp(observed),
				CreatedAt:   at,
				UpdatedAt:   at,
			}
			created = append(created, state)
			updated = append(updated, state)
			continue
		}

		state.Mastery = Blend(t.settings.MasteryAlpha, state.Mastery, observed)
		state.UpdatedAt = at
		if err := repo.UpdateMastery(&state); err != nil {
			return nil, err
		}
		updated = append(updated, state)
	}

	if err := repo.Upsert(created); err != nil {
		return nil, err
	}
	return updated, nil
}
