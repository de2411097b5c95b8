package paper

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
)

// Composition is a materialized paper with its published exam.
type Composition struct {
	Paper       *Paper          `json:"paper"`
	Exam        *Exam           `json:"exam"`
	QuestionIDs []uuid.UUID     `json:"question_ids"`
	Audit       GenerationAudit `json:"audit"`
}

// Composer selects questions under one of the generation policies and
// writes the Paper, PaperQuestion and Exam rows in one transaction.
type Composer struct {
	db        *gorm.DB
	settings  config.Settings
	scheduler *review.Scheduler

	mu  *sync.Mutex
	rng *rand.Rand
}

// NewComposer uses rng for every sampling step; nil seeds from the clock.
func NewComposer(db *gorm.DB, settings config.Settings, rng *rand.Rand) *Composer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Composer{
		db:        db,
		settings:  settings,
		scheduler: review.NewScheduler(settings),
		mu:        &sync.Mutex{},
		rng:       rng,
	}
}

// WithTx returns a composer that runs inside tx. The sampler is shared.
func (c *Composer) WithTx(tx *gorm.DB) *Composer {
	cp := *c
	cp.db = tx
	return &cp
}

func (c *Composer) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.db.WithContext(ctx).Transaction(fn)
}

// sample draws up to k questions from pool without replacement.
func (c *Composer) sample(pool []question.Question, k int) []question.Question {
	if k <= 0 || len(pool) == 0 {
		return nil
	}
	out := make([]question.Question, len(pool))
	copy(out, pool)

	c.mu.Lock()
	c.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	c.mu.Unlock()

	if k < len(out) {
		out = out[:k]
	}
	return out
}

func exclude(pool []question.Question, taken map[uuid.UUID]bool) []question.Question {
	out := make([]question.Question, 0, len(pool))
	for _, q := range pool {
		if !taken[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

type draft struct {
	title     string
	category  Category
	duration  int
	createdBy uuid.UUID
	questions []question.Question
	audit     GenerationAudit
}

func (c *Composer) materialize(tx *gorm.DB, d draft) (*Composition, error) {
	score := c.settings.DefaultQuestionScore
	now := c.settings.Now()

	ids := make([]uuid.UUID, 0, len(d.questions))
	p := &Paper{
		ID:         uuid.New(),
		Title:      d.title,
		Mode:       ModeAuto,
		TotalScore: score * float64(len(d.questions)),
		CreatedBy:  d.createdBy,
		CreatedAt:  now,
	}
	for i, q := range d.questions {
		ids = append(ids, q.ID)
		p.Questions = append(p.Questions, PaperQuestion{
			ID:         uuid.New(),
			PaperID:    p.ID,
			QuestionID: q.ID,
			OrderNo:    i + 1,
			Score:      score,
		})
	}

	d.audit.Policy = d.category
	d.audit.TotalActual = len(d.questions)
	d.audit.GeneratedAt = now
	p.Config = datatypes.NewJSONType(d.audit)

	repo := NewRepository(tx)
	if err := repo.CreatePaper(p); err != nil {
		return nil, err
	}

	exam := &Exam{
		ID:              uuid.New(),
		PaperID:         p.ID,
		Title:           d.title,
		Category:        d.category,
		DurationMinutes: d.duration,
		Status:          ExamStatusPublished,
		CreatedBy:       d.createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repo.CreateExam(exam); err != nil {
		return nil, err
	}

	return &Composition{Paper: p, Exam: exam, QuestionIDs: ids, Audit: d.audit}, nil
}
