// Package testutil builds migrated in-memory databases and small fixture
// graphs for storage-backed tests.
package testutil

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/database"
	"github.com/saulo-duarte/exam-prep-lambda/internal/goal"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
	util "github.com/saulo-duarte/exam-prep-lambda/internal/utils"
)

// Now is 10:00 in Asia/Shanghai.
var Now = time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Settings returns default settings on a fixed clock set to at.
func Settings(at time.Time) (config.Settings, *config.FixedClock) {
	clock := &config.FixedClock{T: at}
	s := config.DefaultSettings()
	s.Clock = clock
	return s, clock
}

func Rand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func Topic(t *testing.T, db *gorm.DB, parent *knowledge.KnowledgePoint, name, code string, weight float64, minutes int) knowledge.KnowledgePoint {
	t.Helper()

	kp := knowledge.KnowledgePoint{
		ID:               uuid.New(),
		Name:             name,
		Weight:           weight,
		EstimatedMinutes: minutes,
	}
	if parent != nil {
		kp.ParentID = &parent.ID
	}
	if code != "" {
		kp.Code = &code
	}
	require.NoError(t, db.Create(&kp).Error)
	return kp
}

// Subject is a three-level tree: subject root, modules, leaf topics.
type Subject struct {
	Root    knowledge.KnowledgePoint
	Modules []knowledge.KnowledgePoint
	Leaves  [][]knowledge.KnowledgePoint
}

func SubjectTree(t *testing.T, db *gorm.DB, code string, modules, leavesPerModule int) Subject {
	t.Helper()

	s := Subject{Root: Topic(t, db, nil, code, code, 1, 0)}
	for m := 0; m < modules; m++ {
		mod := Topic(t, db, &s.Root, fmt.Sprintf("Module %d", m+1), fmt.Sprintf("%s_M%d", code, m+1), 1, 60)
		s.Modules = append(s.Modules, mod)

		var leaves []knowledge.KnowledgePoint
		for l := 0; l < leavesPerModule; l++ {
			leaves = append(leaves, Topic(t, db, &mod, fmt.Sprintf("Topic %d.%d", m+1, l+1), "", 1, 30))
		}
		s.Leaves = append(s.Leaves, leaves)
	}
	return s
}

// Question stores a question with a raw JSON canonical answer, e.g. `"A"`
// or `{"keywords":["x","y"],"min_hit":1}`.
func Question(t *testing.T, db *gorm.DB, typ question.Type, difficulty int, answer string, topics ...uuid.UUID) question.Question {
	t.Helper()

	q := question.Question{
		ID:         uuid.New(),
		Type:       typ,
		Stem:       fmt.Sprintf("%s question %s", typ, uuid.NewString()[:8]),
		Options:    datatypes.JSON(`["A","B","C","D"]`),
		Answer:     datatypes.JSON(answer),
		Difficulty: difficulty,
	}
	require.NoError(t, question.NewRepository(db).Create(&q, topics))
	return q
}

// Questions stores n SINGLE questions with answer "A" on one topic.
func Questions(t *testing.T, db *gorm.DB, n, difficulty int, topic uuid.UUID) []question.Question {
	t.Helper()

	out := make([]question.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Question(t, db, question.TypeSingle, difficulty, `"A"`, topic))
	}
	return out
}

// Exam materializes a MANUAL paper over qs and publishes it. Each slot is
// worth score points.
func Exam(t *testing.T, db *gorm.DB, category paper.Category, score float64, qs ...question.Question) paper.Exam {
	t.Helper()
	return ExamBy(t, db, uuid.New(), category, score, qs...)
}

// ExamBy is Exam with an explicit creator, which owns personal categories.
func ExamBy(t *testing.T, db *gorm.DB, creator uuid.UUID, category paper.Category, score float64, qs ...question.Question) paper.Exam {
	t.Helper()

	p := paper.Paper{
		ID:         uuid.New(),
		Title:      "fixture paper",
		Mode:       paper.ModeManual,
		Config:     datatypes.NewJSONType(paper.GenerationAudit{Policy: category}),
		TotalScore: score * float64(len(qs)),
		CreatedBy:  creator,
	}
	for i, q := range qs {
		p.Questions = append(p.Questions, paper.PaperQuestion{
			PaperID:    p.ID,
			QuestionID: q.ID,
			OrderNo:    i + 1,
			Score:      score,
		})
	}
	repo := paper.NewRepository(db)
	require.NoError(t, repo.CreatePaper(&p))

	exam := paper.Exam{
		PaperID:   p.ID,
		Title:     "fixture exam",
		Category:  category,
		Status:    paper.ExamStatusPublished,
		CreatedBy: creator,
	}
	require.NoError(t, repo.CreateExam(&exam))
	return exam
}

func Goal(t *testing.T, db *gorm.DB, userID uuid.UUID, examDate util.LocalDate, dailyMinutes int) goal.Goal {
	t.Helper()

	g := goal.Goal{
		UserID:       userID,
		ExamDate:     examDate,
		DailyMinutes: dailyMinutes,
	}
	require.NoError(t, db.Create(&g).Error)
	return g
}
