// Package seed loads a YAML question bank (knowledge tree plus questions)
// into the database. Knowledge points are matched by code and questions by
// stem, so applying the same bank twice adds nothing.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/apperr"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
)

var ErrInvalidBank = apperr.Validation("INVALID_BANK", "question bank is invalid")

type Bank struct {
	Knowledge []Node     `yaml:"knowledge"`
	Questions []Question `yaml:"questions"`
}

type Node struct {
	Code             string  `yaml:"code"`
	Name             string  `yaml:"name"`
	Weight           float64 `yaml:"weight"`
	EstimatedMinutes int     `yaml:"estimated_minutes"`
	Children         []Node  `yaml:"children"`
}

type Question struct {
	Type       string   `yaml:"type"`
	Stem       string   `yaml:"stem"`
	Options    any      `yaml:"options"`
	Answer     any      `yaml:"answer"`
	Analysis   string   `yaml:"analysis"`
	Difficulty int      `yaml:"difficulty"`
	Topics     []string `yaml:"topics"`
}

type Result struct {
	TopicsCreated    int `json:"topics_created"`
	TopicsReused     int `json:"topics_reused"`
	QuestionsCreated int `json:"questions_created"`
	QuestionsSkipped int `json:"questions_skipped"`
}

func Parse(r io.Reader) (*Bank, error) {
	var bank Bank
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bank); err != nil {
		if errors.Is(err, io.EOF) {
			return &bank, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}
	return &bank, nil
}

// Apply writes the bank in a single transaction; any invalid entry rolls
// the whole load back.
func Apply(ctx context.Context, db *gorm.DB, bank *Bank) (Result, error) {
	log := config.WithContext(ctx)
	var res Result

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kps := knowledge.NewRepository(tx)
		questions := question.NewRepository(tx)

		codes := map[string]uuid.UUID{}
		for _, node := range bank.Knowledge {
			if err := applyNode(kps, node, nil, codes, &res); err != nil {
				return err
			}
		}

		for i, q := range bank.Questions {
			created, err := applyQuestion(kps, questions, q, codes)
			if err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
			if created {
				res.QuestionsCreated++
			} else {
				res.QuestionsSkipped++
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to apply question bank")
		return Result{}, err
	}

	log.WithField("topics_created", res.TopicsCreated).
		WithField("questions_created", res.QuestionsCreated).
		WithField("questions_skipped", res.QuestionsSkipped).
		Info("Question bank applied")
	return res, nil
}

func applyNode(repo knowledge.Repository, n Node, parent *uuid.UUID, codes map[string]uuid.UUID, res *Result) error {
	code := strings.TrimSpace(n.Code)
	if code == "" || strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: knowledge node needs code and name", ErrInvalidBank)
	}
	if _, dup := codes[code]; dup {
		return fmt.Errorf("%w: duplicate knowledge code %s", ErrInvalidBank, code)
	}
	if n.Weight < 0 || n.EstimatedMinutes < 0 {
		return fmt.Errorf("%w: %s has a negative weight or duration", ErrInvalidBank, code)
	}

	existing, err := repo.FindByCode(code)
	switch {
	case err == nil:
		codes[code] = existing.ID
		res.TopicsReused++
	case errors.Is(err, knowledge.ErrKnowledgePointNotFound):
		kp := &knowledge.KnowledgePoint{
			ParentID:         parent,
			Name:             n.Name,
			Code:             &code,
			Weight:           n.Weight,
			EstimatedMinutes: n.EstimatedMinutes,
		}
		if kp.Weight == 0 {
			kp.Weight = 1
		}
		if kp.EstimatedMinutes == 0 {
			kp.EstimatedMinutes = 30
		}
		if err := repo.Create(kp); err != nil {
			return err
		}
		codes[code] = kp.ID
		res.TopicsCreated++
	default:
		return err
	}

	id := codes[code]
	for _, child := range n.Children {
		if err := applyNode(repo, child, &id, codes, res); err != nil {
			return err
		}
	}
	return nil
}

func applyQuestion(kps knowledge.Repository, repo question.Repository, q Question, codes map[string]uuid.UUID) (bool, error) {
	typ := question.Type(strings.ToUpper(strings.TrimSpace(q.Type)))
	if !typ.IsValid() {
		return false, fmt.Errorf("%w: unknown type %q", ErrInvalidBank, q.Type)
	}
	if strings.TrimSpace(q.Stem) == "" {
		return false, fmt.Errorf("%w: empty stem", ErrInvalidBank)
	}
	if q.Difficulty < 1 || q.Difficulty > 5 {
		return false, fmt.Errorf("%w: difficulty must be 1..5, got %d", ErrInvalidBank, q.Difficulty)
	}

	if q.Answer == nil {
		return false, fmt.Errorf("%w: missing answer", ErrInvalidBank)
	}
	answer, err := json.Marshal(q.Answer)
	if err != nil {
		return false, fmt.Errorf("%w: answer: %v", ErrInvalidBank, err)
	}
	if _, err := question.ParseCanonical(typ, answer); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}

	topicIDs := make([]uuid.UUID, 0, len(q.Topics))
	for _, code := range q.Topics {
		id, ok := codes[code]
		if !ok {
			kp, err := kps.FindByCode(code)
			if err != nil {
				if errors.Is(err, knowledge.ErrKnowledgePointNotFound) {
					return false, fmt.Errorf("%w: unknown topic %s", ErrInvalidBank, code)
				}
				return false, err
			}
			id = kp.ID
			codes[code] = id
		}
		topicIDs = append(topicIDs, id)
	}

	exists, err := repo.ExistsByStem(q.Stem)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	row := &question.Question{
		Type:       typ,
		Stem:       q.Stem,
		Answer:     datatypes.JSON(answer),
		Difficulty: q.Difficulty,
	}
	if q.Options != nil {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return false, fmt.Errorf("%w: options: %v", ErrInvalidBank, err)
		}
		row.Options = datatypes.JSON(opts)
	}
	if a := strings.TrimSpace(q.Analysis); a != "" {
		row.Analysis = &a
	}
	return true, repo.Create(row, topicIDs)
}
