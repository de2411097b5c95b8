package paper

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
)

const maxMockTotal = 200

// MockRequest splits Total across the subject's modules. Ratio, keyed by
// module code, replaces the equal split; when Total is zero it becomes the
// sum of the ratio.
type MockRequest struct {
	Subject   string
	Total     int
	Ratio     map[string]int
	CreatedBy uuid.UUID
}

// ComposeMock samples each module's quota from its leaf topics and tops up
// any shortfall from the whole bank.
func (c *Composer) ComposeMock(ctx context.Context, req MockRequest) (*Composition, error) {
	if req.Subject == "" {
		req.Subject = c.settings.DefaultSubject
	}
	req.Subject = strings.ToUpper(req.Subject)

	ratio := make(map[string]int, len(req.Ratio))
	ratioSum := 0
	for code, n := range req.Ratio {
		if n < 0 {
			return nil, ErrInvalidRatio
		}
		ratio[strings.ToUpper(code)] = n
		ratioSum += n
	}
	if req.Total == 0 {
		if len(ratio) > 0 {
			req.Total = ratioSum
		} else {
			req.Total = c.settings.MockTotal
		}
	}
	if req.Total <= 0 || req.Total > maxMockTotal {
		return nil, ErrInvalidCount
	}

	log := config.WithContext(ctx).WithFields(logrus.Fields{"subject": req.Subject, "total": req.Total})

	var out *Composition
	err := c.transaction(ctx, func(tx *gorm.DB) error {
		tree, err := knowledge.NewRepository(tx).LoadTree()
		if err != nil {
			return err
		}
		modules, err := tree.Modules(req.Subject)
		if err != nil {
			return err
		}
		if len(modules) == 0 {
			return ErrNoModules
		}

		audit := GenerationAudit{Subject: req.Subject, TotalTarget: req.Total}
		var targets []int
		if len(ratio) > 0 {
			audit.Ratio = ratio
			targets, audit.Warnings = ratioTargets(modules, ratio)
		} else {
			targets = equalTargets(len(modules), req.Total)
		}

		qrepo := question.NewRepository(tx)
		taken := make(map[uuid.UUID]bool)
		var picked []question.Question

		for i, m := range modules {
			if targets[i] == 0 {
				continue
			}
			pool, err := qrepo.Candidates(question.Filter{
				TopicIDs:      tree.Leaves(m.ID),
				Types:         question.ObjectiveTypes,
				MaxDifficulty: c.settings.MockMaxDifficulty,
			})
			if err != nil {
				return err
			}
			available := exclude(pool, taken)
			chosen := c.sample(available, targets[i])

			strategy := StrategyLeafSample
			if len(chosen) < targets[i] {
				strategy = StrategyInsufficient
				audit.Degraded = true
				audit.Warnings = append(audit.Warnings,
					fmt.Sprintf("module %s: wanted %d, selected %d", m.Name, targets[i], len(chosen)))
			}

			moduleID := m.ID
			stat := ModuleStat{
				ModuleID:    &moduleID,
				ModuleName:  m.Name,
				ModuleCode:  m.CodeOrEmpty(),
				TargetCount: targets[i],
				ActualCount: len(chosen),
				Available:   len(available) - len(chosen),
				Strategy:    strategy,
				QuestionIDs: []uuid.UUID{},
			}
			for _, q := range chosen {
				taken[q.ID] = true
				stat.QuestionIDs = append(stat.QuestionIDs, q.ID)
				picked = append(picked, q)
			}
			audit.Modules = append(audit.Modules, stat)
		}

		if short := req.Total - len(picked); short > 0 {
			pool, err := qrepo.Candidates(question.Filter{
				Types:         question.ObjectiveTypes,
				MaxDifficulty: c.settings.MockMaxDifficulty,
			})
			if err != nil {
				return err
			}
			available := exclude(pool, taken)
			chosen := c.sample(available, short)

			stat := ModuleStat{
				ModuleName:  "supplement",
				TargetCount: short,
				ActualCount: len(chosen),
				Available:   len(available) - len(chosen),
				Strategy:    StrategySupplement,
				QuestionIDs: []uuid.UUID{},
			}
			for _, q := range chosen {
				taken[q.ID] = true
				stat.QuestionIDs = append(stat.QuestionIDs, q.ID)
				picked = append(picked, q)
			}
			audit.Modules = append(audit.Modules, stat)
			audit.Degraded = true
			audit.Warnings = append(audit.Warnings,
				fmt.Sprintf("supplemented %d of %d missing questions from the whole bank", len(chosen), short))
		}

		if len(picked) == 0 {
			return ErrInsufficientQuestions
		}

		out, err = c.materialize(tx, draft{
			title:     fmt.Sprintf("%s mock %s", req.Subject, c.settings.Now().In(c.settings.Loc()).Format("2006-01-02 15:04")),
			category:  CategoryMock,
			duration:  c.settings.MockDurationMinutes,
			createdBy: req.CreatedBy,
			questions: picked,
			audit:     audit,
		})
		return err
	})
	if err != nil {
		log.WithError(err).Warn("Mock composition failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"exam_id":   out.Exam.ID,
		"questions": len(out.QuestionIDs),
		"degraded":  out.Audit.Degraded,
	}).Info("Mock exam composed")
	return out, nil
}

// equalTargets gives every module total/n and hands the remainder to the
// first modules in order.
func equalTargets(n, total int) []int {
	out := make([]int, n)
	if n == 0 {
		return out
	}
	base, rem := total/n, total%n
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

// ratioTargets maps ratio entries onto modules by code. Modules missing
// from the ratio get zero; codes matching no module are reported.
func ratioTargets(modules []knowledge.KnowledgePoint, ratio map[string]int) ([]int, []string) {
	out := make([]int, len(modules))
	known := make(map[string]bool, len(modules))
	for i, m := range modules {
		code := strings.ToUpper(m.CodeOrEmpty())
		known[code] = true
		out[i] = ratio[code]
	}

	var warnings []string
	codes := make([]string, 0, len(ratio))
	for code := range ratio {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if !known[code] {
			warnings = append(warnings, fmt.Sprintf("ratio code %s matches no module", code))
		}
	}
	return out, warnings
}
