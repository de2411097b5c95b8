package paper

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
)

type DiagnosticRequest struct {
	Subject   string
	PerModule int
	CreatedBy uuid.UUID
}

// ComposeDiagnostic covers every module of the subject with PerModule
// objective questions, relaxing difficulty and then accepting a short
// module before giving up. Previously published diagnostics are archived.
func (c *Composer) ComposeDiagnostic(ctx context.Context, req DiagnosticRequest) (*Composition, error) {
	if req.Subject == "" {
		req.Subject = c.settings.DefaultSubject
	}
	req.Subject = strings.ToUpper(req.Subject)
	if req.PerModule == 0 {
		req.PerModule = c.settings.DiagnosticPerModule
	}
	if req.PerModule < 0 {
		return nil, ErrInvalidCount
	}

	log := config.WithContext(ctx).WithFields(logrus.Fields{"subject": req.Subject, "per_module": req.PerModule})

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

		qrepo := question.NewRepository(tx)
		taken := make(map[uuid.UUID]bool)
		var picked []question.Question
		audit := GenerationAudit{
			Subject:     req.Subject,
			PerModule:   req.PerModule,
			TotalTarget: req.PerModule * len(modules),
		}

		for _, m := range modules {
			scope := tree.Descendants(m.ID)

			pool, err := qrepo.Candidates(question.Filter{
				TopicIDs:      scope,
				Types:         question.ObjectiveTypes,
				MaxDifficulty: c.settings.DiagnosticMaxDifficulty,
			})
			if err != nil {
				return err
			}
			available := exclude(pool, taken)
			strategy := StrategyDirect

			if len(available) < req.PerModule {
				pool, err = qrepo.Candidates(question.Filter{
					TopicIDs:      scope,
					Types:         question.ObjectiveTypes,
					MaxDifficulty: c.settings.DiagnosticRelaxedDifficulty,
				})
				if err != nil {
					return err
				}
				available = exclude(pool, taken)
				strategy = StrategyRelaxed
			}

			chosen := c.sample(available, req.PerModule)
			if len(chosen) < req.PerModule {
				strategy = StrategyRelaxed + "+" + StrategyInsufficient
				audit.Warnings = append(audit.Warnings,
					fmt.Sprintf("module %s: wanted %d, selected %d", m.Name, req.PerModule, len(chosen)))
			}
			if strategy != StrategyDirect {
				audit.Degraded = true
			}

			moduleID := m.ID
			stat := ModuleStat{
				ModuleID:    &moduleID,
				ModuleName:  m.Name,
				ModuleCode:  m.CodeOrEmpty(),
				TargetCount: req.PerModule,
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

		if len(picked) == 0 {
			return ErrInsufficientQuestions
		}

		archived, err := NewRepository(tx).ArchivePublished(CategoryDiagnostic)
		if err != nil {
			return err
		}
		if archived > 0 {
			log.WithField("archived", archived).Info("Archived previous diagnostic exams")
		}

		out, err = c.materialize(tx, draft{
			title:     fmt.Sprintf("%s diagnostic %s", req.Subject, c.settings.Now().In(c.settings.Loc()).Format("2006-01-02 15:04")),
			category:  CategoryDiagnostic,
			duration:  c.settings.DiagnosticDurationMinutes,
			createdBy: req.CreatedBy,
			questions: picked,
			audit:     audit,
		})
		return err
	})
	if err != nil {
		log.WithError(err).Warn("Diagnostic composition failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"exam_id":   out.Exam.ID,
		"questions": len(out.QuestionIDs),
		"degraded":  out.Audit.Degraded,
	}).Info("Diagnostic exam composed")
	return out, nil
}
