package paper

import (
	"time"

	"github.com/google/uuid"
)

// Selection strategies recorded per module.
const (
	StrategyDirect       = "DIRECT"
	StrategyRelaxed      = "RELAXED_DIFFICULTY"
	StrategyInsufficient = "INSUFFICIENT"
	StrategyLeafSample   = "LEAF_SAMPLE"
	StrategySupplement   = "SUPPLEMENT"
)

// GenerationAudit is stored on every AUTO paper. Degraded is true whenever
// selection fell back from the ideal policy; Warnings say how.
type GenerationAudit struct {
	Policy      Category  `json:"policy"`
	Subject     string    `json:"subject,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	TotalTarget int       `json:"total_target"`
	TotalActual int       `json:"total_actual"`
	Degraded    bool      `json:"degraded"`
	Warnings    []string  `json:"warnings,omitempty"`

	PerModule int            `json:"per_module,omitempty"`
	Ratio     map[string]int `json:"ratio,omitempty"`
	Modules   []ModuleStat   `json:"modules,omitempty"`

	Practice *PracticeAudit `json:"practice,omitempty"`
	Review   *ReviewAudit   `json:"review,omitempty"`
}

type ModuleStat struct {
	ModuleID    *uuid.UUID  `json:"module_id,omitempty"`
	ModuleName  string      `json:"module_name"`
	ModuleCode  string      `json:"module_code,omitempty"`
	TargetCount int         `json:"target_count"`
	ActualCount int         `json:"actual_count"`
	Available   int         `json:"available"`
	Strategy    string      `json:"strategy"`
	QuestionIDs []uuid.UUID `json:"question_ids"`
}

type PracticeAudit struct {
	KnowledgeID      uuid.UUID        `json:"knowledge_id"`
	Mode             PracticeMode     `json:"mode"`
	Mastery          float64          `json:"mastery"`
	TargetDifficulty int              `json:"target_difficulty"`
	Steps            []DifficultyStep `json:"steps"`
	FallbackCount    int              `json:"fallback_count"`
}

type DifficultyStep struct {
	Difficulty int `json:"difficulty"`
	Taken      int `json:"taken"`
}

type ReviewAudit struct {
	Source      string      `json:"source"`
	QuestionIDs []uuid.UUID `json:"question_ids"`
}
