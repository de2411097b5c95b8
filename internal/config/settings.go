package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns T. Tests advance it by assigning T.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

// Settings carries every tunable of the assessment engine. It is passed by
// value into each component so that tests can run with different parameters
// in parallel.
type Settings struct {
	MasteryAlpha float64

	// ReviewIntervals[i] is the delay in days after the (i+1)-th miss;
	// counts beyond the table reuse the last entry.
	ReviewIntervals   []int
	ReviewItemMinutes int

	DefaultQuestionScore float64

	DiagnosticMaxDifficulty     int
	DiagnosticRelaxedDifficulty int
	DiagnosticPerModule         int
	DiagnosticDurationMinutes   int

	MockMaxDifficulty   int
	MockTotal           int
	MockDurationMinutes int

	PracticeLowMastery      float64
	PracticeMidMastery      float64
	PracticeFixedDifficulty int
	PracticeDefaultCount    int
	PracticeMaxCount        int

	ReviewDefaultCount int

	DefaultLearnMinutes int
	StrategyVersion     string
	DefaultSubject      string

	Location *time.Location
	Clock    Clock
}

func DefaultSettings() Settings {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return Settings{
		MasteryAlpha:                0.3,
		ReviewIntervals:             []int{1, 3, 7, 14, 30},
		ReviewItemMinutes:           15,
		DefaultQuestionScore:        2.0,
		DiagnosticMaxDifficulty:     3,
		DiagnosticRelaxedDifficulty: 4,
		DiagnosticPerModule:         2,
		DiagnosticDurationMinutes:   30,
		MockMaxDifficulty:           4,
		MockTotal:                   20,
		MockDurationMinutes:         60,
		PracticeLowMastery:          0.3,
		PracticeMidMastery:          0.6,
		PracticeFixedDifficulty:     3,
		PracticeDefaultCount:        10,
		PracticeMaxCount:            50,
		ReviewDefaultCount:          10,
		DefaultLearnMinutes:         30,
		StrategyVersion:             "v1.0",
		DefaultSubject:              "XINGCE",
		Location:                    loc,
		Clock:                       SystemClock{},
	}
}

// LoadSettings starts from DefaultSettings and applies ENGINE_* overrides.
func LoadSettings() (Settings, error) {
	s := DefaultSettings()

	if v := GetEnv("ENGINE_MASTERY_ALPHA", ""); v != "" {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil || alpha <= 0 || alpha > 1 {
			return s, fmt.Errorf("ENGINE_MASTERY_ALPHA must be in (0,1], got %q", v)
		}
		s.MasteryAlpha = alpha
	}

	if v := GetEnv("ENGINE_REVIEW_INTERVALS", ""); v != "" {
		intervals, err := parseIntervals(v)
		if err != nil {
			return s, err
		}
		s.ReviewIntervals = intervals
	}

	if v := GetEnv("ENGINE_TIMEZONE", ""); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return s, fmt.Errorf("ENGINE_TIMEZONE: %w", err)
		}
		s.Location = loc
	}

	if v := GetEnv("ENGINE_DEFAULT_SUBJECT", ""); v != "" {
		s.DefaultSubject = strings.ToUpper(v)
	}

	return s, nil
}

func parseIntervals(raw string) ([]int, error) {
	fields := strings.Split(raw, ",")
	out := make([]int, 0, len(fields))
	prev := 0
	for _, f := range fields {
		days, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("ENGINE_REVIEW_INTERVALS: invalid entry %q", f)
		}
		if days < prev {
			return nil, fmt.Errorf("ENGINE_REVIEW_INTERVALS must be non-decreasing")
		}
		prev = days
		out = append(out, days)
	}
	return out, nil
}

func (s Settings) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

// ReviewInterval returns the delay scheduled after the wrongCount-th miss.
func (s Settings) ReviewInterval(wrongCount int) time.Duration {
	if len(s.ReviewIntervals) == 0 {
		return 24 * time.Hour
	}
	idx := wrongCount
	if idx > len(s.ReviewIntervals) {
		idx = len(s.ReviewIntervals)
	}
	if idx < 1 {
		idx = 1
	}
	return time.Duration(s.ReviewIntervals[idx-1]) * 24 * time.Hour
}

func (s Settings) Loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}
