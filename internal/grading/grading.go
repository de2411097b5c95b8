// Package grading holds the per-type answer rules. It is pure: the attempt
// service loads rows, calls Grade for each answer and persists the outcome.
package grading

import (
	"sort"
	"strings"

	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
)

const (
	FullCredit    = 1.0
	PartialCredit = 0.5
)

type Outcome struct {
	Correct         bool     `json:"correct"`
	Credit          float64  `json:"credit"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

func (o Outcome) Score(weight float64) float64 {
	return weight * o.Credit
}

var (
	judgeTrue  = map[string]bool{"T": true, "TRUE": true, "是": true, "正确": true, "YES": true, "Y": true}
	judgeFalse = map[string]bool{"F": true, "FALSE": true, "否": true, "错误": true, "NO": true, "N": true}
)

func Grade(t question.Type, canonical question.Canonical, submitted []string) Outcome {
	switch t {
	case question.TypeSingle:
		got, ok := only(submitted)
		return binary(ok && upper(got) != "" && upper(got) == upper(first(canonical.Tokens)))
	case question.TypeMulti:
		return binary(sameSet(submitted, canonical.Tokens))
	case question.TypeJudge:
		token, ok := only(submitted)
		got, okGot := judge(token)
		want, okWant := judge(first(canonical.Tokens))
		return binary(ok && okGot && okWant && got == want)
	case question.TypeFill:
		return binary(fillMatches(first(submitted), canonical.Tokens))
	case question.TypeShort:
		return gradeShort(strings.Join(submitted, " "), canonical)
	default:
		return Outcome{}
	}
}

func binary(ok bool) Outcome {
	if ok {
		return Outcome{Correct: true, Credit: FullCredit}
	}
	return Outcome{}
}

func judge(token string) (bool, bool) {
	tok := upper(token)
	if judgeTrue[tok] {
		return true, true
	}
	if judgeFalse[tok] {
		return false, true
	}
	return false, false
}

func sameSet(a, b []string) bool {
	as := tokenSet(a)
	bs := tokenSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if !bs[k] {
			return false
		}
	}
	return true
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if u := upper(t); u != "" {
			set[u] = true
		}
	}
	return set
}

func fillMatches(submitted string, accepted []string) bool {
	got := NormalizeText(submitted)
	if got == "" {
		return false
	}
	for _, a := range accepted {
		if NormalizeText(a) == got {
			return true
		}
	}
	return false
}

// gradeShort counts case-insensitive substring hits. Legacy keyword lists
// carry no threshold and cap at partial credit.
func gradeShort(text string, canonical question.Canonical) Outcome {
	haystack := strings.ToLower(text)
	var matched []string
	for _, kw := range canonical.Keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k != "" && strings.Contains(haystack, k) {
			matched = append(matched, k)
		}
	}

	hits := len(matched)
	switch {
	case canonical.Thresholded && hits >= canonical.MinHit:
		return Outcome{Correct: true, Credit: FullCredit, MatchedKeywords: matched}
	case hits > 0:
		return Outcome{Credit: PartialCredit, MatchedKeywords: matched}
	default:
		return Outcome{MatchedKeywords: matched}
	}
}

// NormalizeText trims, collapses internal whitespace and lowercases.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// NormalizeAnswer turns a submitted value into the stored ordered token
// list: blanks dropped, choice keys uppercased, MULTI sorted and deduped.
func NormalizeAnswer(t question.Type, values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if t.IsChoice() {
			v = strings.ToUpper(v)
		}
		if t == question.TypeMulti {
			if seen[v] {
				continue
			}
			seen[v] = true
		}
		out = append(out, v)
	}
	if t == question.TypeMulti {
		sort.Strings(out)
	}
	return out
}

func first(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// only returns the sole token; SINGLE and JUDGE answers with more than one
// token are wrong.
func only(tokens []string) (string, bool) {
	if len(tokens) != 1 {
		return "", false
	}
	return tokens[0], true
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
