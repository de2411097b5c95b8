package grading_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saulo-duarte/exam-prep-lambda/internal/grading"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
)

func tokens(v ...string) question.Canonical {
	return question.Canonical{Tokens: v}
}

func TestGradeSingle(t *testing.T) {
	assert.True(t, grading.Grade(question.TypeSingle, tokens("A"), []string{"a"}).Correct)
	assert.True(t, grading.Grade(question.TypeSingle, tokens("A"), []string{" A "}).Correct)
	assert.False(t, grading.Grade(question.TypeSingle, tokens("A"), []string{"B"}).Correct)
	assert.False(t, grading.Grade(question.TypeSingle, tokens("A"), nil).Correct)
	assert.False(t, grading.Grade(question.TypeSingle, tokens(), nil).Correct, "empty never matches empty")
}

func TestGradeRejectsSeveralTokens(t *testing.T) {
	single := grading.Grade(question.TypeSingle, tokens("A"), []string{"A", "B", "C", "D"})
	assert.False(t, single.Correct)
	assert.Zero(t, single.Score(2))

	judge := grading.Grade(question.TypeJudge, tokens("T"), []string{"T", "F"})
	assert.False(t, judge.Correct)
	assert.Zero(t, judge.Score(2))

	assert.False(t, grading.Grade(question.TypeJudge, tokens("T"), []string{"T", "T"}).Correct)
}

func TestGradeMulti(t *testing.T) {
	assert.True(t, grading.Grade(question.TypeMulti, tokens("A", "C"), []string{"c", "a"}).Correct)
	assert.False(t, grading.Grade(question.TypeMulti, tokens("A", "C"), []string{"A"}).Correct)
	assert.False(t, grading.Grade(question.TypeMulti, tokens("A", "C"), []string{"A", "B", "C"}).Correct)
}

func TestGradeJudge(t *testing.T) {
	cases := []struct {
		canonical string
		submitted string
		want      bool
	}{
		{"T", "正确", true},
		{"T", "yes", true},
		{"TRUE", "是", true},
		{"F", "否", true},
		{"错误", "n", true},
		{"T", "否", false},
		{"F", "Y", false},
		{"T", "maybe", false},
		{"?", "T", false},
	}
	for _, c := range cases {
		got := grading.Grade(question.TypeJudge, tokens(c.canonical), []string{c.submitted})
		assert.Equal(t, c.want, got.Correct, "%s vs %s", c.canonical, c.submitted)
	}
}

func TestGradeFill(t *testing.T) {
	accepted := tokens("Beijing", "北京")
	assert.True(t, grading.Grade(question.TypeFill, accepted, []string{"  beijing "}).Correct)
	assert.True(t, grading.Grade(question.TypeFill, accepted, []string{"北京"}).Correct)
	assert.True(t, grading.Grade(question.TypeFill, tokens("New   York"), []string{"new york"}).Correct)
	assert.False(t, grading.Grade(question.TypeFill, accepted, []string{"Shanghai"}).Correct)
}

func TestGradeShort(t *testing.T) {
	rule := question.Canonical{Keywords: []string{"市场", "政府", "监管"}, MinHit: 2, Thresholded: true}

	t.Run("Full", func(t *testing.T) {
		o := grading.Grade(question.TypeShort, rule, []string{"发挥市场作用，加强政府监管"})
		assert.True(t, o.Correct)
		assert.Equal(t, grading.FullCredit, o.Credit)
		assert.Len(t, o.MatchedKeywords, 3)
	})

	t.Run("Partial", func(t *testing.T) {
		o := grading.Grade(question.TypeShort, rule, []string{"市场决定资源配置"})
		assert.False(t, o.Correct)
		assert.Equal(t, grading.PartialCredit, o.Credit)
		assert.Equal(t, 1.0, o.Score(2.0))
	})

	t.Run("None", func(t *testing.T) {
		o := grading.Grade(question.TypeShort, rule, []string{"无关内容"})
		assert.False(t, o.Correct)
		assert.Zero(t, o.Credit)
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		en := question.Canonical{Keywords: []string{"Market"}, MinHit: 1, Thresholded: true}
		assert.True(t, grading.Grade(question.TypeShort, en, []string{"the MARKET decides"}).Correct)
	})

	t.Run("LegacyListIsPartialOnly", func(t *testing.T) {
		legacy := question.Canonical{Keywords: []string{"效率", "公平"}}
		o := grading.Grade(question.TypeShort, legacy, []string{"效率与公平"})
		assert.False(t, o.Correct)
		assert.Equal(t, grading.PartialCredit, o.Credit)
	})
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, []string{"A", "C"}, grading.NormalizeAnswer(question.TypeMulti, []string{"c", " a", "", "C"}))
	assert.Equal(t, []string{"B"}, grading.NormalizeAnswer(question.TypeSingle, []string{" b "}))
	assert.Equal(t, []string{"New York"}, grading.NormalizeAnswer(question.TypeFill, []string{" New York "}))
	assert.Empty(t, grading.NormalizeAnswer(question.TypeShort, []string{"   "}))
}
