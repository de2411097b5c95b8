package seed_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/exam-prep-lambda/internal/knowledge"
	"github.com/saulo-duarte/exam-prep-lambda/internal/question"
	"github.com/saulo-duarte/exam-prep-lambda/internal/seed"
	"github.com/saulo-duarte/exam-prep-lambda/internal/testutil"
)

const bankYAML = `
knowledge:
  - code: XINGCE
    name: Administrative Aptitude
    children:
      - code: XINGCE_M1
        name: Verbal
        weight: 2
        children:
          - code: XINGCE_M1_T1
            name: Synonyms
            estimated_minutes: 45
      - code: XINGCE_M2
        name: Quantitative
questions:
  - type: single
    stem: Pick the synonym of "rapid".
    options: [{key: A, text: quick}, {key: B, text: slow}]
    answer: A
    difficulty: 2
    topics: [XINGCE_M1_T1]
  - type: JUDGE
    stem: 2 + 2 = 4.
    answer: true
    difficulty: 1
    topics: [XINGCE_M2]
  - type: SHORT
    stem: Name two drivers of GDP.
    answer: {keywords: [consumption, investment], min_hit: 1}
    analysis: Any expenditure component counts.
    difficulty: 3
    topics: [XINGCE_M2]
`

func TestApply(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	bank, err := seed.Parse(strings.NewReader(bankYAML))
	require.NoError(t, err)

	res, err := seed.Apply(ctx, db, bank)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{TopicsCreated: 4, QuestionsCreated: 3}, res)

	tree, err := knowledge.NewRepository(db).LoadTree()
	require.NoError(t, err)
	leaf, ok := tree.ByCode("XINGCE_M1_T1")
	require.True(t, ok)
	assert.Equal(t, 45, leaf.EstimatedMinutes)
	module, ok := tree.ByCode("XINGCE_M1")
	require.True(t, ok)
	assert.Equal(t, 2.0, module.Weight)
	require.NotNil(t, leaf.ParentID)
	assert.Equal(t, module.ID, *leaf.ParentID)

	n, err := question.NewRepository(db).CountByTopics([]uuid.UUID{leaf.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	t.Run("Idempotent", func(t *testing.T) {
		again, err := seed.Apply(ctx, db, bank)
		require.NoError(t, err)
		assert.Equal(t, seed.Result{TopicsReused: 4, QuestionsSkipped: 3}, again)
	})
}

func TestApplyRejectsInvalidBank(t *testing.T) {
	cases := map[string]string{
		"UnknownType": `
questions:
  - {type: ESSAY, stem: x, answer: A, difficulty: 1}
`,
		"BadDifficulty": `
questions:
  - {type: SINGLE, stem: x, answer: A, difficulty: 9}
`,
		"MissingAnswer": `
questions:
  - {type: SINGLE, stem: x, difficulty: 1}
`,
		"UnknownTopic": `
questions:
  - {type: SINGLE, stem: x, answer: A, difficulty: 1, topics: [NOPE]}
`,
		"DuplicateCode": `
knowledge:
  - {code: A, name: a}
  - {code: A, name: again}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			db := testutil.NewDB(t)
			bank, err := seed.Parse(strings.NewReader(doc))
			require.NoError(t, err)

			_, err = seed.Apply(context.Background(), db, bank)
			assert.True(t, errors.Is(err, seed.ErrInvalidBank), "got %v", err)
		})
	}
}

func TestApplyRollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	bank, err := seed.Parse(strings.NewReader(`
knowledge:
  - {code: ROOT, name: Root}
questions:
  - {type: SINGLE, stem: x, answer: A, difficulty: 0, topics: [ROOT]}
`))
	require.NoError(t, err)

	_, err = seed.Apply(context.Background(), db, bank)
	require.Error(t, err)

	_, err = knowledge.NewRepository(db).FindByCode("ROOT")
	assert.True(t, errors.Is(err, knowledge.ErrKnowledgePointNotFound))
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := seed.Parse(strings.NewReader("topics: []\n"))
	assert.True(t, errors.Is(err, seed.ErrInvalidBank))
}
