package attempt_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/exam-prep-lambda/internal/attempt"
)

func TestAnswerValueUnmarshal(t *testing.T) {
	cases := map[string][]string{
		`"A"`:            {"A"},
		`["A","C"]`:      {"A", "C"},
		`true`:           {"true"},
		`false`:          {"false"},
		`42`:             {"42"},
		`3.50`:           {"3.50"},
		`[true, 1, "x"]`: {"true", "1", "x"},
		`[null, "B"]`:    {"B"},
		`[]`:             {},
	}
	for raw, want := range cases {
		var req attempt.SaveAnswerRequest
		require.NoError(t, json.Unmarshal([]byte(`{"value":`+raw+`}`), &req), raw)
		assert.Equal(t, want, []string(req.Value), raw)
	}
}

func TestAnswerValueRejectsObjects(t *testing.T) {
	var req attempt.SaveAnswerRequest
	assert.Error(t, json.Unmarshal([]byte(`{"value":{"key":"A"}}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"value":[["A"]]}`), &req))
}
