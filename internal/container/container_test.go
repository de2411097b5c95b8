package container_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/exam-prep-lambda/internal/attempt"
	"github.com/saulo-duarte/exam-prep-lambda/internal/auth"
	"github.com/saulo-duarte/exam-prep-lambda/internal/container"
	"github.com/saulo-duarte/exam-prep-lambda/internal/mastery"
	"github.com/saulo-duarte/exam-prep-lambda/internal/paper"
	"github.com/saulo-duarte/exam-prep-lambda/internal/review"
	"github.com/saulo-duarte/exam-prep-lambda/internal/router"
	"github.com/saulo-duarte/exam-prep-lambda/internal/testutil"
)

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func (c client) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.server.URL+path, &buf)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := auth.GenerateJWT(userID.String(), role, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestExamFlowOverHTTP(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	auth.Init()

	db := testutil.NewDB(t)
	settings, _ := testutil.Settings(testutil.Now)
	c := container.Build(db, settings)
	server := httptest.NewServer(router.New(c.RouterConfig()))
	defer server.Close()

	subject := testutil.SubjectTree(t, db, "XINGCE", 2, 1)
	for _, leaves := range subject.Leaves {
		testutil.Questions(t, db, 3, 2, leaves[0].ID)
	}

	anon := client{t: t, server: server}
	admin := client{t: t, server: server, token: token(t, uuid.New(), auth.RoleAdmin)}
	userID := uuid.New()
	student := client{t: t, server: server, token: token(t, userID, "USER")}

	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/exams", nil, nil))
	assert.Equal(t, http.StatusForbidden, student.do(http.MethodGet, "/admin/exams", nil, nil))

	var composed paper.CompositionResponse
	status := admin.do(http.MethodPost, "/admin/exams/diagnostic/regenerate",
		paper.DiagnosticRegenerateRequest{Subject: "XINGCE", PerModule: 2}, &composed)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 4, composed.QuestionCount)

	var listed paper.ExamListResponse
	require.Equal(t, http.StatusOK, student.do(http.MethodGet, "/exams?category=DIAGNOSTIC", nil, &listed))
	require.Len(t, listed.Items, 1)
	assert.Equal(t, composed.ExamID, listed.Items[0].ID)

	var started attempt.StartResponse
	require.Equal(t, http.StatusCreated,
		student.do(http.MethodPost, fmt.Sprintf("/exams/%s/start", composed.ExamID), nil, &started))
	require.Len(t, started.Questions, 4)

	base := fmt.Sprintf("/attempts/%s", started.Attempt.ID)
	for i, q := range started.Questions {
		value := "A"
		if i == 0 {
			value = "B"
		}
		status := student.do(http.MethodPost, base+"/answer",
			map[string]interface{}{"question_id": q.QuestionID, "value": value}, nil)
		require.Equal(t, http.StatusOK, status)
	}

	var result attempt.ResultResponse
	require.Equal(t, http.StatusOK, student.do(http.MethodPost, base+"/submit", nil, &result))
	assert.InDelta(t, 6.0, result.TotalScore, 1e-9)
	assert.Equal(t, 3, result.CorrectCount)

	assert.Equal(t, http.StatusConflict, student.do(http.MethodPost, base+"/submit", nil, nil))

	var ledger review.ListResponse
	require.Equal(t, http.StatusOK, student.do(http.MethodGet, "/wrong-questions", nil, &ledger))
	require.Len(t, ledger.Items, 1)
	assert.Equal(t, started.Questions[0].QuestionID, ledger.Items[0].QuestionID)

	var analytics mastery.ModuleMasteryResponse
	require.Equal(t, http.StatusOK,
		student.do(http.MethodGet, "/analytics/module-mastery?subject=XINGCE", nil, &analytics))
	require.Len(t, analytics.Items, 2)

	other := client{t: t, server: server, token: token(t, uuid.New(), "USER")}
	assert.Equal(t, http.StatusNotFound, other.do(http.MethodGet, base+"/result", nil, nil))

	assert.Equal(t, http.StatusUnprocessableEntity,
		student.do(http.MethodPost, "/plans/generate", map[string]int{"days": 7}, nil))
}
