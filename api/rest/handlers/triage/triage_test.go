package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/dto"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) RunMessages(ctx context.Context, msgs []*models.MessageRecord, caps models.Capabilities, opts models.RunOptions) *dto.Report {
	return m.Called(ctx, msgs, caps, opts).Get(0).(*dto.Report)
}

func (m *mockRunner) RunSource(ctx context.Context, caps models.Capabilities, opts models.RunOptions) (*dto.Report, error) {
	args := m.Called(ctx, caps, opts)
	report, _ := args.Get(0).(*dto.Report)
	return report, args.Error(1)
}

func setup(runner *mockRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTriageHandler(logger.NewNopLogger(), runner, models.FullCapabilities())
	r.POST("/v1/triage", h.Triage())
	return r
}

func post(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/triage", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTriage_Success(t *testing.T) {
	runner := new(mockRunner)
	runner.On("RunMessages", mock.Anything, mock.Anything, models.FullCapabilities(), models.DefaultRunOptions()).
		Return(&dto.Report{BatchID: "batch_1", Summary: dto.ReportSummary{TotalProcessed: 1}})

	w := post(t, setup(runner), map[string]any{
		"messages": []map[string]any{{"message_id": "m1", "sender": "a@b.com", "subject": "hi"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.TriageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "batch_1", resp.BatchID)
	assert.Equal(t, "full", resp.Mode)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 1, resp.Report.Summary.TotalProcessed)
	runner.AssertExpectations(t)
}

func TestTriage_ScopesSetMode(t *testing.T) {
	readOnly := models.Capabilities{CanRead: true}
	opts := models.RunOptions{OnlyUrgent: true}
	runner := new(mockRunner)
	runner.On("RunMessages", mock.Anything, mock.Anything, readOnly, opts).
		Return(&dto.Report{BatchID: "batch_2"})

	w := post(t, setup(runner), map[string]any{
		"messages": []map[string]any{{"message_id": "m1", "sender": "a@b.com"}},
		"options":  map[string]any{"only_urgent": true},
		"scopes":   []string{"https://www.googleapis.com/auth/gmail.readonly"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.TriageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "read_only", resp.Mode)
	runner.AssertExpectations(t)
}

func TestTriage_RequestCapabilities(t *testing.T) {
	draftOnly := models.Capabilities{CanRead: true, CanDraft: true}
	runner := new(mockRunner)
	runner.On("RunMessages", mock.Anything, mock.Anything, draftOnly, models.DefaultRunOptions()).
		Return(&dto.Report{BatchID: "batch_3"})

	w := post(t, setup(runner), map[string]any{
		"messages":     []map[string]any{{"message_id": "m1", "sender": "a@b.com"}},
		"capabilities": map[string]any{"can_read": true, "can_draft": true},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"draft_only"`)
}

func TestTriage_BadRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		message string
	}{
		{name: "missing messages", body: map[string]any{}},
		{name: "empty messages", body: map[string]any{"messages": []any{}}, message: "at least one message is required"},
		{
			name:    "missing ids",
			body:    map[string]any{"messages": []map[string]any{{"subject": "x"}}},
			message: "messages[0]: message_id is required | messages[0]: sender is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(mockRunner)
			w := post(t, setup(runner), tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			if tt.message != "" {
				assert.Contains(t, resp.Error, tt.message)
			}
			runner.AssertNotCalled(t, "RunMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTriage_InvalidJSON(t *testing.T) {
	runner := new(mockRunner)
	r := setup(runner)
	req := httptest.NewRequest(http.MethodPost, "/v1/triage", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
