package runner

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/internal/dedup"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/services/engine"
	"github.com/customeros/mailtriage/services/report"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchMessages(ctx context.Context, limit int) ([]*models.MessageRecord, error) {
	args := m.Called(ctx, limit)
	messages, _ := args.Get(0).([]*models.MessageRecord)
	return messages, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishDecision(ctx context.Context, batchId string, rec *models.DecisionRecord) error {
	return m.Called(ctx, batchId, rec).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func messages() []*models.MessageRecord {
	now := time.Now().UTC()
	return []*models.MessageRecord{
		{MessageID: "a", Sender: "dana@mycorp.io", Subject: "Notes", BodyText: "Notes from today.", Recipients: []string{"me@mycorp.io"}, Date: now},
		{MessageID: "b", Sender: "sam@partner.com", Subject: "Status", BodyText: "All good here.", Recipients: []string{"me@mycorp.io"}, Date: now},
	}
}

func newRunner(cfg Config) *triageRunner {
	log := logger.NewNopLogger()
	p := models.DefaultPolicy()
	p.TeamDomains = []string{"mycorp.io"}
	cfg.Policy = p
	cfg.Stages = engine.NewStages(log, p, nil)
	cfg.Reports = report.NewReportService(log)
	return NewTriageRunner(log, cfg).(*triageRunner)
}

func TestRunMessages_PublishesEveryRecord(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishDecision", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*models.DecisionRecord")).Return(nil)
	r := newRunner(Config{Publisher: pub})

	rep := r.RunMessages(context.Background(), messages(), models.FullCapabilities(), models.DefaultRunOptions())

	pub.AssertNumberOfCalls(t, "PublishDecision", 2)
	assert.Equal(t, 2, rep.Summary.TotalProcessed)
	assert.NotEmpty(t, rep.BatchID)
	assert.Empty(t, rep.Errors)
}

func TestRunMessages_PublishFailureIsReported(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishDecision", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	r := newRunner(Config{Publisher: pub})

	rep := r.RunMessages(context.Background(), messages()[:1], models.FullCapabilities(), models.DefaultRunOptions())

	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "publish a: broker down")
}

func TestRunSource_SkipsSeenMessages(t *testing.T) {
	src := new(mockSource)
	src.On("FetchMessages", mock.Anything, 100).Return(messages(), nil)
	seen := dedup.NewMemoryFilter()
	_, _ = seen.IsNew(context.Background(), "a")
	r := newRunner(Config{Source: src, Seen: seen})

	rep, err := r.RunSource(context.Background(), models.FullCapabilities(), models.DefaultRunOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Summary.TotalProcessed)

	// a second run finds nothing new
	rep, err = r.RunSource(context.Background(), models.FullCapabilities(), models.DefaultRunOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Summary.TotalProcessed)
	src.AssertExpectations(t)
}

func TestRunSource_Errors(t *testing.T) {
	_, err := newRunner(Config{}).RunSource(context.Background(), models.FullCapabilities(), models.DefaultRunOptions())
	assert.Error(t, err)

	src := new(mockSource)
	src.On("FetchMessages", mock.Anything, mock.Anything).Return(nil, errors.New("disk gone"))
	_, err = newRunner(Config{Source: src}).RunSource(context.Background(), models.FullCapabilities(), models.DefaultRunOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}
