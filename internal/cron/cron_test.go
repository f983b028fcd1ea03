package cron

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/dto"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) RunMessages(ctx context.Context, messages []*models.MessageRecord, caps models.Capabilities, opts models.RunOptions) *dto.Report {
	return m.Called(ctx, messages, caps, opts).Get(0).(*dto.Report)
}

func (m *mockRunner) RunSource(ctx context.Context, caps models.Capabilities, opts models.RunOptions) (*dto.Report, error) {
	args := m.Called(ctx, caps, opts)
	report, _ := args.Get(0).(*dto.Report)
	return report, args.Error(1)
}

func getLogger() logger.Logger {
	return logger.NewNopLogger()
}

func TestNewCronManager(t *testing.T) {
	cfg := &config.CronConfig{TriageSchedule: "0 */5 * * * *"}
	log := getLogger()

	cm := NewCronManager(cfg, log, nil, models.FullCapabilities(), models.DefaultRunOptions())

	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_RegisterJobs(t *testing.T) {
	cm := NewCronManager(&config.CronConfig{
		HeartbeatSchedule: "0 * * * * *",
		TriageSchedule:    "0 */5 * * * *",
	}, getLogger(), nil, models.FullCapabilities(), models.DefaultRunOptions())

	c := cronv3.New(cronv3.WithSeconds())
	require.NoError(t, cm.registerJobs(c))

	assert.Len(t, cm.jobIDs, 2)
	assert.Len(t, c.Entries(), 2)
}

func TestCronManager_RegisterJobs_NoTriageSchedule(t *testing.T) {
	cm := NewCronManager(&config.CronConfig{}, getLogger(), nil, models.FullCapabilities(), models.DefaultRunOptions())

	c := cronv3.New(cronv3.WithSeconds())
	require.NoError(t, cm.registerJobs(c))
	assert.Empty(t, cm.jobIDs)
}

func TestCronManager_RegisterJobs_InvalidSchedule(t *testing.T) {
	cm := NewCronManager(&config.CronConfig{TriageSchedule: "every now and then"}, getLogger(), nil, models.FullCapabilities(), models.DefaultRunOptions())

	assert.Error(t, cm.registerJobs(cronv3.New(cronv3.WithSeconds())))
}

func TestCronManager_RunTriage(t *testing.T) {
	runner := new(mockRunner)
	opts := models.DefaultRunOptions()
	runner.On("RunSource", mock.MatchedBy(func(ctx context.Context) bool {
		return utils.GetAppSourceFromContext(ctx) == AppSource
	}), models.FullCapabilities(), opts).Return(&dto.Report{BatchID: "batch_1"}, nil).Once()
	runner.On("RunSource", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("source down")).Once()

	cm := NewCronManager(&config.CronConfig{}, getLogger(), runner, models.FullCapabilities(), opts)
	cm.runTriage()
	cm.runTriage()

	runner.AssertNumberOfCalls(t, "RunSource", 2)
}

func TestCronManager_Stop(t *testing.T) {
	cm := NewCronManager(&config.CronConfig{}, getLogger(), nil, models.FullCapabilities(), models.DefaultRunOptions())

	// Create a mock cron for testing
	mockCron := cronv3.New()
	mockCron.Start()
	cm.cron = mockCron

	// Act
	cm.Stop()

	// Assert
	select {
	case <-cm.stopCh:
		// Channel is closed as expected
	default:
		t.Error("Stop channel was not closed")
	}
}

func TestCronManager_StopTwice(t *testing.T) {
	cm := NewCronManager(&config.CronConfig{}, getLogger(), nil, models.FullCapabilities(), models.DefaultRunOptions())
	require.NoError(t, cm.Start())

	assert.NotPanics(t, func() {
		cm.Stop()
		cm.Stop()
	})
}

func TestCronManager_ScheduledTriage(t *testing.T) {
	runner := new(mockRunner)
	runner.On("RunSource", mock.Anything, mock.Anything, mock.Anything).Return(&dto.Report{BatchID: "batch_2"}, nil)

	cm := NewCronManager(&config.CronConfig{}, getLogger(), runner, models.FullCapabilities(), models.DefaultRunOptions())
	cm.scheduledTriage()

	runner.AssertExpectations(t)
}

func TestCronLogger(t *testing.T) {
	var l cronv3.Logger = cronLogger{log: getLogger()}
	assert.NotPanics(t, func() {
		l.Info("skip", "entry", 1)
		l.Error(errors.New("boom"), "panic", "entry", 1)
	})
}
