package cron

import (
	"context"
	"os"
	"sync"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
	"github.com/customeros/mailtriage/internal/utils"
)

const (
	AppSource = "mailtriage-cron"

	jobHeartbeat = "heartbeat"
	jobTriage    = "triage"
)

// CronManager schedules the recurring triage run and an optional heartbeat.
type CronManager struct {
	cfg      *config.CronConfig
	log      logger.Logger
	cron     *cronv3.Cron
	stopCh   chan struct{}
	stopOnce sync.Once
	jobIDs   map[string]cronv3.EntryID

	// held for the duration of a triage run
	triageMu sync.Mutex

	runner interfaces.TriageRunner
	caps   models.Capabilities
	opts   models.RunOptions
}

func NewCronManager(cfg *config.CronConfig, log logger.Logger, runner interfaces.TriageRunner, caps models.Capabilities, opts models.RunOptions) *CronManager {
	return &CronManager{
		cfg:    cfg,
		log:    log,
		stopCh: make(chan struct{}),
		jobIDs: make(map[string]cronv3.EntryID),
		runner: runner,
		caps:   caps,
		opts:   opts,
	}
}

func (cm *CronManager) Start() error {
	cl := cronLogger{log: cm.log}
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithLogger(cl),
		cronv3.WithChain(cronv3.SkipIfStillRunning(cl), cronv3.Recover(cl)),
	)
	if err := cm.registerJobs(c); err != nil {
		return err
	}
	c.Start()
	cm.cron = c
	cm.log.Infof("cron started with %d job(s)", len(cm.jobIDs))
	return nil
}

// Stop waits for a running job to return. Safe to call more than once.
func (cm *CronManager) Stop() {
	cm.stopOnce.Do(func() {
		if cm.cron != nil {
			<-cm.cron.Stop().Done()
		}
		close(cm.stopCh)
	})
}

func (cm *CronManager) registerJobs(c *cronv3.Cron) error {
	jobs := []struct {
		name     string
		schedule string
		run      func()
	}{
		{jobHeartbeat, cm.cfg.HeartbeatSchedule, cm.heartbeat},
		{jobTriage, cm.cfg.TriageSchedule, cm.scheduledTriage},
	}

	for _, job := range jobs {
		if job.schedule == "" {
			continue
		}
		run := job.run
		id, err := c.AddFunc(job.schedule, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			run()
		})
		if err != nil {
			return err
		}
		cm.jobIDs[job.name] = id
		cm.log.Infof("registered %s job: %s", job.name, job.schedule)
	}
	return nil
}

func (cm *CronManager) heartbeat() {
	pod := os.Getenv("POD_NAME")
	if pod == "" {
		pod = "local"
	}
	cm.log.Infof("cron heartbeat from %s", pod)
}

func (cm *CronManager) scheduledTriage() {
	cm.triageMu.Lock()
	defer cm.triageMu.Unlock()
	cm.runTriage()
}

func (cm *CronManager) runTriage() {
	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{AppSource: AppSource})
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runTriage")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	report, err := cm.runner.RunSource(ctx, cm.caps, cm.opts)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("scheduled triage failed: %v", err)
		return
	}
	tracing.TagBatch(span, report.BatchID)
	cm.log.Infof("scheduled triage %s: %d processed, %d drafts, %d blocked",
		report.BatchID, report.Summary.TotalProcessed, report.Summary.DraftsCreated, report.Summary.Blocked)
}

// cronLogger routes scheduler messages through the app logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.With(keysAndValues...).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.With(append(keysAndValues, "error", err)...).Error(msg)
}
