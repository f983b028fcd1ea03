package services

import (
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/dedup"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/services/ai"
	"github.com/customeros/mailtriage/services/engine"
	"github.com/customeros/mailtriage/services/events"
	"github.com/customeros/mailtriage/services/imap"
	"github.com/customeros/mailtriage/services/mail"
	"github.com/customeros/mailtriage/services/report"
	"github.com/customeros/mailtriage/services/runner"
	"github.com/customeros/mailtriage/services/storage"
)

type Services struct {
	Log          logger.Logger
	Policy       models.Policy
	Capabilities models.Capabilities

	Stages        engine.Stages
	Reports       interfaces.ReportService
	DraftStore    interfaces.DraftStore
	Source        interfaces.MailSource
	Generator     interfaces.DraftGenerator
	Screener      interfaces.ScreenerService
	EventsService *events.EventsService
	Seen          interfaces.SeenFilter
	Runner        interfaces.TriageRunner

	workers int
	redis   *redis.Client
}

// InitServices builds the triage stack. Rabbitmq, redis and the draft bucket
// are optional and only used when configured. An IMAP server, or else a cron
// source directory, becomes the source for RunSource.
func InitServices(cfg *config.Config, log logger.Logger) (*Services, error) {
	policy, err := cfg.PolicyConfig.ToPolicy()
	if err != nil {
		return nil, err
	}

	s := &Services{
		Log:          log,
		workers:      cfg.AppConfig.Workers,
		Policy:       policy,
		Capabilities: cfg.CapabilitiesConfig.ToCapabilities(),
		Reports:      report.NewReportService(log.With("service", "report")),
		Screener: mail.NewScreenerService(log.With("service", "screener"), mail.ScreenerConfig{
			TeamDomains:  policy.TeamDomains,
			CheckDomains: cfg.CronConfig.ScreenDomains,
		}),
	}

	if cfg.DraftStorageConfig.Bucket != "" {
		s.DraftStore, err = storage.NewDraftStoreFromConfig(log.With("service", "drafts"), cfg.DraftStorageConfig)
		if err != nil {
			return nil, errors.Wrap(err, "failed to init draft storage")
		}
	} else {
		s.DraftStore = mail.NewLocalDraftStore(log.With("service", "drafts"), cfg.AppConfig.DraftsDir)
	}

	if cfg.AIConfig.Url != "" {
		s.Generator = ai.NewAIService(log.With("service", "ai"), cfg.AIConfig)
	}
	s.Stages = engine.NewStages(log, policy, s.Generator)

	var publisher interfaces.DecisionPublisher
	if cfg.RabbitMQConfig.URL != "" {
		s.EventsService, err = events.NewEventsService(cfg.RabbitMQConfig, log)
		if err != nil {
			return nil, errors.Wrap(err, "failed to init events service")
		}
		publisher = s.EventsService.Publisher
	}

	if cfg.RedisConfig.Addr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		s.Seen = dedup.NewFilter(s.redis, cfg.RedisConfig.Prefix, time.Duration(cfg.RedisConfig.TTLHours)*time.Hour)
	} else {
		s.Seen = dedup.NewMemoryFilter()
	}

	switch {
	case cfg.IMAPConfig.Server != "":
		s.Source = imap.NewIMAPSource(log.With("service", "imap"), cfg.IMAPConfig, s.Screener)
	case cfg.CronConfig.SourceDir != "":
		s.Source = mail.NewEMLSource(log.With("service", "eml"), cfg.CronConfig.SourceDir, s.Screener)
	}

	s.Runner = runner.NewTriageRunner(log.With("service", "runner"), runner.Config{
		Policy:     policy,
		Workers:    cfg.AppConfig.Workers,
		Stages:     s.Stages,
		Reports:    s.Reports,
		Source:     s.Source,
		Seen:       s.Seen,
		DraftStore: s.DraftStore,
		Publisher:  publisher,
	})
	return s, nil
}

// Engine builds a standalone engine for one run with the given capabilities.
func (s *Services) Engine(caps models.Capabilities) interfaces.TriageEngine {
	return engine.NewTriageEngine(s.Log.With("service", "engine"), engine.Config{
		Policy:       s.Policy,
		Capabilities: caps,
		Workers:      s.workers,
		DraftStore:   s.DraftStore,
	}, s.Stages)
}

func (s *Services) Close() error {
	var errs []error
	if s.EventsService != nil {
		if err := s.EventsService.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("errors closing services: %v", errs)
	}
	return nil
}
