package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/api"
	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/internal/cron"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
	"github.com/customeros/mailtriage/services"
)

const (
	httpShutdownTimeout = 15 * time.Second
	cronShutdownTimeout = 10 * time.Second
)

type Server struct {
	config       *config.Config
	log          logger.Logger
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	cronManager  *cron.CronManager
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config) (*Server, error) {
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return nil, errors.Wrap(err, "init jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)

	svcs, err := services.InitServices(cfg, appLogger)
	if err != nil {
		closer.Close()
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	return &Server{
		config:       cfg,
		log:          appLogger,
		router:       router,
		services:     svcs,
		tracerCloser: closer,
		cronManager: cron.NewCronManager(cfg.CronConfig, appLogger.With("component", "cron"),
			svcs.Runner, svcs.Capabilities, models.DefaultRunOptions()),
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppConfig.APIPort,
			Handler: router,
		},
	}, nil
}

// Initialize validates the scheduled setup and mounts the API.
func (s *Server) Initialize(ctx context.Context) error {
	if s.config.CronConfig.TriageSchedule != "" && s.services.Source == nil {
		return errors.New("CRON_SCHEDULE_TRIAGE is set but neither IMAP_SERVER nor CRON_SOURCE_DIR is configured")
	}
	api.RegisterRoutes(ctx, s.router, s.services, s.config.AppConfig.APIKey)
	return nil
}

func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Initialize(ctx); err != nil {
		return err
	}

	caps := s.services.Capabilities
	s.log.Infof("triage mode: %s", caps.Mode())
	if missing := caps.Missing(); len(missing) > 0 {
		s.log.Warnf("missing mail capabilities: %v", missing)
	}

	if err := s.cronManager.Start(); err != nil {
		return errors.Wrap(err, "start cron")
	}

	go func() {
		defer tracing.RecoverAndLogToJaeger(s.log)
		s.log.Infof("http server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("http server: %v", err)
		}
	}()

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	defer tracing.RecoverAndLogToJaeger(s.log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	s.log.Infof("received %s, shutting down", sig)

	httpCtx, httpCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer httpCancel()
	if err := s.httpServer.Shutdown(httpCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}

	// a triage batch in flight is allowed to finish
	cronDone := make(chan struct{})
	go func() {
		defer close(cronDone)
		defer tracing.RecoverAndLogToJaeger(s.log)
		s.cronManager.Stop()
	}()
	select {
	case <-cronDone:
	case <-time.After(cronShutdownTimeout):
		s.log.Warn("cron stop timed out, a triage run may be cut short")
	}

	if err := s.services.Close(); err != nil {
		s.log.Errorf("closing services: %v", err)
	}
	if s.tracerCloser != nil {
		s.tracerCloser.Close()
	}
	s.log.Info("shutdown complete")
	s.log.Sync()
	return nil
}
