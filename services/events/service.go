package events

import (
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
)

// EventsService owns the broker side of a triage deployment.
type EventsService struct {
	Publisher interfaces.DecisionPublisher
}

func NewEventsService(cfg *config.RabbitMQConfig, log logger.Logger) (*EventsService, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("rabbitmq url is not configured")
	}
	publisherConfig := publisherConfigFrom(cfg)
	publisher, err := NewRabbitMQPublisher(cfg.URL, log.With("component", "rabbitmq"), &publisherConfig)
	if err != nil {
		return nil, errors.Wrap(err, "decision publisher")
	}
	return &EventsService{Publisher: publisher}, nil
}

// publisherConfigFrom fills unset values with the package defaults.
func publisherConfigFrom(cfg *config.RabbitMQConfig) PublisherConfig {
	out := defaultPublisherConfig()
	if cfg.MessageTTL > 0 {
		out.MessageTTL = cfg.MessageTTL
	}
	if cfg.MaxRetries > 0 {
		out.MaxRetries = cfg.MaxRetries
	}
	if cfg.PublishTimeout > 0 {
		out.PublishTimeout = cfg.PublishTimeout
	}
	if cfg.ReconnectBackoff > 0 {
		out.ReconnectBackoff = cfg.ReconnectBackoff
	}
	if cfg.MaxReconnectBackoff > 0 {
		out.MaxReconnectBackoff = cfg.MaxReconnectBackoff
	}
	if out.MaxReconnectBackoff < out.ReconnectBackoff {
		out.MaxReconnectBackoff = out.ReconnectBackoff
	}
	return out
}

func (s *EventsService) Close() error {
	if s == nil || s.Publisher == nil {
		return nil
	}
	return errors.Wrap(s.Publisher.Close(), "close decision publisher")
}
