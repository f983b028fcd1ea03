package events

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

type stubPublisher struct {
	closeErr error
	closed   bool
}

func (s *stubPublisher) PublishDecision(ctx context.Context, batchId string, rec *models.DecisionRecord) error {
	return nil
}

func (s *stubPublisher) Close() error {
	s.closed = true
	return s.closeErr
}

func TestPublisherConfigFrom(t *testing.T) {
	got := publisherConfigFrom(&config.RabbitMQConfig{
		MessageTTL:       time.Hour,
		MaxRetries:       5,
		ReconnectBackoff: time.Minute,
	})

	assert.Equal(t, time.Hour, got.MessageTTL)
	assert.Equal(t, 5, got.MaxRetries)
	assert.Equal(t, DefaultPublishTimeout, got.PublishTimeout)
	assert.Equal(t, time.Minute, got.ReconnectBackoff)
	// ceiling is never below the starting backoff
	assert.Equal(t, time.Minute, got.MaxReconnectBackoff)
}

func TestPublisherConfigFrom_Defaults(t *testing.T) {
	assert.Equal(t, defaultPublisherConfig(), publisherConfigFrom(&config.RabbitMQConfig{}))
}

func TestNewEventsService_NoURL(t *testing.T) {
	_, err := NewEventsService(&config.RabbitMQConfig{}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestEventsService_Close(t *testing.T) {
	ok := &stubPublisher{}
	require.NoError(t, (&EventsService{Publisher: ok}).Close())
	assert.True(t, ok.closed)

	failing := &stubPublisher{closeErr: errors.New("channel gone")}
	err := (&EventsService{Publisher: failing}).Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close decision publisher: channel gone")

	var none *EventsService
	assert.NoError(t, none.Close())
}
