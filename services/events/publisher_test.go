package events

import (
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherConfig_Topology(t *testing.T) {
	exchanges, queues := defaultPublisherConfig().topology()

	require.Len(t, exchanges, 2)
	assert.Equal(t, exchangeSpec{name: ExchangeDeadLetter, kind: "direct"}, exchanges[0])
	assert.Equal(t, exchangeSpec{name: ExchangeTriage, kind: "fanout"}, exchanges[1])

	require.Len(t, queues, 2)
	assert.Equal(t, DLQDecisions, queues[0].name, "dlq must exist before the queue that references it")
	assert.Equal(t, QueueDecisions, queues[1].name)
	assert.True(t, queues[1].deadLetter)
}

func TestPublisherConfig_QueueArgs(t *testing.T) {
	cfg := defaultPublisherConfig()
	cfg.MessageTTL = time.Minute

	assert.Nil(t, cfg.queueArgs(queueSpec{name: DLQDecisions}))
	assert.Equal(t, amqp091.Table{
		"x-dead-letter-exchange":    ExchangeDeadLetter,
		"x-dead-letter-routing-key": RoutingKeyDeadLetter,
		"x-message-ttl":             int64(60000),
	}, cfg.queueArgs(queueSpec{name: QueueDecisions, deadLetter: true}))
}

func TestPublisherConfig_NextBackoff(t *testing.T) {
	cfg := PublisherConfig{MaxReconnectBackoff: 5 * time.Second}

	tests := []struct {
		current time.Duration
		want    time.Duration
	}{
		{time.Second, 2 * time.Second},
		{2 * time.Second, 4 * time.Second},
		{4 * time.Second, 5 * time.Second},
		{5 * time.Second, 5 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.nextBackoff(tt.current))
	}
}
