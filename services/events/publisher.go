package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
)

const (
	ExchangeTriage     = "mailtriage"
	ExchangeDeadLetter = "dead-letter"

	QueueDecisions = "triage-decisions"
	DLQDecisions   = QueueDecisions + "-dlq"

	RoutingKeyDeadLetter = "dead-letter"

	// Undelivered decisions move to the DLQ after DefaultMessageTTL.
	DefaultMessageTTL          = 240 * time.Hour
	DefaultMaxRetries          = 3
	DefaultPublishTimeout      = 5 * time.Second
	DefaultReconnectBackoff    = time.Second
	DefaultMaxReconnectBackoff = 30 * time.Second
)

type PublisherConfig struct {
	MessageTTL          time.Duration
	MaxRetries          int
	PublishTimeout      time.Duration
	ReconnectBackoff    time.Duration
	MaxReconnectBackoff time.Duration
}

func defaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		MessageTTL:          DefaultMessageTTL,
		MaxRetries:          DefaultMaxRetries,
		PublishTimeout:      DefaultPublishTimeout,
		ReconnectBackoff:    DefaultReconnectBackoff,
		MaxReconnectBackoff: DefaultMaxReconnectBackoff,
	}
}

type exchangeSpec struct {
	name string
	kind string
}

type queueSpec struct {
	name       string
	exchange   string
	routingKey string
	deadLetter bool
}

// topology is declared in order on every (re)connect. Dead letter queues come
// before the queues that point at them.
func (c PublisherConfig) topology() ([]exchangeSpec, []queueSpec) {
	exchanges := []exchangeSpec{
		{name: ExchangeDeadLetter, kind: amqp091.ExchangeDirect},
		{name: ExchangeTriage, kind: amqp091.ExchangeFanout},
	}
	queues := []queueSpec{
		{name: DLQDecisions, exchange: ExchangeDeadLetter, routingKey: RoutingKeyDeadLetter},
		{name: QueueDecisions, exchange: ExchangeTriage, deadLetter: true},
	}
	return exchanges, queues
}

func (c PublisherConfig) queueArgs(q queueSpec) amqp091.Table {
	if !q.deadLetter {
		return nil
	}
	return amqp091.Table{
		"x-dead-letter-exchange":    ExchangeDeadLetter,
		"x-dead-letter-routing-key": RoutingKeyDeadLetter,
		"x-message-ttl":             c.MessageTTL.Milliseconds(),
	}
}

// nextBackoff doubles the delay up to the configured ceiling.
func (c PublisherConfig) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > c.MaxReconnectBackoff {
		return c.MaxReconnectBackoff
	}
	return next
}

var _ interfaces.DecisionPublisher = (*RabbitMQPublisher)(nil)

// RabbitMQPublisher sends decision events with publisher confirms. One channel
// is shared, so publishes are serialized.
type RabbitMQPublisher struct {
	url    string
	log    logger.Logger
	config PublisherConfig

	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	confirms chan amqp091.Confirmation

	done      chan struct{}
	closeOnce sync.Once
}

func NewRabbitMQPublisher(rabbitmqURL string, log logger.Logger, config *PublisherConfig) (*RabbitMQPublisher, error) {
	cfg := defaultPublisherConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}

	p := &RabbitMQPublisher{
		url:    rabbitmqURL,
		log:    log,
		config: cfg,
		done:   make(chan struct{}),
	}

	p.mu.Lock()
	err := p.dial()
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	go p.watch()
	return p, nil
}

// PublishDecision fans one decided record out on the triage exchange.
func (p *RabbitMQPublisher) PublishDecision(ctx context.Context, batchId string, rec *models.DecisionRecord) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.PublishDecision")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagBatch(span, batchId)
	tracing.TagMessage(span, rec.ID())

	payload := NewDecisionEvent(rec)
	carrier := tracing.ExtractTextMapCarrier(span.Context())
	event := NewEvent(ctx, batchId, rec.ID(), enum.DECISION_RECORD, &payload, carrier["uber-trace-id"])
	tracing.LogObjectAsJson(span, "event", event)

	body, err := json.Marshal(event)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "marshal decision event")
	}

	if err = p.publish(ctx, ExchangeTriage, body); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	span.LogKV("result.published", true)
	return nil
}

func (p *RabbitMQPublisher) publish(ctx context.Context, exchange string, body []byte) error {
	var lastErr error
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		lastErr = p.publishOnce(ctx, exchange, body)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.log.Warnf("decision publish attempt %d/%d failed: %v", attempt, p.config.MaxRetries, lastErr)
		if attempt < p.config.MaxRetries {
			select {
			case <-time.After(100 * time.Millisecond * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return errors.Wrapf(lastErr, "publish to %s failed after %d attempts", exchange, p.config.MaxRetries)
}

func (p *RabbitMQPublisher) publishOnce(ctx context.Context, exchange string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.ensureChannel(); err != nil {
		return err
	}

	// fanout exchanges ignore the routing key
	err := p.channel.PublishWithContext(ctx, exchange, "", true, false, amqp091.Publishing{
		DeliveryMode: amqp091.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return errors.Wrap(err, "publish")
	}

	select {
	case confirm, ok := <-p.confirms:
		if !ok {
			return errors.New("confirm channel closed")
		}
		if !confirm.Ack {
			return errors.New("broker nacked decision event")
		}
		return nil
	case <-time.After(p.config.PublishTimeout):
		return errors.New("timed out waiting for publish confirm")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dial opens the connection, declares the topology and opens the confirm
// channel. Caller holds mu.
func (p *RabbitMQPublisher) dial() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return errors.Wrap(err, "dial rabbitmq")
	}
	if err = p.declare(conn); err != nil {
		conn.Close()
		return err
	}
	p.conn = conn
	if err = p.openChannel(); err != nil {
		conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

func (p *RabbitMQPublisher) declare(conn *amqp091.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open setup channel")
	}
	defer ch.Close()

	exchanges, queues := p.config.topology()
	for _, ex := range exchanges {
		if err = ch.ExchangeDeclare(ex.name, ex.kind, true, false, false, false, nil); err != nil {
			return errors.Wrapf(err, "declare exchange %s", ex.name)
		}
	}
	for _, q := range queues {
		if _, err = ch.QueueDeclare(q.name, true, false, false, false, p.config.queueArgs(q)); err != nil {
			return errors.Wrapf(err, "declare queue %s", q.name)
		}
		if err = ch.QueueBind(q.name, q.routingKey, q.exchange, false, nil); err != nil {
			return errors.Wrapf(err, "bind queue %s to %s", q.name, q.exchange)
		}
	}
	return nil
}

// Caller holds mu.
func (p *RabbitMQPublisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open publish channel")
	}
	if err = ch.Confirm(false); err != nil {
		ch.Close()
		return errors.Wrap(err, "enable confirms")
	}
	p.confirms = ch.NotifyPublish(make(chan amqp091.Confirmation, 1))
	p.channel = ch
	return nil
}

// Caller holds mu.
func (p *RabbitMQPublisher) ensureChannel() error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection is down")
	}
	if p.channel == nil || p.channel.IsClosed() {
		return p.openChannel()
	}
	return nil
}

// watch redials whenever the connection drops, until Close is called.
func (p *RabbitMQPublisher) watch() {
	for {
		p.mu.Lock()
		conn := p.conn
		p.mu.Unlock()
		if conn == nil {
			return
		}

		closed := conn.NotifyClose(make(chan *amqp091.Error, 1))
		select {
		case <-p.done:
			return
		case amqpErr := <-closed:
			p.log.Warnf("rabbitmq connection lost: %v", amqpErr)
		}

		if !p.redial() {
			return
		}
		p.log.Info("rabbitmq connection restored")
	}
}

// redial returns false when the publisher was closed while retrying.
func (p *RabbitMQPublisher) redial() bool {
	backoff := p.config.ReconnectBackoff
	for {
		select {
		case <-p.done:
			return false
		default:
		}

		p.mu.Lock()
		err := p.dial()
		p.mu.Unlock()
		if err == nil {
			return true
		}

		p.log.Errorf("rabbitmq reconnect failed, retrying in %v: %v", backoff, err)
		select {
		case <-p.done:
			return false
		case <-time.After(backoff):
		}
		backoff = p.config.nextBackoff(backoff)
	}
}

func (p *RabbitMQPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })

	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.channel != nil {
		if err = p.channel.Close(); err != nil {
			p.log.Errorf("closing publish channel: %v", err)
		}
		p.channel = nil
	}
	if p.conn != nil {
		if closeErr := p.conn.Close(); closeErr != nil {
			p.log.Errorf("closing rabbitmq connection: %v", closeErr)
			if err == nil {
				err = closeErr
			}
		}
		p.conn = nil
	}
	return err
}
