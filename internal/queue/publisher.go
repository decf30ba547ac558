package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/logging"
)

// Publisher sends sync events.  Handlers treat publish errors as
// non-fatal: the sync itself has already been committed.
type Publisher interface {
	PublishSyncCompleted(ctx context.Context, ev SyncCompletedEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishSyncCompleted(context.Context, SyncCompletedEvent) error { return nil }

// AMQPPublisher publishes persistent JSON messages to SyncCompletedQueue.
// It dials per publish; sync calls are infrequent operator actions.
type AMQPPublisher struct {
	url string
	log *zap.Logger
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, log: logging.WithComponent(logger, "queue")}
}

// PublishSyncCompleted declares the durable queue and publishes ev to it
// through the default exchange.
func (p *AMQPPublisher) PublishSyncCompleted(ctx context.Context, ev SyncCompletedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", zap.Error(err))
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(SyncCompletedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", SyncCompletedQueue, err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", SyncCompletedQueue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq publish failed", zap.String("operation", ev.Operation), zap.Error(err))
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Debug("sync event published", zap.String("operation", ev.Operation), zap.String("subject_id", ev.SubjectID))
	return nil
}
