package offline_queue

import (
	"context"
	"fmt"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// publishConfirmation is the broker's answer to a single publish.
type publishConfirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type confirmPublisher interface {
	Publish(ctx context.Context, queueName string, msg amqp.Publishing) (publishConfirmation, error)
	Close() error
}

type channelPublisher struct {
	ch *amqp.Channel
}

func (p *channelPublisher) Publish(ctx context.Context, queueName string, msg amqp.Publishing) (publishConfirmation, error) {
	deferred, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, "", queueName, false, false, msg)
	if err != nil {
		return nil, err
	}
	if deferred == nil {
		return nil, fmt.Errorf("channel is not in confirm mode")
	}
	return deferred, nil
}

func (p *channelPublisher) Close() error {
	return p.ch.Close()
}

type amqpNotifier struct {
	publisher      confirmPublisher
	queueName      string
	publishTimeout time.Duration
	log            *zap.Logger
}

// NewNotifier declares the durable queue and enables publisher confirms.
func NewNotifier(conn *amqp.Connection, queueName string, publishTimeout time.Duration, log *zap.Logger) (contracts.OfflineTransactionNotifier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	)
	if err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return newNotifier(&channelPublisher{ch: ch}, queueName, publishTimeout, log), nil
}

func newNotifier(publisher confirmPublisher, queueName string, publishTimeout time.Duration, log *zap.Logger) *amqpNotifier {
	return &amqpNotifier{
		publisher:      publisher,
		queueName:      queueName,
		publishTimeout: publishTimeout,
		log:            log,
	}
}

// Notify waits for the confirmation of its own publish only. A confirmation
// that arrives after the timeout is resolved on its own deferred handle and
// never observed by a later call.
func (n *amqpNotifier) Notify(ctx context.Context, event *models.OfflineTransactionEvent) error {
	requestID := utils.GetRequestID(ctx)
	n.log.Debug("amqpNotifier.Notify called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTransactionIDKey, event.UUID),
	)

	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.UUID,
		Type:         event.Type,
		Timestamp:    time.Now().UTC(),
	}

	confirmation, err := n.publisher.Publish(ctx, n.queueName, msg)
	if err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, n.queueName)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, n.queueName)
	}
	if !acked {
		return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message %s not confirmed", event.UUID), n.queueName)
	}

	n.log.Debug("amqpNotifier.Notify confirmed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTransactionIDKey, event.UUID),
	)
	return nil
}

func (n *amqpNotifier) Close() error {
	return n.publisher.Close()
}
