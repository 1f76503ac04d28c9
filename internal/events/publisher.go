package events

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher pushes event bodies to a broker.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

type rabbit struct {
	url        string
	queue      string
	expiration int // ms; 0 keeps messages until consumed
	log        *zap.Logger
}

// NewPublisher returns an AMQP publisher, or a Noop when url is empty.
func NewPublisher(url, queue string, expiration int, log *zap.Logger) Publisher {
	if url == "" {
		return Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &rabbit{url: url, queue: queue, expiration: expiration, log: log}
}

// Publish dials per message.
func (r *rabbit) Publish(ctx context.Context, body []byte) error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "dial amqp")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(r.queue, true, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "declare queue")
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if r.expiration > 0 {
		msg.Expiration = strconv.Itoa(r.expiration)
	}
	if err := ch.PublishWithContext(ctx, "", q.Name, false, false, msg); err != nil {
		return errors.Wrap(err, "publish")
	}
	r.log.Debug("published", zap.String("queue", q.Name), zap.Int("bytes", len(body)))
	return nil
}

type Noop struct{}

func (Noop) Publish(context.Context, []byte) error { return nil }
