// Package rabbitmq carries reservation events over a durable RabbitMQ queue.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/railbooking/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   logrus.FieldLogger
}

// deadLetterSuffix names the exchange and queue that collect rejected deliveries.
const deadLetterSuffix = ".dead"

func dial(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}
	if err := declareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// declareTopology declares the work queue and the dead-letter exchange and
// queue its rejected deliveries are routed to.
func declareTopology(ch *amqp.Channel, queue string) error {
	dead := queue + deadLetterSuffix
	if err := ch.ExchangeDeclare(dead, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq dead-letter exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(dead, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq dead-letter queue declare: %w", err)
	}
	if err := ch.QueueBind(dead, "", dead, false, nil); err != nil {
		return fmt.Errorf("rabbitmq dead-letter queue bind: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, queueArgs(queue)); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return nil
}

func queueArgs(queue string) amqp.Table {
	return amqp.Table{"x-dead-letter-exchange": queue + deadLetterSuffix}
}

func NewPublisher(url, queue string, log logrus.FieldLogger) (*Publisher, error) {
	conn, ch, err := dial(url, queue)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue, log: log}, nil
}

func newPublishing(event events.ReservationEvent) (amqp.Publishing, error) {
	body, err := event.Encode()
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, event events.ReservationEvent) error {
	pub, err := newPublishing(event)
	if err != nil {
		return fmt.Errorf("rabbitmq marshal event: %w", err)
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	p.log.WithFields(logrus.Fields{"queue": p.queue, "type": event.Type, "code": event.ConfirmationCode}).
		Debug("published reservation event")
	return nil
}

func (p *Publisher) Close() error {
	return closeAll(p.ch, p.conn)
}

type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   logrus.FieldLogger
}

func NewConsumer(url, queue string, log logrus.FieldLogger) (*Consumer, error) {
	conn, ch, err := dial(url, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("rabbitmq: set QoS failed")
	}
	return &Consumer{conn: conn, ch: ch, queue: queue, log: log}, nil
}

// Consume acks handled deliveries. A failed delivery is requeued once; a
// malformed one, or one that fails again after redelivery, is dead-lettered.
func (c *Consumer) Consume(ctx context.Context, handler events.Handler) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq deliveries channel closed")
			}
			handleDelivery(ctx, d, handler, c.log)
		}
	}
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handler events.Handler, log logrus.FieldLogger) {
	entry := log.WithField("message_id", d.MessageId)
	event, err := events.Decode(d.Body)
	if err != nil {
		entry.WithError(err).Warn("dead-lettering malformed reservation event")
		_ = d.Nack(false, false)
		return
	}
	if err := handler(ctx, event); err != nil {
		requeue := !d.Redelivered
		entry.WithError(err).WithField("requeue", requeue).Warn("rejecting reservation event")
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) Close() error {
	return closeAll(c.ch, c.conn)
}

func closeAll(ch *amqp.Channel, conn *amqp.Connection) error {
	var errs []error
	if ch != nil {
		errs = append(errs, ch.Close())
	}
	if conn != nil {
		errs = append(errs, conn.Close())
	}
	return errors.Join(errs...)
}

var (
	_ events.Publisher  = (*Publisher)(nil)
	_ events.Subscriber = (*Consumer)(nil)
)
