// Package service connects the booking engine to outside systems.  The
// publisher here delivers reservation events to RabbitMQ; failures are
// logged and returned so the controller can carry on without them.
package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/jrwishart93/james-square-booking/internal/queue"
)

// EventPublisher implements booking.EventSink over AMQP.  Each Publish
// dials the broker, declares the durable queue and sends one persistent
// message.  Event volume is a handful per resident per day, so no
// connection is held open between calls.
type EventPublisher struct {
    url   string
    queue string
    log   *zap.Logger
}

// NewEventPublisher returns a publisher for queue.ReservationEventsQueue.
func NewEventPublisher(url string, log *zap.Logger) *EventPublisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &EventPublisher{url: url, queue: queue.ReservationEventsQueue, log: log}
}

// Publish sends ev.
func (p *EventPublisher) Publish(ctx context.Context, ev queue.ReservationEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("rabbitmq dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("rabbitmq channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(
        p.queue, // name
        true,    // durable
        false,   // autoDelete
        false,   // exclusive
        false,   // noWait
        nil,     // args
    ); err != nil {
        p.log.Warn("rabbitmq queue declare failed", zap.String("queue", p.queue), zap.Error(err))
        return err
    }

    pub, err := publishing(ev)
    if err != nil {
        p.log.Warn("marshal event failed", zap.String("event_id", ev.ID), zap.Error(err))
        return err
    }
    if err := ch.PublishWithContext(ctx,
        "",      // default exchange
        p.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        p.log.Warn("rabbitmq publish failed", zap.String("event_id", ev.ID), zap.Error(err))
        return err
    }
    p.log.Debug("event published", zap.String("type", ev.Type), zap.String("key", ev.Key))
    return nil
}

func publishing(ev queue.ReservationEvent) (amqp.Publishing, error) {
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }, nil
}
