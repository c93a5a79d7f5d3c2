// Package service provides the activity publisher used by handlers to
// announce committed changes on the message broker.  Publishing is best
// effort: errors are logged and returned so callers can ignore them
// without interrupting the request.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/fyyur/internal/queue"
)

// Publisher sends activity events somewhere.
type Publisher interface {
    Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// NopPublisher discards every event.  It is used when no broker is
// configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, queue.ActivityEvent) error { return nil }

// NewPublisher returns an AMQP publisher for url, or a NopPublisher when
// url is empty.
func NewPublisher(url string, log logrus.FieldLogger) Publisher {
    if url == "" {
        return NopPublisher{}
    }
    return NewAMQPPublisher(url, log)
}

// AMQPPublisher publishes persistent JSON messages to the activity queue
// over a single lazily opened connection.  A failed publish drops the
// connection so the next call redials.
type AMQPPublisher struct {
    url string
    log logrus.FieldLogger

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewAMQPPublisher creates a publisher; no connection is made until the
// first Publish.
func NewAMQPPublisher(url string, log logrus.FieldLogger) *AMQPPublisher {
    return &AMQPPublisher{url: url, log: log}
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.ActivityEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    if err := p.connect(); err != nil {
        p.log.WithError(err).Warn("rabbitmq: connect failed")
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    ev.ID,
        Type:         ev.Kind,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := p.ch.PublishWithContext(ctx,
        "",                  // default exchange
        queue.ActivityQueue, // routing key = queue name
        false,               // mandatory
        false,               // immediate
        pub,
    ); err != nil {
        p.log.WithError(err).WithField("kind", ev.Kind).Warn("rabbitmq: publish failed")
        p.reset()
        return err
    }
    return nil
}

func (p *AMQPPublisher) connect() error {
    if p.ch != nil && !p.ch.IsClosed() {
        return nil
    }
    p.reset()
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return fmt.Errorf("dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return fmt.Errorf("channel open: %w", err)
    }
    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue.ActivityQueue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return fmt.Errorf("queue declare: %w", err)
    }
    p.conn, p.ch = conn, ch
    return nil
}

func (p *AMQPPublisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.reset()
    return nil
}
