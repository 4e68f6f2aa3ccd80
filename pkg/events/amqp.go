package events

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
)

// AMQPChannel is the subset of *amqp.Channel the publisher uses.
type AMQPChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP publishes events to a durable topic exchange keyed by event type.
type AMQP struct {
	conn     *amqp.Connection
	ch       AMQPChannel
	exchange string
}

// DialAMQP connects to the broker and declares exchange.
func DialAMQP(url, exchange string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: connect to amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: open amqp channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("events: declare exchange %q: %w", exchange, err)
	}
	return &AMQP{conn: conn, ch: ch, exchange: exchange}, nil
}

// NewAMQPWithChannel publishes through an already open channel.
func NewAMQPWithChannel(ch AMQPChannel, exchange string) *AMQP {
	return &AMQP{ch: ch, exchange: exchange}
}

func (a *AMQP) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := event.Encode()
	if err != nil {
		return err
	}
	err = a.ch.Publish(a.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.SubmissionID,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", event.Type, err)
	}
	return nil
}

func (a *AMQP) Close() error {
	var first error
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			first = err
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
