package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Config selects and configures the publisher driver.
type Config struct {
	Driver       string
	SQS          SQSConfig
	AMQPURL      string
	AMQPExchange string
}

// New builds the publisher for cfg.Driver: none, log, sqs or amqp.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "none":
		return Noop{}, nil
	case "log":
		return Log{Logger: logger}, nil
	case "sqs":
		return NewSQS(ctx, cfg.SQS)
	case "amqp":
		return DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	}
	return nil, fmt.Errorf("events: unsupported driver %q", cfg.Driver)
}
