package events

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// SQSAPI is the subset of the SQS client the publisher uses.
type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSConfig selects the queue. EndpointURL points the SDK at a local stack.
type SQSConfig struct {
	QueueName   string
	EndpointURL string
}

// SQS publishes events as SQS messages. The W3C trace context travels in
// message attributes.
type SQS struct {
	api      SQSAPI
	queueURL *string
}

// NewSQS loads the default AWS configuration and resolves the queue URL.
func NewSQS(ctx context.Context, cfg SQSConfig) (*SQS, error) {
	var (
		awsCfg aws.Config
		err    error
	)
	if cfg.EndpointURL != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           cfg.EndpointURL,
				SigningRegion: region,
			}, nil
		})
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithEndpointResolverWithOptions(resolver))
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("events: load aws config: %w", err)
	}
	return NewSQSWithAPI(ctx, sqs.NewFromConfig(awsCfg), cfg.QueueName)
}

// NewSQSWithAPI resolves queueName through api.
func NewSQSWithAPI(ctx context.Context, api SQSAPI, queueName string) (*SQS, error) {
	if queueName == "" {
		return nil, fmt.Errorf("events: sqs queue name is required")
	}
	out, err := api.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queueName)})
	if err != nil {
		return nil, fmt.Errorf("events: resolve queue %q: %w", queueName, err)
	}
	return &SQS{api: api, queueURL: out.QueueUrl}, nil
}

func (s *SQS) Publish(ctx context.Context, event Event) error {
	body, err := event.Encode()
	if err != nil {
		return err
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	attrs := map[string]types.MessageAttributeValue{
		"event_type": {DataType: aws.String("String"), StringValue: aws.String(string(event.Type))},
	}
	for key, value := range carrier {
		attrs[key] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(value)}
	}

	_, err = s.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          s.queueURL,
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("events: send sqs message: %w", err)
	}
	return nil
}

func (s *SQS) Close() error { return nil }
