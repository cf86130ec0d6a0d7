package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"digimarket.backend/internal/config"
	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/pkg/logger"
	"github.com/avast/retry-go/v5"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes domain events keyed by aggregate id, so all events of
// one order or payout land on the same partition.
type KafkaPublisher struct {
	w        messageWriter
	attempts uint
	delay    time.Duration
}

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
		attempts: 3,
		delay:    200 * time.Millisecond,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt entities.DomainEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(evt.Key),
		Value: value,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	}

	retrier := retry.New(
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.Attempts(p.attempts),
		retry.Delay(p.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	err = retrier.Do(func() error {
		return p.w.WriteMessages(ctx, msg)
	})
	if err != nil {
		logger.Error(ctx, "Failed to publish event", zap.String("type", evt.Type), zap.String("key", evt.Key), zap.Error(err))
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, evt entities.DomainEvent) error {
	logger.Debug(ctx, "Event publishing disabled", zap.String("type", evt.Type), zap.String("key", evt.Key))
	return nil
}

func (NopPublisher) Close() error { return nil }
