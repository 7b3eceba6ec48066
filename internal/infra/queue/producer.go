package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/landingkit/seminar-signups/internal/entity"
)

// EmailJob is the message published for each outbound email.
type EmailJob struct {
	ID        string       `json:"id"`
	Email     entity.Email `json:"email"`
	CreatedAt time.Time    `json:"created_at"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Producer satisfies the mailer contract by queueing the message instead of sending it.
type Producer struct {
	ch     publisher
	logger *zap.Logger
}

func NewProducer(ch *amqp.Channel, logger *zap.Logger) *Producer {
	return newProducer(ch, logger)
}

func newProducer(ch publisher, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{ch: ch, logger: logger}
}

func (p *Producer) Send(ctx context.Context, msg entity.Email) error {
	job := EmailJob{
		ID:        uuid.New().String(),
		Email:     msg,
		CreatedAt: time.Now(),
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    job.ID,
			Timestamp:    job.CreatedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}

	p.logger.Debug("email job queued", zap.String("job_id", job.ID), zap.String("kind", string(msg.Kind)))
	return nil
}
