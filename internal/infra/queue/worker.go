package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/landingkit/seminar-signups/internal/entity"
)

// EmailDeliverer is the transport the worker relays queued messages to (SMTP in production).
type EmailDeliverer interface {
	Send(ctx context.Context, msg entity.Email) error
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	channel consumer
	sender  EmailDeliverer
	logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, sender EmailDeliverer, logger *zap.Logger) *Worker {
	return newWorker(ch, sender, logger)
}

func newWorker(ch consumer, sender EmailDeliverer, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{channel: ch, sender: sender, logger: logger}
}

// Start consumes queueName until ctx is done or the delivery channel closes.
// Failed jobs are rejected without requeue so they land in the dead-letter queue.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.logger.Info("email worker waiting for jobs", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("email worker stopping")
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.logger.Warn("delivery channel closed")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var job EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.Error("invalid email job", zap.Error(err))
		d.Nack(false, false)
		return
	}

	if err := w.sender.Send(ctx, job.Email); err != nil {
		w.logger.Error("email job failed",
			zap.String("job_id", job.ID), zap.String("kind", string(job.Email.Kind)), zap.Error(err))
		d.Nack(false, false)
		return
	}

	w.logger.Info("email job delivered", zap.String("job_id", job.ID), zap.String("to", job.Email.To))
	d.Ack(false)
}
