package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/DioGolang/GoTrack/pkg/logger"
	carrier "github.com/DioGolang/GoTrack/pkg/otel"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultQueue = "driver.locations"

var ErrDeliveriesClosed = errors.New("amqp deliveries channel closed")

type Consumer struct {
	Conn     *amqp.Connection
	Handler  MessageHandler
	Logger   logger.Logger
	Prefetch int
}

func NewConsumer(conn *amqp.Connection, handler MessageHandler, l logger.Logger) *Consumer {
	return &Consumer{
		Conn:     conn,
		Handler:  handler,
		Logger:   l,
		Prefetch: 32,
	}
}

// Start consumes queueName until ctx is done or the broker closes the channel.
func (c *Consumer) Start(ctx context.Context, queueName string) error {
	ch, err := c.Conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := c.setupTopology(ch, queueName); err != nil {
		return fmt.Errorf("error when configuring topology: %w", err)
	}
	if err := ch.Qos(c.Prefetch, 0, false); err != nil {
		return err
	}

	msgs, err := ch.ConsumeWithContext(
		ctx,
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	c.Logger.Info(ctx, "[*] Waiting for messages. To exit press CTRL+C", logger.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			c.Process(ctx, queueName, d)
		}
	}
}

// Process runs the handler for one delivery and settles it. Poison messages
// are dropped; every other failure goes back to the queue.
func (c *Consumer) Process(ctx context.Context, queueName string, d amqp.Delivery) {
	if d.Headers == nil {
		d.Headers = amqp.Table{}
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier.AMQPHeadersCarrier(d.Headers))

	tracer := otel.GetTracerProvider().Tracer("worker-tracer")
	ctx, span := tracer.Start(ctx, "ProcessDriverLocation", trace.WithAttributes(
		attribute.String("queue.name", queueName),
		attribute.String("messaging.message_id", d.MessageId),
	))
	defer span.End()

	c.Logger.Debug(ctx, "Received message from queue", logger.String("queue", queueName))

	err := c.Handler(ctx, d.Body, d.Headers)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			c.Logger.Error(ctx, "Failed to ack message", logger.WithError(ackErr))
		}
	case isPoison(err):
		c.Logger.Warn(ctx, "Dropping message that can never succeed",
			logger.String("message_id", d.MessageId),
			logger.WithError(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "rejected")
		_ = d.Nack(false, false)
	default:
		c.Logger.Error(ctx, "Failed to process message, requeueing",
			logger.String("message_id", d.MessageId),
			logger.WithError(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		_ = d.Nack(false, true)
	}
}

func (c *Consumer) setupTopology(ch *amqp.Channel, queueName string) error {
	_, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	return err
}
