package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DioGolang/GoTrack/pkg/events"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	carrier "github.com/DioGolang/GoTrack/pkg/otel"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

const DefaultExchange = "amq.topic"

// Publisher is the part of *amqp.Channel the dispatcher needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Dispatcher publishes domain events on a topic exchange, routed by event name.
type Dispatcher struct {
	Channel  Publisher
	Exchange string
	Metrics  metrics.Metrics
}

func NewDispatcher(ch Publisher, exchange string, m metrics.Metrics) *Dispatcher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Dispatcher{Channel: ch, Exchange: exchange, Metrics: m}
}

func (ed *Dispatcher) Dispatch(ctx context.Context, event events.Event) error {
	headers := make(amqp.Table)
	otel.GetTextMapPropagator().Inject(ctx, carrier.AMQPHeadersCarrier(headers))
	eventID := uuid.NewString()
	headers["x-event-id"] = eventID

	payload, err := json.Marshal(event.GetPayload())
	if err != nil {
		ed.Metrics.IncEventsPublished("error")
		return err
	}

	err = ed.Channel.PublishWithContext(
		ctx,
		ed.Exchange,
		event.GetName(),
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    eventID,
			Timestamp:    event.GetDateTime().UTC().Truncate(time.Second),
			Type:         event.GetName(),
			Body:         payload,
		})
	if err != nil {
		ed.Metrics.IncEventsPublished("error")
		return err
	}
	ed.Metrics.IncEventsPublished("ok")
	return nil
}
