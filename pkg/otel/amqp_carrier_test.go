package otel

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestAMQPHeadersCarrier_RoundTripsTraceContext(t *testing.T) {
	//Arrange
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()
	headers := amqp.Table{}
	prop := propagation.TraceContext{}

	//Act
	prop.Inject(ctx, AMQPHeadersCarrier(headers))
	extracted := prop.Extract(context.Background(), AMQPHeadersCarrier(headers))

	//Assert
	require.NotEmpty(t, headers["traceparent"])
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())
	assert.Contains(t, AMQPHeadersCarrier(headers).Keys(), "traceparent")
}

func TestAMQPHeadersCarrier_IgnoresNonStringValues(t *testing.T) {
	c := AMQPHeadersCarrier(amqp.Table{"x-retries": int32(3)})

	assert.Empty(t, c.Get("x-retries"))
	assert.Empty(t, c.Get("missing"))
}

func TestInitProvider_WithoutCollectorIsNoop(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), ProviderConfig{ServiceName: "test"})

	require.NoError(t, err)
	shutdown()
}

func TestAMQPHeadersCarrier_ReadsByteValues(t *testing.T) {
	c := AMQPHeadersCarrier(amqp.Table{
		"traceparent": []byte("00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"),
		"x-retries":   int32(3),
	})

	assert.Equal(t, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
}
