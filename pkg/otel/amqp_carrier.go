package otel

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/propagation"
)

var _ propagation.TextMapCarrier = AMQPHeadersCarrier{}

// AMQPHeadersCarrier moves trace context through message headers. Brokers
// and non-Go publishers may deliver long strings as bytes; both are read.
type AMQPHeadersCarrier amqp.Table

func (c AMQPHeadersCarrier) Get(key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func (c AMQPHeadersCarrier) Set(key string, value string) {
	c[key] = value
}

// Keys lists only the headers a propagator could have written.
func (c AMQPHeadersCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k, v := range c {
		switch v.(type) {
		case string, []byte:
			keys = append(keys, k)
		}
	}
	return keys
}
