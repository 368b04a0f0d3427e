package event

import (
	"context"
	"sync"

	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

func newTestMetrics() (*metrics.Prometheus, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return metrics.NewPrometheusMetrics(reg, "event-test"), reg
}

type fakePublisher struct {
	mu        sync.Mutex
	err       error
	exchange  string
	key       string
	published []amqp.Publishing
}

func (p *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.exchange, p.key = exchange, key
	p.published = append(p.published, msg)
	return nil
}

type settlement struct {
	acked   bool
	nacked  bool
	requeue bool
}

type fakeAcknowledger struct{ got settlement }

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.got.acked = true
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.got.nacked, a.got.requeue = true, requeue
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.got.nacked, a.got.requeue = true, requeue
	return nil
}
