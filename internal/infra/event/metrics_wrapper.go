package event

import (
	"context"
	"errors"
	"time"

	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/sony/gobreaker"
)

// NewHandlerBreaker trips after five consecutive infrastructure failures.
// Poison messages count as successes so bad input cannot open it.
func NewHandlerBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isPoison(err)
		},
	})
}

func WrapResilientConsumer(
	m metrics.Metrics,
	handlerName string,
	timeout time.Duration,
	cb *gobreaker.CircuitBreaker,
	next MessageHandler,
) MessageHandler {
	return func(ctx context.Context, msg []byte, headers map[string]interface{}) error {
		start := time.Now()

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		_, err := cb.Execute(func() (interface{}, error) {
			return nil, next(ctx, msg, headers)
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			m.RecordUseCaseExecution(handlerName, false, time.Since(start))
			return err
		}

		m.RecordUseCaseExecution(handlerName, err == nil, time.Since(start))
		return err
	}
}
