package event

import (
	"context"
	"time"

	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/cenkalti/backoff/v5"
)

// WrapExponentialBackoff retries next up to maxRetries extra times, doubling
// the wait from baseWait. Poison messages are returned on the first attempt.
func WrapExponentialBackoff(
	log logger.Logger,
	metrics metrics.Metrics,
	handlerName string,
	maxRetries int,
	baseWait time.Duration,
	next MessageHandler,
) MessageHandler {
	return func(ctx context.Context, msg []byte, headers map[string]interface{}) error {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = baseWait
		policy.Multiplier = 2
		policy.RandomizationFactor = 0
		policy.MaxInterval = baseWait << maxRetries

		attempt := 0
		start := time.Now()
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			attempt++
			err := next(ctx, msg, headers)
			if err != nil && isPoison(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		},
			backoff.WithBackOff(policy),
			backoff.WithMaxTries(uint(maxRetries+1)),
			backoff.WithNotify(func(err error, wait time.Duration) {
				log.Warn(ctx, "Transient failure, retrying...",
					logger.String("handler", handlerName),
					logger.Int("attempt", attempt),
					logger.Duration("wait", wait),
					logger.WithError(err),
				)
			}),
		)
		if err == nil || isPoison(err) {
			return err
		}

		log.Error(ctx, "Max retries reached, giving up.",
			logger.String("handler", handlerName),
			logger.Int("attempts", attempt),
			logger.WithError(err),
		)
		metrics.RecordUseCaseExecution(handlerName+"_final_failure", false, time.Since(start))
		return err
	}
}
