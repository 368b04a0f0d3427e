package event

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
)

type RedisIdempotencyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

// WrapIdempotency drops redeliveries of a message already handled. The key is
// the x-event-id header, or a hash of the body when the header is missing.
func WrapIdempotency(
	log logger.Logger,
	m metrics.Metrics,
	store RedisIdempotencyStore,
	handlerName string,
	ttl time.Duration,
	next MessageHandler,
) MessageHandler {
	return func(ctx context.Context, msg []byte, headers map[string]interface{}) error {
		var eventID string
		if v, ok := headers["x-event-id"]; ok {
			eventID = fmt.Sprintf("%v", v)
		}
		if eventID == "" {
			hash := sha256.Sum256(msg)
			eventID = fmt.Sprintf("hash:%x", hash)
		}

		key := fmt.Sprintf("dedup:%s:%s", handlerName, eventID)

		saved, err := store.SetNX(ctx, key, "processing", ttl)
		if err != nil {
			// Fail closed: the message is requeued rather than risk a double submit.
			log.Error(ctx, "Redis unavailable for idempotency check", logger.WithError(err))
			return fmt.Errorf("idempotency store unavailable: %w", err)
		}

		if !saved {
			log.Info(ctx, "Duplicate event dropped by Idempotency Guard",
				logger.String("handler", handlerName),
				logger.String("event_id", eventID),
			)
			m.IncDuplicateMessage(handlerName)
			return nil
		}

		err = next(ctx, msg, headers)
		if err != nil && !isPoison(err) {
			log.Warn(ctx, "Handler logic failed, releasing key for retry",
				logger.String("key", key),
				logger.WithError(err),
			)
			if delErr := store.Del(context.WithoutCancel(ctx), key); delErr != nil {
				log.Error(ctx, "Failed to release idempotency key",
					logger.String("key", key),
					logger.WithError(delErr),
				)
			}
		}
		return err
	}
}
