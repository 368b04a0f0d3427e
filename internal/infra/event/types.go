package event

import (
	"context"
	"errors"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type MessageHandler func(ctx context.Context, msg []byte, headers map[string]interface{}) error

// ErrMalformedMessage marks a body that can never be processed.
var ErrMalformedMessage = errors.New("malformed message")

// isPoison reports whether redelivering the message would fail the same way.
func isPoison(err error) bool {
	return errors.Is(err, ErrMalformedMessage) || errors.Is(err, entity.ErrValidation)
}
