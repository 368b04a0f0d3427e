package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DioGolang/GoTrack/internal/application/usecase/location"
)

// NewLocationHandler decodes a driver location message and submits it.
func NewLocationHandler(submit location.SubmitUseCase) MessageHandler {
	return func(ctx context.Context, msg []byte, _ map[string]interface{}) error {
		var input location.SubmitInput
		if err := json.Unmarshal(msg, &input); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
		}
		_, err := submit.Execute(ctx, input)
		return err
	}
}
