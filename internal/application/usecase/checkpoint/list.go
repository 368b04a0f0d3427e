package checkpoint

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

const DefaultPageSize = 200

type ListUseCaseImpl struct {
	Repository outbound.CheckpointRepository
	PageSize   int
}

func NewListUseCase(repo outbound.CheckpointRepository, pageSize int) *ListUseCaseImpl {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &ListUseCaseImpl{Repository: repo, PageSize: pageSize}
}

func (uc *ListUseCaseImpl) Execute(ctx context.Context, rideID string) (iter.Seq2[CheckpointOutput, error], error) {
	rideID = strings.TrimSpace(rideID)
	if rideID == "" {
		return nil, entity.ErrRideIDIsRequired
	}

	return func(yield func(CheckpointOutput, error) bool) {
		var cursor outbound.CheckpointCursor
		for {
			page, err := uc.Repository.Page(ctx, rideID, cursor, uc.PageSize)
			if err != nil {
				yield(CheckpointOutput{}, fmt.Errorf("%w: checkpoints: %w", outbound.ErrUnavailable, err))
				return
			}
			for _, c := range page {
				if !yield(toOutput(c), nil) {
					return
				}
			}
			if len(page) < uc.PageSize {
				return
			}
			cursor = outbound.CursorAfter(page[len(page)-1])
		}
	}, nil
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[CheckpointOutput, error]) ([]CheckpointOutput, error) {
	out := make([]CheckpointOutput, 0)
	for c, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
