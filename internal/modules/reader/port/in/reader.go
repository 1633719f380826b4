package in

import (
	"context"

	"microlearn/internal/modules/reader/dto"
)

type Usecase interface {
	Open(ctx context.Context, input dto.OpenInput) (dto.OpenResult, error)
	Advance(ctx context.Context, input dto.AdvanceInput) (dto.AdvanceResult, error)
}
