package in

import (
	"context"

	"microlearn/internal/modules/learning/dto"
)

type Usecase interface {
	ListModules(ctx context.Context, input dto.ModuleFilterInput) ([]dto.ModuleOutput, error)
	GetModule(ctx context.Context, id string) (dto.ModuleDetailOutput, error)
	UpdateProgress(ctx context.Context, input dto.UpdateProgressInput) (dto.ProgressOutput, error)
	CompleteModule(ctx context.Context, input dto.CompleteModuleInput) (dto.ProgressOutput, error)
	RecordTimeSpent(ctx context.Context, input dto.RecordTimeSpentInput) (dto.ProgressOutput, error)
	RecordQuizScore(ctx context.Context, input dto.RecordQuizScoreInput) (dto.ProgressOutput, error)
	ListProgress(ctx context.Context) ([]dto.ProgressOutput, error)
	AggregateProgress(ctx context.Context) (float64, error)
	Summary(ctx context.Context) (dto.SummaryOutput, error)
	SetCurrentModule(ctx context.Context, id string) (dto.ModuleOutput, error)
	CurrentModule(ctx context.Context) (dto.ModuleOutput, error)
	ClearCurrentModule(ctx context.Context) error
	Reindex(ctx context.Context, input dto.ReindexInput) (dto.ReindexOutput, error)
}
