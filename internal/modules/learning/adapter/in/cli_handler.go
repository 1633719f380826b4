package in

import (
	"context"

	"microlearn/internal/modules/learning/dto"
	learningin "microlearn/internal/modules/learning/port/in"
)

type CLIHandler struct {
	usecase learningin.Usecase
}

func NewCLIHandler(usecase learningin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ListModules(ctx context.Context, query, category, difficulty string) ([]dto.ModuleOutput, error) {
	return h.usecase.ListModules(ctx, dto.ModuleFilterInput{Query: query, Category: category, Difficulty: difficulty})
}

func (h CLIHandler) GetModule(ctx context.Context, id string) (dto.ModuleDetailOutput, error) {
	return h.usecase.GetModule(ctx, id)
}

func (h CLIHandler) UpdateProgress(ctx context.Context, moduleID string, progress int) (dto.ProgressOutput, error) {
	return h.usecase.UpdateProgress(ctx, dto.UpdateProgressInput{ModuleID: moduleID, Progress: progress})
}

func (h CLIHandler) CompleteModule(ctx context.Context, moduleID string) (dto.ProgressOutput, error) {
	return h.usecase.CompleteModule(ctx, dto.CompleteModuleInput{ModuleID: moduleID})
}

func (h CLIHandler) RecordQuizScore(ctx context.Context, moduleID string, score int) (dto.ProgressOutput, error) {
	return h.usecase.RecordQuizScore(ctx, dto.RecordQuizScoreInput{ModuleID: moduleID, Score: score})
}

func (h CLIHandler) ListProgress(ctx context.Context) ([]dto.ProgressOutput, error) {
	return h.usecase.ListProgress(ctx)
}

func (h CLIHandler) Summary(ctx context.Context) (dto.SummaryOutput, error) {
	return h.usecase.Summary(ctx)
}

func (h CLIHandler) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx, dto.ReindexInput{})
}

func (h CLIHandler) CurrentModule(ctx context.Context) (dto.ModuleOutput, error) {
	return h.usecase.CurrentModule(ctx)
}

func (h CLIHandler) SetCurrentModule(ctx context.Context, id string) (dto.ModuleOutput, error) {
	return h.usecase.SetCurrentModule(ctx, id)
}

func (h CLIHandler) ClearCurrentModule(ctx context.Context) error {
	return h.usecase.ClearCurrentModule(ctx)
}

func (h CLIHandler) AggregateProgress(ctx context.Context) (float64, error) {
	return h.usecase.AggregateProgress(ctx)
}
