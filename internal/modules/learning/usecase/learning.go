package usecase

import (
	"context"
	"errors"

	"microlearn/internal/modules/learning/domain"
	"microlearn/internal/modules/learning/dto"
	learningin "microlearn/internal/modules/learning/port/in"
	"microlearn/internal/modules/learning/service"
	apperrors "microlearn/internal/platform/errors"
)

type Interactor struct {
	svc *service.LearningService
}

func NewInteractor(svc *service.LearningService) learningin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) ListModules(ctx context.Context, input dto.ModuleFilterInput) ([]dto.ModuleOutput, error) {
	modules := i.svc.ListModules(ctx, domain.Filter{Query: input.Query, Category: input.Category, Difficulty: input.Difficulty})
	out := make([]dto.ModuleOutput, 0, len(modules))
	for _, m := range modules {
		out = append(out, toModuleOutput(m))
	}
	return out, nil
}

func (i *Interactor) GetModule(ctx context.Context, id string) (dto.ModuleDetailOutput, error) {
	m, err := i.svc.GetModule(ctx, id)
	if err != nil {
		return dto.ModuleDetailOutput{}, err
	}
	out := dto.ModuleDetailOutput{ModuleOutput: toModuleOutput(m), Content: make([]dto.ContentItemOutput, 0, len(m.Content))}
	for _, item := range m.Content {
		out.Content = append(out.Content, dto.ContentItemOutput{Type: string(item.Type), Data: item.Data})
	}
	record, err := i.svc.GetRecord(ctx, id)
	switch {
	case err == nil:
		progress := toProgressOutput(domain.LedgerEntry{Module: m, Record: record, CatalogHit: true})
		out.Record = &progress
	case !errors.Is(err, apperrors.ErrNotFound):
		return dto.ModuleDetailOutput{}, err
	}
	return out, nil
}

func (i *Interactor) UpdateProgress(ctx context.Context, input dto.UpdateProgressInput) (dto.ProgressOutput, error) {
	entry, err := i.svc.UpdateProgress(ctx, input.ModuleID, input.Progress)
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	return toProgressOutput(entry), nil
}

func (i *Interactor) CompleteModule(ctx context.Context, input dto.CompleteModuleInput) (dto.ProgressOutput, error) {
	entry, err := i.svc.CompleteModule(ctx, input.ModuleID)
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	return toProgressOutput(entry), nil
}

func (i *Interactor) RecordTimeSpent(ctx context.Context, input dto.RecordTimeSpentInput) (dto.ProgressOutput, error) {
	entry, err := i.svc.RecordTimeSpent(ctx, input.ModuleID, input.Minutes)
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	return toProgressOutput(entry), nil
}

func (i *Interactor) RecordQuizScore(ctx context.Context, input dto.RecordQuizScoreInput) (dto.ProgressOutput, error) {
	entry, err := i.svc.RecordQuizScore(ctx, input.ModuleID, input.Score)
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	return toProgressOutput(entry), nil
}

func (i *Interactor) ListProgress(ctx context.Context) ([]dto.ProgressOutput, error) {
	entries := i.svc.Ledger(ctx)
	out := make([]dto.ProgressOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toProgressOutput(entry))
	}
	return out, nil
}

func (i *Interactor) AggregateProgress(ctx context.Context) (float64, error) {
	return i.svc.AggregateProgress(ctx)
}

func (i *Interactor) Summary(ctx context.Context) (dto.SummaryOutput, error) {
	summary, err := i.svc.Summary(ctx)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	out := dto.SummaryOutput{
		Completed:        summary.Completed,
		Total:            summary.Total,
		Aggregate:        summary.Aggregate,
		CompletedMinutes: summary.CompletedMinutes,
		Categories:       make([]dto.CategoryOutput, 0, len(summary.Categories)),
		Recent:           make([]dto.ModuleOutput, 0, len(summary.Recent)),
	}
	for _, stat := range summary.Categories {
		out.Categories = append(out.Categories, dto.CategoryOutput{Category: stat.Category, Completed: stat.Completed, Total: stat.Total, Percent: stat.Percent})
	}
	for _, m := range summary.Recent {
		out.Recent = append(out.Recent, toModuleOutput(m))
	}
	return out, nil
}

func (i *Interactor) SetCurrentModule(ctx context.Context, id string) (dto.ModuleOutput, error) {
	m, err := i.svc.SetCurrentModule(ctx, id)
	if err != nil {
		return dto.ModuleOutput{}, err
	}
	return toModuleOutput(m), nil
}

func (i *Interactor) CurrentModule(ctx context.Context) (dto.ModuleOutput, error) {
	m, err := i.svc.CurrentModule(ctx)
	if err != nil {
		return dto.ModuleOutput{}, err
	}
	return toModuleOutput(m), nil
}

func (i *Interactor) ClearCurrentModule(ctx context.Context) error {
	return i.svc.ClearCurrentModule(ctx)
}

func (i *Interactor) Reindex(ctx context.Context, _ dto.ReindexInput) (dto.ReindexOutput, error) {
	count, err := i.svc.Reindex(ctx)
	if err != nil {
		return dto.ReindexOutput{}, err
	}
	return dto.ReindexOutput{Records: count}, nil
}

func toModuleOutput(m domain.Module) dto.ModuleOutput {
	return dto.ModuleOutput{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		Category:     m.Category,
		Duration:     m.Duration,
		Difficulty:   string(m.Difficulty),
		Completed:    m.Completed,
		Progress:     m.Progress,
		State:        string(m.State()),
		ContentCount: len(m.Content),
	}
}

func toProgressOutput(entry domain.LedgerEntry) dto.ProgressOutput {
	completed := entry.Module.Completed
	if !entry.CatalogHit {
		completed = entry.Record.CompletedAt != nil && entry.Record.Progress == domain.MaxProgress
	}
	return dto.ProgressOutput{
		ModuleID:    entry.Record.ModuleID,
		Title:       entry.Module.Title,
		Progress:    entry.Record.Progress,
		Completed:   completed,
		CompletedAt: entry.Record.CompletedAt,
		TimeSpent:   entry.Record.TimeSpent,
		QuizScores:  entry.Record.QuizScores,
		CatalogHit:  entry.CatalogHit,
		UpdatedAt:   entry.Record.UpdatedAt,
	}
}
