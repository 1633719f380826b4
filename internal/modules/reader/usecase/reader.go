package usecase

import (
	"context"

	"microlearn/internal/modules/reader/dto"
	readerin "microlearn/internal/modules/reader/port/in"
	"microlearn/internal/modules/reader/service"
)

type Interactor struct {
	svc *service.ReaderService
}

func NewInteractor(svc *service.ReaderService) readerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (dto.OpenResult, error) {
	opened, err := i.svc.Open(ctx, input.ModuleID, input.Index, input.LaunchExternal)
	if err != nil {
		return dto.OpenResult{}, err
	}
	return dto.OpenResult{
		ModuleID:         opened.Module.ID,
		Title:            opened.Module.Title,
		Index:            opened.Item.Index,
		Total:            len(opened.Module.Items),
		ItemType:         opened.Item.Type,
		Content:          opened.Content,
		ExternalTarget:   opened.Item.URL,
		ExternalLaunched: opened.Launched,
		Progress:         opened.Module.Progress,
		Completed:        opened.Module.Completed,
	}, nil
}

func (i *Interactor) Advance(ctx context.Context, input dto.AdvanceInput) (dto.AdvanceResult, error) {
	advanced, err := i.svc.Advance(ctx, input.ModuleID, input.Index)
	if err != nil {
		return dto.AdvanceResult{}, err
	}
	return dto.AdvanceResult{
		ModuleID:  input.ModuleID,
		Progress:  advanced.Progress,
		Completed: advanced.Completed,
		NextIndex: input.Index + 1,
		Finished:  advanced.Finished,
	}, nil
}
