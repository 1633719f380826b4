package in

import (
	"context"

	"microlearn/internal/modules/reader/dto"
	readerin "microlearn/internal/modules/reader/port/in"
)

// TUIHandler never launches external targets on open; the view asks for it explicitly.
type TUIHandler struct {
	usecase readerin.Usecase
}

func NewTUIHandler(usecase readerin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Open(ctx context.Context, moduleID string, index int) (dto.OpenResult, error) {
	return h.usecase.Open(ctx, dto.OpenInput{ModuleID: moduleID, Index: index})
}

func (h TUIHandler) Launch(ctx context.Context, moduleID string, index int) (dto.OpenResult, error) {
	return h.usecase.Open(ctx, dto.OpenInput{ModuleID: moduleID, Index: index, LaunchExternal: true})
}

func (h TUIHandler) Advance(ctx context.Context, moduleID string, index int) (dto.AdvanceResult, error) {
	return h.usecase.Advance(ctx, dto.AdvanceInput{ModuleID: moduleID, Index: index})
}
