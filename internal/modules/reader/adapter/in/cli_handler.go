package in

import (
	"context"

	"microlearn/internal/modules/reader/dto"
	readerin "microlearn/internal/modules/reader/port/in"
)

type CLIHandler struct {
	usecase readerin.Usecase
}

func NewCLIHandler(usecase readerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Open(ctx context.Context, moduleID string, index int, launchExternal bool) (dto.OpenResult, error) {
	return h.usecase.Open(ctx, dto.OpenInput{ModuleID: moduleID, Index: index, LaunchExternal: launchExternal})
}

func (h CLIHandler) Advance(ctx context.Context, moduleID string, index int) (dto.AdvanceResult, error) {
	return h.usecase.Advance(ctx, dto.AdvanceInput{ModuleID: moduleID, Index: index})
}
