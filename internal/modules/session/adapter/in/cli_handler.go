package in

import (
	"context"

	sessiondto "microlearn/internal/modules/session/dto"
	sessionin "microlearn/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, moduleID, goal string) (sessiondto.StartOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{ModuleID: moduleID, Goal: goal})
}

func (h CLIHandler) End(ctx context.Context, sessionID, outcome string, delta int) (sessiondto.EndOutput, error) {
	return h.usecase.End(ctx, sessiondto.EndInput{SessionID: sessionID, Outcome: outcome, DeltaProgress: delta})
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) History(ctx context.Context, moduleID string) ([]sessiondto.SessionOutput, error) {
	return h.usecase.History(ctx, sessiondto.HistoryInput{ModuleID: moduleID})
}
