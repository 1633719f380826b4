package out

import (
	"context"

	"microlearn/internal/modules/learning/dto"
	learningin "microlearn/internal/modules/learning/port/in"
	readerout "microlearn/internal/modules/reader/port/out"
)

type LearningProgressAdapter struct {
	learning learningin.Usecase
}

func NewLearningProgressAdapter(learning learningin.Usecase) readerout.ProgressPort {
	return &LearningProgressAdapter{learning: learning}
}

func (a *LearningProgressAdapter) Update(ctx context.Context, moduleID string, progress int) error {
	_, err := a.learning.UpdateProgress(ctx, dto.UpdateProgressInput{ModuleID: moduleID, Progress: progress})
	return err
}

func (a *LearningProgressAdapter) Complete(ctx context.Context, moduleID string) error {
	_, err := a.learning.CompleteModule(ctx, dto.CompleteModuleInput{ModuleID: moduleID})
	return err
}

func (a *LearningProgressAdapter) MarkCurrent(ctx context.Context, moduleID string) error {
	_, err := a.learning.SetCurrentModule(ctx, moduleID)
	return err
}
