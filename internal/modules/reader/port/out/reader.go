package out

import (
	"context"

	"microlearn/internal/modules/reader/domain"
)

type ProgressPort interface {
	Update(ctx context.Context, moduleID string, progress int) error
	Complete(ctx context.Context, moduleID string) error
	MarkCurrent(ctx context.Context, moduleID string) error
}

type ModuleResolver interface {
	Resolve(ctx context.Context, moduleID string) (domain.ModuleRef, error)
}

type ExternalLauncher interface {
	Open(ctx context.Context, target string) error
}
