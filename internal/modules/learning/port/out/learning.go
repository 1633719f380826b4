package out

import (
	"context"

	"microlearn/internal/modules/learning/domain"
)

// CatalogSource supplies the module catalog once at startup.
type CatalogSource interface {
	Load(ctx context.Context) ([]domain.Module, error)
}

// SnapshotStore persists store state between processes. Load returns
// apperrors.ErrNotFound when nothing was saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
}

type ProgressProjector interface {
	Reset(ctx context.Context) error
	UpsertEntry(ctx context.Context, entry domain.LedgerEntry) error
	Close() error
}
