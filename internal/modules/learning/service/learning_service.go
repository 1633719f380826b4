package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"microlearn/internal/modules/learning/domain"
	learningout "microlearn/internal/modules/learning/port/out"
	apperrors "microlearn/internal/platform/errors"
	"microlearn/internal/platform/tx"
)

// LearningService runs store mutations and forwards their results to the
// snapshot store and the projector. Writes go through one tx boundary so the
// adapters see them in mutation order.
type LearningService struct {
	store     *ProgressStore
	snapshots learningout.SnapshotStore
	projector learningout.ProgressProjector
	writes    tx.Manager
	log       *zap.Logger
	strict    bool
	// saved is the store version last written to the snapshot store.
	saved atomic.Uint64
}

func NewLearningService(store *ProgressStore, snapshots learningout.SnapshotStore, projector learningout.ProgressProjector, writes tx.Manager, log *zap.Logger, strict bool) *LearningService {
	if writes == nil {
		writes = tx.NewSerial()
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &LearningService{store: store, snapshots: snapshots, projector: projector, writes: writes, log: log, strict: strict}
	s.saved.Store(store.Version())
	return s
}

// Load restores the last saved snapshot, if any. Without one the store starts
// from the catalog, so the projection is rebuilt to drop rows of earlier runs.
func (s *LearningService) Load(ctx context.Context) error {
	restored, err := s.restore(ctx)
	if err != nil {
		return err
	}
	if restored || s.projector == nil {
		return nil
	}
	if _, err := s.Reindex(ctx); err != nil {
		return fmt.Errorf("reset projection: %w", err)
	}
	return nil
}

func (s *LearningService) restore(ctx context.Context) (bool, error) {
	if s.snapshots == nil {
		return false, nil
	}
	snapshot, err := s.snapshots.Load(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.store.Restore(snapshot); err != nil {
		return false, fmt.Errorf("restore snapshot: %w", err)
	}
	s.saved.Store(s.store.Version())
	s.log.Debug("snapshot restored", zap.Int("records", len(snapshot.Records)))
	return true, nil
}

func (s *LearningService) UpdateProgress(ctx context.Context, moduleID string, progress int) (domain.LedgerEntry, error) {
	return s.mutate(ctx, moduleID, "progress updated", func() (domain.LedgerEntry, error) {
		return s.store.UpdateProgress(moduleID, progress)
	})
}

func (s *LearningService) CompleteModule(ctx context.Context, moduleID string) (domain.LedgerEntry, error) {
	return s.mutate(ctx, moduleID, "module completed", func() (domain.LedgerEntry, error) {
		return s.store.CompleteModule(moduleID)
	})
}

func (s *LearningService) RecordTimeSpent(ctx context.Context, moduleID string, minutes int) (domain.LedgerEntry, error) {
	return s.mutate(ctx, moduleID, "time recorded", func() (domain.LedgerEntry, error) {
		return s.store.RecordTimeSpent(moduleID, minutes)
	})
}

func (s *LearningService) RecordQuizScore(ctx context.Context, moduleID string, score int) (domain.LedgerEntry, error) {
	return s.mutate(ctx, moduleID, "quiz score recorded", func() (domain.LedgerEntry, error) {
		return s.store.RecordQuizScore(moduleID, score)
	})
}

// mutate applies op and then projects and snapshots the result. The
// in-memory change stays applied when an adapter fails afterwards.
func (s *LearningService) mutate(ctx context.Context, moduleID, event string, op func() (domain.LedgerEntry, error)) (domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := s.writes.Within(ctx, func(ctx context.Context) error {
		if s.strict && !s.store.Has(moduleID) {
			return fmt.Errorf("module %s: %w", moduleID, apperrors.ErrNotFound)
		}
		var err error
		entry, err = op()
		if err != nil {
			return err
		}
		s.log.Debug(event,
			zap.String("module_id", entry.Record.ModuleID),
			zap.Int("progress", entry.Record.Progress),
			zap.Bool("catalog_hit", entry.CatalogHit),
		)
		if !entry.CatalogHit {
			s.log.Warn("module id not in catalog", zap.String("module_id", entry.Record.ModuleID))
		}
		if s.projector != nil {
			if err := s.projector.UpsertEntry(ctx, entry); err != nil {
				return err
			}
		}
		return s.saveSnapshot(ctx)
	})
	return entry, err
}

func (s *LearningService) saveSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	version := s.store.Version()
	if err := s.snapshots.Save(ctx, s.store.Snapshot()); err != nil {
		return err
	}
	s.saved.Store(version)
	return nil
}

func (s *LearningService) ListModules(_ context.Context, filter domain.Filter) []domain.Module {
	return s.store.Modules(filter)
}

func (s *LearningService) GetModule(_ context.Context, moduleID string) (domain.Module, error) {
	return s.store.Module(moduleID)
}

func (s *LearningService) GetRecord(_ context.Context, moduleID string) (domain.ProgressRecord, error) {
	return s.store.Record(moduleID)
}

func (s *LearningService) Ledger(_ context.Context) []domain.LedgerEntry {
	return s.store.Ledger()
}

func (s *LearningService) AggregateProgress(_ context.Context) (float64, error) {
	return s.store.AggregateProgress()
}

func (s *LearningService) Summary(_ context.Context) (domain.Summary, error) {
	return s.store.Summary()
}

func (s *LearningService) SetCurrentModule(ctx context.Context, moduleID string) (domain.Module, error) {
	var module domain.Module
	err := s.writes.Within(ctx, func(ctx context.Context) error {
		var err error
		module, err = s.store.SetCurrent(moduleID)
		if err != nil {
			return err
		}
		return s.saveSnapshot(ctx)
	})
	return module, err
}

func (s *LearningService) CurrentModule(_ context.Context) (domain.Module, error) {
	return s.store.Current()
}

func (s *LearningService) ClearCurrentModule(ctx context.Context) error {
	return s.writes.Within(ctx, func(ctx context.Context) error {
		s.store.ClearCurrent()
		return s.saveSnapshot(ctx)
	})
}

// Reindex rebuilds the projection from the ledger.
func (s *LearningService) Reindex(ctx context.Context) (int, error) {
	if s.projector == nil {
		return 0, nil
	}
	count := 0
	err := s.writes.Within(ctx, func(ctx context.Context) error {
		if err := s.projector.Reset(ctx); err != nil {
			return err
		}
		for _, entry := range s.store.Ledger() {
			if err := s.projector.UpsertEntry(ctx, entry); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	s.log.Info("projection rebuilt", zap.Int("records", count))
	return count, nil
}

// Flush writes the snapshot when the store changed since the last save. It is
// called on shutdown.
func (s *LearningService) Flush(ctx context.Context) error {
	return s.writes.Within(ctx, func(ctx context.Context) error {
		if s.store.Version() == s.saved.Load() {
			return nil
		}
		return s.saveSnapshot(ctx)
	})
}
