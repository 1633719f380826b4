package domain

import (
	"fmt"
	"time"
)

const SnapshotSchemaVersion = 1

// ModuleState is the mutable part of a catalog entry.
type ModuleState struct {
	ModuleID  string
	Progress  int
	Completed bool
}

// Snapshot is the persisted form of catalog state plus the ledger.
type Snapshot struct {
	Modules         []ModuleState
	Records         []ProgressRecord
	CurrentModuleID string
	SavedAt         time.Time
}

// LedgerEntry is the outcome of one mutation: the affected record and, on a
// catalog hit, the module it mirrors.
type LedgerEntry struct {
	Module     Module
	Record     ProgressRecord
	CatalogHit bool
}

func (s ModuleState) Validate() error {
	if s.Progress < 0 || s.Progress > MaxProgress {
		return fmt.Errorf("module %s: progress %d out of range", s.ModuleID, s.Progress)
	}
	if s.Completed && s.Progress != MaxProgress {
		return fmt.Errorf("module %s: completed module must have progress %d", s.ModuleID, MaxProgress)
	}
	return nil
}

func (r ProgressRecord) Validate() error {
	if r.ModuleID == "" {
		return fmt.Errorf("record module id is required")
	}
	if r.Progress < 0 || r.Progress > MaxProgress {
		return fmt.Errorf("record %s: progress %d out of range", r.ModuleID, r.Progress)
	}
	if r.TimeSpent < 0 {
		return fmt.Errorf("record %s: negative time spent", r.ModuleID)
	}
	return nil
}
