package service

import (
	"fmt"
	"strings"
	"sync"

	"microlearn/internal/modules/learning/domain"
	"microlearn/internal/platform/clock"
	apperrors "microlearn/internal/platform/errors"
)

// ProgressStore holds the module catalog and the progress ledger. Every
// mutation updates both under one lock, and reads return copies.
type ProgressStore struct {
	clock clock.Clock

	mu      sync.Mutex
	modules []domain.Module
	index   map[string]int
	records map[string]domain.ProgressRecord
	order   []string
	current string
	version uint64
}

func NewProgressStore(clock clock.Clock, catalog []domain.Module) (*ProgressStore, error) {
	s := &ProgressStore{
		clock:   clock,
		modules: make([]domain.Module, 0, len(catalog)),
		index:   make(map[string]int, len(catalog)),
		records: map[string]domain.ProgressRecord{},
	}
	for _, m := range catalog {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		if _, exists := s.index[m.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate module id %s", apperrors.ErrInvalidInput, m.ID)
		}
		s.index[m.ID] = len(s.modules)
		s.modules = append(s.modules, m.Clone())
	}
	return s, nil
}

// UpdateProgress replaces the module's progress and mirrors it into the
// ledger. Values above 100 are clamped; negative values are rejected. A
// completed module set below 100 is reopened.
func (s *ProgressStore) UpdateProgress(moduleID string, progress int) (domain.LedgerEntry, error) {
	moduleID, err := normalizeID(moduleID)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	if progress < 0 {
		return domain.LedgerEntry{}, fmt.Errorf("%w: progress must not be negative", apperrors.ErrInvalidInput)
	}
	if progress > domain.MaxProgress {
		progress = domain.MaxProgress
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := domain.LedgerEntry{}
	if idx, ok := s.index[moduleID]; ok {
		m := &s.modules[idx]
		m.Progress = progress
		if m.Completed && progress < domain.MaxProgress {
			m.Completed = false
		}
		entry.Module = m.Clone()
		entry.CatalogHit = true
	}
	record := s.recordLocked(moduleID)
	record.Progress = progress
	record.UpdatedAt = s.clock.Now()
	s.records[moduleID] = record
	s.version++
	entry.Record = record.Clone()
	return entry, nil
}

// CompleteModule marks the module completed at full progress. The completion
// time is recorded on the first completion only.
func (s *ProgressStore) CompleteModule(moduleID string) (domain.LedgerEntry, error) {
	moduleID, err := normalizeID(moduleID)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	entry := domain.LedgerEntry{}
	if idx, ok := s.index[moduleID]; ok {
		m := &s.modules[idx]
		m.Completed = true
		m.Progress = domain.MaxProgress
		entry.Module = m.Clone()
		entry.CatalogHit = true
	}
	record := s.recordLocked(moduleID)
	record.Progress = domain.MaxProgress
	if record.CompletedAt == nil {
		at := now
		record.CompletedAt = &at
	}
	record.UpdatedAt = now
	s.records[moduleID] = record
	s.version++
	entry.Record = record.Clone()
	return entry, nil
}

func (s *ProgressStore) RecordTimeSpent(moduleID string, minutes int) (domain.LedgerEntry, error) {
	if minutes < 0 {
		return domain.LedgerEntry{}, fmt.Errorf("%w: minutes must not be negative", apperrors.ErrInvalidInput)
	}
	return s.mutateRecord(moduleID, func(record *domain.ProgressRecord) {
		record.TimeSpent += minutes
	})
}

func (s *ProgressStore) RecordQuizScore(moduleID string, score int) (domain.LedgerEntry, error) {
	if score < 0 || score > 100 {
		return domain.LedgerEntry{}, fmt.Errorf("%w: quiz score must be within 0..100", apperrors.ErrInvalidInput)
	}
	return s.mutateRecord(moduleID, func(record *domain.ProgressRecord) {
		record.QuizScores = append(record.QuizScores, score)
	})
}

func (s *ProgressStore) mutateRecord(moduleID string, apply func(*domain.ProgressRecord)) (domain.LedgerEntry, error) {
	moduleID, err := normalizeID(moduleID)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := domain.LedgerEntry{}
	if idx, ok := s.index[moduleID]; ok {
		entry.Module = s.modules[idx].Clone()
		entry.CatalogHit = true
	}
	record := s.recordLocked(moduleID)
	apply(&record)
	record.UpdatedAt = s.clock.Now()
	s.records[moduleID] = record
	s.version++
	entry.Record = record.Clone()
	return entry, nil
}

// recordLocked returns the existing record or a fresh one, registering the id
// in ledger order. A fresh record for a catalog module starts at its progress.
func (s *ProgressStore) recordLocked(moduleID string) domain.ProgressRecord {
	if record, ok := s.records[moduleID]; ok {
		return record
	}
	s.order = append(s.order, moduleID)
	record := domain.NewRecord(moduleID)
	if idx, ok := s.index[moduleID]; ok {
		record.Progress = s.modules[idx].Progress
	}
	return record
}

func (s *ProgressStore) Has(moduleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[strings.TrimSpace(moduleID)]
	return ok
}

func (s *ProgressStore) Modules(filter domain.Filter) []domain.Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Module, 0, len(s.modules))
	for _, m := range s.modules {
		if filter.Matches(m) {
			out = append(out, m.Clone())
		}
	}
	return out
}

func (s *ProgressStore) Module(moduleID string) (domain.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[strings.TrimSpace(moduleID)]
	if !ok {
		return domain.Module{}, fmt.Errorf("module %s: %w", moduleID, apperrors.ErrNotFound)
	}
	return s.modules[idx].Clone(), nil
}

func (s *ProgressStore) Record(moduleID string) (domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[strings.TrimSpace(moduleID)]
	if !ok {
		return domain.ProgressRecord{}, fmt.Errorf("record %s: %w", moduleID, apperrors.ErrNotFound)
	}
	return record.Clone(), nil
}

// Ledger lists records in the order modules were first touched.
func (s *ProgressStore) Ledger() []domain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LedgerEntry, 0, len(s.order))
	for _, moduleID := range s.order {
		entry := domain.LedgerEntry{Record: s.records[moduleID].Clone()}
		if idx, ok := s.index[moduleID]; ok {
			entry.Module = s.modules[idx].Clone()
			entry.CatalogHit = true
		}
		out = append(out, entry)
	}
	return out
}

func (s *ProgressStore) AggregateProgress() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := domain.AggregateProgress(s.modules)
	if !ok {
		return 0, apperrors.ErrEmptyCatalog
	}
	return value, nil
}

func (s *ProgressStore) Summary() (domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := domain.Summarize(s.modules)
	if !ok {
		return domain.Summary{}, apperrors.ErrEmptyCatalog
	}
	return summary, nil
}

func (s *ProgressStore) SetCurrent(moduleID string) (domain.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moduleID = strings.TrimSpace(moduleID)
	idx, ok := s.index[moduleID]
	if !ok {
		return domain.Module{}, fmt.Errorf("module %s: %w", moduleID, apperrors.ErrNotFound)
	}
	if s.current != moduleID {
		s.current = moduleID
		s.version++
	}
	return s.modules[idx].Clone(), nil
}

func (s *ProgressStore) Current() (domain.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[s.current]
	if s.current == "" || !ok {
		return domain.Module{}, fmt.Errorf("current module: %w", apperrors.ErrNotFound)
	}
	return s.modules[idx].Clone(), nil
}

func (s *ProgressStore) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != "" {
		s.current = ""
		s.version++
	}
}

// Version counts state changes. It only grows.
func (s *ProgressStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *ProgressStore) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := domain.Snapshot{
		Modules:         make([]domain.ModuleState, 0, len(s.modules)),
		Records:         make([]domain.ProgressRecord, 0, len(s.order)),
		CurrentModuleID: s.current,
		SavedAt:         s.clock.Now(),
	}
	for _, m := range s.modules {
		snapshot.Modules = append(snapshot.Modules, domain.ModuleState{ModuleID: m.ID, Progress: m.Progress, Completed: m.Completed})
	}
	for _, moduleID := range s.order {
		snapshot.Records = append(snapshot.Records, s.records[moduleID].Clone())
	}
	return snapshot
}

// Restore overlays a snapshot on the catalog. Module states for ids the
// catalog no longer has are ignored; their records are kept. The snapshot is
// validated as a whole before anything changes, including that every record
// of a catalog module carries that module's progress.
func (s *ProgressStore) Restore(snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress := make(map[string]int, len(s.modules))
	for _, m := range s.modules {
		progress[m.ID] = m.Progress
	}
	for _, state := range snapshot.Modules {
		if err := state.Validate(); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		if _, ok := progress[state.ModuleID]; ok {
			progress[state.ModuleID] = state.Progress
		}
	}
	seen := map[string]bool{}
	for _, record := range snapshot.Records {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		if seen[record.ModuleID] {
			return fmt.Errorf("%w: duplicate record %s", apperrors.ErrInvalidInput, record.ModuleID)
		}
		seen[record.ModuleID] = true
		if want, ok := progress[record.ModuleID]; ok && record.Progress != want {
			return fmt.Errorf("%w: record %s progress %d differs from module progress %d", apperrors.ErrInvalidInput, record.ModuleID, record.Progress, want)
		}
	}

	for _, state := range snapshot.Modules {
		idx, ok := s.index[state.ModuleID]
		if !ok {
			continue
		}
		s.modules[idx].Progress = state.Progress
		s.modules[idx].Completed = state.Completed
	}
	s.records = make(map[string]domain.ProgressRecord, len(snapshot.Records))
	s.order = make([]string, 0, len(snapshot.Records))
	for _, record := range snapshot.Records {
		record = record.Clone()
		if record.QuizScores == nil {
			record.QuizScores = []int{}
		}
		s.records[record.ModuleID] = record
		s.order = append(s.order, record.ModuleID)
	}
	s.current = ""
	if _, ok := s.index[snapshot.CurrentModuleID]; ok {
		s.current = snapshot.CurrentModuleID
	}
	s.version++
	return nil
}

func normalizeID(moduleID string) (string, error) {
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return "", fmt.Errorf("%w: module id is required", apperrors.ErrInvalidInput)
	}
	return moduleID, nil
}
