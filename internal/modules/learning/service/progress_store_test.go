package service_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"microlearn/internal/modules/learning/domain"
	"microlearn/internal/modules/learning/service"
	apperrors "microlearn/internal/platform/errors"
)

type fakeClock struct {
	mu     sync.Mutex
	values []time.Time
	last   time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return f.last
	}
	f.last = f.values[0]
	f.values = f.values[1:]
	return f.last
}

func ticks(n int) *fakeClock {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	values := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		values = append(values, base.Add(time.Duration(i)*time.Minute))
	}
	return &fakeClock{values: values}
}

func newSeedStore(t *testing.T, clk *fakeClock) *service.ProgressStore {
	t.Helper()
	store, err := service.NewProgressStore(clk, domain.SeedModules())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func mustModule(t *testing.T, store *service.ProgressStore, id string) domain.Module {
	t.Helper()
	m, err := store.Module(id)
	if err != nil {
		t.Fatalf("module %s: %v", id, err)
	}
	return m
}

func mustRecord(t *testing.T, store *service.ProgressStore, id string) domain.ProgressRecord {
	t.Helper()
	r, err := store.Record(id)
	if err != nil {
		t.Fatalf("record %s: %v", id, err)
	}
	return r
}

func TestCompleteModuleSetsModuleAndRecord(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(4))

	entry, err := store.CompleteModule("4")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !entry.CatalogHit {
		t.Fatalf("expected catalog hit")
	}
	m := mustModule(t, store, "4")
	if !m.Completed || m.Progress != 100 {
		t.Fatalf("unexpected module state: %+v", m)
	}
	r := mustRecord(t, store, "4")
	if r.Progress != 100 || r.CompletedAt == nil {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestUpdateProgressMirrorsIntoRecord(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(10))

	for _, p := range []int{0, 1, 37, 99, 100} {
		if _, err := store.UpdateProgress("5", p); err != nil {
			t.Fatalf("update %d: %v", p, err)
		}
		if got := mustModule(t, store, "5").Progress; got != p {
			t.Fatalf("module progress = %d, want %d", got, p)
		}
		r := mustRecord(t, store, "5")
		if r.Progress != p {
			t.Fatalf("record progress = %d, want %d", r.Progress, p)
		}
		if r.TimeSpent != 0 || len(r.QuizScores) != 0 || r.CompletedAt != nil {
			t.Fatalf("new record must start empty: %+v", r)
		}
	}
}

func TestUpdateProgressIsIdempotent(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(4))

	first, err := store.UpdateProgress("3", 60)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	second, err := store.UpdateProgress("3", 60)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if first.Module.Progress != second.Module.Progress || first.Record.Progress != second.Record.Progress {
		t.Fatalf("repeated update changed state: %+v vs %+v", first, second)
	}
	if len(store.Ledger()) != 1 {
		t.Fatalf("expected one record, got %d", len(store.Ledger()))
	}
}

func TestCompleteModuleKeepsFirstCompletionTime(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(4))

	first, err := store.CompleteModule("1")
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}
	second, err := store.CompleteModule("1")
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if !second.Record.CompletedAt.Equal(*first.Record.CompletedAt) {
		t.Fatalf("completion time moved: %s -> %s", first.Record.CompletedAt, second.Record.CompletedAt)
	}
	if !second.Record.UpdatedAt.After(first.Record.UpdatedAt) {
		t.Fatalf("expected updated_at to advance")
	}
}

func TestAggregateProgressOverCatalog(t *testing.T) {
	t.Parallel()
	catalog := []domain.Module{
		{ID: "a", Title: "A", Duration: 5, Difficulty: domain.DifficultyBeginner},
		{ID: "b", Title: "B", Duration: 5, Difficulty: domain.DifficultyBeginner, Progress: 50},
		{ID: "c", Title: "C", Duration: 5, Difficulty: domain.DifficultyBeginner, Progress: 100, Completed: true},
	}
	store, err := service.NewProgressStore(ticks(1), catalog)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	got, err := store.AggregateProgress()
	if err != nil || got != 50 {
		t.Fatalf("aggregate = %v, %v", got, err)
	}
}

func TestAggregateProgressEmptyCatalog(t *testing.T) {
	t.Parallel()
	store, err := service.NewProgressStore(ticks(1), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.AggregateProgress(); !errors.Is(err, apperrors.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
	if _, err := store.Summary(); !errors.Is(err, apperrors.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog from summary, got %v", err)
	}
}

func TestScenarioStartThenComplete(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(4))

	if m := mustModule(t, store, "1"); m.Progress != 0 || m.Completed {
		t.Fatalf("unexpected seed state: %+v", m)
	}
	if _, err := store.UpdateProgress("1", 45); err != nil {
		t.Fatalf("update: %v", err)
	}
	m := mustModule(t, store, "1")
	if m.Progress != 45 || m.Completed || m.State() != domain.StateInProgress {
		t.Fatalf("unexpected state after update: %+v", m)
	}
	if _, err := store.CompleteModule("1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	m = mustModule(t, store, "1")
	r := mustRecord(t, store, "1")
	if m.Progress != 100 || !m.Completed || r.CompletedAt == nil {
		t.Fatalf("unexpected state after completion: %+v %+v", m, r)
	}
}

func TestUnknownModuleCreatesRecordOnly(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(2))
	before := store.Modules(domain.Filter{})

	entry, err := store.UpdateProgress("unknown-id", 50)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if entry.CatalogHit {
		t.Fatalf("expected catalog miss")
	}
	after := store.Modules(domain.Filter{})
	if len(after) != len(before) {
		t.Fatalf("catalog size changed")
	}
	for i := range before {
		if before[i].Progress != after[i].Progress || before[i].Completed != after[i].Completed {
			t.Fatalf("catalog entry %s changed", before[i].ID)
		}
	}
	if r := mustRecord(t, store, "unknown-id"); r.Progress != 50 {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestUpdateProgressRangePolicy(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(4))

	if _, err := store.UpdateProgress("1", -1); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.Record("1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("rejected update must not create a record")
	}
	entry, err := store.UpdateProgress("1", 250)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if entry.Module.Progress != 100 || entry.Record.Progress != 100 || entry.Module.Completed {
		t.Fatalf("expected clamp to 100 without completion: %+v", entry)
	}
	if _, err := store.UpdateProgress("  ", 10); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected blank id to be rejected, got %v", err)
	}
}

func TestUpdateBelowMaxReopensCompletedModule(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(2))

	entry, err := store.UpdateProgress("2", 80)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if entry.Module.Completed {
		t.Fatalf("completed module must reopen below 100")
	}
	if err := entry.Module.Validate(); err != nil {
		t.Fatalf("module invalid after reopen: %v", err)
	}
}

func TestRecordTimeAndQuizScores(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(6))

	if _, err := store.RecordTimeSpent("3", 12); err != nil {
		t.Fatalf("time: %v", err)
	}
	if _, err := store.RecordTimeSpent("3", 8); err != nil {
		t.Fatalf("time: %v", err)
	}
	if _, err := store.RecordQuizScore("3", 90); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	r := mustRecord(t, store, "3")
	if r.TimeSpent != 20 || len(r.QuizScores) != 1 || r.QuizScores[0] != 90 || r.Progress != 45 {
		t.Fatalf("unexpected record: %+v", r)
	}
	if m := mustModule(t, store, "3"); m.Progress != 45 {
		t.Fatalf("auxiliary counters must not touch progress: %+v", m)
	}
	if _, err := store.RecordTimeSpent("3", -1); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected negative minutes rejected, got %v", err)
	}
	if _, err := store.RecordQuizScore("3", 101); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected out of range score rejected, got %v", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(2))
	if _, err := store.RecordQuizScore("1", 70); err != nil {
		t.Fatalf("quiz: %v", err)
	}

	m := mustModule(t, store, "1")
	m.Progress = 99
	m.Content[0].Data["text"] = "mutated"
	r := mustRecord(t, store, "1")
	r.QuizScores[0] = 0

	if got := mustModule(t, store, "1"); got.Progress != 0 || got.Content[0].Data["text"] == "mutated" {
		t.Fatalf("module read leaked internal state")
	}
	if got := mustRecord(t, store, "1"); got.QuizScores[0] != 70 {
		t.Fatalf("record read leaked internal state")
	}
}

func TestCurrentModule(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(1))

	if _, err := store.Current(); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected no current module, got %v", err)
	}
	if _, err := store.SetCurrent("nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected unknown id rejected, got %v", err)
	}
	if _, err := store.SetCurrent("3"); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if m, err := store.Current(); err != nil || m.ID != "3" {
		t.Fatalf("unexpected current: %+v %v", m, err)
	}
	store.ClearCurrent()
	if _, err := store.Current(); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected cleared current module")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(8))
	if _, err := store.UpdateProgress("1", 30); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.CompleteModule("4"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := store.UpdateProgress("ghost", 10); err != nil {
		t.Fatalf("update ghost: %v", err)
	}
	if _, err := store.SetCurrent("4"); err != nil {
		t.Fatalf("set current: %v", err)
	}
	snapshot := store.Snapshot()

	restored := newSeedStore(t, ticks(1))
	if err := restored.Restore(snapshot); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if m := mustModule(t, restored, "4"); !m.Completed || m.Progress != 100 {
		t.Fatalf("completion not restored: %+v", m)
	}
	if m := mustModule(t, restored, "1"); m.Progress != 30 {
		t.Fatalf("progress not restored: %+v", m)
	}
	ledger := restored.Ledger()
	if len(ledger) != 3 || ledger[0].Record.ModuleID != "1" || ledger[2].CatalogHit {
		t.Fatalf("unexpected restored ledger: %+v", ledger)
	}
	if m, err := restored.Current(); err != nil || m.ID != "4" {
		t.Fatalf("current module not restored: %+v %v", m, err)
	}
}

func TestRestoreRejectsInvalidSnapshot(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(1))

	err := store.Restore(domain.Snapshot{Modules: []domain.ModuleState{{ModuleID: "1", Progress: 40, Completed: true}}})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if m := mustModule(t, store, "1"); m.Completed {
		t.Fatalf("invalid snapshot must not be applied")
	}
}

func TestRestoreRejectsRecordOutOfStepWithModule(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, ticks(1))

	record := domain.NewRecord("1")
	record.Progress = 70
	err := store.Restore(domain.Snapshot{
		Modules: []domain.ModuleState{{ModuleID: "1", Progress: 40}},
		Records: []domain.ProgressRecord{record},
	})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if m := mustModule(t, store, "1"); m.Progress != 0 {
		t.Fatalf("rejected snapshot must not be applied: %+v", m)
	}

	// Without a module state the record is checked against the catalog value.
	stale := domain.NewRecord("3")
	if err := store.Restore(domain.Snapshot{Records: []domain.ProgressRecord{stale}}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected record at 0 against catalog progress 45 to be rejected, got %v", err)
	}

	ghost := domain.NewRecord("ghost")
	ghost.Progress = 70
	record.Progress = 40
	if err := store.Restore(domain.Snapshot{
		Modules: []domain.ModuleState{{ModuleID: "1", Progress: 40}},
		Records: []domain.ProgressRecord{record, ghost},
	}); err != nil {
		t.Fatalf("consistent snapshot rejected: %v", err)
	}
}

func TestNewProgressStoreRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()
	seed := domain.SeedModules()
	_, err := service.NewProgressStore(ticks(1), append(seed, seed[0]))
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected duplicate id rejection, got %v", err)
	}
}

func TestConcurrentMutationsKeepCatalogAndLedgerInStep(t *testing.T) {
	t.Parallel()
	store := newSeedStore(t, &fakeClock{})

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if worker%2 == 0 {
					_, _ = store.UpdateProgress("1", (worker*7+i)%100)
				} else {
					_, _ = store.CompleteModule("1")
				}
				m, err := store.Module("1")
				if err != nil {
					t.Errorf("module: %v", err)
					return
				}
				if m.Completed && m.Progress != 100 {
					t.Errorf("observed completed module at %d", m.Progress)
					return
				}
			}
		}(worker)
	}
	wg.Wait()

	for _, entry := range store.Ledger() {
		if entry.Module.Progress != entry.Record.Progress {
			t.Fatalf("catalog and ledger diverged: %d vs %d", entry.Module.Progress, entry.Record.Progress)
		}
	}
}
