package usecase_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	learningout "microlearn/internal/modules/learning/adapter/out"
	"microlearn/internal/modules/learning/domain"
	"microlearn/internal/modules/learning/dto"
	learningin "microlearn/internal/modules/learning/port/in"
	"microlearn/internal/modules/learning/service"
	"microlearn/internal/modules/learning/usecase"
	"microlearn/internal/platform/clock"
	apperrors "microlearn/internal/platform/errors"
	"microlearn/internal/platform/tx"

	_ "modernc.org/sqlite"
)

type harness struct {
	uc           learningin.Usecase
	svc          *service.LearningService
	snapshotPath string
	dbPath       string
}

func newHarness(t *testing.T, dataDir string, strict bool) harness {
	t.Helper()
	snapshotPath := filepath.Join(dataDir, "progress.yaml")
	dbPath := filepath.Join(dataDir, ".microlearn", "microlearn.db")

	catalog, err := learningout.NewBuiltinCatalog().Load(context.Background())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	store, err := service.NewProgressStore(clock.SystemClock{}, catalog)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	projector, err := learningout.NewSQLiteProgressProjector(dbPath)
	if err != nil {
		t.Fatalf("new projector: %v", err)
	}
	t.Cleanup(func() { _ = projector.Close() })

	svc := service.NewLearningService(store, learningout.NewVaultSnapshotStore(snapshotPath), projector, tx.NewSerial(), zap.NewNop(), strict)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	return harness{uc: usecase.NewInteractor(svc), svc: svc, snapshotPath: snapshotPath, dbPath: dbPath}
}

func TestUpdateCompleteSummaryAndProjection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, t.TempDir(), false)

	out, err := h.uc.UpdateProgress(ctx, dto.UpdateProgressInput{ModuleID: "1", Progress: 45})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.Progress != 45 || out.Completed || !out.CatalogHit || out.Title != "Introduction to CBT" {
		t.Fatalf("unexpected update output: %+v", out)
	}

	done, err := h.uc.CompleteModule(ctx, dto.CompleteModuleInput{ModuleID: "1"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed || done.Progress != 100 || done.CompletedAt == nil {
		t.Fatalf("unexpected complete output: %+v", done)
	}

	summary, err := h.uc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Completed != 2 || summary.Total != 5 || summary.Aggregate != 49 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.CompletedMinutes != 25 {
		t.Fatalf("unexpected completed minutes: %d", summary.CompletedMinutes)
	}

	db, err := sql.Open("sqlite", h.dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var progress int
	var completed bool
	var completedAt sql.NullString
	if err := db.QueryRow(`SELECT progress, completed, completed_at FROM module_progress WHERE module_id = ?`, "1").Scan(&progress, &completed, &completedAt); err != nil {
		t.Fatalf("query projection: %v", err)
	}
	if progress != 100 || !completed || !completedAt.Valid {
		t.Fatalf("unexpected projection row: progress=%d completed=%v completed_at=%v", progress, completed, completedAt)
	}

	raw, err := os.ReadFile(h.snapshotPath)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !strings.Contains(string(raw), "module_id: \"1\"") {
		t.Fatalf("snapshot missing record:\n%s", raw)
	}
}

func TestStateSurvivesRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dataDir := t.TempDir()

	first := newHarness(t, dataDir, false)
	if _, err := first.uc.UpdateProgress(ctx, dto.UpdateProgressInput{ModuleID: "4", Progress: 70}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := first.uc.RecordQuizScore(ctx, dto.RecordQuizScoreInput{ModuleID: "4", Score: 85}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if _, err := first.uc.SetCurrentModule(ctx, "4"); err != nil {
		t.Fatalf("set current: %v", err)
	}

	second := newHarness(t, dataDir, false)
	detail, err := second.uc.GetModule(ctx, "4")
	if err != nil {
		t.Fatalf("get module: %v", err)
	}
	if detail.Progress != 70 || detail.Record == nil || len(detail.Record.QuizScores) != 1 || detail.Record.QuizScores[0] != 85 {
		t.Fatalf("state not restored: %+v", detail)
	}
	current, err := second.uc.CurrentModule(ctx)
	if err != nil || current.ID != "4" {
		t.Fatalf("current module not restored: %+v %v", current, err)
	}
}

func TestUnknownModuleIsReportedOrRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	lenient := newHarness(t, t.TempDir(), false)
	out, err := lenient.uc.UpdateProgress(ctx, dto.UpdateProgressInput{ModuleID: "unknown-id", Progress: 50})
	if err != nil {
		t.Fatalf("lenient update: %v", err)
	}
	if out.CatalogHit || out.Progress != 50 {
		t.Fatalf("unexpected lenient output: %+v", out)
	}
	ledger, err := lenient.uc.ListProgress(ctx)
	if err != nil || len(ledger) != 1 {
		t.Fatalf("expected one ledger record, got %d (%v)", len(ledger), err)
	}

	strict := newHarness(t, t.TempDir(), true)
	if _, err := strict.uc.UpdateProgress(ctx, dto.UpdateProgressInput{ModuleID: "unknown-id", Progress: 50}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in strict mode, got %v", err)
	}
	ledger, _ = strict.uc.ListProgress(ctx)
	if len(ledger) != 0 {
		t.Fatalf("strict rejection must not create a record")
	}
}

func TestListModulesFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, t.TempDir(), false)

	modules, err := h.uc.ListModules(ctx, dto.ModuleFilterInput{Category: "CBT", Difficulty: "all"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(modules) != 2 || modules[0].ID != "1" || modules[1].ID != "4" {
		t.Fatalf("unexpected CBT modules: %+v", modules)
	}
	if modules[0].ContentCount != 3 || modules[0].State != string(domain.StateNotStarted) {
		t.Fatalf("unexpected module output: %+v", modules[0])
	}
}

func TestReindexRebuildsProjection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, t.TempDir(), false)

	for _, id := range []string{"1", "3", "ghost"} {
		if _, err := h.uc.UpdateProgress(ctx, dto.UpdateProgressInput{ModuleID: id, Progress: 20}); err != nil {
			t.Fatalf("update %s: %v", id, err)
		}
	}
	out, err := h.uc.Reindex(ctx, dto.ReindexInput{})
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if out.Records != 3 {
		t.Fatalf("expected 3 records reindexed, got %d", out.Records)
	}

	db, err := sql.Open("sqlite", h.dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var count, misses int
	if err := db.QueryRow(`SELECT COUNT(*), SUM(CASE WHEN in_catalog = 0 THEN 1 ELSE 0 END) FROM module_progress`).Scan(&count, &misses); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 3 || misses != 1 {
		t.Fatalf("unexpected projection: count=%d misses=%d", count, misses)
	}
}

func TestGetModuleNotFound(t *testing.T) {
	t.Parallel()
	h := newHarness(t, t.TempDir(), false)
	if _, err := h.uc.GetModule(context.Background(), "99"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFlushSkipsUnchangedStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, t.TempDir(), false)
	if err := h.svc.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if _, err := os.Stat(h.snapshotPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("flush of an untouched store must not write a snapshot, stat err=%v", err)
	}

	if _, err := h.uc.UpdateProgress(ctx, dto.UpdateProgressInput{ModuleID: "2", Progress: 60}); err != nil {
		t.Fatalf("update: %v", err)
	}
	before, err := os.ReadFile(h.snapshotPath)
	if err != nil {
		t.Fatalf("expected snapshot after mutation: %v", err)
	}
	if err := h.svc.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	after, err := os.ReadFile(h.snapshotPath)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("flush rewrote an up to date snapshot")
	}
}
