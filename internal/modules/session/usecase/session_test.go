package usecase_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	learningdto "microlearn/internal/modules/learning/dto"
	sessionout "microlearn/internal/modules/session/adapter/out"
	sessiondto "microlearn/internal/modules/session/dto"
	"microlearn/internal/modules/session/service"
	"microlearn/internal/modules/session/usecase"
	apperrors "microlearn/internal/platform/errors"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

type fakeLearning struct {
	module    learningdto.ModuleDetailOutput
	updated   int
	updatedID string
	minutes   int
}

func (f *fakeLearning) ListModules(context.Context, learningdto.ModuleFilterInput) ([]learningdto.ModuleOutput, error) {
	return nil, nil
}
func (f *fakeLearning) GetModule(_ context.Context, id string) (learningdto.ModuleDetailOutput, error) {
	if id != f.module.ID {
		return learningdto.ModuleDetailOutput{}, apperrors.ErrNotFound
	}
	return f.module, nil
}
func (f *fakeLearning) UpdateProgress(_ context.Context, input learningdto.UpdateProgressInput) (learningdto.ProgressOutput, error) {
	f.updated = input.Progress
	f.updatedID = input.ModuleID
	f.module.Progress = input.Progress
	return learningdto.ProgressOutput{ModuleID: input.ModuleID, Progress: input.Progress}, nil
}
func (f *fakeLearning) CompleteModule(context.Context, learningdto.CompleteModuleInput) (learningdto.ProgressOutput, error) {
	return learningdto.ProgressOutput{}, nil
}
func (f *fakeLearning) RecordTimeSpent(_ context.Context, input learningdto.RecordTimeSpentInput) (learningdto.ProgressOutput, error) {
	f.minutes += input.Minutes
	return learningdto.ProgressOutput{ModuleID: input.ModuleID, TimeSpent: f.minutes}, nil
}
func (f *fakeLearning) RecordQuizScore(context.Context, learningdto.RecordQuizScoreInput) (learningdto.ProgressOutput, error) {
	return learningdto.ProgressOutput{}, nil
}
func (f *fakeLearning) ListProgress(context.Context) ([]learningdto.ProgressOutput, error) {
	return nil, nil
}
func (f *fakeLearning) AggregateProgress(context.Context) (float64, error) { return 0, nil }
func (f *fakeLearning) Summary(context.Context) (learningdto.SummaryOutput, error) {
	return learningdto.SummaryOutput{}, nil
}
func (f *fakeLearning) SetCurrentModule(context.Context, string) (learningdto.ModuleOutput, error) {
	return learningdto.ModuleOutput{}, nil
}
func (f *fakeLearning) CurrentModule(context.Context) (learningdto.ModuleOutput, error) {
	return learningdto.ModuleOutput{}, nil
}
func (f *fakeLearning) ClearCurrentModule(context.Context) error { return nil }
func (f *fakeLearning) Reindex(context.Context, learningdto.ReindexInput) (learningdto.ReindexOutput, error) {
	return learningdto.ReindexOutput{}, nil
}

func moduleDetail(id, title string, progress int) learningdto.ModuleDetailOutput {
	return learningdto.ModuleDetailOutput{ModuleOutput: learningdto.ModuleOutput{ID: id, Title: title, Progress: progress}}
}

func TestSessionLifecycleAppliesDeltaAndTime(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	clk := &fakeClock{values: []time.Time{
		time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 25, 10, 45, 0, 0, time.UTC),
	}}
	learning := &fakeLearning{module: moduleDetail("3", "Trauma-Informed Care", 45)}
	svc := service.NewSessionService(clk, fakeID{}, sessionout.NewVaultSessionStore(dataDir))
	uc := usecase.NewInteractor(svc, learning, sessionout.NewFileActiveSessionStore(dataDir))

	start, err := uc.Start(context.Background(), sessiondto.StartInput{ModuleID: "3", Goal: "Finish the grounding section"})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if start.SessionID == "" || start.ModuleTitle != "Trauma-Informed Care" {
		t.Fatalf("unexpected start output: %+v", start)
	}

	active, err := uc.GetActive(context.Background())
	if err != nil {
		t.Fatalf("get active session: %v", err)
	}
	if active.SessionID != start.SessionID || active.ModuleID != "3" {
		t.Fatalf("unexpected active session: %+v", active)
	}

	end, err := uc.End(context.Background(), sessiondto.EndInput{Outcome: "Read two sections", DeltaProgress: 35})
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	if end.DurationMin != 45 {
		t.Fatalf("expected 45 minutes, got %d", end.DurationMin)
	}
	if end.ProgressBefore != 45 || end.ProgressAfter != 80 {
		t.Fatalf("expected progress 45->80, got %d->%d", end.ProgressBefore, end.ProgressAfter)
	}
	if learning.updated != 80 || learning.updatedID != "3" || learning.minutes != 45 {
		t.Fatalf("unexpected learning calls: %+v", learning)
	}

	if _, err := uc.GetActive(context.Background()); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after end, got %v", err)
	}
	b, err := os.ReadFile(end.Path)
	if err != nil {
		t.Fatalf("read session note: %v", err)
	}
	note := string(b)
	if !strings.Contains(note, "progress_before: 45") || !strings.Contains(note, "progress_after: 80") || !strings.Contains(note, "module_id: \"3\"") {
		t.Fatalf("session note missing frontmatter fields: %s", note)
	}

	history, err := uc.History(context.Background(), sessiondto.HistoryInput{ModuleID: "3"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].SessionID != start.SessionID || history[0].DurationMin != 45 || history[0].Outcome != "Read two sections" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestStartFailsWhenActiveExistsOrModuleUnknown(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	clk := &fakeClock{values: []time.Time{time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)}}
	learning := &fakeLearning{module: moduleDetail("1", "Introduction to CBT", 0)}
	uc := usecase.NewInteractor(
		service.NewSessionService(clk, fakeID{}, sessionout.NewVaultSessionStore(dataDir)),
		learning,
		sessionout.NewFileActiveSessionStore(dataDir),
	)
	if _, err := uc.Start(context.Background(), sessiondto.StartInput{ModuleID: "missing"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown module, got %v", err)
	}
	if _, err := uc.Start(context.Background(), sessiondto.StartInput{ModuleID: "1"}); err != nil {
		t.Fatalf("first start should succeed: %v", err)
	}
	if _, err := uc.Start(context.Background(), sessiondto.StartInput{ModuleID: "1"}); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected active session exists error, got %v", err)
	}
}

func TestEndFailsWithoutActiveNegativeDeltaAndMismatchedSessionID(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	clk := &fakeClock{values: []time.Time{
		time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 25, 10, 5, 0, 0, time.UTC),
	}}
	learning := &fakeLearning{module: moduleDetail("1", "Introduction to CBT", 95)}
	uc := usecase.NewInteractor(
		service.NewSessionService(clk, fakeID{}, sessionout.NewVaultSessionStore(dataDir)),
		learning,
		sessionout.NewMemoryActiveSessionStore(),
	)
	if _, err := uc.End(context.Background(), sessiondto.EndInput{Outcome: "x", DeltaProgress: 10}); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session error, got %v", err)
	}
	if _, err := uc.End(context.Background(), sessiondto.EndInput{Outcome: "x", DeltaProgress: -1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("negative delta must fail with ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Start(context.Background(), sessiondto.StartInput{ModuleID: "1", ModuleTitle: "Introduction to CBT"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.End(context.Background(), sessiondto.EndInput{SessionID: "other", Outcome: "x", DeltaProgress: 10}); err == nil {
		t.Fatalf("mismatched session id should fail")
	}
	end, err := uc.End(context.Background(), sessiondto.EndInput{Outcome: "x", DeltaProgress: 20})
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	if end.ProgressAfter != 100 {
		t.Fatalf("expected clamp to 100, got %d", end.ProgressAfter)
	}
}
