package domain_test

import (
	"testing"
	"time"

	"microlearn/internal/modules/learning/domain"
)

func TestSeedModulesAreValid(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, m := range domain.SeedModules() {
		if err := m.Validate(); err != nil {
			t.Fatalf("seed module %s invalid: %v", m.ID, err)
		}
		if seen[m.ID] {
			t.Fatalf("duplicate seed id %s", m.ID)
		}
		seen[m.ID] = true
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 seed modules, got %d", len(seen))
	}
}

func TestValidateRejectsCompletedBelowMax(t *testing.T) {
	t.Parallel()

	m := domain.Module{ID: "x", Title: "X", Duration: 5, Difficulty: domain.DifficultyBeginner, Completed: true, Progress: 80}
	if err := m.Validate(); err == nil {
		t.Fatalf("expected completed module with progress 80 to be invalid")
	}
}

func TestValidateRejectsUnknownContentType(t *testing.T) {
	t.Parallel()

	m := domain.Module{
		ID: "x", Title: "X", Duration: 5, Difficulty: domain.DifficultyBeginner,
		Content: []domain.ContentItem{{Type: "podcast"}},
	}
	if err := m.Validate(); err == nil {
		t.Fatalf("expected unknown content type to be rejected")
	}
}

func TestState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		module domain.Module
		want   domain.State
	}{
		{domain.Module{Progress: 0}, domain.StateNotStarted},
		{domain.Module{Progress: 45}, domain.StateInProgress},
		{domain.Module{Progress: 100}, domain.StateInProgress},
		{domain.Module{Progress: 100, Completed: true}, domain.StateCompleted},
	}
	for _, tc := range cases {
		if got := tc.module.State(); got != tc.want {
			t.Fatalf("State(%+v) = %s, want %s", tc.module, got, tc.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := domain.SeedModules()[0]
	clone := original.Clone()
	clone.Content[0].Data["text"] = "changed"
	clone.Content[2].Data["questions"] = append(clone.Content[2].Data["questions"].([]any), "q")
	if original.Content[0].Data["text"] == "changed" {
		t.Fatalf("clone shares content data with original")
	}
	if len(original.Content[2].Data["questions"].([]any)) != 0 {
		t.Fatalf("clone shares nested slices with original")
	}

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	record := domain.ProgressRecord{ModuleID: "1", CompletedAt: &at, QuizScores: []int{80}}
	copied := record.Clone()
	*copied.CompletedAt = at.Add(time.Hour)
	copied.QuizScores[0] = 10
	if !record.CompletedAt.Equal(at) || record.QuizScores[0] != 80 {
		t.Fatalf("record clone is shallow")
	}
}

func TestFilterMatches(t *testing.T) {
	t.Parallel()

	modules := domain.SeedModules()
	count := func(f domain.Filter) int {
		n := 0
		for _, m := range modules {
			if f.Matches(m) {
				n++
			}
		}
		return n
	}

	if got := count(domain.Filter{}); got != 5 {
		t.Fatalf("empty filter matched %d", got)
	}
	if got := count(domain.Filter{Category: "all", Difficulty: "all"}); got != 5 {
		t.Fatalf("all filter matched %d", got)
	}
	if got := count(domain.Filter{Category: "CBT"}); got != 2 {
		t.Fatalf("CBT filter matched %d", got)
	}
	if got := count(domain.Filter{Difficulty: "intermediate"}); got != 2 {
		t.Fatalf("intermediate filter matched %d", got)
	}
	if got := count(domain.Filter{Query: "MINDFUL"}); got != 1 {
		t.Fatalf("title query matched %d", got)
	}
	if got := count(domain.Filter{Query: "thinking patterns"}); got != 1 {
		t.Fatalf("description query matched %d", got)
	}
	if got := count(domain.Filter{Query: "cbt", Difficulty: "advanced"}); got != 0 {
		t.Fatalf("combined filter matched %d", got)
	}
}
