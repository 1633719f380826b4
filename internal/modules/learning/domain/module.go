package domain

import (
	"fmt"
	"strings"
	"time"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type ContentType string

const (
	ContentTypeVideo       ContentType = "video"
	ContentTypeText        ContentType = "text"
	ContentTypeQuiz        ContentType = "quiz"
	ContentTypeInteractive ContentType = "interactive"
)

const MaxProgress = 100

type ContentItem struct {
	Type ContentType
	Data map[string]any
}

type Module struct {
	ID          string
	Title       string
	Description string
	Category    string
	Duration    int
	Difficulty  Difficulty
	Completed   bool
	Progress    int
	Content     []ContentItem
}

type ProgressRecord struct {
	ModuleID    string
	Progress    int
	CompletedAt *time.Time
	TimeSpent   int
	QuizScores  []int
	UpdatedAt   time.Time
}

type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

func (d Difficulty) Validate() error {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return nil
	default:
		return fmt.Errorf("unsupported difficulty %q", string(d))
	}
}

func (c ContentType) Validate() error {
	switch c {
	case ContentTypeVideo, ContentTypeText, ContentTypeQuiz, ContentTypeInteractive:
		return nil
	default:
		return fmt.Errorf("unsupported content type %q", string(c))
	}
}

func (m Module) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("module %s: title is required", m.ID)
	}
	if m.Duration <= 0 {
		return fmt.Errorf("module %s: duration must be positive", m.ID)
	}
	if err := m.Difficulty.Validate(); err != nil {
		return fmt.Errorf("module %s: %w", m.ID, err)
	}
	if m.Progress < 0 || m.Progress > MaxProgress {
		return fmt.Errorf("module %s: progress %d out of range", m.ID, m.Progress)
	}
	if m.Completed && m.Progress != MaxProgress {
		return fmt.Errorf("module %s: completed module must have progress %d", m.ID, MaxProgress)
	}
	for idx, item := range m.Content {
		if err := item.Type.Validate(); err != nil {
			return fmt.Errorf("module %s: content %d: %w", m.ID, idx, err)
		}
	}
	return nil
}

// State derives the lifecycle state. Progress 100 without completion is still in progress.
func (m Module) State() State {
	switch {
	case m.Completed:
		return StateCompleted
	case m.Progress > 0:
		return StateInProgress
	default:
		return StateNotStarted
	}
}

func (m Module) Clone() Module {
	out := m
	if m.Content != nil {
		out.Content = make([]ContentItem, len(m.Content))
		for idx, item := range m.Content {
			out.Content[idx] = ContentItem{Type: item.Type, Data: cloneMap(item.Data)}
		}
	}
	return out
}

func (r ProgressRecord) Clone() ProgressRecord {
	out := r
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		out.CompletedAt = &at
	}
	out.QuizScores = append([]int{}, r.QuizScores...)
	return out
}

// NewRecord is the lazily created ledger entry for a module touched for the first time.
func NewRecord(moduleID string) ProgressRecord {
	return ProgressRecord{ModuleID: moduleID, QuizScores: []int{}}
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string{}, typed...)
	default:
		return typed
	}
}
