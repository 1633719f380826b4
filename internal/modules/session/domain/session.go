package domain

import (
	"fmt"
	"time"
)

const SchemaVersion = 1

type ActiveSession struct {
	SessionID   string    `json:"session_id"`
	ModuleID    string    `json:"module_id"`
	ModuleTitle string    `json:"module_title"`
	StartedAt   time.Time `json:"started_at"`
	Goal        string    `json:"goal"`
}

type Session struct {
	ID             string
	ModuleID       string
	ModuleTitle    string
	StartedAt      time.Time
	EndedAt        time.Time
	DurationMin    int
	Goal           string
	Outcome        string
	DeltaProgress  int
	ProgressBefore int
	ProgressAfter  int
}

// NoteMeta is the frontmatter written at the top of a session note.
type NoteMeta struct {
	SchemaVersion  int    `yaml:"schema_version"`
	ID             string `yaml:"id"`
	ModuleID       string `yaml:"module_id"`
	ModuleTitle    string `yaml:"module_title"`
	StartedAt      string `yaml:"started_at"`
	EndedAt        string `yaml:"ended_at"`
	DurationMin    int    `yaml:"duration_minutes"`
	Goal           string `yaml:"goal"`
	Outcome        string `yaml:"outcome"`
	DeltaProgress  int    `yaml:"delta_progress"`
	ProgressBefore int    `yaml:"progress_before"`
	ProgressAfter  int    `yaml:"progress_after"`
}

func (s Session) Meta() NoteMeta {
	return NoteMeta{
		SchemaVersion:  SchemaVersion,
		ID:             s.ID,
		ModuleID:       s.ModuleID,
		ModuleTitle:    s.ModuleTitle,
		StartedAt:      s.StartedAt.Format(time.RFC3339),
		EndedAt:        s.EndedAt.Format(time.RFC3339),
		DurationMin:    s.DurationMin,
		Goal:           s.Goal,
		Outcome:        s.Outcome,
		DeltaProgress:  s.DeltaProgress,
		ProgressBefore: s.ProgressBefore,
		ProgressAfter:  s.ProgressAfter,
	}
}

// FromMeta rebuilds a session from note frontmatter.
func FromMeta(meta NoteMeta) (Session, error) {
	startedAt, err := time.Parse(time.RFC3339, meta.StartedAt)
	if err != nil {
		return Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	endedAt, err := time.Parse(time.RFC3339, meta.EndedAt)
	if err != nil {
		return Session{}, fmt.Errorf("parse ended_at: %w", err)
	}
	return Session{
		ID:             meta.ID,
		ModuleID:       meta.ModuleID,
		ModuleTitle:    meta.ModuleTitle,
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		DurationMin:    meta.DurationMin,
		Goal:           meta.Goal,
		Outcome:        meta.Outcome,
		DeltaProgress:  meta.DeltaProgress,
		ProgressBefore: meta.ProgressBefore,
		ProgressAfter:  meta.ProgressAfter,
	}, nil
}
