package dto

import "time"

type StartInput struct {
	ModuleID    string
	ModuleTitle string
	Goal        string
}

type StartOutput struct {
	SessionID   string
	ModuleID    string
	ModuleTitle string
	StartedAt   time.Time
}

type EndInput struct {
	SessionID     string
	Outcome       string
	DeltaProgress int
}

type EndOutput struct {
	SessionID      string
	ModuleID       string
	Path           string
	DurationMin    int
	DeltaProgress  int
	ProgressBefore int
	ProgressAfter  int
}

type ActiveSessionOutput struct {
	SessionID   string
	ModuleID    string
	ModuleTitle string
	StartedAt   time.Time
	Goal        string
}

type HistoryInput struct {
	ModuleID string
}

type SessionOutput struct {
	SessionID      string
	ModuleID       string
	ModuleTitle    string
	StartedAt      time.Time
	DurationMin    int
	Goal           string
	Outcome        string
	DeltaProgress  int
	ProgressBefore int
	ProgressAfter  int
}
