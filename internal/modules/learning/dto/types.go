package dto

import "time"

type ModuleFilterInput struct {
	Query      string
	Category   string
	Difficulty string
}

type UpdateProgressInput struct {
	ModuleID string
	Progress int
}

type CompleteModuleInput struct {
	ModuleID string
}

type RecordTimeSpentInput struct {
	ModuleID string
	Minutes  int
}

type RecordQuizScoreInput struct {
	ModuleID string
	Score    int
}

type ReindexInput struct{}

type ReindexOutput struct {
	Records int
}

type ModuleOutput struct {
	ID           string
	Title        string
	Description  string
	Category     string
	Duration     int
	Difficulty   string
	Completed    bool
	Progress     int
	State        string
	ContentCount int
}

type ContentItemOutput struct {
	Type string
	Data map[string]any
}

type ModuleDetailOutput struct {
	ModuleOutput
	Content []ContentItemOutput
	Record  *ProgressOutput
}

type ProgressOutput struct {
	ModuleID    string
	Title       string
	Progress    int
	Completed   bool
	CompletedAt *time.Time
	TimeSpent   int
	QuizScores  []int
	CatalogHit  bool
	UpdatedAt   time.Time
}

type CategoryOutput struct {
	Category  string
	Completed int
	Total     int
	Percent   int
}

type SummaryOutput struct {
	Completed        int
	Total            int
	Aggregate        float64
	CompletedMinutes int
	Categories       []CategoryOutput
	Recent           []ModuleOutput
}
