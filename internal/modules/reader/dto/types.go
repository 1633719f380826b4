package dto

type OpenInput struct {
	ModuleID       string
	Index          int
	LaunchExternal bool
}

type OpenResult struct {
	ModuleID         string
	Title            string
	Index            int
	Total            int
	ItemType         string
	Content          string
	ExternalTarget   string
	ExternalLaunched bool
	Progress         int
	Completed        bool
}

type AdvanceInput struct {
	ModuleID string
	Index    int
}

type AdvanceResult struct {
	ModuleID  string
	Progress  int
	Completed bool
	NextIndex int
	Finished  bool
}
