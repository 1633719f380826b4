package domain

import "math"

const recentActivityLimit = 5

type CategoryStat struct {
	Category  string
	Completed int
	Total     int
	Percent   int
}

type Summary struct {
	Completed        int
	Total            int
	Aggregate        float64
	CompletedMinutes int
	Categories       []CategoryStat
	Recent           []Module
}

// AggregateProgress is the arithmetic mean of catalog progress. ok is false for an empty catalog.
func AggregateProgress(modules []Module) (float64, bool) {
	if len(modules) == 0 {
		return 0, false
	}
	total := 0
	for _, m := range modules {
		total += m.Progress
	}
	return float64(total) / float64(len(modules)), true
}

func Summarize(modules []Module) (Summary, bool) {
	aggregate, ok := AggregateProgress(modules)
	if !ok {
		return Summary{}, false
	}
	summary := Summary{Total: len(modules), Aggregate: aggregate}
	index := map[string]int{}
	for _, m := range modules {
		pos, seen := index[m.Category]
		if !seen {
			pos = len(summary.Categories)
			index[m.Category] = pos
			summary.Categories = append(summary.Categories, CategoryStat{Category: m.Category})
		}
		summary.Categories[pos].Total++
		if m.Completed {
			summary.Completed++
			summary.CompletedMinutes += m.Duration
			summary.Categories[pos].Completed++
		}
		if m.Progress > 0 && len(summary.Recent) < recentActivityLimit {
			summary.Recent = append(summary.Recent, m.Clone())
		}
	}
	for idx := range summary.Categories {
		stat := &summary.Categories[idx]
		stat.Percent = int(math.Round(float64(stat.Completed) * 100 / float64(stat.Total)))
	}
	return summary, true
}
