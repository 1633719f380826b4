package domain

import "strings"

// FilterAll matches any category or difficulty.
const FilterAll = "all"

type Filter struct {
	Query      string
	Category   string
	Difficulty string
}

func (f Filter) Matches(m Module) bool {
	if query := strings.ToLower(strings.TrimSpace(f.Query)); query != "" {
		if !strings.Contains(strings.ToLower(m.Title), query) && !strings.Contains(strings.ToLower(m.Description), query) {
			return false
		}
	}
	if !isAll(f.Category) && m.Category != f.Category {
		return false
	}
	if !isAll(f.Difficulty) && string(m.Difficulty) != f.Difficulty {
		return false
	}
	return true
}

func isAll(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, FilterAll)
}
