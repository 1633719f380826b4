package domain

// SeedModules returns the built-in catalog used when no catalog file is configured.
func SeedModules() []Module {
	return []Module{
		{
			ID:          "1",
			Title:       "Introduction to CBT",
			Description: "Learn the fundamentals of Cognitive Behavioral Therapy",
			Category:    "CBT",
			Duration:    15,
			Difficulty:  DifficultyBeginner,
			Content: []ContentItem{
				{Type: ContentTypeText, Data: map[string]any{"text": "CBT is a form of psychological treatment that has been demonstrated to be effective for a range of problems."}},
				{Type: ContentTypeVideo, Data: map[string]any{"url": "https://example.com/video1"}},
				{Type: ContentTypeQuiz, Data: map[string]any{"questions": []any{}}},
			},
		},
		{
			ID:          "2",
			Title:       "Mindfulness Techniques",
			Description: "Practical mindfulness exercises for daily practice",
			Category:    "Mindfulness",
			Duration:    10,
			Difficulty:  DifficultyBeginner,
			Completed:   true,
			Progress:    100,
			Content:     []ContentItem{},
		},
		{
			ID:          "3",
			Title:       "Trauma-Informed Care",
			Description: "Understanding and implementing trauma-informed approaches",
			Category:    "Trauma Therapy",
			Duration:    20,
			Difficulty:  DifficultyIntermediate,
			Progress:    45,
			Content:     []ContentItem{},
		},
		{
			ID:          "4",
			Title:       "Cognitive Distortions",
			Description: "Identifying and addressing common thinking patterns",
			Category:    "CBT",
			Duration:    12,
			Difficulty:  DifficultyIntermediate,
			Content:     []ContentItem{},
		},
		{
			ID:          "5",
			Title:       "Professional Ethics",
			Description: "Ethical considerations in psychological practice",
			Category:    "Ethics",
			Duration:    18,
			Difficulty:  DifficultyAdvanced,
			Content:     []ContentItem{},
		},
	}
}
