package out

import (
	"context"
	"fmt"

	learningin "microlearn/internal/modules/learning/port/in"
	"microlearn/internal/modules/reader/domain"
	readerout "microlearn/internal/modules/reader/port/out"
)

type LearningModuleAdapter struct {
	learning learningin.Usecase
}

func NewLearningModuleAdapter(learning learningin.Usecase) readerout.ModuleResolver {
	return &LearningModuleAdapter{learning: learning}
}

func (a *LearningModuleAdapter) Resolve(ctx context.Context, moduleID string) (domain.ModuleRef, error) {
	module, err := a.learning.GetModule(ctx, moduleID)
	if err != nil {
		return domain.ModuleRef{}, err
	}
	ref := domain.ModuleRef{
		ID:        module.ID,
		Title:     module.Title,
		Progress:  module.Progress,
		Completed: module.Completed,
		Items:     make([]domain.Item, 0, len(module.Content)),
	}
	for idx, content := range module.Content {
		ref.Items = append(ref.Items, domain.Item{
			Index:     idx,
			Type:      content.Type,
			Text:      asString(content.Data["text"]),
			URL:       asString(content.Data["url"]),
			Questions: questionPrompts(content.Data["questions"]),
		})
	}
	return ref, nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	default:
		return fmt.Sprint(v)
	}
}

// questionPrompts accepts plain strings or maps carrying a prompt/question key.
func questionPrompts(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case string:
			out = append(out, x)
		case map[string]any:
			if prompt := asString(x["prompt"]); prompt != "" {
				out = append(out, prompt)
			} else if question := asString(x["question"]); question != "" {
				out = append(out, question)
			}
		}
	}
	return out
}
