package domain

import (
	"fmt"
	"strings"
)

type Item struct {
	Index     int
	Type      string
	Text      string
	URL       string
	Questions []string
}

type ModuleRef struct {
	ID        string
	Title     string
	Progress  int
	Completed bool
	Items     []Item
}

// ProgressAfter is the module progress once item index of total is finished.
func ProgressAfter(index, total int) int {
	if total <= 0 {
		return 0
	}
	return (index + 1) * 100 / total
}

func (r ModuleRef) IsLast(index int) bool {
	return index == len(r.Items)-1
}

// Markdown renders an item for display. Text items are shown as is, linked
// items show their target and quizzes list their prompts.
func (i Item) Markdown() string {
	switch i.Type {
	case "text":
		if strings.TrimSpace(i.Text) == "" {
			return "_(empty text)_"
		}
		return i.Text
	case "video", "interactive":
		label := "Video"
		if i.Type == "interactive" {
			label = "Interactive exercise"
		}
		if i.URL == "" {
			return fmt.Sprintf("**%s** _(no link)_", label)
		}
		return fmt.Sprintf("**%s**\n\n<%s>", label, i.URL)
	case "quiz":
		if len(i.Questions) == 0 {
			return "## Quiz\n\nNo questions yet."
		}
		b := strings.Builder{}
		b.WriteString("## Quiz\n\n")
		for n, q := range i.Questions {
			fmt.Fprintf(&b, "%d. %s\n", n+1, q)
		}
		return b.String()
	default:
		return fmt.Sprintf("_(unsupported item %q)_", i.Type)
	}
}
