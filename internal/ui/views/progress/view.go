package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	learningdto "microlearn/internal/modules/learning/dto"
	"microlearn/internal/ui/theme"
)

type Port interface {
	Summary(ctx context.Context) (learningdto.SummaryOutput, error)
}

type SummaryLoadedMsg struct {
	Summary learningdto.SummaryOutput
	Err     error
}

// Model shows completion counts, the aggregate bar and the per-category
// breakdown of the learning dashboard.
type Model struct {
	port    Port
	summary learningdto.SummaryOutput
	err     error
	bar     progress.Model
	loaded  bool
	width   int
	height  int
}

func New(port Port) Model {
	bar := progress.New(progress.WithSolidFill(string(theme.Green)), progress.WithoutPercentage())
	return Model{port: port, bar: bar}
}

func (m Model) Init() tea.Cmd { return m.Reload() }

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.port.Summary(context.Background())
		return SummaryLoadedMsg{Summary: summary, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(60, m.width-30))
	case SummaryLoadedMsg:
		m.loaded = true
		m.summary = msg.Summary
		m.err = msg.Err
	}
	return m, nil
}

func (m Model) View() string {
	if !m.loaded {
		return theme.Muted.Render("Loading progress…")
	}
	if m.err != nil {
		return theme.Hot.Render("Progress: " + m.err.Error())
	}
	s := m.summary
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Your Progress") + "\n\n")
	sb.WriteString(fmt.Sprintf("%s %d/%d modules\n", theme.Muted.Render("completed:"), s.Completed, s.Total))
	sb.WriteString(fmt.Sprintf("%s %s %.1f%%\n", theme.Muted.Render("overall:  "), m.bar.ViewAs(s.Aggregate/100), s.Aggregate))
	sb.WriteString(fmt.Sprintf("%s %d min\n\n", theme.Muted.Render("learned:  "), s.CompletedMinutes))

	if len(s.Categories) > 0 {
		sb.WriteString(theme.Title.Render("By category") + "\n")
		for _, c := range s.Categories {
			sb.WriteString(fmt.Sprintf("  %-18s %s %d/%d\n", c.Category, m.bar.ViewAs(float64(c.Percent)/100), c.Completed, c.Total))
		}
		sb.WriteString("\n")
	}
	if len(s.Recent) > 0 {
		sb.WriteString(theme.Title.Render("Recent activity") + "\n")
		for _, r := range s.Recent {
			mark := theme.InProgress.Render("…")
			if r.Completed {
				mark = theme.Completed.Render("✓")
			}
			sb.WriteString(fmt.Sprintf("  %s %s %d%%\n", mark, r.Title, r.Progress))
		}
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(sb.String())
}
