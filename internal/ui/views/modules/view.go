package modules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	learningdto "microlearn/internal/modules/learning/dto"
	"microlearn/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	ListModules(ctx context.Context, query, category, difficulty string) ([]learningdto.ModuleOutput, error)
	GetModule(ctx context.Context, id string) (learningdto.ModuleDetailOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type ModulesLoadedMsg struct {
	Modules []learningdto.ModuleOutput
	Err     error
}

type DetailLoadedMsg struct {
	Detail learningdto.ModuleDetailOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type moduleItem struct {
	module learningdto.ModuleOutput
}

func (i moduleItem) Title() string {
	mark := "  "
	if i.module.Completed {
		mark = "✓ "
	}
	return mark + i.module.Title
}

func (i moduleItem) Description() string {
	return fmt.Sprintf("%s · %s · %dmin · %d%%", i.module.Category, i.module.Difficulty, i.module.Duration, i.module.Progress)
}

// FilterValue covers title, category and difficulty so one search box does
// the work of the catalog filters.
func (i moduleItem) FilterValue() string {
	return i.module.Title + " " + i.module.Category + " " + i.module.Difficulty
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    Port
	list    list.Model
	detail  learningdto.ModuleDetailOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Modules"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case ModulesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Modules: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Modules))
		for i, mod := range msg.Modules {
			items[i] = moduleItem{module: mod}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if id, ok := m.SelectedModuleID(); ok {
			cmds = append(cmds, m.loadDetailCmd(id))
		} else if len(msg.Modules) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Modules[0].ID))
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if id, ok := m.SelectedModuleID(); ok {
				cmds = append(cmds, m.loadDetailCmd(id))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading modules…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Reload fetches the catalog again, keeping the current selection.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		modules, err := m.port.ListModules(context.Background(), "", "", "")
		return ModulesLoadedMsg{Modules: modules, Err: err}
	}
}

func (m Model) SelectedModuleID() (string, bool) {
	if item, ok := m.list.SelectedItem().(moduleItem); ok {
		return item.module.ID, true
	}
	return "", false
}

func (m Model) SelectedModuleTitle() string {
	if item, ok := m.list.SelectedItem().(moduleItem); ok {
		return item.module.Title
	}
	return ""
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.ID == "" {
		return theme.Muted.Render("Select a module to see details")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Title) + "\n")
	sb.WriteString(d.Description + "\n\n")
	sb.WriteString(theme.Muted.Render("id:       ") + d.ID + "\n")
	sb.WriteString(theme.Muted.Render("category: ") + d.Category + "\n")
	sb.WriteString(theme.Muted.Render("level:    ") + d.Difficulty + "\n")
	sb.WriteString(fmt.Sprintf("%s%d min\n", theme.Muted.Render("length:   "), d.Duration))
	sb.WriteString(fmt.Sprintf("%s%d%% %s\n", theme.Muted.Render("progress: "), d.Progress, theme.ForState(d.State).Render(d.State)))
	if len(d.Content) > 0 {
		types := make([]string, len(d.Content))
		for i, item := range d.Content {
			types[i] = item.Type
		}
		sb.WriteString(theme.Muted.Render("content:  ") + strings.Join(types, " → ") + "\n")
	}
	if r := d.Record; r != nil {
		sb.WriteString(fmt.Sprintf("%s%d min\n", theme.Muted.Render("studied:  "), r.TimeSpent))
		if len(r.QuizScores) > 0 {
			sb.WriteString(fmt.Sprintf("%s%v\n", theme.Muted.Render("quizzes:  "), r.QuizScores))
		}
		if r.CompletedAt != nil {
			sb.WriteString(theme.Muted.Render("done:     ") + r.CompletedAt.Local().Format(time.DateTime) + "\n")
		}
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: open in Reader  s: start session  c: complete"))
	return sb.String()
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.GetModule(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
