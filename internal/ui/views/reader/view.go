package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	readerdto "microlearn/internal/modules/reader/dto"
	"microlearn/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the reader use-case.
type Port interface {
	Open(ctx context.Context, moduleID string, index int) (readerdto.OpenResult, error)
	Launch(ctx context.Context, moduleID string, index int) (readerdto.OpenResult, error)
	Advance(ctx context.Context, moduleID string, index int) (readerdto.AdvanceResult, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// OpenedMsg is sent when an item has been opened (or failed to open).
type OpenedMsg struct {
	Result readerdto.OpenResult
	Err    error
}

// AdvancedMsg is sent after the current item was marked finished.
type AdvancedMsg struct {
	Result readerdto.AdvanceResult
	Err    error
}

// CopiedMsg reports a clipboard copy of the current item's link or text.
type CopiedMsg struct {
	Link bool
	Err  error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	viewport viewport.Model
	spinner  spinner.Model
	result   readerdto.OpenResult
	renderer *glamour.TermRenderer
	clip     func(string) error
	loading  bool
	width    int
	height   int
}

func New(port Port) Model {
	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		port:     port,
		viewport: vp,
		spinner:  sp,
		renderer: r,
		clip:     clipboard.WriteAll,
	}
}

// WithClipboard replaces the system clipboard writer.
func (m Model) WithClipboard(write func(string) error) Model {
	m.clip = write
	return m
}

// Init is a no-op: the reader is idle until OpenModule is called.
func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.result.ModuleID != "" {
			m.viewport.SetContent(m.renderContent())
		}

	case OpenedMsg:
		m.loading = false
		if msg.Err != nil {
			m.viewport.SetContent(theme.Hot.Render("Error: " + msg.Err.Error()))
			return m, nil
		}
		m.result = msg.Result
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()

	case AdvancedMsg:
		if msg.Err != nil {
			return m, nil
		}
		m.result.Progress = msg.Result.Progress
		m.result.Completed = msg.Result.Completed
		if !msg.Result.Finished && msg.Result.NextIndex < m.result.Total {
			m.loading = true
			return m, tea.Batch(m.openCmd(m.result.ModuleID, msg.Result.NextIndex, false), m.spinner.Tick)
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := m.renderHeader()
	headerH := lipgloss.Height(header)
	footerH := 1

	vpHeight := m.height - headerH - footerH
	if vpHeight < 1 {
		vpHeight = 1
	}
	vpView := m.viewportAt(vpHeight)

	if m.loading {
		loading := lipgloss.Place(m.width, vpHeight, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Opening module…")
		return lipgloss.JoinVertical(lipgloss.Left, header, loading)
	}

	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, header, vpView, footer)
}

// OpenModule loads item index of a module. The returned Cmd produces an OpenedMsg.
func (m *Model) OpenModule(moduleID string, index int) tea.Cmd {
	m.loading = true
	return tea.Batch(m.openCmd(moduleID, index, false), m.spinner.Tick)
}

func (m Model) NextItem() tea.Cmd {
	if m.result.ModuleID == "" || m.result.Index+1 >= m.result.Total {
		return nil
	}
	return m.openCmd(m.result.ModuleID, m.result.Index+1, false)
}

func (m Model) PrevItem() tea.Cmd {
	if m.result.ModuleID == "" || m.result.Index == 0 {
		return nil
	}
	return m.openCmd(m.result.ModuleID, m.result.Index-1, false)
}

// AdvanceCurrent marks the shown item finished. The returned Cmd produces an AdvancedMsg.
func (m Model) AdvanceCurrent() tea.Cmd {
	if m.result.ModuleID == "" {
		return nil
	}
	moduleID, index := m.result.ModuleID, m.result.Index
	return func() tea.Msg {
		result, err := m.port.Advance(context.Background(), moduleID, index)
		return AdvancedMsg{Result: result, Err: err}
	}
}

// LaunchCurrent hands the shown item's link to the system opener.
func (m Model) LaunchCurrent() tea.Cmd {
	if m.result.ModuleID == "" || m.result.ExternalTarget == "" {
		return nil
	}
	return m.openCmd(m.result.ModuleID, m.result.Index, true)
}

// CopyCurrent puts the shown item's link on the clipboard, or its text when
// the item has no link.
func (m Model) CopyCurrent() tea.Cmd {
	if m.result.ModuleID == "" || m.clip == nil {
		return nil
	}
	text, link := m.result.Content, false
	if m.result.ExternalTarget != "" {
		text, link = m.result.ExternalTarget, true
	}
	write := m.clip
	return func() tea.Msg {
		return CopiedMsg{Link: link, Err: write(text)}
	}
}

func (m Model) ModuleID() string { return m.result.ModuleID }

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = m.height - 3
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.width),
	); err == nil {
		m.renderer = r
	}
}

// viewportAt renders the viewport at height h without touching the stored height.
func (m Model) viewportAt(h int) string {
	vp := m.viewport
	vp.Height = h
	return vp.View()
}

func (m Model) renderHeader() string {
	if m.result.ModuleID == "" {
		return theme.Title.Render("Reader") +
			theme.Muted.Render("  Open a module from the Modules tab (enter)") + "\n"
	}
	state := fmt.Sprintf("%d%%", m.result.Progress)
	if m.result.Completed {
		state = "completed"
	}
	parts := []string{
		theme.Title.Render(m.result.Title),
		theme.Muted.Render(fmt.Sprintf("[%d/%d %s]", m.result.Index+1, m.result.Total, m.result.ItemType)),
		theme.Muted.Render(state),
	}
	nav := theme.Muted.Render("  ←/→: item  a: done, next  e: open link  y: copy")
	return strings.Join(parts, "  ") + nav + "\n"
}

func (m Model) renderFooter() string {
	return theme.Muted.Render(fmt.Sprintf("%.0f%%", m.viewport.ScrollPercent()*100))
}

func (m Model) renderContent() string {
	r := m.result
	body := r.Content
	if r.ExternalLaunched {
		body += "\n\n_Opened in external application._"
	}
	if strings.TrimSpace(body) == "" {
		return theme.Muted.Render("(no content)")
	}
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(body); err == nil {
			return rendered
		}
	}
	return body
}

func (m Model) openCmd(moduleID string, index int, external bool) tea.Cmd {
	return func() tea.Msg {
		var (
			result readerdto.OpenResult
			err    error
		)
		if external {
			result, err = m.port.Launch(context.Background(), moduleID, index)
		} else {
			result, err = m.port.Open(context.Background(), moduleID, index)
		}
		return OpenedMsg{Result: result, Err: err}
	}
}
