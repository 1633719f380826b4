package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	learningdto "microlearn/internal/modules/learning/dto"
	readerdto "microlearn/internal/modules/reader/dto"
	sessiondto "microlearn/internal/modules/session/dto"
	apperrors "microlearn/internal/platform/errors"
	"microlearn/internal/ui/components"
	"microlearn/internal/ui/theme"
	modulesview "microlearn/internal/ui/views/modules"
	progressview "microlearn/internal/ui/views/progress"
	readerview "microlearn/internal/ui/views/reader"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type learningPort interface {
	ListModules(ctx context.Context, query, category, difficulty string) ([]learningdto.ModuleOutput, error)
	GetModule(ctx context.Context, id string) (learningdto.ModuleDetailOutput, error)
	UpdateProgress(ctx context.Context, moduleID string, progress int) (learningdto.ProgressOutput, error)
	CompleteModule(ctx context.Context, moduleID string) (learningdto.ProgressOutput, error)
	RecordQuizScore(ctx context.Context, moduleID string, score int) (learningdto.ProgressOutput, error)
	Summary(ctx context.Context) (learningdto.SummaryOutput, error)
	CurrentModule(ctx context.Context) (learningdto.ModuleOutput, error)
}

type sessionPort interface {
	Start(ctx context.Context, moduleID, goal string) (sessiondto.StartOutput, error)
	End(ctx context.Context, sessionID, outcome string, delta int) (sessiondto.EndOutput, error)
	GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error)
}

type readerPort interface {
	Open(ctx context.Context, moduleID string, index int) (readerdto.OpenResult, error)
	Launch(ctx context.Context, moduleID string, index int) (readerdto.OpenResult, error)
	Advance(ctx context.Context, moduleID string, index int) (readerdto.AdvanceResult, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabModules tabID = iota
	tabReader
	tabProgress
	tabCount
)

var tabLabels = [tabCount]string{
	"Modules", "Reader", "Progress",
}

// ─── async messages ───────────────────────────────────────────────────────────

type activeLoadedMsg struct {
	active sessiondto.ActiveSessionOutput
	err    error
}

type currentLoadedMsg struct {
	module learningdto.ModuleOutput
	err    error
}

type sessionStartedMsg struct {
	active sessiondto.ActiveSessionOutput
	err    error
}

type sessionEndedMsg struct {
	out sessiondto.EndOutput
	err error
}

type progressChangedMsg struct {
	verb string
	out  learningdto.ProgressOutput
	err  error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
	Enter    key.Binding
	Session  key.Binding
	Complete key.Binding
	PrevItem key.Binding
	NextItem key.Binding
	Advance  key.Binding
	External key.Binding
	Copy     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open in reader")),
		Session:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start session")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete module")),
		PrevItem: key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "content item")),
		NextItem: key.NewBinding(key.WithKeys("right"), key.WithHelp("←/→", "content item")),
		Advance:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "finish item")),
		External: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "open link")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link/text")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter, k.Session, k.Complete},
		{k.PrevItem, k.NextItem, k.Advance, k.External, k.Copy},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, session state,
// the help overlay and the command palette; sub-views do the rendering.
type Model struct {
	ctx context.Context

	learning learningPort
	session  sessionPort

	modView  modulesview.Model
	readView readerview.Model
	progView progressview.Model

	activeTab     tabID
	keys          keyMap
	help          help.Model
	showHelp      bool
	palette       components.Palette
	activeSession sessiondto.ActiveSessionOutput
	hasActive     bool
	status        string
	width         int
	height        int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(ctx context.Context, learning learningPort, session sessionPort, reader readerPort) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	return Model{
		ctx:       ctx,
		learning:  learning,
		session:   session,
		modView:   modulesview.New(learning),
		readView:  readerview.New(reader),
		progView:  progressview.New(learning),
		activeTab: tabModules,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.modView.Init(),
		m.progView.Init(),
		m.loadActiveCmd(),
		m.loadCurrentCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case activeLoadedMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, apperrors.ErrNoActiveSession) {
				m.status = "active session check: " + msg.err.Error()
			}
			m.hasActive = false
		} else {
			m.hasActive = true
			m.activeSession = msg.active
			m.status = "session recovered: " + msg.active.ModuleTitle
		}

	case currentLoadedMsg:
		if msg.err == nil && msg.module.ID != "" && !m.hasActive {
			m.status = "last module: " + msg.module.Title
		}

	case sessionStartedMsg:
		if msg.err != nil {
			m.status = "session start failed: " + msg.err.Error()
		} else {
			m.hasActive = true
			m.activeSession = msg.active
			m.status = "session started: " + msg.active.ModuleTitle
		}

	case sessionEndedMsg:
		if msg.err != nil {
			m.status = "session end failed: " + msg.err.Error()
		} else {
			m.hasActive = false
			m.activeSession = sessiondto.ActiveSessionOutput{}
			m.status = fmt.Sprintf("session ended: %d%% → %d%% in %dmin", msg.out.ProgressBefore, msg.out.ProgressAfter, msg.out.DurationMin)
			cmds = append(cmds, m.refreshCmds()...)
		}

	case progressChangedMsg:
		if msg.err != nil {
			m.status = msg.verb + " failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("%s: %s at %d%%", msg.verb, msg.out.ModuleID, msg.out.Progress)
			if !msg.out.CatalogHit {
				m.status += " (not in catalog)"
			}
			cmds = append(cmds, m.refreshCmds()...)
		}
		return m, tea.Batch(cmds...)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	// Reader results pass through here so the tab can switch and the other
	// views can pick up new progress.
	case readerview.OpenedMsg:
		if msg.Err != nil {
			m.status = "reader: " + msg.Err.Error()
		} else {
			m.status = fmt.Sprintf("reader: %s [%d/%d]", msg.Result.Title, msg.Result.Index+1, msg.Result.Total)
			m.activeTab = tabReader
		}
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(msg)
		return m, cmd

	case readerview.AdvancedMsg:
		if msg.Err != nil {
			m.status = "advance failed: " + msg.Err.Error()
		} else if msg.Result.Finished {
			m.status = "module finished"
		} else {
			m.status = fmt.Sprintf("progress %d%%", msg.Result.Progress)
		}
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, m.refreshCmds()...)
		return m, tea.Batch(cmds...)

	case readerview.CopiedMsg:
		switch {
		case msg.Err != nil:
			m.status = "copy failed: " + msg.Err.Error()
		case msg.Link:
			m.status = "link copied"
		default:
			m.status = "item text copied"
		}
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the module list while its search filter is open.
		if m.activeTab == tabModules && m.modView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "s":
			if id := m.selectedModule(); id != "" {
				cmds = append(cmds, m.startSessionCmd(id, ""))
			}
		case "c":
			if id := m.selectedModule(); id != "" {
				cmds = append(cmds, m.completeCmd(id))
			}
		case "enter":
			if m.activeTab == tabModules {
				if id, ok := m.modView.SelectedModuleID(); ok {
					cmds = append(cmds, m.readView.OpenModule(id, 0))
				}
			}
		case "left":
			if m.activeTab == tabReader {
				cmds = append(cmds, m.readView.PrevItem())
			}
		case "right":
			if m.activeTab == tabReader {
				cmds = append(cmds, m.readView.NextItem())
			}
		case "a":
			if m.activeTab == tabReader {
				cmds = append(cmds, m.readView.AdvanceCurrent())
			}
		case "e":
			if m.activeTab == tabReader {
				cmds = append(cmds, m.readView.LaunchCurrent())
			}
		case "y":
			if m.activeTab == tabReader {
				cmds = append(cmds, m.readView.CopyCurrent())
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabModules:
		m.modView, tabCmd = m.modView.Update(msg)
	case tabReader:
		m.readView, tabCmd = m.readView.Update(msg)
	case tabProgress:
		m.progView, tabCmd = m.progView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	// Load results must reach their view even when another tab is active.
	switch msg.(type) {
	case modulesview.ModulesLoadedMsg, modulesview.DetailLoadedMsg:
		if m.activeTab != tabModules {
			m.modView, tabCmd = m.modView.Update(msg)
			cmds = append(cmds, tabCmd)
		}
	case progressview.SummaryLoadedMsg:
		if m.activeTab != tabProgress {
			m.progView, tabCmd = m.progView.Update(msg)
			cmds = append(cmds, tabCmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabModules:
		return m.modView.View()
	case tabReader:
		return m.readView.View()
	case tabProgress:
		return m.progView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "microlearn  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.hasActive {
		left = theme.Hot.Render("● "+m.activeSession.ModuleTitle) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	selected := m.selectedModule()

	switch parts[0] {
	case "session:start":
		if selected == "" {
			m.status = "no module selected"
			return m, nil
		}
		goal := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
		return m, m.startSessionCmd(selected, goal)

	case "session:end":
		if len(parts) < 3 {
			m.status = "usage: session:end <delta> <outcome>"
			return m, nil
		}
		delta, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid delta"
			return m, nil
		}
		outcome := strings.TrimSpace(strings.TrimPrefix(input, parts[0]+" "+parts[1]+" "))
		return m, m.endSessionCmd(delta, outcome)

	case "reader:open":
		if selected == "" {
			m.status = "no module selected"
			return m, nil
		}
		index := 0
		if len(parts) >= 2 {
			if i, err := strconv.Atoi(parts[1]); err == nil {
				index = i
			}
		}
		return m, m.readView.OpenModule(selected, index)

	case "reader:advance":
		return m, m.readView.AdvanceCurrent()

	case "reader:external":
		return m, m.readView.LaunchCurrent()

	case "progress:set":
		if selected == "" || len(parts) < 2 {
			m.status = "usage: progress:set <percent>"
			return m, nil
		}
		value, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid percent"
			return m, nil
		}
		return m, m.updateProgressCmd(selected, value)

	case "progress:complete":
		if selected == "" {
			m.status = "no module selected"
			return m, nil
		}
		return m, m.completeCmd(selected)

	case "quiz:score":
		if selected == "" || len(parts) < 2 {
			m.status = "usage: quiz:score <score>"
			return m, nil
		}
		score, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid score"
			return m, nil
		}
		return m, m.quizCmd(selected, score)

	case "progress:summary":
		m.activeTab = tabProgress
		return m, m.progView.Reload()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// selectedModule is the module shown in the reader on the Reader tab and the
// list selection everywhere else.
func (m Model) selectedModule() string {
	if m.activeTab == tabReader && m.readView.ModuleID() != "" {
		return m.readView.ModuleID()
	}
	id, _ := m.modView.SelectedModuleID()
	return id
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.modView, _ = m.modView.Update(sz)
	m.readView, _ = m.readView.Update(sz)
	m.progView, _ = m.progView.Update(sz)
}

func (m Model) refreshCmds() []tea.Cmd {
	return []tea.Cmd{m.modView.Reload(), m.progView.Reload()}
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadActiveCmd() tea.Cmd {
	return func() tea.Msg {
		active, err := m.session.GetActive(m.ctx)
		return activeLoadedMsg{active: active, err: err}
	}
}

func (m Model) loadCurrentCmd() tea.Cmd {
	return func() tea.Msg {
		module, err := m.learning.CurrentModule(m.ctx)
		return currentLoadedMsg{module: module, err: err}
	}
}

func (m Model) startSessionCmd(moduleID, goal string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Start(m.ctx, moduleID, goal)
		if err != nil {
			return sessionStartedMsg{err: err}
		}
		return sessionStartedMsg{active: sessiondto.ActiveSessionOutput{
			SessionID:   out.SessionID,
			ModuleID:    out.ModuleID,
			ModuleTitle: out.ModuleTitle,
			StartedAt:   out.StartedAt,
			Goal:        goal,
		}}
	}
}

func (m Model) endSessionCmd(delta int, outcome string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.End(m.ctx, "", outcome, delta)
		return sessionEndedMsg{out: out, err: err}
	}
}

func (m Model) updateProgressCmd(moduleID string, value int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.learning.UpdateProgress(m.ctx, moduleID, value)
		return progressChangedMsg{verb: "progress", out: out, err: err}
	}
}

func (m Model) completeCmd(moduleID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.learning.CompleteModule(m.ctx, moduleID)
		return progressChangedMsg{verb: "completed", out: out, err: err}
	}
}

func (m Model) quizCmd(moduleID string, score int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.learning.RecordQuizScore(m.ctx, moduleID, score)
		return progressChangedMsg{verb: "quiz", out: out, err: err}
	}
}
