package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/bravuralion/td2-chat-translator/internal/feed"
	"github.com/bravuralion/td2-chat-translator/internal/prefs"
	"github.com/bravuralion/td2-chat-translator/internal/state"
	"github.com/bravuralion/td2-chat-translator/internal/translate"
)

// Controller is the part of the feed the UI drives. *feed.Feed implements it.
type Controller interface {
	Settings() feed.Settings
	SetLanguage(language string)
	SetBackend(backend translate.Backend)
	DriverWarnings() bool
	SetDriverWarnings(on bool)
	Close(path string)
	Manual(ctx context.Context, text string) error
}

var _ Controller = (*feed.Feed)(nil)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *state.Store
	Controller Controller
	Logger     *zap.Logger
	PollTick   time.Duration
	Prefs      prefs.Prefs
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	store     *state.Store
	ctrl      Controller
	logger    *zap.Logger
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	keys      keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	snapshot     state.Snapshot
	rendered     uint64
	activeTab    string
	wantTab      string // selected once it appears in a snapshot
	showOriginal bool

	viewport viewport.Model
	follow   bool

	overlay      bool
	overlayLines int

	input       textinput.Model
	inputActive bool

	showHelp  bool
	status    string
	statusExp time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p := opts.Prefs
	if p.Theme == "" {
		p.Theme = prefs.Defaults().Theme
	}
	if p.OverlayLines <= 0 {
		p.OverlayLines = prefs.Defaults().OverlayLines
	}

	ti := textinput.New()
	ti.Placeholder = "Text to translate..."
	ti.Prompt = "/ "
	ti.CharLimit = 500

	return Model{
		ctx:          ctx,
		store:        opts.Store,
		ctrl:         opts.Controller,
		logger:       logger,
		prefs:        p,
		prefsPath:    opts.PrefsPath,
		pollTick:     pollTick,
		keys:         DefaultKeyMap(),
		theme:        GetTheme(p.Theme),
		showOriginal: p.ShowOriginal != nil && *p.ShowOriginal,
		follow:       true,
		overlayLines: clamp(p.OverlayLines, MinOverlayLines, MaxOverlayLines),
		input:        ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, m.contentHeight())
		}
		m.ready = true
		m.input.Width = max(m.width-4, 10)
		m.refreshViewport(true)
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		if m.status != "" && time.Time(msg).After(m.statusExp) {
			m.status = ""
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		snap := state.Snapshot(msg)
		changed := snap.Revision != m.snapshot.Revision
		m.snapshot = snap
		m.ensureActiveTab()
		if changed {
			m.refreshViewport(false)
		}
		return m, nil

	case manualDoneMsg:
		if msg.err != nil {
			m.setStatus("Translation failed: " + msg.err.Error())
		}
		m.wantTab = state.LiveTab
		if m.store == nil {
			return m, nil
		}
		return m, fetchSnapshotCmd(m.store)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.overlay {
		return m.renderOverlay()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.inputActive {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.refreshViewport(true)

	case key.Matches(msg, m.keys.NextTab):
		m.cycleTab(1)

	case key.Matches(msg, m.keys.PrevTab):
		m.cycleTab(-1)

	case key.Matches(msg, m.keys.CloseTab):
		if m.activeTab != "" && m.ctrl != nil {
			m.ctrl.Close(m.activeTab)
			m.setStatus("Closed " + m.activeTitle())
		}

	case key.Matches(msg, m.keys.ToggleOriginal):
		m.showOriginal = !m.showOriginal
		show := m.showOriginal
		m.prefs.ShowOriginal = &show
		m.savePrefs()
		m.refreshViewport(true)

	case key.Matches(msg, m.keys.CycleLanguage):
		if m.ctrl != nil {
			lang := translate.NextLanguage(m.ctrl.Settings().Language)
			m.ctrl.SetLanguage(lang)
			m.prefs.Language = lang
			m.savePrefs()
			m.setStatus("Language: " + lang)
		}

	case key.Matches(msg, m.keys.CycleBackend):
		if m.ctrl != nil {
			backend := m.ctrl.Settings().Backend.Next()
			m.ctrl.SetBackend(backend)
			m.prefs.Backend = backend.Short()
			m.savePrefs()
			m.setStatus("Backend: " + backend.String())
		}

	case key.Matches(msg, m.keys.ToggleWarnings):
		if m.ctrl != nil {
			on := !m.ctrl.DriverWarnings()
			m.ctrl.SetDriverWarnings(on)
			m.prefs.DriverWarnings = &on
			m.savePrefs()
			if on {
				m.setStatus("Driver warnings on")
			} else {
				m.setStatus("Driver warnings off")
			}
		}

	case key.Matches(msg, m.keys.ManualInput):
		m.inputActive = true
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.ToggleOverlay):
		m.overlay = !m.overlay

	case key.Matches(msg, m.keys.MoreLines):
		m.setOverlayLines(m.overlayLines + 1)

	case key.Matches(msg, m.keys.FewerLines):
		m.setOverlayLines(m.overlayLines - 1)

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		m.follow = m.viewport.AtBottom()
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		m.follow = m.viewport.AtBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		m.follow = m.viewport.AtBottom()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		m.follow = m.viewport.AtBottom()
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		m.follow = false
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		m.follow = true
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.inputActive = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		text := strings.TrimSpace(m.input.Value())
		m.inputActive = false
		m.input.Blur()
		m.input.SetValue("")
		if text == "" || m.ctrl == nil {
			return m, nil
		}
		m.setStatus("Translating...")
		return m, manualCmd(m.ctx, m.ctrl, text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) cycleTab(step int) {
	tabs := m.snapshot.Tabs
	if len(tabs) == 0 {
		return
	}
	idx := m.activeIndex()
	idx = (idx + step + len(tabs)) % len(tabs)
	m.activeTab = tabs[idx].ID
	m.follow = true
	m.refreshViewport(true)
}

// ensureActiveTab keeps the selection on an open tab, falling back to the
// last one when the active tab was closed.
func (m *Model) ensureActiveTab() {
	if m.wantTab != "" {
		if _, ok := m.snapshot.Tab(m.wantTab); ok {
			m.activeTab, m.wantTab = m.wantTab, ""
			m.follow = true
			m.refreshViewport(true)
			return
		}
	}
	if _, ok := m.snapshot.Tab(m.activeTab); ok {
		return
	}
	if n := len(m.snapshot.Tabs); n > 0 {
		m.activeTab = m.snapshot.Tabs[n-1].ID
	} else {
		m.activeTab = ""
	}
	m.follow = true
	m.refreshViewport(true)
}

func (m Model) activeIndex() int {
	for i, t := range m.snapshot.Tabs {
		if t.ID == m.activeTab {
			return i
		}
	}
	return 0
}

func (m Model) activeTitle() string {
	if t, ok := m.snapshot.Tab(m.activeTab); ok {
		return t.Title
	}
	return ""
}

func (m *Model) setOverlayLines(n int) {
	n = clamp(n, MinOverlayLines, MaxOverlayLines)
	if n == m.overlayLines {
		return
	}
	m.overlayLines = n
	m.prefs.OverlayLines = n
	m.savePrefs()
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusExp = time.Now().Add(StatusMessageTTL)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

func (m Model) contentHeight() int {
	return max(m.height-chromeRows, 1)
}

// refreshViewport re-renders the active transcript. force re-renders even if
// the snapshot revision was already drawn.
func (m *Model) refreshViewport(force bool) {
	if !m.ready {
		return
	}
	if !force && m.rendered == m.snapshot.Revision {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = m.contentHeight()
	m.viewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Background))

	tab, _ := m.snapshot.Tab(m.activeTab)
	m.viewport.SetContent(m.renderTranscript(tab.Entries, m.width))
	m.rendered = m.snapshot.Revision
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	if m.inputActive {
		b.WriteString(m.renderInput())
	} else {
		b.WriteString(m.renderCommandBar())
	}
	return b.String()
}

func (m Model) renderContent() string {
	if len(m.snapshot.Tabs) == 0 {
		styles := m.theme.Styles()
		msg := styles.MutedText.Render("Waiting for chat logs... press / to translate text by hand.")
		return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, msg)
	}
	return m.viewport.View()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type manualDoneMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func manualCmd(ctx context.Context, ctrl Controller, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ManualTimeout)
		defer cancel()
		return manualDoneMsg{err: ctrl.Manual(ctx, text)}
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is done.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
