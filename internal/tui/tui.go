package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chojs23/mergepane/internal/config"
	"github.com/chojs23/mergepane/internal/engine"
	"github.com/chojs23/mergepane/internal/merge"
	"github.com/chojs23/mergepane/internal/navigate"
	"github.com/chojs23/mergepane/internal/resolve"
	"github.com/chojs23/mergepane/internal/scrollsync"
)

const toastDuration = 2 * time.Second

var ErrBackToSelector = errors.New("back to selector")

// paneOrder is the left-to-right screen layout.
var paneOrder = [...]scrollsync.Pane{scrollsync.Left, scrollsync.Base, scrollsync.Right}

type Options struct {
	Theme  config.Theme
	Scroll scrollsync.Config
	Logger zerolog.Logger
}

type model struct {
	ctx     context.Context
	session *engine.Session
	store   *resolve.Store
	nav     *navigate.Controller
	panes   *panes
	keys    navigate.KeyMap
	help    help.Model
	st      styles
	log     zerolog.Logger

	focus    scrollsync.Pane
	ready    bool
	width    int
	height   int
	quitting bool
	toast    string
	toastErr bool
	toastSeq int
	err      error
}

func newModel(ctx context.Context, s *engine.Session, opts Options) model {
	p := newPanes()
	p.aligner = scrollsync.New(p, opts.Scroll, opts.Logger)

	m := model{
		ctx:     ctx,
		session: s,
		store:   s.Store(),
		panes:   p,
		keys:    navigate.DefaultKeyMap,
		help:    help.New(),
		st:      newStyles(opts.Theme),
		log:     opts.Logger,
		focus:   scrollsync.Base,
	}
	m.nav = navigate.New(m.store, p)
	m.refresh()
	return m
}

// Run starts the TUI for the session registered under id.
func Run(ctx context.Context, reg *engine.Registry, id uuid.UUID, opts Options) error {
	s, ok := reg.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", engine.ErrUnknownSession, id)
	}
	m := newModel(ctx, s, opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Check for errors from the model
	if m, ok := finalModel.(model); ok {
		return m.err
	}

	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

type alignTickMsg struct{}

type toastExpiredMsg struct {
	id int
}

type editorFinishedMsg struct {
	err    error
	finish func() ([]string, error)
}

func (m *model) showToast(message string) tea.Cmd {
	m.toast = message
	m.toastErr = false
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: seq}
	})
}

func (m *model) showError(err error) tea.Cmd {
	m.log.Warn().Err(err).Msg("action failed")
	cmd := m.showToast("Error: " + err.Error())
	m.toastErr = true
	return cmd
}

// frame schedules the aligner tick when a scroll asked for one.
func (m model) frame() tea.Cmd {
	if !m.panes.takeTick() {
		return nil
	}
	return tea.Tick(m.panes.aligner.Config().Frame(), func(time.Time) tea.Msg {
		return alignTickMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case alignTickMsg:
		m.panes.aligner.Tick()
		return m, m.frame()

	case toastExpiredMsg:
		if msg.id == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case editorFinishedMsg:
		return m.editorFinished(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 3
		contentHeight := max(m.height-headerHeight-footerHeight-6, 0) // borders + padding
		paneWidth := max((m.width-12)/3, 0)                           // 3 panes with borders

		m.panes.resize(paneWidth, contentHeight)
		m.help.Width = m.width
		m.ready = true
		m.panes.aligner.Reset()
		m.refresh()
		m.panes.notify(scrollsync.Base)
		return m, m.frame()

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.panes.scroll(m.paneAt(msg.X), -3)
		case tea.MouseButtonWheelDown:
			m.panes.scroll(m.paneAt(msg.X), 3)
		default:
			return m, nil
		}
		return m, m.frame()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch c := m.keys.Command(msg); c {
	case navigate.CmdNone:
		return m, nil

	case navigate.CmdQuit:
		if msg.String() != "ctrl+c" {
			m.err = ErrBackToSelector
		}
		m.quitting = true
		return m, tea.Quit

	case navigate.CmdHelp:
		m.help.ShowAll = !m.help.ShowAll

	case navigate.CmdFocus:
		m.focus = nextFocus(m.focus)

	case navigate.CmdScrollUp:
		m.panes.scroll(m.focus, -1)

	case navigate.CmdScrollDown:
		m.panes.scroll(m.focus, 1)

	case navigate.CmdManual:
		return m.openEditor()

	case navigate.CmdApplyAllLeft:
		cmd = m.applyAll(merge.SideLeft)

	case navigate.CmdApplyAllRight:
		cmd = m.applyAll(merge.SideRight)

	case navigate.CmdUndo:
		cmd = m.history(m.store.Undo, "undo")

	case navigate.CmdRedo:
		cmd = m.history(m.store.Redo, "redo")

	case navigate.CmdWrite:
		cmd = m.write()

	default:
		handled, err := m.nav.Handle(c)
		if !handled {
			return m, nil
		}
		if err != nil {
			cmd = m.rejected(c, err)
		}
		m.refresh()
	}

	return m, tea.Batch(cmd, m.frame())
}

// rejected turns an action error into a toast. Illegal and stale actions
// leave the state untouched, so they are reported and otherwise ignored.
func (m *model) rejected(c navigate.Command, err error) tea.Cmd {
	m.log.Debug().Err(err).Int("command", int(c)).Msg("action rejected")

	switch {
	case errors.Is(err, merge.ErrIllegalAction):
		switch c {
		case navigate.CmdApplyLeft:
			return m.showToast("Nothing to apply from left")
		case navigate.CmdApplyRight:
			return m.showToast("Nothing to apply from right")
		case navigate.CmdKeepBase:
			return m.showToast("Cannot keep base on a conflict")
		}
		return m.showToast("Action not allowed here")
	case errors.Is(err, navigate.ErrNoSelection):
		return m.showToast("No chunk selected")
	case errors.Is(err, resolve.ErrStaleChunk):
		return m.showToast("Chunk changed, try again")
	}
	return m.showError(err)
}

func (m *model) applyAll(side merge.Side) tea.Cmd {
	n, err := m.store.ApplyAll(side)
	if err != nil {
		return m.showError(err)
	}
	if n == 0 {
		return m.showToast(fmt.Sprintf("Nothing to apply from %s", side))
	}
	m.nav.Sync(m.store.Chunks())
	m.refresh()
	return m.showToast(fmt.Sprintf("Applied %d chunks from %s", n, side))
}

func (m *model) history(step func() error, verb string) tea.Cmd {
	if err := step(); err != nil {
		if errors.Is(err, resolve.ErrNoHistory) {
			return m.showToast("Nothing to " + verb)
		}
		return m.showError(err)
	}
	m.nav.Sync(m.store.Chunks())
	m.refresh()
	return nil
}

func (m *model) write() tea.Cmd {
	res, err := m.session.Write(m.ctx)
	if errors.Is(err, engine.ErrNoOutput) {
		return m.showToast("No output file; result is printed on exit")
	}
	if err != nil {
		return m.showError(err)
	}

	switch {
	case res.Conflicts > 0:
		return m.showToast(fmt.Sprintf("Saved with %d conflicts left", res.Conflicts))
	case res.Staged:
		return m.showToast("Saved and staged")
	}
	return m.showToast("Saved")
}

// openEditor records manual on the selected chunk and hands the whole base
// to $EDITOR.
func (m model) openEditor() (tea.Model, tea.Cmd) {
	if err := m.nav.Act(merge.ActionManual); err != nil && !errors.Is(err, navigate.ErrNoSelection) {
		return m, m.showError(err)
	}

	name := m.session.Input.OutputPath
	if name == "" {
		name = "merge.txt"
	}
	cmd, finish, err := engine.EditorCommand(name, m.store.Base())
	if err != nil {
		return m, m.showError(err)
	}
	return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err, finish: finish}
	})
}

func (m model) editorFinished(msg editorFinishedMsg) (tea.Model, tea.Cmd) {
	lines, readErr := msg.finish()
	if msg.err != nil {
		return m, m.showError(fmt.Errorf("editor failed: %w", msg.err))
	}
	if readErr != nil {
		return m, m.showError(readErr)
	}
	if err := m.store.SetBase(lines); err != nil {
		return m, m.showError(err)
	}
	m.nav.Sync(m.store.Chunks())
	m.refresh()
	return m, tea.Batch(m.showToast("Base updated from editor"), m.frame())
}

// refresh re-renders every pane from the store and applies a pending
// reveal.
func (m *model) refresh() {
	chunks := m.store.Chunks()
	selected := m.nav.SelectedID()

	docs := [3][]string{
		scrollsync.Base:  m.store.Base(),
		scrollsync.Left:  m.store.Left(),
		scrollsync.Right: m.store.Right(),
	}
	for _, pane := range paneOrder {
		lines := buildPaneLines(m.st, docs[pane], chunks, pane, selected)
		m.panes.setContent(pane, renderLines(m.st, lines), len(lines))
	}
	m.panes.aligner.SetChunks(chunks)

	if m.ready && m.panes.reveal >= 0 {
		m.panes.center(m.panes.reveal)
		m.panes.reveal = -1
	}
}

func (m model) paneAt(x int) scrollsync.Pane {
	if m.width <= 0 {
		return scrollsync.Base
	}
	col := x * len(paneOrder) / m.width
	col = min(max(col, 0), len(paneOrder)-1)
	return paneOrder[col]
}

func nextFocus(p scrollsync.Pane) scrollsync.Pane {
	for i, pane := range paneOrder {
		if pane == p {
			return paneOrder[(i+1)%len(paneOrder)]
		}
	}
	return scrollsync.Base
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.quitting {
		if errors.Is(m.err, ErrBackToSelector) {
			return "\n  Returning to selector...\n"
		}
		return ""
	}

	header := m.st.header.Render(m.headerText())

	labels := m.session.Input.Labels
	unresolved := m.store.Unresolved()

	status := m.st.statusResolved.Render("resolved")
	if unresolved > 0 {
		status = m.st.statusUnresolved.Render(fmt.Sprintf("%d unresolved", unresolved))
	}

	titles := map[scrollsync.Pane]string{
		scrollsync.Left:  m.st.title.Render("LEFT (" + labels.Left + ")"),
		scrollsync.Base:  m.st.title.Render("BASE (" + labels.Base + ")") + " " + status,
		scrollsync.Right: m.st.title.Render("RIGHT (" + labels.Right + ")"),
	}

	var rendered []string
	for _, pane := range paneOrder {
		style := m.st.pane
		switch {
		case pane == m.focus:
			style = m.st.focusedPane
		case pane == scrollsync.Base && unresolved == 0:
			style = m.st.resolvedPane
		}
		rendered = append(rendered, style.Render(titles[pane]+"\n"+m.panes.vp[pane].View()))
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	// Footer
	undoInfo := ""
	if m.store.UndoDepth() > 0 {
		undoInfo = fmt.Sprintf(" | undo: %d", m.store.UndoDepth())
	}
	footerText := m.st.footer.Width(m.width).Render(m.help.View(m.keys) + undoInfo)
	footer := lipgloss.JoinVertical(lipgloss.Left, footerText, m.renderToastLine())

	return lipgloss.JoinVertical(lipgloss.Left, header, panes, footer)
}

func (m model) headerText() string {
	name := m.session.Input.OutputPath
	if name == "" {
		name = m.session.Input.Labels.Base
	} else {
		name = filepath.Base(name)
	}

	chunk, ok := m.nav.Selected()
	if !ok {
		return fmt.Sprintf("%s - no differences left", name)
	}

	text := fmt.Sprintf("%s - Chunk %d/%d (%s)", name, m.nav.Index()+1, m.nav.Len(), chunk.Kind)
	if action, ok := m.store.Recorded(chunk.ID); ok {
		text += " [" + string(action) + "]"
	}
	return text
}

func (m model) renderToastLine() string {
	content := ""
	if m.toast != "" {
		style := m.st.toast
		if m.toastErr {
			style = m.st.errorToast
		}
		content = style.Render(m.toast)
	}
	return m.st.toastLine.Width(m.width).Render(content)
}
