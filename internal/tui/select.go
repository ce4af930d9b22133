package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/mergepane/internal/config"
)

var ErrSelectorQuit = errors.New("selector quit")

// FileCandidate is an unmerged path together with the number of conflict
// marker blocks still present in its working tree copy.
type FileCandidate struct {
	Path      string
	Conflicts int
}

func (c FileCandidate) Resolved() bool { return c.Conflicts == 0 }

type fileItem struct{ FileCandidate }

func (f fileItem) Title() string       { return f.Path }
func (f fileItem) Description() string { return "" }
func (f fileItem) FilterValue() string { return f.Path }

type fileItemDelegate struct {
	resolved   lipgloss.Style
	unresolved lipgloss.Style
}

func newFileItemDelegate(st styles) fileItemDelegate {
	return fileItemDelegate{resolved: st.selectorResolved, unresolved: st.selectorUnresolved}
}

func (d fileItemDelegate) Height() int                         { return 1 }
func (d fileItemDelegate) Spacing() int                        { return 0 }
func (d fileItemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

const statusWidth = len("99+ conflicts")

func (d fileItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	file, ok := item.(fileItem)
	if !ok {
		return
	}
	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	status, style := "resolved", d.resolved
	switch {
	case file.Conflicts == 1:
		status, style = "1 conflict", d.unresolved
	case file.Conflicts > 99:
		status, style = "99+ conflicts", d.unresolved
	case file.Conflicts > 1:
		status, style = fmt.Sprintf("%d conflicts", file.Conflicts), d.unresolved
	}
	fmt.Fprint(w, cursor+style.Render(fmt.Sprintf("%*s", statusWidth, status))+"  "+file.Path)
}

type selectKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Filter key.Binding
	Choose key.Binding
	Quit   key.Binding
}

func (k selectKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Filter, k.Choose, k.Quit}
}

func (k selectKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var selectKeys = selectKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "move up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("dn/j", "move down")),
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "resolve")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type fileSelectModel struct {
	list     list.Model
	help     help.Model
	selected string
	err      error
}

func newFileSelectModel(candidates []FileCandidate, st styles) fileSelectModel {
	items := make([]list.Item, 0, len(candidates))
	unresolved := 0
	for _, c := range candidates {
		items = append(items, fileItem{c})
		if !c.Resolved() {
			unresolved++
		}
	}

	l := list.New(items, newFileItemDelegate(st), 0, 0)
	l.Title = fmt.Sprintf("Unmerged files (%d of %d with conflicts)", unresolved, len(candidates))
	l.Styles.Title = st.title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	return fileSelectModel{list: l, help: help.New()}
}

// SelectFile opens a TUI selector and returns the chosen repo-relative path.
func SelectFile(ctx context.Context, candidates []FileCandidate, theme config.Theme) (string, error) {
	program := tea.NewProgram(newFileSelectModel(candidates, newStyles(theme)), tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("file selector: %w", err)
	}

	result, ok := finalModel.(fileSelectModel)
	if !ok {
		return "", fmt.Errorf("file selector returned unexpected model")
	}
	if result.err != nil {
		return "", result.err
	}
	if result.selected == "" {
		return "", fmt.Errorf("no file selected")
	}
	return result.selected, nil
}

func (m fileSelectModel) Init() tea.Cmd {
	return nil
}

func (m fileSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While the filter prompt is open every key belongs to the list.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, selectKeys.Quit):
			m.err = ErrSelectorQuit
			return m, tea.Quit
		case key.Matches(msg, selectKeys.Choose):
			if item, ok := m.list.SelectedItem().(fileItem); ok {
				m.selected = item.Path
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width, max(msg.Height, 5)-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m fileSelectModel) View() string {
	return m.list.View() + "\n" + m.help.View(selectKeys)
}
