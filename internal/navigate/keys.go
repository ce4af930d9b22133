package navigate

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chojs23/mergepane/internal/merge"
)

// Command is a user intent decoded from a key press.
type Command int

const (
	CmdNone Command = iota
	CmdNext
	CmdPrevious
	CmdApplyLeft
	CmdApplyRight
	CmdKeepBase
	CmdManual
	CmdApplyAllLeft
	CmdApplyAllRight
	CmdUndo
	CmdRedo
	CmdWrite
	CmdFocus
	CmdScrollUp
	CmdScrollDown
	CmdHelp
	CmdQuit
)

// Action maps chunk-level commands to the merge action they perform.
func (c Command) Action() (merge.Action, bool) {
	switch c {
	case CmdApplyLeft:
		return merge.ActionApplyLeft, true
	case CmdApplyRight:
		return merge.ActionApplyRight, true
	case CmdKeepBase:
		return merge.ActionKeepBase, true
	}
	return "", false
}

type KeyMap struct {
	Next          key.Binding
	Previous      key.Binding
	ApplyLeft     key.Binding
	ApplyRight    key.Binding
	KeepBase      key.Binding
	Manual        key.Binding
	ApplyAllLeft  key.Binding
	ApplyAllRight key.Binding
	Undo          key.Binding
	Redo          key.Binding
	Write         key.Binding
	Focus         key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	Help          key.Binding
	Quit          key.Binding
}

var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("n", "down"),
		key.WithHelp("n/dn", "next chunk"),
	),
	Previous: key.NewBinding(
		key.WithKeys("p", "up"),
		key.WithHelp("p/up", "prev chunk"),
	),
	ApplyLeft: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "take left"),
	),
	ApplyRight: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "take right"),
	),
	KeepBase: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "keep base"),
	),
	Manual: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "edit"),
	),
	ApplyAllLeft: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "all left"),
	),
	ApplyAllRight: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "all right"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "redo"),
	),
	Write: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "write"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "focus"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("k"),
		key.WithHelp("k", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("j"),
		key.WithHelp("j", "scroll down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Command decodes a key press. Unbound keys yield CmdNone.
func (k KeyMap) Command(msg tea.KeyMsg) Command {
	switch {
	case key.Matches(msg, k.Next):
		return CmdNext
	case key.Matches(msg, k.Previous):
		return CmdPrevious
	case key.Matches(msg, k.ApplyLeft):
		return CmdApplyLeft
	case key.Matches(msg, k.ApplyRight):
		return CmdApplyRight
	case key.Matches(msg, k.KeepBase):
		return CmdKeepBase
	case key.Matches(msg, k.Manual):
		return CmdManual
	case key.Matches(msg, k.ApplyAllLeft):
		return CmdApplyAllLeft
	case key.Matches(msg, k.ApplyAllRight):
		return CmdApplyAllRight
	case key.Matches(msg, k.Undo):
		return CmdUndo
	case key.Matches(msg, k.Redo):
		return CmdRedo
	case key.Matches(msg, k.Write):
		return CmdWrite
	case key.Matches(msg, k.Focus):
		return CmdFocus
	case key.Matches(msg, k.ScrollUp):
		return CmdScrollUp
	case key.Matches(msg, k.ScrollDown):
		return CmdScrollDown
	case key.Matches(msg, k.Help):
		return CmdHelp
	case key.Matches(msg, k.Quit):
		return CmdQuit
	}
	return CmdNone
}

// ShortHelp and FullHelp satisfy help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.ApplyLeft, k.ApplyRight, k.Write, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.ScrollDown, k.ScrollUp, k.Focus},
		{k.ApplyLeft, k.ApplyRight, k.KeepBase, k.Manual},
		{k.ApplyAllLeft, k.ApplyAllRight, k.Undo, k.Redo},
		{k.Write, k.Help, k.Quit},
	}
}
