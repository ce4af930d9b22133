package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/mergepane/internal/config"
	"github.com/chojs23/mergepane/internal/merge"
)

// styles is the lipgloss rendition of a config.Theme.
type styles struct {
	title              lipgloss.Style
	pane               lipgloss.Style
	focusedPane        lipgloss.Style
	resolvedPane       lipgloss.Style
	header             lipgloss.Style
	footer             lipgloss.Style
	lineNumber         lipgloss.Style
	text               lipgloss.Style
	insert             lipgloss.Style
	delete             lipgloss.Style
	change             lipgloss.Style
	conflict           lipgloss.Style
	selectedMarker     lipgloss.Style
	gapMarker          lipgloss.Style
	statusResolved     lipgloss.Style
	statusUnresolved   lipgloss.Style
	toast              lipgloss.Style
	errorToast         lipgloss.Style
	toastLine          lipgloss.Style
	dim                lipgloss.Style
	selectorResolved   lipgloss.Style
	selectorUnresolved lipgloss.Style
}

func newStyles(theme config.Theme) styles {
	border := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(color)).
			Padding(0, 1)
	}
	block := func(bg, fg string) lipgloss.Style {
		return lipgloss.NewStyle().
			Background(lipgloss.Color(bg)).
			Foreground(lipgloss.Color(fg))
	}

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.TitleFg)).
			Padding(0, 1),
		pane:         border(theme.PaneBorder),
		focusedPane:  border(theme.FocusedPaneBorder),
		resolvedPane: border(theme.ResolvedFg),
		header: lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color(theme.HeaderBg)).
			Foreground(lipgloss.Color(theme.HeaderFg)).
			Padding(0, 2),
		footer: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.FooterBg)).
			Foreground(lipgloss.Color(theme.FooterFg)).
			Padding(0, 2),
		lineNumber: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LineNumberFg)),
		text:       lipgloss.NewStyle().Foreground(lipgloss.Color(theme.TextFg)),
		insert:     block(theme.InsertBg, theme.InsertFg),
		delete:     block(theme.DeleteBg, theme.DeleteFg),
		change:     block(theme.ChangeBg, theme.ChangeFg),
		conflict:   block(theme.ConflictBg, theme.ConflictFg),
		selectedMarker: block(theme.SelectedMarkerBg, theme.SelectedMarkerFg).
			Bold(true),
		gapMarker: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.GapMarkerFg)).
			Bold(true),
		statusResolved: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ResolvedFg)).
			Bold(true),
		statusUnresolved: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.UnresolvedFg)).
			Bold(true),
		toast:      block(theme.ToastBg, theme.ToastFg).Padding(0, 1),
		errorToast: block(theme.ErrorToastBg, theme.ToastFg).Padding(0, 1),
		toastLine: lipgloss.NewStyle().
			Align(lipgloss.Right).
			Padding(0, 2),
		dim:                lipgloss.NewStyle().Foreground(lipgloss.Color(theme.DimForeground)),
		selectorResolved:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ResolvedFg)),
		selectorUnresolved: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.UnresolvedFg)),
	}
}

// forKind picks the highlight for a chunk's lines.
func (s styles) forKind(kind merge.Kind) lipgloss.Style {
	switch kind {
	case merge.KindConflict:
		return s.conflict
	case merge.KindInsert:
		return s.insert
	case merge.KindDelete:
		return s.delete
	default:
		return s.change
	}
}
