package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/mergepane/internal/merge"
	"github.com/chojs23/mergepane/internal/scrollsync"
)

const (
	connectorSelected = ">"
	connectorGap      = "+"
)

type lineInfo struct {
	text      string
	highlight *lipgloss.Style
	selected  bool
	gap       bool
}

// paneRange returns the chunk's range in the given pane.
func paneRange(c merge.Chunk, pane scrollsync.Pane) (merge.LineRange, bool) {
	switch pane {
	case scrollsync.Left:
		return c.Range(merge.SideLeft)
	case scrollsync.Right:
		return c.Range(merge.SideRight)
	}
	return c.BaseRange, true
}

// buildPaneLines annotates doc with the chunks that touch it in pane.
func buildPaneLines(st styles, doc []string, chunks []merge.Chunk, pane scrollsync.Pane, selectedID string) []lineInfo {
	lines := make([]lineInfo, len(doc))
	for i, text := range doc {
		lines[i] = lineInfo{text: text}
	}

	for _, c := range chunks {
		r, ok := paneRange(c, pane)
		if !ok {
			continue
		}
		selected := c.ID == selectedID
		if r.Empty() {
			at := r.Start
			if at >= len(lines) {
				at = len(lines) - 1
			}
			if at >= 0 {
				lines[at].gap = true
				lines[at].selected = lines[at].selected || selected
			}
			continue
		}
		style := st.forKind(c.Kind)
		for i := r.Start; i <= r.End && i < len(lines); i++ {
			lines[i].highlight = &style
			lines[i].selected = selected
		}
	}
	return lines
}

func renderLines(st styles, lines []lineInfo) string {
	if len(lines) == 0 {
		return ""
	}

	width := len(fmt.Sprintf("%d", len(lines)))
	var b strings.Builder
	for i, line := range lines {
		connector := " "
		connectorStyle := st.lineNumber
		switch {
		case line.selected:
			connector = connectorSelected
			if line.gap {
				connector = connectorGap
			}
			connectorStyle = st.selectedMarker
		case line.gap:
			connector = connectorGap
			connectorStyle = st.gapMarker
		}

		style := st.text
		if line.highlight != nil {
			style = *line.highlight
		}
		if line.selected {
			style = style.Bold(true)
		}

		b.WriteString(st.lineNumber.Render(fmt.Sprintf("%*d", width, i+1)))
		b.WriteString(" " + connectorStyle.Render(connector) + " ")
		b.WriteString(style.Render(line.text))
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
