package markers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chojs23/mergepane/internal/merge"
)

var ErrMalformedConflict = errors.New("malformed conflict markers")

const (
	markStart = "<<<<<<<"
	markBase  = "|||||||"
	markMid   = "======="
	markEnd   = ">>>>>>>"
)

// Parse splits a file into text segments and conflict segments.
//
// It is strict: if it encounters a start marker, it requires a full, valid
// marker structure (optionally including a diff3 base section).
func Parse(data []byte) (Document, error) {
	doc := Document{NoFinalNewline: merge.MissingFinalNewline(string(data))}
	lines := merge.SplitLines(string(data))

	var text []string
	flush := func() {
		if len(text) == 0 {
			return
		}
		doc.Segments = append(doc.Segments, TextSegment{Lines: text})
		text = nil
	}

	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], markStart) {
			text = append(text, lines[i])
			continue
		}
		flush()

		var seg ConflictSegment
		seg.Labels.Left = label(lines[i], markStart)

		i++
		for ; i < len(lines); i++ {
			if strings.HasPrefix(lines[i], markBase) || strings.HasPrefix(lines[i], markMid) {
				break
			}
			seg.Left = append(seg.Left, lines[i])
		}
		if i >= len(lines) {
			return Document{}, fmt.Errorf("%w: missing separator", ErrMalformedConflict)
		}

		if strings.HasPrefix(lines[i], markBase) {
			seg.HasBase = true
			seg.Labels.Base = label(lines[i], markBase)
			i++
			for ; i < len(lines); i++ {
				if strings.HasPrefix(lines[i], markMid) {
					break
				}
				seg.Base = append(seg.Base, lines[i])
			}
			if i >= len(lines) {
				return Document{}, fmt.Errorf("%w: missing ======= after base", ErrMalformedConflict)
			}
		}

		i++
		for ; i < len(lines); i++ {
			if strings.HasPrefix(lines[i], markEnd) {
				break
			}
			seg.Right = append(seg.Right, lines[i])
		}
		if i >= len(lines) {
			return Document{}, fmt.Errorf("%w: missing end marker", ErrMalformedConflict)
		}
		seg.Labels.Right = label(lines[i], markEnd)

		doc.Conflicts = append(doc.Conflicts, ConflictRef{SegmentIndex: len(doc.Segments)})
		doc.Segments = append(doc.Segments, seg)
	}

	flush()
	return doc, nil
}

func label(line, marker string) string {
	rest := strings.TrimPrefix(line, marker)
	return strings.TrimSpace(rest)
}

// IsResolved returns true if the data contains no conflict markers.
//
// Lines starting with <<<<<<< that do not open a complete block make the
// data malformed, which also counts as unresolved.
func IsResolved(data []byte) bool {
	doc, err := Parse(data)
	if err != nil {
		return false
	}
	return len(doc.Conflicts) == 0
}
