package markers

import (
	"bytes"

	"github.com/chojs23/mergepane/internal/merge"
)

// FromChunks lays out base as a document in which every conflict chunk is
// replaced by a diff3 conflict segment. Non-conflict chunks keep the base
// text; they are not conflicts, only unapplied changes.
func FromChunks(base, left, right []string, chunks []merge.Chunk, labels Labels) Document {
	var doc Document
	next := 0
	for _, c := range chunks {
		if !c.IsConflict() {
			continue
		}
		if c.BaseRange.Start > next {
			doc.Segments = append(doc.Segments, TextSegment{Lines: merge.Lines(base, merge.LineRange{Start: next, End: c.BaseRange.Start - 1})})
		}
		seg := ConflictSegment{
			Base:    merge.Lines(base, c.BaseRange),
			HasBase: true,
			Labels:  labels,
		}
		if r, ok := c.Range(merge.SideLeft); ok {
			seg.Left = merge.Lines(left, r)
		}
		if r, ok := c.Range(merge.SideRight); ok {
			seg.Right = merge.Lines(right, r)
		}
		doc.Conflicts = append(doc.Conflicts, ConflictRef{SegmentIndex: len(doc.Segments)})
		doc.Segments = append(doc.Segments, seg)
		next = c.BaseRange.Limit()
	}
	if next < len(base) {
		doc.Segments = append(doc.Segments, TextSegment{Lines: merge.Lines(base, merge.LineRange{Start: next, End: len(base) - 1})})
	}
	return doc
}

// Render writes doc back out, with conflict segments as marker blocks.
func Render(doc Document) []byte {
	var out bytes.Buffer
	for _, seg := range doc.Segments {
		switch s := seg.(type) {
		case TextSegment:
			writeLines(&out, s.Lines)
		case ConflictSegment:
			writeMarker(&out, markStart, s.Labels.Left)
			writeLines(&out, s.Left)
			if s.HasBase {
				writeMarker(&out, markBase, s.Labels.Base)
				writeLines(&out, s.Base)
			}
			writeMarker(&out, markMid, "")
			writeLines(&out, s.Right)
			writeMarker(&out, markEnd, s.Labels.Right)
		}
	}
	if doc.NoFinalNewline && endsInText(doc) {
		out.Truncate(out.Len() - 1)
	}
	return out.Bytes()
}

func endsInText(doc Document) bool {
	if len(doc.Segments) == 0 {
		return false
	}
	last, ok := doc.Segments[len(doc.Segments)-1].(TextSegment)
	return ok && len(last.Lines) > 0
}

func writeMarker(out *bytes.Buffer, marker, label string) {
	out.WriteString(marker)
	if label != "" {
		out.WriteByte(' ')
		out.WriteString(label)
	}
	out.WriteByte('\n')
}

func writeLines(out *bytes.Buffer, lines []string) {
	out.WriteString(merge.JoinLines(lines))
}
