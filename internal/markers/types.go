package markers

// Labels name the three sides on rendered marker lines.
type Labels struct {
	Left  string
	Base  string
	Right string
}

var DefaultLabels = Labels{Left: "left", Base: "base", Right: "right"}

type Document struct {
	Segments  []Segment
	Conflicts []ConflictRef
	// NoFinalNewline is set when the last text line has no newline after it.
	// Marker blocks always end in one.
	NoFinalNewline bool
}

type Segment interface{ isSegment() }

type TextSegment struct{ Lines []string }

func (TextSegment) isSegment() {}

type ConflictSegment struct {
	Left  []string
	Base  []string
	Right []string
	// HasBase is set for diff3-style blocks carrying a ||||||| section.
	HasBase bool

	Labels Labels
}

func (ConflictSegment) isSegment() {}

// ConflictRef points to a conflict segment inside Document.Segments.
type ConflictRef struct {
	SegmentIndex int
}
