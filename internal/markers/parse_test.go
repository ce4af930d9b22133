package markers

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse2Way(t *testing.T) {
	data := []byte("before text\n<<<<<<< HEAD\nours content\n=======\ntheirs content\n>>>>>>> feature\nafter text\n")

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(doc.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(doc.Conflicts))
	}
	if len(doc.Segments) != 3 {
		t.Fatalf("expected 3 segments (text, conflict, text), got %d", len(doc.Segments))
	}

	conflict, ok := doc.Segments[1].(ConflictSegment)
	if !ok {
		t.Fatalf("segment 1 is not ConflictSegment")
	}
	if !reflect.DeepEqual(conflict.Left, []string{"ours content"}) {
		t.Errorf("left mismatch: %q", conflict.Left)
	}
	if !reflect.DeepEqual(conflict.Right, []string{"theirs content"}) {
		t.Errorf("right mismatch: %q", conflict.Right)
	}
	if conflict.HasBase || len(conflict.Base) != 0 {
		t.Errorf("base should be absent, got %q", conflict.Base)
	}
	if conflict.Labels.Left != "HEAD" || conflict.Labels.Right != "feature" {
		t.Errorf("labels mismatch: %+v", conflict.Labels)
	}
}

func TestParseDiff3(t *testing.T) {
	data := []byte("<<<<<<< ours\nours version\n||||||| base\nbase version\n=======\ntheirs version\n>>>>>>> theirs\n")

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(doc.Conflicts))
	}

	conflict, ok := doc.Segments[0].(ConflictSegment)
	if !ok {
		t.Fatalf("segment 0 is not ConflictSegment")
	}
	if !conflict.HasBase {
		t.Fatalf("expected base section")
	}
	if !reflect.DeepEqual(conflict.Base, []string{"base version"}) {
		t.Errorf("base mismatch: %q", conflict.Base)
	}
	if conflict.Labels.Base != "base" {
		t.Errorf("base label mismatch: %q", conflict.Labels.Base)
	}
}

func TestParseMultiple(t *testing.T) {
	data := []byte("first line\n" +
		"<<<<<<< a\nconflict 1 ours\n=======\nconflict 1 theirs\n>>>>>>> b\n" +
		"middle text\n" +
		"<<<<<<< a\nconflict 2 ours\n=======\nconflict 2 theirs\n>>>>>>> b\n" +
		"last line")

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(doc.Conflicts))
	}
	if doc.Conflicts[0].SegmentIndex != 1 || doc.Conflicts[1].SegmentIndex != 3 {
		t.Fatalf("unexpected conflict refs: %+v", doc.Conflicts)
	}

	last, ok := doc.Segments[4].(TextSegment)
	if !ok || !reflect.DeepEqual(last.Lines, []string{"last line"}) {
		t.Errorf("trailing text mismatch: %#v", doc.Segments[4])
	}
}

func TestParseFalsePositive(t *testing.T) {
	data := []byte("comment <<<<<<< not a conflict\nplain\n")

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Conflicts) != 0 {
		t.Errorf("expected 0 conflicts, got %d", len(doc.Conflicts))
	}
	if len(doc.Segments) != 1 {
		t.Fatalf("expected 1 text segment, got %d", len(doc.Segments))
	}
}

func TestParseMalformed(t *testing.T) {
	tests := map[string]string{
		"no mid":           "<<<<<<< a\nleft\n>>>>>>> b\n",
		"no end":           "<<<<<<< a\nleft\n=======\nright\n",
		"base without mid": "<<<<<<< a\nleft\n||||||| base\nbase\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			if !errors.Is(err, ErrMalformedConflict) {
				t.Errorf("expected ErrMalformedConflict, got %v", err)
			}
		})
	}
}

func TestParseCRLF(t *testing.T) {
	data := []byte("line\r\n<<<<<<< a\r\nleft\r\n=======\r\nright\r\n>>>>>>> b\r\n")

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(doc.Conflicts))
	}

	text := doc.Segments[0].(TextSegment)
	if text.Lines[0] != "line\r" {
		t.Errorf("text segment should keep the carriage return, got %q", text.Lines[0])
	}
	conflict := doc.Segments[1].(ConflictSegment)
	if conflict.Labels.Right != "b" {
		t.Errorf("label should not carry the carriage return, got %q", conflict.Labels.Right)
	}
}

func TestIsResolved(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		resolved bool
	}{
		{"no_conflict", "hello\nworld\n", true},
		{"has_conflict", "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n", false},
		{"false_positive", "comment <<<<<<< not a conflict\n", true},
		{"malformed", "<<<<<<< HEAD\nno end marker\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsResolved([]byte(tt.input))
			if result != tt.resolved {
				t.Errorf("IsResolved(%q) = %v, want %v", tt.name, result, tt.resolved)
			}
		})
	}
}
