package merge

import "strings"

// SplitLines splits newline-delimited text into lines. A single trailing
// newline does not produce an extra empty line. Carriage returns stay part
// of the line so CRLF documents round-trip through JoinLines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// JoinLines is the inverse of SplitLines; non-empty output always ends in a
// newline.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// MissingFinalNewline reports whether non-empty text ends without a newline,
// which SplitLines cannot record.
func MissingFinalNewline(text string) bool {
	return text != "" && !strings.HasSuffix(text, "\n")
}
