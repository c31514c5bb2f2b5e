package diag

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/width"
)

// Render writes all diagnostics of the sink to w. For diagnostics with a known
// position, the offending source line is shown with a caret under the column.
//
//     1:5: error: variable "y" does not exist.
//       x + y
//           ^
//
func (s *Sink) Render(w io.Writer, src string) error {
	lines := strings.Split(src, "\n")
	for _, d := range s.entries {
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return err
		}
		if !d.Pos.IsKnown() || d.Pos.Line > len(lines) {
			continue
		}
		line := strings.TrimRight(lines[d.Pos.Line-1], "\r")
		if _, err := fmt.Fprintf(w, "  %s\n  %s^\n", line, caretIndent(line, d.Pos.Column)); err != nil {
			return err
		}
	}
	return nil
}

// caretIndent creates the whitespace in front of a caret pointing to rune column
// col of line. Tabs are kept, wide runes occupy two cells.
func caretIndent(line string, col int) string {
	var b strings.Builder
	c := 1
	for _, r := range line {
		if c >= col {
			break
		}
		switch {
		case r == '\t':
			b.WriteByte('\t')
		case isWide(r):
			b.WriteString("  ")
		default:
			b.WriteByte(' ')
		}
		c++
	}
	return b.String()
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}
