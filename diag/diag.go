/*
Package diag collects diagnostics produced while reading and type-checking
expressions.

Diagnostics are accumulated in a Sink in the order they are produced. A
diagnostic by itself never stops a parse; whether a problem is fatal is
decided by the grammar rule that detected it. Severities are informational
only, they let clients filter and render messages.

Parsers try alternatives and may abandon some of them. Mark and Rewind let a
parser drop the diagnostics of an alternative it did not commit to.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package diag

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gmexpr.diag'.
func tracer() tracing.Trace {
	return tracing.Select("gmexpr.diag")
}

// Severity of a diagnostic.
type Severity int8

// Severities, ordered by importance.
const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Category tells which phase detected a problem.
type Category int8

// Categories of diagnostics.
const (
	Lexical    Category = iota // unreadable input characters
	Syntax                     // input does not match the grammar
	Semantic                   // symbol or type errors
	Resolution                 // function overload resolution failed
	Advisory                   // hints which do not indicate an error
)

func (c Category) String() string {
	switch c {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	case Resolution:
		return "resolution"
	case Advisory:
		return "advisory"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Position is a location in the source text. Offset is a byte offset, Line and
// Column count from 1; Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// IsKnown is false for the zero position.
func (p Position) IsKnown() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsKnown() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Diagnostic is a single message about the source text.
type Diagnostic struct {
	Severity Severity
	Category Category
	Pos      Position
	Message  string
}

func (d Diagnostic) String() string {
	if d.Pos.IsKnown() {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// --- Sink ------------------------------------------------------------------

// Sink is an ordered, append-only collection of diagnostics. The only way to
// remove entries is to rewind to an earlier mark.
//
// A sink belongs to a single parse and is not safe for concurrent use.
type Sink struct {
	entries []Diagnostic
}

// NewSink creates an empty diagnostics sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends a diagnostic.
func (s *Sink) Add(d Diagnostic) {
	tracer().P("cat", d.Category.String()).Debugf("%s", d)
	s.entries = append(s.entries, d)
}

// Infof appends an informational message.
func (s *Sink) Infof(pos Position, cat Category, format string, args ...interface{}) {
	s.Add(Diagnostic{Severity: Info, Category: cat, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning.
func (s *Sink) Warnf(pos Position, cat Category, format string, args ...interface{}) {
	s.Add(Diagnostic{Severity: Warning, Category: cat, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Errorf appends an error message.
func (s *Sink) Errorf(pos Position, cat Category, format string, args ...interface{}) {
	s.Add(Diagnostic{Severity: Error, Category: cat, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Mark returns a handle to the current end of the sink.
func (s *Sink) Mark() int {
	return len(s.entries)
}

// Rewind drops every diagnostic added after mark m and returns the dropped ones.
func (s *Sink) Rewind(m int) []Diagnostic {
	if m < 0 || m >= len(s.entries) {
		return nil
	}
	dropped := make([]Diagnostic, len(s.entries)-m)
	copy(dropped, s.entries[m:])
	s.entries = s.entries[:m]
	tracer().Debugf("dropped %d diagnostic(s) of an abandoned alternative", len(dropped))
	return dropped
}

// Len returns the number of diagnostics collected so far.
func (s *Sink) Len() int {
	return len(s.entries)
}

// All returns a copy of all diagnostics, in the order of their addition.
func (s *Sink) All() []Diagnostic {
	all := make([]Diagnostic, len(s.entries))
	copy(all, s.entries)
	return all
}

// Count returns the number of diagnostics with a given severity.
func (s *Sink) Count(sev Severity) int {
	n := 0
	for _, d := range s.entries {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors is true if at least one diagnostic has severity Error.
func (s *Sink) HasErrors() bool {
	return s.Count(Error) > 0
}

// Filter returns the diagnostics satisfying a predicate.
func (s *Sink) Filter(pred func(Diagnostic) bool) []Diagnostic {
	var r []Diagnostic
	for _, d := range s.entries {
		if pred(d) {
			r = append(r, d)
		}
	}
	return r
}
