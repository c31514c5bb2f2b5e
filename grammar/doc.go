/*
Package grammar parses expressions of the modeling language into typed
expression trees.

The grammar is a precedence ladder, from loosest to tightest binding:

    ||          logical or
    &&          logical and
    == !=       equality
    < <= > >=   comparison
    + -         addition
    * / \ .* ./ multiplication
    - ! +       prefix operators
    [..] '      indexing and transposition (postfix)

Factors are integer and real literals, array literals a__[e1 e2 ...],
function calls f(e1, ...), variables and parenthesized expressions.

Parsing is recursive descent with backtracking between the alternatives of a
factor. Every parse function reports one of three outcomes: it matched, it
did not match (another alternative may be tried, nothing has been consumed),
or it failed (the input is wrong and parsing stops). Once an operator or an
opening bracket has been consumed, a missing operand is a failure rather
than a mismatch.

Semantic actions of package desugar run while parsing: they resolve
variables and functions, infer types and report diagnostics. Diagnostics of
abandoned alternatives are dropped unless the parser is configured to keep
them.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gmexpr.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("gmexpr.grammar")
}
