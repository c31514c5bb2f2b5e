/*
Package desugar implements the semantic actions of the expression grammar.

The parser calls an action whenever it has recognized a construct. Actions
resolve variables and functions, infer types, desugar operators on
non-scalar operands into function calls, and report problems to a
diagnostics sink.

Actions report success in one of two ways. Actions which may block a parse
return a boolean pass flag: if it is false, the grammar rule has to fail.
All other actions always produce a node, possibly of ill-formed type, and
leave it to later checks to reject it.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package desugar

import (
	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/gmexpr/ast"
	"github.com/npillmayer/gmexpr/diag"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gmexpr.desugar'.
func tracer() tracing.Trace {
	return tracing.Select("gmexpr.desugar")
}

// SymbolTable resolves variable names to their declared types.
type SymbolTable interface {
	Lookup(name string) (gmexpr.ExprType, bool)
}

// Resolver resolves function calls to their result types. If a call cannot be
// resolved, the error's message is reported as a diagnostic.
type Resolver interface {
	Resolve(name string, args []gmexpr.ExprType) (gmexpr.ExprType, error)
}

// Actions bundles the collaborators of semantic actions for one parse.
type Actions struct {
	Vars     SymbolTable
	Registry Resolver
	Sink     *diag.Sink
}

// New creates semantic actions. All arguments are required.
func New(vars SymbolTable, reg Resolver, sink *diag.Sink) *Actions {
	if vars == nil || reg == nil || sink == nil {
		panic("desugar: semantic actions need symbol table, registry and sink")
	}
	return &Actions{Vars: vars, Registry: reg, Sink: sink}
}

// Variable resolves a variable reference. An undeclared variable blocks the parse.
func (a *Actions) Variable(pos diag.Position, name string) (ast.Expression, bool) {
	typ, ok := a.Vars.Lookup(name)
	if !ok {
		a.Sink.Errorf(pos, diag.Semantic, "variable %q does not exist.", name)
		return nil, false
	}
	return ast.NewVariable(name, typ), true
}

// IntLiteral creates an integer literal.
func (a *Actions) IntLiteral(pos diag.Position, v int) ast.Expression {
	return ast.NewIntLiteral(v)
}

// DoubleLiteral creates a real literal.
func (a *Actions) DoubleLiteral(pos diag.Position, v float64) ast.Expression {
	return ast.NewDoubleLiteral(v)
}

// ArrayLiteral creates an array literal from its elements. Element type
// mismatches make the literal ill-formed.
func (a *Actions) ArrayLiteral(pos diag.Position, elements []ast.Expression) ast.Expression {
	lit := ast.NewArrayLiteral(elements)
	switch {
	case len(elements) == 0:
		a.Sink.Infof(pos, diag.Advisory, "empty array literal defaults to type %s", lit.Type())
	case lit.Mismatch() >= 0:
		i := lit.Mismatch()
		if el := elements[i].Type(); el.IsIllFormed() {
			a.Sink.Errorf(pos, diag.Semantic, "array literal element %d is ill formed", i)
		} else {
			a.Sink.Errorf(pos, diag.Semantic,
				"array literal elements must share one type; element %d has type %s, expected %s",
				i, el, elements[0].Type())
		}
	}
	return lit
}

// Call creates a function call and resolves its result type. Resolution
// failures are reported and yield an ill-formed call.
// Calls with ill-formed arguments are ill-formed without further notice, as the
// arguments have been reported already.
func (a *Actions) Call(pos diag.Position, name string, args []ast.Expression) ast.Expression {
	types := ast.ArgTypes(args)
	for _, t := range types {
		if t.IsIllFormed() {
			tracer().Debugf("call of %s with ill-formed argument not resolved", name)
			return ast.NewCall(name, args, gmexpr.IllFormedType)
		}
	}
	result, err := a.Registry.Resolve(name, types)
	if err != nil {
		a.Sink.Errorf(pos, diag.Resolution, "%s", err.Error())
		return ast.NewCall(name, args, gmexpr.IllFormedType)
	}
	return ast.NewCall(name, args, result)
}

// Index applies groups of indices to a base expression. If the indices do not
// fit the type of the base, the parse is blocked.
func (a *Actions) Index(pos diag.Position, base ast.Expression, dims [][]ast.Expression) (ast.Expression, bool) {
	ix := ast.NewIndex(base, dims)
	if ix.Type().IsIllFormed() {
		a.Sink.Errorf(pos, diag.Semantic, "indexes inappropriate for expression.")
		return ix, false
	}
	return ix, true
}

// ValidateIntIndex checks that an index expression denotes an integer.
func (a *Actions) ValidateIntIndex(pos diag.Position, e ast.Expression) bool {
	if !e.Type().IsPrimitiveInt() {
		a.Sink.Errorf(pos, diag.Semantic, "expression denoting integer required; found type=%s", e.Type())
		return false
	}
	return true
}

// ValidateWellFormed checks that an expression is not ill-formed.
func (a *Actions) ValidateWellFormed(pos diag.Position, e ast.Expression) bool {
	if e.Type().IsIllFormed() {
		a.Sink.Errorf(pos, diag.Semantic, "expression is ill formed")
		return false
	}
	return true
}
