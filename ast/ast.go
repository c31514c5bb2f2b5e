/*
Package ast defines the typed abstract syntax tree for expressions.

Every node carries its type, computed when the node is constructed and never
changed afterwards. Nodes are created by the constructors of this package;
an expression tree owns its children exclusively and contains no cycles.

Operators on vectors and matrices never appear as operator nodes: they are
desugared into Call nodes for the corresponding library function (see package
desugar). Operator nodes (Binary and Unary) only occur for scalar operands.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ast

import (
	"fmt"

	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gmexpr.ast'.
func tracer() tracing.Trace {
	return tracing.Select("gmexpr.ast")
}

// Expression is the interface of all AST nodes.
type Expression interface {
	Type() gmexpr.ExprType // type, stamped at construction time
	Kind() Kind            // variant of the node
	Children() []Expression
}

// Kind enumerates the variants of Expression.
type Kind int8

// Node kinds
const (
	KindInt Kind = iota
	KindDouble
	KindArray
	KindVariable
	KindIndex
	KindCall
	KindUnary
	KindBinary
)

var kindNames = []string{"int", "real", "array", "variable", "index", "call", "unary", "binary"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// --- Literals --------------------------------------------------------------

// IntLiteral is an integer constant.
type IntLiteral struct {
	Value int
}

// NewIntLiteral creates an integer literal of type int.
func NewIntLiteral(v int) *IntLiteral {
	return &IntLiteral{Value: v}
}

// Type is always int.
func (lit *IntLiteral) Type() gmexpr.ExprType { return gmexpr.IntType }

// Kind returns KindInt.
func (lit *IntLiteral) Kind() Kind { return KindInt }

// Children returns nil.
func (lit *IntLiteral) Children() []Expression { return nil }

// DoubleLiteral is a real-valued constant.
type DoubleLiteral struct {
	Value float64
}

// NewDoubleLiteral creates a literal of type real.
func NewDoubleLiteral(v float64) *DoubleLiteral {
	return &DoubleLiteral{Value: v}
}

// Type is always real.
func (lit *DoubleLiteral) Type() gmexpr.ExprType { return gmexpr.DoubleType }

// Kind returns KindDouble.
func (lit *DoubleLiteral) Kind() Kind { return KindDouble }

// Children returns nil.
func (lit *DoubleLiteral) Children() []Expression { return nil }

// ArrayLiteral is a literal array of expressions, written a__[e1 e2 ...].
type ArrayLiteral struct {
	Elements []Expression
	typ      gmexpr.ExprType
	mismatch int
}

// NewArrayLiteral creates an array literal. Its type adds one array dimension to
// the type of its elements. All elements must share the type of the first one;
// otherwise the literal is ill-formed, and Mismatch reports the first offending
// element. Ill-formedness of any element makes the literal ill-formed, too.
// An empty literal has type real[].
func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	lit := &ArrayLiteral{Elements: elements, mismatch: -1}
	if len(elements) == 0 {
		lit.typ = gmexpr.Type(gmexpr.Double, 1)
		return lit
	}
	first := elements[0].Type()
	lit.typ = gmexpr.Type(first.Base, first.Dims+1)
	for i, el := range elements {
		if el.Type().IsIllFormed() || !el.Type().Equals(first) {
			lit.typ = gmexpr.IllFormedType
			if lit.mismatch < 0 {
				lit.mismatch = i
			}
		}
	}
	return lit
}

// Type is the element type with an additional array dimension, or ill-formed.
func (lit *ArrayLiteral) Type() gmexpr.ExprType { return lit.typ }

// Kind returns KindArray.
func (lit *ArrayLiteral) Kind() Kind { return KindArray }

// Children returns the elements.
func (lit *ArrayLiteral) Children() []Expression { return lit.Elements }

// Mismatch returns the index of the first element which does not agree with
// the type of the first element, or -1.
func (lit *ArrayLiteral) Mismatch() int { return lit.mismatch }

// --- Variables, indexing and calls -----------------------------------------

// Variable is a reference to a declared variable.
type Variable struct {
	Name string
	typ  gmexpr.ExprType
}

// NewVariable creates a variable reference with the declared type of the variable.
func NewVariable(name string, declared gmexpr.ExprType) *Variable {
	return &Variable{Name: name, typ: declared}
}

// Type is the declared type.
func (v *Variable) Type() gmexpr.ExprType { return v.typ }

// Kind returns KindVariable.
func (v *Variable) Kind() Kind { return KindVariable }

// Children returns nil.
func (v *Variable) Children() []Expression { return nil }

// Index applies one or more groups of indices to a base expression, as in
// x[i, j][k].
type Index struct {
	Base Expression
	Dims [][]Expression
	typ  gmexpr.ExprType
}

// NewIndex creates an indexing expression. Its type is inferred by IndexType;
// clients have to check for ill-formed results.
func NewIndex(base Expression, dims [][]Expression) *Index {
	return &Index{Base: base, Dims: dims, typ: IndexType(base.Type(), dims)}
}

// Type is the type of the base, reduced by the applied indices.
func (ix *Index) Type() gmexpr.ExprType { return ix.typ }

// Kind returns KindIndex.
func (ix *Index) Kind() Kind { return KindIndex }

// Children returns the base, followed by all indices in order.
func (ix *Index) Children() []Expression {
	ch := []Expression{ix.Base}
	for _, group := range ix.Dims {
		ch = append(ch, group...)
	}
	return ch
}

// IndexCount returns the total number of indices over all groups.
func (ix *Index) IndexCount() int {
	return countIndices(ix.Dims)
}

// Call is a function call with a resolved result type.
type Call struct {
	Name string
	Args []Expression
	typ  gmexpr.ExprType
}

// NewCall creates a function call of a given result type. Resolving the type
// is the business of the function registry.
func NewCall(name string, args []Expression, result gmexpr.ExprType) *Call {
	return &Call{Name: name, Args: args, typ: result}
}

// Type is the result type of the resolved signature, or ill-formed.
func (c *Call) Type() gmexpr.ExprType { return c.typ }

// Kind returns KindCall.
func (c *Call) Kind() Kind { return KindCall }

// Children returns the arguments.
func (c *Call) Children() []Expression { return c.Args }

// ArgTypes returns the types of the arguments, in order.
func ArgTypes(args []Expression) []gmexpr.ExprType {
	types := make([]gmexpr.ExprType, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}
	return types
}

// --- Operators on scalars --------------------------------------------------

// UnaryOp is a prefix operator.
type UnaryOp int8

// Prefix operators
const (
	Negate     UnaryOp = iota // -x
	LogicalNot                // !x
)

func (op UnaryOp) String() string {
	if op == LogicalNot {
		return "!"
	}
	return "-"
}

// Unary is a prefix operator applied to an operand.
type Unary struct {
	Op      UnaryOp
	Operand Expression
	typ     gmexpr.ExprType
}

// NewNegation creates a negation of a primitive operand, preserving its type.
// Non-primitive operands yield an ill-formed node.
func NewNegation(operand Expression) *Unary {
	typ := operand.Type()
	if !typ.IsPrimitive() {
		typ = gmexpr.IllFormedType
	}
	return &Unary{Op: Negate, Operand: operand, typ: typ}
}

// NewIllFormedNot creates a logical negation which failed to type-check.
// Well-typed logical negations are calls of logical_negation.
func NewIllFormedNot(operand Expression) *Unary {
	return &Unary{Op: LogicalNot, Operand: operand, typ: gmexpr.IllFormedType}
}

// Type is the type of the operand for negation, ill-formed otherwise.
func (u *Unary) Type() gmexpr.ExprType { return u.typ }

// Kind returns KindUnary.
func (u *Unary) Kind() Kind { return KindUnary }

// Children returns the operand.
func (u *Unary) Children() []Expression { return []Expression{u.Operand} }

// BinaryOp is an arithmetic infix operator on scalars.
type BinaryOp int8

// Infix operators on scalars
const (
	Add      BinaryOp = iota // a + b
	Subtract                 // a - b
	Multiply                 // a * b
	Divide                   // a / b
	LeftDiv                  // a \ b, i.e. b / a
)

func (op BinaryOp) String() string {
	return [...]string{"+", "-", "*", "/", "\\"}[op]
}

// Binary is the scalar composition of two primitive operands.
type Binary struct {
	Op          BinaryOp
	Left, Right Expression
	typ         gmexpr.ExprType
}

// NewBinary combines two primitive operands with the usual numeric promotion:
// the result is real if either operand is real, int otherwise.
// Non-primitive operands yield an ill-formed node.
func NewBinary(op BinaryOp, left, right Expression) *Binary {
	return &Binary{
		Op:    op,
		Left:  left,
		Right: right,
		typ:   gmexpr.Promoted(left.Type(), right.Type()),
	}
}

// Type is the promoted type of the operands.
func (b *Binary) Type() gmexpr.ExprType { return b.typ }

// Kind returns KindBinary.
func (b *Binary) Kind() Kind { return KindBinary }

// Children returns left and right operand.
func (b *Binary) Children() []Expression { return []Expression{b.Left, b.Right} }

// --- Traversal -------------------------------------------------------------

// Walk visits the nodes of an expression tree in pre-order. If fn returns false,
// the children of a node are skipped.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, ch := range e.Children() {
		Walk(ch, fn)
	}
}

// Equal compares two expression trees structurally, including node types.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || !a.Type().Equals(b.Type()) {
		return false
	}
	switch x := a.(type) {
	case *IntLiteral:
		return x.Value == b.(*IntLiteral).Value
	case *DoubleLiteral:
		return x.Value == b.(*DoubleLiteral).Value
	case *Variable:
		return x.Name == b.(*Variable).Name
	case *Call:
		if x.Name != b.(*Call).Name {
			return false
		}
	case *Unary:
		if x.Op != b.(*Unary).Op {
			return false
		}
	case *Binary:
		if x.Op != b.(*Binary).Op {
			return false
		}
	case *Index:
		y := b.(*Index)
		if len(x.Dims) != len(y.Dims) {
			return false
		}
		for i := range x.Dims {
			if len(x.Dims[i]) != len(y.Dims[i]) {
				return false
			}
		}
	}
	cha, chb := a.Children(), b.Children()
	if len(cha) != len(chb) {
		return false
	}
	for i := range cha {
		if !Equal(cha[i], chb[i]) {
			return false
		}
	}
	return true
}
