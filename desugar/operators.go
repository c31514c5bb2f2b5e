package desugar

import (
	"github.com/npillmayer/gmexpr/ast"
	"github.com/npillmayer/gmexpr/diag"
)

// Scalar counterparts of the arithmetic operators. Element-wise operators
// on scalars are plain multiplication and division.
var scalarOps = map[string]ast.BinaryOp{
	"+":  ast.Add,
	"-":  ast.Subtract,
	"*":  ast.Multiply,
	"/":  ast.Divide,
	"\\": ast.LeftDiv,
	".*": ast.Multiply,
	"./": ast.Divide,
}

// IsArithmetic is a predicate: is op one of + - * / \ .* ./ ?
func IsArithmetic(op string) bool {
	_, ok := scalarOps[op]
	return ok
}

// Arithmetic combines two operands with an arithmetic operator.
// Primitive operands are composed directly, with numeric promotion. Otherwise
// the operator is desugared into a call of add, subtract, multiply, divide,
// elt_multiply, elt_divide, divide_left, mdivide_right or mdivide_left.
//
// Dividing an int by an int with '/' produces a warning about truncation.
func (a *Actions) Arithmetic(pos diag.Position, op string, l, r ast.Expression) ast.Expression {
	if op == "/" && l.Type().IsPrimitiveInt() && r.Type().IsPrimitiveInt() {
		a.Sink.Warnf(pos, diag.Advisory,
			"integer division implicitly rounds to integer. Found int division: %s / %s. "+
				"Positive values rounded down, negative values rounded up or down in platform-dependent way.",
			ast.String(l), ast.String(r))
	}
	name := ast.DesugaredName(op, l.Type(), r.Type())
	if name == "" {
		bop, ok := scalarOps[op]
		if !ok {
			panic("desugar: not an arithmetic operator: " + op)
		}
		return ast.NewBinary(bop, l, r)
	}
	tracer().Debugf("%s %s %s desugared to %s", l.Type(), op, r.Type(), name)
	return a.Call(pos, name, []ast.Expression{l, r})
}

// Logical combines two operands with a comparison or logical operator.
// These operators are always desugared into calls (logical_or, logical_and,
// logical_eq, logical_neq, logical_lt, logical_lte, logical_gt, logical_gte).
// Non-primitive operands are reported, but the call is built nevertheless.
func (a *Actions) Logical(pos diag.Position, op string, l, r ast.Expression) ast.Expression {
	name := ast.DesugaredName(op, l.Type(), r.Type())
	if name == "" {
		panic("desugar: not a logical operator: " + op)
	}
	if !l.Type().IsPrimitive() || !r.Type().IsPrimitive() {
		a.Sink.Errorf(pos, diag.Semantic,
			"binary infix operator %s with functional interpretation %s requires arguments "+
				"of primitive type (int or real), found left type=%s, right arg type=%s",
			op, name, l.Type(), r.Type())
	}
	return a.Call(pos, name, []ast.Expression{l, r})
}

// Negate negates an operand: primitive operands are wrapped in a negation node,
// everything else is desugared into a call of minus.
func (a *Actions) Negate(pos diag.Position, e ast.Expression) ast.Expression {
	if e.Type().IsPrimitive() {
		return ast.NewNegation(e)
	}
	return a.Call(pos, "minus", []ast.Expression{e})
}

// LogicalNot applies logical negation to a primitive operand, as a call of
// logical_negation. A non-primitive operand is reported and yields an
// ill-formed negation node, without consulting the registry.
func (a *Actions) LogicalNot(pos diag.Position, e ast.Expression) ast.Expression {
	if !e.Type().IsPrimitive() {
		a.Sink.Errorf(pos, diag.Semantic,
			"logical negation operator ! only applies to int or real types; found type=%s", e.Type())
		return ast.NewIllFormedNot(e)
	}
	return a.Call(pos, "logical_negation", []ast.Expression{e})
}

// Transpose transposes an operand. The transpose of a scalar is the scalar
// itself; everything else is desugared into a call of transpose.
func (a *Actions) Transpose(pos diag.Position, e ast.Expression) ast.Expression {
	if e.Type().IsPrimitive() {
		return e
	}
	return a.Call(pos, "transpose", []ast.Expression{e})
}

// Add desugars e1 + e2.
func (a *Actions) Add(pos diag.Position, l, r ast.Expression) ast.Expression {
	return a.Arithmetic(pos, "+", l, r)
}

// Subtract desugars e1 - e2.
func (a *Actions) Subtract(pos diag.Position, l, r ast.Expression) ast.Expression {
	return a.Arithmetic(pos, "-", l, r)
}

// Multiply desugars e1 * e2.
func (a *Actions) Multiply(pos diag.Position, l, r ast.Expression) ast.Expression {
	return a.Arithmetic(pos, "*", l, r)
}

// Divide desugars e1 / e2.
func (a *Actions) Divide(pos diag.Position, l, r ast.Expression) ast.Expression {
	return a.Arithmetic(pos, "/", l, r)
}

// LeftDivide desugars e1 \ e2.
func (a *Actions) LeftDivide(pos diag.Position, l, r ast.Expression) ast.Expression {
	return a.Arithmetic(pos, "\\", l, r)
}

// EltMultiply desugars e1 .* e2.
func (a *Actions) EltMultiply(pos diag.Position, l, r ast.Expression) ast.Expression {
	return a.Arithmetic(pos, ".*", l, r)
}

// EltDivide desugars e1 ./ e2.
func (a *Actions) EltDivide(pos diag.Position, l, r ast.Expression) ast.Expression {
	return a.Arithmetic(pos, "./", l, r)
}
