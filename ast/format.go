package ast

import (
	"math"
	"strconv"
	"strings"

	"github.com/npillmayer/gmexpr"
	"github.com/shopspring/decimal"
)

// Mode selects how Format renders desugared operators.
type Mode int8

// Output modes. Both modes produce text which reads back into an equal tree.
const (
	Canonical Mode = iota // desugared operators are rendered as function calls
	Infix                 // desugared operators are rendered as operators again
)

// String renders an expression in canonical mode.
func String(e Expression) string {
	return Format(e, Canonical)
}

// Format renders an expression as source text. Compound operator expressions
// are fully parenthesized.
func Format(e Expression, mode Mode) string {
	var b strings.Builder
	f := formatter{b: &b, mode: mode}
	f.expr(e)
	return b.String()
}

type formatter struct {
	b    *strings.Builder
	mode Mode
}

func (f formatter) expr(e Expression) {
	switch x := e.(type) {
	case nil:
		f.b.WriteString("<nil>")
	case *IntLiteral:
		f.b.WriteString(strconv.Itoa(x.Value))
	case *DoubleLiteral:
		f.b.WriteString(FormatReal(x.Value))
	case *Variable:
		f.b.WriteString(x.Name)
	case *ArrayLiteral:
		f.b.WriteString("a__[")
		for i, el := range x.Elements {
			if i > 0 {
				f.b.WriteByte(' ')
			}
			f.element(el)
		}
		f.b.WriteByte(']')
	case *Index:
		if x.Base.Kind() == KindIndex {
			f.b.WriteByte('(')
			f.expr(x.Base)
			f.b.WriteByte(')')
		} else {
			f.expr(x.Base)
		}
		for _, group := range x.Dims {
			f.b.WriteByte('[')
			f.list(group)
			f.b.WriteByte(']')
		}
	case *Call:
		if f.mode == Infix && f.operator(x) {
			return
		}
		f.b.WriteString(x.Name)
		f.b.WriteByte('(')
		f.list(x.Args)
		f.b.WriteByte(')')
	case *Unary:
		f.b.WriteByte('(')
		f.b.WriteString(x.Op.String())
		f.expr(x.Operand)
		f.b.WriteByte(')')
	case *Binary:
		f.binary(x.Op.String(), x.Left, x.Right)
	}
}

// Array elements are separated by blanks only, therefore everything but
// literals and operator nodes is enclosed in parens.
func (f formatter) element(e Expression) {
	switch e.Kind() {
	case KindInt, KindDouble, KindUnary, KindBinary:
		f.expr(e)
	default:
		f.b.WriteByte('(')
		f.expr(e)
		f.b.WriteByte(')')
	}
}

func (f formatter) list(es []Expression) {
	for i, e := range es {
		if i > 0 {
			f.b.WriteString(", ")
		}
		f.expr(e)
	}
}

func (f formatter) binary(op string, l, r Expression) {
	f.b.WriteByte('(')
	f.expr(l)
	f.b.WriteByte(' ')
	f.b.WriteString(op)
	f.b.WriteByte(' ')
	f.expr(r)
	f.b.WriteByte(')')
}

var infixOperators = map[string]string{
	"add":           "+",
	"subtract":      "-",
	"multiply":      "*",
	"divide":        "/",
	"mdivide_right": "/",
	"divide_left":   "\\",
	"mdivide_left":  "\\",
	"elt_multiply":  ".*",
	"elt_divide":    "./",
	"logical_or":    "||",
	"logical_and":   "&&",
	"logical_eq":    "==",
	"logical_neq":   "!=",
	"logical_lt":    "<",
	"logical_lte":   "<=",
	"logical_gt":    ">",
	"logical_gte":   ">=",
}

// operator writes a call as an operator expression, if reading the operator
// expression back would produce this very call. It returns false if it has
// not written anything.
func (f formatter) operator(c *Call) bool {
	switch len(c.Args) {
	case 1:
		t := c.Args[0].Type()
		switch {
		case c.Name == "minus" && !t.IsPrimitive():
			f.b.WriteString("(-")
			f.expr(c.Args[0])
			f.b.WriteByte(')')
		case c.Name == "logical_negation" && t.IsPrimitive():
			f.b.WriteString("(!")
			f.expr(c.Args[0])
			f.b.WriteByte(')')
		case c.Name == "transpose" && !t.IsPrimitive():
			f.b.WriteByte('(')
			f.expr(c.Args[0])
			f.b.WriteString(")'")
		default:
			return false
		}
		return true
	case 2:
		op, ok := infixOperators[c.Name]
		if !ok || DesugaredName(op, c.Args[0].Type(), c.Args[1].Type()) != c.Name {
			return false
		}
		f.binary(op, c.Args[0], c.Args[1])
		return true
	}
	return false
}

// DesugaredName returns the name of the function an infix operator is desugared
// to, given the types of its operands. For arithmetic operators on two primitive
// operands, no function is involved and the empty string is returned.
func DesugaredName(op string, l, r gmexpr.ExprType) string {
	arithmetic := map[string]string{
		"+": "add", "-": "subtract", "*": "multiply", "/": "divide",
		"\\": "divide_left", ".*": "elt_multiply", "./": "elt_divide",
	}
	if name, ok := arithmetic[op]; ok {
		if l.IsPrimitive() && r.IsPrimitive() {
			return ""
		}
		switch {
		case op == "/" && (l.Base == gmexpr.Matrix || l.Base == gmexpr.RowVector) && r.Base == gmexpr.Matrix:
			return "mdivide_right"
		case op == "\\" && l.Base == gmexpr.Matrix && (r.Base == gmexpr.Vector || r.Base == gmexpr.Matrix):
			return "mdivide_left"
		}
		return name
	}
	for name, o := range infixOperators {
		if o == op && strings.HasPrefix(name, "logical_") {
			return name
		}
	}
	return ""
}

// FormatReal renders a real number such that it reads back as a real literal
// of the same value: the shortest decimal representation which round-trips,
// with a decimal point. A literal too large for float64 reads as +Inf, so +Inf
// is rendered as the smallest such literal. NaN and -Inf are never read from
// source; they are rendered as calls of the corresponding nullary functions.
func FormatReal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "not_a_number()"
	case math.IsInf(v, 1):
		return "1e309"
	case math.IsInf(v, -1):
		return "negative_infinity()"
	}
	s := decimal.NewFromFloat(v).String()
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
