package desugar

import (
	"strings"
	"testing"

	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/gmexpr/ast"
	"github.com/npillmayer/gmexpr/diag"
	"github.com/npillmayer/gmexpr/funcsig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type vartable map[string]gmexpr.ExprType

func (vt vartable) Lookup(name string) (gmexpr.ExprType, bool) {
	t, ok := vt[name]
	return t, ok
}

var testVars = vartable{
	"n": gmexpr.IntType,
	"x": gmexpr.DoubleType,
	"v": gmexpr.VectorType,
	"r": gmexpr.RowVectorType,
	"m": gmexpr.MatrixType,
}

func newActions() *Actions {
	return New(testVars, funcsig.Default(), diag.NewSink())
}

func variable(t *testing.T, a *Actions, name string) ast.Expression {
	e, ok := a.Variable(diag.Position{}, name)
	if !ok {
		t.Fatalf("variable %s not found", name)
	}
	return e
}

var noPos = diag.Position{}

func TestVariables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.desugar")
	defer teardown()
	//
	a := newActions()
	m := variable(t, a, "m")
	if !m.Type().Equals(gmexpr.MatrixType) || m.Kind() != ast.KindVariable {
		t.Errorf("expected matrix variable, got %s of type %s", m.Kind(), m.Type())
	}
	if e, ok := a.Variable(noPos, "undefined_var"); ok || e != nil {
		t.Errorf("expected undefined variable to block the parse")
	}
	if a.Sink.Len() != 1 || a.Sink.All()[0].Message != `variable "undefined_var" does not exist.` {
		t.Errorf("unexpected diagnostics %v", a.Sink.All())
	}
}

func TestPrimitiveArithmetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.desugar")
	defer teardown()
	//
	a := newActions()
	n, x := variable(t, a, "n"), variable(t, a, "x")
	for _, op := range []string{"+", "-", "*", "/", "\\", ".*", "./"} {
		for _, pair := range [][2]ast.Expression{{n, n}, {n, x}, {x, n}, {x, x}} {
			e := a.Arithmetic(noPos, op, pair[0], pair[1])
			if e.Kind() != ast.KindBinary {
				t.Errorf("%s %s %s: expected scalar composition, got %s", pair[0].Type(), op, pair[1].Type(), e.Kind())
			}
			expected := gmexpr.Promoted(pair[0].Type(), pair[1].Type())
			if !e.Type().Equals(expected) {
				t.Errorf("%s %s %s: expected %s, got %s", pair[0].Type(), op, pair[1].Type(), expected, e.Type())
			}
		}
	}
	// exactly one warning: n / n
	if a.Sink.Len() != 1 || a.Sink.All()[0].Severity != diag.Warning {
		t.Errorf("expected exactly one truncation warning, have %v", a.Sink.All())
	}
}

func TestIntDivisionWarning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.desugar")
	defer teardown()
	//
	a := newActions()
	e := a.Arithmetic(noPos, "/", ast.NewIntLiteral(1), ast.NewIntLiteral(2))
	if !e.Type().Equals(gmexpr.IntType) {
		t.Errorf("1 / 2 should be int, is %s", e.Type())
	}
	all := a.Sink.All()
	if len(all) != 1 {
		t.Fatalf("expected one diagnostic, have %d", len(all))
	}
	if !strings.Contains(all[0].Message, "integer division implicitly rounds to integer. Found int division: 1 / 2.") {
		t.Errorf("unexpected warning text: %s", all[0].Message)
	}
	if all[0].Severity != diag.Warning || all[0].Category != diag.Advisory {
		t.Errorf("expected an advisory warning, got %s/%s", all[0].Severity, all[0].Category)
	}
}

func TestDesugaredArithmetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.desugar")
	defer teardown()
	//
	a := newActions()
	v, r, m, x := variable(t, a, "v"), variable(t, a, "r"), variable(t, a, "m"), variable(t, a, "x")
	for i, c := range []struct {
		l    ast.Expression
		op   string
		r    ast.Expression
		name string
		typ  gmexpr.ExprType
	}{
		{v, "+", v, "add", gmexpr.VectorType},
		{v, "+", x, "add", gmexpr.VectorType},
		{m, "-", m, "subtract", gmexpr.MatrixType},
		{m, "*", v, "multiply", gmexpr.VectorType},
		{r, "*", v, "multiply", gmexpr.DoubleType},
		{m, "/", m, "mdivide_right", gmexpr.MatrixType},
		{r, "/", m, "mdivide_right", gmexpr.RowVectorType},
		{v, "/", x, "divide", gmexpr.VectorType},
		{m, "\\", v, "mdivide_left", gmexpr.VectorType},
		{m, "\\", m, "mdivide_left", gmexpr.MatrixType},
		{v, ".*", v, "elt_multiply", gmexpr.VectorType},
		{m, "./", m, "elt_divide", gmexpr.MatrixType},
	} {
		e := a.Arithmetic(noPos, c.op, c.l, c.r)
		call, ok := e.(*ast.Call)
		if !ok {
			t.Errorf("test %d: expected call, got %s", i, e.Kind())
			continue
		}
		if call.Name != c.name || !call.Type().Equals(c.typ) {
			t.Errorf("test %d: expected %s : %s, got %s : %s", i, c.name, c.typ, call.Name, call.Type())
		}
		if len(call.Args) != 2 || call.Args[0] != c.l || call.Args[1] != c.r {
			t.Errorf("test %d: arguments not in operand order", i)
		}
	}
	if a.Sink.Len() != 0 {
		t.Errorf("expected no diagnostics, have %v", a.Sink.All())
	}
	// unresolvable: vector * vector
	e := a.Arithmetic(noPos, "*", v, v)
	if !e.Type().IsIllFormed() || a.Sink.Count(diag.Error) != 1 {
		t.Errorf("expected ill-formed multiply(vector, vector) with one error, got %s, %v", e.Type(), a.Sink.All())
	}
	if a.Sink.All()[0].Category != diag.Resolution {
		t.Errorf("expected resolution diagnostic, got %s", a.Sink.All()[0].Category)
	}
}

func TestLogicalOperators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.desugar")
	defer teardown()
	//
	a := newActions()
	n, x, m := variable(t, a, "n"), variable(t, a, "x"), variable(t, a, "m")
	for _, c := range []struct{ op, name string }{
		{"||", "logical_or"}, {"&&", "logical_and"}, {"==", "logical_eq"}, {"!=", "logical_neq"},
		{"<", "logical_lt"}, {"<=", "logical_lte"}, {">", "logical_gt"}, {">=", "logical_gte"},
	} {
		e := a.Logical(noPos, c.op, n, x)
		call, ok := e.(*ast.Call)
		if !ok || call.Name != c.name || !call.Type().Equals(gmexpr.IntType) {
			t.Errorf("%s: expected int-typed call of %s, got %s", c.op, c.name, ast.String(e))
		}
	}
	if a.Sink.Len() != 0 {
		t.Fatalf("expected no diagnostics for primitive operands, have %v", a.Sink.All())
	}
	e := a.Logical(noPos, "<", m, m)
	if call, ok := e.(*ast.Call); !ok || call.Name != "logical_lt" || !call.Type().IsIllFormed() {
		t.Errorf("expected ill-formed call of logical_lt, got %s", ast.String(e))
	}
	all := a.Sink.All()
	if len(all) != 2 {
		t.Fatalf("expected mismatch and resolution diagnostics, have %v", all)
	}
	if !strings.HasPrefix(all[0].Message, "binary infix operator < with functional interpretation logical_lt") ||
		!strings.Contains(all[0].Message, "found left type=matrix, right arg type=matrix") {
		t.Errorf("unexpected mismatch message: %s", all[0].Message)
	}
}

func TestUnaryOperators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.desugar")
	defer teardown()
	//
	a := newActions()
	n, v, m := variable(t, a, "n"), variable(t, a, "v"), variable(t, a, "m")
	if e := a.Negate(noPos, n); e.Kind() != ast.KindUnary || !e.Type().Equals(gmexpr.IntType) {
		t.Errorf("-n: expected int negation, got %s", ast.String(e))
	}
	if e := a.Negate(noPos, v); e.Kind() != ast.KindCall || e.(*ast.Call).Name != "minus" ||
		!e.Type().Equals(gmexpr.VectorType) {
		t.Errorf("-v: expected call of minus, got %s", ast.String(e))
	}
	if e := a.Transpose(noPos, n); e != n {
		t.Errorf("n': expected the operand itself, got %s", ast.String(e))
	}
	if e := a.Transpose(noPos, v); e.Kind() != ast.KindCall || !e.Type().Equals(gmexpr.RowVectorType) {
		t.Errorf("v': expected row vector transpose, got %s", ast.String(e))
	}
	e := a.LogicalNot(noPos, n)
	if call, ok := e.(*ast.Call); !ok || call.Name != "logical_negation" || !e.Type().Equals(gmexpr.IntType) {
		t.Errorf("!n: expected call of logical_negation, got %s", ast.String(e))
	}
	if a.Sink.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", a.Sink.All())
	}
	// logical negation of a matrix: reported, ill-formed, no registry lookup
	e = a.LogicalNot(noPos, m)
	if u, ok := e.(*ast.Unary); !ok || u.Op != ast.LogicalNot || !e.Type().IsIllFormed() {
		t.Errorf("!m: expected ill-formed logical negation node, got %s", ast.String(e))
	}
	if a.Sink.Len() != 1 || !strings.HasPrefix(a.Sink.All()[0].Message,
		"logical negation operator ! only applies to int or real types") {
		t.Errorf("unexpected diagnostics %v", a.Sink.All())
	}
}

func TestIndexAndArrayActions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.desugar")
	defer teardown()
	//
	a := newActions()
	m, x := variable(t, a, "m"), variable(t, a, "x")
	one := ast.NewIntLiteral(1)
	if e, ok := a.Index(noPos, m, [][]ast.Expression{{one, one}}); !ok || !e.Type().Equals(gmexpr.DoubleType) {
		t.Errorf("m[1,1] should be real")
	}
	if _, ok := a.Index(noPos, m, [][]ast.Expression{{one, one, one}}); ok {
		t.Errorf("m[1,1,1] should block")
	}
	if !a.ValidateIntIndex(noPos, one) || a.ValidateIntIndex(noPos, x) {
		t.Errorf("unexpected integer index validation")
	}
	msgs := a.Sink.All()
	if len(msgs) != 2 || msgs[0].Message != "indexes inappropriate for expression." ||
		msgs[1].Message != "expression denoting integer required; found type=real" {
		t.Errorf("unexpected diagnostics %v", msgs)
	}
	a = newActions()
	if e := a.ArrayLiteral(noPos, nil); !e.Type().Equals(gmexpr.Type(gmexpr.Double, 1)) {
		t.Errorf("empty array should be real[], is %s", e.Type())
	}
	if a.Sink.Count(diag.Info) != 1 {
		t.Errorf("expected info about default type of empty array")
	}
	e := a.ArrayLiteral(noPos, []ast.Expression{one, x})
	if !e.Type().IsIllFormed() || a.Sink.Count(diag.Error) != 1 {
		t.Errorf("expected ill-formed array literal with error")
	}
	if !a.ValidateWellFormed(noPos, one) || a.ValidateWellFormed(noPos, e) {
		t.Errorf("unexpected well-formedness validation")
	}
}
