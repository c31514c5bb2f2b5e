package grammar

import (
	"strings"
	"sync"
	"testing"

	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/gmexpr/ast"
	"github.com/npillmayer/gmexpr/diag"
	"github.com/npillmayer/gmexpr/funcsig"
	"github.com/npillmayer/gmexpr/sframe"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func testScope(t *testing.T) *sframe.Stack {
	s := sframe.NewStack()
	for name, typ := range map[string]gmexpr.ExprType{
		"n":   gmexpr.IntType,
		"x":   gmexpr.DoubleType,
		"v":   gmexpr.VectorType,
		"r":   gmexpr.RowVectorType,
		"m":   gmexpr.MatrixType,
		"a":   gmexpr.Type(gmexpr.Double, 1),
		"a__": gmexpr.Type(gmexpr.Double, 2),
	} {
		if _, err := s.Declare(name, typ); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func newTestParser(t *testing.T, opts ...Option) *Parser {
	return NewParser(testScope(t), funcsig.Default(), opts...)
}

func TestTokenize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	sink := diag.NewSink()
	toks, err := tokenize("a.b_1 <= 1. /* note */ .5e-3\n  x.*y' // done", sink)
	if err != nil {
		t.Fatal(err)
	}
	expected := []struct {
		kind   tokKind
		lexeme string
	}{
		{tokIdent, "a.b_1"}, {tokOp, "<="}, {tokReal, "1."}, {tokReal, ".5e-3"},
		{tokIdent, "x"}, {tokOp, ".*"}, {tokIdent, "y"}, {tokOp, "'"}, {tokEOF, ""},
	}
	if len(toks) != len(expected) {
		t.Fatalf("expected %d tokens, have %d: %v", len(expected), len(toks), toks)
	}
	for i, x := range expected {
		if toks[i].kind != x.kind || toks[i].lexeme != x.lexeme {
			t.Errorf("token %d: expected %s %q, got %s %q", i, x.kind, x.lexeme, toks[i].kind, toks[i].lexeme)
		}
	}
	if p := toks[4].pos; p.Line != 2 || p.Column != 3 {
		t.Errorf("expected x at 2:3, is at %s", p)
	}
	if _, err = tokenize("x # 1", sink); err == nil {
		t.Fatal("expected '#' to be rejected")
	}
	if sink.Len() != 1 || sink.All()[0].Category != diag.Lexical || sink.All()[0].Pos.Column != 3 {
		t.Errorf("expected lexical diagnostic at column 3, have %v", sink.All())
	} else if msg := sink.All()[0].Message; msg != "unexpected character '#'" {
		t.Errorf("expected offending character '#' to be reported, have %q", msg)
	}
}

func TestParseExpressions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t)
	for i, x := range []struct {
		input, canonical string
		typ              gmexpr.ExprType
	}{
		{"1 + 2", "(1 + 2)", gmexpr.IntType},
		{"1 + 2 * 3", "(1 + (2 * 3))", gmexpr.IntType},
		{"1 - 2 - 3", "((1 - 2) - 3)", gmexpr.IntType},
		{"x * 3 / 4", "((x * 3) / 4)", gmexpr.DoubleType},
		{"n + 2.5", "(n + 2.5)", gmexpr.DoubleType},
		{"x.*x", "(x * x)", gmexpr.DoubleType},
		{"v + v", "add(v, v)", gmexpr.VectorType},
		{"v .* v", "elt_multiply(v, v)", gmexpr.VectorType},
		{"m * v", "multiply(m, v)", gmexpr.VectorType},
		{"r * v", "multiply(r, v)", gmexpr.DoubleType},
		{"m / m", "mdivide_right(m, m)", gmexpr.MatrixType},
		{"r / m", "mdivide_right(r, m)", gmexpr.RowVectorType},
		{"m \\ v", "mdivide_left(m, v)", gmexpr.VectorType},
		{"-x", "(-x)", gmexpr.DoubleType},
		{"+x", "x", gmexpr.DoubleType},
		{"-v", "minus(v)", gmexpr.VectorType},
		{"v'", "transpose(v)", gmexpr.RowVectorType},
		{"x'", "x", gmexpr.DoubleType},
		{"!n", "logical_negation(n)", gmexpr.IntType},
		{"n < x", "logical_lt(n, x)", gmexpr.IntType},
		{"n <= 2 && x > 1.5 || n == 3",
			"logical_or(logical_and(logical_lte(n, 2), logical_gt(x, 1.5)), logical_eq(n, 3))", gmexpr.IntType},
		{"n >= 1 != (x < 2)", "logical_neq(logical_gte(n, 1), logical_lt(x, 2))", gmexpr.IntType},
		{"m[1, 2]", "m[1, 2]", gmexpr.DoubleType},
		{"m[1][2]", "m[1][2]", gmexpr.DoubleType},
		{"m[1]", "m[1]", gmexpr.RowVectorType},
		{"m[1]'", "transpose(m[1])", gmexpr.VectorType},
		{"a[n + 1]", "a[(n + 1)]", gmexpr.DoubleType},
		{"a__[1][1]", "a__[1][1]", gmexpr.IntType}, // array literal, indexed
		{"exp(x)", "exp(x)", gmexpr.DoubleType},
		{"pow(n, 2)", "pow(n, 2)", gmexpr.DoubleType},
		{"pi()", "pi()", gmexpr.DoubleType},
		{"a__[1 2 3]", "a__[1 2 3]", gmexpr.Type(gmexpr.Int, 1)},
		{"a__[x -1.5 2.5]", "a__[(x - 1.5) 2.5]", gmexpr.Type(gmexpr.Double, 1)},
		{"/* leading */ x // trailing", "x", gmexpr.DoubleType},
		{"(((n)))", "n", gmexpr.IntType},
	} {
		e, sink, err := p.Parse(x.input)
		if err != nil {
			t.Errorf("test %d: %q: unexpected error %v", i, x.input, err)
			continue
		}
		if s := ast.String(e); s != x.canonical {
			t.Errorf("test %d: %q: expected %q, got %q", i, x.input, x.canonical, s)
		}
		if !e.Type().Equals(x.typ) {
			t.Errorf("test %d: %q: expected type %s, got %s", i, x.input, x.typ, e.Type())
		}
		if sink.HasErrors() {
			t.Errorf("test %d: %q: unexpected errors %v", i, x.input, sink.All())
		}
	}
}

func TestLiterals(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t)
	for i, x := range []struct {
		input string
		typ   gmexpr.ExprType
		value float64
	}{
		{"42", gmexpr.IntType, 42},
		{"2147483647", gmexpr.IntType, 2147483647},
		{"2147483648", gmexpr.DoubleType, 2147483648},
		{"1.", gmexpr.DoubleType, 1},
		{".5", gmexpr.DoubleType, 0.5},
		{"1e3", gmexpr.DoubleType, 1000},
		{"1.5E-2", gmexpr.DoubleType, 0.015},
	} {
		e, _, err := p.Parse(x.input)
		if err != nil {
			t.Errorf("test %d: %q: %v", i, x.input, err)
			continue
		}
		if !e.Type().Equals(x.typ) {
			t.Errorf("test %d: %q: expected %s, got %s", i, x.input, x.typ, e.Type())
		}
		switch lit := e.(type) {
		case *ast.IntLiteral:
			if float64(lit.Value) != x.value {
				t.Errorf("test %d: expected %g, got %d", i, x.value, lit.Value)
			}
		case *ast.DoubleLiteral:
			if lit.Value != x.value {
				t.Errorf("test %d: expected %g, got %g", i, x.value, lit.Value)
			}
		default:
			t.Errorf("test %d: expected a literal, got %s", i, e.Kind())
		}
	}
}

func TestRightGrouping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t, RightGrouping(true))
	for i, x := range []struct{ input, canonical string }{
		{"1 - 2 - 3", "(1 - (2 - 3))"},
		{"n || n || n", "logical_or(n, logical_or(n, n))"},
		{"x * 3 / 4", "((x * 3) / 4)"},
	} {
		e, _, err := p.Parse(x.input)
		if err != nil {
			t.Errorf("test %d: %v", i, err)
			continue
		}
		if s := ast.String(e); s != x.canonical {
			t.Errorf("test %d: %q: expected %q, got %q", i, x.input, x.canonical, s)
		}
	}
}

func TestStartRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t, AllowComparisons(false))
	if _, _, err := p.Parse("(n < 1) + 1"); err != nil {
		t.Errorf("expected comparison in parens to be accepted: %v", err)
	}
	_, _, err := p.Parse("n < 1")
	if err == nil {
		t.Fatal("expected top-level comparison to be rejected")
	}
	if !strings.Contains(err.Error(), `expected end of input, found "<"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIntDivision(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t)
	e, sink, err := p.Parse("1 / 2")
	if err != nil {
		t.Fatal(err)
	}
	if !e.Type().Equals(gmexpr.IntType) || e.Kind() != ast.KindBinary {
		t.Errorf("expected int division, got %s : %s", ast.String(e), e.Type())
	}
	all := sink.All()
	if len(all) != 1 || all[0].Severity != diag.Warning {
		t.Fatalf("expected one warning, have %v", all)
	}
	if !strings.Contains(all[0].Message, "Found int division: 1 / 2.") || all[0].Pos.Column != 3 {
		t.Errorf("unexpected warning %s", all[0])
	}
}

func TestEmptyArrayLiteral(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t)
	e, sink, err := p.Parse("a__[]")
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind() != ast.KindArray || !e.Type().Equals(gmexpr.Type(gmexpr.Double, 1)) {
		t.Errorf("expected empty array literal of type real[], got %s", e.Type())
	}
	if sink.Count(diag.Info) != 1 || sink.HasErrors() {
		t.Errorf("expected one informational diagnostic, have %v", sink.All())
	}
}

func TestParseFailures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t)
	for i, x := range []struct {
		input string
		kind  ErrorKind
		msg   string
	}{
		{"undefined_var", SemanticError, `variable "undefined_var" does not exist.`},
		{"x + undefined_var", SemanticError, `variable "undefined_var" does not exist.`},
		{"x +", SyntaxError, `expected operand after "+", found end of input`},
		{"(x", SyntaxError, `expected ")", found end of input`},
		{"x y", SyntaxError, `expected end of input, found "y"`},
		{"", SyntaxError, "expected expression, found end of input"},
		{"m[]", SyntaxError, `expected index expression, found "]"`},
		{"exp(x", SyntaxError, `expected "," or ")", found end of input`},
		{"exp(]", SyntaxError, `expected argument or ")", found "]"`},
		{"m[1 2]", SyntaxError, `expected "," or "]", found "2"`},
		{"m[1, 2, 3]", SemanticError, "indexes inappropriate for expression."},
		{"x[1]", SemanticError, "indexes inappropriate for expression."},
		{"a__[1, 2.5]", SemanticError, "expression denoting integer required; found type=real"},
		{"a__[undefined_var]", SemanticError, `variable "undefined_var" does not exist.`},
		{"a__[1 undefined_var]", SemanticError, `variable "undefined_var" does not exist.`},
		{"!m", SemanticError, "expression is ill formed"},
		{"m < m", SemanticError, "expression is ill formed"},
		{"f(x)", SemanticError, "expression is ill formed"},
		{"x # 1", SyntaxError, "unexpected character '#'"},
	} {
		e, sink, err := p.Parse(x.input)
		if err == nil {
			t.Errorf("test %d: %q: expected failure, got %s", i, x.input, ast.String(e))
			continue
		}
		perr, ok := err.(*ParseError)
		if !ok {
			t.Errorf("test %d: %q: expected parse error, got %T", i, x.input, err)
			continue
		}
		if perr.Kind != x.kind || perr.Msg != x.msg {
			t.Errorf("test %d: %q: expected %s %q, got %s %q", i, x.input, x.kind, x.msg, perr.Kind, perr.Msg)
		}
		if perr.Fatal() != (x.kind == SyntaxError) {
			t.Errorf("test %d: fatal flag does not match kind", i)
		}
		if !sink.HasErrors() {
			t.Errorf("test %d: %q: failure not reported as diagnostic", i, x.input)
		}
	}
}

func TestFailureDiagnostics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t)
	_, sink, _ := p.Parse("x + undefined_var")
	if d := sink.All()[0]; d.Pos.Line != 1 || d.Pos.Column != 5 {
		t.Errorf("expected undefined variable reported at 1:5, is %s", d.Pos)
	}
	_, sink, _ = p.Parse("!m")
	if sink.Len() != 2 || !strings.HasPrefix(sink.All()[0].Message, "logical negation operator ! only applies") {
		t.Errorf("expected logical negation diagnostic before ill-formedness, have %v", sink.All())
	}
	// a failing element of an array literal keeps its own diagnostics
	_, sink, err := p.Parse("a__[(1 < m)]")
	if perr, ok := err.(*ParseError); !ok || perr.Msg != "expression is ill formed" {
		t.Errorf("expected ill-formed array element, got %v", err)
	}
	if len(sink.Filter(func(d diag.Diagnostic) bool {
		return strings.Contains(d.Message, "logical_lt")
	})) == 0 {
		t.Errorf("expected diagnostic for logical_lt, have %v", sink.All())
	}
	_, sink, _ = p.Parse("f(x)")
	if sink.All()[0].Category != diag.Resolution ||
		!strings.HasPrefix(sink.All()[0].Message, `no matches for function name="f"`) {
		t.Errorf("expected resolution failure for f, have %v", sink.All())
	}
}

func TestAbandonedDiagnostics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	// a__[1/2, 1] is first tried as an array literal, which fails at the comma
	input := "a__[1 / 2, 1]"
	e, sink, err := newTestParser(t).Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind() != ast.KindIndex || !e.Type().Equals(gmexpr.DoubleType) {
		t.Errorf("expected indexed variable a__, got %s", ast.String(e))
	}
	if n := sink.Count(diag.Warning); n != 1 {
		t.Errorf("expected 1 warning, have %d", n)
	}
	_, sink, err = newTestParser(t, KeepAbandonedDiagnostics(true)).Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if n := sink.Count(diag.Warning); n != 2 {
		t.Errorf("expected 2 warnings when keeping abandoned diagnostics, have %d", n)
	}
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t)
	for _, input := range []string{
		"1 + 2 * 3 - x",
		"-v + v' '",
		"m * v + m \\ v - (m / m) * v",
		"r / m",
		"v .* v ./ v",
		"!n || n < x && x >= 2.5",
		"exp(-x) + pow(n, 2) / 3.0",
		"m[1, 2] + m[1][2] - a[n]",
		"(m[1])'",
		"a__[1 2 (-3)]",
		"a__[x 2.5 (-1.0)]",
		"a__[]",
		"n \\ x",
		"0.1 + 1e-7 + 123456.789",
		"x + 1e400",
	} {
		e, _, err := p.Parse(input)
		if err != nil {
			t.Errorf("%q: %v", input, err)
			continue
		}
		for _, mode := range []ast.Mode{ast.Canonical, ast.Infix} {
			text := ast.Format(e, mode)
			again, _, err := p.Parse(text)
			if err != nil {
				t.Errorf("%q: re-parsing %q: %v", input, text, err)
				continue
			}
			if !ast.Equal(e, again) {
				t.Errorf("%q: %q re-parses to %q", input, text, ast.String(again))
			}
		}
	}
}

func TestConcurrentParses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.grammar")
	defer teardown()
	//
	p := newTestParser(t)
	inputs := []string{"m * v", "1 / 2", "undefined_var", "a__[1 2]", "x +"}
	var wg sync.WaitGroup
	errs := make([]int, len(inputs))
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, _, err := p.Parse(inputs[i]); err != nil {
					errs[i]++
				}
			}
		}(i)
	}
	wg.Wait()
	expected := []int{0, 0, 20, 0, 20}
	for i := range inputs {
		if errs[i] != expected[i] {
			t.Errorf("%q: expected %d failures, have %d", inputs[i], expected[i], errs[i])
		}
	}
}
