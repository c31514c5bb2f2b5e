package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/gmexpr/ast"
	"github.com/npillmayer/gmexpr/desugar"
	"github.com/npillmayer/gmexpr/diag"
)

// SymbolTable resolves variable names to declared types, e.g. *sframe.Stack.
type SymbolTable = desugar.SymbolTable

// Resolver resolves function calls to result types, e.g. *funcsig.Registry.
type Resolver = desugar.Resolver

// Parser parses expressions against a symbol table and a function registry.
// A parser holds read-only state only and may be shared between goroutines,
// as long as the symbol table is not modified concurrently.
type Parser struct {
	vars          SymbolTable
	reg           Resolver
	comparisons   bool
	rightGrouping bool
	keepAbandoned bool
}

// Option configures a parser.
type Option func(*Parser)

// AllowComparisons selects the start rule. If true (the default), top-level
// expressions may use logical and comparison operators. If false, they are
// restricted to additive expressions; comparisons are then possible only
// within parentheses, brackets and argument lists.
func AllowComparisons(b bool) Option {
	return func(p *Parser) {
		p.comparisons = b
	}
}

// RightGrouping makes chains of binary operators on the levels from || down to
// + and - group to the right: a - b - c is parsed as a - (b - c). The
// multiplicative level always groups to the left. Default is false.
func RightGrouping(b bool) Option {
	return func(p *Parser) {
		p.rightGrouping = b
	}
}

// KeepAbandonedDiagnostics keeps the diagnostics of alternatives which have
// been tried and abandoned during backtracking. Default is false.
func KeepAbandonedDiagnostics(b bool) Option {
	return func(p *Parser) {
		p.keepAbandoned = b
	}
}

// NewParser creates a parser. Symbol table and resolver are required.
func NewParser(vars SymbolTable, reg Resolver, opts ...Option) *Parser {
	if vars == nil || reg == nil {
		panic("grammar: parser needs symbol table and function resolver")
	}
	p := &Parser{vars: vars, reg: reg, comparisons: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses an expression. It returns the typed expression tree, the
// diagnostics of the parse and an error if parsing did not succeed. A
// successful parse may still carry warnings and informational diagnostics.
// Errors are of type *ParseError, except for internal lexer failures.
func (p *Parser) Parse(src string) (ast.Expression, *diag.Sink, error) {
	sink := diag.NewSink()
	toks, err := tokenize(src, sink)
	if err != nil {
		return nil, sink, err
	}
	c := &parsectx{
		Parser: p,
		src:    src,
		toks:   toks,
		sink:   sink,
		act:    desugar.New(p.vars, p.reg, sink),
	}
	start := logicalOr
	if !p.comparisons {
		start = additive
	}
	e, o := c.level(start)
	switch o {
	case noMatch:
		t := c.peek()
		return nil, sink, c.syntaxError(t, "expected expression, found %s", t)
	case failed:
		return nil, sink, c.err
	}
	if t := c.peek(); t.kind != tokEOF {
		return nil, sink, c.syntaxError(t, "expected end of input, found %s", t)
	}
	if !c.act.ValidateWellFormed(toks[0].pos, e) {
		c.blocked()
		return nil, sink, c.err
	}
	tracer().Debugf("parsed %q as %s : %s", src, ast.String(e), e.Type())
	return e, sink, nil
}

// --- Errors ----------------------------------------------------------------

// ErrorKind classifies parse errors.
type ErrorKind int8

// Syntax errors concern the shape of the input, semantic errors concern
// well-formed input which does not type.
const (
	SyntaxError ErrorKind = iota
	SemanticError
)

func (k ErrorKind) String() string {
	if k == SemanticError {
		return "semantic error"
	}
	return "syntax error"
}

// ParseError is the error returned for an unsuccessful parse. The same message
// is part of the diagnostics of the parse.
type ParseError struct {
	Kind ErrorKind
	Pos  diag.Position
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Pos.IsKnown() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Fatal is true for syntax errors, i.e. input which is not an expression at all.
func (e *ParseError) Fatal() bool {
	return e.Kind == SyntaxError
}

// --- Parse context ---------------------------------------------------------

// outcome of a parse function
type outcome int8

const (
	matched outcome = iota
	noMatch         // nothing consumed, alternatives may be tried
	failed          // parsing stops, error is in parsectx.err
)

type parsectx struct {
	*Parser
	src  string
	toks []token
	at   int // index of the next token
	sink *diag.Sink
	act  *desugar.Actions
	err  *ParseError
}

func (c *parsectx) peek() token {
	return c.toks[c.at]
}

func (c *parsectx) peekAt(n int) token {
	if c.at+n < len(c.toks) {
		return c.toks[c.at+n]
	}
	return c.toks[len(c.toks)-1]
}

func (c *parsectx) next() token {
	t := c.toks[c.at]
	if t.kind != tokEOF {
		c.at++
	}
	return t
}

func (c *parsectx) accept(op string) (token, bool) {
	if t := c.peek(); t.is(op) {
		c.at++
		return t, true
	}
	return token{}, false
}

func (c *parsectx) acceptAny(ops []string) (token, bool) {
	for _, op := range ops {
		if t, ok := c.accept(op); ok {
			return t, true
		}
	}
	return token{}, false
}

func (c *parsectx) syntaxError(t token, format string, args ...interface{}) *ParseError {
	msg := fmt.Sprintf(format, args...)
	c.sink.Errorf(t.pos, diag.Syntax, "%s", msg)
	c.err = &ParseError{Kind: SyntaxError, Pos: t.pos, Msg: msg}
	return c.err
}

// expected turns a mismatch after consumed input into a failure.
func (c *parsectx) expected(o outcome, what string) outcome {
	if o == failed {
		return failed
	}
	t := c.peek()
	c.syntaxError(t, "expected %s, found %s", what, t)
	return failed
}

// blocked fails the parse because a semantic action rejected a construct.
// The action has reported the reason as the latest diagnostic.
func (c *parsectx) blocked() outcome {
	all := c.sink.All()
	d := all[len(all)-1]
	c.err = &ParseError{Kind: SemanticError, Pos: d.Pos, Msg: d.Message}
	return failed
}

// --- Binary operator levels ------------------------------------------------

type precedence int8

const (
	logicalOr precedence = iota
	logicalAnd
	equality
	comparison
	additive
	multiplicative
)

var levelOps = [...][]string{
	logicalOr:      {"||"},
	logicalAnd:     {"&&"},
	equality:       {"==", "!="},
	comparison:     {"<=", "<", ">=", ">"},
	additive:       {"+", "-"},
	multiplicative: {"*", "/", "\\", ".*", "./"},
}

type binaryAction func(*desugar.Actions, diag.Position, ast.Expression, ast.Expression) ast.Expression

var arithmetic = map[string]binaryAction{
	"+":  (*desugar.Actions).Add,
	"-":  (*desugar.Actions).Subtract,
	"*":  (*desugar.Actions).Multiply,
	"/":  (*desugar.Actions).Divide,
	"\\": (*desugar.Actions).LeftDivide,
	".*": (*desugar.Actions).EltMultiply,
	"./": (*desugar.Actions).EltDivide,
}

func (c *parsectx) expression() (ast.Expression, outcome) {
	return c.level(logicalOr)
}

func (c *parsectx) operand(lv precedence) (ast.Expression, outcome) {
	if lv == multiplicative {
		return c.prefixed()
	}
	return c.level(lv + 1)
}

// level parses a chain of binary operators of one precedence level.
func (c *parsectx) level(lv precedence) (ast.Expression, outcome) {
	start := c.peek()
	l, o := c.operand(lv)
	if o != matched {
		return nil, o
	}
	for {
		op, ok := c.acceptAny(levelOps[lv])
		if !ok {
			break
		}
		var r ast.Expression
		if c.rightGrouping && lv < multiplicative {
			r, o = c.level(lv)
		} else {
			r, o = c.operand(lv)
		}
		if o != matched {
			return nil, c.expected(o, "operand after "+op.String())
		}
		if action, isArithmetic := arithmetic[op.lexeme]; isArithmetic {
			l = action(c.act, op.pos, l, r)
		} else {
			l = c.act.Logical(op.pos, op.lexeme, l, r)
		}
	}
	if lv == additive && !c.act.ValidateWellFormed(start.pos, l) {
		return nil, c.blocked()
	}
	return l, matched
}

// --- Prefix and postfix operators ------------------------------------------

func (c *parsectx) prefixed() (ast.Expression, outcome) {
	t := c.peek()
	if !t.is("-") && !t.is("!") && !t.is("+") {
		return c.postfixed()
	}
	start := c.at
	c.at++
	e, o := c.prefixed()
	switch o {
	case noMatch:
		c.at = start
		return nil, noMatch
	case failed:
		return nil, failed
	}
	switch t.lexeme {
	case "-":
		return c.act.Negate(t.pos, e), matched
	case "!":
		return c.act.LogicalNot(t.pos, e), matched
	}
	return e, matched
}

// postfixed parses a factor followed by index groups and transpositions.
// Adjacent index groups form a single indexing operation: a[1][2] and a[1,2]
// both apply two indices at once.
func (c *parsectx) postfixed() (ast.Expression, outcome) {
	e, o := c.factor()
	if o != matched {
		return nil, o
	}
	for {
		t := c.peek()
		switch {
		case t.is("["):
			var dims [][]ast.Expression
			for c.peek().is("[") {
				group, o := c.dims()
				if o != matched {
					return nil, o
				}
				dims = append(dims, group)
			}
			ix, ok := c.act.Index(t.pos, e, dims)
			if !ok {
				return nil, c.blocked()
			}
			e = ix
		case t.is("'"):
			c.at++
			e = c.act.Transpose(t.pos, e)
		default:
			return e, matched
		}
	}
}

// dims parses one bracketed group of integer indices.
func (c *parsectx) dims() ([]ast.Expression, outcome) {
	c.next() // '['
	var group []ast.Expression
	for {
		start := c.peek()
		e, o := c.expression()
		if o != matched {
			return nil, c.expected(o, "index expression")
		}
		if !c.act.ValidateIntIndex(start.pos, e) {
			return nil, c.blocked()
		}
		group = append(group, e)
		if _, ok := c.accept(","); !ok {
			break
		}
	}
	if _, ok := c.accept("]"); !ok {
		return nil, c.expected(noMatch, "\",\" or \"]\"")
	}
	return group, matched
}

// --- Factors ---------------------------------------------------------------

type alternative struct {
	name  string
	parse func(*parsectx) (ast.Expression, outcome)
}

// factorAlternatives is filled in init, as the alternatives recurse into
// factor themselves.
var factorAlternatives []alternative

func init() {
	factorAlternatives = []alternative{
		{"integer literal", (*parsectx).intLiteral},
		{"real literal", (*parsectx).realLiteral},
		{"array literal", (*parsectx).arrayLiteral},
		{"function call", (*parsectx).call},
		{"variable", (*parsectx).variable},
		{"parenthesized expression", (*parsectx).parenthesized},
	}
}

// factor tries the alternatives of a factor in order. Diagnostics of an
// alternative which does not match are set aside; they are restored only if
// no alternative matches.
func (c *parsectx) factor() (ast.Expression, outcome) {
	start, mark := c.at, c.sink.Mark()
	var abandoned []diag.Diagnostic
	for _, alt := range factorAlternatives {
		e, o := alt.parse(c)
		switch o {
		case matched:
			if len(abandoned) > 0 {
				tracer().Debugf("%s matched, dropping %d diagnostics", alt.name, len(abandoned))
			}
			return e, matched
		case failed:
			return nil, failed
		}
		c.at = start
		if !c.keepAbandoned {
			abandoned = append(abandoned, c.sink.Rewind(mark)...)
		}
	}
	for _, d := range abandoned {
		c.sink.Add(d)
	}
	return nil, noMatch
}

// intLiteral matches an integer which is not the prefix of a real and which
// fits into 32 bits.
func (c *parsectx) intLiteral() (ast.Expression, outcome) {
	t := c.peek()
	if t.kind != tokInt {
		return nil, noMatch
	}
	if t.end < len(c.src) && strings.IndexByte(".eE", c.src[t.end]) >= 0 {
		return nil, noMatch
	}
	v, err := strconv.ParseInt(t.lexeme, 10, 32)
	if err != nil {
		tracer().Debugf("integer literal %s out of range, trying real", t.lexeme)
		return nil, noMatch
	}
	c.at++
	return c.act.IntLiteral(t.pos, int(v)), matched
}

func (c *parsectx) realLiteral() (ast.Expression, outcome) {
	t := c.peek()
	if t.kind != tokReal && t.kind != tokInt {
		return nil, noMatch
	}
	v, err := strconv.ParseFloat(t.lexeme, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return nil, noMatch
		}
		c.sink.Warnf(t.pos, diag.Lexical, "real literal %s is out of range", t.lexeme)
	}
	c.at++
	return c.act.DoubleLiteral(t.pos, v), matched
}

// arrayLiteral matches a__[e1 e2 ...]. If an element does not match, e.g. at
// a comma, the array literal is abandoned and a__ is left to the other
// alternatives. Elements which fail end the parse.
func (c *parsectx) arrayLiteral() (ast.Expression, outcome) {
	t, open := c.peek(), c.peekAt(1)
	if t.kind != tokIdent || t.lexeme != "a__" || !open.is("[") || open.pos.Offset != t.end {
		return nil, noMatch
	}
	c.at += 2
	var elements []ast.Expression
	for !c.peek().is("]") {
		e, o := c.expression()
		switch o {
		case noMatch:
			tracer().Debugf("abandoning array literal at %s", c.peek().pos)
			return nil, noMatch
		case failed:
			return nil, failed
		}
		elements = append(elements, e)
	}
	c.at++
	return c.act.ArrayLiteral(t.pos, elements), matched
}

// call matches f() and f(e1, e2, ...).
func (c *parsectx) call() (ast.Expression, outcome) {
	name, open := c.peek(), c.peekAt(1)
	if name.kind != tokIdent || !open.is("(") {
		return nil, noMatch
	}
	c.at += 2
	var args []ast.Expression
	if _, ok := c.accept(")"); !ok {
		e, o := c.expression()
		if o != matched {
			return nil, c.expected(o, "argument or \")\"")
		}
		args = append(args, e)
		for {
			if _, ok := c.accept(","); !ok {
				break
			}
			if e, o = c.expression(); o != matched {
				return nil, c.expected(o, "argument after \",\"")
			}
			args = append(args, e)
		}
		if _, ok := c.accept(")"); !ok {
			return nil, c.expected(noMatch, "\",\" or \")\"")
		}
	}
	return c.act.Call(name.pos, name.lexeme, args), matched
}

func (c *parsectx) variable() (ast.Expression, outcome) {
	t := c.peek()
	if t.kind != tokIdent {
		return nil, noMatch
	}
	e, ok := c.act.Variable(t.pos, t.lexeme)
	if !ok {
		return nil, c.blocked()
	}
	c.at++
	return e, matched
}

func (c *parsectx) parenthesized() (ast.Expression, outcome) {
	if _, ok := c.accept("("); !ok {
		return nil, noMatch
	}
	e, o := c.expression()
	if o != matched {
		return nil, c.expected(o, "expression")
	}
	if _, ok := c.accept(")"); !ok {
		return nil, c.expected(noMatch, "\")\"")
	}
	return e, matched
}
