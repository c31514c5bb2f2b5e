package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/knadh/koanf"
	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/gmexpr/ast"
	"github.com/npillmayer/gmexpr/diag"
	"github.com/npillmayer/gmexpr/funcsig"
	"github.com/npillmayer/gmexpr/grammar"
	"github.com/npillmayer/gmexpr/prelude"
	"github.com/npillmayer/gmexpr/sframe"
	"github.com/pkg/errors"
)

// Settings configure a checking session.
type Settings struct {
	Comparisons   bool              // top-level comparisons allowed
	RightGrouping bool              // right-grouping binary operators
	KeepAbandoned bool              // keep diagnostics of abandoned alternatives
	Format        string            // canonical, infix or tree
	Prelude       string            // path of a Lua prelude, may be empty
	Vars          map[string]string // name → type
	VarDecls      []string          // name=type, from the command line
}

// settingsFrom reads session settings from a configuration.
func settingsFrom(k *koanf.Koanf) Settings {
	return Settings{
		Comparisons:   k.Bool("parse.comparisons"),
		RightGrouping: k.Bool("parse.rightgrouping"),
		KeepAbandoned: k.Bool("parse.keepabandoned"),
		Format:        k.String("format"),
		Prelude:       k.String("prelude"),
		Vars:          k.StringMap("vars"),
	}
}

// Session checks expressions against declared variables and the signatures
// of the function library.
type Session struct {
	Vars   *sframe.Stack
	Sigs   *funcsig.Registry
	Format string
	parser *grammar.Parser
}

// NewSession creates a session: variables are declared, the prelude is run
// and the function registry is built.
func NewSession(s Settings) (*Session, error) {
	switch s.Format {
	case "":
		s.Format = "canonical"
	case "canonical", "infix", "tree":
	default:
		return nil, fmt.Errorf("unknown output format %q", s.Format)
	}
	vars := sframe.NewStack()
	names := make([]string, 0, len(s.Vars))
	for name := range s.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := declare(vars, name, s.Vars[name]); err != nil {
			return nil, err
		}
	}
	for _, decl := range s.VarDecls {
		name, typ, ok := splitDecl(decl)
		if !ok {
			return nil, fmt.Errorf("malformed variable declaration %q, expected name=type", decl)
		}
		if err := declare(vars, name, typ); err != nil {
			return nil, err
		}
	}
	sigs := funcsig.Builtins()
	if s.Prelude != "" {
		target := prelude.Target{Vars: vars, Sigs: sigs, Check: builtinChecker(vars)}
		if err := prelude.LoadFile(s.Prelude, target); err != nil {
			return nil, err
		}
	}
	reg := sigs.Build()
	tracer().Infof("session with %d variables and %d functions", len(vars.Visible()), reg.Len())
	return &Session{
		Vars:   vars,
		Sigs:   reg,
		Format: s.Format,
		parser: grammar.NewParser(vars, reg,
			grammar.AllowComparisons(s.Comparisons),
			grammar.RightGrouping(s.RightGrouping),
			grammar.KeepAbandonedDiagnostics(s.KeepAbandoned)),
	}, nil
}

func splitDecl(decl string) (string, string, bool) {
	i := strings.IndexByte(decl, '=')
	if i <= 0 || i == len(decl)-1 {
		return "", "", false
	}
	return strings.TrimSpace(decl[:i]), strings.TrimSpace(decl[i+1:]), true
}

func declare(vars *sframe.Stack, name, typename string) error {
	typ, err := gmexpr.ParseExprType(typename)
	if err != nil {
		return errors.Wrapf(err, "declaring variable %s", name)
	}
	_, err = vars.Declare(name, typ)
	return err
}

// builtinChecker lets prelude scripts check expressions. Signatures declared
// by the prelude itself are not yet visible.
func builtinChecker(vars *sframe.Stack) func(string) (gmexpr.ExprType, error) {
	p := grammar.NewParser(vars, funcsig.Default())
	return func(src string) (gmexpr.ExprType, error) {
		e, _, err := p.Parse(src)
		if err != nil {
			return gmexpr.IllFormedType, err
		}
		return e.Type(), nil
	}
}

// Declare declares a variable, given its type as a string.
func (s *Session) Declare(name, typename string) error {
	return declare(s.Vars, name, typename)
}

// Checked is the result of checking one expression.
type Checked struct {
	Source string
	Expr   ast.Expression // nil if the parse failed
	Diags  *diag.Sink
	Err    error
}

// Check parses and type checks an expression.
func (s *Session) Check(src string) Checked {
	e, sink, err := s.parser.Parse(src)
	if err != nil {
		tracer().Debugf("%q: %v", src, err)
	}
	return Checked{Source: src, Expr: e, Diags: sink, Err: err}
}

// CheckAll checks each expression and writes the results to w. Argument "-"
// reads expressions from in, one per line. It returns the number of
// expressions which failed.
func (s *Session) CheckAll(exprs []string, in io.Reader, w io.Writer) (int, error) {
	failures := 0
	check := func(src string) error {
		c := s.Check(src)
		if c.Err != nil {
			failures++
		}
		_, err := Formatter{Mode: s.Format}.Format(c, w)
		return err
	}
	for _, src := range exprs {
		if src != "-" {
			if err := check(src); err != nil {
				return failures, err
			}
			continue
		}
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if gmexpr.SignalContext != nil && gmexpr.SignalContext.Err() != nil {
				return failures, gmexpr.SignalContext.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := check(line); err != nil {
				return failures, err
			}
		}
		if err := scanner.Err(); err != nil {
			return failures, errors.Wrap(err, "reading expressions")
		}
	}
	return failures, nil
}

// Signatures lists the signatures of the named functions, or of all functions
// if names is empty.
func (s *Session) Signatures(names ...string) (SignatureList, error) {
	if len(names) == 0 {
		names = s.Sigs.Names()
	}
	var list SignatureList
	for _, name := range names {
		if !s.Sigs.Has(name) {
			return nil, fmt.Errorf("no function %q is declared", name)
		}
		for _, sig := range s.Sigs.Signatures(name) {
			list = append(list, NamedSignature{Name: name, Sig: sig})
		}
	}
	return list, nil
}

// NamedSignature is a signature together with its function name.
type NamedSignature struct {
	Name string
	Sig  funcsig.Signature
}

// SignatureList is a listing of signatures, ordered by function name.
type SignatureList []NamedSignature
