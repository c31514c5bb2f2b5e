package grammar

/*
BSD License

Copyright (c) 2019–21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.  */

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/npillmayer/gmexpr/diag"
	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token categories
type tokKind int

const (
	tokEOF tokKind = iota
	tokInt
	tokReal
	tokIdent
	tokOp // operators and punctuation, identified by lexeme
)

func (k tokKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokInt:
		return "integer"
	case tokReal:
		return "real"
	case tokIdent:
		return "identifier"
	}
	return "operator"
}

// Operator and punctuation lexemes. lexmachine prefers the longest match, so
// "<=" wins over "<" regardless of order.
var operators = []string{
	"||", "&&", "==", "!=", "<=", ">=", ".*", "./",
	"<", ">", "+", "-", "*", "/", "\\", "!", "'", "(", ")", "[", "]", ",",
}

type token struct {
	kind   tokKind
	lexeme string
	pos    diag.Position
	end    int // byte offset after the lexeme
}

func (t token) is(op string) bool {
	return t.kind == tokOp && t.lexeme == op
}

func (t token) String() string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return "\"" + t.lexeme + "\""
}

var lexer *lexmachine.Lexer
var lexerErr error
var lexerOnce sync.Once // monitors one-time compilation of the DFA

func compiledLexer() (*lexmachine.Lexer, error) {
	lexerOnce.Do(func() {
		lx := lexmachine.NewLexer()
		lx.Add([]byte(`( |\t|\n|\r)+`), skip)
		lx.Add([]byte(`//[^\n]*\n?`), skip)
		lx.Add([]byte(`/\*([^*]|\r|\n|(\*+([^*/]|\r|\n)))*\*+/`), skip)
		lx.Add([]byte(`[0-9]+`), makeToken(tokInt))
		lx.Add([]byte(`[0-9]+\.[0-9]*([eE][\+\-]?[0-9]+)?`), makeToken(tokReal))
		lx.Add([]byte(`\.[0-9]+([eE][\+\-]?[0-9]+)?`), makeToken(tokReal))
		lx.Add([]byte(`[0-9]+[eE][\+\-]?[0-9]+`), makeToken(tokReal))
		lx.Add([]byte(`[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z0-9_]+)*`), makeToken(tokIdent))
		for _, op := range operators {
			lx.Add([]byte(quote(op)), makeToken(tokOp))
		}
		if lexerErr = lx.Compile(); lexerErr != nil {
			lexerErr = errors.Wrap(lexerErr, "compiling expression lexer")
			return
		}
		lexer = lx
	})
	return lexer, lexerErr
}

// quote escapes regex meta characters of an operator lexeme.
func quote(op string) string {
	var b strings.Builder
	for _, r := range op {
		if strings.ContainsRune(`|+*?()[].\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(kind tokKind) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(kind), string(m.Bytes), m), nil
	}
}

// tokenize splits an expression into tokens. The last token is always tokEOF.
// Input the lexer cannot consume is reported to the sink and returned as a
// syntax error.
func tokenize(src string, sink *diag.Sink) ([]token, error) {
	lx, err := compiledLexer()
	if err != nil {
		return nil, err
	}
	scan, err := lx.Scanner([]byte(src))
	if err != nil {
		return nil, errors.Wrap(err, "creating expression scanner")
	}
	lines := newLineIndex(src)
	var toks []token
	for tok, err, eos := scan.Next(); !eos; tok, err, eos = scan.Next() {
		if ui, is := err.(*machines.UnconsumedInput); is {
			at := ui.StartTC
			if at >= len(src) {
				at = len(src) - 1
			}
			pos := lines.position(at)
			r, _ := utf8.DecodeRuneInString(src[at:])
			sink.Errorf(pos, diag.Lexical, "unexpected character %q", r)
			return nil, &ParseError{Kind: SyntaxError, Pos: pos, Msg: "unexpected character " + quoteRune(r)}
		} else if err != nil {
			return nil, errors.Wrap(err, "scanning expression")
		}
		t := tok.(*lexmachine.Token)
		toks = append(toks, token{
			kind:   tokKind(t.Type),
			lexeme: string(t.Lexeme),
			pos:    lines.position(t.TC),
			end:    t.TC + len(t.Lexeme),
		})
	}
	tracer().Debugf("%d tokens in %q", len(toks), src)
	return append(toks, token{kind: tokEOF, pos: lines.position(len(src)), end: len(src)}), nil
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}

// lineIndex maps byte offsets to line and column numbers. Columns count runes.
type lineIndex struct {
	src    string
	starts []int
}

func newLineIndex(src string) lineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{src: src, starts: starts}
}

func (li lineIndex) position(offset int) diag.Position {
	line := len(li.starts) - 1
	for line > 0 && li.starts[line] > offset {
		line--
	}
	col := utf8.RuneCountInString(li.src[li.starts[line]:offset]) + 1
	return diag.Position{Offset: offset, Line: line + 1, Column: col}
}
