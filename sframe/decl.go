package sframe

import (
	"fmt"
	"sync/atomic"

	"github.com/npillmayer/gmexpr"
)

// VarDecl is the declaration of a variable.
type VarDecl struct {
	Name string
	Type gmexpr.ExprType
	ID   int32 // unique serial number
}

var serialCounter int32

func nextSerial() int32 {
	return atomic.AddInt32(&serialCounter, 1)
}

// NewVarDecl creates a variable declaration. Names must start with a letter,
// followed by letters, digits, '_' or '.'. A dot must be followed by at least
// one letter, digit or '_'.
func NewVarDecl(name string, typ gmexpr.ExprType) (*VarDecl, error) {
	if !IsIdentifier(name) {
		return nil, fmt.Errorf("not a valid variable name: %q", name)
	}
	if typ.IsIllFormed() {
		return nil, fmt.Errorf("variable %s declared with ill-formed type", name)
	}
	decl := &VarDecl{Name: name, Type: typ, ID: nextSerial()}
	tracer().P("decl", name).Debugf("variable declaration %s created", decl)
	return decl, nil
}

func (decl *VarDecl) String() string {
	return decl.Type.String() + " " + decl.Name
}

// IsIdentifier is a predicate: is s a legal variable name?
func IsIdentifier(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			if i == len(s)-1 || s[i+1] == '.' {
				return false
			}
			continue
		}
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
