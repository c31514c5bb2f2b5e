/*
Package funcsig is the catalog of function signatures.

Functions are overloaded: one name may carry many signatures. Calls are
resolved by name and argument types, allowing int arguments where a
parameter is real (with the same number of array dimensions). Among all
matching signatures, the one needing the least promotions wins; if several
need the same minimal number, the call is ambiguous.

A Registry is immutable once built and may be shared between goroutines.
Registries are created with a Builder:

    b := funcsig.Builtins()
    b.Add("my_fun", gmexpr.DoubleType, gmexpr.VectorType, gmexpr.IntType)
    reg := b.Build()

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package funcsig

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gmexpr.funcsig'.
func tracer() tracing.Trace {
	return tracing.Select("gmexpr.funcsig")
}

// Signature is the type of one overload of a function.
type Signature struct {
	Result gmexpr.ExprType
	Params []gmexpr.ExprType
}

// Format renders the signature for a function name, e.g. "pow(real, real) : real".
func (sig Signature) Format(name string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, p := range sig.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") : ")
	b.WriteString(sig.Result.String())
	return b.String()
}

func (sig Signature) sameParams(params []gmexpr.ExprType) bool {
	if len(sig.Params) != len(params) {
		return false
	}
	for i := range params {
		if !sig.Params[i].Equals(params[i]) {
			return false
		}
	}
	return true
}

// promotions counts the int-to-real promotions necessary to call sig with
// arguments of the given types. It returns -1 if the arguments do not fit.
func (sig Signature) promotions(args []gmexpr.ExprType) int {
	if len(sig.Params) != len(args) {
		return -1
	}
	n := 0
	for i, a := range args {
		p := sig.Params[i]
		if a.Equals(p) {
			continue
		}
		if a.Base == gmexpr.Int && p.Base == gmexpr.Double && a.Dims == p.Dims {
			n++
			continue
		}
		return -1
	}
	return n
}

// --- Registry --------------------------------------------------------------

// Registry maps function names to their signatures.
type Registry struct {
	sigs *treemap.Map // name → []Signature, ordered by name
}

// Resolve finds the result type of a call of function name with arguments of
// types args. If no unique signature matches, the ill-formed type is returned
// together with a *ResolutionError.
func (reg *Registry) Resolve(name string, args []gmexpr.ExprType) (gmexpr.ExprType, error) {
	sigs := reg.Signatures(name)
	if len(sigs) == 0 {
		return gmexpr.IllFormedType, &ResolutionError{Reason: UnknownFunction, Name: name, Args: args}
	}
	min, matches := -1, []Signature{}
	for _, sig := range sigs {
		p := sig.promotions(args)
		switch {
		case p < 0:
			continue
		case min < 0 || p < min:
			min, matches = p, []Signature{sig}
		case p == min:
			matches = append(matches, sig)
		}
	}
	tracer().Debugf("resolve %s%v: %d match(es) with %d promotion(s)", name, args, len(matches), min)
	switch len(matches) {
	case 0:
		return gmexpr.IllFormedType, &ResolutionError{Reason: NoMatch, Name: name, Args: args, Candidates: sigs}
	case 1:
		return matches[0].Result, nil
	}
	return gmexpr.IllFormedType, &ResolutionError{Reason: Ambiguous, Name: name, Args: args, Candidates: matches}
}

// Has is a predicate: is any signature registered for a function name?
func (reg *Registry) Has(name string) bool {
	_, found := reg.sigs.Get(name)
	return found
}

// Signatures returns all signatures of a function, in order of registration.
func (reg *Registry) Signatures(name string) []Signature {
	v, found := reg.sigs.Get(name)
	if !found {
		return nil
	}
	sigs := v.([]Signature)
	r := make([]Signature, len(sigs))
	copy(r, sigs)
	return r
}

// Names returns the names of all registered functions in lexical order.
func (reg *Registry) Names() []string {
	keys := reg.sigs.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.(string)
	}
	return names
}

// Len returns the number of function names in the registry.
func (reg *Registry) Len() int {
	return reg.sigs.Size()
}

// --- Errors ----------------------------------------------------------------

// FailureReason tells why a call could not be resolved.
type FailureReason int8

// Reasons for resolution failures
const (
	UnknownFunction FailureReason = iota
	NoMatch
	Ambiguous
)

// ResolutionError describes a failed resolution of a function call.
type ResolutionError struct {
	Reason     FailureReason
	Name       string
	Args       []gmexpr.ExprType
	Candidates []Signature // available signatures, or the ambiguous ones
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	if e.Reason == Ambiguous {
		fmt.Fprintf(&b, "ambiguous call to function name=%q", e.Name)
	} else {
		fmt.Fprintf(&b, "no matches for function name=%q", e.Name)
	}
	for i, a := range e.Args {
		fmt.Fprintf(&b, "\n    arg %d type=%s", i, a)
	}
	switch e.Reason {
	case UnknownFunction:
		fmt.Fprintf(&b, "\nno function %q is declared", e.Name)
	case NoMatch:
		fmt.Fprintf(&b, "\navailable function signatures for %s:", e.Name)
	case Ambiguous:
		fmt.Fprintf(&b, "\nequally good candidates for %s:", e.Name)
	}
	for i, sig := range e.Candidates {
		fmt.Fprintf(&b, "\n%d.  %s", i, sig.Format(e.Name))
	}
	return b.String()
}
