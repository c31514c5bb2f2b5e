package funcsig

import (
	"fmt"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/gmexpr"
)

// Builder collects signatures for a registry.
// A builder may be used for a single registry only.
type Builder struct {
	sigs  *treemap.Map
	built bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{sigs: treemap.NewWithStringComparator()}
}

// Add registers a signature for function name. Adding an identical signature
// twice has no effect; adding a signature with the same parameters but a
// different result type is an error.
func (b *Builder) Add(name string, result gmexpr.ExprType, params ...gmexpr.ExprType) error {
	if b.built {
		panic("funcsig: builder already used to build a registry")
	}
	if name == "" {
		return fmt.Errorf("function signature without a name")
	}
	if result.IsIllFormed() {
		return fmt.Errorf("function %s: result type is ill formed", name)
	}
	for i, p := range params {
		if p.IsIllFormed() {
			return fmt.Errorf("function %s: parameter %d is ill formed", name, i)
		}
	}
	var sigs []Signature
	if v, found := b.sigs.Get(name); found {
		sigs = v.([]Signature)
	}
	for _, sig := range sigs {
		if sig.sameParams(params) {
			if sig.Result.Equals(result) {
				return nil
			}
			return fmt.Errorf("conflicting result types for %s and %s", sig.Format(name),
				Signature{Result: result, Params: params}.Format(name))
		}
	}
	ps := make([]gmexpr.ExprType, len(params))
	copy(ps, params)
	b.sigs.Put(name, append(sigs, Signature{Result: result, Params: ps}))
	return nil
}

// Build creates an immutable registry from the signatures collected so far.
func (b *Builder) Build() *Registry {
	if b.built {
		panic("funcsig: builder already used to build a registry")
	}
	b.built = true
	tracer().Infof("function registry with %d function names", b.sigs.Size())
	return &Registry{sigs: b.sigs}
}

// must is for signatures known to be consistent.
func (b *Builder) must(name string, result gmexpr.ExprType, params ...gmexpr.ExprType) {
	if err := b.Add(name, result, params...); err != nil {
		panic(err)
	}
}

var defaultRegistry *Registry
var initOnce sync.Once

// Default returns a registry containing the builtin functions. It is created
// once, on first use.
func Default() *Registry {
	initOnce.Do(func() {
		defaultRegistry = Builtins().Build()
	})
	return defaultRegistry
}
