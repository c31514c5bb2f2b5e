package sframe

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/stacks/linkedliststack"
	"github.com/npillmayer/gmexpr"
)

// Frame is a scope frame, holding the declarations of one scope.
type Frame struct {
	Name   string
	Parent *Frame
	decls  *treemap.Map // name → *VarDecl
}

func newFrame(name string, parent *Frame) *Frame {
	return &Frame{Name: name, Parent: parent, decls: treemap.NewWithStringComparator()}
}

// Get returns the declaration of a name in this frame only.
func (f *Frame) Get(name string) (*VarDecl, bool) {
	if v, found := f.decls.Get(name); found {
		return v.(*VarDecl), true
	}
	return nil, false
}

// Declarations returns the declarations of this frame, ordered by name.
func (f *Frame) Declarations() []*VarDecl {
	vals := f.decls.Values()
	decls := make([]*VarDecl, len(vals))
	for i, v := range vals {
		decls[i] = v.(*VarDecl)
	}
	return decls
}

// Size returns the number of declarations in this frame.
func (f *Frame) Size() int {
	return f.decls.Size()
}

// --- Frame stack -----------------------------------------------------------

// Stack is a stack of scope frames. The bottom frame holds global declarations
// and is never popped.
//
// Stack is not safe for concurrent modification. Concurrent lookups are fine
// as long as no frames are pushed, popped or declared into.
type Stack struct {
	frames *linkedliststack.Stack
}

// NewStack creates a frame stack with a global frame.
func NewStack() *Stack {
	s := &Stack{frames: linkedliststack.New()}
	s.frames.Push(newFrame("#global", nil))
	return s
}

// Current gets the innermost frame (TOS).
func (s *Stack) Current() *Frame {
	f, _ := s.frames.Peek()
	return f.(*Frame)
}

// Globals gets the outermost frame, containing global declarations.
func (s *Stack) Globals() *Frame {
	f := s.Current()
	for f.Parent != nil {
		f = f.Parent
	}
	return f
}

// Depth returns the number of frames on the stack, including the global one.
func (s *Stack) Depth() int {
	return s.frames.Size()
}

// PushFrame pushes a new, empty frame onto the stack.
func (s *Stack) PushFrame(name string) *Frame {
	f := newFrame(name, s.Current())
	s.frames.Push(f)
	tracer().P("scope", name).Debugf("pushing new frame")
	return f
}

// PopFrame pops the innermost frame. Popping the global frame is a programming
// error and panics.
func (s *Stack) PopFrame() *Frame {
	if s.frames.Size() <= 1 {
		panic("attempt to pop global frame")
	}
	f, _ := s.frames.Pop()
	tracer().P("scope", f.(*Frame).Name).Debugf("popping frame")
	return f.(*Frame)
}

// Declare declares a variable in the innermost frame. Declaring a name twice
// in the same frame is an error; shadowing a name of an outer frame is not.
func (s *Stack) Declare(name string, typ gmexpr.ExprType) (*VarDecl, error) {
	f := s.Current()
	if prev, found := f.Get(name); found {
		return nil, fmt.Errorf("variable %q already declared in scope %s as %s", name, f.Name, prev.Type)
	}
	decl, err := NewVarDecl(name, typ)
	if err != nil {
		return nil, err
	}
	f.decls.Put(name, decl)
	return decl, nil
}

// Resolve finds the declaration of a name, searching from the innermost frame
// outwards.
func (s *Stack) Resolve(name string) (*VarDecl, bool) {
	it := s.frames.Iterator()
	for it.Next() {
		if decl, found := it.Value().(*Frame).Get(name); found {
			return decl, true
		}
	}
	return nil, false
}

// Lookup returns the declared type of a variable.
func (s *Stack) Lookup(name string) (gmexpr.ExprType, bool) {
	if decl, found := s.Resolve(name); found {
		return decl.Type, true
	}
	return gmexpr.IllFormedType, false
}

// Visible returns all visible declarations, ordered by name. Shadowed
// declarations are omitted.
func (s *Stack) Visible() []*VarDecl {
	seen := treemap.NewWithStringComparator()
	it := s.frames.Iterator()
	for it.Next() {
		for _, decl := range it.Value().(*Frame).Declarations() {
			if _, found := seen.Get(decl.Name); !found {
				seen.Put(decl.Name, decl)
			}
		}
	}
	vals := seen.Values()
	decls := make([]*VarDecl, len(vals))
	for i, v := range vals {
		decls[i] = v.(*VarDecl)
	}
	return decls
}
