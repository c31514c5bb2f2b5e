/*
Package prelude loads declarations from Lua scripts.

A prelude declares the variables and function signatures which expressions
are checked against. It is a Lua chunk which may call the following global
functions:

    declare(name, type)                 -- declare a variable
    signature(name, result, param...)   -- add a function signature
    scope(name, fn)                     -- call fn within a new scope frame
    check(expr)                         -- type of an expression, or nil plus message

Types are written the way they are printed, e.g. "int", "real[,]", "row vector"
or "row_vector".

    declare("y", "vector")
    signature("foo", "real", "vector", "int")
    scope("block", function()
        declare("y", "matrix")
        assert(check("y * y") == "matrix")
    end)

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package prelude

import (
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/gmexpr/funcsig"
	"github.com/npillmayer/gmexpr/sframe"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// tracer traces with key 'gmexpr.prelude'.
func tracer() tracing.Trace {
	return tracing.Select("gmexpr.prelude")
}

// Target receives the declarations of a prelude. Vars is required. If Sigs
// is nil, calling signature() is a script error; if Check is nil, calling
// check() is a script error.
type Target struct {
	Vars  *sframe.Stack
	Sigs  *funcsig.Builder
	Check func(src string) (gmexpr.ExprType, error)
}

// ScriptError is returned for prelude scripts which fail to compile or run.
type ScriptError struct {
	Chunk string
	Err   error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("prelude %s: %v", e.Chunk, e.Err)
}

// Cause returns the underlying Lua error.
func (e *ScriptError) Cause() error {
	return e.Err
}

// Load runs a prelude script read from r. name identifies the chunk in error
// messages.
func Load(r io.Reader, name string, into Target) error {
	if into.Vars == nil {
		panic("prelude: target without symbol table")
	}
	L := lua.NewState()
	defer L.Close()
	register(L, into)
	fn, err := L.Load(r, name)
	if err != nil {
		return &ScriptError{Chunk: name, Err: err}
	}
	L.Push(fn)
	if err = L.PCall(0, lua.MultRet, nil); err != nil {
		return &ScriptError{Chunk: name, Err: err}
	}
	tracer().Infof("prelude %s loaded, %d global variables", name, into.Vars.Globals().Size())
	return nil
}

// LoadFile runs the prelude script in file path.
func LoadFile(path string, into Target) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening prelude")
	}
	defer f.Close()
	return Load(f, path, into)
}

func register(L *lua.LState, into Target) {
	L.SetGlobal("declare", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		typ := checkType(L, 2)
		decl, err := into.Vars.Declare(name, typ)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		tracer().Debugf("declared %s", decl)
		return 0
	}))
	L.SetGlobal("signature", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		result := checkType(L, 2)
		var params []gmexpr.ExprType
		for i := 3; i <= L.GetTop(); i++ {
			params = append(params, checkType(L, i))
		}
		if into.Sigs == nil {
			L.RaiseError("signatures cannot be declared here")
			return 0
		}
		if err := into.Sigs.Add(name, result, params...); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))
	L.SetGlobal("scope", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)
		into.Vars.PushFrame(name)
		err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
		into.Vars.PopFrame()
		if err != nil {
			L.RaiseError("in scope %s: %s", name, err.Error())
		}
		return 0
	}))
	L.SetGlobal("check", L.NewFunction(func(L *lua.LState) int {
		src := L.CheckString(1)
		if into.Check == nil {
			L.RaiseError("expressions cannot be checked here")
			return 0
		}
		typ, err := into.Check(src)
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LString(typ.String()))
		return 1
	}))
}

func checkType(L *lua.LState, n int) gmexpr.ExprType {
	s := L.CheckString(n)
	typ, err := gmexpr.ParseExprType(s)
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return typ
}
