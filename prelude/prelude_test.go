package prelude

import (
	"strings"
	"testing"

	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/gmexpr/funcsig"
	"github.com/npillmayer/gmexpr/grammar"
	"github.com/npillmayer/gmexpr/sframe"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func checker(vars *sframe.Stack) func(string) (gmexpr.ExprType, error) {
	p := grammar.NewParser(vars, funcsig.Default())
	return func(src string) (gmexpr.ExprType, error) {
		e, _, err := p.Parse(src)
		if err != nil {
			return gmexpr.IllFormedType, err
		}
		return e.Type(), nil
	}
}

func TestDeclarations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.prelude")
	defer teardown()
	//
	script := `
		declare("n", "int")
		declare("y", "vector")
		declare("sigma", "real[,]")
		signature("foo", "real", "vector", "int")
		signature("bar", "row_vector")
	`
	vars := sframe.NewStack()
	sigs := funcsig.NewBuilder()
	if err := Load(strings.NewReader(script), "decls", Target{Vars: vars, Sigs: sigs}); err != nil {
		t.Fatal(err)
	}
	if typ, ok := vars.Lookup("sigma"); !ok || !typ.Equals(gmexpr.Type(gmexpr.Double, 2)) {
		t.Errorf("expected sigma to be real[,], is %s", typ)
	}
	if vars.Globals().Size() != 3 {
		t.Errorf("expected 3 global variables, have %d", vars.Globals().Size())
	}
	reg := sigs.Build()
	typ, err := reg.Resolve("foo", []gmexpr.ExprType{gmexpr.VectorType, gmexpr.IntType})
	if err != nil || !typ.Equals(gmexpr.DoubleType) {
		t.Errorf("expected foo(vector, int) : real, got %s, %v", typ, err)
	}
	if typ, err = reg.Resolve("bar", nil); err != nil || !typ.Equals(gmexpr.RowVectorType) {
		t.Errorf("expected bar() : row vector, got %s, %v", typ, err)
	}
}

func TestScopesAndChecks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.prelude")
	defer teardown()
	//
	script := `
		declare("y", "vector")
		assert(check("y'") == "row vector")
		scope("block", function()
			declare("y", "matrix")
			assert(check("y * y") == "matrix")
		end)
		assert(check("y + y") == "vector")
		local t, msg = check("undefined_var")
		assert(t == nil)
		assert(string.find(msg, "does not exist", 1, true))
	`
	vars := sframe.NewStack()
	err := Load(strings.NewReader(script), "scopes", Target{Vars: vars, Check: checker(vars)})
	if err != nil {
		t.Fatal(err)
	}
	if vars.Depth() != 1 {
		t.Errorf("expected scope frames to be popped, depth is %d", vars.Depth())
	}
}

func TestScriptErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gmexpr.prelude")
	defer teardown()
	//
	for i, x := range []struct {
		script, msg string
	}{
		{`declare("x", "tensor")`, "tensor"},
		{`declare("x", "int") declare("x", "real")`, "already declared"},
		{`signature("f", "real", "int")`, "cannot be declared here"},
		{`check("1 + 1")`, "cannot be checked here"},
		{`scope("inner", function() error("boom") end)`, "boom"},
		{`declare("x", `, "decls"},
	} {
		vars := sframe.NewStack()
		err := Load(strings.NewReader(x.script), "decls", Target{Vars: vars})
		if err == nil {
			t.Errorf("test %d: expected script error", i)
			continue
		}
		serr, ok := err.(*ScriptError)
		if !ok {
			t.Errorf("test %d: expected *ScriptError, got %T", i, err)
			continue
		}
		if serr.Chunk != "decls" || !strings.Contains(serr.Error(), x.msg) {
			t.Errorf("test %d: expected error mentioning %q, got %v", i, x.msg, serr)
		}
		if vars.Depth() != 1 {
			t.Errorf("test %d: scope frame left on stack", i)
		}
	}
}
