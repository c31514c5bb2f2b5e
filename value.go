package gmexpr

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gmexpr'.
func tracer() tracing.Trace {
	return tracing.Select("gmexpr")
}

// BaseType is the base type of an expression, i.e. its type with array
// dimensions stripped off.
type BaseType int8

// Base types of the modeling language. The zero value marks an ill-formed type.
const (
	IllFormed BaseType = iota
	Int
	Double
	Vector
	RowVector
	Matrix
)

var baseTypeNames = [...]string{
	IllFormed: "ill formed",
	Int:       "int",
	Double:    "real",
	Vector:    "vector",
	RowVector: "row vector",
	Matrix:    "matrix",
}

func (bt BaseType) String() string {
	if bt < 0 || int(bt) >= len(baseTypeNames) {
		return fmt.Sprintf("BaseType(%d)", int(bt))
	}
	return baseTypeNames[bt]
}

// --- Expression types ------------------------------------------------------

// ExprType is the type of an expression: a base type plus a number of array
// dimensions. The zero value is the ill-formed type.
//
// ExprType is a small value type and is always passed by value. Ill-formed
// types compare unequal to every well-formed type, but equal to each other,
// regardless of any dimensions.
type ExprType struct {
	Base BaseType
	Dims int
}

// IllFormedType is the sentinel type for expressions which failed to type-check.
var IllFormedType = ExprType{}

// Type creates an expression type. A negative number of dimensions yields
// the ill-formed type.
func Type(base BaseType, dims int) ExprType {
	if dims < 0 || base == IllFormed {
		return IllFormedType
	}
	return ExprType{Base: base, Dims: dims}
}

// Some frequently used types.
var (
	IntType       = ExprType{Base: Int}
	DoubleType    = ExprType{Base: Double}
	VectorType    = ExprType{Base: Vector}
	RowVectorType = ExprType{Base: RowVector}
	MatrixType    = ExprType{Base: Matrix}
)

// IsIllFormed is a predicate: has type-checking failed for this type?
func (t ExprType) IsIllFormed() bool {
	return t.Base == IllFormed
}

// IsPrimitive holds for scalar int or real types without array dimensions.
func (t ExprType) IsPrimitive() bool {
	return (t.Base == Int || t.Base == Double) && t.Dims == 0
}

// IsPrimitiveInt holds for scalar int without array dimensions.
func (t ExprType) IsPrimitiveInt() bool {
	return t.Base == Int && t.Dims == 0
}

// Equals compares two types. All ill-formed types are equal.
func (t ExprType) Equals(other ExprType) bool {
	if t.IsIllFormed() || other.IsIllFormed() {
		return t.IsIllFormed() && other.IsIllFormed()
	}
	return t.Base == other.Base && t.Dims == other.Dims
}

// String renders a type the way it is written in declarations, e.g. "real[,]"
// for a two-dimensional array of reals.
func (t ExprType) String() string {
	if t.IsIllFormed() || t.Dims == 0 {
		return t.Base.String()
	}
	return t.Base.String() + "[" + strings.Repeat(",", t.Dims-1) + "]"
}

// Promoted returns the type of a scalar composition of two primitive
// operands: real if either is real, int otherwise.
// If one of the operands is not primitive, the ill-formed type is returned.
func Promoted(a, b ExprType) ExprType {
	if !a.IsPrimitive() || !b.IsPrimitive() {
		return IllFormedType
	}
	if a.Base == Double || b.Base == Double {
		return DoubleType
	}
	return IntType
}

// ParseExprType reads a type from a string, as produced by ExprType.String().
// Additionally, "double" is accepted for "real" and "row_vector" for "row vector".
//
//     ParseExprType("matrix")     => (matrix, 0)
//     ParseExprType("int[,,]")    => (int, 3)
//     ParseExprType("row_vector") => (row vector, 0)
//
func ParseExprType(s string) (ExprType, error) {
	s = strings.TrimSpace(s)
	name, dims := s, 0
	if i := strings.IndexByte(s, '['); i >= 0 {
		if !strings.HasSuffix(s, "]") {
			return IllFormedType, fmt.Errorf("malformed array dimensions in type %q", s)
		}
		inner := s[i+1 : len(s)-1]
		if strings.Trim(inner, ", ") != "" {
			return IllFormedType, fmt.Errorf("malformed array dimensions in type %q", s)
		}
		dims = strings.Count(inner, ",") + 1
		name = strings.TrimSpace(s[:i])
	}
	var base BaseType
	switch name {
	case "int":
		base = Int
	case "real", "double":
		base = Double
	case "vector":
		base = Vector
	case "row vector", "row_vector":
		base = RowVector
	case "matrix":
		base = Matrix
	default:
		tracer().Debugf("unknown type name %q", name)
		return IllFormedType, fmt.Errorf("unknown type %q", s)
	}
	return ExprType{Base: base, Dims: dims}, nil
}
