package ast

import "github.com/npillmayer/gmexpr"

// IndexType infers the type of an expression of type base after applying
// groups of indices. Groups are flattened: x[1,2] and x[1][2] have the same type.
//
// Indices first consume array dimensions. Remaining indices reach into
// vectors and matrices:
//
//     vector, row vector  + 1 index   => real
//     matrix              + 1 index   => row vector
//     matrix              + 2 indices => real
//
// Anything else is ill-formed.
func IndexType(base gmexpr.ExprType, dims [][]Expression) gmexpr.ExprType {
	if base.IsIllFormed() {
		return gmexpr.IllFormedType
	}
	n := countIndices(dims)
	if n <= base.Dims {
		return gmexpr.Type(base.Base, base.Dims-n)
	}
	rest := n - base.Dims
	switch {
	case rest == 1 && (base.Base == gmexpr.Vector || base.Base == gmexpr.RowVector):
		return gmexpr.DoubleType
	case rest == 1 && base.Base == gmexpr.Matrix:
		return gmexpr.RowVectorType
	case rest == 2 && base.Base == gmexpr.Matrix:
		return gmexpr.DoubleType
	}
	tracer().Debugf("%d indices inappropriate for type %s", n, base)
	return gmexpr.IllFormedType
}

func countIndices(dims [][]Expression) int {
	n := 0
	for _, group := range dims {
		n += len(group)
	}
	return n
}
