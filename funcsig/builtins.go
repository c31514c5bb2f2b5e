package funcsig

import "github.com/npillmayer/gmexpr"

var (
	tInt  = gmexpr.IntType
	tReal = gmexpr.DoubleType
	tVec  = gmexpr.VectorType
	tRow  = gmexpr.RowVectorType
	tMat  = gmexpr.MatrixType
)

// Builtins returns a builder pre-loaded with the library functions every model
// may call. This includes the functions operators are desugared to.
// Clients may add further signatures before building the registry.
func Builtins() *Builder {
	b := NewBuilder()
	operatorFunctions(b)
	mathFunctions(b)
	matrixFunctions(b)
	return b
}

func operatorFunctions(b *Builder) {
	for _, name := range []string{"add", "subtract"} {
		scalarArith(b, name)
		for _, t := range []gmexpr.ExprType{tVec, tRow, tMat} {
			b.must(name, t, t, t)
			b.must(name, t, t, tReal)
			b.must(name, t, tReal, t)
		}
	}
	scalarArith(b, "multiply")
	for _, t := range []gmexpr.ExprType{tVec, tRow, tMat} {
		b.must("multiply", t, t, tReal)
		b.must("multiply", t, tReal, t)
	}
	b.must("multiply", tReal, tRow, tVec)
	b.must("multiply", tMat, tVec, tRow)
	b.must("multiply", tVec, tMat, tVec)
	b.must("multiply", tRow, tRow, tMat)
	b.must("multiply", tMat, tMat, tMat)
	scalarArith(b, "divide")
	for _, t := range []gmexpr.ExprType{tVec, tRow, tMat} {
		b.must("divide", t, t, tReal)
	}
	for _, name := range []string{"elt_multiply", "elt_divide"} {
		for _, t := range []gmexpr.ExprType{tVec, tRow, tMat} {
			b.must(name, t, t, t)
		}
	}
	b.must("mdivide_left", tVec, tMat, tVec)
	b.must("mdivide_left", tMat, tMat, tMat)
	b.must("mdivide_right", tRow, tRow, tMat)
	b.must("mdivide_right", tMat, tMat, tMat)
	for _, t := range []gmexpr.ExprType{tInt, tReal, tVec, tRow, tMat} {
		b.must("minus", t, t)
	}
	b.must("transpose", tRow, tVec)
	b.must("transpose", tVec, tRow)
	b.must("transpose", tMat, tMat)
	for _, name := range []string{
		"logical_or", "logical_and", "logical_eq", "logical_neq",
		"logical_lt", "logical_lte", "logical_gt", "logical_gte",
	} {
		b.must(name, tInt, tInt, tInt)
		b.must(name, tInt, tReal, tReal)
	}
	b.must("logical_negation", tInt, tInt)
	b.must("logical_negation", tInt, tReal)
}

func scalarArith(b *Builder, name string) {
	b.must(name, tInt, tInt, tInt)
	b.must(name, tReal, tReal, tReal)
}

func mathFunctions(b *Builder) {
	for _, name := range []string{
		"exp", "log", "sqrt", "fabs", "inv_logit", "logit", "log1p", "lgamma",
		"sin", "cos", "tan", "tanh", "floor", "ceil",
	} {
		b.must(name, tReal, tReal)
	}
	b.must("abs", tInt, tInt)
	b.must("abs", tReal, tReal)
	for _, name := range []string{"pow", "fmin", "fmax", "fdim", "hypot"} {
		b.must(name, tReal, tReal, tReal)
	}
	b.must("int_step", tInt, tReal)
	for _, name := range []string{"e", "pi", "not_a_number", "positive_infinity", "negative_infinity"} {
		b.must(name, tReal)
	}
}

func matrixFunctions(b *Builder) {
	for _, t := range []gmexpr.ExprType{tVec, tRow, tMat, gmexpr.Type(gmexpr.Double, 1)} {
		b.must("sum", tReal, t)
		b.must("mean", tReal, t)
		b.must("log_sum_exp", tReal, t)
	}
	b.must("sum", tInt, gmexpr.Type(gmexpr.Int, 1))
	for _, t := range []gmexpr.ExprType{tVec, tRow, tMat} {
		b.must("rows", tInt, t)
		b.must("cols", tInt, t)
		b.must("num_elements", tInt, t)
		b.must("exp", t, t)
		b.must("log", t, t)
	}
	b.must("dot_product", tReal, tVec, tVec)
	b.must("dot_product", tReal, tRow, tRow)
	b.must("dot_product", tReal, tVec, tRow)
	b.must("dot_product", tReal, tRow, tVec)
	b.must("rep_vector", tVec, tReal, tInt)
	b.must("rep_row_vector", tRow, tReal, tInt)
	b.must("rep_matrix", tMat, tReal, tInt, tInt)
	b.must("diag_matrix", tMat, tVec)
	b.must("diagonal", tVec, tMat)
	b.must("inverse", tMat, tMat)
	b.must("determinant", tReal, tMat)
	b.must("softmax", tVec, tVec)
	b.must("col", tVec, tMat, tInt)
	b.must("row", tRow, tMat, tInt)
}
