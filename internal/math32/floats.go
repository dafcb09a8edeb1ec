// Package math32 provides float32 vector and small-matrix operations.
// This is an internal package - external users should use the vqgo package.
package math32

// Dot calculates the dot product of two vectors.
func Dot(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}

	return ret
}

// SquaredL2 calculates the squared L2 distance.
func SquaredL2(a, b []float32) float32 {
	var distance float32
	for i := range a {
		distance += (a[i] - b[i]) * (a[i] - b[i])
	}

	return distance
}

// SquaredNorm calculates the squared L2 norm of a vector.
func SquaredNorm(a []float32) float32 {
	return Dot(a, a)
}

// RowNorms computes the squared L2 norm of each dim-sized row of a flattened
// row-major matrix. The result has len(a)/dim entries.
func RowNorms(a []float32, dim int) []float32 {
	n := len(a) / dim
	norms := make([]float32, n)
	for i := 0; i < n; i++ {
		norms[i] = SquaredNorm(a[i*dim : (i+1)*dim])
	}

	return norms
}

// MatMulNT computes A * B^T for two flattened row-major matrices sharing the
// inner dimension dim: A has n rows, B has k rows, and out is filled row-major
// with out[i*k+j] = dot(A_i, B_j). out must have length n*k.
func MatMulNT(a []float32, n int, b []float32, k, dim int, out []float32) {
	for i := 0; i < n; i++ {
		row := a[i*dim : (i+1)*dim]
		dst := out[i*k : (i+1)*k]
		for j := 0; j < k; j++ {
			dst[j] = Dot(row, b[j*dim:(j+1)*dim])
		}
	}
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}

// AxpyInPlace computes a += scalar * b element-wise.
func AxpyInPlace(a []float32, scalar float32, b []float32) {
	for i := range a {
		a[i] += scalar * b[i]
	}
}

// ClampNonNegative replaces negative elements of a with zero.
//
// The expanded distance form ||v||^2 + ||c||^2 - 2*v.c can come out slightly
// negative through floating-point cancellation when v is very close to c.
func ClampNonNegative(a []float32) {
	for i := range a {
		if a[i] < 0 {
			a[i] = 0
		}
	}
}
