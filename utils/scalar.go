package utils

import (
	"math"
	"math/cmplx"
)

// Scalar is the element type of solution and flux storage: float64 for production passes,
// complex128 for complex step differentiation.
type Scalar interface {
	float64 | complex128
}

// FromReal converts a real value into the scalar type
func FromReal[T Scalar](x float64) (z T) {
	switch p := any(&z).(type) {
	case *float64:
		*p = x
	case *complex128:
		*p = complex(x, 0)
	}
	return
}

// Re returns the real part
func Re[T Scalar](x T) float64 {
	switch v := any(x).(type) {
	case float64:
		return v
	case complex128:
		return real(v)
	}
	panic("unreachable")
}

// Im returns the imaginary part, zero for float64
func Im[T Scalar](x T) float64 {
	if v, ok := any(x).(complex128); ok {
		return imag(v)
	}
	return 0
}

func Sqrt[T Scalar](x T) T {
	switch v := any(x).(type) {
	case float64:
		return any(math.Sqrt(v)).(T)
	case complex128:
		return any(cmplx.Sqrt(v)).(T)
	}
	panic("unreachable")
}

// Pow raises x to a real power
func Pow[T Scalar](x T, p float64) T {
	switch v := any(x).(type) {
	case float64:
		return any(math.Pow(v, p)).(T)
	case complex128:
		return any(cmplx.Pow(v, complex(p, 0))).(T)
	}
	panic("unreachable")
}

// Abs is the magnitude with the sign taken from the real part, which keeps the complex step
// derivative of |x| equal to sign(x).
func Abs[T Scalar](x T) T {
	if Re(x) < 0 {
		return -x
	}
	return x
}

// Max compares by real part and returns the larger argument unchanged
func Max[T Scalar](a, b T) T {
	if Re(a) >= Re(b) {
		return a
	}
	return b
}

func Min[T Scalar](a, b T) T {
	if Re(a) <= Re(b) {
		return a
	}
	return b
}

// ToReal copies the real parts of x into a new slice
func ToReal[T Scalar](x []T) (r []float64) {
	r = make([]float64, len(x))
	for i, val := range x {
		r[i] = Re(val)
	}
	return
}

// FromRealSlice converts x into a new slice of the scalar type
func FromRealSlice[T Scalar](x []float64) (z []T) {
	z = make([]T, len(x))
	for i, val := range x {
		z[i] = FromReal[T](val)
	}
	return
}

// MulAdd computes C += A * B where A is a real (nr x nk) matrix and B, C are (nk x ncol), (nr x ncol)
// row major arrays of the scalar type.
func MulAdd[T Scalar](A Matrix, B []T, ncol int, C []T) {
	nr, nk := A.Dims()
	for i := 0; i < nr; i++ {
		row := A.DataP[i*nk : (i+1)*nk]
		ci := C[i*ncol : (i+1)*ncol]
		for k, a := range row {
			if a == 0 {
				continue
			}
			at := FromReal[T](a)
			bk := B[k*ncol : (k+1)*ncol]
			for j := range ci {
				ci[j] += at * bk[j]
			}
		}
	}
}

// MulTransAdd computes C += A^T * B where A is a real (nk x nr) matrix
func MulTransAdd[T Scalar](A Matrix, B []T, ncol int, C []T) {
	nk, nr := A.Dims()
	for k := 0; k < nk; k++ {
		row := A.DataP[k*nr : (k+1)*nr]
		bk := B[k*ncol : (k+1)*ncol]
		for i, a := range row {
			if a == 0 {
				continue
			}
			at := FromReal[T](a)
			ci := C[i*ncol : (i+1)*ncol]
			for j := range ci {
				ci[j] += at * bk[j]
			}
		}
	}
}
