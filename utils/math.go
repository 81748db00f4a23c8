package utils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func POW(x float64, pp int) (y float64) {
	var (
		p       = pp
		flipped bool
	)
	if pp > 8 || pp < -8 {
		return math.Pow(x, float64(p))
	}
	if p < 0 {
		p = -pp
		flipped = true
	}
	y = 1
	for i := 0; i < p; i++ {
		y *= x
	}
	if flipped {
		y = 1. / y
	}
	return
}

// NewSymTriDiagonal builds the symmetric tridiagonal matrix with diagonal d0 and off diagonal d1
func NewSymTriDiagonal(d0, d1 []float64) (Tri *mat.SymDense) {
	N := len(d0)
	Tri = mat.NewSymDense(N, nil)
	for i := 0; i < N; i++ {
		Tri.SetSym(i, i, d0[i])
		if i < N-1 {
			Tri.SetSym(i, i+1, d1[i])
		}
	}
	return
}

// Linspace returns N equally spaced values from a to b inclusive
func Linspace(a, b float64, N int) (v []float64) {
	v = make([]float64, N)
	if N == 1 {
		v[0] = a
		return
	}
	dx := (b - a) / float64(N-1)
	for i := range v {
		v[i] = a + float64(i)*dx
	}
	v[N-1] = b
	return
}
