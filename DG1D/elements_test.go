package DG1D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestQuadrature1D(t *testing.T) {
	// Gauss quadrature with N+1 points integrates x^k exactly up to k = 2N+1
	for N := 0; N < 6; N++ {
		X, W := JacobiGQ(0, 0, N)
		assert.InDelta(t, 2., floats.Sum(W), 1.e-13)
		for k := 0; k <= 2*N+1; k++ {
			var sum float64
			for i, x := range X {
				sum += W[i] * math.Pow(x, float64(k))
			}
			assert.InDelta(t, exactMoment(k), sum, 1.e-13)
		}
	}
	// Gauss-Lobatto with N+1 points integrates x^k exactly up to k = 2N-1
	for N := 1; N < 6; N++ {
		X, W := JacobiGL(0, 0, N)
		assert.Equal(t, -1., X[0])
		assert.Equal(t, 1., X[N])
		assert.InDelta(t, 2., floats.Sum(W), 1.e-13)
		for k := 0; k <= 2*N-1; k++ {
			var sum float64
			for i, x := range X {
				sum += W[i] * math.Pow(x, float64(k))
			}
			assert.InDelta(t, exactMoment(k), sum, 1.e-13)
		}
	}
	X, W := JacobiGL(0, 0, 2)
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, X, 1.e-14)
	assert.InDeltaSlice(t, []float64{1. / 3, 4. / 3, 1. / 3}, W, 1.e-14)
	// Gauss-Jacobi with alpha=1 integrates (1-x) x^k exactly up to k = 2N+1
	for N := 0; N < 6; N++ {
		X, W := JacobiGQ(1, 0, N)
		assert.InDelta(t, 2., floats.Sum(W), 1.e-13)
		for k := 0; k <= 2*N+1; k++ {
			var sum float64
			for i, x := range X {
				sum += W[i] * math.Pow(x, float64(k))
			}
			assert.InDelta(t, exactMoment(k)-exactMoment(k+1), sum, 1.e-13, "N=%d k=%d", N, k)
		}
	}
	// The first moment of (1-x) is -2/3
	X, W = JacobiGQ(1, 0, 2)
	assert.InDelta(t, -2./3, floats.Dot(X, W), 1.e-14)
}

func exactMoment(k int) float64 {
	if k%2 == 1 {
		return 0
	}
	return 2. / float64(k+1)
}

func TestLagrangeInterpolation(t *testing.T) {
	for N := 1; N < 5; N++ {
		nodes, _ := JacobiGL(0, 0, N)
		r := []float64{-0.9, -0.3, 0.2, 0.77}
		Chi, Dr := LagrangeInterpolation(nodes, r)
		// Interpolate x^N and its derivative exactly
		f := make([]float64, N+1)
		for i, x := range nodes {
			f[i] = math.Pow(x, float64(N))
		}
		for i, x := range r {
			var val, der float64
			for j := range f {
				val += Chi.At(i, j) * f[j]
				der += Dr.At(i, j) * f[j]
			}
			assert.InDelta(t, math.Pow(x, float64(N)), val, 1.e-12)
			assert.InDelta(t, float64(N)*math.Pow(x, float64(N-1)), der, 1.e-11)
		}
		// Identity on the nodes
		Chi, _ = LagrangeInterpolation(nodes, nodes)
		for i := 0; i <= N; i++ {
			for j := 0; j <= N; j++ {
				var exp float64
				if i == j {
					exp = 1
				}
				assert.InDelta(t, exp, Chi.At(i, j), 1.e-13)
			}
		}
	}
}
