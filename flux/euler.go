package flux

import (
	"github.com/notargets/godpg/utils"
)

// Euler computes the convective flux F[x*NVar+e] of the compressible equations
func Euler[T utils.Scalar](m *Model, W, F []T) {
	var (
		dim = m.Dim
		nv  = m.NVar
		rho = W[0]
		E   = W[dim+1]
		p   = Pressure(m, W)
	)
	for x := 0; x < dim; x++ {
		ux := W[x+1] / rho
		Fx := F[x*nv : (x+1)*nv]
		Fx[0] = W[x+1]
		for i := 0; i < dim; i++ {
			Fx[i+1] = W[i+1] * ux
		}
		Fx[x+1] += p
		Fx[dim+1] = ux * (E + p)
	}
}

// EulerJacobian computes the flux and its closed form Jacobian dF[((x*NVar+e)*NVar+v)]
func EulerJacobian(m *Model, W, F, dF []float64) {
	Euler(m, W, F)
	var (
		dim = m.Dim
		nv  = m.NVar
		gm1 = m.Gamma - 1
		rho = W[0]
		u   = make([]float64, dim)
		q2  float64
	)
	for x := range u {
		u[x] = W[x+1] / rho
		q2 += u[x] * u[x]
	}
	H := Enthalpy(m, W)
	for i := range dF {
		dF[i] = 0
	}
	for x := 0; x < dim; x++ {
		at := func(e, v int) *float64 { return &dF[(x*nv+e)*nv+v] }
		*at(0, x+1) = 1
		for i := 0; i < dim; i++ {
			*at(i+1, 0) = -u[i] * u[x]
			*at(i+1, x+1) += u[i]
			*at(i+1, i+1) += u[x]
		}
		*at(x+1, 0) += 0.5 * gm1 * q2
		for j := 0; j < dim; j++ {
			*at(x+1, j+1) -= gm1 * u[j]
		}
		*at(x+1, dim+1) = gm1
		*at(dim+1, 0) = u[x] * (0.5*gm1*q2 - H)
		for j := 0; j < dim; j++ {
			*at(dim+1, j+1) = -gm1 * u[x] * u[j]
		}
		*at(dim+1, x+1) += H
		*at(dim+1, dim+1) = m.Gamma * u[x]
	}
}

// Advection computes F = b u for scalar linear advection
func Advection[T utils.Scalar](m *Model, W, F []T) {
	for x := 0; x < m.Dim; x++ {
		F[x] = utils.FromReal[T](m.B[x]) * W[0]
	}
}

func AdvectionJacobian(m *Model, W, F, dF []float64) {
	Advection(m, W, F)
	copy(dF, m.B)
}
