package numflux

import (
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/utils"
)

// Central computes the viscous numerical flux 0.5 n.(Fv(wL,gL) + Fv(wR,gR)). The gradients are
// expected to carry the BR2 face lifting.
func Central[T utils.Scalar](m *flux.Model, wL, wR, gL, gR []T, n []float64, nf []T) {
	var (
		nv     = m.NVar
		FL, FR = make([]T, m.Dim*nv), make([]T, m.Dim*nv)
		fv     = flux.ResolveViscous[T](m)
	)
	fv(wL, gL, FL)
	fv(wR, gR, FR)
	for e := 0; e < nv; e++ {
		var s T
		for x := 0; x < m.Dim; x++ {
			s += utils.FromReal[T](n[x]) * (FL[x*nv+e] + FR[x*nv+e])
		}
		nf[e] = 0.5 * s
	}
}

// CentralJacobian returns the viscous numerical flux with its derivatives with respect to the
// states, dL[e*NVar+v], and the gradients, dgL[(e*Dim+y)*NVar+v].
func CentralJacobian(m *flux.Model, wL, wR, gL, gR, n, nf, dL, dR, dgL, dgR []float64) {
	var (
		dim  = m.Dim
		nv   = m.NVar
		ng   = dim * nv
		F    = make([]float64, ng)
		dFdW = make([]float64, ng*nv)
		dFdG = make([]float64, ng*ng)
		jac  = m.ViscousJacobian()
	)
	for e := range nf {
		nf[e] = 0
	}
	side := func(W, G, D, DG []float64) {
		jac(W, G, F, dFdW, dFdG)
		for e := 0; e < nv; e++ {
			for x := 0; x < dim; x++ {
				nf[e] += 0.5 * n[x] * F[x*nv+e]
			}
			for v := 0; v < nv; v++ {
				var a float64
				for x := 0; x < dim; x++ {
					a += n[x] * dFdW[(x*nv+e)*nv+v]
				}
				D[e*nv+v] = 0.5 * a
			}
			for k := 0; k < ng; k++ {
				var a float64
				for x := 0; x < dim; x++ {
					a += n[x] * dFdG[(x*nv+e)*ng+k]
				}
				DG[e*ng+k] = 0.5 * a
			}
		}
	}
	side(wL, gL, dL, dgL)
	side(wR, gR, dR, dgR)
}
