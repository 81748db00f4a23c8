package flux

import (
	"github.com/notargets/godpg/utils"
)

// Diffusion computes the Poisson flux F = -grad u. G is laid out as G[x*NVar+v].
func Diffusion[T utils.Scalar](m *Model, W, G, F []T) {
	for x := 0; x < m.Dim; x++ {
		F[x] = -G[x]
	}
}

// NavierStokes computes the viscous flux of the compressible equations with constant viscosity,
// the Stokes hypothesis and a constant Prandtl number. The sign is such that the total flux is the
// sum of the convective and viscous fluxes.
func NavierStokes[T utils.Scalar](m *Model, W, G, F []T) {
	var (
		dim   = m.Dim
		nv    = m.NVar
		gm1   = utils.FromReal[T](m.Gamma - 1)
		mu    = utils.FromReal[T](m.Mu)
		kappa = utils.FromReal[T](m.Mu * m.Gamma / ((m.Gamma - 1) * m.Pr))
		rho   = W[0]
		p     = Pressure(m, W)
		u     [3]T
		du    [3][3]T // du[i][x] = d u_i / d x
		dT    [3]T
		q2    T
		div   T
	)
	for i := 0; i < dim; i++ {
		u[i] = W[i+1] / rho
		q2 += u[i] * u[i]
	}
	for x := 0; x < dim; x++ {
		g := G[x*nv : (x+1)*nv]
		dp := g[dim+1] + 0.5*q2*g[0]
		for i := 0; i < dim; i++ {
			du[i][x] = (g[i+1] - u[i]*g[0]) / rho
			dp -= u[i] * g[i+1]
		}
		dp *= gm1
		dT[x] = (dp - p/rho*g[0]) / rho
	}
	for i := 0; i < dim; i++ {
		div += du[i][i]
	}
	for x := 0; x < dim; x++ {
		Fx := F[x*nv : (x+1)*nv]
		Fx[0] = 0
		var work T
		for i := 0; i < dim; i++ {
			tau := mu * (du[i][x] + du[x][i])
			if i == x {
				tau -= 2. / 3. * mu * div
			}
			Fx[i+1] = -tau
			work += u[i] * tau
		}
		Fx[dim+1] = -(work + kappa*dT[x])
	}
}

// DiffusionJacobian returns the Poisson flux with dFdW = 0 and dFdG[((x*NVar+e)*Dim+y)*NVar+v]
func DiffusionJacobian(m *Model, W, G, F, dFdW, dFdG []float64) {
	Diffusion(m, W, G, F)
	for i := range dFdW {
		dFdW[i] = 0
	}
	for i := range dFdG {
		dFdG[i] = 0
	}
	for x := 0; x < m.Dim; x++ {
		dFdG[x*m.Dim+x] = -1
	}
}

// NavierStokesJacobian differentiates the viscous flux with respect to the state and the gradient
// with a complex step.
func NavierStokesJacobian(m *Model, W, G, F, dFdW, dFdG []float64) {
	var (
		nv   = m.NVar
		nout = m.Dim * nv
	)
	NavierStokes(m, W, G, F)
	Gc := utils.FromRealSlice[complex128](G)
	copy(dFdW, ComplexStep(W, nout, func(Wc, Fc []complex128) {
		NavierStokes(m, Wc, Gc, Fc)
	}))
	Wc := utils.FromRealSlice[complex128](W)
	copy(dFdG, ComplexStep(G, nout, func(Gp, Fc []complex128) {
		NavierStokes(m, Wc, Gp, Fc)
	}))
}
