package solver

import (
	"fmt"
	"math"

	"github.com/notargets/godpg/assembly"
	"github.com/notargets/godpg/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Result summarizes a solve
type Result struct {
	Iterations int
	Residual   float64 // L2 norm of the final residual
}

// gather copies the residual of every volume into one global vector
func gather(a *assembly.Assembler, n int) (r []float64) {
	r = make([]float64, 0, n)
	for _, vol := range a.Mesh.Volumes {
		r = append(r, vol.RHS.DataP...)
	}
	return
}

// Newton drives the residual to zero with dense LU solves of J dW = -RHS. The mesh solution is
// updated in place.
func Newton(a *assembly.Assembler, tol float64, maxIter int) (res Result, err error) {
	var (
		m  = a.Mesh
		J  = utils.NewBlockJacobian(m.BlockSizes())
		n  = 0
		lu mat.LU
	)
	for _, size := range m.BlockSizes() {
		n += size
	}
	dW := mat.NewVecDense(n, nil)
	for res.Iterations = 0; ; res.Iterations++ {
		a.ResidualAndJacobian(J)
		r := gather(a, n)
		res.Residual = floats.Norm(r, 2)
		if res.Residual < tol {
			return
		}
		if res.Iterations == maxIter {
			err = fmt.Errorf("no convergence after %d Newton iterations, residual %g",
				maxIter, res.Residual)
			return
		}
		floats.Scale(-1, r)
		lu.Factorize(J.ToDense().M)
		if err = lu.SolveVecTo(dW, false, mat.NewVecDense(n, r)); err != nil {
			err = fmt.Errorf("newton iteration %d: %w", res.Iterations, err)
			return
		}
		var offset int
		for _, vol := range m.Volumes {
			w := vol.W.DataP
			floats.Add(w, dW.RawVector().Data[offset:offset+len(w)])
			offset += len(w)
		}
	}
}

// SSPRK3 advances the mesh solution by nSteps explicit steps of the three stage strong stability
// preserving Runge-Kutta method. The time step is cfl h / (P+1)^2 with h the smallest volume
// length, scaled by the largest wave speed passed in.
func SSPRK3(a *assembly.Assembler, cfl, waveSpeed float64, nSteps int) (dt float64) {
	m := a.Mesh
	h := math.Inf(1)
	P := 0
	for _, vol := range m.Volumes {
		h = math.Min(h, vol.Geom.MinLength())
		P = max(P, vol.P)
	}
	dt = cfl * h / (waveSpeed * float64((P+1)*(P+1)))
	var (
		w0 = make([][]float64, len(m.Volumes))
		// stage: W = c0 W0 + c1 (W + dt M^-1 RHS)
		stage = func(c0, c1 float64) {
			a.Residual()
			a.TimeDerivative()
			for k, vol := range m.Volumes {
				w := vol.W.DataP
				for i := range w {
					w[i] = c0*w0[k][i] + c1*(w[i]+dt*vol.DWdt.DataP[i])
				}
			}
		}
	)
	for step := 0; step < nSteps; step++ {
		for k, vol := range m.Volumes {
			w0[k] = append(w0[k][:0], vol.W.DataP...)
		}
		stage(0, 1)
		stage(0.75, 0.25)
		stage(1./3., 2./3.)
	}
	return
}
