package verification

import (
	"fmt"
	"math"

	"github.com/notargets/godpg/assembly"
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/utils"
	"gonum.org/v1/gonum/stat"
)

// Report is the outcome of a Jacobian cross check
type Report struct {
	MaxDiff  float64 // largest |J_analytic - J_complex step|
	Scale    float64 // largest |J_complex step|, at least one
	Row, Col int     // global location of MaxDiff
	Tol      float64
	Columns  int
}

func (r Report) Passed() bool { return r.MaxDiff <= r.Tol*r.Scale }

func (r Report) String() string {
	status := "passed"
	if !r.Passed() {
		status = "FAILED"
	}
	return fmt.Sprintf("jacobian check %s: max difference %.3e at (%d,%d), scale %.3e, tolerance %.1e, %d columns",
		status, r.MaxDiff, r.Row, r.Col, r.Scale, r.Tol, r.Columns)
}

// CheckJacobian compares the analytic Jacobian of the mesh solution with the one obtained by
// perturbing every degree of freedom with a complex step. The tolerance is relative to the
// largest Jacobian entry.
func CheckJacobian(a *assembly.Assembler, tol float64) (r Report) {
	var (
		m       = a.Mesh
		J       = utils.NewBlockJacobian(m.BlockSizes())
		st      = assembly.NewState[complex128](m)
		offsets = make([]int, len(m.Volumes)+1)
	)
	a.ResidualAndJacobian(J)
	for k, n := range m.BlockSizes() {
		offsets[k+1] = offsets[k] + n
	}
	r = Report{Tol: tol, Scale: 1}
	for S := range st.W {
		for j := range st.W[S] {
			st.W[S][j] += complex(0, flux.StepSize)
			assembly.ResidualT(a, st)
			col := offsets[S] + j
			for K := range st.RHS {
				for i, val := range st.RHS[K] {
					var (
						row = offsets[K] + i
						cs  = imag(val) / flux.StepSize
						d   = math.Abs(cs - J.At(row, col))
					)
					r.Scale = math.Max(r.Scale, math.Abs(cs))
					if d > r.MaxDiff {
						r.MaxDiff, r.Row, r.Col = d, row, col
					}
				}
			}
			st.W[S][j] = complex(real(st.W[S][j]), 0)
			r.Columns++
		}
	}
	return
}

// L2Error integrates (W - exact)^2 over the mesh at the volume cubature nodes, summed over the
// variables.
func L2Error(m *mesh.Mesh, exact func(x, W []float64)) float64 {
	var (
		nv  = m.NVar
		ref = make([]float64, nv)
		sum float64
	)
	for _, vol := range m.Volumes {
		eo := vol.Ops
		Wc := make([]float64, eo.Nc*nv)
		utils.MulAdd(eo.ChiVc, vol.W.DataP, nv, Wc)
		for q := 0; q < eo.Nc; q++ {
			exact(vol.Geom.Xc.Row(q), ref)
			wd := eo.Wvc[q] * vol.Geom.DetJ[q]
			for v := 0; v < nv; v++ {
				d := Wc[q*nv+v] - ref[v]
				sum += wd * d * d
			}
		}
	}
	return math.Sqrt(sum)
}

// GradientError is the L2 error of the reconstructed gradients in Volume.Grad
func GradientError(m *mesh.Mesh, grad func(x, G []float64)) float64 {
	var (
		nv  = m.NVar
		dim = m.Dim
		ref = make([]float64, dim*nv)
		sum float64
	)
	for _, vol := range m.Volumes {
		eo := vol.Ops
		Gc := make([][]float64, dim)
		for x := range Gc {
			Gc[x] = make([]float64, eo.Nc*nv)
			utils.MulAdd(eo.ChiVc, vol.Grad[x].DataP, nv, Gc[x])
		}
		for q := 0; q < eo.Nc; q++ {
			grad(vol.Geom.Xc.Row(q), ref)
			wd := eo.Wvc[q] * vol.Geom.DetJ[q]
			for x := 0; x < dim; x++ {
				for v := 0; v < nv; v++ {
					d := Gc[x][q*nv+v] - ref[x*nv+v]
					sum += wd * d * d
				}
			}
		}
	}
	return math.Sqrt(sum)
}

// ConvergenceOrders returns the observed order log(e_i/e_i+1)/log(h_i/h_i+1) between successive
// refinements.
func ConvergenceOrders(h, errs []float64) (orders []float64) {
	for i := 1; i < len(h) && i < len(errs); i++ {
		orders = append(orders, math.Log(errs[i-1]/errs[i])/math.Log(h[i-1]/h[i]))
	}
	return
}

// FittedOrder is the least squares slope of log(err) against log(h)
func FittedOrder(h, errs []float64) float64 {
	lh, le := make([]float64, len(h)), make([]float64, len(errs))
	for i := range h {
		lh[i], le[i] = math.Log(h[i]), math.Log(errs[i])
	}
	_, slope := stat.LinearRegression(lh, le, nil, false)
	return slope
}
