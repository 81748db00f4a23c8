package numflux

import (
	"math"
	"testing"

	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 2.220446049250313e-16

func eulerModel(t *testing.T, dim int) *flux.Model {
	m, err := flux.NewModel(types.PDE_Euler, dim, 1.4, nil, 0, 0)
	require.NoError(t, err)
	return m
}

func unitNormal(dim int, angle float64) []float64 {
	switch dim {
	case 1:
		return []float64{1}
	case 2:
		return []float64{math.Cos(angle), math.Sin(angle)}
	default:
		return []float64{math.Cos(angle) * 0.6, math.Sin(angle) * 0.6, 0.8}
	}
}

func statePair(m *flux.Model) (wL, wR []float64) {
	uL := []float64{0.4, -0.3, 0.2}
	uR := []float64{0.1, 0.5, -0.6}
	wL = flux.Conservative(m, 1.1, uL[:m.Dim], 0.9)
	wR = flux.Conservative(m, 0.8, uR[:m.Dim], 1.3)
	return
}

func normalFlux(m *flux.Model, W, n []float64) (nf []float64) {
	F := make([]float64, m.Dim*m.NVar)
	flux.ResolveInviscid[float64](m)(W, F)
	nf = make([]float64, m.NVar)
	for e := range nf {
		for x := 0; x < m.Dim; x++ {
			nf[e] += n[x] * F[x*m.NVar+e]
		}
	}
	return
}

func maxAbsDiff(a, b []float64) (mx float64) {
	for i := range a {
		mx = math.Max(mx, math.Abs(a[i]-b[i]))
	}
	return
}

type pointFlux func(m *flux.Model, wL, wR []float64, n []float64, nf []float64)

func TestConsistencyAndConservation(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		m := eulerModel(t, dim)
		wL, wR := statePair(m)
		wrap := func(kernel pointFlux, wL, wR []float64, n []float64) (nf []float64) {
			nf = make([]float64, m.NVar)
			kernel(m, wL, wR, n, nf)
			return
		}
		for _, angle := range []float64{0, 0.7, 2.9} {
			n := unitNormal(dim, angle)
			nm := make([]float64, dim)
			for x := range n {
				nm[x] = -n[x]
			}
			// Equal states give the physical normal flux
			for _, kernel := range []pointFlux{LaxFriedrichs[float64], Roe[float64]} {
				assert.Less(t, maxAbsDiff(normalFlux(m, wL, n), wrap(kernel, wL, wL, n)), 1.e2*eps)
			}
			// Flux seen from the right is the negated flux seen from the left
			fwd, back := wrap(LaxFriedrichs[float64], wL, wR, n), wrap(LaxFriedrichs[float64], wR, wL, nm)
			for e := range fwd {
				assert.InDelta(t, fwd[e], -back[e], 1.e2*eps)
			}
		}
	}
}

func TestUpwind(t *testing.T) {
	m, err := flux.NewModel(types.PDE_Advection, 2, 0, []float64{1, 2}, 0, 0)
	require.NoError(t, err)
	nf, dL, dR := make([]float64, 1), make([]float64, 1), make([]float64, 1)
	UpwindJacobian(m, []float64{3}, []float64{5}, []float64{1, 0}, nf, dL, dR)
	assert.Equal(t, 3., nf[0])
	assert.Equal(t, []float64{1}, dL)
	assert.Equal(t, []float64{0}, dR)
	UpwindJacobian(m, []float64{3}, []float64{5}, []float64{0, -1}, nf, dL, dR)
	assert.Equal(t, -10., nf[0])
	assert.Equal(t, []float64{0}, dL)
	assert.Equal(t, []float64{-2}, dR)
	// Lax-Friedrichs reduces to upwinding for linear advection
	LaxFriedrichs(m, []float64{3}, []float64{5}, []float64{0, -1}, nf)
	assert.InDelta(t, -10., nf[0], 1.e-14)
}

func TestJacobians(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		m := eulerModel(t, dim)
		nv := m.NVar
		wL, wR := statePair(m)
		n := unitNormal(dim, 0.4)
		var (
			nf     = make([]float64, nv)
			dL, dR = make([]float64, nv*nv), make([]float64, nv*nv)
			cL, cR = make([]float64, nv*nv), make([]float64, nv*nv)
		)
		// Both orderings put a different side in charge of the wave speed
		for _, pair := range [][2][]float64{{wL, wR}, {wR, wL}} {
			LaxFriedrichsJacobian(m, pair[0], pair[1], n, nf, dL, dR)
			ComplexStepJacobian(m, func(wL, wR []complex128, n []float64, nf []complex128) {
				LaxFriedrichs(m, wL, wR, n, nf)
			}, pair[0], pair[1], n, cL, cR)
			assert.Less(t, maxAbsDiff(dL, cL), 1.e3*eps)
			assert.Less(t, maxAbsDiff(dR, cR), 1.e3*eps)
		}
		// Roe dissipation derivatives cancel at equal states
		ComplexStepJacobian(m, func(wL, wR []complex128, n []float64, nf []complex128) {
			Roe(m, wL, wR, n, nf)
		}, wL, wL, n, cL, cR)
		F := make([]float64, dim*nv)
		dF := make([]float64, dim*nv*nv)
		flux.EulerJacobian(m, wL, F, dF)
		for e := 0; e < nv; e++ {
			for v := 0; v < nv; v++ {
				var a float64
				for x := 0; x < dim; x++ {
					a += n[x] * dF[(x*nv+e)*nv+v]
				}
				assert.InDelta(t, a, cL[e*nv+v]+cR[e*nv+v], 1.e-13)
			}
		}
	}
}

func TestDispatcher(t *testing.T) {
	m := eulerModel(t, 2)
	_, err := NewDispatcher[float64](m, types.FLUX_Upwind)
	assert.Error(t, err)
	adv, _ := flux.NewModel(types.PDE_Advection, 2, 0, []float64{1, 0}, 0, 0)
	_, err = NewDispatcher[float64](adv, types.FLUX_Roe)
	assert.Error(t, err)

	d, err := NewDispatcher[float64](m, types.FLUX_Roe)
	require.NoError(t, err)
	assert.False(t, d.Viscous())
	ar := utils.NewArena[float64](256)
	in := NewInput(ar, 2, 2, 4, false, Value|JacobianState)
	out := NewOutput(ar, 2, 2, 4, in.Cap)
	wL, wR := statePair(m)
	copy(in.WL, append(append([]float64{}, wL...), wR...))
	copy(in.WR, append(append([]float64{}, wR...), wL...))
	copy(in.N, []float64{1, 0, 0, 1})
	d.Compute(in, out)
	for q := 0; q < 2; q++ {
		nf := make([]float64, 4)
		Roe(m, in.WL[q*4:(q+1)*4], in.WR[q*4:(q+1)*4], in.N[q*2:(q+1)*2], nf)
		assert.Equal(t, nf, out.NF[q*4:(q+1)*4])
	}
	// The complex path produces the same values
	dc, err := NewDispatcher[complex128](m, types.FLUX_Roe)
	require.NoError(t, err)
	arc := utils.NewArena[complex128](64)
	inc := NewInput(arc, 2, 2, 4, false, Value)
	outc := NewOutput(arc, 2, 2, 4, Value)
	copy(inc.WL, utils.FromRealSlice[complex128](in.WL))
	copy(inc.WR, utils.FromRealSlice[complex128](in.WR))
	copy(inc.N, in.N)
	dc.Compute(inc, outc)
	assert.Less(t, maxAbsDiff(out.NF, utils.ToReal(outc.NF)), 1.e-13)
	// Jacobians need real states
	inc.Cap = JacobianState
	assert.Panics(t, func() { dc.Compute(inc, outc) })
}

func TestDispatcherLaxFriedrichs(t *testing.T) {
	m := eulerModel(t, 2)
	d, err := NewDispatcher[float64](m, types.FLUX_LaxFriedrichs)
	require.NoError(t, err)
	var (
		nq     = 3
		ar     = utils.NewArena[float64](512)
		in     = NewInput(ar, nq, 2, 4, false, Value|JacobianState)
		out    = NewOutput(ar, nq, 2, 4, in.Cap)
		wL, wR = statePair(m)
	)
	copy(in.WL, append(append(append([]float64{}, wL...), wR...), wL...))
	copy(in.WR, append(append(append([]float64{}, wR...), wL...), wL...))
	copy(in.N, append(append(unitNormal(2, 0.3), unitNormal(2, 2.1)...), unitNormal(2, -1)...))
	// Reused buffers must not carry state between nodes or calls
	for pass := 0; pass < 2; pass++ {
		d.Compute(in, out)
		for q := 0; q < nq; q++ {
			var (
				nf     = make([]float64, 4)
				dL, dR = make([]float64, 16), make([]float64, 16)
			)
			LaxFriedrichsJacobian(m, in.WL[q*4:(q+1)*4], in.WR[q*4:(q+1)*4], in.N[q*2:(q+1)*2],
				nf, dL, dR)
			assert.Equal(t, nf, out.NF[q*4:(q+1)*4])
			assert.Equal(t, dL, out.DL[q*16:(q+1)*16])
			assert.Equal(t, dR, out.DR[q*16:(q+1)*16])
		}
	}
	in.Cap = Value
	d.Compute(in, out)
	for q := 0; q < nq; q++ {
		nf := make([]float64, 4)
		LaxFriedrichs(m, in.WL[q*4:(q+1)*4], in.WR[q*4:(q+1)*4], in.N[q*2:(q+1)*2], nf)
		assert.Equal(t, nf, out.NF[q*4:(q+1)*4])
	}
}

func TestCentral(t *testing.T) {
	m, err := flux.NewModel(types.PDE_Poisson, 2, 0, nil, 0, 0)
	require.NoError(t, err)
	d, err := NewDispatcher[float64](m, types.FLUX_None)
	require.NoError(t, err)
	assert.True(t, d.Viscous())
	var (
		n        = []float64{0.6, 0.8}
		gL, gR   = []float64{1, 2}, []float64{3, -1}
		nf       = make([]float64, 1)
		dL, dR   = make([]float64, 1), make([]float64, 1)
		dgL, dgR = make([]float64, 2), make([]float64, 2)
	)
	CentralJacobian(m, []float64{0}, []float64{0}, gL, gR, n, nf, dL, dR, dgL, dgR)
	assert.InDelta(t, -0.5*(0.6*4+0.8*1), nf[0], 1.e-15)
	assert.InDeltaSlice(t, []float64{-0.3, -0.4}, dgL, 1.e-16)
	assert.Equal(t, dgL, dgR)
	assert.Equal(t, []float64{0}, dL)

	ns, err := flux.NewModel(types.PDE_NavierStokes, 2, 1.4, nil, 0.02, 0.72)
	require.NoError(t, err)
	wL, wR := statePair(ns)
	var (
		g    = []float64{0.1, 0.2, -0.1, 0.3, 0.05, -0.2, 0.1, 0.4}
		nfc  = make([]complex128, 4)
		nfr  = make([]float64, 4)
		dLn  = make([]float64, 16)
		dRn  = make([]float64, 16)
		dgLn = make([]float64, 32)
		dgRn = make([]float64, 32)
	)
	CentralJacobian(ns, wL, wR, g, g, unitNormal(2, 1), nfr, dLn, dRn, dgLn, dgRn)
	Central(ns, utils.FromRealSlice[complex128](wL), utils.FromRealSlice[complex128](wR),
		utils.FromRealSlice[complex128](g), utils.FromRealSlice[complex128](g), unitNormal(2, 1), nfc)
	assert.Less(t, maxAbsDiff(nfr, utils.ToReal(nfc)), 1.e-13)
}
