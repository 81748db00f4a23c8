package flux

import (
	"math"
	"testing"

	"github.com/notargets/godpg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 2.220446049250313e-16

func eulerStates(dim int) (states [][]float64) {
	m := &Model{PDE: types.PDE_Euler, Dim: dim, NVar: dim + 2, Gamma: 1.4}
	vel := [][]float64{{0.3, -0.2, 0.1}, {-1.1, 0.4, 0.7}, {0, 0, 0}, {2.5, 0.1, -0.3}}
	for i, u := range vel {
		states = append(states, Conservative(m, 0.8+0.2*float64(i), u[:dim], 1+0.3*float64(i)))
	}
	return
}

func maxRelDiff(a, b []float64) (mx float64) {
	var scale float64
	for i := range a {
		scale = math.Max(scale, math.Abs(a[i]))
	}
	for i := range a {
		mx = math.Max(mx, math.Abs(a[i]-b[i])/math.Max(scale, 1))
	}
	return
}

func TestEulerFlux(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		m, err := NewModel(types.PDE_Euler, dim, 1.4, nil, 0, 0)
		require.NoError(t, err)
		nv := m.NVar
		for _, W := range eulerStates(dim) {
			F := make([]float64, dim*nv)
			Euler(m, W, F)
			FJ := make([]float64, dim*nv)
			dF := make([]float64, dim*nv*nv)
			EulerJacobian(m, W, FJ, dF)
			// Jacobian pass returns the identical flux
			assert.Equal(t, F, FJ)
			dFc := ComplexStep(W, dim*nv, func(z, out []complex128) { Euler(m, z, out) })
			assert.Less(t, maxRelDiff(dF, dFc), 1.e2*eps)
		}
	}
	{
		// Density flux is the momentum, momentum flux carries the pressure
		m, _ := NewModel(types.PDE_Euler, 2, 1.4, nil, 0, 0)
		W := []float64{1, 0, 0, 2.5}
		F := make([]float64, 8)
		Euler(m, W, F)
		assert.InDeltaSlice(t, []float64{0, 1, 0, 0, 0, 0, 1, 0}, F, 1.e-15)
		assert.InDelta(t, 1., Pressure(m, W), 1.e-15)
	}
}

func TestFreeStream(t *testing.T) {
	m, err := NewModel(types.PDE_Euler, 2, 1.4, nil, 0, 0)
	require.NoError(t, err)
	W := FreeStream(m, 0.5, 0.1)
	assert.InDelta(t, 1./1.4, Pressure(m, W), 1.e-14)
	assert.InDelta(t, 1., SoundSpeed(m, W), 1.e-14)
	assert.InDelta(t, 0.5*math.Cos(0.1), W[1], 1.e-15)
}

func TestPreconditions(t *testing.T) {
	m, _ := NewModel(types.PDE_Euler, 2, 1.4, nil, 0, 0)
	assert.Panics(t, func() { Pressure(m, []float64{-1, 0, 0, 2.5}) })
	assert.Panics(t, func() { Pressure(m, []float64{1, 3, 0, 2.5}) })
	_, err := NewModel(types.PDE_Euler, 4, 1.4, nil, 0, 0)
	assert.Error(t, err)
	_, err = NewModel(types.PDE_Advection, 2, 0, []float64{1}, 0, 0)
	assert.Error(t, err)
	_, err = NewModel(types.PDE_NavierStokes, 2, 1.4, nil, 0, 0.72)
	assert.Error(t, err)
}

func TestAdvectionAndDiffusion(t *testing.T) {
	m, err := NewModel(types.PDE_Advection, 2, 0, []float64{1, -2}, 0, 0)
	require.NoError(t, err)
	F, dF := m.NodesJacobian(m.InviscidJacobian(), []float64{3, -1}, 2)
	assert.Equal(t, []float64{3, -6, -1, 2}, F)
	assert.Equal(t, []float64{1, -2, 1, -2}, dF)
	assert.Equal(t, F, m.Nodes(ResolveInviscid[float64](m), []float64{3, -1}, 2))
	assert.Nil(t, ResolveViscous[float64](m))

	p, err := NewModel(types.PDE_Poisson, 3, 0, nil, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, ResolveInviscid[complex128](p))
	var (
		G    = []float64{1, 2, 3}
		Fv   = make([]float64, 3)
		dFdW = make([]float64, 3)
		dFdG = make([]float64, 9)
	)
	p.ViscousJacobian()(nil, G, Fv, dFdW, dFdG)
	assert.Equal(t, []float64{-1, -2, -3}, Fv)
	assert.Equal(t, []float64{-1, 0, 0, 0, -1, 0, 0, 0, -1}, dFdG)
}

func TestNavierStokes(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		m, err := NewModel(types.PDE_NavierStokes, dim, 1.4, nil, 0.01, 0.72)
		require.NoError(t, err)
		nv := m.NVar
		W := eulerStates(dim)[1]
		// A uniform state has no viscous flux
		G := make([]float64, dim*nv)
		F := make([]float64, dim*nv)
		NavierStokes(m, W, G, F)
		for _, f := range F {
			assert.Equal(t, 0., f)
		}
		// Shear flow u = y gives tau_xy = mu
		if dim >= 2 {
			W = Conservative(m, 1, make([]float64, dim), 1)
			G[1*nv+1] = 1 // d(rho u)/dy
			NavierStokes(m, W, G, F)
			assert.InDelta(t, -0.01, F[1*nv+1], 1.e-15)
			assert.InDelta(t, -0.01, F[0*nv+2], 1.e-15)
		}
		// The flux is linear in the gradient
		for i := range G {
			G[i] = 0.1 * float64(i+1)
		}
		W = eulerStates(dim)[3]
		var (
			FJ   = make([]float64, dim*nv)
			dFdW = make([]float64, dim*nv*nv)
			dFdG = make([]float64, dim*nv*dim*nv)
		)
		NavierStokesJacobian(m, W, G, FJ, dFdW, dFdG)
		NavierStokes(m, W, G, F)
		assert.Equal(t, F, FJ)
		for o := 0; o < dim*nv; o++ {
			var lin float64
			for j := range G {
				lin += dFdG[o*len(G)+j] * G[j]
			}
			assert.InDelta(t, F[o], lin, 1.e-13)
		}
	}
}
