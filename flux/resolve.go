package flux

import (
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
)

// InviscidFunc evaluates the convective flux at one node
type InviscidFunc[T utils.Scalar] func(W, F []T)

// ViscousFunc evaluates the viscous flux at one node from the state and its gradient
type ViscousFunc[T utils.Scalar] func(W, G, F []T)

type InviscidJacobianFunc func(W, F, dF []float64)

type ViscousJacobianFunc func(W, G, F, dFdW, dFdG []float64)

// ResolveInviscid returns the convective flux of the model, nil when the PDE has none
func ResolveInviscid[T utils.Scalar](m *Model) InviscidFunc[T] {
	switch m.PDE {
	case types.PDE_Advection:
		return func(W, F []T) { Advection(m, W, F) }
	case types.PDE_Euler, types.PDE_NavierStokes:
		return func(W, F []T) { Euler(m, W, F) }
	}
	return nil
}

// ResolveViscous returns the viscous flux of the model, nil when the PDE has none
func ResolveViscous[T utils.Scalar](m *Model) ViscousFunc[T] {
	switch m.PDE {
	case types.PDE_Poisson:
		return func(W, G, F []T) { Diffusion(m, W, G, F) }
	case types.PDE_NavierStokes:
		return func(W, G, F []T) { NavierStokes(m, W, G, F) }
	}
	return nil
}

func (m *Model) InviscidJacobian() InviscidJacobianFunc {
	switch m.PDE {
	case types.PDE_Advection:
		return func(W, F, dF []float64) { AdvectionJacobian(m, W, F, dF) }
	case types.PDE_Euler, types.PDE_NavierStokes:
		return func(W, F, dF []float64) { EulerJacobian(m, W, F, dF) }
	}
	return nil
}

func (m *Model) ViscousJacobian() ViscousJacobianFunc {
	switch m.PDE {
	case types.PDE_Poisson:
		return func(W, G, F, dFdW, dFdG []float64) { DiffusionJacobian(m, W, G, F, dFdW, dFdG) }
	case types.PDE_NavierStokes:
		return func(W, G, F, dFdW, dFdG []float64) { NavierStokesJacobian(m, W, G, F, dFdW, dFdG) }
	}
	return nil
}

// Nodes evaluates fn over nq nodes, W is nq x NVar and F is nq x Dim x NVar
func (m *Model) Nodes(fn InviscidFunc[float64], W []float64, nq int) (F []float64) {
	var (
		nv = m.NVar
		nf = m.Dim * nv
	)
	F = make([]float64, nq*nf)
	for q := 0; q < nq; q++ {
		fn(W[q*nv:(q+1)*nv], F[q*nf:(q+1)*nf])
	}
	return
}

// NodesJacobian evaluates fn over nq nodes, dF is nq x Dim x NVar x NVar
func (m *Model) NodesJacobian(fn InviscidJacobianFunc, W []float64, nq int) (F, dF []float64) {
	var (
		nv = m.NVar
		nf = m.Dim * nv
	)
	F = make([]float64, nq*nf)
	dF = make([]float64, nq*nf*nv)
	for q := 0; q < nq; q++ {
		fn(W[q*nv:(q+1)*nv], F[q*nf:(q+1)*nf], dF[q*nf*nv:(q+1)*nf*nv])
	}
	return
}
