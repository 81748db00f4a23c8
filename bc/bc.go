package bc

import (
	"fmt"

	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
)

// Params holds the data every boundary condition of a run may need
type Params struct {
	Model       *flux.Model
	Mach, Alpha float64 // free stream
	P0, T0      float64 // total pressure and temperature for TotalTP inflow
	PBack       float64 // exit pressure for BackPressure outflow
	// Exact sets the prescribed state at x (Dirichlet, advection and supersonic inflow)
	Exact func(x []float64, W []float64)
	// ExactGrad sets the prescribed gradient G[x*NVar+v] at x (Neumann)
	ExactGrad func(x []float64, G []float64)
}

// FreeStream returns the free stream state of the compressible systems
func (p *Params) FreeStream() []float64 { return flux.FreeStream(p.Model, p.Mach, p.Alpha) }

// Ghost synthesizes the right state at one face node from the left state, the unit normal and
// the node coordinates.
type Ghost[T utils.Scalar] func(wL []T, n, x []float64, wG []T)

// GhostJacobian returns the ghost state and dG[e*NVar+v] = d wG_e / d wL_v
type GhostJacobian func(wL, n, x, wG, dG []float64)

// GhostGradient synthesizes the right gradient of the viscous flux from the left gradient
type GhostGradient[T utils.Scalar] func(gL []T, n, x []float64, gG []T)

// Condition is one boundary condition resolved for a scalar type. The ghost gradient is affine
// in the left gradient with slope GradientSlope times the identity.
type Condition[T utils.Scalar] struct {
	Type          types.BCType
	Ghost         Ghost[T]
	Jacobian      GhostJacobian
	Gradient      GhostGradient[T]
	GradientSlope float64
}

// Resolve builds the condition for a BC tag, or an error when the tag cannot close the PDE or its
// data is missing.
func Resolve[T utils.Scalar](bc types.BCType, p *Params) (c *Condition[T], err error) {
	m := p.Model
	if !bc.ValidFor(m.PDE) {
		err = fmt.Errorf("boundary condition %s is not available for %s", bc, m.PDE)
		return
	}
	var (
		nv       = m.NVar
		copyLeft = func(wL []T, n, x []float64, wG []T) { copy(wG, wL) }
		copyJac  = func(wL, n, x, wG, dG []float64) {
			copy(wG, wL)
			identity(nv, dG)
		}
	)
	c = &Condition[T]{
		Type:          bc,
		GradientSlope: 1,
		Gradient:      func(gL []T, n, x []float64, gG []T) { copy(gG, gL) },
	}
	switch bc {
	case types.BC_SlipWall:
		c.Ghost = func(wL []T, n, x []float64, wG []T) { SlipWall(m, wL, n, wG) }
		c.Jacobian = func(wL, n, x, wG, dG []float64) {
			SlipWall(m, wL, n, wG)
			slipWallJacobian(m, n, dG)
		}
	case types.BC_NoSlipAdiabatic:
		c.Ghost = func(wL []T, n, x []float64, wG []T) { NoSlip(m, wL, wG) }
		c.Jacobian = func(wL, n, x, wG, dG []float64) {
			NoSlip(m, wL, wG)
			identity(nv, dG)
			for i := 1; i <= m.Dim; i++ {
				dG[i*nv+i] = -1
			}
		}
	case types.BC_SupersonicIn:
		// The exact solution when one is given, the free stream otherwise
		wInf := p.FreeStream()
		state := func(x, w []float64) { copy(w, wInf) }
		if p.Exact != nil {
			state = p.Exact
		}
		c.Ghost = func(wL []T, n, x []float64, wG []T) {
			g := make([]float64, nv)
			state(x, g)
			for i, val := range g {
				wG[i] = utils.FromReal[T](val)
			}
		}
		c.Jacobian = func(wL, n, x, wG, dG []float64) {
			state(x, wG)
			for i := range dG {
				dG[i] = 0
			}
		}
	case types.BC_SupersonicOut, types.BC_Outflow:
		c.Ghost, c.Jacobian = copyLeft, copyJac
	case types.BC_BackPressure:
		if p.PBack <= 0 {
			err = fmt.Errorf("back pressure outflow needs a positive exit pressure, have %g", p.PBack)
			return
		}
		c.Ghost = func(wL []T, n, x []float64, wG []T) { BackPressure(m, p.PBack, wL, n, wG) }
		c.Jacobian = func(wL, n, x, wG, dG []float64) {
			BackPressure(m, p.PBack, wL, n, wG)
			backPressureJacobian(m, wL, n, dG)
		}
	case types.BC_Riemann:
		wInf := p.FreeStream()
		c.Ghost = func(wL []T, n, x []float64, wG []T) { Riemann(m, wInf, wL, n, wG) }
		c.Jacobian = complexStep(m, func(wL []complex128, n, x []float64, wG []complex128) {
			Riemann(m, wInf, wL, n, wG)
		})
	case types.BC_TotalTP:
		if p.P0 <= 0 || p.T0 <= 0 {
			err = fmt.Errorf("total pressure %g and temperature %g must be positive", p.P0, p.T0)
			return
		}
		c.Ghost = func(wL []T, n, x []float64, wG []T) { TotalTP(m, p.P0, p.T0, wL, n, wG) }
		c.Jacobian = complexStep(m, func(wL []complex128, n, x []float64, wG []complex128) {
			TotalTP(m, p.P0, p.T0, wL, n, wG)
		})
	case types.BC_Dirichlet:
		if p.Exact == nil {
			err = fmt.Errorf("dirichlet boundaries need an exact solution")
			return
		}
		// The ghost 2g - wL puts the average state on the boundary value
		c.Ghost = func(wL []T, n, x []float64, wG []T) {
			g := make([]float64, nv)
			p.Exact(x, g)
			for v := range wG {
				wG[v] = utils.FromReal[T](2*g[v]) - wL[v]
			}
		}
		c.Jacobian = func(wL, n, x, wG, dG []float64) {
			p.Exact(x, wG)
			identity(nv, dG)
			for v := range wG {
				wG[v] = 2*wG[v] - wL[v]
				dG[v*nv+v] = -1
			}
		}
	case types.BC_Neumann:
		if p.ExactGrad == nil {
			err = fmt.Errorf("neumann boundaries need an exact gradient")
			return
		}
		c.Ghost, c.Jacobian = copyLeft, copyJac
		// The ghost -gL + 2 gExact puts the average gradient on the boundary value
		c.GradientSlope = -1
		c.Gradient = func(gL []T, n, x []float64, gG []T) {
			g := make([]float64, len(gG))
			p.ExactGrad(x, g)
			for i := range gG {
				gG[i] = utils.FromReal[T](2*g[i]) - gL[i]
			}
		}
	case types.BC_Inflow:
		if p.Exact == nil {
			err = fmt.Errorf("inflow boundaries need an exact solution")
			return
		}
		c.Ghost = func(wL []T, n, x []float64, wG []T) {
			g := make([]float64, nv)
			p.Exact(x, g)
			for v := range wG {
				wG[v] = utils.FromReal[T](g[v])
			}
		}
		c.Jacobian = func(wL, n, x, wG, dG []float64) {
			p.Exact(x, wG)
			for i := range dG {
				dG[i] = 0
			}
		}
	default:
		err = fmt.Errorf("boundary condition %s is not implemented", bc)
	}
	return
}

// complexStep builds a ghost Jacobian by complex step differentiation of the ghost state
func complexStep(m *flux.Model, ghost Ghost[complex128]) GhostJacobian {
	return func(wL, n, x, wG, dG []float64) {
		wc := utils.FromRealSlice[complex128](wL)
		gc := make([]complex128, m.NVar)
		ghost(wc, n, x, gc)
		copy(wG, utils.ToReal(gc))
		copy(dG, flux.ComplexStep(wL, m.NVar, func(z, out []complex128) {
			ghost(z, n, x, out)
		}))
	}
}
