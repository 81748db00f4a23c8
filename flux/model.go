package flux

import (
	"fmt"
	"math"

	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
)

// Model holds the physical constants of one PDE. Fluxes are evaluated pointwise with the state W
// laid out as [density, momentum x Dim, energy] for the compressible systems and F[x*NVar+e].
type Model struct {
	PDE   types.PDEType
	Dim   int
	NVar  int
	Gamma float64
	B     []float64 // advection velocity
	Mu    float64   // dynamic viscosity
	Pr    float64   // Prandtl number
}

func NewModel(pde types.PDEType, dim int, gamma float64, b []float64, mu, pr float64) (m *Model,
	err error) {
	if dim < 1 || dim > 3 {
		err = fmt.Errorf("dimension %d not supported", dim)
		return
	}
	m = &Model{PDE: pde, Dim: dim, NVar: pde.NVar(dim), Gamma: gamma, Mu: mu, Pr: pr}
	switch pde {
	case types.PDE_Advection:
		if len(b) != dim {
			err = fmt.Errorf("advection velocity has %d components, need %d", len(b), dim)
			return
		}
		m.B = append([]float64{}, b...)
	case types.PDE_Euler, types.PDE_NavierStokes:
		if gamma <= 1 {
			err = fmt.Errorf("ratio of specific heats must exceed 1, have %g", gamma)
			return
		}
		if pde == types.PDE_NavierStokes && (mu <= 0 || pr <= 0) {
			err = fmt.Errorf("viscosity %g and Prandtl number %g must be positive", mu, pr)
			return
		}
	case types.PDE_Poisson:
	default:
		err = fmt.Errorf("unknown PDE %v", pde)
	}
	return
}

// Pressure returns p = (gamma-1)(E - |m|^2/(2 rho)). It panics on non-positive density or pressure.
func Pressure[T utils.Scalar](m *Model, W []T) (p T) {
	rho := W[0]
	if utils.Re(rho) <= 0 {
		panic(fmt.Errorf("non-positive density %g", utils.Re(rho)))
	}
	var m2 T
	for x := 1; x <= m.Dim; x++ {
		m2 += W[x] * W[x]
	}
	p = utils.FromReal[T](m.Gamma-1) * (W[m.Dim+1] - 0.5*m2/rho)
	if utils.Re(p) <= 0 {
		panic(fmt.Errorf("non-positive pressure %g", utils.Re(p)))
	}
	return
}

func SoundSpeed[T utils.Scalar](m *Model, W []T) T {
	return utils.Sqrt(utils.FromReal[T](m.Gamma) * Pressure(m, W) / W[0])
}

// Enthalpy returns the total enthalpy (E+p)/rho
func Enthalpy[T utils.Scalar](m *Model, W []T) T {
	return (W[m.Dim+1] + Pressure(m, W)) / W[0]
}

// FreeStream returns the nondimensional free stream state with unit density and sound speed at Mach
// number mach and angle of attack alpha (radians) in the x-y plane.
func FreeStream(m *Model, mach, alpha float64) (W []float64) {
	W = make([]float64, m.NVar)
	W[0] = 1
	switch m.Dim {
	case 1:
		W[1] = mach
	default:
		W[1], W[2] = mach*math.Cos(alpha), mach*math.Sin(alpha)
	}
	W[m.Dim+1] = 1/(m.Gamma*(m.Gamma-1)) + 0.5*mach*mach
	return
}

// Conservative converts density, velocity and pressure into the conservative state
func Conservative(m *Model, rho float64, u []float64, p float64) (W []float64) {
	W = make([]float64, m.NVar)
	W[0] = rho
	var u2 float64
	for x := 0; x < m.Dim; x++ {
		W[x+1] = rho * u[x]
		u2 += u[x] * u[x]
	}
	W[m.Dim+1] = p/(m.Gamma-1) + 0.5*rho*u2
	return
}
