package verification

import (
	"math"

	"github.com/notargets/godpg/bc"
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/geometry"
)

// Solution is an exact solution with its gradient G[x*NVar+v] and the source that manufactures
// it for the steady equations.
type Solution struct {
	Name   string
	Exact  func(x, W []float64)
	Grad   func(x, G []float64)
	Source func(x, S []float64)
	// Map places the unit box onto the domain of the solution, nil for the box itself
	Map geometry.Curve
}

// PoissonSine is u = prod_d sin(pi x_d) on the unit box, with -div grad u = dim pi^2 u
func PoissonSine(dim int) *Solution {
	u := func(x []float64) (val float64) {
		val = 1
		for d := 0; d < dim; d++ {
			val *= math.Sin(math.Pi * x[d])
		}
		return
	}
	return &Solution{
		Name:  "poisson sine",
		Exact: func(x, W []float64) { W[0] = u(x) },
		Grad: func(x, G []float64) {
			for d := 0; d < dim; d++ {
				G[d] = math.Pi * math.Cos(math.Pi*x[d])
				for e := 0; e < dim; e++ {
					if e != d {
						G[d] *= math.Sin(math.Pi * x[e])
					}
				}
			}
		},
		Source: func(x, S []float64) { S[0] = float64(dim) * math.Pi * math.Pi * u(x) },
	}
}

// AdvectionSine is u = prod_d sin(pi x_d) for constant velocity b, with source b . grad u
func AdvectionSine(b []float64) *Solution {
	var (
		dim  = len(b)
		sine = PoissonSine(dim)
		g    = make([]float64, dim)
	)
	return &Solution{
		Name:  "advection sine",
		Exact: sine.Exact,
		Grad:  sine.Grad,
		Source: func(x, S []float64) {
			sine.Grad(x, g)
			S[0] = 0
			for d, bd := range b {
				S[0] += bd * g[d]
			}
		},
	}
}

// FreeStream is the uniform compressible flow of the boundary parameters
func FreeStream(p *bc.Params) *Solution {
	w := p.FreeStream()
	return &Solution{
		Name:   "free stream",
		Exact:  func(x, W []float64) { copy(W, w) },
		Grad:   func(x, G []float64) { clear(G) },
		Source: func(x, S []float64) { clear(S) },
	}
}

// SupersonicVortex is the isentropic flow between the concentric circular arcs r = 1 and r = 1.384
// of the first quadrant, with Mach 2.25 on the inner arc. The 2-D Euler equations hold with no
// source. The unit box is mapped onto the quarter annulus, x[0] radially and x[1] by angle.
func SupersonicVortex(m *flux.Model) *Solution {
	const (
		rIn, rOut = 1., 1.384
		machIn    = 2.25
	)
	var (
		g  = m.Gamma
		nv = m.NVar
	)
	// c2 = rho^(gamma-1) is the squared sound speed and omega the angular velocity |u|/r
	state := func(x []float64) (rho, c2, omega, r float64) {
		r = math.Hypot(x[0], x[1])
		c2 = 1 + 0.5*(g-1)*machIn*machIn*(1-rIn*rIn/(r*r))
		rho = math.Pow(c2, 1/(g-1))
		omega = machIn * rIn / (r * r)
		return
	}
	return &Solution{
		Name: "supersonic vortex",
		Exact: func(x, W []float64) {
			rho, c2, omega, _ := state(x)
			u, v := -omega*x[1], omega*x[0]
			W[0], W[1], W[2] = rho, rho*u, rho*v
			W[3] = rho*c2/(g*(g-1)) + 0.5*rho*(u*u+v*v)
		},
		Grad: func(x, G []float64) {
			rho, c2, omega, r := state(x)
			var (
				u, v   = -omega * x[1], omega * x[0]
				drho   = rho * machIn * machIn * rIn * rIn / (c2 * r * r * r)
				domega = -2 * omega / r
			)
			for d := 0; d < 2; d++ {
				var (
					rd     = x[d] / r
					rhoD   = drho * rd
					omegaD = domega * rd
					uD, vD = -omegaD * x[1], omegaD * x[0]
				)
				if d == 0 {
					vD += omega
				} else {
					uD -= omega
				}
				G[d*nv] = rhoD
				G[d*nv+1] = rhoD*u + rho*uD
				G[d*nv+2] = rhoD*v + rho*vD
				// dp = rho^(gamma-1) drho
				G[d*nv+3] = c2*rhoD/(g-1) + 0.5*rhoD*(u*u+v*v) + rho*(u*uD+v*vD)
			}
		},
		Source: func(x, S []float64) { clear(S) },
		Map: func(x []float64) []float64 {
			r, theta := rIn+(rOut-rIn)*x[0], 0.5*math.Pi*x[1]
			return []float64{r * math.Cos(theta), r * math.Sin(theta)}
		},
	}
}

// Params returns boundary parameters that prescribe the solution on Dirichlet, Neumann and inflow
// boundaries.
func (s *Solution) Params() *bc.Params {
	return &bc.Params{Exact: s.Exact, ExactGrad: s.Grad}
}
