package bc

import (
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/utils"
)

func normalMomentum[T utils.Scalar](dim int, W []T, n []float64) (mn T) {
	for x := 0; x < dim; x++ {
		mn += utils.FromReal[T](n[x]) * W[x+1]
	}
	return
}

// SlipWall reflects the normal momentum so that the average state has no normal velocity
func SlipWall[T utils.Scalar](m *flux.Model, wL []T, n []float64, wG []T) {
	dim := m.Dim
	mn := normalMomentum(dim, wL, n)
	copy(wG, wL)
	for x := 0; x < dim; x++ {
		wG[x+1] -= 2 * mn * utils.FromReal[T](n[x])
	}
}

func slipWallJacobian(m *flux.Model, n, dG []float64) {
	identity(m.NVar, dG)
	nv := m.NVar
	for i := 0; i < m.Dim; i++ {
		for j := 0; j < m.Dim; j++ {
			dG[(i+1)*nv+j+1] -= 2 * n[i] * n[j]
		}
	}
}

// NoSlip negates the momentum, giving zero velocity on the wall
func NoSlip[T utils.Scalar](m *flux.Model, wL []T, wG []T) {
	copy(wG, wL)
	for x := 1; x <= m.Dim; x++ {
		wG[x] = -wL[x]
	}
}

// BackPressure imposes the exit pressure on subsonic outflow and extrapolates supersonic outflow
func BackPressure[T utils.Scalar](m *flux.Model, pBack float64, wL []T, n []float64, wG []T) {
	var (
		dim = m.Dim
		rho = wL[0]
		vn  = normalMomentum(dim, wL, n) / rho
		c   = flux.SoundSpeed(m, wL)
		m2  T
	)
	copy(wG, wL)
	if utils.Re(vn) >= utils.Re(c) {
		return
	}
	for x := 1; x <= dim; x++ {
		m2 += wL[x] * wL[x]
	}
	wG[dim+1] = utils.FromReal[T](pBack/(m.Gamma-1)) + 0.5*m2/rho
}

func backPressureJacobian(m *flux.Model, wL, n, dG []float64) {
	var (
		dim = m.Dim
		nv  = m.NVar
		rho = wL[0]
	)
	identity(nv, dG)
	if normalMomentum(dim, wL, n)/rho >= flux.SoundSpeed(m, wL) {
		return
	}
	var m2 float64
	for x := 1; x <= dim; x++ {
		m2 += wL[x] * wL[x]
	}
	row := dG[(dim+1)*nv : (dim+2)*nv]
	row[dim+1] = 0
	row[0] = -0.5 * m2 / (rho * rho)
	for x := 1; x <= dim; x++ {
		row[x] = wL[x] / rho
	}
}

// Riemann sets the boundary state from the Riemann invariants of the interior and free stream
// states, taking entropy and tangential velocity from the upwind side.
func Riemann[T utils.Scalar](m *flux.Model, wInf []float64, wL []T, n []float64, wG []T) {
	var (
		dim   = m.Dim
		gamma = utils.FromReal[T](m.Gamma)
		gm1   = utils.FromReal[T](m.Gamma - 1)
		wI    = utils.FromRealSlice[T](wInf)
		vnL   = normalMomentum(dim, wL, n) / wL[0]
		vnI   = normalMomentum(dim, wI, n) / wI[0]
		rPlus = vnL + 2*flux.SoundSpeed(m, wL)/gm1
		rMin  = vnI - 2*flux.SoundSpeed(m, wI)/gm1
		vnB   = 0.5 * (rPlus + rMin)
		cB    = 0.25 * gm1 * (rPlus - rMin)
		ref   = wL
		vnRef = vnL
	)
	if utils.Re(vnB) < 0 {
		ref, vnRef = wI, vnI
	}
	var (
		s    = flux.Pressure(m, ref) / utils.Pow(ref[0], m.Gamma)
		rhoB = utils.Pow(cB*cB/(gamma*s), 1/(m.Gamma-1))
		pB   = rhoB * cB * cB / gamma
		u2   T
	)
	wG[0] = rhoB
	for x := 0; x < dim; x++ {
		nx := utils.FromReal[T](n[x])
		u := ref[x+1]/ref[0] + (vnB-vnRef)*nx
		wG[x+1] = rhoB * u
		u2 += u * u
	}
	wG[dim+1] = pB/gm1 + 0.5*rhoB*u2
}

// TotalTP imposes total pressure p0 and total temperature T0 (T = p/rho) on subsonic inflow
// normal to the boundary, with the outgoing Riemann invariant taken from the interior.
func TotalTP[T utils.Scalar](m *flux.Model, p0, t0 float64, wL []T, n []float64, wG []T) {
	var (
		dim   = m.Dim
		gamma = m.Gamma
		gm1   = gamma - 1
		c02   = utils.FromReal[T](gamma * t0)
		a     = utils.FromReal[T]((gamma + 1) / gm1)
		vnL   = normalMomentum(dim, wL, n) / wL[0]
		R     = vnL + utils.FromReal[T](2/gm1)*flux.SoundSpeed(m, wL)
		disc  = R*R - a*(utils.FromReal[T](0.5*gm1)*R*R-c02)
		cB    = (R + utils.Sqrt(disc)) / a
		vnB   = R - utils.FromReal[T](2/gm1)*cB
		tB    = cB * cB / utils.FromReal[T](gamma)
		pB    = utils.FromReal[T](p0) * utils.Pow(tB/utils.FromReal[T](t0), gamma/gm1)
		rhoB  = pB / tB
	)
	wG[0] = rhoB
	for x := 0; x < dim; x++ {
		wG[x+1] = rhoB * vnB * utils.FromReal[T](n[x])
	}
	wG[dim+1] = pB/utils.FromReal[T](gm1) + 0.5*rhoB*vnB*vnB
}

func identity(nv int, D []float64) {
	for i := range D {
		D[i] = 0
	}
	for i := 0; i < nv; i++ {
		D[i*nv+i] = 1
	}
}
