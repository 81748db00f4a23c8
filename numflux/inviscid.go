package numflux

import (
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/utils"
)

func normalVelocity[T utils.Scalar](dim int, W []T, n []float64) (vn T) {
	for x := 0; x < dim; x++ {
		vn += utils.FromReal[T](n[x]) * W[x+1]
	}
	return vn / W[0]
}

// Upwind selects the left state when b.n >= 0
func Upwind[T utils.Scalar](m *flux.Model, wL, wR []T, n []float64, nf []T) {
	var bn float64
	for x := 0; x < m.Dim; x++ {
		bn += m.B[x] * n[x]
	}
	if bn >= 0 {
		nf[0] = utils.FromReal[T](bn) * wL[0]
	} else {
		nf[0] = utils.FromReal[T](bn) * wR[0]
	}
}

func UpwindJacobian(m *flux.Model, wL, wR, n, nf, dL, dR []float64) {
	Upwind(m, wL, wR, n, nf)
	var bn float64
	for x := 0; x < m.Dim; x++ {
		bn += m.B[x] * n[x]
	}
	if bn >= 0 {
		dL[0], dR[0] = bn, 0
	} else {
		dL[0], dR[0] = 0, bn
	}
}

// maxWaveSpeed returns |u|+c for the compressible systems and |b.n| for advection
func maxWaveSpeed[T utils.Scalar](m *flux.Model, W []T, n []float64) T {
	if m.B != nil {
		var bn float64
		for x := 0; x < m.Dim; x++ {
			bn += m.B[x] * n[x]
		}
		return utils.FromReal[T](bn)
	}
	var q2 T
	for x := 1; x <= m.Dim; x++ {
		q2 += W[x] * W[x]
	}
	return utils.Sqrt(q2)/W[0] + flux.SoundSpeed(m, W)
}

// LaxFriedrichsFlux is the local Lax-Friedrichs flux with its physical flux resolved once and its
// buffers owned. It is not safe for concurrent use.
type LaxFriedrichsFlux[T utils.Scalar] struct {
	m      *flux.Model
	fluxFn flux.InviscidFunc[T]
	FL, FR []T
}

func NewLaxFriedrichs[T utils.Scalar](m *flux.Model) *LaxFriedrichsFlux[T] {
	return &LaxFriedrichsFlux[T]{
		m:      m,
		fluxFn: flux.ResolveInviscid[T](m),
		FL:     make([]T, m.Dim*m.NVar),
		FR:     make([]T, m.Dim*m.NVar),
	}
}

// Flux computes 0.5(n.(FL+FR) + lambda(WL-WR))
func (lf *LaxFriedrichsFlux[T]) Flux(wL, wR []T, n []float64, nf []T) {
	var (
		m      = lf.m
		nv     = m.NVar
		FL, FR = lf.FL, lf.FR
		lambda = utils.Max(utils.Abs(maxWaveSpeed(m, wL, n)), utils.Abs(maxWaveSpeed(m, wR, n)))
	)
	lf.fluxFn(wL, FL)
	lf.fluxFn(wR, FR)
	for e := 0; e < nv; e++ {
		var fn T
		for x := 0; x < m.Dim; x++ {
			fn += utils.FromReal[T](n[x]) * (FL[x*nv+e] + FR[x*nv+e])
		}
		nf[e] = 0.5 * (fn + lambda*(wL[e]-wR[e]))
	}
}

// LaxFriedrichs evaluates the local Lax-Friedrichs flux at a single node
func LaxFriedrichs[T utils.Scalar](m *flux.Model, wL, wR []T, n []float64, nf []T) {
	NewLaxFriedrichs[T](m).Flux(wL, wR, n, nf)
}

// LaxFriedrichsJacobianFlux differentiates the local Lax-Friedrichs flux in closed form
type LaxFriedrichsJacobianFlux struct {
	lf    *LaxFriedrichsFlux[float64]
	jacFn flux.InviscidJacobianFunc
	F, dF []float64
	dS    []float64
}

func NewLaxFriedrichsJacobian(m *flux.Model) *LaxFriedrichsJacobianFlux {
	return &LaxFriedrichsJacobianFlux{
		lf:    NewLaxFriedrichs[float64](m),
		jacFn: m.InviscidJacobian(),
		F:     make([]float64, m.Dim*m.NVar),
		dF:    make([]float64, m.Dim*m.NVar*m.NVar),
		dS:    make([]float64, m.NVar),
	}
}

func (lj *LaxFriedrichsJacobianFlux) Jacobian(wL, wR, n, nf, dL, dR []float64) {
	lj.lf.Flux(wL, wR, n, nf)
	var (
		m  = lj.lf.m
		nv = m.NVar
		dF = lj.dF
	)
	side := func(W []float64, D []float64) (speed float64) {
		lj.jacFn(W, lj.F, dF)
		for e := 0; e < nv; e++ {
			for v := 0; v < nv; v++ {
				var a float64
				for x := 0; x < m.Dim; x++ {
					a += n[x] * dF[(x*nv+e)*nv+v]
				}
				D[e*nv+v] = 0.5 * a
			}
		}
		speed = maxWaveSpeed(m, W, n)
		return
	}
	sL, sR := side(wL, dL), side(wR, dR)
	var (
		lambda = utils.Abs(sL)
		upper  = wL
		D      = dL
	)
	if utils.Abs(sR) > lambda {
		lambda, upper, D = utils.Abs(sR), wR, dR
	}
	for e := 0; e < nv; e++ {
		dL[e*nv+e] += 0.5 * lambda
		dR[e*nv+e] -= 0.5 * lambda
	}
	// The wave speed is differentiated through the side that sets it
	dS := lj.dS
	waveSpeedGradient(m, upper, n, dS)
	for e := 0; e < nv; e++ {
		for v := 0; v < nv; v++ {
			D[e*nv+v] += 0.5 * (wL[e] - wR[e]) * dS[v]
		}
	}
}

// LaxFriedrichsJacobian evaluates the local Lax-Friedrichs flux and its Jacobians at a single node
func LaxFriedrichsJacobian(m *flux.Model, wL, wR, n, nf, dL, dR []float64) {
	NewLaxFriedrichsJacobian(m).Jacobian(wL, wR, n, nf, dL, dR)
}

// waveSpeedGradient writes d|maxWaveSpeed|/dW into dS, zero for advection
func waveSpeedGradient(m *flux.Model, W []float64, n []float64, dS []float64) {
	for i := range dS {
		dS[i] = 0
	}
	if m.B != nil {
		return
	}
	var (
		dim = m.Dim
		gm1 = m.Gamma - 1
		rho = W[0]
		q2  float64
	)
	for x := 1; x <= dim; x++ {
		q2 += W[x] * W[x] / (rho * rho)
	}
	var (
		speed = utils.Sqrt(q2)
		p     = flux.Pressure(m, W)
		c     = flux.SoundSpeed(m, W)
		dc    = m.Gamma / (2 * c * rho)
	)
	// c = sqrt(gamma p / rho)
	dS[0] = dc * (0.5*gm1*q2 - p/rho)
	for x := 1; x <= dim; x++ {
		u := W[x] / rho
		dS[x] = -dc * gm1 * u
		if speed > 0 {
			dS[x] += u / (rho * speed)
		}
	}
	dS[dim+1] = dc * gm1
	if speed > 0 {
		dS[0] -= speed / rho
	}
}

// Roe computes the Roe-Pike flux 0.5(n.(FL+FR) - dissipation) with the entropy fix on the
// acoustic eigenvalues.
func Roe[T utils.Scalar](m *flux.Model, wL, wR []T, n []float64, nf []T) {
	var (
		dim              = m.Dim
		gm1              = utils.FromReal[T](m.Gamma - 1)
		rhoL, rhoR       = wL[0], wR[0]
		EL, ER           = wL[dim+1], wR[dim+1]
		pL, pR           = flux.Pressure(m, wL), flux.Pressure(m, wR)
		cL, cR           = flux.SoundSpeed(m, wL), flux.SoundSpeed(m, wR)
		vnL, vnR         = normalVelocity(dim, wL, n), normalVelocity(dim, wR, n)
		r                = utils.Sqrt(rhoR / rhoL)
		rP1              = r + 1
		rho              = r * rhoL
		H                = (r*(ER+pR)/rhoR + (EL+pL)/rhoL) / rP1
		u                [3]T
		vn, v2           T
		zero             T
		drhoU            [3]T
		nF               = make([]T, m.NVar)
		rhoVnL, rhoVnR   = rhoL * vnL, rhoR * vnR
		pLR              = pL + pR
		drho, dE, dp     = rhoR - rhoL, ER - EL, pR - pL
		dVn              = vnR - vnL
		l1, l234, l5     T
		dl1, dl5         T
		lc1, lc2         T
		disInt1, disInt2 T
	)
	for x := 0; x < dim; x++ {
		uL, uR := wL[x+1]/rhoL, wR[x+1]/rhoR
		u[x] = (r*uR + uL) / rP1
		vn += utils.FromReal[T](n[x]) * u[x]
		v2 += u[x] * u[x]
		drhoU[x] = wR[x+1] - wL[x+1]
		nF[x+1] = rhoVnL*uL + rhoVnR*uR + utils.FromReal[T](n[x])*pLR
	}
	c := utils.Sqrt(gm1 * (H - 0.5*v2))

	l1 = utils.Abs(vn - c)
	l234 = utils.Abs(vn)
	l5 = utils.Abs(vn + c)
	dl1 = utils.Max(utils.Abs(vnR-cR)-utils.Abs(vnL-cL), zero)
	dl5 = utils.Max(utils.Abs(vnR+cR)-utils.Abs(vnL+cL), zero)
	if utils.Re(l1) < utils.Re(2*dl1) {
		l1 = l1*l1/(4*dl1) + dl1
	}
	if utils.Re(l5) < utils.Re(2*dl5) {
		l5 = l5*l5/(4*dl5) + dl5
	}

	lc1 = 0.5*(l5+l1) - l234
	lc2 = 0.5 * (l5 - l1)
	disInt1 = lc1*dp/(c*c) + lc2*rho*dVn/c
	disInt2 = lc1*rho*dVn + lc2*dp/c

	nF[0] = rhoVnL + rhoVnR
	nF[dim+1] = vnL*(EL+pL) + vnR*(ER+pR)
	nf[0] = 0.5 * (nF[0] - (l234*drho + disInt1))
	for x := 0; x < dim; x++ {
		dis := l234*drhoU[x] + disInt1*u[x] + disInt2*utils.FromReal[T](n[x])
		nf[x+1] = 0.5 * (nF[x+1] - dis)
	}
	nf[dim+1] = 0.5 * (nF[dim+1] - (l234*dE + disInt1*H + disInt2*vn))
}

// ComplexStepJacobian differentiates a numerical flux kernel with respect to both states
func ComplexStepJacobian(m *flux.Model, kernel Kernel[complex128], wL, wR, n, dL, dR []float64) {
	var (
		nv = m.NVar
		w  = append(append([]float64{}, wL...), wR...)
	)
	J := flux.ComplexStep(w, nv, func(z, out []complex128) {
		kernel(z[:nv], z[nv:], n, out)
	})
	for e := 0; e < nv; e++ {
		copy(dL[e*nv:(e+1)*nv], J[e*2*nv:e*2*nv+nv])
		copy(dR[e*nv:(e+1)*nv], J[e*2*nv+nv:(e+1)*2*nv])
	}
}
