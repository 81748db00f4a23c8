package numflux

import (
	"fmt"

	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
)

// Capability selects what a numerical flux evaluation produces
type Capability uint8

const (
	Value Capability = 1 << iota
	JacobianState
	JacobianGradient
)

func (c Capability) Has(f Capability) bool { return c&f != 0 }

// Kernel evaluates a numerical flux at one node from the left and right states and the unit
// normal of the left side.
type Kernel[T utils.Scalar] func(wL, wR []T, n []float64, nf []T)

type JacobianKernel func(wL, wR, n, nf, dL, dR []float64)

// ViscousKernel evaluates a viscous numerical flux from the states and gradients of both sides
type ViscousKernel[T utils.Scalar] func(wL, wR, gL, gR []T, n []float64, nf []T)

type ViscousJacobianKernel func(wL, wR, gL, gR, n, nf, dL, dR, dgL, dgR []float64)

// Input holds the states of both sides at Nq face nodes in the left node ordering
type Input[T utils.Scalar] struct {
	Nq     int
	WL, WR []T       // Nq x NVar
	GL, GR []T       // Nq x Dim x NVar, viscous only
	N      []float64 // Nq x Dim
	Cap    Capability
}

// Output holds the numerical flux and, when requested, its Jacobians per node:
// DL/DR are NVar x NVar and DGL/DGR are NVar x Dim x NVar.
type Output[T utils.Scalar] struct {
	NF       []T
	DL, DR   []T
	DGL, DGR []T
}

// NewInput allocates the transient buffers of one evaluation from the arena
func NewInput[T utils.Scalar](ar *utils.Arena[T], nq, dim, nvar int, viscous bool,
	c Capability) (in *Input[T]) {
	in = &Input[T]{
		Nq:  nq,
		WL:  ar.Alloc(nq * nvar),
		WR:  ar.Alloc(nq * nvar),
		N:   make([]float64, nq*dim),
		Cap: c,
	}
	if viscous {
		in.GL, in.GR = ar.Alloc(nq*dim*nvar), ar.Alloc(nq*dim*nvar)
	}
	return
}

func NewOutput[T utils.Scalar](ar *utils.Arena[T], nq, dim, nvar int, c Capability) (out *Output[T]) {
	out = &Output[T]{NF: ar.Alloc(nq * nvar)}
	if c.Has(JacobianState) || c.Has(JacobianGradient) {
		out.DL, out.DR = ar.Alloc(nq*nvar*nvar), ar.Alloc(nq*nvar*nvar)
	}
	if c.Has(JacobianGradient) {
		out.DGL, out.DGR = ar.Alloc(nq*nvar*dim*nvar), ar.Alloc(nq*nvar*dim*nvar)
	}
	return
}

// Dispatcher holds the numerical flux kernels of one (PDE, flux) pair, resolved once at setup.
// The kernels own their scratch buffers so a Dispatcher serves one goroutine.
type Dispatcher[T utils.Scalar] struct {
	Model       *flux.Model
	inviscid    Kernel[T]
	inviscidJac JacobianKernel
	viscous     ViscousKernel[T]
	viscousJac  ViscousJacobianKernel
}

// NewDispatcher resolves the numerical fluxes. Upwind is valid for advection only and Roe for the
// compressible systems; Poisson has no convective numerical flux and ignores ft.
func NewDispatcher[T utils.Scalar](m *flux.Model, ft types.FluxType) (d *Dispatcher[T], err error) {
	d = &Dispatcher[T]{Model: m}
	if m.PDE.HasInviscid() {
		switch {
		case ft == types.FLUX_Upwind && m.PDE == types.PDE_Advection:
			d.inviscid = func(wL, wR []T, n []float64, nf []T) { Upwind(m, wL, wR, n, nf) }
			d.inviscidJac = func(wL, wR, n, nf, dL, dR []float64) { UpwindJacobian(m, wL, wR, n, nf, dL, dR) }
		case ft == types.FLUX_LaxFriedrichs:
			d.inviscid = NewLaxFriedrichs[T](m).Flux
			d.inviscidJac = NewLaxFriedrichsJacobian(m).Jacobian
		case ft == types.FLUX_Roe && m.PDE != types.PDE_Advection:
			d.inviscid = func(wL, wR []T, n []float64, nf []T) { Roe(m, wL, wR, n, nf) }
			roeC := func(wL, wR []complex128, n []float64, nf []complex128) { Roe(m, wL, wR, n, nf) }
			d.inviscidJac = func(wL, wR, n, nf, dL, dR []float64) {
				Roe(m, wL, wR, n, nf)
				ComplexStepJacobian(m, roeC, wL, wR, n, dL, dR)
			}
		default:
			err = fmt.Errorf("numerical flux %s is not available for %s", ft, m.PDE)
			return
		}
	}
	if m.PDE.HasViscous() {
		d.viscous = func(wL, wR, gL, gR []T, n []float64, nf []T) { Central(m, wL, wR, gL, gR, n, nf) }
		d.viscousJac = func(wL, wR, gL, gR, n, nf, dL, dR, dgL, dgR []float64) {
			CentralJacobian(m, wL, wR, gL, gR, n, nf, dL, dR, dgL, dgR)
		}
	}
	return
}

func (d *Dispatcher[T]) Viscous() bool { return d.viscous != nil }

// Compute evaluates the numerical flux at every node of the input. Jacobians are only available
// for real states.
func (d *Dispatcher[T]) Compute(in *Input[T], out *Output[T]) {
	var (
		m   = d.Model
		nv  = m.NVar
		dim = m.Dim
		ng  = dim * nv
	)
	for i := range out.NF {
		out.NF[i] = 0
	}
	if in.Cap.Has(JacobianState) || in.Cap.Has(JacobianGradient) {
		inR, ok := any(in).(*Input[float64])
		if !ok {
			panic(fmt.Errorf("flux Jacobians need real states"))
		}
		d.computeJacobian(inR, any(out).(*Output[float64]))
		return
	}
	tmp := make([]T, nv)
	for q := 0; q < in.Nq; q++ {
		var (
			wL, wR = in.WL[q*nv : (q+1)*nv], in.WR[q*nv : (q+1)*nv]
			n      = in.N[q*dim : (q+1)*dim]
			nf     = out.NF[q*nv : (q+1)*nv]
		)
		if d.inviscid != nil {
			d.inviscid(wL, wR, n, nf)
		}
		if d.viscous != nil {
			d.viscous(wL, wR, in.GL[q*ng:(q+1)*ng], in.GR[q*ng:(q+1)*ng], n, tmp)
			for e := range nf {
				nf[e] += tmp[e]
			}
		}
	}
}

func (d *Dispatcher[T]) computeJacobian(in *Input[float64], out *Output[float64]) {
	var (
		m    = d.Model
		nv   = m.NVar
		dim  = m.Dim
		ng   = dim * nv
		nn   = nv * nv
		nng  = nv * ng
		tmp  = make([]float64, nv)
		dL   = make([]float64, nn)
		dR   = make([]float64, nn)
		dgL  = make([]float64, nng)
		dgR  = make([]float64, nng)
		zero = func(s []float64) {
			for i := range s {
				s[i] = 0
			}
		}
	)
	zero(out.DL)
	zero(out.DR)
	zero(out.DGL)
	zero(out.DGR)
	for q := 0; q < in.Nq; q++ {
		var (
			wL, wR = in.WL[q*nv : (q+1)*nv], in.WR[q*nv : (q+1)*nv]
			n      = in.N[q*dim : (q+1)*dim]
			nf     = out.NF[q*nv : (q+1)*nv]
		)
		if d.inviscidJac != nil {
			d.inviscidJac(wL, wR, n, nf, out.DL[q*nn:(q+1)*nn], out.DR[q*nn:(q+1)*nn])
		}
		if d.viscousJac != nil {
			d.viscousJac(wL, wR, in.GL[q*ng:(q+1)*ng], in.GR[q*ng:(q+1)*ng], n, tmp, dL, dR, dgL, dgR)
			for e := range nf {
				nf[e] += tmp[e]
			}
			for i := 0; i < nn; i++ {
				out.DL[q*nn+i] += dL[i]
				out.DR[q*nn+i] += dR[i]
			}
			if out.DGL != nil {
				copy(out.DGL[q*nng:(q+1)*nng], dgL)
				copy(out.DGR[q*nng:(q+1)*nng], dgR)
			}
		}
	}
}
