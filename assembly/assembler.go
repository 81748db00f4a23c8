package assembly

import (
	"fmt"

	"github.com/notargets/godpg/bc"
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/numflux"
	"github.com/notargets/godpg/operators"
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
	"gonum.org/v1/gonum/floats"
)

// strategies are the flux, numerical flux and boundary closures of one scalar type
type strategies[T utils.Scalar] struct {
	inviscid flux.InviscidFunc[T]
	viscous  flux.ViscousFunc[T]
	numFlux  *numflux.Dispatcher[T]
	bcs      map[types.BCType]*bc.Condition[T]
	arena    *utils.Arena[T]
}

func newStrategies[T utils.Scalar](cfg *Config, tags []types.BCType) (s *strategies[T], err error) {
	m := cfg.Model
	s = &strategies[T]{
		inviscid: flux.ResolveInviscid[T](m),
		viscous:  flux.ResolveViscous[T](m),
		bcs:      make(map[types.BCType]*bc.Condition[T]),
		arena:    utils.NewArena[T](1 << 14),
	}
	if s.numFlux, err = numflux.NewDispatcher[T](m, cfg.Flux); err != nil {
		return
	}
	for _, tag := range tags {
		if s.bcs[tag], err = bc.Resolve[T](tag, cfg.BC); err != nil {
			return
		}
	}
	return
}

// Assembler computes residuals and Jacobians of a mesh. Every choice that depends on the PDE,
// flux, form and boundary tags is resolved once in NewAssembler.
type Assembler struct {
	Cfg  *Config
	Mesh *mesh.Mesh

	nv, dim int
	// B[k][x] = ChiVc^T diag(w detJ) Gx is the volume part of the weak gradient
	B      [][]utils.Matrix
	tensor map[*operators.ElementOps]*tensorOps

	real        *strategies[float64]
	cplx        *strategies[complex128]
	inviscidJac flux.InviscidJacobianFunc
	viscousJac  flux.ViscousJacobianFunc
}

func NewAssembler(cfg *Config, m *mesh.Mesh) (a *Assembler, err error) {
	md := cfg.Model
	switch {
	case !m.IsSetup():
		err = fmt.Errorf("mesh operators and geometry are not set up")
		return
	case m.Dim != md.Dim || m.NVar != md.NVar:
		err = fmt.Errorf("mesh has dimension %d with %d variables, %s needs %d and %d",
			m.Dim, m.NVar, md.PDE, md.Dim, md.NVar)
		return
	case cfg.Form != types.Form_Weak:
		err = fmt.Errorf("%s form volume terms are not implemented", cfg.Form)
		return
	}
	a = &Assembler{
		Cfg:         cfg,
		Mesh:        m,
		nv:          md.NVar,
		dim:         md.Dim,
		tensor:      make(map[*operators.ElementOps]*tensorOps),
		inviscidJac: md.InviscidJacobian(),
		viscousJac:  md.ViscousJacobian(),
	}
	var (
		seen = make(map[types.BCType]bool)
		tags []types.BCType
	)
	for _, f := range m.Faces {
		if f.Boundary() && !seen[f.BC] {
			seen[f.BC] = true
			tags = append(tags, f.BC)
		}
	}
	if a.real, err = newStrategies[float64](cfg, tags); err != nil {
		return
	}
	if a.cplx, err = newStrategies[complex128](cfg, tags); err != nil {
		return
	}
	for _, vol := range m.Volumes {
		eo := vol.Ops
		if cfg.SumFactorize && eo.Tensor {
			if _, ok := a.tensor[eo]; !ok {
				a.tensor[eo] = newTensorOps(eo)
			}
		}
		if !cfg.Viscous() {
			continue
		}
		wd := make([]float64, eo.Nc)
		for q := range wd {
			wd[q] = eo.Wvc[q] * vol.Geom.DetJ[q]
		}
		CT := utils.NewMatrix(eo.Np, eo.Nc)
		for q := 0; q < eo.Nc; q++ {
			for i := 0; i < eo.Np; i++ {
				CT.DataP[i*eo.Nc+q] = eo.ChiVc.At(q, i) * wd[q]
			}
		}
		var bk []utils.Matrix
		for _, G := range vol.Geom.PhysicalDerivative(eo) {
			bk = append(bk, CT.Mul(G))
		}
		a.B = append(a.B, bk)
	}
	return
}

func pick[T utils.Scalar](a *Assembler) *strategies[T] {
	var z T
	if _, ok := any(z).(float64); ok {
		return any(a.real).(*strategies[T])
	}
	return any(a.cplx).(*strategies[T])
}

// eta returns the BR2 penalty of volume k
func (a *Assembler) eta(k int) float64 {
	if a.Cfg.Eta > 0 {
		return a.Cfg.Eta
	}
	return float64(a.Mesh.Volumes[k].Ops.NFaces + 1)
}

// Residual computes the residual of the mesh solution into Volume.RHS, and the corrected
// gradients into Volume.Grad for viscous PDEs.
func (a *Assembler) Residual() {
	ResidualT(a, MeshState(a.Mesh))
}

// ResidualAndJacobian computes the residual and the analytic Jacobian dRHS/dW. J is reset, then
// receives one block per pair of volumes sharing a face plus the diagonal blocks.
func (a *Assembler) ResidualAndJacobian(J *utils.BlockJacobian) {
	st := MeshState(a.Mesh)
	ResidualT(a, st)
	J.Reset()
	newJacobianPass(a, st, J).run()
}

// ResidualT evaluates the residual of st for any scalar type. The complex instantiation carries
// the perturbations of a complex step.
func ResidualT[T utils.Scalar](a *Assembler, st *State[T]) {
	s := pick[T](a)
	s.arena.Reset()
	for k := range st.RHS {
		zero(st.RHS[k])
	}
	if a.Cfg.Viscous() {
		gradients(a, s, st)
	}
	for k := range a.Mesh.Volumes {
		volumeResidual(a, s, st, k)
	}
	for _, f := range a.Mesh.Faces {
		var rhsR []T
		if !f.Boundary() {
			rhsR = st.RHS[f.Right]
		}
		faceResidual(a, s, st, f, st.RHS[f.Left], rhsR)
	}
	if a.Cfg.Source != nil {
		for k := range a.Mesh.Volumes {
			sourceResidual(a, st, k)
		}
	}
}

// FaceContribution returns the residual contributions of face fi alone to its left and right
// volumes for the current mesh solution. rhsR is nil on boundary faces.
func (a *Assembler) FaceContribution(fi int) (rhsL, rhsR []float64) {
	var (
		st = MeshState(a.Mesh)
		f  = a.Mesh.Faces[fi]
		s  = a.real
	)
	s.arena.Reset()
	if a.Cfg.Viscous() {
		gradients(a, s, st)
	}
	rhsL = make([]float64, len(st.W[f.Left]))
	if !f.Boundary() {
		rhsR = make([]float64, len(st.W[f.Right]))
	}
	faceResidual(a, s, st, f, rhsL, rhsR)
	return
}

// TimeDerivative applies the inverse mass matrix to the residual, DWdt = M^-1 RHS
func (a *Assembler) TimeDerivative() {
	for _, vol := range a.Mesh.Volumes {
		vol.DWdt.M.Mul(vol.Geom.MInv.M, vol.RHS.M)
	}
}

// ResidualNorms returns the L2 norm of the residual coefficients of each volume
func (a *Assembler) ResidualNorms() (norms []float64) {
	norms = make([]float64, len(a.Mesh.Volumes))
	for k, vol := range a.Mesh.Volumes {
		norms[k] = floats.Norm(vol.RHS.DataP, 2)
	}
	return
}
