package assembly

import (
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/numflux"
	"github.com/notargets/godpg/utils"
)

// faceInput fills the numerical flux input of a face: both states in the left node ordering and,
// for viscous PDEs, the BR2 face gradients laid out G[q][x*NVar+v].
func faceInput[T utils.Scalar](a *Assembler, s *strategies[T], st *State[T], f *mesh.Face,
	c numflux.Capability) (in *numflux.Input[T]) {
	var (
		nv      = a.nv
		dim     = a.dim
		nfc     = a.Mesh.Volumes[f.Left].Ops.Nfc
		viscous = s.numFlux.Viscous()
	)
	in = numflux.NewInput(s.arena, nfc, dim, nv, viscous, c)
	copy(in.N, f.Geom.N.DataP)
	faceTraces(a, s, st, f, in.WL, in.WR)
	if !viscous {
		return
	}
	ng := dim * nv
	interleave := func(sigma [][]T, G []T, perm []int) {
		for q := 0; q < nfc; q++ {
			src := q
			if perm != nil {
				src = perm[q]
			}
			for x := 0; x < dim; x++ {
				copy(G[q*ng+x*nv:q*ng+(x+1)*nv], sigma[x][src*nv:(src+1)*nv])
			}
		}
	}
	interleave(faceGradient(a, s, st, f, 0), in.GL, nil)
	if f.Boundary() {
		cond := s.bcs[f.BC]
		for q := 0; q < nfc; q++ {
			cond.Gradient(in.GL[q*ng:(q+1)*ng], in.N[q*dim:(q+1)*dim], f.Geom.X.Row(q),
				in.GR[q*ng:(q+1)*ng])
		}
		return
	}
	interleave(faceGradient(a, s, st, f, 1), in.GR, f.Perm)
	return
}

// faceResidual subtracts TW0_L (nf DetJf) from the left residual and adds the same flux,
// returned to the right node ordering, through TW0_R to the right residual.
func faceResidual[T utils.Scalar](a *Assembler, s *strategies[T], st *State[T], f *mesh.Face,
	rhsL, rhsR []T) {
	var (
		m     = a.Mesh
		nv    = a.nv
		eoL   = m.Volumes[f.Left].Ops
		nfc   = eoL.Nfc
		in    = faceInput(a, s, st, f, numflux.Value)
		out   = numflux.NewOutput(s.arena, nfc, a.dim, nv, numflux.Value)
		g     = s.arena.Alloc(nfc * nv)
		detJf = f.Geom.DetJf
	)
	s.numFlux.Compute(in, out)
	for q := 0; q < nfc; q++ {
		dj := utils.FromReal[T](detJf[q])
		for e := 0; e < nv; e++ {
			g[q*nv+e] = -out.NF[q*nv+e] * dj
		}
	}
	utils.MulAdd(eoL.TW0Fc[f.LocalL], g, nv, rhsL)
	if f.Boundary() {
		return
	}
	eoR := m.Volumes[f.Right].Ops
	gR := s.arena.Alloc(nfc * nv)
	for q, qR := range f.Perm {
		for e := 0; e < nv; e++ {
			gR[qR*nv+e] = -g[q*nv+e]
		}
	}
	utils.MulAdd(eoR.TW0Fc[f.LocalR], gR, nv, rhsR)
}
