package assembly

import (
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/utils"
)

// gradients reconstructs the BR2 gradient of every volume. The volume pass stores B[x] W per
// volume, the face pass stores the lifting of the jump between the central face solution and
// each side, and the finalization applies the inverse mass matrix to their sum.
func gradients[T utils.Scalar](a *Assembler, s *strategies[T], st *State[T]) {
	var (
		m   = a.Mesh
		nv  = a.nv
		dim = a.dim
	)
	st.gradRaw = make([][][]T, len(m.Volumes))
	for k, vol := range m.Volumes {
		st.gradRaw[k] = make([][]T, dim)
		for x := 0; x < dim; x++ {
			raw := make([]T, vol.Ops.Np*nv)
			utils.MulAdd(a.B[k][x], st.W[k], nv, raw)
			st.gradRaw[k][x] = raw
		}
	}
	st.lift = make([][2][][]T, len(m.Faces))
	for _, f := range m.Faces {
		faceLift(a, s, st, f)
	}
	for k, vol := range m.Volumes {
		np := vol.Ops.Np
		sum := make([]T, np*nv)
		for x := 0; x < dim; x++ {
			copy(sum, st.gradRaw[k][x])
			for _, fi := range vol.Faces {
				l := st.lift[fi][sideOf(m.Faces[fi], k)][x]
				for i := range sum {
					sum[i] += l[i]
				}
			}
			zero(st.Grad[k][x])
			utils.MulAdd(vol.Geom.MInv, sum, nv, st.Grad[k][x])
		}
	}
}

func sideOf(f *mesh.Face, k int) int {
	if f.Left == k {
		return 0
	}
	return 1
}

// faceLift computes TW0 diag(DetJf n_x) (u - u_side) for both sides of a face, with the central
// solution u. The jump is the same seen from either side since the normal flips with it.
func faceLift[T utils.Scalar](a *Assembler, s *strategies[T], st *State[T], f *mesh.Face) {
	var (
		m     = a.Mesh
		nv    = a.nv
		dim   = a.dim
		volL  = m.Volumes[f.Left]
		eoL   = volL.Ops
		nfc   = eoL.Nfc
		wL    = s.arena.Alloc(nfc * nv)
		wR    = s.arena.Alloc(nfc * nv)
		jump  = s.arena.Alloc(nfc * nv)
		jumpR = s.arena.Alloc(nfc * nv)
		detJf = f.Geom.DetJf
	)
	faceTraces(a, s, st, f, wL, wR)
	for side := 0; side < 2; side++ {
		st.lift[f.Index][side] = make([][]T, dim)
	}
	for x := 0; x < dim; x++ {
		for q := 0; q < nfc; q++ {
			c := utils.FromReal[T](0.5 * detJf[q] * f.Geom.N.At(q, x))
			for v := 0; v < nv; v++ {
				jump[q*nv+v] = c * (wR[q*nv+v] - wL[q*nv+v])
			}
		}
		lL := make([]T, eoL.Np*nv)
		utils.MulAdd(eoL.TW0Fc[f.LocalL], jump, nv, lL)
		st.lift[f.Index][0][x] = lL
		if f.Boundary() {
			continue
		}
		eoR := m.Volumes[f.Right].Ops
		for q, qR := range f.Perm {
			copy(jumpR[qR*nv:(qR+1)*nv], jump[q*nv:(q+1)*nv])
		}
		lR := make([]T, eoR.Np*nv)
		utils.MulAdd(eoR.TW0Fc[f.LocalR], jumpR, nv, lR)
		st.lift[f.Index][1][x] = lR
	}
}

// faceTraces extrapolates both sides to the face nodes in the left ordering. The right side of
// a boundary face is the ghost state of its condition.
func faceTraces[T utils.Scalar](a *Assembler, s *strategies[T], st *State[T], f *mesh.Face,
	wL, wR []T) {
	var (
		m    = a.Mesh
		nv   = a.nv
		dim  = a.dim
		volL = m.Volumes[f.Left]
		nfc  = volL.Ops.Nfc
	)
	zero(wL)
	utils.MulAdd(volL.Ops.ChiFc[f.LocalL], st.W[f.Left], nv, wL)
	if f.Boundary() {
		cond := s.bcs[f.BC]
		for q := 0; q < nfc; q++ {
			cond.Ghost(wL[q*nv:(q+1)*nv], f.Geom.N.DataP[q*dim:(q+1)*dim],
				f.Geom.X.Row(q), wR[q*nv:(q+1)*nv])
		}
		return
	}
	volR := m.Volumes[f.Right]
	tr := s.arena.Alloc(nfc * nv)
	utils.MulAdd(volR.Ops.ChiFc[f.LocalR], st.W[f.Right], nv, tr)
	for q, qR := range f.Perm {
		copy(wR[q*nv:(q+1)*nv], tr[qR*nv:(qR+1)*nv])
	}
}

// faceGradient returns the BR2 face gradient ChiFc M^-1 (B W + eta R_f) of one side per physical
// direction, in that side's face node ordering.
func faceGradient[T utils.Scalar](a *Assembler, s *strategies[T], st *State[T], f *mesh.Face,
	side int) (sigma [][]T) {
	var (
		nv    = a.nv
		k     = f.Left
		local = f.LocalL
	)
	if side == 1 {
		k, local = f.Right, f.LocalR
	}
	var (
		vol = a.Mesh.Volumes[k]
		eo  = vol.Ops
		eta = utils.FromReal[T](a.eta(k))
		sum = s.arena.Alloc(eo.Np * nv)
		mg  = s.arena.Alloc(eo.Np * nv)
	)
	sigma = make([][]T, a.dim)
	for x := range sigma {
		lift := st.lift[f.Index][side][x]
		for i, val := range st.gradRaw[k][x] {
			sum[i] = val + eta*lift[i]
		}
		zero(mg)
		utils.MulAdd(vol.Geom.MInv, sum, nv, mg)
		sigma[x] = s.arena.Alloc(eo.Nfc * nv)
		utils.MulAdd(eo.ChiFc[local], mg, nv, sigma[x])
	}
	return
}
