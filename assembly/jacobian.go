package assembly

import (
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/numflux"
	"github.com/notargets/godpg/utils"
)

// jacobianPass linearizes one residual evaluation. The gradient derivatives are kept per volume
// and per face side, keyed by the volume they differentiate against.
type jacobianPass struct {
	a     *Assembler
	st    *State[float64]
	J     *utils.BlockJacobian
	dLift [][2]blockMap
	dGrad []blockMap
}

func newJacobianPass(a *Assembler, st *State[float64], J *utils.BlockJacobian) *jacobianPass {
	return &jacobianPass{a: a, st: st, J: J}
}

func (jp *jacobianPass) run() {
	m := jp.a.Mesh
	if jp.a.Cfg.Viscous() {
		jp.dLift = make([][2]blockMap, len(m.Faces))
		for _, f := range m.Faces {
			jp.liftJacobian(f)
		}
		jp.dGrad = make([]blockMap, len(m.Volumes))
		for k := range m.Volumes {
			jp.gradientJacobian(k)
		}
	}
	for k := range m.Volumes {
		jp.volumeJacobian(k)
	}
	for _, f := range m.Faces {
		jp.faceJacobian(f)
	}
}

func (jp *jacobianPass) add(row, col int, B utils.Matrix) {
	jp.J.SetRowCol(row, col)
	jp.J.AddBlock(B)
}

// liftJacobian differentiates the face lifting of both sides. With d_x = 1/2 DetJf n_x (uR - uL),
// the right side is reached through the node permutation.
func (jp *jacobianPass) liftJacobian(f *mesh.Face) {
	var (
		a     = jp.a
		m     = a.Mesh
		nv    = a.nv
		dim   = a.dim
		eoL   = m.Volumes[f.Left].Ops
		nfc   = eoL.Nfc
		nn    = nv * nv
		detJf = f.Geom.DetJf
		wL    = make([]float64, nfc*nv)
		dG    [][]float64
	)
	jp.dLift[f.Index] = [2]blockMap{make(blockMap), make(blockMap)}
	if f.Boundary() {
		utils.MulAdd(eoL.ChiFc[f.LocalL], jp.st.W[f.Left], nv, wL)
		cond := a.real.bcs[f.BC]
		wG := make([]float64, nv)
		dG = make([][]float64, nfc)
		for q := range dG {
			dG[q] = make([]float64, nn)
			cond.Jacobian(wL[q*nv:(q+1)*nv], f.Geom.N.Row(q), f.Geom.X.Row(q), wG, dG[q])
		}
	}
	for x := 0; x < dim; x++ {
		var (
			bL = make([]float64, nfc*nn)
			bR = make([]float64, nfc*nn)
		)
		for q := 0; q < nfc; q++ {
			c := 0.5 * detJf[q] * f.Geom.N.At(q, x)
			for e := 0; e < nv; e++ {
				if f.Boundary() {
					for v := 0; v < nv; v++ {
						bL[q*nn+e*nv+v] = c * dG[q][e*nv+v]
					}
				}
				bL[q*nn+e*nv+e] -= c
				bR[q*nn+e*nv+e] = c
			}
		}
		dL := nodeExpand(bL, nv, eoL.ChiFc[f.LocalL], nil)
		jp.dLift[f.Index][0].add(f.Left, x, dim, testContract(eoL.TW0Fc[f.LocalL], nil, nil, dL, nv))
		if f.Boundary() {
			continue
		}
		eoR := m.Volumes[f.Right].Ops
		dR := nodeExpand(bR, nv, eoR.ChiFc[f.LocalR], f.Perm)
		jp.dLift[f.Index][0].add(f.Right, x, dim, testContract(eoL.TW0Fc[f.LocalL], nil, nil, dR, nv))
		jp.dLift[f.Index][1].add(f.Left, x, dim, testContract(eoR.TW0Fc[f.LocalR], f.Perm, nil, dL, nv))
		jp.dLift[f.Index][1].add(f.Right, x, dim, testContract(eoR.TW0Fc[f.LocalR], f.Perm, nil, dR, nv))
	}
}

// gradientJacobian forms dGrad_k[y]/dW_S = (M^-1 (x) I)(delta_Sk B[y] (x) I + sum_f dR_f[y]/dW_S)
func (jp *jacobianPass) gradientJacobian(k int) {
	var (
		a   = jp.a
		m   = a.Mesh
		vol = m.Volumes[k]
		nv  = a.nv
		dim = a.dim
		sum = make(blockMap)
	)
	for y := 0; y < dim; y++ {
		sum.add(k, y, dim, kronI(a.B[k][y], nv))
	}
	for _, fi := range vol.Faces {
		for S, mats := range jp.dLift[fi][sideOf(m.Faces[fi], k)] {
			for y, M := range mats {
				sum.add(S, y, dim, M)
			}
		}
	}
	MI := kronI(vol.Geom.MInv, nv)
	jp.dGrad[k] = make(blockMap)
	for S, mats := range sum {
		for y, M := range mats {
			if !M.IsEmpty() {
				jp.dGrad[k].add(S, y, dim, MI.Mul(M))
			}
		}
	}
}

// faceGradientJacobian differentiates the BR2 face gradient of one side, rows in the left face
// node ordering.
func (jp *jacobianPass) faceGradientJacobian(f *mesh.Face, side int) (ds blockMap) {
	var (
		a     = jp.a
		nv    = a.nv
		dim   = a.dim
		k     = f.Left
		local = f.LocalL
	)
	if side == 1 {
		k, local = f.Right, f.LocalR
	}
	vol := a.Mesh.Volumes[k]
	A := vol.Ops.ChiFc[local].Mul(vol.Geom.MInv)
	if side == 1 {
		A = permRows(A, f.Perm)
	}
	AI := kronI(A, nv)
	ds = make(blockMap)
	for y := 0; y < dim; y++ {
		ds.add(k, y, dim, AI.Mul(kronI(a.B[k][y], nv)))
	}
	for S, mats := range jp.dLift[f.Index][side] {
		for y, M := range mats {
			if !M.IsEmpty() {
				ds.add(S, y, dim, AI.Mul(M).Scale(a.eta(k)))
			}
		}
	}
	return
}

// volumeJacobian contracts the pointwise flux Jacobians with the weak differentiation operators.
// The viscous flux reaches the neighbors through the gradient.
func (jp *jacobianPass) volumeJacobian(k int) {
	var (
		a       = jp.a
		vol     = a.Mesh.Volumes[k]
		eo      = vol.Ops
		geom    = vol.Geom
		nv      = a.nv
		dim     = a.dim
		nc      = eo.Nc
		nn      = nv * nv
		ng      = dim * nv
		viscous = a.viscousJac != nil
		Wc      = make([]float64, nc*nv)
		Gc      [][]float64
		F       = make([]float64, ng)
		dF      = make([]float64, ng*nv)
		dFvdW   = make([]float64, ng*nv)
		dFvdG   = make([]float64, ng*ng)
		G       = make([]float64, ng)
		A       = make([][]float64, dim)   // per r, nc x nv x nv
		C       = make([][][]float64, dim) // per r and y, nc x nv x nv
	)
	utils.MulAdd(eo.ChiVc, jp.st.W[k], nv, Wc)
	if viscous {
		Gc = make([][]float64, dim)
		for x := range Gc {
			Gc[x] = make([]float64, nc*nv)
			utils.MulAdd(eo.ChiVc, jp.st.Grad[k][x], nv, Gc[x])
		}
	}
	for r := 0; r < dim; r++ {
		A[r] = make([]float64, nc*nn)
		C[r] = make([][]float64, dim)
		for y := range C[r] {
			C[r][y] = make([]float64, nc*nn)
		}
	}
	for q := 0; q < nc; q++ {
		w := Wc[q*nv : (q+1)*nv]
		zero(dF)
		if a.inviscidJac != nil {
			a.inviscidJac(w, F, dF)
		}
		if viscous {
			for x := 0; x < dim; x++ {
				copy(G[x*nv:(x+1)*nv], Gc[x][q*nv:(q+1)*nv])
			}
			a.viscousJac(w, G, F, dFvdW, dFvdG)
			for i := range dF {
				dF[i] += dFvdW[i]
			}
		}
		for r := 0; r < dim; r++ {
			for x := 0; x < dim; x++ {
				mt := geom.Metric[(q*dim+r)*dim+x]
				if mt == 0 {
					continue
				}
				for e := 0; e < nv; e++ {
					for v := 0; v < nv; v++ {
						A[r][q*nn+e*nv+v] += mt * dF[(x*nv+e)*nv+v]
					}
					if !viscous {
						continue
					}
					for y := 0; y < dim; y++ {
						for v := 0; v < nv; v++ {
							C[r][y][q*nn+e*nv+v] += mt * dFvdG[(x*nv+e)*ng+y*nv+v]
						}
					}
				}
			}
		}
	}
	self := utils.NewMatrix(eo.Np*nv, eo.Np*nv)
	for r := 0; r < dim; r++ {
		self.Add(testContract(eo.DWeak[r], nil, nil, nodeExpand(A[r], nv, eo.ChiVc, nil), nv))
	}
	jp.add(k, k, self)
	if !viscous {
		return
	}
	CI := kronI(eo.ChiVc, nv)
	for S, mats := range jp.dGrad[k] {
		var blk utils.Matrix
		for y, M := range mats {
			if M.IsEmpty() {
				continue
			}
			dGc := CI.Mul(M)
			for r := 0; r < dim; r++ {
				contrib := testContract(eo.DWeak[r], nil, nil, blockDiagMul(C[r][y], nv, dGc), nv)
				if blk.IsEmpty() {
					blk = contrib
				} else {
					blk.Add(contrib)
				}
			}
		}
		if !blk.IsEmpty() {
			jp.add(k, S, blk)
		}
	}
}

// faceJacobian linearizes the numerical flux of a face into the LL and LR blocks, and for interior
// faces the RL and RR blocks. Boundary faces chain the right state through the ghost Jacobian.
func (jp *jacobianPass) faceJacobian(f *mesh.Face) {
	var (
		a       = jp.a
		s       = a.real
		m       = a.Mesh
		nv      = a.nv
		dim     = a.dim
		nn      = nv * nv
		ng      = dim * nv
		eoL     = m.Volumes[f.Left].Ops
		nfc     = eoL.Nfc
		viscous = s.numFlux.Viscous()
		c       = numflux.Value | numflux.JacobianState
		DN      = make(map[int]utils.Matrix)
		dG      [][]float64
	)
	if viscous {
		c |= numflux.JacobianGradient
	}
	in := faceInput(a, s, jp.st, f, c)
	out := numflux.NewOutput(s.arena, nfc, dim, nv, c)
	s.numFlux.Compute(in, out)
	if f.Boundary() {
		cond := s.bcs[f.BC]
		wG := make([]float64, nv)
		dG = make([][]float64, nfc)
		blocks := make([]float64, nfc*nn)
		for q := 0; q < nfc; q++ {
			dG[q] = make([]float64, nn)
			cond.Jacobian(in.WL[q*nv:(q+1)*nv], in.N[q*dim:(q+1)*dim], f.Geom.X.Row(q), wG, dG[q])
			for e := 0; e < nv; e++ {
				for v := 0; v < nv; v++ {
					b := out.DL[q*nn+e*nv+v]
					for w := 0; w < nv; w++ {
						b += out.DR[q*nn+e*nv+w] * dG[q][w*nv+v]
					}
					blocks[q*nn+e*nv+v] = b
				}
			}
		}
		DN[f.Left] = nodeExpand(blocks, nv, eoL.ChiFc[f.LocalL], nil)
	} else {
		eoR := m.Volumes[f.Right].Ops
		DN[f.Left] = nodeExpand(out.DL, nv, eoL.ChiFc[f.LocalL], nil)
		DN[f.Right] = nodeExpand(out.DR, nv, eoR.ChiFc[f.LocalR], f.Perm)
	}
	if viscous {
		chain := func(dgd []float64, ds blockMap, slope float64) {
			for y := 0; y < dim; y++ {
				blocks := make([]float64, nfc*nn)
				for q := 0; q < nfc; q++ {
					for e := 0; e < nv; e++ {
						for v := 0; v < nv; v++ {
							blocks[q*nn+e*nv+v] = slope * dgd[q*nv*ng+(e*dim+y)*nv+v]
						}
					}
				}
				for S, mats := range ds {
					if mats[y].IsEmpty() {
						continue
					}
					D := blockDiagMul(blocks, nv, mats[y])
					if cur, ok := DN[S]; ok {
						cur.Add(D)
					} else {
						DN[S] = D
					}
				}
			}
		}
		dsL := jp.faceGradientJacobian(f, 0)
		chain(out.DGL, dsL, 1)
		if f.Boundary() {
			chain(out.DGR, dsL, s.bcs[f.BC].GradientSlope)
		} else {
			chain(out.DGR, jp.faceGradientJacobian(f, 1), 1)
		}
	}
	negDetJf := make([]float64, nfc)
	for q, dj := range f.Geom.DetJf {
		negDetJf[q] = -dj
	}
	for S, D := range DN {
		jp.add(f.Left, S, testContract(eoL.TW0Fc[f.LocalL], nil, negDetJf, D, nv))
		if !f.Boundary() {
			eoR := m.Volumes[f.Right].Ops
			jp.add(f.Right, S, testContract(eoR.TW0Fc[f.LocalR], f.Perm, f.Geom.DetJf, D, nv))
		}
	}
}
