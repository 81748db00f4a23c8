package assembly

import (
	"github.com/notargets/godpg/utils"
)

// volumeResidual adds sum_r DWeak[r] Fr to the residual of volume k, where Fr is the contravariant
// flux detJ dr/dx F_x at the cubature nodes. Tensor elements use sum factorization when enabled.
func volumeResidual[T utils.Scalar](a *Assembler, s *strategies[T], st *State[T], k int) {
	var (
		vol    = a.Mesh.Volumes[k]
		eo     = vol.Ops
		geom   = vol.Geom
		nv     = a.nv
		dim    = a.dim
		nc     = eo.Nc
		tensor = a.tensor[eo]
		rhs    = st.RHS[k]
	)
	interp := func(u []T) (uc []T) {
		if tensor != nil {
			return tensorApply(tensor.interp, u, nv)
		}
		uc = s.arena.Alloc(nc * nv)
		utils.MulAdd(eo.ChiVc, u, nv, uc)
		return
	}
	var (
		Wc = interp(st.W[k])
		Gc [][]T
		F  = make([]T, dim*nv)
		Fv = make([]T, dim*nv)
		G  = make([]T, dim*nv)
		Fr = make([][]T, dim)
	)
	if s.viscous != nil {
		Gc = make([][]T, dim)
		for x := range Gc {
			Gc[x] = interp(st.Grad[k][x])
		}
	}
	for r := range Fr {
		Fr[r] = s.arena.Alloc(nc * nv)
	}
	for q := 0; q < nc; q++ {
		w := Wc[q*nv : (q+1)*nv]
		zero(F)
		if s.inviscid != nil {
			s.inviscid(w, F)
		}
		if s.viscous != nil {
			for x := 0; x < dim; x++ {
				copy(G[x*nv:(x+1)*nv], Gc[x][q*nv:(q+1)*nv])
			}
			s.viscous(w, G, Fv)
			for i := range F {
				F[i] += Fv[i]
			}
		}
		for r := 0; r < dim; r++ {
			fr := Fr[r][q*nv : (q+1)*nv]
			for x := 0; x < dim; x++ {
				mt := geom.Metric[(q*dim+r)*dim+x]
				if mt == 0 {
					continue
				}
				c := utils.FromReal[T](mt)
				for e := range fr {
					fr[e] += c * F[x*nv+e]
				}
			}
		}
	}
	for r := 0; r < dim; r++ {
		if tensor == nil {
			utils.MulAdd(eo.DWeak[r], Fr[r], nv, rhs)
			continue
		}
		for q := 0; q < nc; q++ {
			w := utils.FromReal[T](eo.Wvc[q])
			for e := 0; e < nv; e++ {
				Fr[r][q*nv+e] *= w
			}
		}
		y := tensorApply(tensor.derivT[r], Fr[r], nv)
		for i, val := range y {
			rhs[i] += val
		}
	}
}

// sourceResidual adds the integral of the source against the test functions,
// ChiVc^T diag(w detJ) S.
func sourceResidual[T utils.Scalar](a *Assembler, st *State[T], k int) {
	var (
		vol  = a.Mesh.Volumes[k]
		eo   = vol.Ops
		nv   = a.nv
		src  = make([]float64, nv)
		swgt = make([]T, eo.Nc*nv)
	)
	for q := 0; q < eo.Nc; q++ {
		a.Cfg.Source(vol.Geom.Xc.Row(q), src)
		wd := eo.Wvc[q] * vol.Geom.DetJ[q]
		for e, val := range src {
			swgt[q*nv+e] = utils.FromReal[T](val * wd)
		}
	}
	utils.MulTransAdd(eo.ChiVc, swgt, nv, st.RHS[k])
}
