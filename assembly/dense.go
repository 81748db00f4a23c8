package assembly

import (
	"github.com/notargets/godpg/utils"
	"gonum.org/v1/gonum/floats"
)

// Dense helpers for the Jacobian blocks. Block rows and columns are ordered (node, variable) with
// the variable fastest, matching the coefficient layout.

// kronI expands a scalar operator to all variables, A (x) I
func kronI(A utils.Matrix, nv int) utils.Matrix { return utils.Kron(A, utils.NewIdentity(nv)) }

// nodeExpand returns R[(q*nv+e), (j*nv+v)] = B_q[e][v] E[idx(q)][j], the chain of pointwise
// blocks B_q (nv x nv per node) with the interpolation E. A nil idx is the identity.
func nodeExpand(blocks []float64, nv int, E utils.Matrix, idx []int) (R utils.Matrix) {
	var (
		_, np = E.Dims()
		nq    = len(blocks) / (nv * nv)
	)
	R = utils.NewMatrix(nq*nv, np*nv)
	for q := 0; q < nq; q++ {
		row := q
		if idx != nil {
			row = idx[q]
		}
		er := E.Row(row)
		for e := 0; e < nv; e++ {
			dst := R.Row(q*nv + e)
			for v := 0; v < nv; v++ {
				b := blocks[(q*nv+e)*nv+v]
				if b == 0 {
					continue
				}
				for j, val := range er {
					dst[j*nv+v] += b * val
				}
			}
		}
	}
	return
}

// blockDiagMul returns R[(q*nv+e), c] = sum_w B_q[e][w] D[(q*nv+w), c]
func blockDiagMul(blocks []float64, nv int, D utils.Matrix) (R utils.Matrix) {
	nr, nc := D.Dims()
	R = utils.NewMatrix(nr, nc)
	for q := 0; q < nr/nv; q++ {
		for e := 0; e < nv; e++ {
			dst := R.Row(q*nv + e)
			for w := 0; w < nv; w++ {
				if b := blocks[(q*nv+e)*nv+w]; b != 0 {
					floats.AddScaled(dst, b, D.Row(q*nv+w))
				}
			}
		}
	}
	return
}

// testContract returns R[(i*nv+e), c] = sum_q T[i][idx(q)] scale[q] D[(q*nv+e), c], the test
// function contraction of node rows. Nil idx or scale select the identity.
func testContract(T utils.Matrix, idx []int, scale []float64, D utils.Matrix, nv int) (R utils.Matrix) {
	var (
		np, _  = T.Dims()
		nr, nc = D.Dims()
	)
	R = utils.NewMatrix(np*nv, nc)
	for i := 0; i < np; i++ {
		for q := 0; q < nr/nv; q++ {
			col := q
			if idx != nil {
				col = idx[q]
			}
			t := T.At(i, col)
			if scale != nil {
				t *= scale[q]
			}
			if t == 0 {
				continue
			}
			for e := 0; e < nv; e++ {
				floats.AddScaled(R.Row(i*nv+e), t, D.Row(q*nv+e))
			}
		}
	}
	return
}

// permRows returns the rows of A reordered as R[q] = A[idx[q]]
func permRows(A utils.Matrix, idx []int) (R utils.Matrix) {
	_, nc := A.Dims()
	R = utils.NewMatrix(len(idx), nc)
	for q, src := range idx {
		copy(R.Row(q), A.Row(src))
	}
	return
}

// blockMap accumulates per direction blocks keyed by the column volume
type blockMap map[int][]utils.Matrix

func (bm blockMap) add(S, y, dim int, M utils.Matrix) {
	if M.IsEmpty() {
		return
	}
	mats, ok := bm[S]
	if !ok {
		mats = make([]utils.Matrix, dim)
		bm[S] = mats
	}
	if mats[y].IsEmpty() {
		mats[y] = M.Copy()
		return
	}
	mats[y].Add(M)
}
