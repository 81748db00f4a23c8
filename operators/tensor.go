package operators

import (
	"github.com/notargets/godpg/DG1D"
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
)

// newTensorOps builds Lagrange operators on Gauss-Lobatto nodes for lines, quads and hexes.
// Non-collocated elements integrate with P+2 Gauss points per direction, collocated elements
// integrate on the basis nodes so that ChiVc is the identity and the mass matrix is diagonal.
func newTensorOps(et types.ElementType, P int, collocated bool) (eo *ElementOps) {
	var (
		dim        = et.Dim()
		nodes1D, _ = DG1D.JacobiGL(0, 0, P)
		xq, wq     []float64
	)
	if collocated {
		xq, wq = DG1D.JacobiGL(0, 0, P)
	} else {
		xq, wq = DG1D.JacobiGQ(0, 0, P+1)
	}
	eo = &ElementOps{
		Type:       et,
		P:          P,
		Dim:        dim,
		Collocated: collocated,
		Tensor:     true,
		Np1:        P + 1,
		Nc1:        len(xq),
		W1D:        wq,
		Nfc1D:      len(xq),
	}
	if dim == 1 {
		eo.Nfc1D = 1
	}
	eo.Chi1D, eo.Dr1D = DG1D.LagrangeInterpolation(nodes1D, xq)
	if collocated {
		eo.Chi1D = utils.NewIdentity(P + 1)
	}
	eo.RNodes = tensorGrid(nodes1D, dim)
	eo.RVc = tensorGrid(xq, dim)
	eo.Wvc = tensorWeights(wq, dim)

	// Volume operators as Kronecker products of the 1-D factors
	eo.ChiVc = kronPower(eo.Chi1D, eo.Chi1D, dim, -1)
	eo.DrVc = make([]utils.Matrix, dim)
	for r := 0; r < dim; r++ {
		eo.DrVc[r] = kronPower(eo.Chi1D, eo.Dr1D, dim, r)
	}

	// Face operators by evaluation of the tensor basis at the face points
	param, wf := faceParamGrid(dim, xq, wq)
	eo.Wfc = wf
	eo.RFc = facePoints(et, param)
	for _, R := range eo.RFc {
		Chi, Dr := evalTensorBasis(nodes1D, R)
		eo.ChiFc = append(eo.ChiFc, Chi)
		eo.DrFc = append(eo.DrFc, Dr)
	}
	eo.VertexShape = vertexShape(et, eo.RNodes)
	eo.finish()
	return
}

// tensorGrid forms the dim-fold grid of 1-D points, first coordinate fastest
func tensorGrid(x []float64, dim int) (R utils.Matrix) {
	var (
		n   = len(x)
		tot = 1
	)
	for d := 0; d < dim; d++ {
		tot *= n
	}
	R = utils.NewMatrix(tot, dim)
	for q := 0; q < tot; q++ {
		idx := q
		for d := 0; d < dim; d++ {
			R.DataP[d+dim*q] = x[idx%n]
			idx /= n
		}
	}
	return
}

func tensorWeights(w []float64, dim int) (W []float64) {
	var (
		n   = len(w)
		tot = 1
	)
	for d := 0; d < dim; d++ {
		tot *= n
	}
	W = make([]float64, tot)
	for q := range W {
		idx := q
		W[q] = 1
		for d := 0; d < dim; d++ {
			W[q] *= w[idx%n]
			idx /= n
		}
	}
	return
}

// kronPower returns (x)_d A_d, with A_d = D when d == dir and C otherwise, ordered so that the
// first direction varies fastest in both row and column index.
func kronPower(C, D utils.Matrix, dim, dir int) (R utils.Matrix) {
	pick := func(d int) utils.Matrix {
		if d == dir {
			return D
		}
		return C
	}
	R = pick(0)
	for d := 1; d < dim; d++ {
		R = utils.Kron(pick(d), R)
	}
	return
}

// evalTensorBasis evaluates the tensor Lagrange basis on nodes1D and its reference derivatives at
// arbitrary points R (n x dim).
func evalTensorBasis(nodes1D []float64, R utils.Matrix) (Chi utils.Matrix, Dr []utils.Matrix) {
	var (
		n, dim = R.Dims()
		Np1    = len(nodes1D)
		chi    = make([]utils.Matrix, dim)
		der    = make([]utils.Matrix, dim)
		Np     = 1
	)
	for d := 0; d < dim; d++ {
		Np *= Np1
		chi[d], der[d] = DG1D.LagrangeInterpolation(nodes1D, R.Col(d))
	}
	Chi = utils.NewMatrix(n, Np)
	Dr = make([]utils.Matrix, dim)
	for d := range Dr {
		Dr[d] = utils.NewMatrix(n, Np)
	}
	for q := 0; q < n; q++ {
		for i := 0; i < Np; i++ {
			idx := i
			val := 1.
			dval := make([]float64, dim)
			for d := range dval {
				dval[d] = 1
			}
			for d := 0; d < dim; d++ {
				id := idx % Np1
				idx /= Np1
				val *= chi[d].At(q, id)
				for dd := 0; dd < dim; dd++ {
					if dd == d {
						dval[dd] *= der[d].At(q, id)
					} else {
						dval[dd] *= chi[d].At(q, id)
					}
				}
			}
			Chi.DataP[i+Np*q] = val
			for d := range Dr {
				Dr[d].DataP[i+Np*q] = dval[d]
			}
		}
	}
	return
}
