package operators

import (
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
)

// ElementOps holds the reference operators of one (element type, order, collocation) triple.
// All fields are read only after construction and shared by every volume of that kind.
//
// Layouts: volume cubature rows, basis columns. DWeak[r] = DrVc[r]^T diag(Wvc) is the weak
// differentiation operator and TW0Fc[f] = ChiFc[f]^T diag(Wfc) the face test operator.
type ElementOps struct {
	Type               types.ElementType
	P, Dim, Np, Nc     int
	NFaces, Nfc        int
	Collocated, Tensor bool

	RNodes utils.Matrix   // Np x Dim, reference basis nodes
	RVc    utils.Matrix   // Nc x Dim, reference volume cubature nodes
	ChiVc  utils.Matrix   // Nc x Np
	DrVc   []utils.Matrix // Dim of Nc x Np
	Wvc    []float64
	DWeak  []utils.Matrix // Dim of Np x Nc

	// Face operators, all faces of an element share the face cubature rule
	RFc     []utils.Matrix   // per face, Nfc x Dim
	ChiFc   []utils.Matrix   // per face, Nfc x Np
	DrFc    [][]utils.Matrix // per face, per reference direction, Nfc x Np
	Wfc     []float64
	TW0Fc   []utils.Matrix // per face, Np x Nfc
	FaceT   [][][]float64  // per face, reference tangents dr/da, dr/db
	FaceN1D []float64      // per face outward reference normal for lines
	Nfc1D   int            // face points per parameter direction

	// Vertex map
	VertexShape  utils.Matrix // Np x Nv, vertex shape functions at the basis nodes
	FaceVertices [][]int      // per face, local vertex index at each face corner

	// Tensor product factors, basis index i0 + Np1*(i1 + Np1*i2), same for cubature
	Np1, Nc1 int
	Chi1D    utils.Matrix // Nc1 x Np1
	Dr1D     utils.Matrix // Nc1 x Np1
	W1D      []float64

	perms [][]int
}

// Perm returns the face node permutation for an orientation code: right face node Perm[q] sits at
// the physical location of left face node q.
func (eo *ElementOps) Perm(orient int) []int {
	return eo.perms[orient]
}

// NVertices returns the number of vertices of the element
func (eo *ElementOps) NVertices() int { return eo.Type.NVertices() }

func (eo *ElementOps) finish() {
	eo.Np, _ = eo.RNodes.Dims()
	eo.Nc = len(eo.Wvc)
	eo.NFaces = eo.Type.NFaces()
	eo.Nfc = len(eo.Wfc)
	eo.DWeak = make([]utils.Matrix, eo.Dim)
	for r := 0; r < eo.Dim; r++ {
		eo.DWeak[r] = weightedTranspose(eo.DrVc[r], eo.Wvc)
	}
	eo.TW0Fc = make([]utils.Matrix, eo.NFaces)
	for f := 0; f < eo.NFaces; f++ {
		eo.TW0Fc[f] = weightedTranspose(eo.ChiFc[f], eo.Wfc)
	}
	maps := faceMaps(eo.Type)
	eo.FaceT = make([][][]float64, eo.NFaces)
	for f, fm := range maps {
		eo.FaceT[f] = fm.T
	}
	if eo.Dim == 1 {
		eo.FaceN1D = []float64{-1, 1}
	}
	eo.FaceVertices = FaceVertices(eo.Type)
	for orient := 0; orient < NumOrientations(eo.Dim); orient++ {
		eo.perms = append(eo.perms, facePerm(eo.Dim, eo.Nfc1D, orient))
	}
	for r := range eo.DrVc {
		eo.DrVc[r].SetReadOnly("DrVc")
	}
	eo.ChiVc.SetReadOnly("ChiVc")
}

// weightedTranspose returns A^T diag(w)
func weightedTranspose(A utils.Matrix, w []float64) (R utils.Matrix) {
	nr, nc := A.Dims()
	R = utils.NewMatrix(nc, nr)
	for q := 0; q < nr; q++ {
		for i := 0; i < nc; i++ {
			R.DataP[q+nr*i] = A.DataP[i+nc*q] * w[q]
		}
	}
	return
}

// facePoints returns the reference coordinates of the face cubature nodes of every face given
// the face parameter grid (Nfc x Dim-1).
func facePoints(et types.ElementType, param [][]float64) (RFc []utils.Matrix) {
	dim := et.Dim()
	for _, fm := range faceMaps(et) {
		R := utils.NewMatrix(len(param), dim)
		for q, ab := range param {
			copy(R.Row(q), fm.eval(ab))
		}
		RFc = append(RFc, R)
	}
	return
}

// faceParamGrid forms the tensor grid of 1-D face points and weights, a fastest
func faceParamGrid(dim int, x1, w1 []float64) (param [][]float64, w []float64) {
	switch dim {
	case 1:
		return [][]float64{{}}, []float64{1}
	case 2:
		for i, a := range x1 {
			param = append(param, []float64{a})
			w = append(w, w1[i])
		}
	case 3:
		for j, b := range x1 {
			for i, a := range x1 {
				param = append(param, []float64{a, b})
				w = append(w, w1[i]*w1[j])
			}
		}
	}
	return
}

// vertexShape evaluates the linear (simplex) or multilinear (tensor) vertex shape functions at
// reference points R (n x Dim).
func vertexShape(et types.ElementType, R utils.Matrix) (S utils.Matrix) {
	n, _ := R.Dims()
	V := ReferenceVertices(et)
	S = utils.NewMatrix(n, len(V))
	for q := 0; q < n; q++ {
		r := R.Row(q)
		for iv, v := range V {
			val := 1.
			switch et {
			case types.Triangle:
				switch iv {
				case 0:
					val = -(r[0] + r[1]) / 2
				case 1:
					val = (1 + r[0]) / 2
				case 2:
					val = (1 + r[1]) / 2
				}
			default:
				for d := range r {
					val *= (1 + v[d]*r[d]) / 2
				}
			}
			S.DataP[iv+len(V)*q] = val
		}
	}
	return
}
