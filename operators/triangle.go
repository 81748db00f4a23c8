package operators

import (
	"github.com/notargets/godpg/DG1D"
	"github.com/notargets/godpg/DG2D"
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
)

// newTriangleOps builds nodal operators on warp and blend nodes with a collapsed coordinate
// volume rule and P+2 point Gauss rules on the edges.
func newTriangleOps(P int) (eo *ElementOps) {
	var (
		x, y       = DG2D.Nodes2D(P)
		Rn, Sn     = DG2D.XYtoRS(x, y)
		Rc, Sc, Wc = DG2D.Cubature2D(2*P + 2)
		xf, wf     = DG1D.JacobiGQ(0, 0, P+1)
	)
	eo = &ElementOps{
		Type:  types.Triangle,
		P:     P,
		Dim:   2,
		Nfc1D: len(xf),
	}
	eo.RNodes = columns(Rn, Sn)
	eo.RVc = columns(Rc, Sc)
	eo.Wvc = Wc
	Chi, Dr, Ds := DG2D.LagrangeInterpolation2D(P, Rn, Sn, Rc, Sc)
	eo.ChiVc = Chi
	eo.DrVc = []utils.Matrix{Dr, Ds}

	param, w := faceParamGrid(2, xf, wf)
	eo.Wfc = w
	eo.RFc = facePoints(types.Triangle, param)
	for _, R := range eo.RFc {
		Chi, Dr, Ds = DG2D.LagrangeInterpolation2D(P, Rn, Sn, R.Col(0), R.Col(1))
		eo.ChiFc = append(eo.ChiFc, Chi)
		eo.DrFc = append(eo.DrFc, []utils.Matrix{Dr, Ds})
	}
	eo.VertexShape = vertexShape(types.Triangle, eo.RNodes)
	eo.finish()
	return
}

func columns(cols ...[]float64) (R utils.Matrix) {
	var (
		n  = len(cols[0])
		nc = len(cols)
	)
	R = utils.NewMatrix(n, nc)
	for j, c := range cols {
		for i, val := range c {
			R.DataP[j+nc*i] = val
		}
	}
	return
}
