package geometry

import (
	"math"

	"github.com/notargets/godpg/operators"
	"github.com/notargets/godpg/utils"
)

// FaceGeometry holds the geometry of a face at its cubature nodes, in the node ordering and with
// the outward normal of the left volume.
type FaceGeometry struct {
	X     utils.Matrix // Nfc x Dim, physical face nodes
	N     utils.Matrix // Nfc x Dim, unit normals
	DetJf []float64    // surface Jacobian per unit face parameter
	Area  float64
}

// NewFaceGeometry evaluates the geometry of local face f of a volume
func NewFaceGeometry(eo *operators.ElementOps, vg *VolumeGeometry, f int) (fg *FaceGeometry) {
	var (
		dim = eo.Dim
		nfc = eo.Nfc
	)
	fg = &FaceGeometry{
		X:     eo.ChiFc[f].Mul(vg.X),
		N:     utils.NewMatrix(nfc, dim),
		DetJf: make([]float64, nfc),
	}
	jac := make([]utils.Matrix, dim)
	for r := 0; r < dim; r++ {
		jac[r] = eo.DrFc[f][r].Mul(vg.X)
	}
	tangent := func(q, k int) (t []float64) {
		t = make([]float64, dim)
		for x := 0; x < dim; x++ {
			for r := 0; r < dim; r++ {
				t[x] += jac[r].At(q, x) * eo.FaceT[f][k][r]
			}
		}
		return
	}
	for q := 0; q < nfc; q++ {
		var n []float64
		switch dim {
		case 1:
			n = []float64{eo.FaceN1D[f] * math.Copysign(1, jac[0].At(q, 0))}
		case 2:
			t := tangent(q, 0)
			n = []float64{t[1], -t[0]}
		case 3:
			a, b := tangent(q, 0), tangent(q, 1)
			n = []float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
		}
		var mag float64
		for _, val := range n {
			mag += val * val
		}
		mag = math.Sqrt(mag)
		fg.DetJf[q] = mag
		for x := range n {
			fg.N.DataP[x+dim*q] = n[x] / mag
		}
		fg.Area += eo.Wfc[q] * mag
	}
	return
}
