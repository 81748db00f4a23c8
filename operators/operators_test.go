package operators

import (
	"math"
	"testing"

	"github.com/notargets/godpg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestTableGet(t *testing.T) {
	tb := NewTable(false)
	for _, et := range []types.ElementType{types.Tet, types.Wedge, types.Pyramid} {
		_, err := tb.Get(et, 2)
		assert.Error(t, err)
	}
	_, err := tb.Get(types.Triangle, 0)
	assert.Error(t, err)
	_, err = NewTable(true).Get(types.Triangle, 2)
	assert.Error(t, err)

	eo1, err := tb.Get(types.Quad, 2)
	require.NoError(t, err)
	eo2, err := tb.Get(types.Quad, 2)
	require.NoError(t, err)
	assert.True(t, eo1 == eo2)
}

func TestReferenceOperators(t *testing.T) {
	tb := NewTable(false)
	volumes := map[types.ElementType]float64{
		types.Line: 2, types.Quad: 4, types.Hex: 8, types.Triangle: 2,
	}
	for et, vol := range volumes {
		for P := 1; P < 4; P++ {
			eo, err := tb.Get(et, P)
			require.NoError(t, err)
			assert.InDelta(t, vol, floats.Sum(eo.Wvc), 1.e-12)
			// Partition of unity and zero derivative of constants
			for q := 0; q < eo.Nc; q++ {
				assert.InDelta(t, 1., floats.Sum(eo.ChiVc.Row(q)), 1.e-12)
				for r := 0; r < eo.Dim; r++ {
					assert.InDelta(t, 0., floats.Sum(eo.DrVc[r].Row(q)), 1.e-10)
				}
			}
			// Derivative of the first coordinate
			for q := 0; q < eo.Nc; q++ {
				var dr float64
				for i := 0; i < eo.Np; i++ {
					dr += eo.DrVc[0].At(q, i) * eo.RNodes.At(i, 0)
				}
				assert.InDelta(t, 1., dr, 1.e-10)
			}
			// Closed surface: sum of reference normal * area vanishes
			closure := make([]float64, eo.Dim)
			for f := 0; f < eo.NFaces; f++ {
				n := referenceNormal(eo, f)
				for d := range closure {
					closure[d] += n[d] * floats.Sum(eo.Wfc)
				}
				// Face points interpolate exactly to the face coordinates
				for q := 0; q < eo.Nfc; q++ {
					for d := 0; d < eo.Dim; d++ {
						var x float64
						for i := 0; i < eo.Np; i++ {
							x += eo.ChiFc[f].At(q, i) * eo.RNodes.At(i, d)
						}
						assert.InDelta(t, eo.RFc[f].At(q, d), x, 1.e-12)
					}
				}
			}
			assert.InDeltaSlice(t, make([]float64, eo.Dim), closure, 1.e-12)
		}
	}
}

// referenceNormal returns the unnormalized outward normal of a reference face scaled by the
// parameter to reference area ratio.
func referenceNormal(eo *ElementOps, f int) (n []float64) {
	switch eo.Dim {
	case 1:
		return []float64{eo.FaceN1D[f]}
	case 2:
		tt := eo.FaceT[f][0]
		return []float64{tt[1], -tt[0]}
	default:
		a, b := eo.FaceT[f][0], eo.FaceT[f][1]
		return []float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
	}
}

func TestCollocated(t *testing.T) {
	tb := NewTable(true)
	eo, err := tb.Get(types.Quad, 3)
	require.NoError(t, err)
	assert.Equal(t, eo.Np, eo.Nc)
	for i := 0; i < eo.Np; i++ {
		for j := 0; j < eo.Np; j++ {
			exp := 0.
			if i == j {
				exp = 1
			}
			assert.Equal(t, exp, eo.ChiVc.At(i, j))
		}
	}
	assert.InDelta(t, 4., floats.Sum(eo.Wvc), 1.e-13)
}

func TestFaceVerticesAndOrientation(t *testing.T) {
	// Quad faces run counterclockwise
	assert.Equal(t, [][]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}}, FaceVertices(types.Quad))
	assert.Equal(t, [][]int{{0, 1}, {1, 2}, {2, 0}}, FaceVertices(types.Triangle))
	hex := FaceVertices(types.Hex)
	assert.Equal(t, 6, len(hex))
	assert.Equal(t, []int{0, 4, 2, 6}, hex[0])
	assert.Equal(t, []int{4, 5, 6, 7}, hex[5])

	// Edges shared by two volumes run in opposite directions
	orient, err := FindOrientation(2, []int{7, 9}, []int{9, 7})
	require.NoError(t, err)
	assert.Equal(t, 1, orient)
	_, err = FindOrientation(2, []int{7, 9}, []int{9, 8})
	assert.Error(t, err)

	// Every orientation of a hex face is found and its permutation is consistent
	cornersL := []int{10, 11, 12, 13}
	for code := 0; code < 8; code++ {
		cornersR := make([]int, 4)
		for k, c := range faceCorners(3) {
			cR := OrientParam(3, code, c)
			for kk, cc := range faceCorners(3) {
				if math.Abs(cR[0]-cc[0])+math.Abs(cR[1]-cc[1]) < 1.e-12 {
					cornersR[kk] = cornersL[k]
				}
			}
		}
		found, err := FindOrientation(3, cornersL, cornersR)
		require.NoError(t, err)
		assert.Equal(t, code, found)
		perm := facePerm(3, 3, code)
		// Corner nodes of the grid map to corners carrying the same vertex
		cornerIdx := []int{0, 2, 6, 8}
		for k, q := range cornerIdx {
			for kk, qq := range cornerIdx {
				if perm[q] == qq {
					assert.Equal(t, cornersL[k], cornersR[kk])
				}
			}
		}
	}
}

func TestTensorFactors(t *testing.T) {
	tb := NewTable(false)
	eo, err := tb.Get(types.Hex, 2)
	require.NoError(t, err)
	// Direct volume operator entries are products of the 1-D factors
	n := eo.Nc1
	m := eo.Np1
	for q := 0; q < eo.Nc; q++ {
		q0, q1, q2 := q%n, (q/n)%n, q/(n*n)
		for i := 0; i < eo.Np; i++ {
			i0, i1, i2 := i%m, (i/m)%m, i/(m*m)
			exp := eo.Dr1D.At(q0, i0) * eo.Chi1D.At(q1, i1) * eo.Chi1D.At(q2, i2)
			assert.InDelta(t, exp, eo.DrVc[0].At(q, i), 1.e-14)
			exp = eo.Chi1D.At(q0, i0) * eo.Chi1D.At(q1, i1) * eo.Dr1D.At(q2, i2)
			assert.InDelta(t, exp, eo.DrVc[2].At(q, i), 1.e-14)
		}
	}
}
