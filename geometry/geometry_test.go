package geometry

import (
	"math"
	"testing"

	"github.com/notargets/godpg/operators"
	"github.com/notargets/godpg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeGeometryAffine(t *testing.T) {
	tb := operators.NewTable(false)
	{ // Triangle with area 1/2
		eo, err := tb.Get(types.Triangle, 2)
		require.NoError(t, err)
		vg, err := NewVolumeGeometry(eo, [][]float64{{0, 0}, {1, 0}, {0, 1}}, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, vg.Volume, 1.e-14)
		for _, d := range vg.DetJ {
			assert.InDelta(t, 0.25, d, 1.e-14)
		}
		// Metric is detJ * dr/dx with r_x = 2
		assert.InDelta(t, 0.5, vg.Metric[0], 1.e-14)
		assert.InDelta(t, 0., vg.Metric[1], 1.e-14)
		// Face lengths and normals
		lengths := []float64{1, math.Sqrt2, 1}
		normals := [][]float64{{0, -1}, {1 / math.Sqrt2, 1 / math.Sqrt2}, {-1, 0}}
		for f := 0; f < 3; f++ {
			fg := NewFaceGeometry(eo, vg, f)
			assert.InDelta(t, lengths[f], fg.Area, 1.e-13)
			assert.InDeltaSlice(t, normals[f], fg.N.Row(0), 1.e-13)
		}
	}
	{ // Inverted element is rejected
		eo, err := tb.Get(types.Triangle, 1)
		require.NoError(t, err)
		_, err = NewVolumeGeometry(eo, [][]float64{{0, 0}, {0, 1}, {1, 0}}, nil)
		assert.Error(t, err)
	}
	{ // Hex box
		eo, err := tb.Get(types.Hex, 1)
		require.NoError(t, err)
		var verts [][]float64
		for _, v := range operators.ReferenceVertices(types.Hex) {
			verts = append(verts, []float64{1 + v[0], 0.5 * (1 + v[1]), 0.25 * (1 + v[2])})
		}
		vg, err := NewVolumeGeometry(eo, verts, nil)
		require.NoError(t, err)
		assert.InDelta(t, 2*1*0.5, vg.Volume, 1.e-13)
		areas := []float64{0.5, 0.5, 1, 1, 2, 2}
		for f := 0; f < 6; f++ {
			fg := NewFaceGeometry(eo, vg, f)
			assert.InDelta(t, areas[f], fg.Area, 1.e-13)
		}
		fg := NewFaceGeometry(eo, vg, 0)
		assert.InDeltaSlice(t, []float64{-1, 0, 0}, fg.N.Row(0), 1.e-13)
	}
}

func TestVolumeGeometryCurved(t *testing.T) {
	tb := operators.NewTable(false)
	eo, err := tb.Get(types.Quad, 4)
	require.NoError(t, err)
	// Map the square [0,1]x[0,1] with a displacement vanishing on its boundary
	curve := func(x []float64) []float64 {
		d := 0.05 * math.Sin(math.Pi*x[0]) * math.Sin(math.Pi*x[1])
		return []float64{x[0] + d, x[1] + d}
	}
	vg, err := NewVolumeGeometry(eo, [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, curve)
	require.NoError(t, err)
	// The boundary is unchanged so the area is still close to one
	assert.InDelta(t, 1., vg.Volume, 1.e-3)
	// Divergence theorem: integral of n_x over the closed boundary vanishes
	var sum float64
	for f := 0; f < eo.NFaces; f++ {
		fg := NewFaceGeometry(eo, vg, f)
		for q := 0; q < eo.Nfc; q++ {
			sum += eo.Wfc[q] * fg.DetJf[q] * fg.N.At(q, 0)
		}
	}
	assert.InDelta(t, 0., sum, 1.e-12)
}

func TestMassMatrix(t *testing.T) {
	for _, collocated := range []bool{false, true} {
		tb := operators.NewTable(collocated)
		eo, err := tb.Get(types.Quad, 2)
		require.NoError(t, err)
		vg, err := NewVolumeGeometry(eo, [][]float64{{0, 0}, {2, 0}, {0, 1}, {2, 1}}, nil)
		require.NoError(t, err)
		assert.Equal(t, collocated, vg.MassDiag)
		I := vg.Mass.Mul(vg.MInv)
		for i := 0; i < eo.Np; i++ {
			for j := 0; j < eo.Np; j++ {
				exp := 0.
				if i == j {
					exp = 1
				}
				assert.InDelta(t, exp, I.At(i, j), 1.e-12)
			}
		}
		// Sum of all mass entries is the area
		var sum float64
		for _, val := range vg.Mass.DataP {
			sum += val
		}
		assert.InDelta(t, 2., sum, 1.e-12)
	}
}
