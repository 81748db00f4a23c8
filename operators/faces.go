package operators

import (
	"fmt"
	"math"

	"github.com/notargets/godpg/types"
)

// faceMap parameterizes reference face f as r(a,b) = Origin + a*T[0] + b*T[1], with the
// parameter orientation chosen so that the tangents give the outward normal (right handed).
type faceMap struct {
	Origin []float64
	T      [][]float64
}

func faceMaps(et types.ElementType) (fm []faceMap) {
	switch et {
	case types.Line:
		fm = []faceMap{
			{Origin: []float64{-1}},
			{Origin: []float64{1}},
		}
	case types.Triangle:
		fm = []faceMap{
			{Origin: []float64{0, -1}, T: [][]float64{{1, 0}}},
			{Origin: []float64{0, 0}, T: [][]float64{{-1, 1}}},
			{Origin: []float64{-1, 0}, T: [][]float64{{0, -1}}},
		}
	case types.Quad:
		fm = []faceMap{
			{Origin: []float64{0, -1}, T: [][]float64{{1, 0}}},
			{Origin: []float64{1, 0}, T: [][]float64{{0, 1}}},
			{Origin: []float64{0, 1}, T: [][]float64{{-1, 0}}},
			{Origin: []float64{-1, 0}, T: [][]float64{{0, -1}}},
		}
	case types.Hex:
		fm = []faceMap{
			{Origin: []float64{-1, 0, 0}, T: [][]float64{{0, 0, 1}, {0, 1, 0}}},
			{Origin: []float64{1, 0, 0}, T: [][]float64{{0, 1, 0}, {0, 0, 1}}},
			{Origin: []float64{0, -1, 0}, T: [][]float64{{1, 0, 0}, {0, 0, 1}}},
			{Origin: []float64{0, 1, 0}, T: [][]float64{{0, 0, 1}, {1, 0, 0}}},
			{Origin: []float64{0, 0, -1}, T: [][]float64{{0, 1, 0}, {1, 0, 0}}},
			{Origin: []float64{0, 0, 1}, T: [][]float64{{1, 0, 0}, {0, 1, 0}}},
		}
	}
	return
}

func (fm faceMap) eval(ab []float64) (r []float64) {
	r = make([]float64, len(fm.Origin))
	copy(r, fm.Origin)
	for k, t := range fm.T {
		for d := range r {
			r[d] += ab[k] * t[d]
		}
	}
	return
}

// ReferenceVertices returns the reference coordinates of the element vertices. Tensor elements
// number vertices with the r index fastest.
func ReferenceVertices(et types.ElementType) (V [][]float64) {
	switch et {
	case types.Line:
		V = [][]float64{{-1}, {1}}
	case types.Triangle:
		V = [][]float64{{-1, -1}, {1, -1}, {-1, 1}}
	case types.Quad:
		V = [][]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	case types.Hex:
		for k := 0; k < 2; k++ {
			for j := 0; j < 2; j++ {
				for i := 0; i < 2; i++ {
					V = append(V, []float64{float64(2*i - 1), float64(2*j - 1), float64(2*k - 1)})
				}
			}
		}
	}
	return
}

// faceCorners are the parameter coordinates of the face corners in the order used by
// FaceVertices and by the orientation codes.
func faceCorners(dim int) [][]float64 {
	switch dim {
	case 1:
		return [][]float64{{}}
	case 2:
		return [][]float64{{-1}, {1}}
	default:
		return [][]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	}
}

// FaceVertices returns, per face, the local vertex indices at the face corners
func FaceVertices(et types.ElementType) (fv [][]int) {
	var (
		V       = ReferenceVertices(et)
		corners = faceCorners(et.Dim())
	)
	for f, fm := range faceMaps(et) {
		verts := make([]int, len(corners))
		for k, c := range corners {
			r := fm.eval(c)
			verts[k] = -1
			for iv, v := range V {
				if dist(r, v) < 1.e-12 {
					verts[k] = iv
				}
			}
			if verts[k] < 0 {
				panic(fmt.Errorf("face %d corner %d of %s is not a vertex", f, k, et))
			}
		}
		fv = append(fv, verts)
	}
	return
}

func dist(a, b []float64) (d float64) {
	for i := range a {
		d += (a[i] - b[i]) * (a[i] - b[i])
	}
	return math.Sqrt(d)
}

// NumOrientations is the number of relative orientations two faces of a d-dimensional element
// can have.
func NumOrientations(dim int) int {
	switch dim {
	case 1:
		return 1
	case 2:
		return 2
	default:
		return 8
	}
}

// OrientParam maps face parameters in the left face frame into the right face frame for an
// orientation code. Code bits: 1 swaps (a,b), 2 flips a, 4 flips b. For edges only bit 2 is
// meaningful and code 1 denotes the reversed edge.
func OrientParam(dim, orient int, ab []float64) (out []float64) {
	out = make([]float64, len(ab))
	copy(out, ab)
	switch dim {
	case 2:
		if orient == 1 {
			out[0] = -out[0]
		}
	case 3:
		if orient&1 != 0 {
			out[0], out[1] = out[1], out[0]
		}
		if orient&2 != 0 {
			out[0] = -out[0]
		}
		if orient&4 != 0 {
			out[1] = -out[1]
		}
	}
	return
}

// FindOrientation returns the orientation code relating two faces given the global vertex ids at
// the face corners (left and right local ordering), or an error if they are not the same face.
func FindOrientation(dim int, cornersL, cornersR []int) (orient int, err error) {
	corners := faceCorners(dim)
	for orient = 0; orient < NumOrientations(dim); orient++ {
		match := true
		for k, c := range corners {
			cR := OrientParam(dim, orient, c)
			kR := -1
			for kk, cc := range corners {
				if dist(cR, cc) < 1.e-12 {
					kR = kk
				}
			}
			if cornersR[kR] != cornersL[k] {
				match = false
				break
			}
		}
		if match {
			return
		}
	}
	err = fmt.Errorf("faces with corners %v and %v do not match", cornersL, cornersR)
	return
}

// facePerm maps left face node q to the right face node at the same physical location for face
// nodes on an n (x n) parameter grid of symmetric 1-D points.
func facePerm(dim, n, orient int) (perm []int) {
	switch dim {
	case 1:
		return []int{0}
	case 2:
		perm = make([]int, n)
		for i := range perm {
			if orient == 1 {
				perm[i] = n - 1 - i
			} else {
				perm[i] = i
			}
		}
	case 3:
		perm = make([]int, n*n)
		for ib := 0; ib < n; ib++ {
			for ia := 0; ia < n; ia++ {
				ja, jb := ia, ib
				if orient&1 != 0 {
					ja, jb = jb, ja
				}
				if orient&2 != 0 {
					ja = n - 1 - ja
				}
				if orient&4 != 0 {
					jb = n - 1 - jb
				}
				perm[ia+n*ib] = ja + n*jb
			}
		}
	}
	return
}
